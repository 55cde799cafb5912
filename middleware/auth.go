package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	memberRepo "flatmate/database/repository/member"
	"flatmate/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMemberMiddleware authenticates a member request.
//
// The token's hash is checked against the auth cache first; on a miss
// the account record is the source of truth and the cache is re-primed.
// A mismatch against the stored hash means the token was revoked by a
// newer sign-in or a sign-out.
func JWTAuthMemberMiddleware(repo memberRepo.MemberRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
					"code":  500,
				})
			}
		}()

		memberID, ok := authenticateMember(c, repo)
		if !ok {
			return
		}
		c.Set("memberID", memberID)
		c.Next()
	}
}

// authenticateMember verifies the bearer token and returns the member
// ID. On failure it aborts the request and returns false.
func authenticateMember(c *gin.Context, repo memberRepo.MemberRepository) (string, bool) {
	ctx := context.Background()

	tokenString := bearerToken(c)
	if tokenString == "" {
		unauthorized(c)
		return "", false
	}

	memberID, err := utils.ExtractIDFromToken(tokenString)
	if err != nil || memberID == "" {
		unauthorized(c)
		return "", false
	}

	computedHash := utils.HashToken(tokenString)
	cacheKey := utils.AuthCachePrefix + memberID

	authCache := utils.AuthCacheClient
	if authCache != nil {
		cachedHash, err := authCache.Get(ctx, cacheKey).Result()
		if err == nil {
			if cachedHash != computedHash {
				unauthorized(c)
				return "", false
			}
			_ = authCache.Expire(ctx, cacheKey, time.Hour).Err()
			return memberID, true
		}
	}

	// Cache miss: verify against the stored hash and re-prime.
	acct, err := repo.GetByID(ctx, memberID)
	if err != nil || acct == nil {
		unauthorized(c)
		return "", false
	}
	if acct.TokenHash == "" || acct.TokenHash != computedHash {
		unauthorized(c)
		return "", false
	}
	if authCache != nil {
		_ = authCache.Set(ctx, cacheKey, computedHash, utils.AuthCacheTTL).Err()
	}
	return memberID, true
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "Insufficient authorization",
		"code":  0,
	})
}
