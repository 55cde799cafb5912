package middleware

import (
	"context"
	"net/http"
	"strings"

	memberRepo "flatmate/database/repository/member"

	"github.com/gin-gonic/gin"
)

// JWTAuthAdminMiddleware authenticates the request as a member and
// additionally requires the admin role on the account.
func JWTAuthAdminMiddleware(repo memberRepo.MemberRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := authenticateMember(c, repo)
		if !ok {
			return
		}

		acct, err := repo.GetByID(context.Background(), memberID)
		if err != nil || acct == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized admin access"})
			return
		}
		if !strings.EqualFold(acct.Role, "admin") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			return
		}

		c.Set("memberID", memberID)
		c.Set("isAdmin", true)
		c.Next()
	}
}
