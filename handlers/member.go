package handlers

import (
	"errors"
	"net/http"

	"flatmate/services/member"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MemberHandler exposes member account endpoints.
type MemberHandler struct {
	Service member.MemberService
}

// RegisterMemberHandler handles POST /api/members/register.
func (h *MemberHandler) RegisterMemberHandler(c *gin.Context) {
	logger := getLogger(c)

	var req member.RegistrationData
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, member.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		logger.Error("Registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AuthenticateMemberHandler handles POST /api/members/login.
func (h *MemberHandler) AuthenticateMemberHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, member.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		logger.Error("Login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SignOutHandler handles POST /api/members/signout.
func (h *MemberHandler) SignOutHandler(c *gin.Context) {
	memberID := c.GetString("memberID")
	if err := h.Service.SignOut(c.Request.Context(), memberID); err != nil {
		getLogger(c).Error("Sign out failed", zap.String("memberId", memberID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign out failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// GetProfileHandler handles GET /api/members/me.
func (h *MemberHandler) GetProfileHandler(c *gin.Context) {
	memberID := c.GetString("memberID")
	acct, err := h.Service.GetByID(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		getLogger(c).Error("Profile fetch failed", zap.String("memberId", memberID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	c.JSON(http.StatusOK, acct)
}

// UpdateProfileHandler handles PATCH /api/members/me.
func (h *MemberHandler) UpdateProfileHandler(c *gin.Context) {
	memberID := c.GetString("memberID")

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acct, err := h.Service.UpdateProfile(c.Request.Context(), memberID, fields)
	if err != nil {
		getLogger(c).Error("Profile update failed", zap.String("memberId", memberID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, acct)
}

// RegisterFCMTokenHandler handles PUT /api/members/me/fcm-token.
func (h *MemberHandler) RegisterFCMTokenHandler(c *gin.Context) {
	memberID := c.GetString("memberID")

	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Service.RegisterFCMToken(c.Request.Context(), memberID, req.Token); err != nil {
		getLogger(c).Error("FCM token registration failed", zap.String("memberId", memberID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Token registered"})
}
