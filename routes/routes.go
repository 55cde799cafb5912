package routes

import (
	"net/http"
	"time"

	"flatmate/handlers"
	"flatmate/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterMemberRoutes registers member account endpoints.
func RegisterMemberRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/members")
	{
		api.POST("/register", hb.RegisterMemberHandler)
		api.POST("/login", hb.AuthenticateMemberHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthMemberMiddleware(hb.MemberRepo))
		api.POST("/signout", hb.SignOutHandler)
		api.GET("/me", hb.GetProfileHandler)
		api.PATCH("/me", hb.UpdateProfileHandler)
		api.PUT("/me/fcm-token", hb.RegisterFCMTokenHandler)
	}
}

// RegisterPaymentRoutes registers the dues and checkout endpoints.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payment")
	{
		// The webhook authenticates itself by signature, not by token.
		api.POST("/webhook", hb.WebhookHandler)

		api.Use(middleware.JWTAuthMemberMiddleware(hb.MemberRepo))
		api.GET("/quote", hb.GetQuoteHandler)
		api.GET("/bill", hb.GetBillHandler)
		api.GET("/history", hb.GetHistoryHandler)
		api.POST("/create-order", hb.CreateOrderHandler)
		api.POST("/verify", hb.VerifyPaymentHandler)
		api.GET("/gateway/:paymentId", hb.GetPaymentHandler)
	}
}

// RegisterNoticeRoutes registers the member-facing notice board.
func RegisterNoticeRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.Use(middleware.JWTAuthMemberMiddleware(hb.MemberRepo))
		api.GET("/notices", hb.ListNoticesHandler)
		api.GET("/documents", hb.ListDocumentsHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for society administration.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthAdminMiddleware(hb.MemberRepo))

		adminGroup.GET("/members", hb.GetAllMembersHandler)
		adminGroup.POST("/members", hb.AddMemberHandler)
		adminGroup.DELETE("/members/:id", hb.DeleteMemberHandler)
		adminGroup.PUT("/members/:id/dues", hb.ManualEditHandler)

		adminGroup.GET("/payments", hb.RecentPaymentsHandler)
		adminGroup.POST("/payments", hb.CollectPaymentHandler)

		adminGroup.GET("/config", hb.GetBillingConfigHandler)
		adminGroup.PUT("/config", hb.SaveBillingConfigHandler)

		adminGroup.POST("/reminders", hb.SendRemindersHandler)

		adminGroup.GET("/notices", hb.AdminListNoticesHandler)
		adminGroup.POST("/notices", hb.CreateNoticeHandler)
		adminGroup.DELETE("/notices/:id", hb.DeleteNoticeHandler)
		adminGroup.POST("/documents", hb.CreateDocumentHandler)
		adminGroup.DELETE("/documents/:id", hb.DeleteDocumentHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm FlatMate"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterMemberRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterNoticeRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
