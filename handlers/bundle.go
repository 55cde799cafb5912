package handlers

import (
	memberRepoPkg "flatmate/database/repository/member"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	MemberRepo memberRepoPkg.MemberRepository

	// Member account endpoints
	RegisterMemberHandler     gin.HandlerFunc
	AuthenticateMemberHandler gin.HandlerFunc
	SignOutHandler            gin.HandlerFunc
	GetProfileHandler         gin.HandlerFunc
	UpdateProfileHandler      gin.HandlerFunc
	RegisterFCMTokenHandler   gin.HandlerFunc

	// Dues and payment endpoints
	GetQuoteHandler   gin.HandlerFunc
	GetBillHandler    gin.HandlerFunc
	GetHistoryHandler gin.HandlerFunc

	// Gateway checkout endpoints
	CreateOrderHandler   gin.HandlerFunc
	VerifyPaymentHandler gin.HandlerFunc
	GetPaymentHandler    gin.HandlerFunc
	WebhookHandler       gin.HandlerFunc

	// Notices and documents
	ListNoticesHandler   gin.HandlerFunc
	ListDocumentsHandler gin.HandlerFunc

	// Admin endpoints
	GetAllMembersHandler     gin.HandlerFunc
	AddMemberHandler         gin.HandlerFunc
	DeleteMemberHandler      gin.HandlerFunc
	ManualEditHandler        gin.HandlerFunc
	CollectPaymentHandler    gin.HandlerFunc
	RecentPaymentsHandler    gin.HandlerFunc
	GetBillingConfigHandler  gin.HandlerFunc
	SaveBillingConfigHandler gin.HandlerFunc
	SendRemindersHandler     gin.HandlerFunc
	AdminListNoticesHandler  gin.HandlerFunc
	CreateNoticeHandler      gin.HandlerFunc
	DeleteNoticeHandler      gin.HandlerFunc
	CreateDocumentHandler    gin.HandlerFunc
	DeleteDocumentHandler    gin.HandlerFunc
}
