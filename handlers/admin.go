package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	billingRepo "flatmate/database/repository/billing"
	memberRepo "flatmate/database/repository/member"
	paymentRepo "flatmate/database/repository/payment"
	"flatmate/models"
	"flatmate/services/dues"
	"flatmate/services/member"
	"flatmate/services/payment"
	"flatmate/services/tasks"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AdminHandler groups the society-management endpoints: member roster,
// billing configuration, offline collections, and reminder dispatch.
type AdminHandler struct {
	Members    member.MemberService
	Payments   payment.PaymentService
	Billing    billingRepo.BillingRepository
	MemberRepo memberRepo.MemberRepository
	Ledger     paymentRepo.PaymentRepository
	Queue      *asynq.Client
}

// GetAllMembersHandler handles GET /api/admin/members.
func (h *AdminHandler) GetAllMembersHandler(c *gin.Context) {
	members, err := h.Members.GetAll(c.Request.Context())
	if err != nil {
		getLogger(c).Error("Member listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// AddMemberHandler handles POST /api/admin/members.
func (h *AdminHandler) AddMemberHandler(c *gin.Context) {
	var req member.AddMemberData
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acct, err := h.Members.AddMember(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, member.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		getLogger(c).Error("Member creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}
	c.JSON(http.StatusCreated, acct)
}

// DeleteMemberHandler handles DELETE /api/admin/members/:id.
func (h *AdminHandler) DeleteMemberHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.Members.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		getLogger(c).Error("Member deletion failed", zap.String("memberId", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete member"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member deleted"})
}

// ManualEditHandler handles PUT /api/admin/members/:id/dues. Lowering
// the balance is recorded in the ledger as a Manual Edit collection.
func (h *AdminHandler) ManualEditHandler(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Dues *float64 `json:"dues" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Dues < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dues cannot be negative"})
		return
	}

	acct, err := h.Members.ManualEdit(c.Request.Context(), id, *req.Dues)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		getLogger(c).Error("Manual edit failed", zap.String("memberId", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update dues"})
		return
	}
	c.JSON(http.StatusOK, acct)
}

// CollectPaymentHandler handles POST /api/admin/payments: an admin
// recording an offline payment (cash, UPI screenshot, bank transfer).
func (h *AdminHandler) CollectPaymentHandler(c *gin.Context) {
	var req payment.CollectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MemberID == "" || req.Method == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "memberId and method are required"})
		return
	}

	res, err := h.Payments.Collect(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		case errors.Is(err, dues.ErrNoConfig):
			c.JSON(http.StatusConflict, gin.H{"error": "Billing configuration has not been set up yet"})
		case errors.Is(err, dues.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment amount"})
		default:
			getLogger(c).Error("Collection failed", zap.String("memberId", req.MemberID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		}
		return
	}
	c.JSON(http.StatusCreated, res)
}

// RecentPaymentsHandler handles GET /api/admin/payments.
func (h *AdminHandler) RecentPaymentsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := h.Payments.RecentPayments(c.Request.Context(), limit)
	if err != nil {
		getLogger(c).Error("Payment listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list payments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": records})
}

// GetBillingConfigHandler handles GET /api/admin/config.
func (h *AdminHandler) GetBillingConfigHandler(c *gin.Context) {
	cfg, err := h.Billing.Get(c.Request.Context())
	if err != nil {
		getLogger(c).Error("Config fetch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch configuration"})
		return
	}
	if cfg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Billing configuration has not been set up yet"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// SaveBillingConfigHandler handles PUT /api/admin/config.
func (h *AdminHandler) SaveBillingConfigHandler(c *gin.Context) {
	var cfg models.BillingConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if cfg.MaintenanceCharge < 0 || cfg.WaterCharge < 0 || cfg.SinkingFund < 0 || cfg.LateFee < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Charges cannot be negative"})
		return
	}
	if err := h.Billing.Save(c.Request.Context(), &cfg); err != nil {
		getLogger(c).Error("Config save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save configuration"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// SendRemindersHandler handles POST /api/admin/reminders: enqueue a
// dues reminder for every unpaid member with a push token.
func (h *AdminHandler) SendRemindersHandler(c *gin.Context) {
	logger := getLogger(c)

	if h.Queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Reminder queue not configured"})
		return
	}

	ctx := c.Request.Context()
	cfg, err := h.Billing.Get(ctx)
	if err != nil {
		logger.Error("Config fetch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch configuration"})
		return
	}
	members, err := h.MemberRepo.GetAll(ctx)
	if err != nil {
		logger.Error("Member listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
		return
	}
	history, err := h.Ledger.ListAll(ctx)
	if err != nil {
		logger.Error("Ledger listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read ledger"})
		return
	}

	enqueued, err := tasks.EnqueueDuesReminders(h.Queue, cfg, members, history, time.Now(), time.Time{})
	if err != nil {
		if errors.Is(err, dues.ErrNoConfig) {
			c.JSON(http.StatusConflict, gin.H{"error": "Billing configuration has not been set up yet"})
			return
		}
		logger.Error("Reminder enqueue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule reminders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scheduled": enqueued})
}
