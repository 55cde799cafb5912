package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"flatmate/services/dues"
	"flatmate/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler exposes the member-facing dues endpoints.
type PaymentHandler struct {
	Service payment.PaymentService
}

// GetQuoteHandler handles GET /api/payment/quote. It returns what the
// authenticated member owes right now, late fee included.
func (h *PaymentHandler) GetQuoteHandler(c *gin.Context) {
	memberID := c.GetString("memberID")

	quote, err := h.Service.Quote(c.Request.Context(), memberID, time.Now())
	if err != nil {
		h.renderDuesError(c, memberID, "Quote failed", err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// GetBillHandler handles GET /api/payment/bill, the member dashboard
// view of the current cycle.
func (h *PaymentHandler) GetBillHandler(c *gin.Context) {
	memberID := c.GetString("memberID")

	bill, err := h.Service.CurrentBill(c.Request.Context(), memberID, time.Now())
	if err != nil {
		h.renderDuesError(c, memberID, "Bill fetch failed", err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// GetHistoryHandler handles GET /api/payment/history.
func (h *PaymentHandler) GetHistoryHandler(c *gin.Context) {
	memberID := c.GetString("memberID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	history, err := h.Service.MemberHistory(c.Request.Context(), memberID, limit)
	if err != nil {
		h.renderDuesError(c, memberID, "History fetch failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": history})
}

func (h *PaymentHandler) renderDuesError(c *gin.Context, memberID, msg string, err error) {
	switch {
	case errors.Is(err, payment.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
	case errors.Is(err, dues.ErrNoConfig):
		c.JSON(http.StatusConflict, gin.H{"error": "Billing configuration has not been set up yet"})
	default:
		getLogger(c).Error(msg, zap.String("memberId", memberID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
