package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"flatmate/models"
	"flatmate/services/dues"
	"flatmate/services/gateway"
	"flatmate/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GatewayHandler exposes the Razorpay checkout endpoints. The order
// amount always comes from the member's server-side quote, so a
// tampered client cannot underpay.
type GatewayHandler struct {
	Gateway  gateway.PaymentGateway
	Payments payment.PaymentService
}

// CreateOrderHandler handles POST /api/payment/create-order.
func (h *GatewayHandler) CreateOrderHandler(c *gin.Context) {
	logger := getLogger(c)
	memberID := c.GetString("memberID")

	var req struct {
		// Amount lets a member pay part of the quote; zero means pay
		// in full.
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.Payments.Quote(c.Request.Context(), memberID, time.Now())
	if err != nil {
		h.renderError(c, memberID, "Order creation failed", err)
		return
	}
	if quote.MaxPayable <= 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Nothing is due for this cycle"})
		return
	}

	amount := quote.MaxPayable
	if req.Amount > 0 && req.Amount < amount {
		amount = req.Amount
	}

	order, err := h.Gateway.CreateOrder(c.Request.Context(), amount, "", map[string]interface{}{
		"memberId": memberID,
	})
	if err != nil {
		logger.Error("Gateway order failed", zap.String("memberId", memberID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create payment order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"quote": quote,
	})
}

// VerifyPaymentHandler handles POST /api/payment/verify: the checkout
// callback. On a valid signature the captured amount is fetched from
// the gateway and allocated against the member's dues.
func (h *GatewayHandler) VerifyPaymentHandler(c *gin.Context) {
	logger := getLogger(c)
	memberID := c.GetString("memberID")

	var req struct {
		RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
		RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
		RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.Gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		logger.Warn("Payment signature verification failed",
			zap.String("memberId", memberID),
			zap.String("orderId", req.RazorpayOrderID))
		c.JSON(http.StatusBadRequest, gin.H{"verified": false, "error": "Invalid payment signature"})
		return
	}

	gw, err := h.Gateway.FetchPayment(c.Request.Context(), req.RazorpayPaymentID)
	if err != nil {
		logger.Error("Payment fetch failed", zap.String("paymentId", req.RazorpayPaymentID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to confirm payment with gateway"})
		return
	}
	if gw.Status != "captured" && gw.Status != "authorized" {
		c.JSON(http.StatusConflict, gin.H{"verified": false, "error": "Payment not captured", "status": gw.Status})
		return
	}

	res, err := h.Payments.Collect(c.Request.Context(), payment.CollectRequest{
		MemberID: memberID,
		Amount:   gw.Amount,
		Method:   models.MethodRazorpay,
		MethodDetails: map[string]string{
			"paymentId": gw.PaymentID,
			"orderId":   gw.OrderID,
		},
	})
	if err != nil {
		h.renderError(c, memberID, "Payment allocation failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"verified": true,
		"record":   res.Record,
		"balance":  res.Allocation,
	})
}

// GetPaymentHandler handles GET /api/payment/gateway/:paymentId.
func (h *GatewayHandler) GetPaymentHandler(c *gin.Context) {
	paymentID := c.Param("paymentId")
	gw, err := h.Gateway.FetchPayment(c.Request.Context(), paymentID)
	if err != nil {
		getLogger(c).Error("Payment fetch failed", zap.String("paymentId", paymentID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	c.JSON(http.StatusOK, gw)
}

// WebhookHandler handles POST /api/payment/webhook. Allocation happens
// on the verify endpoint; the webhook is an audit trail for captures
// that never returned to the app.
func (h *GatewayHandler) WebhookHandler(c *gin.Context) {
	logger := getLogger(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable body"})
		return
	}
	signature := c.GetHeader("X-Razorpay-Signature")
	if !h.Gateway.VerifyWebhookSignature(body, signature) {
		logger.Warn("Webhook signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}

	var event struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}
	logger.Info("Gateway webhook received", zap.String("event", event.Event))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *GatewayHandler) renderError(c *gin.Context, memberID, msg string, err error) {
	switch {
	case errors.Is(err, payment.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
	case errors.Is(err, dues.ErrNoConfig):
		c.JSON(http.StatusConflict, gin.H{"error": "Billing configuration has not been set up yet"})
	case errors.Is(err, dues.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment amount"})
	default:
		getLogger(c).Error(msg, zap.String("memberId", memberID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
