// Package gateway wraps the Razorpay client for online maintenance
// payments. Amounts cross this boundary in whole rupees; conversion to
// the gateway's minor units (paise) happens here and nowhere else.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"math"

	"flatmate/models"

	razorpay "github.com/razorpay/razorpay-go"
	razorpayUtils "github.com/razorpay/razorpay-go/utils"
)

// ErrOrderFailed is returned when the gateway rejects an order.
var ErrOrderFailed = errors.New("gateway: order creation failed")

// PaymentGateway is the checkout-side contract: create an order for
// the quoted amount, verify the checkout callback, and fetch payment
// details for reconciliation.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountRupees float64, receipt string, notes map[string]interface{}) (*models.GatewayOrder, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
	FetchPayment(ctx context.Context, paymentID string) (*models.GatewayPayment, error)
}

// RazorpayGateway implements PaymentGateway on the Razorpay REST API.
type RazorpayGateway struct {
	client        *razorpay.Client
	keySecret     string
	webhookSecret string
}

// NewRazorpayGateway creates a PaymentGateway with the given API
// credentials. webhookSecret may be empty when webhooks are not
// configured; webhook verification then always fails closed.
func NewRazorpayGateway(keyID, keySecret, webhookSecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client:        razorpay.NewClient(keyID, keySecret),
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

// CreateOrder registers an order with the gateway for the given rupee
// amount. The Razorpay SDK has no context support; ctx is accepted for
// interface symmetry only.
func (g *RazorpayGateway) CreateOrder(_ context.Context, amountRupees float64, receipt string, notes map[string]interface{}) (*models.GatewayOrder, error) {
	if amountRupees <= 0 {
		return nil, fmt.Errorf("%w: non-positive amount %.2f", ErrOrderFailed, amountRupees)
	}
	paise := int64(math.Round(amountRupees * 100))
	data := map[string]interface{}{
		"amount":   paise,
		"currency": "INR",
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFailed, err)
	}

	order := &models.GatewayOrder{
		OrderID:  asString(body["id"]),
		Amount:   int64(asFloat(body["amount"])),
		Currency: asString(body["currency"]),
		Receipt:  asString(body["receipt"]),
	}
	if order.OrderID == "" {
		return nil, fmt.Errorf("%w: gateway returned no order id", ErrOrderFailed)
	}
	return order, nil
}

// VerifyPaymentSignature checks the HMAC-SHA256 signature Razorpay's
// checkout returns for "orderID|paymentID".
func (g *RazorpayGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return razorpayUtils.VerifyPaymentSignature(params, signature, g.keySecret)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against
// the raw webhook body.
func (g *RazorpayGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	if g.webhookSecret == "" || signature == "" {
		return false
	}
	return razorpayUtils.VerifyWebhookSignature(string(body), signature, g.webhookSecret)
}

// FetchPayment retrieves payment details from the gateway, converting
// the paise amount back to rupees.
func (g *RazorpayGateway) FetchPayment(_ context.Context, paymentID string) (*models.GatewayPayment, error) {
	body, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to fetch payment %s: %w", paymentID, err)
	}
	return &models.GatewayPayment{
		PaymentID: asString(body["id"]),
		OrderID:   asString(body["order_id"]),
		Amount:    asFloat(body["amount"]) / 100,
		Currency:  asString(body["currency"]),
		Status:    asString(body["status"]),
		Method:    asString(body["method"]),
		Email:     asString(body["email"]),
		Contact:   asString(body["contact"]),
		CreatedAt: int64(asFloat(body["created_at"])),
	}, nil
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}
