package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	g := NewRazorpayGateway("rzp_test_key", "test_secret", "")

	orderID := "order_abc123"
	paymentID := "pay_xyz789"
	valid := sign(orderID+"|"+paymentID, "test_secret")

	assert.True(t, g.VerifyPaymentSignature(orderID, paymentID, valid))
	assert.False(t, g.VerifyPaymentSignature(orderID, paymentID, sign(orderID+"|"+paymentID, "wrong_secret")))
	assert.False(t, g.VerifyPaymentSignature(orderID, "pay_other", valid))
	assert.False(t, g.VerifyPaymentSignature("", paymentID, valid))
	assert.False(t, g.VerifyPaymentSignature(orderID, paymentID, ""))
}

func TestVerifyWebhookSignature(t *testing.T) {
	g := NewRazorpayGateway("rzp_test_key", "test_secret", "whsec")

	body := []byte(`{"event":"payment.captured","payload":{}}`)
	valid := sign(string(body), "whsec")

	assert.True(t, g.VerifyWebhookSignature(body, valid))
	assert.False(t, g.VerifyWebhookSignature(body, sign(string(body), "other")))
	assert.False(t, g.VerifyWebhookSignature(body, ""))

	// Without a configured webhook secret verification fails closed.
	noSecret := NewRazorpayGateway("rzp_test_key", "test_secret", "")
	assert.False(t, noSecret.VerifyWebhookSignature(body, valid))
}

func TestCreateOrder_RejectsNonPositiveAmount(t *testing.T) {
	g := NewRazorpayGateway("rzp_test_key", "test_secret", "")

	_, err := g.CreateOrder(context.Background(), 0, "RCPT-1", nil)
	assert.ErrorIs(t, err, ErrOrderFailed)
	_, err = g.CreateOrder(context.Background(), -10, "RCPT-1", nil)
	assert.ErrorIs(t, err, ErrOrderFailed)
}
