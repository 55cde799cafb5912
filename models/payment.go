package models

// Payment methods accepted by the ledger.
const (
	MethodUPI          = "UPI"
	MethodCash         = "Cash"
	MethodCard         = "Card"
	MethodBankTransfer = "Bank Transfer"
	MethodRazorpay     = "Razorpay"
	MethodManualEdit   = "Manual Edit"
)

// PaymentRecord is one entry of the append-only ledger under
// recentPayments. Records are never mutated after creation.
//
// CreatedAt (epoch milliseconds) is the authoritative timestamp; Date
// is a display fallback in DD/MM/YYYY order kept for records written
// by older clients.
type PaymentRecord struct {
	ID                 string            `json:"id,omitempty"`
	UID                string            `json:"uid,omitempty"`
	Email              string            `json:"email,omitempty"`
	Name               string            `json:"name,omitempty"`
	Flat               string            `json:"flat,omitempty"`
	Amount             float64           `json:"amount"`
	Method             string            `json:"method"`
	MethodDetails      map[string]string `json:"methodDetails,omitempty"`
	Receipt            string            `json:"receipt"`
	Date               string            `json:"date,omitempty"`
	CreatedAt          int64             `json:"createdAt,omitempty"`
	PreviousDue        float64           `json:"previousDue"`
	RemainingDue       float64           `json:"remainingDue"`
	LateFeeAddedToDues float64           `json:"lateFeeAddedToDues,omitempty"`
	WasLatePayment     bool              `json:"wasLatePayment,omitempty"`
}

// GatewayOrder is the order handed to the Razorpay checkout. Amount is
// in minor currency units (paise), as the gateway expects.
type GatewayOrder struct {
	OrderID  string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// GatewayPayment is a payment fetched back from the gateway, with the
// amount converted to whole rupees at the application boundary.
type GatewayPayment struct {
	PaymentID string  `json:"id"`
	OrderID   string  `json:"order_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	Method    string  `json:"method"`
	Email     string  `json:"email,omitempty"`
	Contact   string  `json:"contact,omitempty"`
	CreatedAt int64   `json:"created_at"`
}
