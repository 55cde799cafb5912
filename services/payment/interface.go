package payment

import (
	"context"
	"time"

	"flatmate/models"
	"flatmate/services/dues"
)

// CollectRequest is an incoming payment to record against a member.
// Amount is clamped to the quoted MaxPayable before allocation; the
// engine itself only rejects non-positive amounts.
type CollectRequest struct {
	MemberID      string            `json:"memberId"`
	Amount        float64           `json:"amount"`
	Method        string            `json:"method"`
	MethodDetails map[string]string `json:"methodDetails,omitempty"`
	// Now overrides the allocation time; zero means time.Now().
	Now time.Time `json:"-"`
}

// CollectResult reports what was recorded.
type CollectResult struct {
	Record     models.PaymentRecord `json:"record"`
	Allocation dues.Allocation      `json:"allocation"`
	Quote      dues.Quote           `json:"quote"`
}

// Bill is the member-facing view of the current cycle.
type Bill struct {
	AmountDue         float64 `json:"amountDue"`
	Paid              bool    `json:"paid"`
	MaintenanceCharge float64 `json:"maintenanceCharge"`
	WaterCharge       float64 `json:"waterCharge"`
	SinkingFund       float64 `json:"sinkingFund"`
	Total             float64 `json:"total"`
	NextDueDate       string  `json:"nextDueDate,omitempty"` // "YYYY-MM-DD"
	Period            string  `json:"period"`
}

// Notifier receives best-effort payment confirmations. Failures are
// logged, never propagated.
type Notifier interface {
	PaymentRecorded(ctx context.Context, member models.MemberAccount, rec models.PaymentRecord)
}

// PaymentService is the collection workflow around the dues engine:
// quoting, allocating, persisting, mirroring, and ledger reads.
type PaymentService interface {
	Quote(ctx context.Context, memberID string, now time.Time) (*dues.Quote, error)
	Collect(ctx context.Context, req CollectRequest) (*CollectResult, error)
	CurrentBill(ctx context.Context, memberID string, now time.Time) (*Bill, error)
	RecentPayments(ctx context.Context, limit int) ([]models.PaymentRecord, error)
	MemberHistory(ctx context.Context, memberID string, limit int) ([]models.PaymentRecord, error)
}
