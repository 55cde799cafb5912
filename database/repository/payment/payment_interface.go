package paymentRepo

import (
	"context"

	"flatmate/models"
)

// PaymentRepository is the append-only payment ledger under
// recentPayments. Records are pushed once and never rewritten; it is
// the source of truth for whether a member has paid the current
// billing cycle.
type PaymentRepository interface {
	// Append stores a new ledger record and returns its generated key.
	Append(ctx context.Context, rec *models.PaymentRecord) (string, error)
	// Recent returns up to limit of the newest records.
	Recent(ctx context.Context, limit int) ([]models.PaymentRecord, error)
	// ListByEmail returns the member's records, oldest first.
	ListByEmail(ctx context.Context, email string, limit int) ([]models.PaymentRecord, error)
	// ListAll returns the whole ledger.
	ListAll(ctx context.Context) ([]models.PaymentRecord, error)
}
