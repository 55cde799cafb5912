package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	billingRepo "flatmate/database/repository/billing"
	memberRepo "flatmate/database/repository/member"
	paymentRepo "flatmate/database/repository/payment"
	"flatmate/models"
	"flatmate/services/dues"
	"flatmate/utils"

	"go.uber.org/zap"
)

// ErrMemberNotFound is returned when the target member does not exist.
var ErrMemberNotFound = errors.New("payment: member not found")

const defaultRecentLimit = 50

// DefaultPaymentService implements PaymentService. All monetary
// decisions are delegated to the dues engine; this service owns the
// surrounding transaction: snapshotting state, persisting the
// allocation, appending the ledger record, and the best-effort side
// effects (legacy mirror, push notification).
type DefaultPaymentService struct {
	Members  memberRepo.MemberRepository
	Ledger   paymentRepo.PaymentRepository
	Billing  billingRepo.BillingRepository
	Notifier Notifier
}

// NewPaymentService creates a PaymentService with the given
// dependencies. Notifier may be nil.
func NewPaymentService(members memberRepo.MemberRepository, ledger paymentRepo.PaymentRepository, billing billingRepo.BillingRepository, notifier Notifier) PaymentService {
	return &DefaultPaymentService{
		Members:  members,
		Ledger:   ledger,
		Billing:  billing,
		Notifier: notifier,
	}
}

func (s *DefaultPaymentService) Quote(ctx context.Context, memberID string, now time.Time) (*dues.Quote, error) {
	member, cfg, history, err := s.snapshot(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if now.IsZero() {
		now = time.Now()
	}
	q, err := dues.QuotePayment(*member, cfg, history, now)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *DefaultPaymentService) Collect(ctx context.Context, req CollectRequest) (*CollectResult, error) {
	logger := utils.GetLogger().With(zap.String("memberId", req.MemberID), zap.String("method", req.Method))

	member, cfg, history, err := s.snapshot(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	quote, err := dues.QuotePayment(*member, cfg, history, now)
	if err != nil {
		return nil, err
	}
	amount := math.Min(req.Amount, quote.MaxPayable)

	alloc, err := dues.AllocatePayment(*member, cfg, history, now, amount)
	if err != nil {
		return nil, err
	}

	upd := models.FinancialUpdate{
		Dues:              alloc.NewPending,
		Paid:              alloc.NewPaidTotal,
		LateFeeAssessedOn: alloc.NewLateFeeAssessedOn,
	}
	if err := s.Members.ApplyFinancialUpdate(ctx, member.ID, upd); err != nil {
		return nil, fmt.Errorf("payment: failed to update member %s: %w", member.ID, err)
	}

	rec := models.PaymentRecord{
		UID:           member.ID,
		Email:         member.Email,
		Name:          member.FullName,
		Flat:          member.FlatNumber,
		Amount:        amount,
		Method:        req.Method,
		MethodDetails: req.MethodDetails,
		Receipt:       newReceipt(now),
		Date:          now.Format("02/01/2006"),
		CreatedAt:     now.UnixMilli(),
		PreviousDue:   quote.Pending,
		RemainingDue:  alloc.NewPending,
	}
	if alloc.LateFeeApplied {
		rec.LateFeeAddedToDues = quote.LateFeeToAssess
		rec.WasLatePayment = true
	}
	id, err := s.Ledger.Append(ctx, &rec)
	if err != nil {
		// The member balance already moved; the ledger append must be
		// surfaced so an admin can reconcile.
		logger.Error("Ledger append failed after balance update", zap.Error(err))
		return nil, fmt.Errorf("payment: failed to append ledger record: %w", err)
	}
	rec.ID = id

	s.updateMirror(ctx, logger, member, amount, alloc)

	if s.Notifier != nil {
		s.Notifier.PaymentRecorded(ctx, *member, rec)
	}

	logger.Info("Payment recorded",
		zap.String("receipt", rec.Receipt),
		zap.Float64("amount", amount),
		zap.Float64("remainingDue", alloc.NewPending),
		zap.Bool("lateFee", alloc.LateFeeApplied))

	return &CollectResult{Record: rec, Allocation: alloc, Quote: quote}, nil
}

func (s *DefaultPaymentService) CurrentBill(ctx context.Context, memberID string, now time.Time) (*Bill, error) {
	member, cfg, history, err := s.snapshot(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if now.IsZero() {
		now = time.Now()
	}

	bill := &Bill{Period: dues.PeriodOf(now)}
	if cfg != nil {
		bill.MaintenanceCharge = cfg.MaintenanceCharge
		bill.WaterCharge = cfg.WaterCharge
		bill.SinkingFund = cfg.SinkingFund
		bill.Total = cfg.RecurringCharge()
		if due, ok := dues.NextDueDate(cfg, now); ok {
			bill.NextDueDate = due.Format("2006-01-02")
		}
	}
	bill.Paid = dues.HasPaidCurrentCycle(*member, history, now)
	bill.AmountDue = dues.ComputePending(*member, cfg, history, now)
	return bill, nil
}

func (s *DefaultPaymentService) RecentPayments(ctx context.Context, limit int) ([]models.PaymentRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.Ledger.Recent(ctx, limit)
}

func (s *DefaultPaymentService) MemberHistory(ctx context.Context, memberID string, limit int) ([]models.PaymentRecord, error) {
	member, err := s.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	history, err := s.history(ctx, member)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

// snapshot loads everything an allocation decision needs in one place:
// the member, the billing config, and the member's ledger slice.
func (s *DefaultPaymentService) snapshot(ctx context.Context, memberID string) (*models.MemberAccount, *models.BillingConfig, []models.PaymentRecord, error) {
	member, err := s.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, nil, nil, err
	}
	if member == nil {
		return nil, nil, nil, ErrMemberNotFound
	}
	cfg, err := s.Billing.Get(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	history, err := s.history(ctx, member)
	if err != nil {
		return nil, nil, nil, err
	}
	return member, cfg, history, nil
}

// history returns the ledger records that could belong to the member.
// Members without an email cannot be queried by index, so the engine
// filters the full ledger by flat instead.
func (s *DefaultPaymentService) history(ctx context.Context, member *models.MemberAccount) ([]models.PaymentRecord, error) {
	if member.Email != "" {
		return s.Ledger.ListByEmail(ctx, member.Email, 0)
	}
	return s.Ledger.ListAll(ctx)
}

// updateMirror propagates the new balances to the legacy members/{id}
// row. Failures are logged and swallowed; the canonical record has
// already committed.
func (s *DefaultPaymentService) updateMirror(ctx context.Context, logger *zap.Logger, member *models.MemberAccount, amount float64, alloc dues.Allocation) {
	mirror, err := s.Members.FindMirror(ctx, member.Email, member.FlatNumber)
	if err != nil {
		logger.Warn("Mirror lookup failed", zap.Error(err))
		return
	}
	if mirror == nil {
		return
	}
	upd := models.FinancialUpdate{
		Dues:              alloc.NewPending,
		Paid:              math.Round((mirror.Paid+amount)*100) / 100,
		LateFeeAssessedOn: alloc.NewLateFeeAssessedOn,
	}
	if err := s.Members.ApplyMirrorFinancialUpdate(ctx, mirror.ID, upd); err != nil {
		logger.Warn("Mirror update failed", zap.String("mirrorId", mirror.ID), zap.Error(err))
	}
}

// newReceipt builds a human-readable receipt number unique enough for
// a single society's ledger.
func newReceipt(now time.Time) string {
	return fmt.Sprintf("RCPT-%d-%d", now.UnixMilli(), 1000+rand.Intn(9000))
}
