// Package dues is the recurring-dues and payment-allocation engine.
//
// Every function here is a pure computation over snapshots handed in
// by the caller: a member account, the billing configuration, and the
// payment ledger. The engine performs no I/O, caches nothing, and
// never mutates its inputs; persisting the results of an allocation is
// the caller's transaction.
package dues

import (
	"math"
	"time"

	"flatmate/models"
)

// Quote is the amount a member owes right now, split into outstanding
// dues and a newly assessable late fee. MaxPayable is the ceiling a
// payment UI may offer as "pay in full".
type Quote struct {
	Pending         float64 `json:"pending"`
	LateFeeToAssess float64 `json:"lateFeeToAssess"`
	MaxPayable      float64 `json:"maxPayable"`
	Period          string  `json:"period"` // "YYYY-MM"
}

// Allocation is the outcome of applying a tendered amount to a quote:
// dues are settled first, then the late fee.
type Allocation struct {
	NewPending           float64 `json:"newPending"`
	NewPaidTotal         float64 `json:"newPaidTotal"`
	NewLateFeeAssessedOn string  `json:"newLateFeeAssessedOn,omitempty"`
	LateFeeApplied       bool    `json:"lateFeeApplied"`
}

// HasPaidCurrentCycle reports whether at least one ledger record
// matches the member and falls in now's calendar month. Records whose
// timestamp cannot be derived never count as a payment.
func HasPaidCurrentCycle(member models.MemberAccount, history []models.PaymentRecord, now time.Time) bool {
	for _, p := range history {
		if !matchesMember(p, member) {
			continue
		}
		t, ok := paymentTime(p, now.Location())
		if !ok {
			continue
		}
		if t.Year() == now.Year() && t.Month() == now.Month() {
			return true
		}
	}
	return false
}

// ComputePending returns the amount owed for the current cycle: zero
// once the cycle is paid, otherwise the config-derived recurring
// charge. The persisted per-member dues override is deliberately
// ignored here; cycle status is driven by configuration and ledger
// alone. A missing config yields zero, since no charge can be
// computed.
func ComputePending(member models.MemberAccount, cfg *models.BillingConfig, history []models.PaymentRecord, now time.Time) float64 {
	if cfg == nil {
		return 0
	}
	if HasPaidCurrentCycle(member, history, now) {
		return 0
	}
	return cfg.RecurringCharge()
}

// IsLate reports whether now falls past the configured monthly due
// day. A due day exceeding the length of the current month is clamped
// to its last day, so a dueDay of 31 means end-of-month in February.
// Without a valid due day the answer is always false.
func IsLate(cfg *models.BillingConfig, now time.Time) bool {
	day := dueDay(cfg)
	if day < 1 || day > 31 {
		return false
	}
	if last := lastDayOfMonth(now); day > last {
		day = last
	}
	return now.Day() > day
}

// QuotePayment computes what the member can pay right now.
//
// Pending reconciles two populations: a member with a tracked running
// balance keeps that balance; a member who has never been billed and
// never paid owes the recurring charge. The late fee is assessed at
// most once per period per member, keyed on LateFeeAssessedOn, so
// repeated quotes within a period stay idempotent.
func QuotePayment(member models.MemberAccount, cfg *models.BillingConfig, history []models.PaymentRecord, now time.Time) (Quote, error) {
	if cfg == nil {
		return Quote{}, ErrNoConfig
	}
	pending := member.Dues
	if pending <= 0 {
		if member.Paid == 0 {
			pending = cfg.RecurringCharge()
		} else {
			pending = 0
		}
	}
	q := Quote{
		Pending: pending,
		Period:  PeriodOf(now),
	}
	if IsLate(cfg, now) && cfg.LateFee > 0 && pending > 0 && member.LateFeeAssessedOn != q.Period {
		q.LateFeeToAssess = cfg.LateFee
	}
	q.MaxPayable = q.Pending + q.LateFeeToAssess
	return q, nil
}

// AllocatePayment applies amountTendered to the member's quote, dues
// first and the newly assessed late fee second. The caller clamps the
// amount to Quote.MaxPayable; the engine only rejects amounts that are
// non-positive or non-finite.
//
// A late fee is marked assessed (NewLateFeeAssessedOn = period) the
// moment it is charged, even when the tendered amount does not cover
// it: the fee is owed from assessment time and survives in NewPending.
func AllocatePayment(member models.MemberAccount, cfg *models.BillingConfig, history []models.PaymentRecord, now time.Time, amountTendered float64) (Allocation, error) {
	if amountTendered <= 0 || math.IsNaN(amountTendered) || math.IsInf(amountTendered, 0) {
		return Allocation{}, ErrInvalidAmount
	}
	q, err := QuotePayment(member, cfg, history, now)
	if err != nil {
		return Allocation{}, err
	}

	duesSettled := math.Min(q.Pending, amountTendered)
	remainingAfterDues := math.Max(0, amountTendered-q.Pending)
	feeSettled := math.Min(q.LateFeeToAssess, remainingAfterDues)

	alloc := Allocation{
		NewPending:           round2((q.Pending - duesSettled) + (q.LateFeeToAssess - feeSettled)),
		NewPaidTotal:         round2(member.Paid + amountTendered),
		NewLateFeeAssessedOn: member.LateFeeAssessedOn,
		LateFeeApplied:       q.LateFeeToAssess > 0,
	}
	if q.LateFeeToAssess > 0 {
		alloc.NewLateFeeAssessedOn = q.Period
	}
	return alloc, nil
}

// round2 rounds to two decimal places, matching how amounts are
// persisted.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
