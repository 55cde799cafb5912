package dues

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatmate/models"
)

func testConfig() *models.BillingConfig {
	return &models.BillingConfig{
		MaintenanceCharge: 1000,
		WaterCharge:       200,
		SinkingFund:       100,
		DueDateISO:        "2025-03-25",
		LateFee:           50,
	}
}

func newMember() models.MemberAccount {
	return models.MemberAccount{
		ID:         "u1",
		FullName:   "Asha Rao",
		FlatNumber: "101",
		Email:      "a@x.com",
	}
}

func onTime() time.Time {
	return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func late() time.Time {
	return time.Date(2025, time.March, 28, 12, 0, 0, 0, time.UTC)
}

func TestHasPaidCurrentCycle_EmailMatchWinsOverFlatMismatch(t *testing.T) {
	member := newMember()
	now := onTime()
	history := []models.PaymentRecord{
		{Email: "A@X.COM ", Flat: "999", Amount: 1300, CreatedAt: now.Add(-48 * time.Hour).UnixMilli()},
	}
	assert.True(t, HasPaidCurrentCycle(member, history, now))
}

func TestHasPaidCurrentCycle_EmailMismatchDisqualifiesDespiteFlatMatch(t *testing.T) {
	member := newMember()
	history := []models.PaymentRecord{
		{Email: "other@x.com", Flat: "101", Amount: 1300, CreatedAt: onTime().UnixMilli()},
	}
	assert.False(t, HasPaidCurrentCycle(member, history, onTime()))
}

func TestHasPaidCurrentCycle_FlatFallbackWhenEmailAbsent(t *testing.T) {
	member := newMember()
	history := []models.PaymentRecord{
		{Flat: "101", Amount: 1300, CreatedAt: onTime().UnixMilli()},
	}
	assert.True(t, HasPaidCurrentCycle(member, history, onTime()))
}

func TestHasPaidCurrentCycle_DateStringFallbackIsDayMonthYear(t *testing.T) {
	member := newMember()
	// 05/03/2025 is the 5th of March, not the 3rd of May.
	history := []models.PaymentRecord{
		{Email: "a@x.com", Amount: 1300, Date: "05/03/2025"},
	}
	assert.True(t, HasPaidCurrentCycle(member, history, onTime()))

	may := time.Date(2025, time.May, 3, 0, 0, 0, 0, time.UTC)
	assert.False(t, HasPaidCurrentCycle(member, history, may))
}

func TestHasPaidCurrentCycle_UnparseableRecordsNeverCount(t *testing.T) {
	member := newMember()
	history := []models.PaymentRecord{
		{Email: "a@x.com", Amount: 1300},                          // no timestamp at all
		{Email: "a@x.com", Amount: 1300, Date: "not-a-date"},      // garbage
		{Email: "a@x.com", Amount: 1300, Date: "31/02/2025"},      // impossible calendar day
		{Amount: 1300, CreatedAt: onTime().UnixMilli()},           // no matching key
	}
	assert.False(t, HasPaidCurrentCycle(member, history, onTime()))
}

func TestComputePending(t *testing.T) {
	member := newMember()
	cfg := testConfig()

	assert.Equal(t, 1300.0, ComputePending(member, cfg, nil, onTime()))

	paidHistory := []models.PaymentRecord{
		{Email: "a@x.com", Amount: 1300, CreatedAt: onTime().UnixMilli()},
	}
	assert.Equal(t, 0.0, ComputePending(member, cfg, paidHistory, onTime()))

	// The persisted dues override is ignored for cycle status.
	member.Dues = 9999
	assert.Equal(t, 0.0, ComputePending(member, cfg, paidHistory, onTime()))

	assert.Equal(t, 0.0, ComputePending(member, nil, nil, onTime()))
}

func TestIsLate(t *testing.T) {
	cfg := testConfig()
	assert.False(t, IsLate(cfg, onTime()))
	assert.True(t, IsLate(cfg, late()))
	// Exactly on the due day is not late.
	assert.False(t, IsLate(cfg, time.Date(2025, time.March, 25, 23, 0, 0, 0, time.UTC)))
}

func TestIsLate_LegacyDueDateFallback(t *testing.T) {
	cfg := &models.BillingConfig{DueDate: "25", LateFee: 50}
	assert.True(t, IsLate(cfg, late()))
	assert.False(t, IsLate(cfg, onTime()))
}

func TestIsLate_NoValidDueDay(t *testing.T) {
	assert.False(t, IsLate(&models.BillingConfig{}, late()))
	assert.False(t, IsLate(&models.BillingConfig{DueDate: "42"}, late()))
	assert.False(t, IsLate(nil, late()))
}

func TestIsLate_DueDayClampedToShortMonth(t *testing.T) {
	cfg := &models.BillingConfig{DueDateISO: "2025-01-31", LateFee: 50}
	// February has 28 days in 2025; the 31st clamps to the 28th, so the
	// 28th itself is on time and the month never goes late.
	assert.False(t, IsLate(cfg, time.Date(2025, time.February, 28, 10, 0, 0, 0, time.UTC)))
	assert.False(t, IsLate(cfg, time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)))
}

func TestQuotePayment_FullOnTime(t *testing.T) {
	q, err := QuotePayment(newMember(), testConfig(), nil, onTime())
	require.NoError(t, err)
	assert.Equal(t, 1300.0, q.Pending)
	assert.Equal(t, 0.0, q.LateFeeToAssess)
	assert.Equal(t, 1300.0, q.MaxPayable)
	assert.Equal(t, "2025-03", q.Period)
}

func TestQuotePayment_DuesOverrideTakesPrecedence(t *testing.T) {
	member := newMember()
	member.Dues = 700
	member.Paid = 2600
	q, err := QuotePayment(member, testConfig(), nil, onTime())
	require.NoError(t, err)
	assert.Equal(t, 700.0, q.Pending)
}

func TestQuotePayment_SettledMemberOwesNothing(t *testing.T) {
	member := newMember()
	member.Dues = 0
	member.Paid = 2600 // has paid before, balance cleared
	q, err := QuotePayment(member, testConfig(), nil, onTime())
	require.NoError(t, err)
	assert.Equal(t, 0.0, q.Pending)
	assert.Equal(t, 0.0, q.MaxPayable)
}

func TestQuotePayment_NoConfig(t *testing.T) {
	_, err := QuotePayment(newMember(), nil, nil, onTime())
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestQuotePayment_LateFeeAssessedOncePerPeriod(t *testing.T) {
	member := newMember()
	cfg := testConfig()

	q, err := QuotePayment(member, cfg, nil, late())
	require.NoError(t, err)
	assert.Equal(t, 50.0, q.LateFeeToAssess)
	assert.Equal(t, 1350.0, q.MaxPayable)

	// Once the period is stamped on the member, repeated quotes in the
	// same month never re-assess, no matter how often they run.
	member.LateFeeAssessedOn = q.Period
	for i := 0; i < 3; i++ {
		again, err := QuotePayment(member, cfg, nil, late())
		require.NoError(t, err)
		assert.Equal(t, 0.0, again.LateFeeToAssess)
		assert.Equal(t, again.Pending, again.MaxPayable)
	}
}

func TestQuotePayment_NoLateFeeWithoutPending(t *testing.T) {
	member := newMember()
	member.Paid = 2600 // nothing pending
	q, err := QuotePayment(member, testConfig(), nil, late())
	require.NoError(t, err)
	assert.Equal(t, 0.0, q.LateFeeToAssess)
}

func TestAllocatePayment_FullOnTime(t *testing.T) {
	member := newMember()
	alloc, err := AllocatePayment(member, testConfig(), nil, onTime(), 1300)
	require.NoError(t, err)
	assert.Equal(t, 0.0, alloc.NewPending)
	assert.Equal(t, 1300.0, alloc.NewPaidTotal)
	assert.False(t, alloc.LateFeeApplied)
	assert.Empty(t, alloc.NewLateFeeAssessedOn)
}

func TestAllocatePayment_LateFullPaymentStampsPeriod(t *testing.T) {
	member := newMember()
	cfg := testConfig()

	alloc, err := AllocatePayment(member, cfg, nil, late(), 1350)
	require.NoError(t, err)
	assert.Equal(t, 0.0, alloc.NewPending)
	assert.Equal(t, 1350.0, alloc.NewPaidTotal)
	assert.True(t, alloc.LateFeeApplied)
	assert.Equal(t, "2025-03", alloc.NewLateFeeAssessedOn)

	// With the stamp persisted, the next quote in the month sees no fee.
	member.Dues = alloc.NewPending
	member.Paid = alloc.NewPaidTotal
	member.LateFeeAssessedOn = alloc.NewLateFeeAssessedOn
	q, err := QuotePayment(member, cfg, nil, late())
	require.NoError(t, err)
	assert.Equal(t, 0.0, q.LateFeeToAssess)
}

func TestAllocatePayment_PartialPaymentDuesFirst(t *testing.T) {
	member := newMember()
	alloc, err := AllocatePayment(member, testConfig(), nil, late(), 1000)
	require.NoError(t, err)
	// 1000 settles dues only: 300 of dues plus the whole 50 fee remain.
	assert.Equal(t, 350.0, alloc.NewPending)
	assert.Equal(t, 1000.0, alloc.NewPaidTotal)
	// The fee is charged at assessment time even though it was not
	// collected.
	assert.True(t, alloc.LateFeeApplied)
	assert.Equal(t, "2025-03", alloc.NewLateFeeAssessedOn)
}

func TestAllocatePayment_InvalidAmounts(t *testing.T) {
	member := newMember()
	cfg := testConfig()
	for _, amount := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := AllocatePayment(member, cfg, nil, onTime(), amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestAllocatePayment_NoConfig(t *testing.T) {
	_, err := AllocatePayment(newMember(), nil, nil, onTime(), 100)
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestAllocatePayment_PendingNeverNegative(t *testing.T) {
	cfg := testConfig()
	for _, pending := range []float64{0, 50, 1300} {
		for _, paid := range []float64{0, 1300} {
			member := newMember()
			member.Dues = pending
			member.Paid = paid
			q, err := QuotePayment(member, cfg, nil, late())
			require.NoError(t, err)
			for amount := 50.0; amount <= q.MaxPayable; amount += 50 {
				alloc, err := AllocatePayment(member, cfg, nil, late(), amount)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, alloc.NewPending, 0.0)
				// Conservation: lifetime paid grows by exactly the
				// tendered amount.
				assert.Equal(t, round2(member.Paid+amount), alloc.NewPaidTotal)
			}
		}
	}
}

func TestPeriodOf(t *testing.T) {
	assert.Equal(t, "2025-03", PeriodOf(onTime()))
	assert.Equal(t, "2024-12", PeriodOf(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)))
}

func TestNextDueDate(t *testing.T) {
	cfg := testConfig() // due day 25

	// Before the due day: this month's.
	due, ok := NextDueDate(cfg, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "2025-03-25", due.Format("2006-01-02"))

	// On the due day it is still today.
	due, ok = NextDueDate(cfg, time.Date(2025, time.March, 25, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "2025-03-25", due.Format("2006-01-02"))

	// Past it: next month's.
	due, ok = NextDueDate(cfg, time.Date(2025, time.March, 28, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "2025-04-25", due.Format("2006-01-02"))

	// A day-31 schedule clamps to short months.
	cfg.DueDateISO = "2025-01-31"
	due, ok = NextDueDate(cfg, time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "2025-02-28", due.Format("2006-01-02"))

	// No configured due day at all.
	_, ok = NextDueDate(&models.BillingConfig{}, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}
