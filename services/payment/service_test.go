package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"flatmate/models"
	"flatmate/services/dues"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemberRepo struct {
	members       map[string]*models.MemberAccount
	mirror        *models.MirrorMember
	mirrorUpdates []models.FinancialUpdate
	mirrorErr     error
	applied       map[string]models.FinancialUpdate
}

func (f *fakeMemberRepo) Create(ctx context.Context, m *models.MemberAccount) error { return nil }
func (f *fakeMemberRepo) GetByID(ctx context.Context, id string) (*models.MemberAccount, error) {
	return f.members[id], nil
}
func (f *fakeMemberRepo) GetByEmail(ctx context.Context, email string) (*models.MemberAccount, error) {
	for _, m := range f.members {
		if m.Email == email {
			return m, nil
		}
	}
	return nil, nil
}
func (f *fakeMemberRepo) GetAll(ctx context.Context) ([]models.MemberAccount, error) {
	return nil, nil
}
func (f *fakeMemberRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return nil
}
func (f *fakeMemberRepo) ApplyFinancialUpdate(ctx context.Context, id string, upd models.FinancialUpdate) error {
	if f.applied == nil {
		f.applied = make(map[string]models.FinancialUpdate)
	}
	f.applied[id] = upd
	if m, ok := f.members[id]; ok {
		m.Dues = upd.Dues
		m.Paid = upd.Paid
		m.LateFeeAssessedOn = upd.LateFeeAssessedOn
	}
	return nil
}
func (f *fakeMemberRepo) Delete(ctx context.Context, id string) error { return nil }
func (f *fakeMemberRepo) CreateMirror(ctx context.Context, m *models.MirrorMember) (string, error) {
	return "", nil
}
func (f *fakeMemberRepo) FindMirror(ctx context.Context, email, flat string) (*models.MirrorMember, error) {
	return f.mirror, f.mirrorErr
}
func (f *fakeMemberRepo) ApplyMirrorFinancialUpdate(ctx context.Context, id string, upd models.FinancialUpdate) error {
	if f.mirrorErr != nil {
		return f.mirrorErr
	}
	f.mirrorUpdates = append(f.mirrorUpdates, upd)
	return nil
}
func (f *fakeMemberRepo) DeleteMirror(ctx context.Context, id string) error { return nil }

type fakeLedger struct {
	records   []models.PaymentRecord
	appendErr error
}

func (f *fakeLedger) Append(ctx context.Context, rec *models.PaymentRecord) (string, error) {
	if f.appendErr != nil {
		return "", f.appendErr
	}
	f.records = append(f.records, *rec)
	return "rec-1", nil
}
func (f *fakeLedger) Recent(ctx context.Context, limit int) ([]models.PaymentRecord, error) {
	return f.records, nil
}
func (f *fakeLedger) ListByEmail(ctx context.Context, email string, limit int) ([]models.PaymentRecord, error) {
	var out []models.PaymentRecord
	for _, r := range f.records {
		if r.Email == email {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *fakeLedger) ListAll(ctx context.Context) ([]models.PaymentRecord, error) {
	return f.records, nil
}

type fakeBilling struct {
	cfg *models.BillingConfig
}

func (f *fakeBilling) Get(ctx context.Context) (*models.BillingConfig, error) { return f.cfg, nil }
func (f *fakeBilling) Save(ctx context.Context, cfg *models.BillingConfig) error {
	f.cfg = cfg
	return nil
}

type fakeNotifier struct {
	recorded []models.PaymentRecord
}

func (f *fakeNotifier) PaymentRecorded(ctx context.Context, member models.MemberAccount, rec models.PaymentRecord) {
	f.recorded = append(f.recorded, rec)
}

func testConfig() *models.BillingConfig {
	return &models.BillingConfig{
		MaintenanceCharge: 500,
		WaterCharge:       300,
		SinkingFund:       500,
		LateFee:           50,
		DueDateISO:        "2025-01-10",
	}
}

func newTestService(members *fakeMemberRepo, ledger *fakeLedger, billing *fakeBilling, n Notifier) *DefaultPaymentService {
	return &DefaultPaymentService{Members: members, Ledger: ledger, Billing: billing, Notifier: n}
}

func TestCollect_FullPaymentOnTime(t *testing.T) {
	members := &fakeMemberRepo{members: map[string]*models.MemberAccount{
		"u1": {ID: "u1", FullName: "Asha Rao", FlatNumber: "A-101", Email: "asha@example.com", Dues: 1300, Paid: 0},
	}}
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	svc := newTestService(members, ledger, &fakeBilling{cfg: testConfig()}, notifier)

	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	res, err := svc.Collect(context.Background(), CollectRequest{
		MemberID: "u1", Amount: 1300, Method: models.MethodUPI, Now: now,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Allocation.NewPending)
	assert.Equal(t, 1300.0, res.Allocation.NewPaidTotal)
	assert.False(t, res.Allocation.LateFeeApplied)

	require.Len(t, ledger.records, 1)
	rec := ledger.records[0]
	assert.Equal(t, "u1", rec.UID)
	assert.Equal(t, "asha@example.com", rec.Email)
	assert.Equal(t, 1300.0, rec.Amount)
	assert.Equal(t, 1300.0, rec.PreviousDue)
	assert.Equal(t, 0.0, rec.RemainingDue)
	assert.Equal(t, "05/03/2025", rec.Date)
	assert.Equal(t, now.UnixMilli(), rec.CreatedAt)
	assert.Regexp(t, `^RCPT-\d+-\d{4}$`, rec.Receipt)
	assert.False(t, rec.WasLatePayment)

	require.Len(t, notifier.recorded, 1)
	assert.Equal(t, rec.Receipt, notifier.recorded[0].Receipt)
}

func TestCollect_LatePaymentAssessesFee(t *testing.T) {
	members := &fakeMemberRepo{members: map[string]*models.MemberAccount{
		"u1": {ID: "u1", FullName: "Asha Rao", FlatNumber: "A-101", Email: "asha@example.com", Dues: 1300},
	}}
	ledger := &fakeLedger{}
	svc := newTestService(members, ledger, &fakeBilling{cfg: testConfig()}, nil)

	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	res, err := svc.Collect(context.Background(), CollectRequest{
		MemberID: "u1", Amount: 1350, Method: models.MethodCash, Now: now,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Allocation.NewPending)
	assert.Equal(t, "2025-03", res.Allocation.NewLateFeeAssessedOn)
	assert.True(t, res.Allocation.LateFeeApplied)

	rec := ledger.records[0]
	assert.Equal(t, 50.0, rec.LateFeeAddedToDues)
	assert.True(t, rec.WasLatePayment)

	// The fee was stamped, so a second quote in the same period does
	// not assess it again.
	q, err := svc.Quote(context.Background(), "u1", now)
	require.NoError(t, err)
	assert.Equal(t, 0.0, q.LateFeeToAssess)
}

func TestCollect_PartialLatePaymentKeepsFeeOwed(t *testing.T) {
	members := &fakeMemberRepo{members: map[string]*models.MemberAccount{
		"u1": {ID: "u1", FlatNumber: "A-101", Email: "asha@example.com", Dues: 1300},
	}}
	ledger := &fakeLedger{}
	svc := newTestService(members, ledger, &fakeBilling{cfg: testConfig()}, nil)

	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	res, err := svc.Collect(context.Background(), CollectRequest{
		MemberID: "u1", Amount: 1000, Method: models.MethodUPI, Now: now,
	})
	require.NoError(t, err)

	// 300 of dues plus the whole 50 fee survive.
	assert.Equal(t, 350.0, res.Allocation.NewPending)
	assert.Equal(t, "2025-03", res.Allocation.NewLateFeeAssessedOn)
	assert.Equal(t, 350.0, ledger.records[0].RemainingDue)
}

func TestCollect_OverpaymentClampedToMaxPayable(t *testing.T) {
	members := &fakeMemberRepo{members: map[string]*models.MemberAccount{
		"u1": {ID: "u1", FlatNumber: "A-101", Email: "asha@example.com", Dues: 1300},
	}}
	ledger := &fakeLedger{}
	svc := newTestService(members, ledger, &fakeBilling{cfg: testConfig()}, nil)

	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	res, err := svc.Collect(context.Background(), CollectRequest{
		MemberID: "u1", Amount: 99999, Method: models.MethodUPI, Now: now,
	})
	require.NoError(t, err)

	assert.Equal(t, 1300.0, res.Record.Amount)
	assert.Equal(t, 0.0, res.Allocation.NewPending)
	assert.Equal(t, 1300.0, res.Allocation.NewPaidTotal)
}

func TestCollect_InvalidAmount(t *testing.T) {
	members := &fakeMemberRepo{members: map[string]*models.MemberAccount{
		"u1": {ID: "u1", FlatNumber: "A-101", Email: "asha@example.com", Dues: 1300},
	}}
	svc := newTestService(members, &fakeLedger{}, &fakeBilling{cfg: testConfig()}, nil)

	_, err := svc.Collect(context.Background(), CollectRequest{
		MemberID: "u1", Amount: 0, Method: models.MethodUPI,
		Now: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, dues.ErrInvalidAmount)
}

func TestCollect_MemberNotFound(t *testing.T) {
	svc := newTestService(&fakeMemberRepo{members: map[string]*models.MemberAccount{}}, &fakeLedger{}, &fakeBilling{cfg: testConfig()}, nil)

	_, err := svc.Collect(context.Background(), CollectRequest{MemberID: "missing", Amount: 100})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestCollect_NoConfig(t *testing.T) {
	members := &fakeMemberRepo{members: map[string]*models.MemberAccount{
		"u1": {ID: "u1", FlatNumber: "A-101", Email: "asha@example.com", Dues: 1300},
	}}
	svc := newTestService(members, &fakeLedger{}, &fakeBilling{}, nil)

	_, err := svc.Collect(context.Background(), CollectRequest{
		MemberID: "u1", Amount: 100,
		Now: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, dues.ErrNoConfig)
}

func TestCollect_MirrorUpdated(t *testing.T) {
	members := &fakeMemberRepo{
		members: map[string]*models.MemberAccount{
			"u1": {ID: "u1", FlatNumber: "A-101", Email: "asha@example.com", Dues: 1300},
		},
		mirror: &models.MirrorMember{ID: "m1", Flat: "A-101", Email: "asha@example.com", Paid: 2600},
	}
	svc := newTestService(members, &fakeLedger{}, &fakeBilling{cfg: testConfig()}, nil)

	now := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	_, err := svc.Collect(context.Background(), CollectRequest{
		MemberID: "u1", Amount: 1300, Method: models.MethodUPI, Now: now,
	})
	require.NoError(t, err)

	require.Len(t, members.mirrorUpdates, 1)
	assert.Equal(t, 0.0, members.mirrorUpdates[0].Dues)
	assert.Equal(t, 3900.0, members.mirrorUpdates[0].Paid)
}

func TestCollect_MirrorFailureDoesNotFailPayment(t *testing.T) {
	members := &fakeMemberRepo{
		members: map[string]*models.MemberAccount{
			"u1": {ID: "u1", FlatNumber: "A-101", Email: "asha@example.com", Dues: 1300},
		},
		mirrorErr: errors.New("mirror unavailable"),
	}
	ledger := &fakeLedger{}
	svc := newTestService(members, ledger, &fakeBilling{cfg: testConfig()}, nil)

	now := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	res, err := svc.Collect(context.Background(), CollectRequest{
		MemberID: "u1", Amount: 1300, Method: models.MethodUPI, Now: now,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Allocation.NewPending)
	assert.Len(t, ledger.records, 1)
}

func TestCurrentBill(t *testing.T) {
	members := &fakeMemberRepo{members: map[string]*models.MemberAccount{
		"u1": {ID: "u1", FlatNumber: "A-101", Email: "asha@example.com"},
	}}
	ledger := &fakeLedger{}
	svc := newTestService(members, ledger, &fakeBilling{cfg: testConfig()}, nil)
	now := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)

	bill, err := svc.CurrentBill(context.Background(), "u1", now)
	require.NoError(t, err)
	assert.False(t, bill.Paid)
	assert.Equal(t, 1300.0, bill.AmountDue)
	assert.Equal(t, 1300.0, bill.Total)
	assert.Equal(t, "2025-03-10", bill.NextDueDate)
	assert.Equal(t, "2025-03", bill.Period)

	ledger.records = append(ledger.records, models.PaymentRecord{
		Email:     "asha@example.com",
		Amount:    1300,
		CreatedAt: now.UnixMilli(),
	})
	bill, err = svc.CurrentBill(context.Background(), "u1", now)
	require.NoError(t, err)
	assert.True(t, bill.Paid)
	assert.Equal(t, 0.0, bill.AmountDue)
}

func TestMemberHistory_FlatFallbackWithoutEmail(t *testing.T) {
	members := &fakeMemberRepo{members: map[string]*models.MemberAccount{
		"u1": {ID: "u1", FlatNumber: "A-101"},
	}}
	ledger := &fakeLedger{records: []models.PaymentRecord{
		{Flat: "A-101", Amount: 1300, CreatedAt: 1},
		{Flat: "B-202", Amount: 1300, CreatedAt: 2},
	}}
	svc := newTestService(members, ledger, &fakeBilling{cfg: testConfig()}, nil)

	// Without an email the full ledger is returned; the engine does
	// the flat matching downstream.
	history, err := svc.MemberHistory(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
