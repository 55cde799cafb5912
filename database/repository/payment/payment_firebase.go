package paymentRepo

import (
	"context"
	"fmt"
	"sort"

	"flatmate/database"
	"flatmate/models"

	"firebase.google.com/go/v4/db"
)

const paymentsNode = "recentPayments"

// FirebasePaymentRepo implements PaymentRepository on the Realtime
// Database.
type FirebasePaymentRepo struct {
	client *db.Client
}

// NewFirebasePaymentRepo creates a new PaymentRepository backed by the
// global database client.
func NewFirebasePaymentRepo() PaymentRepository {
	return &FirebasePaymentRepo{client: database.DBClient}
}

func (r *FirebasePaymentRepo) ledger() *db.Ref {
	return r.client.NewRef(paymentsNode)
}

func (r *FirebasePaymentRepo) Append(ctx context.Context, rec *models.PaymentRecord) (string, error) {
	ref, err := r.ledger().Push(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("payment repo: failed to append record: %w", err)
	}
	return ref.Key, nil
}

func (r *FirebasePaymentRepo) Recent(ctx context.Context, limit int) ([]models.PaymentRecord, error) {
	nodes, err := r.ledger().OrderByChild("createdAt").LimitToLast(limit).GetOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("payment repo: failed to fetch recent records: %w", err)
	}
	records, err := decodeNodes(nodes)
	if err != nil {
		return nil, err
	}
	// Newest first for admin review.
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt > records[j].CreatedAt })
	return records, nil
}

func (r *FirebasePaymentRepo) ListByEmail(ctx context.Context, email string, limit int) ([]models.PaymentRecord, error) {
	q := r.ledger().OrderByChild("email").EqualTo(email)
	nodes, err := q.GetOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("payment repo: failed to query records for %s: %w", email, err)
	}
	records, err := decodeNodes(nodes)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt < records[j].CreatedAt })
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

func (r *FirebasePaymentRepo) ListAll(ctx context.Context) ([]models.PaymentRecord, error) {
	var raw map[string]models.PaymentRecord
	if err := r.ledger().Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("payment repo: failed to list records: %w", err)
	}
	out := make([]models.PaymentRecord, 0, len(raw))
	for id, rec := range raw {
		rec.ID = id
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func decodeNodes(nodes []db.QueryNode) ([]models.PaymentRecord, error) {
	records := make([]models.PaymentRecord, 0, len(nodes))
	for _, n := range nodes {
		var rec models.PaymentRecord
		if err := n.Unmarshal(&rec); err != nil {
			return nil, fmt.Errorf("payment repo: failed to decode record %s: %w", n.Key(), err)
		}
		rec.ID = n.Key()
		records = append(records, rec)
	}
	return records, nil
}
