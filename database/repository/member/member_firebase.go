package memberRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"flatmate/database"
	"flatmate/models"

	"firebase.google.com/go/v4/db"
)

const (
	usersNode   = "users"
	membersNode = "members"
)

// FirebaseMemberRepo implements MemberRepository on the Realtime
// Database.
type FirebaseMemberRepo struct {
	client *db.Client
}

// NewFirebaseMemberRepo creates a new MemberRepository backed by the
// global database client.
func NewFirebaseMemberRepo() MemberRepository {
	return &FirebaseMemberRepo{client: database.DBClient}
}

func (r *FirebaseMemberRepo) users() *db.Ref {
	return r.client.NewRef(usersNode)
}

func (r *FirebaseMemberRepo) members() *db.Ref {
	return r.client.NewRef(membersNode)
}

func (r *FirebaseMemberRepo) Create(ctx context.Context, m *models.MemberAccount) error {
	if m.ID == "" {
		return fmt.Errorf("member repo: missing member ID")
	}
	if err := r.users().Child(m.ID).Set(ctx, m); err != nil {
		return fmt.Errorf("member repo: failed to create member %s: %w", m.ID, err)
	}
	return nil
}

func (r *FirebaseMemberRepo) GetByID(ctx context.Context, id string) (*models.MemberAccount, error) {
	var raw map[string]interface{}
	if err := r.users().Child(id).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("member repo: failed to fetch member %s: %w", id, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("member repo: failed to decode member %s: %w", id, err)
	}
	var m models.MemberAccount
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("member repo: failed to decode member %s: %w", id, err)
	}
	m.ID = id
	return &m, nil
}

func (r *FirebaseMemberRepo) GetByEmail(ctx context.Context, email string) (*models.MemberAccount, error) {
	nodes, err := r.users().OrderByChild("email").EqualTo(email).GetOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("member repo: failed to query member by email: %w", err)
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	var m models.MemberAccount
	if err := nodes[0].Unmarshal(&m); err != nil {
		return nil, fmt.Errorf("member repo: failed to decode member: %w", err)
	}
	m.ID = nodes[0].Key()
	return &m, nil
}

func (r *FirebaseMemberRepo) GetAll(ctx context.Context) ([]models.MemberAccount, error) {
	var raw map[string]models.MemberAccount
	if err := r.users().Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("member repo: failed to list members: %w", err)
	}
	out := make([]models.MemberAccount, 0, len(raw))
	for id, m := range raw {
		m.ID = id
		out = append(out, m)
	}
	return out, nil
}

func (r *FirebaseMemberRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := r.users().Child(id).Update(ctx, fields); err != nil {
		return fmt.Errorf("member repo: failed to update member %s: %w", id, err)
	}
	return nil
}

func (r *FirebaseMemberRepo) ApplyFinancialUpdate(ctx context.Context, id string, upd models.FinancialUpdate) error {
	fields := map[string]interface{}{
		"dues": upd.Dues,
		"paid": upd.Paid,
	}
	if upd.LateFeeAssessedOn != "" {
		fields["lateFeeAssessedOn"] = upd.LateFeeAssessedOn
	}
	return r.Update(ctx, id, fields)
}

func (r *FirebaseMemberRepo) Delete(ctx context.Context, id string) error {
	if err := r.users().Child(id).Delete(ctx); err != nil {
		return fmt.Errorf("member repo: failed to delete member %s: %w", id, err)
	}
	return nil
}

func (r *FirebaseMemberRepo) CreateMirror(ctx context.Context, m *models.MirrorMember) (string, error) {
	ref, err := r.members().Push(ctx, m)
	if err != nil {
		return "", fmt.Errorf("member repo: failed to create mirror row: %w", err)
	}
	return ref.Key, nil
}

// FindMirror locates the legacy row for a member, matching by email
// first and flat second, the same precedence the dues engine uses.
func (r *FirebaseMemberRepo) FindMirror(ctx context.Context, email, flat string) (*models.MirrorMember, error) {
	var raw map[string]models.MirrorMember
	if err := r.members().Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("member repo: failed to scan mirror rows: %w", err)
	}
	email = strings.TrimSpace(email)
	flat = strings.TrimSpace(flat)
	for id, m := range raw {
		if email != "" && strings.EqualFold(strings.TrimSpace(m.Email), email) {
			m.ID = id
			return &m, nil
		}
	}
	for id, m := range raw {
		if flat != "" && strings.TrimSpace(m.Flat) == flat {
			m.ID = id
			return &m, nil
		}
	}
	return nil, nil
}

func (r *FirebaseMemberRepo) ApplyMirrorFinancialUpdate(ctx context.Context, id string, upd models.FinancialUpdate) error {
	fields := map[string]interface{}{
		"dues": upd.Dues,
		"paid": upd.Paid,
	}
	if upd.LateFeeAssessedOn != "" {
		fields["lateFeeAssessedOn"] = upd.LateFeeAssessedOn
	}
	if err := r.members().Child(id).Update(ctx, fields); err != nil {
		return fmt.Errorf("member repo: failed to update mirror row %s: %w", id, err)
	}
	return nil
}

func (r *FirebaseMemberRepo) DeleteMirror(ctx context.Context, id string) error {
	if err := r.members().Child(id).Delete(ctx); err != nil {
		return fmt.Errorf("member repo: failed to delete mirror row %s: %w", id, err)
	}
	return nil
}
