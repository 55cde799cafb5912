package memberRepo

import (
	"context"

	"flatmate/models"
)

// MemberRepository defines data access for member accounts.
//
// The canonical record lives under users/{id}; the legacy members/{id}
// rows are a best-effort mirror kept for older admin tooling and are
// updated after the canonical write commits.
type MemberRepository interface {
	Create(ctx context.Context, m *models.MemberAccount) error
	GetByID(ctx context.Context, id string) (*models.MemberAccount, error)
	GetByEmail(ctx context.Context, email string) (*models.MemberAccount, error)
	GetAll(ctx context.Context) ([]models.MemberAccount, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	ApplyFinancialUpdate(ctx context.Context, id string, upd models.FinancialUpdate) error
	Delete(ctx context.Context, id string) error

	// Legacy mirror operations.
	CreateMirror(ctx context.Context, m *models.MirrorMember) (string, error)
	FindMirror(ctx context.Context, email, flat string) (*models.MirrorMember, error)
	ApplyMirrorFinancialUpdate(ctx context.Context, id string, upd models.FinancialUpdate) error
	DeleteMirror(ctx context.Context, id string) error
}
