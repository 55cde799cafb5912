package member

import (
	"context"
	"errors"

	memberRepo "flatmate/database/repository/member"
	paymentRepo "flatmate/database/repository/payment"
	"flatmate/models"

	"github.com/go-redis/redis/v8"
)

var (
	ErrInvalidCredentials = errors.New("member: invalid email or password")
	ErrEmailTaken         = errors.New("member: email already registered")
	ErrMemberNotFound     = errors.New("member: not found")
)

// RegistrationData is the self-signup payload.
type RegistrationData struct {
	FullName   string `json:"fullName" binding:"required"`
	FlatNumber string `json:"flatNumber" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role,omitempty"`
}

// AddMemberData is the admin-side payload: no password, optional
// starting balances carried over from whatever the society tracked
// before.
type AddMemberData struct {
	FullName   string  `json:"fullName" binding:"required"`
	FlatNumber string  `json:"flatNumber" binding:"required"`
	Email      string  `json:"email,omitempty"`
	Role       string  `json:"role,omitempty"`
	Dues       float64 `json:"dues,omitempty"`
	Paid       float64 `json:"paid,omitempty"`
}

// AuthResponse contains the member's ID, token, and profile details.
type AuthResponse struct {
	ID         string `json:"id"`
	Token      string `json:"token"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	FlatNumber string `json:"flatNumber"`
	Role       string `json:"role,omitempty"`
}

// MemberService manages member accounts and authentication. Balance
// mutations other than ManualEdit belong to the payment service.
type MemberService interface {
	Register(ctx context.Context, data RegistrationData) (*AuthResponse, error)
	Authenticate(ctx context.Context, email, password string) (*AuthResponse, error)
	SignOut(ctx context.Context, memberID string) error

	GetByID(ctx context.Context, memberID string) (*models.MemberAccount, error)
	GetAll(ctx context.Context) ([]models.MemberAccount, error)
	UpdateProfile(ctx context.Context, memberID string, fields map[string]interface{}) (*models.MemberAccount, error)
	RegisterFCMToken(ctx context.Context, memberID, token string) error
	Delete(ctx context.Context, memberID string) error

	// Admin operations.
	AddMember(ctx context.Context, data AddMemberData) (*models.MemberAccount, error)
	ManualEdit(ctx context.Context, memberID string, newDues float64) (*models.MemberAccount, error)
}

// DefaultMemberService is the production implementation. Cache holds
// the auth cache client; when nil, token hashes are only persisted on
// the account record.
type DefaultMemberService struct {
	Repo   memberRepo.MemberRepository
	Ledger paymentRepo.PaymentRepository
	Cache  *redis.Client
}
