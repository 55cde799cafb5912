package member

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"flatmate/models"
	"flatmate/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// Register creates a self-service member account and signs it in.
func (s *DefaultMemberService) Register(ctx context.Context, data RegistrationData) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(data.Email))

	existing, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("member: failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("member: failed to hash password: %w", err)
	}

	role := data.Role
	if role == "" {
		role = "tenant"
	}
	now := time.Now().UnixMilli()
	acct := &models.MemberAccount{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(data.FullName),
		FlatNumber:   strings.TrimSpace(data.FlatNumber),
		Email:        email,
		Role:         role,
		Status:       "Active",
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, acct); err != nil {
		return nil, fmt.Errorf("member: failed to create account: %w", err)
	}
	return s.issueToken(ctx, acct)
}

// Authenticate verifies credentials and issues a fresh token.
func (s *DefaultMemberService) Authenticate(ctx context.Context, email, password string) (*AuthResponse, error) {
	acct, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		utils.GetLogger().Error("Authenticate: failed to fetch member", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	if acct == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(ctx, acct)
}

// issueToken generates a JWT, persists its hash on the account, and
// primes the auth cache so the middleware can verify without a
// database read.
func (s *DefaultMemberService) issueToken(ctx context.Context, acct *models.MemberAccount) (*AuthResponse, error) {
	token, err := utils.GenerateToken(acct.ID, acct.Email, tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("member: failed to generate token: %w", err)
	}
	tokenHash := utils.HashToken(token)

	if err := s.Repo.Update(ctx, acct.ID, map[string]interface{}{
		"tokenHash": tokenHash,
		"updatedAt": time.Now().UnixMilli(),
	}); err != nil {
		return nil, fmt.Errorf("member: failed to store token hash: %w", err)
	}

	if s.Cache != nil {
		cacheKey := utils.AuthCachePrefix + acct.ID
		if err := s.Cache.Set(ctx, cacheKey, tokenHash, utils.AuthCacheTTL).Err(); err != nil {
			utils.GetLogger().Warn("issueToken: failed to prime auth cache", zap.Error(err))
		}
	}

	return &AuthResponse{
		ID:         acct.ID,
		Token:      token,
		FullName:   acct.FullName,
		Email:      acct.Email,
		FlatNumber: acct.FlatNumber,
		Role:       acct.Role,
	}, nil
}

// SignOut clears the stored token hash and the auth cache entry,
// invalidating all outstanding tokens.
func (s *DefaultMemberService) SignOut(ctx context.Context, memberID string) error {
	if err := s.Repo.Update(ctx, memberID, map[string]interface{}{"tokenHash": ""}); err != nil {
		return fmt.Errorf("member: failed to revoke token: %w", err)
	}
	if s.Cache != nil {
		if err := s.Cache.Del(ctx, utils.AuthCachePrefix+memberID).Err(); err != nil {
			utils.GetLogger().Warn("SignOut: failed to clear auth cache", zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultMemberService) GetByID(ctx context.Context, memberID string) (*models.MemberAccount, error) {
	acct, err := s.Repo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrMemberNotFound
	}
	sanitize(acct)
	return acct, nil
}

func (s *DefaultMemberService) GetAll(ctx context.Context) ([]models.MemberAccount, error) {
	accts, err := s.Repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accts {
		sanitize(&accts[i])
	}
	return accts, nil
}

// profileFields is the whitelist of member-editable fields. Balances
// are excluded; they only move through payments or ManualEdit.
var profileFields = map[string]bool{
	"fullName":   true,
	"flatNumber": true,
	"role":       true,
	"status":     true,
	"fcmToken":   true,
}

func (s *DefaultMemberService) UpdateProfile(ctx context.Context, memberID string, fields map[string]interface{}) (*models.MemberAccount, error) {
	upd := make(map[string]interface{})
	for k, v := range fields {
		if profileFields[k] {
			upd[k] = v
		}
	}
	if len(upd) == 0 {
		return s.GetByID(ctx, memberID)
	}
	upd["updatedAt"] = time.Now().UnixMilli()
	if err := s.Repo.Update(ctx, memberID, upd); err != nil {
		return nil, fmt.Errorf("member: failed to update profile: %w", err)
	}
	return s.GetByID(ctx, memberID)
}

func (s *DefaultMemberService) RegisterFCMToken(ctx context.Context, memberID, token string) error {
	if err := s.Repo.Update(ctx, memberID, map[string]interface{}{"fcmToken": token}); err != nil {
		return fmt.Errorf("member: failed to register fcm token: %w", err)
	}
	return nil
}

// Delete removes the canonical record and, best effort, the legacy
// mirror row.
func (s *DefaultMemberService) Delete(ctx context.Context, memberID string) error {
	acct, err := s.Repo.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if acct == nil {
		return ErrMemberNotFound
	}
	if err := s.Repo.Delete(ctx, memberID); err != nil {
		return fmt.Errorf("member: failed to delete account: %w", err)
	}
	if mirror, err := s.Repo.FindMirror(ctx, acct.Email, acct.FlatNumber); err == nil && mirror != nil {
		if err := s.Repo.DeleteMirror(ctx, mirror.ID); err != nil {
			utils.GetLogger().Warn("Delete: failed to remove mirror row",
				zap.String("memberId", memberID), zap.Error(err))
		}
	}
	return nil
}

// AddMember creates an account on behalf of an admin, without a
// password. The member claims it later through Register with the same
// email, or pays through an admin-recorded collection.
func (s *DefaultMemberService) AddMember(ctx context.Context, data AddMemberData) (*models.MemberAccount, error) {
	email := strings.ToLower(strings.TrimSpace(data.Email))
	if email != "" {
		existing, err := s.Repo.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("member: failed to check email: %w", err)
		}
		if existing != nil {
			return nil, ErrEmailTaken
		}
	}

	role := data.Role
	if role == "" {
		role = "owner"
	}
	now := time.Now().UnixMilli()
	acct := &models.MemberAccount{
		ID:         uuid.NewString(),
		FullName:   strings.TrimSpace(data.FullName),
		FlatNumber: strings.TrimSpace(data.FlatNumber),
		Email:      email,
		Role:       role,
		Status:     "Active",
		Dues:       data.Dues,
		Paid:       data.Paid,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, acct); err != nil {
		return nil, fmt.Errorf("member: failed to create account: %w", err)
	}

	mirror := &models.MirrorMember{
		Name:   acct.FullName,
		Flat:   acct.FlatNumber,
		Email:  acct.Email,
		Status: acct.Status,
		Dues:   acct.Dues,
		Paid:   acct.Paid,
	}
	if _, err := s.Repo.CreateMirror(ctx, mirror); err != nil {
		utils.GetLogger().Warn("AddMember: failed to create mirror row",
			zap.String("memberId", acct.ID), zap.Error(err))
	}

	sanitize(acct)
	return acct, nil
}

// ManualEdit sets a member's outstanding dues directly. A decrease is
// treated as an off-system collection and recorded in the ledger under
// the "Manual Edit" method so cycle tracking stays consistent.
func (s *DefaultMemberService) ManualEdit(ctx context.Context, memberID string, newDues float64) (*models.MemberAccount, error) {
	acct, err := s.Repo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrMemberNotFound
	}

	delta := round2(acct.Dues - newDues)
	newPaid := acct.Paid
	if delta > 0 {
		newPaid = round2(acct.Paid + delta)
	}
	upd := models.FinancialUpdate{
		Dues:              round2(newDues),
		Paid:              newPaid,
		LateFeeAssessedOn: acct.LateFeeAssessedOn,
	}
	if err := s.Repo.ApplyFinancialUpdate(ctx, memberID, upd); err != nil {
		return nil, fmt.Errorf("member: failed to apply manual edit: %w", err)
	}

	if delta > 0 {
		now := time.Now()
		rec := &models.PaymentRecord{
			UID:          acct.ID,
			Email:        acct.Email,
			Name:         acct.FullName,
			Flat:         acct.FlatNumber,
			Amount:       delta,
			Method:       models.MethodManualEdit,
			Receipt:      fmt.Sprintf("EDIT-%d", now.UnixMilli()),
			Date:         now.Format("02/01/2006"),
			CreatedAt:    now.UnixMilli(),
			PreviousDue:  acct.Dues,
			RemainingDue: round2(newDues),
		}
		if _, err := s.Ledger.Append(ctx, rec); err != nil {
			utils.GetLogger().Error("ManualEdit: failed to append ledger record",
				zap.String("memberId", memberID), zap.Error(err))
		}
	}

	if mirror, err := s.Repo.FindMirror(ctx, acct.Email, acct.FlatNumber); err == nil && mirror != nil {
		mirrorUpd := models.FinancialUpdate{
			Dues:              upd.Dues,
			Paid:              round2(mirror.Paid + math.Max(0, delta)),
			LateFeeAssessedOn: acct.LateFeeAssessedOn,
		}
		if err := s.Repo.ApplyMirrorFinancialUpdate(ctx, mirror.ID, mirrorUpd); err != nil {
			utils.GetLogger().Warn("ManualEdit: failed to update mirror row",
				zap.String("memberId", memberID), zap.Error(err))
		}
	}

	return s.GetByID(ctx, memberID)
}

func sanitize(m *models.MemberAccount) {
	m.PasswordHash = ""
	m.TokenHash = ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
