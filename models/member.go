package models

// MemberAccount is the canonical member record, stored under users/{id}.
// The financial fields (Dues, Paid, LateFeeAssessedOn) are only ever
// mutated through the payment service so the ledger stays consistent.
type MemberAccount struct {
	ID                string  `json:"id"`
	FullName          string  `json:"fullName"`
	FlatNumber        string  `json:"flatNumber"`
	Email             string  `json:"email"`
	Role              string  `json:"role,omitempty"`   // "owner" or "tenant"
	Status            string  `json:"status,omitempty"` // e.g. "Active"
	Dues              float64 `json:"dues"`
	Paid              float64 `json:"paid"`
	LateFeeAssessedOn string  `json:"lateFeeAssessedOn,omitempty"` // billing period "YYYY-MM"
	FCMToken          string  `json:"fcmToken,omitempty"`
	PasswordHash      string  `json:"passwordHash,omitempty"`
	TokenHash         string  `json:"tokenHash,omitempty"`
	CreatedAt         int64   `json:"createdAt,omitempty"`
	UpdatedAt         int64   `json:"updatedAt,omitempty"`
}

// MirrorMember is the legacy admin-facing row kept under members/{id}.
// It is a best-effort secondary sink updated after the canonical record
// commits; it is never read as a source of truth.
type MirrorMember struct {
	ID                string  `json:"id,omitempty"`
	Name              string  `json:"name"`
	Flat              string  `json:"flat"`
	Email             string  `json:"email"`
	Status            string  `json:"status,omitempty"`
	Dues              float64 `json:"dues"`
	Paid              float64 `json:"paid"`
	LateFeeAssessedOn string  `json:"lateFeeAssessedOn,omitempty"`
}

// FinancialUpdate is the merge-update applied to a member after a
// payment allocation.
type FinancialUpdate struct {
	Dues              float64 `json:"dues"`
	Paid              float64 `json:"paid"`
	LateFeeAssessedOn string  `json:"lateFeeAssessedOn,omitempty"`
}
