package models

// Notice audiences.
const (
	AudienceAll     = "all"
	AudienceOwners  = "owners"
	AudienceTenants = "tenants"
	AudienceFlats   = "flats"
)

// Notice is an admin-published announcement stored under notices/{id}.
// URL points at the uploaded attachment (if any); PublicID is the
// storage identifier used to delete it.
type Notice struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"` // emergency | maintenance | events | meetings | general
	Audience    string   `json:"audience,omitempty"`
	TargetFlats []string `json:"targetFlats,omitempty"`
	URL         string   `json:"url,omitempty"`
	PublicID    string   `json:"publicId,omitempty"`
	NoticeDate  string   `json:"noticeDate,omitempty"`
	ExpiryAt    int64    `json:"expiryAt,omitempty"`
	UploadedBy  string   `json:"uploadedBy,omitempty"`
	CreatedAt   int64    `json:"createdAt,omitempty"`
}

// Document is a society document (minutes, bylaws, circulars) stored
// under documents/{id} and visible to every member.
type Document struct {
	ID         string `json:"id,omitempty"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	PublicID   string `json:"publicId,omitempty"`
	Date       string `json:"date,omitempty"`
	UploadedBy string `json:"uploadedBy,omitempty"`
	CreatedAt  int64  `json:"createdAt,omitempty"`
}
