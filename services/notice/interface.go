package notice

import (
	"context"
	"errors"

	memberRepo "flatmate/database/repository/member"
	noticeRepo "flatmate/database/repository/notice"
	"flatmate/models"
	"flatmate/services/notification"
	"flatmate/services/storage"
)

var ErrNoticeNotFound = errors.New("notice: not found")

// CreateNoticeData is the admin publish payload. AttachmentPath is a
// local temp file already received by the handler; it is uploaded to
// storage before the notice is stored.
type CreateNoticeData struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description,omitempty"`
	Category       string   `json:"category,omitempty"`
	Audience       string   `json:"audience,omitempty"`
	TargetFlats    []string `json:"targetFlats,omitempty"`
	NoticeDate     string   `json:"noticeDate,omitempty"`
	ExpiryAt       int64    `json:"expiryAt,omitempty"`
	UploadedBy     string   `json:"-"`
	AttachmentPath string   `json:"-"`
}

// CreateDocumentData is the admin document upload payload.
type CreateDocumentData struct {
	Title      string `json:"title" binding:"required"`
	Date       string `json:"date,omitempty"`
	FilePath   string `json:"-"`
	UploadedBy string `json:"-"`
}

// NoticeService publishes notices and society documents. Listing for a
// member applies the audience filter server side, so clients never see
// notices aimed at someone else.
type NoticeService interface {
	CreateNotice(ctx context.Context, data CreateNoticeData) (*models.Notice, error)
	ListNoticesForMember(ctx context.Context, member models.MemberAccount, now int64) ([]models.Notice, error)
	ListAllNotices(ctx context.Context) ([]models.Notice, error)
	DeleteNotice(ctx context.Context, id string) error

	CreateDocument(ctx context.Context, data CreateDocumentData) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// DefaultNoticeService is the production implementation. Storage and
// Notifier may be nil; notices then carry no attachments and publishes
// send no pushes.
type DefaultNoticeService struct {
	Repo     noticeRepo.NoticeRepository
	Storage  storage.StorageService
	Notifier notification.NotificationService
	Members  memberRepo.MemberRepository
}
