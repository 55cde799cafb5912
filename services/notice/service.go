package notice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flatmate/models"
	"flatmate/utils"

	"go.uber.org/zap"
)

const (
	noticeFolder   = "flatmate/notices"
	documentFolder = "flatmate/documents"
)

// CreateNotice uploads the attachment (if any), stores the notice, and
// pushes a best-effort announcement to the target audience.
func (s *DefaultNoticeService) CreateNotice(ctx context.Context, data CreateNoticeData) (*models.Notice, error) {
	n := &models.Notice{
		Title:       strings.TrimSpace(data.Title),
		Description: data.Description,
		Category:    data.Category,
		Audience:    data.Audience,
		TargetFlats: data.TargetFlats,
		NoticeDate:  data.NoticeDate,
		ExpiryAt:    data.ExpiryAt,
		UploadedBy:  data.UploadedBy,
		CreatedAt:   time.Now().UnixMilli(),
	}
	if n.Audience == "" {
		n.Audience = models.AudienceAll
	}

	if data.AttachmentPath != "" && s.Storage != nil {
		publicID, err := s.Storage.UploadFile(ctx, data.AttachmentPath, noticeFolder)
		if err != nil {
			return nil, fmt.Errorf("notice: failed to upload attachment: %w", err)
		}
		url, err := s.Storage.GetDownloadURL(ctx, "image", publicID)
		if err != nil {
			return nil, fmt.Errorf("notice: failed to resolve attachment URL: %w", err)
		}
		n.PublicID = publicID
		n.URL = url
	}

	id, err := s.Repo.CreateNotice(ctx, n)
	if err != nil {
		return nil, err
	}
	n.ID = id

	s.pushToAudience(ctx, n)
	return n, nil
}

// pushToAudience notifies the members the notice targets. Failures are
// logged only; the notice is already published.
func (s *DefaultNoticeService) pushToAudience(ctx context.Context, n *models.Notice) {
	if s.Notifier == nil || s.Members == nil {
		return
	}
	members, err := s.Members.GetAll(ctx)
	if err != nil {
		utils.GetLogger().Warn("pushToAudience: failed to list members", zap.Error(err))
		return
	}
	targets := make([]models.MemberAccount, 0, len(members))
	for _, m := range members {
		if audienceMatches(*n, m) {
			targets = append(targets, m)
		}
	}
	s.Notifier.Broadcast(ctx, targets, "New notice: "+n.Title, n.Description, map[string]string{
		"type":     "notice",
		"noticeId": n.ID,
	})
}

// ListNoticesForMember returns the notices the member may see:
// unexpired, and aimed at them by role or flat. Admins use
// ListAllNotices instead.
func (s *DefaultNoticeService) ListNoticesForMember(ctx context.Context, member models.MemberAccount, now int64) ([]models.Notice, error) {
	all, err := s.Repo.ListNotices(ctx)
	if err != nil {
		return nil, err
	}
	if now == 0 {
		now = time.Now().UnixMilli()
	}
	visible := make([]models.Notice, 0, len(all))
	for _, n := range all {
		if n.ExpiryAt > 0 && n.ExpiryAt < now {
			continue
		}
		if audienceMatches(n, member) {
			visible = append(visible, n)
		}
	}
	return visible, nil
}

func (s *DefaultNoticeService) ListAllNotices(ctx context.Context) ([]models.Notice, error) {
	return s.Repo.ListNotices(ctx)
}

// DeleteNotice removes the notice and, best effort, its stored
// attachment.
func (s *DefaultNoticeService) DeleteNotice(ctx context.Context, id string) error {
	notices, err := s.Repo.ListNotices(ctx)
	if err != nil {
		return err
	}
	var target *models.Notice
	for i := range notices {
		if notices[i].ID == id {
			target = &notices[i]
			break
		}
	}
	if target == nil {
		return ErrNoticeNotFound
	}
	if err := s.Repo.DeleteNotice(ctx, id); err != nil {
		return err
	}
	if target.PublicID != "" && s.Storage != nil {
		if err := s.Storage.DeleteFile(ctx, target.PublicID); err != nil {
			utils.GetLogger().Warn("DeleteNotice: failed to delete attachment",
				zap.String("publicId", target.PublicID), zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultNoticeService) CreateDocument(ctx context.Context, data CreateDocumentData) (*models.Document, error) {
	if data.FilePath == "" {
		return nil, fmt.Errorf("notice: document requires a file")
	}
	if s.Storage == nil {
		return nil, fmt.Errorf("notice: storage not configured")
	}
	publicID, err := s.Storage.UploadFile(ctx, data.FilePath, documentFolder)
	if err != nil {
		return nil, fmt.Errorf("notice: failed to upload document: %w", err)
	}
	url, err := s.Storage.GetDownloadURL(ctx, "raw", publicID)
	if err != nil {
		return nil, fmt.Errorf("notice: failed to resolve document URL: %w", err)
	}

	d := &models.Document{
		Title:      strings.TrimSpace(data.Title),
		URL:        url,
		PublicID:   publicID,
		Date:       data.Date,
		UploadedBy: data.UploadedBy,
		CreatedAt:  time.Now().UnixMilli(),
	}
	id, err := s.Repo.CreateDocument(ctx, d)
	if err != nil {
		return nil, err
	}
	d.ID = id
	return d, nil
}

func (s *DefaultNoticeService) ListDocuments(ctx context.Context) ([]models.Document, error) {
	return s.Repo.ListDocuments(ctx)
}

func (s *DefaultNoticeService) DeleteDocument(ctx context.Context, id string) error {
	docs, err := s.Repo.ListDocuments(ctx)
	if err != nil {
		return err
	}
	var target *models.Document
	for i := range docs {
		if docs[i].ID == id {
			target = &docs[i]
			break
		}
	}
	if target == nil {
		return ErrNoticeNotFound
	}
	if err := s.Repo.DeleteDocument(ctx, id); err != nil {
		return err
	}
	if target.PublicID != "" && s.Storage != nil {
		if err := s.Storage.DeleteFile(ctx, target.PublicID); err != nil {
			utils.GetLogger().Warn("DeleteDocument: failed to delete file",
				zap.String("publicId", target.PublicID), zap.Error(err))
		}
	}
	return nil
}

// audienceMatches reports whether the notice targets the member.
// Audience "flats" matches on the member's flat number; owner and
// tenant audiences match on role, with an unset role treated as owner
// for accounts created before roles existed.
func audienceMatches(n models.Notice, m models.MemberAccount) bool {
	switch n.Audience {
	case "", models.AudienceAll:
		return true
	case models.AudienceOwners:
		return role(m) == "owner"
	case models.AudienceTenants:
		return role(m) == "tenant"
	case models.AudienceFlats:
		for _, flat := range n.TargetFlats {
			if strings.EqualFold(strings.TrimSpace(flat), strings.TrimSpace(m.FlatNumber)) {
				return true
			}
		}
		return false
	}
	return false
}

func role(m models.MemberAccount) string {
	if m.Role == "" {
		return "owner"
	}
	return strings.ToLower(m.Role)
}
