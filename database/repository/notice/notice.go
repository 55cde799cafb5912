package noticeRepo

import (
	"context"
	"fmt"
	"sort"

	"flatmate/database"
	"flatmate/models"

	"firebase.google.com/go/v4/db"
)

const (
	noticesNode   = "notices"
	documentsNode = "documents"
)

// NoticeRepository stores admin-published notices and society
// documents.
type NoticeRepository interface {
	CreateNotice(ctx context.Context, n *models.Notice) (string, error)
	ListNotices(ctx context.Context) ([]models.Notice, error)
	DeleteNotice(ctx context.Context, id string) error

	CreateDocument(ctx context.Context, d *models.Document) (string, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// FirebaseNoticeRepo implements NoticeRepository on the Realtime
// Database.
type FirebaseNoticeRepo struct {
	client *db.Client
}

// NewFirebaseNoticeRepo creates a new NoticeRepository backed by the
// global database client.
func NewFirebaseNoticeRepo() NoticeRepository {
	return &FirebaseNoticeRepo{client: database.DBClient}
}

func (r *FirebaseNoticeRepo) CreateNotice(ctx context.Context, n *models.Notice) (string, error) {
	ref, err := r.client.NewRef(noticesNode).Push(ctx, n)
	if err != nil {
		return "", fmt.Errorf("notice repo: failed to create notice: %w", err)
	}
	return ref.Key, nil
}

func (r *FirebaseNoticeRepo) ListNotices(ctx context.Context) ([]models.Notice, error) {
	var raw map[string]models.Notice
	if err := r.client.NewRef(noticesNode).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("notice repo: failed to list notices: %w", err)
	}
	out := make([]models.Notice, 0, len(raw))
	for id, n := range raw {
		n.ID = id
		out = append(out, n)
	}
	// Newest first.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (r *FirebaseNoticeRepo) DeleteNotice(ctx context.Context, id string) error {
	if err := r.client.NewRef(noticesNode).Child(id).Delete(ctx); err != nil {
		return fmt.Errorf("notice repo: failed to delete notice %s: %w", id, err)
	}
	return nil
}

func (r *FirebaseNoticeRepo) CreateDocument(ctx context.Context, d *models.Document) (string, error) {
	ref, err := r.client.NewRef(documentsNode).Push(ctx, d)
	if err != nil {
		return "", fmt.Errorf("notice repo: failed to create document: %w", err)
	}
	return ref.Key, nil
}

func (r *FirebaseNoticeRepo) ListDocuments(ctx context.Context) ([]models.Document, error) {
	var raw map[string]models.Document
	if err := r.client.NewRef(documentsNode).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("notice repo: failed to list documents: %w", err)
	}
	out := make([]models.Document, 0, len(raw))
	for id, d := range raw {
		d.ID = id
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (r *FirebaseNoticeRepo) DeleteDocument(ctx context.Context, id string) error {
	if err := r.client.NewRef(documentsNode).Child(id).Delete(ctx); err != nil {
		return fmt.Errorf("notice repo: failed to delete document %s: %w", id, err)
	}
	return nil
}
