package notice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"flatmate/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNoticeRepo struct {
	notices map[string]models.Notice
	docs    map[string]models.Document
	seq     int
}

func newFakeNoticeRepo() *fakeNoticeRepo {
	return &fakeNoticeRepo{
		notices: make(map[string]models.Notice),
		docs:    make(map[string]models.Document),
	}
}

func (f *fakeNoticeRepo) CreateNotice(ctx context.Context, n *models.Notice) (string, error) {
	f.seq++
	id := fmt.Sprintf("n%d", f.seq)
	cp := *n
	cp.ID = id
	f.notices[id] = cp
	return id, nil
}
func (f *fakeNoticeRepo) ListNotices(ctx context.Context) ([]models.Notice, error) {
	out := make([]models.Notice, 0, len(f.notices))
	for _, n := range f.notices {
		out = append(out, n)
	}
	return out, nil
}
func (f *fakeNoticeRepo) DeleteNotice(ctx context.Context, id string) error {
	delete(f.notices, id)
	return nil
}
func (f *fakeNoticeRepo) CreateDocument(ctx context.Context, d *models.Document) (string, error) {
	f.seq++
	id := fmt.Sprintf("d%d", f.seq)
	cp := *d
	cp.ID = id
	f.docs[id] = cp
	return id, nil
}
func (f *fakeNoticeRepo) ListDocuments(ctx context.Context) ([]models.Document, error) {
	out := make([]models.Document, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, d)
	}
	return out, nil
}
func (f *fakeNoticeRepo) DeleteDocument(ctx context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

func TestAudienceMatches(t *testing.T) {
	owner := models.MemberAccount{Role: "owner", FlatNumber: "A-101"}
	tenant := models.MemberAccount{Role: "tenant", FlatNumber: "B-202"}
	legacy := models.MemberAccount{FlatNumber: "C-303"} // no role recorded

	tests := []struct {
		name   string
		notice models.Notice
		member models.MemberAccount
		want   bool
	}{
		{"all matches everyone", models.Notice{Audience: models.AudienceAll}, tenant, true},
		{"empty audience matches everyone", models.Notice{}, tenant, true},
		{"owners matches owner", models.Notice{Audience: models.AudienceOwners}, owner, true},
		{"owners excludes tenant", models.Notice{Audience: models.AudienceOwners}, tenant, false},
		{"legacy role counts as owner", models.Notice{Audience: models.AudienceOwners}, legacy, true},
		{"tenants matches tenant", models.Notice{Audience: models.AudienceTenants}, tenant, true},
		{"tenants excludes owner", models.Notice{Audience: models.AudienceTenants}, owner, false},
		{"flats matches listed flat", models.Notice{Audience: models.AudienceFlats, TargetFlats: []string{"B-202"}}, tenant, true},
		{"flats is case-insensitive", models.Notice{Audience: models.AudienceFlats, TargetFlats: []string{"b-202 "}}, tenant, true},
		{"flats excludes others", models.Notice{Audience: models.AudienceFlats, TargetFlats: []string{"A-101"}}, tenant, false},
		{"unknown audience matches nobody", models.Notice{Audience: "board"}, owner, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, audienceMatches(tc.notice, tc.member))
		})
	}
}

func TestListNoticesForMember_FiltersAudienceAndExpiry(t *testing.T) {
	repo := newFakeNoticeRepo()
	svc := &DefaultNoticeService{Repo: repo}
	ctx := context.Background()
	now := time.Now().UnixMilli()

	_, err := svc.CreateNotice(ctx, CreateNoticeData{Title: "Water shutdown", Audience: models.AudienceAll})
	require.NoError(t, err)
	_, err = svc.CreateNotice(ctx, CreateNoticeData{Title: "Owners AGM", Audience: models.AudienceOwners})
	require.NoError(t, err)
	_, err = svc.CreateNotice(ctx, CreateNoticeData{
		Title: "Lift repair", Audience: models.AudienceFlats, TargetFlats: []string{"B-202"},
	})
	require.NoError(t, err)
	_, err = svc.CreateNotice(ctx, CreateNoticeData{
		Title: "Old festival notice", Audience: models.AudienceAll, ExpiryAt: now - 1000,
	})
	require.NoError(t, err)

	tenant := models.MemberAccount{Role: "tenant", FlatNumber: "B-202"}
	visible, err := svc.ListNoticesForMember(ctx, tenant, now)
	require.NoError(t, err)

	titles := make([]string, 0, len(visible))
	for _, n := range visible {
		titles = append(titles, n.Title)
	}
	assert.ElementsMatch(t, []string{"Water shutdown", "Lift repair"}, titles)

	// Admin listing still sees everything, expired included.
	all, err := svc.ListAllNotices(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestDeleteNotice(t *testing.T) {
	repo := newFakeNoticeRepo()
	svc := &DefaultNoticeService{Repo: repo}
	ctx := context.Background()

	n, err := svc.CreateNotice(ctx, CreateNoticeData{Title: "Water shutdown"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNotice(ctx, n.ID))
	assert.Empty(t, repo.notices)

	assert.ErrorIs(t, svc.DeleteNotice(ctx, n.ID), ErrNoticeNotFound)
}
