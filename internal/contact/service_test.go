package contact

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	pkgerrors "github.com/rmadriz/portfolio-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubContactRepo struct {
	submissions map[uuid.UUID]*models.ContactSubmission
	info        *models.ContactInfo
	saveErr     error
}

func newStubContactRepo() *stubContactRepo {
	return &stubContactRepo{submissions: map[uuid.UUID]*models.ContactSubmission{}}
}

func (s *stubContactRepo) CreateSubmission(_ context.Context, row *models.ContactSubmission) (*models.ContactSubmission, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	row.ID = uuid.New()
	s.submissions[row.ID] = row
	return row, nil
}

func (s *stubContactRepo) ListSubmissions(_ context.Context, filter SubmissionFilter) ([]models.ContactSubmission, int64, error) {
	var rows []models.ContactSubmission
	for _, row := range s.submissions {
		if !row.IsActive {
			continue
		}
		if filter.Unread != nil && row.IsRead == *filter.Unread {
			continue
		}
		rows = append(rows, *row)
	}
	return rows, int64(len(rows)), nil
}

func (s *stubContactRepo) MarkSubmissionRead(_ context.Context, id uuid.UUID, read bool) error {
	row, ok := s.submissions[id]
	if !ok || !row.IsActive {
		return gorm.ErrRecordNotFound
	}
	row.IsRead = read
	return nil
}

func (s *stubContactRepo) CountUnread(_ context.Context) (int64, error) {
	var total int64
	for _, row := range s.submissions {
		if row.IsActive && !row.IsRead {
			total++
		}
	}
	return total, nil
}

func (s *stubContactRepo) SoftDeleteSubmission(_ context.Context, id uuid.UUID) error {
	row, ok := s.submissions[id]
	if !ok || !row.IsActive {
		return gorm.ErrRecordNotFound
	}
	row.IsActive = false
	return nil
}

func (s *stubContactRepo) FindInfo(_ context.Context) (*models.ContactInfo, error) {
	if s.info == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.info, nil
}

func (s *stubContactRepo) SaveInfo(_ context.Context, row *models.ContactInfo) (*models.ContactInfo, error) {
	s.info = row
	return row, nil
}

func newContactService(t *testing.T, repo *stubContactRepo) Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	require.NoError(t, err)
	return svc
}

func TestSubmitStoresMessage(t *testing.T) {
	repo := newStubContactRepo()
	svc := newContactService(t, repo)

	out, err := svc.Submit(context.Background(), SubmissionInput{
		Name:    "  Rocio Madriz ",
		Email:   "rocio@example.com",
		Message: "Hi, I'd like to collaborate.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Rocio Madriz", out.Name)
	assert.False(t, out.IsRead)
	require.Len(t, repo.submissions, 1)
}

func TestSubmitValidation(t *testing.T) {
	svc := newContactService(t, newStubContactRepo())
	ctx := context.Background()

	cases := []struct {
		name  string
		input SubmissionInput
	}{
		{"missing name", SubmissionInput{Email: "a@b.com", Message: "hi"}},
		{"missing email", SubmissionInput{Name: "A", Message: "hi"}},
		{"malformed email", SubmissionInput{Name: "A", Email: "not-an-email", Message: "hi"}},
		{"missing message", SubmissionInput{Name: "A", Email: "a@b.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	repo := newStubContactRepo()
	svc := newContactService(t, repo)
	ctx := context.Background()

	out, err := svc.Submit(ctx, SubmissionInput{Name: "A", Email: "a@b.com", Message: "hi"})
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, svc.MarkRead(ctx, out.ID, true))

	count, err = svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	err = svc.MarkRead(ctx, uuid.New(), true)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeleteSubmissionHidesFromList(t *testing.T) {
	repo := newStubContactRepo()
	svc := newContactService(t, repo)
	ctx := context.Background()

	out, err := svc.Submit(ctx, SubmissionInput{Name: "A", Email: "a@b.com", Message: "hi"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSubmission(ctx, out.ID))

	list, err := svc.ListSubmissions(ctx, SubmissionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Submissions)

	err = svc.DeleteSubmission(ctx, out.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestInfoUpsert(t *testing.T) {
	repo := newStubContactRepo()
	svc := newContactService(t, repo)
	ctx := context.Background()

	_, err := svc.GetInfo(ctx)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	github := "https://github.com/rmadriz"
	out, err := svc.UpdateInfo(ctx, InfoInput{Email: "hello@rmadriz.dev", GitHub: &github})
	require.NoError(t, err)
	assert.Equal(t, "hello@rmadriz.dev", out.Email)

	got, err := svc.GetInfo(ctx)
	require.NoError(t, err)
	require.NotNil(t, got.GitHub)
	assert.Equal(t, github, *got.GitHub)

	// Second update reuses the existing row.
	out, err = svc.UpdateInfo(ctx, InfoInput{Email: "new@rmadriz.dev"})
	require.NoError(t, err)
	assert.Equal(t, "new@rmadriz.dev", out.Email)
	assert.Nil(t, out.GitHub)
}

func TestUpdateInfoValidatesEmail(t *testing.T) {
	svc := newContactService(t, newStubContactRepo())

	_, err := svc.UpdateInfo(context.Background(), InfoInput{Email: "nope"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
