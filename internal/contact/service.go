package contact

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rmadriz/portfolio-backend/internal/cache"
	"github.com/rmadriz/portfolio-backend/pkg/db"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	pkgerrors "github.com/rmadriz/portfolio-backend/pkg/errors"
	"github.com/rmadriz/portfolio-backend/pkg/pagination"
)

const infoCacheKey = "info"

type repository interface {
	CreateSubmission(ctx context.Context, row *models.ContactSubmission) (*models.ContactSubmission, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]models.ContactSubmission, int64, error)
	MarkSubmissionRead(ctx context.Context, id uuid.UUID, read bool) error
	CountUnread(ctx context.Context) (int64, error)
	SoftDeleteSubmission(ctx context.Context, id uuid.UUID) error
	FindInfo(ctx context.Context) (*models.ContactInfo, error)
	SaveInfo(ctx context.Context, row *models.ContactInfo) (*models.ContactInfo, error)
}

// Service covers the public contact form plus the admin-side inbox and the
// single contact card.
type Service interface {
	Submit(ctx context.Context, input SubmissionInput) (*SubmissionOutput, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) (*SubmissionListOutput, error)
	MarkRead(ctx context.Context, id uuid.UUID, read bool) error
	DeleteSubmission(ctx context.Context, id uuid.UUID) error
	UnreadCount(ctx context.Context) (int64, error)
	GetInfo(ctx context.Context) (*InfoOutput, error)
	UpdateInfo(ctx context.Context, input InfoInput) (*InfoOutput, error)
}

type service struct {
	repo  repository
	cache *cache.Cache
}

// NewService constructs the contact service.
func NewService(repo repository, responseCache *cache.Cache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	return &service{repo: repo, cache: responseCache}, nil
}

// SubmissionInput is the public contact form payload.
type SubmissionInput struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"required,email"`
	Subject *string `json:"subject" validate:"omitempty,max=300"`
	Message string  `json:"message" validate:"required,max=10000"`
}

// SubmissionOutput is a stored contact message.
type SubmissionOutput struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   *string   `json:"subject"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmissionListOutput is a page of contact messages.
type SubmissionListOutput struct {
	Submissions []SubmissionOutput `json:"submissions"`
	Meta        pagination.Meta    `json:"meta"`
}

// InfoInput is the admin payload for the contact card.
type InfoInput struct {
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone"`
	Location *string `json:"location"`
	GitHub   *string `json:"github_url" validate:"omitempty,url"`
	LinkedIn *string `json:"linkedin_url" validate:"omitempty,url"`
	Twitter  *string `json:"twitter_url" validate:"omitempty,url"`
}

// InfoOutput is the public contact card.
type InfoOutput struct {
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Location  *string   `json:"location"`
	GitHub    *string   `json:"github_url"`
	LinkedIn  *string   `json:"linkedin_url"`
	Twitter   *string   `json:"twitter_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *service) Submit(ctx context.Context, input SubmissionInput) (*SubmissionOutput, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	message := strings.TrimSpace(input.Message)

	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is not valid")
	}
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}

	row := &models.ContactSubmission{
		Name:     name,
		Email:    email,
		Subject:  input.Subject,
		Message:  message,
		IsActive: true,
	}

	created, err := s.repo.CreateSubmission(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist contact submission")
	}

	out := toSubmissionOutput(created)
	return &out, nil
}

func (s *service) ListSubmissions(ctx context.Context, filter SubmissionFilter) (*SubmissionListOutput, error) {
	rows, total, err := s.repo.ListSubmissions(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contact submissions")
	}

	out := &SubmissionListOutput{
		Submissions: make([]SubmissionOutput, 0, len(rows)),
		Meta:        pagination.NewMeta(filter.Pagination, total),
	}
	for i := range rows {
		out.Submissions = append(out.Submissions, toSubmissionOutput(&rows[i]))
	}
	return out, nil
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID, read bool) error {
	if err := s.repo.MarkSubmissionRead(ctx, id, read); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark submission read")
	}
	return nil
}

func (s *service) DeleteSubmission(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDeleteSubmission(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete submission")
	}
	return nil
}

func (s *service) UnreadCount(ctx context.Context) (int64, error) {
	total, err := s.repo.CountUnread(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread submissions")
	}
	return total, nil
}

func (s *service) GetInfo(ctx context.Context) (*InfoOutput, error) {
	var cached InfoOutput
	if s.cache.Get(ctx, cache.FamilyContact, infoCacheKey, &cached) {
		return &cached, nil
	}

	row, err := s.repo.FindInfo(ctx)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact info not set")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact info")
	}

	out := toInfoOutput(row)
	s.cache.Set(ctx, cache.FamilyContact, infoCacheKey, &out)
	return &out, nil
}

// UpdateInfo upserts the single contact card row.
func (s *service) UpdateInfo(ctx context.Context, input InfoInput) (*InfoOutput, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is not valid")
	}

	row, err := s.repo.FindInfo(ctx)
	if err != nil {
		if !db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact info")
		}
		row = &models.ContactInfo{}
	}

	row.Email = email
	row.Phone = input.Phone
	row.Location = input.Location
	row.GitHub = input.GitHub
	row.LinkedIn = input.LinkedIn
	row.Twitter = input.Twitter

	saved, err := s.repo.SaveInfo(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save contact info")
	}

	s.cache.Invalidate(ctx, cache.FamilyContact)
	out := toInfoOutput(saved)
	return &out, nil
}

func toSubmissionOutput(row *models.ContactSubmission) SubmissionOutput {
	return SubmissionOutput{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Subject:   row.Subject,
		Message:   row.Message,
		IsRead:    row.IsRead,
		CreatedAt: row.CreatedAt,
	}
}

func toInfoOutput(row *models.ContactInfo) InfoOutput {
	return InfoOutput{
		Email:     row.Email,
		Phone:     row.Phone,
		Location:  row.Location,
		GitHub:    row.GitHub,
		LinkedIn:  row.LinkedIn,
		Twitter:   row.Twitter,
		UpdatedAt: row.UpdatedAt,
	}
}
