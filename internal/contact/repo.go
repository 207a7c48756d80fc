package contact

import (
	"context"

	"github.com/google/uuid"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	"github.com/rmadriz/portfolio-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists contact submissions and the contact card.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateSubmission inserts a contact form message.
func (r *Repository) CreateSubmission(ctx context.Context, row *models.ContactSubmission) (*models.ContactSubmission, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindSubmission loads an active submission by id.
func (r *Repository) FindSubmission(ctx context.Context, id uuid.UUID) (*models.ContactSubmission, error) {
	var row models.ContactSubmission
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// SubmissionFilter narrows the submission listing.
type SubmissionFilter struct {
	Unread     *bool
	Pagination pagination.Params
}

// ListSubmissions returns active submissions newest first, plus the total
// count for pagination metadata.
func (r *Repository) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]models.ContactSubmission, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ContactSubmission{}).
		Where("is_active = ?", true)

	if filter.Unread != nil {
		query = query.Where("is_read = ?", !*filter.Unread)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params := pagination.Normalize(filter.Pagination)
	var rows []models.ContactSubmission
	err := query.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkSubmissionRead flips the read flag on an active submission.
func (r *Repository) MarkSubmissionRead(ctx context.Context, id uuid.UUID, read bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.ContactSubmission{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_read", read)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUnread returns the number of active unread submissions.
func (r *Repository) CountUnread(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.ContactSubmission{}).
		Where("is_active = ? AND is_read = ?", true, false).
		Count(&total).Error
	return total, err
}

// SoftDeleteSubmission hides a submission without dropping the row.
func (r *Repository) SoftDeleteSubmission(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.ContactSubmission{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindInfo loads the single contact card row, if one exists.
func (r *Repository) FindInfo(ctx context.Context) (*models.ContactInfo, error) {
	var row models.ContactInfo
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// SaveInfo upserts the contact card row.
func (r *Repository) SaveInfo(ctx context.Context, row *models.ContactInfo) (*models.ContactInfo, error) {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
