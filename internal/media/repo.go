package media

import (
	"context"

	"github.com/google/uuid"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	"github.com/rmadriz/portfolio-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes media metadata persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a media repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a media record.
func (r *Repository) Create(ctx context.Context, file *models.MediaFile) (*models.MediaFile, error) {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}

// FindByID retrieves an active media record by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	var file models.MediaFile
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// ListFilter narrows the media listing.
type ListFilter struct {
	MimePrefix string
	Pagination pagination.Params
}

// List returns active media rows newest first, optionally filtered by MIME
// prefix, plus the total row count for pagination metadata.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.MediaFile, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.MediaFile{}).
		Where("is_active = ?", true)

	if filter.MimePrefix != "" {
		query = query.Where("mime_type LIKE ?", filter.MimePrefix+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params := pagination.Normalize(filter.Pagination)
	var rows []models.MediaFile
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

// SoftDelete flips the active flag; object cleanup happens out of band.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.MediaFile{}).
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
