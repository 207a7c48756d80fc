package skills

import (
	"context"

	"github.com/google/uuid"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes skill persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a skills repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a skill row.
func (r *Repository) Create(ctx context.Context, skill *models.Skill) (*models.Skill, error) {
	if err := r.db.WithContext(ctx).Create(skill).Error; err != nil {
		return nil, err
	}
	return skill, nil
}

// FindByID retrieves an active skill by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Skill, error) {
	var skill models.Skill
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&skill).Error
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

// ListActive returns every active skill ordered by category then sort order.
func (r *Repository) ListActive(ctx context.Context) ([]models.Skill, error) {
	var rows []models.Skill
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("category ASC, sort_order ASC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the full skill row.
func (r *Repository) Update(ctx context.Context, skill *models.Skill) (*models.Skill, error) {
	if err := r.db.WithContext(ctx).Save(skill).Error; err != nil {
		return nil, err
	}
	return skill, nil
}

// SoftDelete flips the active flag; rows are never removed.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Skill{}).
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
