package hero

import (
	"context"

	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists the single active hero row.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindActive loads the active hero row, if one exists.
func (r *Repository) FindActive(ctx context.Context) (*models.HeroContent, error) {
	var row models.HeroContent
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("updated_at DESC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Save upserts a hero row.
func (r *Repository) Save(ctx context.Context, row *models.HeroContent) (*models.HeroContent, error) {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
