package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// HeroContent drives the landing hero section. One active row at a time.
type HeroContent struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Headline      string         `gorm:"column:headline;not null"`
	Subheadline   *string        `gorm:"column:subheadline"`
	TaglineRotation pq.StringArray `gorm:"column:tagline_rotation;type:text[]"`
	CTALabel      *string        `gorm:"column:cta_label"`
	CTAURL        *string        `gorm:"column:cta_url"`
	MediaID       *uuid.UUID     `gorm:"column:media_id;type:uuid"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
