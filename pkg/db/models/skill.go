package models

import (
	"time"

	"github.com/google/uuid"
)

// Skill is a technology/skill entry with a heterogeneous raw proficiency
// value. Normalization happens per response, the raw value is kept verbatim.
type Skill struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Category  string    `gorm:"column:category;not null;default:''"`
	RawLevel  *string   `gorm:"column:raw_level"`
	IconURL   *string   `gorm:"column:icon_url"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
