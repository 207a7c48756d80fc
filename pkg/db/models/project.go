package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Project is the root portfolio entity. Child collections are owned rows
// keyed by project id and are replaced wholesale on update.
type Project struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title            string                `gorm:"column:title;not null"`
	Slug             string                `gorm:"column:slug;not null;uniqueIndex"`
	Summary          *string               `gorm:"column:summary"`
	Description      *string               `gorm:"column:description"`
	Category         string                `gorm:"column:category;not null;default:''"`
	Type             string                `gorm:"column:type;not null;default:''"`
	Status           string                `gorm:"column:status;not null;default:'draft'"`
	IsFeatured       bool                  `gorm:"column:is_featured;not null;default:false"`
	IsActive         bool                  `gorm:"column:is_active;not null;default:true"`
	SortOrder        int                   `gorm:"column:sort_order;not null;default:0"`
	CoverMediaID     *uuid.UUID            `gorm:"column:cover_media_id;type:uuid"`
	Links            []ProjectLink         `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Technologies     []ProjectTechnology   `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Images           []ProjectImage        `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Features         []ProjectFeature      `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	RoadmapPhases    []ProjectRoadmapPhase `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Stats            []ProjectStat         `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Metrics          []ProjectMetric       `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Testimonials     []ProjectTestimonial  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	SkillAssociations []ProjectSkill       `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// ProjectLink is an external URL attached to a project (repo, demo, docs).
type ProjectLink struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	Label     string    `gorm:"column:label;not null"`
	URL       string    `gorm:"column:url;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ProjectTechnology pairs a technology name with a raw proficiency level.
// The raw level is normalized on the way out, never in storage.
type ProjectTechnology struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	RawLevel  *string   `gorm:"column:raw_level"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

type ProjectImage struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID  `gorm:"column:project_id;type:uuid;not null;index"`
	MediaID   *uuid.UUID `gorm:"column:media_id;type:uuid"`
	URL       string     `gorm:"column:url;not null"`
	AltText   *string    `gorm:"column:alt_text"`
	Position  int        `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

type ProjectFeature struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID   uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	Title       string    `gorm:"column:title;not null"`
	Description *string   `gorm:"column:description"`
	Position    int       `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

type ProjectRoadmapPhase struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID   uuid.UUID      `gorm:"column:project_id;type:uuid;not null;index"`
	Title       string         `gorm:"column:title;not null"`
	Description *string        `gorm:"column:description"`
	Status      string         `gorm:"column:status;not null;default:'planned'"`
	Items       pq.StringArray `gorm:"column:items;type:text[]"`
	Position    int            `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
}

type ProjectStat struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	Label     string    `gorm:"column:label;not null"`
	Value     string    `gorm:"column:value;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

type ProjectMetric struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Value     float64   `gorm:"column:value;not null;default:0"`
	Unit      *string   `gorm:"column:unit"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

type ProjectTestimonial struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	Author    string    `gorm:"column:author;not null"`
	Role      *string   `gorm:"column:role"`
	Quote     string    `gorm:"column:quote;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ProjectSkill associates a project with a skill row.
type ProjectSkill struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	SkillID   uuid.UUID `gorm:"column:skill_id;type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
