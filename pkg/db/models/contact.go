package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactSubmission is a message posted through the public contact form.
type ContactSubmission struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;not null"`
	Subject   *string   `gorm:"column:subject"`
	Message   string    `gorm:"column:message;not null"`
	IsRead    bool      `gorm:"column:is_read;not null;default:false"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ContactInfo is the single public contact card (email, socials, location).
type ContactInfo struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"column:email;not null"`
	Phone     *string   `gorm:"column:phone"`
	Location  *string   `gorm:"column:location"`
	GitHub    *string   `gorm:"column:github_url"`
	LinkedIn  *string   `gorm:"column:linkedin_url"`
	Twitter   *string   `gorm:"column:twitter_url"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
