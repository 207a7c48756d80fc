package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MediaFile records one uploaded object and every place a copy landed.
// At least one of R2URL, SupabaseURL, or LocalPath is always non-null;
// rows are soft-deleted, never removed by the application.
type MediaFile struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Filename        string         `gorm:"column:filename;not null;uniqueIndex"`
	OriginalName    string         `gorm:"column:original_name;not null"`
	SizeBytes       int64          `gorm:"column:size_bytes;not null"`
	MimeType        string         `gorm:"column:mime_type;not null"`
	StorageProvider string         `gorm:"column:storage_provider;not null"`
	BackupProvider  string         `gorm:"column:backup_storage_provider;not null;default:''"`
	R2URL           *string        `gorm:"column:r2_url"`
	SupabaseURL     *string        `gorm:"column:supabase_url"`
	LocalPath       *string        `gorm:"column:local_path"`
	AltText         *string        `gorm:"column:alt_text"`
	Caption         *string        `gorm:"column:caption"`
	Tags            pq.StringArray `gorm:"column:tags;type:text[]"`
	IsActive        bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
}

// PrimaryURL returns the best read path honoring the provider priority
// r2 > supabase > local.
func (m *MediaFile) PrimaryURL() string {
	if m.R2URL != nil && *m.R2URL != "" {
		return *m.R2URL
	}
	if m.SupabaseURL != nil && *m.SupabaseURL != "" {
		return *m.SupabaseURL
	}
	if m.LocalPath != nil {
		return *m.LocalPath
	}
	return ""
}
