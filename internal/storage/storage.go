package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rmadriz/portfolio-backend/pkg/config"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
)

// Provider name tags, persisted on media rows. Priority for primary/backup
// resolution is r2 > supabase > local.
const (
	ProviderR2       = "r2"
	ProviderSupabase = "supabase"
	ProviderLocal    = "local"
)

// UploadResult describes one successful write to a single backend.
type UploadResult struct {
	Provider  string `json:"provider"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
}

// PresignOptions constrains a presigned upload request.
type PresignOptions struct {
	ContentType string
	TTL         time.Duration
}

// PresignedURL is a time-limited direct-upload target.
type PresignedURL struct {
	Provider  string    `json:"provider"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ObjectInfo is backend metadata for a stored object.
type ObjectInfo struct {
	Filename     string    `json:"filename"`
	SizeBytes    int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// UploadError tags a backend failure with the provider that produced it so
// the caller can log per-provider outcomes from an all-settled join.
type UploadError struct {
	Provider string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s upload failed: %v", e.Provider, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Provider is one storage backend. Constructors validate configuration up
// front; a constructed provider never fails for missing credentials.
type Provider interface {
	Name() string
	Upload(ctx context.Context, data []byte, filename, contentType string) (*UploadResult, error)
	Open(ctx context.Context, filename string) (io.ReadCloser, error)
	// Delete is best-effort: failures are logged, never propagated.
	Delete(ctx context.Context, filename string) bool
	FileURL(filename string) string
	Exists(ctx context.Context, filename string) (bool, error)
	PresignUpload(ctx context.Context, filename string, opts PresignOptions) (*PresignedURL, error)
	Metadata(ctx context.Context, filename string) (*ObjectInfo, error)
	List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error)
}

// CloudProviders constructs every configured cloud backend in priority
// order. An empty slice is valid: uploads then land on local disk only.
func CloudProviders(cfg *config.Config, logg *logger.Logger) ([]Provider, error) {
	var providers []Provider

	if cfg.R2.Configured() {
		r2, err := NewR2(cfg.R2, cfg.Uploads.PresignTTL, logg)
		if err != nil {
			return nil, fmt.Errorf("constructing r2 provider: %w", err)
		}
		providers = append(providers, r2)
	}

	if cfg.Supabase.Configured() {
		sb, err := NewSupabase(cfg.Supabase, cfg.Uploads.PresignTTL, logg)
		if err != nil {
			return nil, fmt.Errorf("constructing supabase provider: %w", err)
		}
		providers = append(providers, sb)
	}

	return providers, nil
}
