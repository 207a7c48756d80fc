package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rmadriz/portfolio-backend/internal/cache"
	"github.com/rmadriz/portfolio-backend/internal/storage"
	"github.com/rmadriz/portfolio-backend/pkg/db"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	pkgerrors "github.com/rmadriz/portfolio-backend/pkg/errors"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
)

type repository interface {
	Create(ctx context.Context, file *models.MediaFile) (*models.MediaFile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error)
	List(ctx context.Context, filter ListFilter) ([]models.MediaFile, int64, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// Service is the file upload pipeline: dual cloud write, local fallback,
// metadata persistence, and retrieval.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*Output, error)
	Get(ctx context.Context, id uuid.UUID) (*Output, error)
	List(ctx context.Context, filter ListFilter) (*ListOutput, error)
	Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, *Output, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PresignUpload(ctx context.Context, input PresignInput) (*storage.PresignedURL, error)
}

type service struct {
	repo     repository
	cloud    []storage.Provider
	local    storage.Provider
	byName   map[string]storage.Provider
	maxBytes int64
	cache    *cache.Cache
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs the upload service. cloud carries the configured
// cloud backends in priority order and may be empty; local is mandatory.
func NewService(repo repository, cloud []storage.Provider, local storage.Provider, maxBytes int64, responseCache *cache.Cache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if local == nil {
		return nil, fmt.Errorf("local storage provider required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}

	byName := map[string]storage.Provider{local.Name(): local}
	for _, p := range cloud {
		byName[p.Name()] = p
	}

	return &service{
		repo:     repo,
		cloud:    cloud,
		local:    local,
		byName:   byName,
		maxBytes: maxBytes,
		cache:    responseCache,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// UploadInput carries the file bytes plus optional descriptive metadata.
type UploadInput struct {
	Data         []byte
	OriginalName string
	ContentType  string
	AltText      *string
	Caption      *string
	Tags         []string
}

// Output is a media response row.
type Output struct {
	ID              uuid.UUID `json:"id"`
	Filename        string    `json:"filename"`
	OriginalName    string    `json:"original_name"`
	SizeBytes       int64     `json:"size_bytes"`
	MimeType        string    `json:"mime_type"`
	StorageProvider string    `json:"storage_provider"`
	BackupProvider  string    `json:"backup_provider,omitempty"`
	URL             string    `json:"url"`
	R2URL           *string   `json:"r2_url,omitempty"`
	SupabaseURL     *string   `json:"supabase_url,omitempty"`
	LocalPath       *string   `json:"local_path,omitempty"`
	AltText         *string   `json:"alt_text"`
	Caption         *string   `json:"caption"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListOutput is a page of media rows.
type ListOutput struct {
	Files []Output `json:"files"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
	Total int64    `json:"total"`
}

// PresignInput requests a direct-upload URL from the primary cloud backend.
type PresignInput struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type"`
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*Output, error) {
	if len(input.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if int64(len(input.Data)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file exceeds the %d byte upload limit", s.maxBytes))
	}
	originalName := strings.TrimSpace(input.OriginalName)
	if originalName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "original filename is required")
	}

	contentType := detectContentType(input.Data, input.ContentType)

	filename, err := generateFilename(originalName, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate filename")
	}

	results, uploadErrs := s.uploadToCloud(ctx, input.Data, filename, contentType)
	for _, uerr := range uploadErrs {
		uctx := s.logg.WithProvider(ctx, uerr.Provider)
		s.logg.Warn(s.logg.WithField(uctx, "filename", filename), "cloud upload failed")
	}

	if len(results) == 0 {
		localRes, localErr := s.local.Upload(ctx, input.Data, filename, contentType)
		if localErr != nil {
			details := make([]string, 0, len(uploadErrs)+1)
			for _, uerr := range uploadErrs {
				details = append(details, uerr.Error())
			}
			details = append(details, localErr.Error())
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorageExhausted, localErr,
				"every storage backend rejected the file").WithDetails(details)
		}
		results = append(results, localRes)
	}

	row := buildMediaRow(results, filename, originalName, contentType, int64(len(input.Data)), input)

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		// metadata is the source of truth: orphaned objects get removed
		s.deleteFromProviders(ctx, results, filename)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist media row")
	}

	s.cache.Invalidate(ctx, cache.FamilyMedia)

	out := toOutput(created)
	return &out, nil
}

// uploadToCloud fans the write out to every cloud backend concurrently and
// waits for all of them. One backend failing never cancels the others.
func (s *service) uploadToCloud(ctx context.Context, data []byte, filename, contentType string) ([]*storage.UploadResult, []*storage.UploadError) {
	if len(s.cloud) == 0 {
		return nil, nil
	}

	results := make([]*storage.UploadResult, len(s.cloud))
	errs := make([]*storage.UploadError, len(s.cloud))

	var wg sync.WaitGroup
	for i, provider := range s.cloud {
		wg.Add(1)
		go func(i int, provider storage.Provider) {
			defer wg.Done()
			res, err := provider.Upload(ctx, data, filename, contentType)
			if err != nil {
				uerr, ok := err.(*storage.UploadError)
				if !ok {
					uerr = &storage.UploadError{Provider: provider.Name(), Err: err}
				}
				errs[i] = uerr
				return
			}
			results[i] = res
		}(i, provider)
	}
	wg.Wait()

	// compact, preserving priority order
	var okResults []*storage.UploadResult
	var failed []*storage.UploadError
	for i := range s.cloud {
		if results[i] != nil {
			okResults = append(okResults, results[i])
		}
		if errs[i] != nil {
			failed = append(failed, errs[i])
		}
	}
	return okResults, failed
}

// buildMediaRow resolves primary/backup provider tags from the settled
// results. Results arrive in priority order (r2 > supabase > local), so the
// first is the primary and the second, if any, the backup.
func buildMediaRow(results []*storage.UploadResult, filename, originalName, contentType string, size int64, input UploadInput) *models.MediaFile {
	row := &models.MediaFile{
		Filename:     filename,
		OriginalName: originalName,
		SizeBytes:    size,
		MimeType:     contentType,
		AltText:      input.AltText,
		Caption:      input.Caption,
		Tags:         input.Tags,
		IsActive:     true,
	}

	for i, res := range results {
		switch res.Provider {
		case storage.ProviderR2:
			url := res.URL
			row.R2URL = &url
		case storage.ProviderSupabase:
			url := res.URL
			row.SupabaseURL = &url
		case storage.ProviderLocal:
			url := res.URL
			row.LocalPath = &url
		}
		switch i {
		case 0:
			row.StorageProvider = res.Provider
		case 1:
			row.BackupProvider = res.Provider
		}
	}

	// a lone local write doubles as its own backup tag
	if row.StorageProvider == storage.ProviderLocal && row.BackupProvider == "" {
		row.BackupProvider = storage.ProviderLocal
	}
	return row
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Output, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
	}
	out := toOutput(row)
	return &out, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListOutput, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media")
	}

	files := make([]Output, 0, len(rows))
	for i := range rows {
		files = append(files, toOutput(&rows[i]))
	}

	params := filter.Pagination
	return &ListOutput{
		Files: files,
		Page:  max(params.Page, 1),
		Limit: params.Limit,
		Total: total,
	}, nil
}

// Download streams the object, walking primary then backup then local until
// one backend produces the bytes.
func (s *service) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, *Output, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
	}

	var lastErr error
	for _, name := range downloadOrder(row) {
		provider, ok := s.byName[name]
		if !ok {
			continue
		}
		rc, openErr := provider.Open(ctx, row.Filename)
		if openErr == nil {
			out := toOutput(row)
			return rc, &out, nil
		}
		lastErr = openErr
		s.logg.Warn(s.logg.WithProvider(ctx, name), "download attempt failed")
	}

	return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "no storage backend could serve the file")
}

// downloadOrder lists the provider tags that hold a copy, primary first.
func downloadOrder(row *models.MediaFile) []string {
	var order []string
	seen := map[string]bool{}
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	add(row.StorageProvider)
	add(row.BackupProvider)
	if row.LocalPath != nil {
		add(storage.ProviderLocal)
	}
	return order
}

// Delete soft-deletes the row and fires best-effort object deletes at every
// backend holding a copy. Provider failures never surface.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete media")
	}

	cleanupCtx := context.WithoutCancel(ctx)
	for _, name := range downloadOrder(row) {
		provider, ok := s.byName[name]
		if !ok {
			continue
		}
		go provider.Delete(cleanupCtx, row.Filename)
	}

	s.cache.Invalidate(ctx, cache.FamilyMedia)
	return nil
}

func (s *service) PresignUpload(ctx context.Context, input PresignInput) (*storage.PresignedURL, error) {
	filename := strings.TrimSpace(input.Filename)
	if filename == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "filename is required")
	}
	if len(s.cloud) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no cloud storage backend is configured")
	}

	stored, err := generateFilename(filename, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate filename")
	}

	signed, err := s.cloud[0].PresignUpload(ctx, stored, storage.PresignOptions{ContentType: input.ContentType})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "presign upload")
	}
	return signed, nil
}

// deleteFromProviders removes freshly written objects after a failed
// metadata insert.
func (s *service) deleteFromProviders(ctx context.Context, results []*storage.UploadResult, filename string) {
	cleanupCtx := context.WithoutCancel(ctx)
	for _, res := range results {
		if provider, ok := s.byName[res.Provider]; ok {
			go provider.Delete(cleanupCtx, filename)
		}
	}
}

// detectContentType sniffs the payload; the client-declared type only wins
// when sniffing cannot do better than a generic binary tag.
func detectContentType(data []byte, declared string) string {
	detected := mimetype.Detect(data).String()
	if detected == "application/octet-stream" && declared != "" {
		return declared
	}
	return detected
}

func toOutput(row *models.MediaFile) Output {
	return Output{
		ID:              row.ID,
		Filename:        row.Filename,
		OriginalName:    row.OriginalName,
		SizeBytes:       row.SizeBytes,
		MimeType:        row.MimeType,
		StorageProvider: row.StorageProvider,
		BackupProvider:  row.BackupProvider,
		URL:             row.PrimaryURL(),
		R2URL:           row.R2URL,
		SupabaseURL:     row.SupabaseURL,
		LocalPath:       row.LocalPath,
		AltText:         row.AltText,
		Caption:         row.Caption,
		Tags:            row.Tags,
		CreatedAt:       row.CreatedAt,
	}
}
