package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rmadriz/portfolio-backend/pkg/config"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
)

const supabaseStoragePath = "/storage/v1"

// Supabase talks to the Supabase Storage REST API directly. The official
// client is not worth the dependency for the handful of endpoints used here.
type Supabase struct {
	httpClient *http.Client
	baseURL    string
	serviceKey string
	bucket     string
	presignTTL time.Duration
	logg       *logger.Logger
}

func NewSupabase(cfg config.SupabaseConfig, presignTTL time.Duration, logg *logger.Logger) (*Supabase, error) {
	if !cfg.Configured() {
		return nil, errors.New("supabase url, service key, and bucket are required")
	}
	if presignTTL <= 0 {
		return nil, errors.New("presign ttl must be positive")
	}

	return &Supabase{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.Bucket,
		presignTTL: presignTTL,
		logg:       logg,
	}, nil
}

func (s *Supabase) Name() string {
	return ProviderSupabase
}

func (s *Supabase) objectURL(filename string) string {
	return fmt.Sprintf("%s%s/object/%s/%s",
		s.baseURL, supabaseStoragePath, url.PathEscape(s.bucket), url.PathEscape(filename))
}

func (s *Supabase) Upload(ctx context.Context, data []byte, filename, contentType string) (*UploadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(filename), bytes.NewReader(data))
	if err != nil {
		return nil, &UploadError{Provider: ProviderSupabase, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &UploadError{Provider: ProviderSupabase, Err: err}
	}
	defer s.closeBody(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, &UploadError{Provider: ProviderSupabase, Err: s.statusError("upload", resp)}
	}

	return &UploadResult{
		Provider:  ProviderSupabase,
		Filename:  filename,
		URL:       s.FileURL(filename),
		SizeBytes: int64(len(data)),
	}, nil
}

func (s *Supabase) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(filename), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase get object %q: %w", filename, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer s.closeBody(ctx, resp.Body)
		return nil, s.statusError("download", resp)
	}
	return resp.Body, nil
}

func (s *Supabase) Delete(ctx context.Context, filename string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(filename), nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.warnDelete(ctx, filename, err)
		return false
	}
	defer s.closeBody(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		s.warnDelete(ctx, filename, s.statusError("delete", resp))
		return false
	}
	return true
}

// FileURL is the bucket's public-object URL. Buckets used here are public;
// access control lives on the API, not the CDN path.
func (s *Supabase) FileURL(filename string) string {
	return fmt.Sprintf("%s%s/object/public/%s/%s",
		s.baseURL, supabaseStoragePath, url.PathEscape(s.bucket), url.PathEscape(filename))
}

func (s *Supabase) Exists(ctx context.Context, filename string) (bool, error) {
	info, err := s.objectInfo(ctx, filename)
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

func (s *Supabase) PresignUpload(ctx context.Context, filename string, opts PresignOptions) (*PresignedURL, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = s.presignTTL
	}

	signURL := fmt.Sprintf("%s%s/object/upload/sign/%s/%s",
		s.baseURL, supabaseStoragePath, url.PathEscape(s.bucket), url.PathEscape(filename))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signURL, strings.NewReader("{}"))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase presign: %w", err)
	}
	defer s.closeBody(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, s.statusError("presign", resp)
	}

	var signed struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return nil, fmt.Errorf("decoding presign response: %w", err)
	}
	if signed.URL == "" {
		return nil, errors.New("presign response missing url")
	}

	return &PresignedURL{
		Provider:  ProviderSupabase,
		URL:       s.baseURL + supabaseStoragePath + signed.URL,
		Method:    http.MethodPut,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (s *Supabase) Metadata(ctx context.Context, filename string) (*ObjectInfo, error) {
	info, err := s.objectInfo(ctx, filename)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("supabase object %q not found", filename)
	}
	return info, nil
}

func (s *Supabase) List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error) {
	listURL := fmt.Sprintf("%s%s/object/list/%s",
		s.baseURL, supabaseStoragePath, url.PathEscape(s.bucket))

	body, err := json.Marshal(map[string]any{
		"prefix": prefix,
		"limit":  limit,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, listURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase list: %w", err)
	}
	defer s.closeBody(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, s.statusError("list", resp)
	}

	var entries []supabaseObject
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding list response: %w", err)
	}

	infos := make([]ObjectInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, e.toObjectInfo())
	}
	return infos, nil
}

type supabaseObject struct {
	Name      string `json:"name"`
	UpdatedAt string `json:"updated_at"`
	Metadata  struct {
		Size     int64  `json:"size"`
		MimeType string `json:"mimetype"`
	} `json:"metadata"`
}

func (o supabaseObject) toObjectInfo() ObjectInfo {
	info := ObjectInfo{
		Filename:    o.Name,
		SizeBytes:   o.Metadata.Size,
		ContentType: o.Metadata.MimeType,
	}
	if ts, err := time.Parse(time.RFC3339, o.UpdatedAt); err == nil {
		info.LastModified = ts
	}
	return info
}

func (s *Supabase) objectInfo(ctx context.Context, filename string) (*ObjectInfo, error) {
	infoURL := fmt.Sprintf("%s%s/object/info/%s/%s",
		s.baseURL, supabaseStoragePath, url.PathEscape(s.bucket), url.PathEscape(filename))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase object info %q: %w", filename, err)
	}
	defer s.closeBody(ctx, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		var obj supabaseObject
		if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
			return nil, fmt.Errorf("decoding object info: %w", err)
		}
		if obj.Name == "" {
			obj.Name = filename
		}
		info := obj.toObjectInfo()
		return &info, nil

	case http.StatusNotFound:
		return nil, nil

	default:
		return nil, s.statusError("object info", resp)
	}
}

func (s *Supabase) statusError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if len(b) > 0 {
		return fmt.Errorf("supabase %s failed: %s: %s", op, resp.Status, strings.TrimSpace(string(b)))
	}
	return fmt.Errorf("supabase %s failed: %s", op, resp.Status)
}

func (s *Supabase) closeBody(ctx context.Context, body io.Closer) {
	if body == nil {
		return
	}
	if err := body.Close(); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "supabase: closing response body failed")
	}
}

func (s *Supabase) warnDelete(ctx context.Context, filename string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithProvider(ctx, ProviderSupabase)
	ctx = s.logg.WithFields(ctx, map[string]any{"filename": filename, "error": err.Error()})
	s.logg.Warn(ctx, "object delete failed")
}
