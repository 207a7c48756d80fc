package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
)

// ErrPresignUnsupported marks providers that cannot mint direct-upload URLs.
var ErrPresignUnsupported = errors.New("presigned uploads are not supported by this provider")

// Local writes files to a directory served by the API itself. It is the
// fallback of last resort when no cloud backend accepts a write.
type Local struct {
	dir        string
	publicBase string
	logg       *logger.Logger
}

// NewLocal builds the local-disk backend rooted at dir. publicBase is the
// URL path the directory is served under (e.g. "/uploads").
func NewLocal(dir, publicBase string, logg *logger.Logger) (*Local, error) {
	if dir == "" {
		return nil, errors.New("uploads dir is required")
	}
	if publicBase == "" {
		publicBase = "/uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir %q: %w", dir, err)
	}

	return &Local{
		dir:        dir,
		publicBase: strings.TrimRight(publicBase, "/"),
		logg:       logg,
	}, nil
}

func (l *Local) Name() string {
	return ProviderLocal
}

// path resolves a stored filename inside the uploads dir. Base strips any
// directory components so a crafted filename cannot escape the root.
func (l *Local) path(filename string) string {
	return filepath.Join(l.dir, filepath.Base(filename))
}

func (l *Local) Upload(_ context.Context, data []byte, filename, _ string) (*UploadResult, error) {
	if err := os.WriteFile(l.path(filename), data, 0o644); err != nil {
		return nil, &UploadError{Provider: ProviderLocal, Err: err}
	}

	return &UploadResult{
		Provider:  ProviderLocal,
		Filename:  filename,
		URL:       l.FileURL(filename),
		SizeBytes: int64(len(data)),
	}, nil
}

func (l *Local) Open(_ context.Context, filename string) (io.ReadCloser, error) {
	f, err := os.Open(l.path(filename))
	if err != nil {
		return nil, fmt.Errorf("opening local file %q: %w", filename, err)
	}
	return f, nil
}

func (l *Local) Delete(ctx context.Context, filename string) bool {
	err := os.Remove(l.path(filename))
	if err != nil && !os.IsNotExist(err) {
		if l.logg != nil {
			ctx = l.logg.WithProvider(ctx, ProviderLocal)
			l.logg.Warn(l.logg.WithField(ctx, "filename", filename), "object delete failed")
		}
		return false
	}
	return true
}

func (l *Local) FileURL(filename string) string {
	return l.publicBase + "/" + filepath.Base(filename)
}

func (l *Local) Exists(_ context.Context, filename string) (bool, error) {
	_, err := os.Stat(l.path(filename))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (l *Local) PresignUpload(context.Context, string, PresignOptions) (*PresignedURL, error) {
	return nil, ErrPresignUnsupported
}

func (l *Local) Metadata(_ context.Context, filename string) (*ObjectInfo, error) {
	full := l.path(filename)
	stat, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("stat local file %q: %w", filename, err)
	}

	info := &ObjectInfo{
		Filename:     filepath.Base(filename),
		SizeBytes:    stat.Size(),
		LastModified: stat.ModTime(),
	}
	if mt, err := mimetype.DetectFile(full); err == nil {
		info.ContentType = mt.String()
	}
	return info, nil
}

func (l *Local) List(_ context.Context, prefix string, limit int) ([]ObjectInfo, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("reading uploads dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var infos []ObjectInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		stat, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, ObjectInfo{
			Filename:     entry.Name(),
			SizeBytes:    stat.Size(),
			LastModified: stat.ModTime(),
		})
		if limit > 0 && len(infos) >= limit {
			break
		}
	}
	return infos, nil
}
