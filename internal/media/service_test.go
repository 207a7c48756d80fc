package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rmadriz/portfolio-backend/internal/storage"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	pkgerrors "github.com/rmadriz/portfolio-backend/pkg/errors"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubMediaRepo struct {
	rows      map[uuid.UUID]*models.MediaFile
	createErr error
}

func newStubMediaRepo() *stubMediaRepo {
	return &stubMediaRepo{rows: map[uuid.UUID]*models.MediaFile{}}
}

func (s *stubMediaRepo) Create(_ context.Context, file *models.MediaFile) (*models.MediaFile, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	file.ID = uuid.New()
	file.CreatedAt = time.Now()
	s.rows[file.ID] = file
	return file, nil
}

func (s *stubMediaRepo) FindByID(_ context.Context, id uuid.UUID) (*models.MediaFile, error) {
	row, ok := s.rows[id]
	if !ok || !row.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *stubMediaRepo) List(_ context.Context, filter ListFilter) ([]models.MediaFile, int64, error) {
	var rows []models.MediaFile
	for _, row := range s.rows {
		if !row.IsActive {
			continue
		}
		if filter.MimePrefix != "" && !strings.HasPrefix(row.MimeType, filter.MimePrefix) {
			continue
		}
		rows = append(rows, *row)
	}
	return rows, int64(len(rows)), nil
}

func (s *stubMediaRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	row, ok := s.rows[id]
	if !ok || !row.IsActive {
		return gorm.ErrRecordNotFound
	}
	row.IsActive = false
	return nil
}

type stubProvider struct {
	mu         sync.Mutex
	name       string
	failUpload bool
	failOpen   bool
	objects    map[string][]byte
	deleted    []string
}

func newStubProvider(name string) *stubProvider {
	return &stubProvider{name: name, objects: map[string][]byte{}}
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Upload(_ context.Context, data []byte, filename, _ string) (*storage.UploadResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failUpload {
		return nil, &storage.UploadError{Provider: p.name, Err: errors.New("backend unavailable")}
	}
	p.objects[filename] = data
	return &storage.UploadResult{
		Provider:  p.name,
		Filename:  filename,
		URL:       "https://" + p.name + ".example.com/" + filename,
		SizeBytes: int64(len(data)),
	}, nil
}

func (p *stubProvider) Open(_ context.Context, filename string) (io.ReadCloser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOpen {
		return nil, errors.New("backend unavailable")
	}
	data, ok := p.objects[filename]
	if !ok {
		return nil, errors.New("object missing")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (p *stubProvider) Delete(_ context.Context, filename string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, filename)
	delete(p.objects, filename)
	return true
}

func (p *stubProvider) deletedFiles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.deleted...)
}

func (p *stubProvider) FileURL(filename string) string {
	return "https://" + p.name + ".example.com/" + filename
}

func (p *stubProvider) Exists(_ context.Context, filename string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.objects[filename]
	return ok, nil
}

func (p *stubProvider) PresignUpload(_ context.Context, filename string, _ storage.PresignOptions) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{
		Provider:  p.name,
		URL:       "https://" + p.name + ".example.com/upload/" + filename,
		Method:    "PUT",
		ExpiresAt: time.Now().Add(time.Minute),
	}, nil
}

func (p *stubProvider) Metadata(_ context.Context, filename string) (*storage.ObjectInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, ok := p.objects[filename]
	if !ok {
		return nil, errors.New("object missing")
	}
	return &storage.ObjectInfo{Filename: filename, SizeBytes: int64(len(data))}, nil
}

func (p *stubProvider) List(context.Context, string, int) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newUploadService(t *testing.T, repo repository, cloud []storage.Provider, local storage.Provider) Service {
	t.Helper()
	svc, err := NewService(repo, cloud, local, 1<<20, nil, testLogger())
	require.NoError(t, err)
	return svc
}

func TestUploadDualSuccessStoresBothURLs(t *testing.T) {
	r2 := newStubProvider(storage.ProviderR2)
	supabase := newStubProvider(storage.ProviderSupabase)
	local := newStubProvider(storage.ProviderLocal)
	repo := newStubMediaRepo()
	svc := newUploadService(t, repo, []storage.Provider{r2, supabase}, local)

	out, err := svc.Upload(context.Background(), UploadInput{
		Data:         []byte("image-bytes"),
		OriginalName: "Photo.PNG",
	})
	require.NoError(t, err)

	require.Equal(t, storage.ProviderR2, out.StorageProvider)
	require.Equal(t, storage.ProviderSupabase, out.BackupProvider)
	require.NotNil(t, out.R2URL)
	require.NotNil(t, out.SupabaseURL)
	require.Nil(t, out.LocalPath)
	require.Equal(t, *out.R2URL, out.URL)
	require.True(t, strings.HasSuffix(out.Filename, ".png"))

	// nothing hit the local disk
	require.Empty(t, local.objects)
}

func TestUploadPartialFailureKeepsSurvivor(t *testing.T) {
	r2 := newStubProvider(storage.ProviderR2)
	r2.failUpload = true
	supabase := newStubProvider(storage.ProviderSupabase)
	local := newStubProvider(storage.ProviderLocal)
	svc := newUploadService(t, newStubMediaRepo(), []storage.Provider{r2, supabase}, local)

	out, err := svc.Upload(context.Background(), UploadInput{
		Data:         []byte("x"),
		OriginalName: "a.jpg",
	})
	require.NoError(t, err)

	require.Equal(t, storage.ProviderSupabase, out.StorageProvider)
	require.Empty(t, out.BackupProvider)
	require.Nil(t, out.R2URL)
	require.NotNil(t, out.SupabaseURL)
	require.Empty(t, local.objects)
}

func TestUploadTotalCloudFailureFallsBackToLocal(t *testing.T) {
	r2 := newStubProvider(storage.ProviderR2)
	r2.failUpload = true
	supabase := newStubProvider(storage.ProviderSupabase)
	supabase.failUpload = true
	local := newStubProvider(storage.ProviderLocal)
	svc := newUploadService(t, newStubMediaRepo(), []storage.Provider{r2, supabase}, local)

	data := []byte("fallback-bytes")
	out, err := svc.Upload(context.Background(), UploadInput{
		Data:         data,
		OriginalName: "doc.pdf",
	})
	require.NoError(t, err)

	require.Equal(t, storage.ProviderLocal, out.StorageProvider)
	require.Equal(t, storage.ProviderLocal, out.BackupProvider)
	require.Nil(t, out.R2URL)
	require.Nil(t, out.SupabaseURL)
	require.NotNil(t, out.LocalPath)

	// the fallback copy is readable
	require.Equal(t, data, local.objects[out.Filename])
}

func TestUploadStorageExhausted(t *testing.T) {
	r2 := newStubProvider(storage.ProviderR2)
	r2.failUpload = true
	local := newStubProvider(storage.ProviderLocal)
	local.failUpload = true
	svc := newUploadService(t, newStubMediaRepo(), []storage.Provider{r2}, local)

	_, err := svc.Upload(context.Background(), UploadInput{
		Data:         []byte("x"),
		OriginalName: "a.bin",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStorageExhausted, pkgerrors.As(err).Code())
	require.NotNil(t, pkgerrors.As(err).Details())
}

func TestUploadIdenticalBytesGetDistinctFilenames(t *testing.T) {
	r2 := newStubProvider(storage.ProviderR2)
	svc := newUploadService(t, newStubMediaRepo(), []storage.Provider{r2}, newStubProvider(storage.ProviderLocal))

	data := []byte("same-bytes")
	first, err := svc.Upload(context.Background(), UploadInput{Data: data, OriginalName: "a.png"})
	require.NoError(t, err)
	second, err := svc.Upload(context.Background(), UploadInput{Data: data, OriginalName: "a.png"})
	require.NoError(t, err)

	require.NotEqual(t, first.Filename, second.Filename)
	require.Len(t, r2.objects, 2)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc, err := NewService(newStubMediaRepo(), nil, newStubProvider(storage.ProviderLocal), 10, nil, testLogger())
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), UploadInput{
		Data:         []byte("0123456789ab"),
		OriginalName: "big.bin",
	})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDeleteSoftDeletesAndFiresProviderDeletes(t *testing.T) {
	r2 := newStubProvider(storage.ProviderR2)
	supabase := newStubProvider(storage.ProviderSupabase)
	local := newStubProvider(storage.ProviderLocal)
	repo := newStubMediaRepo()
	svc := newUploadService(t, repo, []storage.Provider{r2, supabase}, local)

	out, err := svc.Upload(context.Background(), UploadInput{Data: []byte("x"), OriginalName: "a.png"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), out.ID))

	// soft deleted: the row is gone from reads
	_, err = svc.Get(context.Background(), out.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	// provider deletes are asynchronous and best-effort
	require.Eventually(t, func() bool {
		return len(r2.deletedFiles()) == 1 && len(supabase.deletedFiles()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestDownloadFallsBackThroughProviders(t *testing.T) {
	r2 := newStubProvider(storage.ProviderR2)
	supabase := newStubProvider(storage.ProviderSupabase)
	repo := newStubMediaRepo()
	svc := newUploadService(t, repo, []storage.Provider{r2, supabase}, newStubProvider(storage.ProviderLocal))

	out, err := svc.Upload(context.Background(), UploadInput{Data: []byte("payload"), OriginalName: "a.txt"})
	require.NoError(t, err)

	// primary goes dark after the upload
	r2.failOpen = true

	rc, meta, err := svc.Download(context.Background(), out.ID)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "payload", string(got))
	require.Equal(t, out.Filename, meta.Filename)
}

func TestPresignUsesPrimaryCloudProvider(t *testing.T) {
	r2 := newStubProvider(storage.ProviderR2)
	supabase := newStubProvider(storage.ProviderSupabase)
	svc := newUploadService(t, newStubMediaRepo(), []storage.Provider{r2, supabase}, newStubProvider(storage.ProviderLocal))

	signed, err := svc.PresignUpload(context.Background(), PresignInput{Filename: "pic.png", ContentType: "image/png"})
	require.NoError(t, err)
	require.Equal(t, storage.ProviderR2, signed.Provider)
}

func TestPresignWithoutCloudProvidersRejected(t *testing.T) {
	svc := newUploadService(t, newStubMediaRepo(), nil, newStubProvider(storage.ProviderLocal))

	_, err := svc.PresignUpload(context.Background(), PresignInput{Filename: "pic.png"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUploadSniffsContentType(t *testing.T) {
	r2 := newStubProvider(storage.ProviderR2)
	svc := newUploadService(t, newStubMediaRepo(), []storage.Provider{r2}, newStubProvider(storage.ProviderLocal))

	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	out, err := svc.Upload(context.Background(), UploadInput{
		Data:         pngHeader,
		OriginalName: "pic.dat",
		ContentType:  "application/octet-stream",
	})
	require.NoError(t, err)
	require.Equal(t, "image/png", out.MimeType)
}
