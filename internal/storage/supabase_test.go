package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rmadriz/portfolio-backend/pkg/config"
	"github.com/stretchr/testify/require"
)

func newTestSupabase(t *testing.T, handler http.Handler) *Supabase {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sb, err := NewSupabase(config.SupabaseConfig{
		URL:        server.URL,
		ServiceKey: "service-key",
		Bucket:     "media",
	}, 15*time.Minute, nil)
	require.NoError(t, err)
	return sb
}

func TestSupabaseUpload(t *testing.T) {
	var gotAuth, gotContentType, gotPath string
	sb := newTestSupabase(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Key":"media/pic.png"}`))
	}))

	res, err := sb.Upload(context.Background(), []byte("png-bytes"), "pic.png", "image/png")
	require.NoError(t, err)
	require.Equal(t, ProviderSupabase, res.Provider)
	require.Equal(t, int64(9), res.SizeBytes)
	require.Equal(t, "Bearer service-key", gotAuth)
	require.Equal(t, "image/png", gotContentType)
	require.Equal(t, "/storage/v1/object/media/pic.png", gotPath)
	require.Contains(t, res.URL, "/storage/v1/object/public/media/pic.png")
}

func TestSupabaseUploadFailureIsTagged(t *testing.T) {
	sb := newTestSupabase(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bucket not found"}`, http.StatusNotFound)
	}))

	_, err := sb.Upload(context.Background(), []byte("x"), "pic.png", "image/png")
	require.Error(t, err)

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	require.Equal(t, ProviderSupabase, uploadErr.Provider)
	require.Contains(t, uploadErr.Error(), "bucket not found")
}

func TestSupabaseDeleteSwallowsFailures(t *testing.T) {
	ok := newTestSupabase(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	require.True(t, ok.Delete(context.Background(), "pic.png"))

	failing := newTestSupabase(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	require.False(t, failing.Delete(context.Background(), "pic.png"))
}

func TestSupabaseExists(t *testing.T) {
	sb := newTestSupabase(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/storage/v1/object/info/media/present.png" {
			_, _ = w.Write([]byte(`{"name":"present.png","metadata":{"size":42,"mimetype":"image/png"}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	exists, err := sb.Exists(context.Background(), "present.png")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = sb.Exists(context.Background(), "absent.png")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSupabaseList(t *testing.T) {
	sb := newTestSupabase(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/storage/v1/object/list/media", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"name":"a.png","updated_at":"2026-01-10T12:00:00Z","metadata":{"size":10,"mimetype":"image/png"}},
			{"name":"b.png","updated_at":"2026-01-11T12:00:00Z","metadata":{"size":20,"mimetype":"image/png"}}
		]`))
	}))

	infos, err := sb.List(context.Background(), "", 100)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "a.png", infos[0].Filename)
	require.Equal(t, int64(10), infos[0].SizeBytes)
	require.Equal(t, "image/png", infos[0].ContentType)
	require.Equal(t, 2026, infos[0].LastModified.Year())
}

func TestSupabasePresignUpload(t *testing.T) {
	sb := newTestSupabase(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/storage/v1/object/upload/sign/media/pic.png", r.URL.Path)
		_, _ = w.Write([]byte(`{"url":"/object/upload/sign/media/pic.png?token=tok"}`))
	}))

	signed, err := sb.PresignUpload(context.Background(), "pic.png", PresignOptions{ContentType: "image/png"})
	require.NoError(t, err)
	require.Equal(t, ProviderSupabase, signed.Provider)
	require.Equal(t, http.MethodPut, signed.Method)
	require.Contains(t, signed.URL, "token=tok")
	require.True(t, signed.ExpiresAt.After(time.Now()))
}
