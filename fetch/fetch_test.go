package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRewriteGithub(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{
			"https://github.com/org/repo/blob/main/abis/token.json",
			"https://raw.githubusercontent.com/org/repo/main/abis/token.json",
		},
		{
			"https://example.com/abis/token.json",
			"https://example.com/abis/token.json",
		},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, rewriteGithub(u))
	}
}

func TestJSONCaching(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"name": "Permit"}`))
	}))
	defer srv.Close()

	s := New(Config{CacheDir: t.TempDir(), CacheTTL: time.Hour}, zaptest.NewLogger(t))

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, s.JSON(context.Background(), srv.URL, &out))
	assert.Equal(t, "Permit", out.Name)

	out.Name = ""
	require.NoError(t, s.JSON(context.Background(), srv.URL, &out))
	assert.Equal(t, "Permit", out.Name)
	assert.Equal(t, 1, hits)
}

func TestJSONExpiredCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := New(Config{CacheDir: t.TempDir(), CacheTTL: time.Nanosecond}, zaptest.NewLogger(t))
	var out map[string]any
	require.NoError(t, s.JSON(context.Background(), srv.URL, &out))
	require.NoError(t, s.JSON(context.Background(), srv.URL, &out))
	assert.Equal(t, 2, hits)
}

func TestFileURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"primaryType": "Permit"}`), 0o644))

	s := New(Config{CacheDir: dir}, zaptest.NewLogger(t))
	var out struct {
		PrimaryType string `json:"primaryType"`
	}
	require.NoError(t, s.JSON(context.Background(), "file://"+path, &out))
	assert.Equal(t, "Permit", out.PrimaryType)
}

func TestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	s := New(Config{CacheDir: t.TempDir()}, zaptest.NewLogger(t))
	_, err := s.Bytes(context.Background(), srv.URL)
	assert.Error(t, err)
}
