package upload

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	u := New(config.Upload{})
	assert.False(t, u.Available())
	_, err := u.Upload(t.Context(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)

	u = New(config.Upload{URL: "https://drive.example.com"})
	assert.True(t, u.Available())
}

func TestHTTP_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t0k", r.Header.Get("Authorization"))
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		content, _ := io.ReadAll(f)
		assert.Equal(t, "report.md", hdr.Filename)
		assert.Equal(t, "# Report", string(content))
		_, _ = w.Write([]byte(`{"location": "drive://reports/report.md"}`))
	}))
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, os.WriteFile(path, []byte("# Report"), 0o644))

	u := New(config.Upload{URL: srv.URL, Token: "t0k"})
	res := Outcome(t.Context(), u, path)
	require.Equal(t, finasync.StatusSuccess, res.Status, res.ErrorMessage)
	assert.Equal(t, "drive://reports/report.md", res.Location)
}

func TestHTTP_UploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusInsufficientStorage)
	}))
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	_, err := New(config.Upload{URL: srv.URL}).Upload(t.Context(), path)
	assert.ErrorContains(t, err, "507")
}

func TestHTTP_UploadMissingFile(t *testing.T) {
	res := Outcome(t.Context(), New(config.Upload{URL: "http://127.0.0.1:1"}), filepath.Join(t.TempDir(), "none"))
	assert.Equal(t, finasync.StatusError, res.Status)
}
