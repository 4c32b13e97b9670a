// Package upload sends pipeline outputs to a remote document store.
//
// The capability is optional: it is resolved once at startup from the
// configuration, and callers check Available rather than probing.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/etnz/finasync"
	"github.com/etnz/finasync/config"
	zlog "github.com/rs/zerolog/log"
)

// ErrUnavailable is returned by uploaders that cannot upload.
var ErrUnavailable = errors.New("remote upload is not configured")

// Uploader uploads local files.
type Uploader interface {
	// Available reports whether Upload can succeed at all.
	Available() bool
	// Upload sends the file at path and returns where it landed.
	Upload(ctx context.Context, path string) (string, error)
}

// New returns the uploader described by c: an HTTP uploader when a URL is
// configured, Noop otherwise.
func New(c config.Upload) Uploader {
	if c.URL == "" {
		zlog.Debug().Msg("remote upload disabled")
		return Noop{}
	}
	return &HTTP{URL: c.URL, Token: c.Token, Client: new(http.Client)}
}

// Noop is the uploader used when no remote store is configured.
type Noop struct{}

func (Noop) Available() bool { return false }
func (Noop) Upload(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// HTTP posts files as multipart forms, field "file". The server answers with
// a JSON object whose "location" (or "url") is the uploaded file address.
type HTTP struct {
	URL    string
	Token  string
	Client *http.Client
}

func (h *HTTP) Available() bool { return true }

func (h *HTTP) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("cannot read %q: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("cannot upload %q: %v", filepath.Base(path), resp.Status)
	}

	var answer struct {
		Location string `json:"location"`
		URL      string `json:"url"`
	}
	// a body that is not JSON is fine, the upload went through.
	_ = json.NewDecoder(resp.Body).Decode(&answer)
	location := answer.Location
	if location == "" {
		location = answer.URL
	}
	if location == "" {
		location = h.URL
	}
	zlog.Info().Str("file", path).Str("location", location).Msg("uploaded")
	return location, nil
}

// Outcome uploads path and returns the tool outcome.
func Outcome(ctx context.Context, u Uploader, path string) finasync.Result {
	location, err := u.Upload(ctx, path)
	if err != nil {
		return finasync.Failure(err)
	}
	return finasync.Result{Status: finasync.StatusSuccess, Location: location}
}
