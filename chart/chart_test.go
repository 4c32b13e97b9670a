package chart

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/finasync"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic), "not a png file")
}

func TestRender(t *testing.T) {
	r := New(t.TempDir())
	path, err := r.Render(d(500), d(4500), d(2000))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.Dir, FileName), path)
	assertPNG(t, path)
}

func TestRender_AllZero(t *testing.T) {
	r := New(t.TempDir())
	res := r.Outcome(decimal.Zero, decimal.Zero, decimal.Zero)
	require.Equal(t, finasync.StatusSuccess, res.Status, res.ErrorMessage)
	assertPNG(t, res.ImagePath)
}

func TestRender_NegativeAndZero(t *testing.T) {
	r := New(t.TempDir())
	path, err := r.Render(d(6000), d(-1000), decimal.Zero)
	require.NoError(t, err)
	assertPNG(t, path)
}

func TestRender_Overwrites(t *testing.T) {
	r := New(t.TempDir())
	require.NoError(t, os.WriteFile(r.Path(), []byte("old"), 0o644))

	_, err := r.Render(d(1), d(2), d(3))
	require.NoError(t, err)
	assertPNG(t, r.Path())
}

func TestRender_MissingDir(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "missing"))
	res := r.Outcome(d(1), d(2), d(3))
	assert.Equal(t, finasync.StatusError, res.Status)
	assert.NotEmpty(t, res.ErrorMessage)
}

type brokenDrawer struct{}

func (brokenDrawer) Render(_, _, _ decimal.Decimal) (string, error) {
	return "", errors.New("no space left")
}

func TestDrawOutcome(t *testing.T) {
	res := DrawOutcome(brokenDrawer{}, d(1), d(2), d(3))
	assert.Equal(t, finasync.StatusError, res.Status)
	assert.Equal(t, "no space left", res.ErrorMessage)

	res = DrawOutcome(New(t.TempDir()), d(1), d(2), d(3))
	require.Equal(t, finasync.StatusSuccess, res.Status)
	assertPNG(t, res.ImagePath)
}
