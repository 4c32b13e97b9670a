package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setFlag sets a global flag for the duration of the test.
func setFlag(t *testing.T, name, value string) {
	t.Helper()
	old := flag.Lookup(name).Value.String()
	require.NoError(t, flag.Set(name, value))
	t.Cleanup(func() { flag.Set(name, old) })
}

func TestExtensionMechanism(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extensions are shell scripts in this test")
	}
	tempDir := t.TempDir()
	script := "#!/bin/sh\nenv | grep '^FINASYNC_' > \"$1\"\nexit 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "finasync-hello"), []byte(script), 0o755))
	t.Setenv("PATH", tempDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	setFlag(t, "store", "sqlite")
	setFlag(t, "store-path", "/tmp/fina.db")
	setFlag(t, "v", "true")

	out := filepath.Join(tempDir, "env.txt")
	found, code := RunExtension("hello", []string{out})
	require.True(t, found, "extension finasync-hello not found")
	assert.Equal(t, 3, code)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	for _, want := range []string{EnvStore + "=sqlite", EnvStorePath + "=/tmp/fina.db", EnvVerbose + "=true"} {
		assert.Contains(t, string(content), want)
	}
	if os.Getenv(EnvSession) == "" {
		assert.NotContains(t, string(content), EnvSession+"=", "unset flags must not be passed")
	}
}

func TestExtensionNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	found, _ := RunExtension("nope", nil)
	assert.False(t, found)
}
