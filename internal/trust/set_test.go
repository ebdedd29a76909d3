package trust

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Contains(t *testing.T) {
	s := Default()

	assert.True(t, s.Contains("docs.python.org"))
	assert.True(t, s.Contains("DOCS.Python.org"))
	assert.True(t, s.Contains("www.github.com"))
	assert.True(t, s.Contains("www.youtube.com"))
	assert.False(t, s.Contains("definitely-fake-xyz.com"))
	assert.False(t, s.Contains("api.github.com"))
	assert.False(t, s.Contains(""))
	assert.Equal(t, len(DefaultDomains), s.Len())
}

func TestSet_Replace(t *testing.T) {
	s := NewSet("a.dev")
	s.Replace([]string{" Go.dev ", "", "pkg.go.dev"})

	assert.False(t, s.Contains("a.dev"))
	assert.True(t, s.Contains("go.dev"))
	assert.Equal(t, []string{"go.dev", "pkg.go.dev"}, s.Domains())
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trusted.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trusted_domains:\n  - go.dev\n  - docs.python.org\n"), 0o644))

	domains, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"go.dev", "docs.python.org"}, domains)
}

func TestReadFile_Errors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trusted_domains: [unterminated"), 0o644))
	_, err = ReadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_FailureKeepsCurrentSet(t *testing.T) {
	s := NewSet("go.dev")
	err := s.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
	assert.True(t, s.Contains("go.dev"))
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trusted.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trusted_domains: [go.dev]\n"), 0o644))

	s := NewSet()
	require.NoError(t, s.LoadFile(path))

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, s, path, logger, func(int) { reloads.Add(1) })
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("trusted_domains: [example.org, go.dev]\n"), 0o644))

	assert.Eventually(t, func() bool { return s.Contains("example.org") },
		5*time.Second, 50*time.Millisecond, "set not reloaded after write")
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trusted.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trusted_domains: [go.dev]\n"), 0o644))

	s := NewSet("go.dev")
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	go Watch(ctx, s, path, logger, func(int) { reloads.Add(1) })

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644))
	time.Sleep(500 * time.Millisecond)

	assert.Zero(t, reloads.Load())
	assert.True(t, s.Contains("go.dev"))
}
