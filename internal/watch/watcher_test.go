package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, paths ...string) *Watcher {
	t.Helper()
	w, err := New(paths, []string{".hcl", ".YAML"}, 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func TestWatcher_ReportsMatchingFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(nested, 0o755))
	w := startWatcher(t, dir)

	// --- Act ---
	target := filepath.Join(nested, "level.yaml")
	require.NoError(t, os.WriteFile(target, []byte("grids: {}\n"), 0o600))

	// --- Assert ---
	select {
	case got := <-w.Changes:
		assert.Equal(t, target, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600))

	select {
	case got := <-w.Changes:
		t.Fatalf("unexpected change for %s", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "main.hcl")
	require.NoError(t, os.WriteFile(target, nil, 0o600))
	w := startWatcher(t, target)

	for i := range 5 {
		require.NoError(t, os.WriteFile(target, []byte{byte('a' + i)}, 0o600))
	}

	select {
	case <-w.Changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case <-w.Changes:
		t.Fatal("burst was reported more than once")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNew_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, []string{".hcl"}, time.Millisecond)

	require.ErrorIs(t, err, os.ErrNotExist)
}
