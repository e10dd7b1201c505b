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

func startWatcher(t *testing.T, dir string, handler Handler) {
	t.Helper()
	w, err := New(dir, handler, WithDebounce(20*time.Millisecond))
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
	// Let Run enter its loop before files are written.
	time.Sleep(20 * time.Millisecond)
}

func TestNewRequiresHandler(t *testing.T) {
	_, err := New(t.TempDir(), nil)
	assert.Error(t, err)
}

func TestNewCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "templates")
	w, err := New(dir, func(context.Context, string) error { return nil })
	require.NoError(t, err)
	defer w.Close()
	assert.DirExists(t, dir)
}

func TestWatcherHandlesTemplate(t *testing.T) {
	dir := t.TempDir()
	seen := make(chan string, 10)
	startWatcher(t, dir, func(_ context.Context, path string) error {
		seen <- path
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	template := filepath.Join(dir, "Windows_10_STIG_V2R2.cklb")
	require.NoError(t, os.WriteFile(template, []byte(`{"stigs":[]}`), 0o600))

	select {
	case got := <-seen:
		assert.Equal(t, template, got)
	case <-time.After(5 * time.Second):
		t.Fatal("template was not handled")
	}

	// Rewriting identical content is not handled twice.
	require.NoError(t, os.WriteFile(template, []byte(`{"stigs":[]}`), 0o600))
	select {
	case got := <-seen:
		t.Fatalf("unexpected second event for %s", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresUpgradedOutput(t *testing.T) {
	dir := t.TempDir()
	seen := make(chan string, 10)
	startWatcher(t, dir, func(_ context.Context, path string) error {
		seen <- path
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "host1_upgraded_20260314.cklb"), []byte(`{"stigs":[]}`), 0o600))
	template := filepath.Join(dir, "Windows_10_STIG_V2R3.cklb")
	require.NoError(t, os.WriteFile(template, []byte(`{"stigs":[]}`), 0o600))

	select {
	case got := <-seen:
		assert.Equal(t, template, got)
	case <-time.After(5 * time.Second):
		t.Fatal("template was not handled")
	}
	select {
	case got := <-seen:
		t.Fatalf("upgraded output handled as a template: %s", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestIsUpgraded(t *testing.T) {
	assert.True(t, isUpgraded("/out/host1_upgraded_20260314.cklb"))
	assert.True(t, isUpgraded("/out/host_upgraded_20260314_2.cklb"))
	assert.False(t, isUpgraded("/templates/Windows_10_STIG_V2R2.cklb"))
}

func TestIsTemp(t *testing.T) {
	assert.True(t, isTemp("/x/.host1.cklb.123.tmp"))
	assert.True(t, isTemp("/x/.hidden.cklb"))
	assert.False(t, isTemp("/x/host1.cklb"))
}
