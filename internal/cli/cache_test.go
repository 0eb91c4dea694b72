package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/stackbar/pkg/cache"
)

func TestCacheDirUsesXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(xdg, "stackbar"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", home)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(home, ".cache", "stackbar"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	out := captureOutput(t)

	fc, err := cache.NewFileCache(filepath.Join(xdg, "stackbar"))
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := fc.Set(context.Background(), k, []byte("data"), time.Hour); err != nil {
			t.Fatalf("Set(%q) error: %v", k, err)
		}
	}

	root := testCLI().RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}

	if !strings.Contains(out.String(), "Cleared 3 cached entries") {
		t.Errorf("output = %q, want cleared count", out.String())
	}
	entries, _ := os.ReadDir(filepath.Join(xdg, "stackbar"))
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}

func TestCacheClearEmpty(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	out := captureOutput(t)

	root := testCLI().RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if !strings.Contains(out.String(), "Cache is empty") {
		t.Errorf("output = %q, want empty notice", out.String())
	}
}

func TestCacheStatsAndPrune(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	out := captureOutput(t)

	fc, err := cache.NewFileCache(filepath.Join(xdg, "stackbar"))
	if err != nil {
		t.Fatal(err)
	}
	_ = fc.Set(context.Background(), "stale", []byte("x"), time.Nanosecond)
	_ = fc.Set(context.Background(), "fresh", []byte("y"), time.Hour)
	time.Sleep(5 * time.Millisecond)

	root := testCLI().RootCommand()
	root.SetArgs([]string{"cache", "stats"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache stats error: %v", err)
	}
	if !strings.Contains(out.String(), "Entries") || !strings.Contains(out.String(), " 2") {
		t.Errorf("stats output = %q", out.String())
	}

	root = testCLI().RootCommand()
	root.SetArgs([]string{"cache", "prune"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache prune error: %v", err)
	}
	if !strings.Contains(out.String(), "Pruned 1 expired entry") {
		t.Errorf("prune output = %q", out.String())
	}
	if _, hit, _ := fc.Get(context.Background(), "fresh"); !hit {
		t.Error("prune removed a live entry")
	}
}
