package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/chaosgame/pkg/cache"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCacheCommands(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(redisURLEnv, "")
	buf := captureOutput(t)

	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, key, []byte("frame"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	c := testCLI()
	run := func(args ...string) string {
		t.Helper()
		buf.Reset()
		root := c.RootCommand()
		root.SetArgs(args)
		if err := root.ExecuteContext(ctx); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return buf.String()
	}

	if got := run("cache", "path"); strings.TrimSpace(got) != dir {
		t.Errorf("cache path = %q, want %q", got, dir)
	}
	if got := run("cache", "info"); !strings.Contains(got, "3") {
		t.Errorf("cache info = %q, want 3 frames", got)
	}
	if got := run("cache", "clear"); !strings.Contains(got, "Cleared 3 cached frames") {
		t.Errorf("cache clear = %q", got)
	}
	if entries, _, _ := fc.Stats(); entries != 0 {
		t.Errorf("entries after clear = %d, want 0", entries)
	}
}

func TestCacheClearDisabled(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	buf := captureOutput(t)

	root := testCLI().RootCommand()
	root.SetArgs([]string{"cache", "clear", "--no-cache"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Cache is disabled") {
		t.Errorf("output = %q", buf.String())
	}
}
