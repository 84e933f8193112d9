package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/chaosgame/pkg/cache"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := testCLI().RootCommand()

	want := []string{"render", "encode", "rate", "polygons", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			root := testCLI().RootCommand()
			root.SetOut(&buf)
			root.SetArgs([]string{"completion", shell})
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(buf.String(), appName) {
				t.Errorf("%s completion does not mention %s", shell, appName)
			}
		})
	}
}

func TestNewCacheFallsBackFromRedis(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := testCLI()

	fc, err := c.newCache(context.Background(), cacheFlags{redisURL: "not a url"})
	if err != nil {
		t.Fatal(err)
	}
	defer fc.Close()
	if _, ok := fc.(interface{ Dir() string }); !ok {
		t.Errorf("newCache() = %T, want the file cache fallback", fc)
	}
}

func TestFrameKeyer(t *testing.T) {
	rc := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), cache.DefaultRedisPrefix)
	defer rc.Close()
	hash := cache.NewDefaultKeyer().RunHash(cache.RunKeyOpts{Vertices: 6})

	tests := []struct {
		name  string
		cache cache.Cache
		scope string
		want  string
	}{
		{"redis", rc, "v1", "v1:frame:"},
		{"redis without scope", rc, "", "frame:"},
		{"file", cache.NewNullCache(), "v1", "frame:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := frameKeyer(tt.cache, tt.scope).FrameKey(hash, 1, "png")
			if !strings.HasPrefix(key, tt.want) {
				t.Errorf("FrameKey = %s, want prefix %s", key, tt.want)
			}
		})
	}
}
