package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/chaosgame/pkg/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOptions(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{"run.toml", "vertices = 6\nduration = 2.0\nframe_rate = 10\nseed = 7\nbackground = \"#000000\"\n"},
		{"run.yaml", "vertices: 6\nduration: 2\nframe_rate: 10\nseed: 7\nbackground: \"#000000\"\n"},
		{"run.yml", "vertices: 6\nduration: 2\nframe_rate: 10\nseed: 7\nbackground: \"#000000\"\n"},
		{"run.json", `{"vertices": 6, "duration": 2, "frame_rate": 10, "seed": 7, "background": "#000000"}`},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			opts, err := LoadOptions(writeConfig(t, tt.file, tt.content), DefaultOptions())
			if err != nil {
				t.Fatalf("LoadOptions: %v", err)
			}
			if opts.Vertices != 6 || opts.Duration != 2 || opts.FrameRate != 10 || opts.Seed != 7 {
				t.Errorf("decoded %+v", opts)
			}
			if opts.Background != "#000000" {
				t.Errorf("Background = %q", opts.Background)
			}
			// Keys absent from the file keep the base values.
			if opts.OutputDir != DefaultOutputDir || opts.Width != 1080 {
				t.Errorf("base values lost: output %q, width %d", opts.OutputDir, opts.Width)
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				t.Errorf("loaded options invalid: %v", err)
			}
			if opts.TotalFrames() != 20 {
				t.Errorf("TotalFrames() = %d, want 20", opts.TotalFrames())
			}
		})
	}
}

func TestLoadOptionsRotationAndWarmUp(t *testing.T) {
	path := writeConfig(t, "run.toml", "vertices = 4\nrotation = 0.0\nwarm_up = 0\n")
	opts, err := LoadOptions(path, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if opts.Rotation == nil || *opts.Rotation != 0 {
		t.Errorf("Rotation = %v, want explicit 0", opts.Rotation)
	}
	if opts.WarmUp == nil || *opts.WarmUp != 0 {
		t.Errorf("WarmUp = %v, want explicit 0", opts.WarmUp)
	}
}

func TestLoadOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"unknown toml key", "run.toml", "vertices = 3\ncolour = \"red\"\n"},
		{"unknown yaml key", "run.yaml", "vertices: 3\ncolour: red\n"},
		{"unknown json key", "run.json", `{"vertices": 3, "colour": "red"}`},
		{"malformed toml", "run.toml", "vertices = \n"},
		{"malformed json", "run.json", `{"vertices": `},
		{"wrong type", "run.yaml", "vertices: many\n"},
		{"unsupported extension", "run.ini", "vertices=3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOptions(writeConfig(t, tt.file, tt.body), DefaultOptions())
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
				t.Errorf("code = %s", errors.GetCode(err))
			}
		})
	}

	if _, err := LoadOptions(filepath.Join(t.TempDir(), "missing.toml"), DefaultOptions()); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLoadOptionsEmptyYAML(t *testing.T) {
	opts, err := LoadOptions(writeConfig(t, "empty.yaml", ""), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if opts.Vertices != DefaultVertices {
		t.Errorf("Vertices = %d", opts.Vertices)
	}
}

func TestLoadOptionsSeedZero(t *testing.T) {
	for _, tt := range []struct{ file, content string }{
		{"run.toml", "seed = 0\n"},
		{"run.yaml", "seed: 0\n"},
		{"run.json", `{"seed": 0}`},
	} {
		opts, err := LoadOptions(writeConfig(t, tt.file, tt.content), DefaultOptions())
		if err != nil {
			t.Fatalf("%s: %v", tt.file, err)
		}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("%s: %v", tt.file, err)
		}
		if opts.Seed != 0 {
			t.Errorf("%s: seed = %d, want 0", tt.file, opts.Seed)
		}
	}
}
