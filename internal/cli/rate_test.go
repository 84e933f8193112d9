package cli

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/chaosgame/pkg/errors"
)

func TestDescribePolygon(t *testing.T) {
	tests := []struct {
		n      int
		name   string
		runDir string
	}{
		{3, "triangle", "triangle_r0.500"},
		{4, "square", "square_r0.500"},
		{5, "pentagon", "pentagon_r0.618"},
		{6, "hexagon", "hexagon_r0.666"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := describePolygon(tt.n)
			if err != nil {
				t.Fatal(err)
			}
			if info.Name != tt.name || info.RunDir != tt.runDir {
				t.Errorf("describePolygon(%d) = %+v, want %s %s", tt.n, info, tt.name, tt.runDir)
			}
			if len(info.VertexColors) != tt.n {
				t.Fatalf("%d vertex colours, want %d", len(info.VertexColors), tt.n)
			}
			seen := map[string]bool{}
			for _, c := range info.VertexColors {
				if len(c) != 7 || c[0] != '#' {
					t.Errorf("vertex colour %q is not #rrggbb", c)
				}
				seen[c] = true
			}
			if len(seen) != tt.n {
				t.Errorf("vertex colours %v repeat", info.VertexColors)
			}
		})
	}

	if _, err := describePolygon(21); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("describePolygon(21) err = %v, want INVALID_CONFIGURATION", err)
	}
}

func TestRateCommandJSON(t *testing.T) {
	buf := captureOutput(t)

	root := testCLI().RootCommand()
	root.SetArgs([]string{"rate", "5", "6", "--json"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	var infos []polygonInfo
	if err := json.Unmarshal(buf.Bytes(), &infos); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(infos) != 2 || infos[0].Name != "pentagon" || infos[1].Name != "hexagon" {
		t.Errorf("infos = %+v", infos)
	}
}

func TestRateCommandRejects(t *testing.T) {
	for _, arg := range []string{"two", "2", "21"} {
		t.Run(arg, func(t *testing.T) {
			captureOutput(t)
			root := testCLI().RootCommand()
			root.SetErr(io.Discard)
			root.SetArgs([]string{"rate", arg})
			if err := root.ExecuteContext(context.Background()); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
				t.Errorf("rate %s: err = %v, want INVALID_CONFIGURATION", arg, err)
			}
		})
	}
}

func TestPolygonsCommand(t *testing.T) {
	buf := captureOutput(t)

	root := testCLI().RootCommand()
	root.SetArgs([]string{"polygons"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	for _, want := range []string{"triangle", "icosagon", "hexagon_r0.666"} {
		if !strings.Contains(got, want) {
			t.Errorf("polygons output missing %q", want)
		}
	}
}
