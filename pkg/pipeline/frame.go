package pipeline

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chaosgame/pkg/chaos"
	"github.com/matzehuels/chaosgame/pkg/errors"
	"github.com/matzehuels/chaosgame/pkg/geometry"
	"github.com/matzehuels/chaosgame/pkg/render"
	"github.com/matzehuels/chaosgame/pkg/render/sink"
)

// MaxPreviewFrame bounds single-frame rendering. A preview replays the whole
// sequence up to the frame, so the cost is linear in the index.
const MaxPreviewFrame = 5000

// RunDirName returns the run directory name for a polygon, e.g.
// "hexagon_r0.666". The rate is truncated, not rounded, to three decimals.
func RunDirName(name string, rate float64) string {
	return fmt.Sprintf("%s_r%.3f", name, math.Trunc(rate*1000)/1000)
}

// RunDir returns the run directory the options write to.
func RunDir(opts Options) (string, error) {
	name, err := geometry.Name(opts.Vertices)
	if err != nil {
		return "", err
	}
	if opts.Name != "" {
		return filepath.Join(opts.OutputDir, opts.Name), nil
	}
	rate, err := geometry.OptimalRate(opts.Vertices)
	if err != nil {
		return "", err
	}
	return filepath.Join(opts.OutputDir, RunDirName(name, rate)), nil
}

// plan is the resolved, immutable setup of a run.
type plan struct {
	opts     Options
	name     string
	rate     float64
	vertices []geometry.Point
	renderer *render.Renderer
	format   sink.Format
	runHash  string
}

// newPlan computes the polygon, rate and renderer for validated options.
func newPlan(opts Options) (*plan, error) {
	name, err := geometry.Name(opts.Vertices)
	if err != nil {
		return nil, err
	}
	rate, err := geometry.OptimalRate(opts.Vertices)
	if err != nil {
		return nil, err
	}
	spec := opts.PolygonSpec()
	vertices, err := geometry.Vertices(spec)
	if err != nil {
		return nil, err
	}
	ro := opts.RenderOptions()
	if !ro.Fits(geometry.Bounds(vertices)) {
		logger(opts).Warn("polygon does not fit the frame; points will be clipped",
			"radius", spec.Radius, "width", ro.Width, "height", ro.Height)
	}
	renderer, err := render.New(ro)
	if err != nil {
		return nil, err
	}
	return &plan{
		opts:     opts,
		name:     name,
		rate:     rate,
		vertices: vertices,
		renderer: renderer,
		format:   opts.FrameFormat(),
	}, nil
}

// RenderFrame renders frame index of the animation described by opts
// without touching the cache or the filesystem. The sequence is replayed
// from the seed, so the frame matches the one a full run writes.
func RenderFrame(opts Options, index int) (*render.Frame, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if err := validateFrameIndex(index); err != nil {
		return nil, err
	}
	p, err := newPlan(opts)
	if err != nil {
		return nil, err
	}
	points, err := p.replay(opts.Seed, index)
	if err != nil {
		return nil, err
	}
	return p.renderer.Render(index, points, p.vertices)
}

// replay reproduces the first index+1 points of the sequence for seed. The
// last point must still lie inside the polygon.
func (p *plan) replay(seed uint64, index int) ([]geometry.Point, error) {
	points, err := chaos.Replay(p.vertices, p.rate, seed, index)
	if err != nil {
		return nil, err
	}
	if last := points[len(points)-1]; !geometry.InConvexPolygon(last, p.vertices) {
		return nil, errors.New(errors.ErrCodeInternal, "replayed point (%g, %g) left the polygon", last.X, last.Y)
	}
	return points, nil
}

func validateFrameIndex(index int) error {
	if index < 1 || index > MaxPreviewFrame {
		return errors.Invalid("frame must be between 1 and %d, got %d", MaxPreviewFrame, index)
	}
	return nil
}

func logger(opts Options) *log.Logger {
	if opts.Logger == nil {
		return log.Default()
	}
	return opts.Logger
}
