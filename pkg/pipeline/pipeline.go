// Package pipeline runs chaos-game animations end to end.
//
// This package owns the orchestration that the CLI and the preview server
// share: validating the animation descriptor, setting up the polygon and
// contraction ratio, advancing the chaos game once per frame, rendering and
// writing frames in order, and optionally encoding them into a GIF or MP4.
//
// # Architecture
//
// A run moves through a fixed set of states:
//
//  1. Setup: options are validated, the vertices and optimal rate are
//     computed, and the frames directory is prepared
//  2. Running: for frame = 1..N the iterator steps exactly once and the
//     frame is rendered from the first frame+1 points
//  3. Complete, or Failed on the first step/render/write error
//
// Stepping is strictly sequential. Rendering is a pure function of the point
// prefix, so frames are rasterised on up to Options.Workers goroutines while
// a single writer stores them in increasing frame order.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Vertices = 6
//	opts.Duration = 2
//	opts.FrameRate = 10
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(result.Frames)) // 20
package pipeline

import (
	"math"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chaosgame/pkg/cache"
	"github.com/matzehuels/chaosgame/pkg/encode"
	"github.com/matzehuels/chaosgame/pkg/errors"
	"github.com/matzehuels/chaosgame/pkg/geometry"
	"github.com/matzehuels/chaosgame/pkg/render"
	"github.com/matzehuels/chaosgame/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and preview server
// =============================================================================

const (
	// DefaultVertices is the polygon used when none is configured: the
	// Sierpinski triangle.
	DefaultVertices = 3

	// DefaultDuration is the default animation length in seconds.
	DefaultDuration = 10.0

	// DefaultFrameRate is the default number of frames per second.
	DefaultFrameRate = 30

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultOutputDir is where run directories are created.
	DefaultOutputDir = "output"

	// MaxFrames bounds a single run. Every frame redraws all previous
	// points, so cost grows quadratically with the frame count.
	MaxFrames = 100_000

	// frameMargin keeps the default polygon away from the image border.
	frameMargin = 40
)

// =============================================================================
// Options - Animation Descriptor
// =============================================================================

// Options describes one animation run.
// This struct supports JSON, TOML and YAML serialization for config files.
type Options struct {
	// Polygon
	Vertices int      `json:"vertices" toml:"vertices" yaml:"vertices"`
	Radius   float64  `json:"radius,omitempty" toml:"radius" yaml:"radius,omitempty"`
	Rotation *float64 `json:"rotation,omitempty" toml:"rotation" yaml:"rotation,omitempty"` // radians, default -π/2

	// Timing
	Duration  float64 `json:"duration" toml:"duration" yaml:"duration"`       // seconds
	FrameRate int     `json:"frame_rate" toml:"frame_rate" yaml:"frame_rate"` // frames per second
	Seed      uint64  `json:"seed" toml:"seed" yaml:"seed"`                   // zero is a valid seed

	// Frames
	Width           int     `json:"width,omitempty" toml:"width" yaml:"width,omitempty"`
	Height          int     `json:"height,omitempty" toml:"height" yaml:"height,omitempty"`
	WarmUp          *int    `json:"warm_up,omitempty" toml:"warm_up" yaml:"warm_up,omitempty"`
	PointRadius     float64 `json:"point_radius,omitempty" toml:"point_radius" yaml:"point_radius,omitempty"`
	HighlightRadius float64 `json:"highlight_radius,omitempty" toml:"highlight_radius" yaml:"highlight_radius,omitempty"`
	LineWidth       float64 `json:"line_width,omitempty" toml:"line_width" yaml:"line_width,omitempty"`
	Background      string  `json:"background,omitempty" toml:"background" yaml:"background,omitempty"`
	Outline         string  `json:"outline,omitempty" toml:"outline" yaml:"outline,omitempty"`
	Highlight       string  `json:"highlight,omitempty" toml:"highlight" yaml:"highlight,omitempty"`
	Format          string  `json:"format,omitempty" toml:"format" yaml:"format,omitempty"`

	// Output
	OutputDir string `json:"output_dir,omitempty" toml:"output_dir" yaml:"output_dir,omitempty"`
	Name      string `json:"name,omitempty" toml:"name" yaml:"name,omitempty"` // run directory override
	Clean     bool   `json:"clean,omitempty" toml:"clean" yaml:"clean,omitempty"`
	Encode    string `json:"encode,omitempty" toml:"encode" yaml:"encode,omitempty"`    // none, gif, mp4
	Encoder   string `json:"encoder,omitempty" toml:"encoder" yaml:"encoder,omitempty"` // auto, ffmpeg, builtin

	// Execution
	Workers int  `json:"workers,omitempty" toml:"workers" yaml:"workers,omitempty"`
	Refresh bool `json:"refresh,omitempty" toml:"refresh" yaml:"refresh,omitempty"` // ignore cached frames

	// Runtime options (not serialized)
	Logger   *log.Logger    `json:"-" toml:"-" yaml:"-"`
	Progress func(Progress) `json:"-" toml:"-" yaml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Progress reports a written frame.
type Progress struct {
	Frame  int  // frames written so far, also the index of the last one
	Total  int  // frames in the run
	Cached bool // whether the frame came from the cache
}

// DefaultOptions returns options populated with every default, including
// the required timing fields. CLI flags and config files start from here.
func DefaultOptions() Options {
	return Options{
		Vertices:  DefaultVertices,
		Duration:  DefaultDuration,
		FrameRate: DefaultFrameRate,
		Seed:      DefaultSeed,
		Width:     render.DefaultWidth,
		Height:    render.DefaultHeight,
		Format:    string(sink.FormatPNG),
		OutputDir: DefaultOutputDir,
		Encode:    string(encode.TargetNone),
		Encoder:   encode.EncoderAuto,
	}
}

// Result contains the outputs of a run.
type Result struct {
	RunID     string         `json:"run_id"`
	Name      string         `json:"name"`
	Dir       string         `json:"dir"`
	FramesDir string         `json:"frames_dir"`
	Vertices  int            `json:"vertices"`
	Rate      float64        `json:"rate"`
	Total     int            `json:"total_frames"`
	Frames    []string       `json:"frames"` // written frame paths, in order
	Points    int            `json:"points"` // final sequence length
	Highlight geometry.Point `json:"highlight"`
	Animation string         `json:"animation,omitempty"`
	State     State          `json:"state"`
	Stats     Stats          `json:"stats"`
	CacheInfo CacheInfo      `json:"cache"`
}

// Stats contains run timing information.
type Stats struct {
	SetupTime  time.Duration `json:"setup_ns"`
	RenderTime time.Duration `json:"render_ns"`
	EncodeTime time.Duration `json:"encode_ns,omitempty"`
}

// CacheInfo counts frame cache lookups.
type CacheInfo struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateVertices checks that n is a polygon with a display name.
func ValidateVertices(n int) error {
	_, err := geometry.Name(n)
	return err
}

// ValidateTiming checks duration and frame rate and returns the frame count.
func ValidateTiming(duration float64, frameRate int) (int, error) {
	if err := errors.ValidatePositive("duration", duration); err != nil {
		return 0, err
	}
	if frameRate <= 0 {
		return 0, errors.Invalid("frame rate must be positive, got %d", frameRate)
	}
	total := int(math.Round(duration * float64(frameRate)))
	if total < 1 {
		return 0, errors.Invalid("duration %gs at %d fps yields no frames", duration, frameRate)
	}
	if total > MaxFrames {
		return 0, errors.Invalid("duration %gs at %d fps yields %d frames (max %d)", duration, frameRate, total, MaxFrames)
	}
	return total, nil
}

// ValidateName checks a run directory override.
func ValidateName(name string) error {
	if name == "" {
		return nil
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.Invalid("run name %q must be a plain directory name", name)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	if _, err := ValidateTiming(o.Duration, o.FrameRate); err != nil {
		return err
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if err := errors.ValidateOutputDir(o.OutputDir); err != nil {
		return err
	}
	if err := ValidateName(o.Name); err != nil {
		return err
	}
	target, err := encode.ParseTarget(o.Encode)
	if err != nil {
		return err
	}
	o.Encode = string(target)
	if o.Encoder == "" {
		o.Encoder = encode.EncoderAuto
	}
	switch o.Encoder {
	case encode.EncoderAuto, encode.EncoderFFmpeg, encode.EncoderBuiltin:
	default:
		return errors.Invalid("unknown encoder %q (supported: auto, ffmpeg, builtin)", o.Encoder)
	}
	if target == encode.TargetMP4 && o.Encoder == encode.EncoderBuiltin {
		return errors.Invalid("the builtin encoder only produces gif")
	}
	if o.Workers < 0 {
		return errors.Invalid("workers must be non-negative, got %d", o.Workers)
	}
	if o.Workers == 0 {
		o.Workers = runtime.NumCPU()
	}
	o.validated = true
	return nil
}

// ValidateForRender validates and defaults the options that affect pixels.
// It is all the preview server needs; timing and output are not checked.
func (o *Options) ValidateForRender() error {
	if err := ValidateVertices(o.Vertices); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := o.PolygonSpec().Validate(); err != nil {
		return err
	}
	if _, err := sink.ParseFormat(o.Format); err != nil {
		return err
	}
	return o.RenderOptions().Validate()
}

// SetRenderDefaults sets default values for rendering. Seed is never
// defaulted here; DefaultOptions supplies DefaultSeed.
func (o *Options) SetRenderDefaults() {
	if o.Width == 0 {
		o.Width = render.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = render.DefaultHeight
	}
	if o.Radius == 0 {
		o.Radius = defaultRadius(o.Width, o.Height)
	}
	if o.Rotation == nil {
		r := geometry.DefaultRotation
		o.Rotation = &r
	}
	if o.WarmUp == nil {
		w := render.DefaultWarmUp
		o.WarmUp = &w
	}
	if f, err := sink.ParseFormat(o.Format); err == nil {
		o.Format = string(f)
	}
}

// defaultRadius fits the polygon in the frame with a margin, capped at
// render.DefaultRadius.
func defaultRadius(width, height int) float64 {
	half := float64(min(width, height)) / 2
	r := half - frameMargin
	if r < half/2 {
		r = half / 2
	}
	return math.Min(r, render.DefaultRadius)
}

// TotalFrames returns duration × frame rate, rounded to whole frames.
func (o *Options) TotalFrames() int {
	return int(math.Round(o.Duration * float64(o.FrameRate)))
}

// PolygonSpec returns the polygon described by the options.
func (o *Options) PolygonSpec() geometry.PolygonSpec {
	rot := geometry.DefaultRotation
	if o.Rotation != nil {
		rot = *o.Rotation
	}
	return geometry.PolygonSpec{Vertices: o.Vertices, Radius: o.Radius, Rotation: rot}
}

// FrameFormat returns the parsed frame format, PNG if unset.
func (o *Options) FrameFormat() sink.Format {
	f, err := sink.ParseFormat(o.Format)
	if err != nil {
		return sink.FormatPNG
	}
	return f
}

// Target returns the parsed animation target.
func (o *Options) Target() encode.Target {
	t, err := encode.ParseTarget(o.Encode)
	if err != nil {
		return encode.TargetNone
	}
	return t
}

// RenderOptions returns the frame renderer configuration.
func (o *Options) RenderOptions() render.Options {
	warm := render.DefaultWarmUp
	if o.WarmUp != nil {
		warm = *o.WarmUp
	}
	ro := render.Options{
		Width:           o.Width,
		Height:          o.Height,
		Radius:          o.Radius,
		WarmUp:          warm,
		PointRadius:     o.PointRadius,
		HighlightRadius: o.HighlightRadius,
		LineWidth:       o.LineWidth,
		Background:      o.Background,
		Outline:         o.Outline,
		Highlight:       o.Highlight,
	}
	ro.SetDefaults()
	return ro
}

// RunKeyOpts returns the cache key options for frames of this run.
func (o *Options) RunKeyOpts() cache.RunKeyOpts {
	ro := o.RenderOptions()
	spec := o.PolygonSpec()
	return cache.RunKeyOpts{
		Vertices:        spec.Vertices,
		Radius:          spec.Radius,
		Rotation:        spec.Rotation,
		Width:           ro.Width,
		Height:          ro.Height,
		Seed:            o.Seed,
		WarmUp:          ro.WarmUp,
		PointRadius:     ro.PointRadius,
		HighlightRadius: ro.HighlightRadius,
		LineWidth:       ro.LineWidth,
		Background:      ro.Background,
		Outline:         ro.Outline,
		Highlight:       ro.Highlight,
	}
}
