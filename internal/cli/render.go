package cli

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chaosgame/pkg/encode"
	"github.com/matzehuels/chaosgame/pkg/geometry"
	"github.com/matzehuels/chaosgame/pkg/pipeline"
	"github.com/matzehuels/chaosgame/pkg/render"
)

// renderFlags holds the command-line flags for the render command.
// Only flags the user sets override values from --config.
type renderFlags struct {
	config     string  // TOML, YAML or JSON animation descriptor
	vertices   int     // polygon vertex count
	radius     float64 // polygon radius in pixels
	rotation   float64 // first-vertex angle in degrees
	duration   float64 // seconds
	fps        int     // frames per second
	seed       uint64  // random seed
	width      int     // frame width in pixels
	height     int     // frame height in pixels
	warmUp     int     // leading points left undrawn
	pointSize  float64 // point marker radius
	highlight  float64 // highlight marker radius
	lineWidth  float64 // polygon outline width
	background string  // hex colours
	outline    string
	accent     string
	format     string // frame format: png, bmp, tiff
	output     string // output directory
	name       string // run directory override
	clean      bool   // remove stale frames first
	encode     string // none, gif, mp4
	encoder    string // auto, ffmpeg, builtin
	workers    int    // parallel renderers
	refresh    bool   // ignore cached frames
	noProgress bool   // plain log output instead of the progress bar
	cache      cacheFlags
}

// newRenderFlags returns render flags holding the pipeline defaults.
func newRenderFlags() renderFlags {
	defaults := pipeline.DefaultOptions()
	return renderFlags{
		vertices:   defaults.Vertices,
		rotation:   geometry.DefaultRotation * 180 / math.Pi,
		duration:   defaults.Duration,
		fps:        defaults.FrameRate,
		seed:       defaults.Seed,
		width:      defaults.Width,
		height:     defaults.Height,
		warmUp:     render.DefaultWarmUp,
		pointSize:  render.DefaultPointRadius,
		highlight:  render.DefaultHighlightRadius,
		lineWidth:  render.DefaultLineWidth,
		background: render.DefaultBackground,
		outline:    render.DefaultOutline,
		accent:     render.DefaultHighlight,
		format:     defaults.Format,
		output:     defaults.OutputDir,
		encode:     defaults.Encode,
		encoder:    defaults.Encoder,
	}
}

func (f *renderFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "animation descriptor (.toml, .yaml, .json)")
	fl.IntVarP(&f.vertices, "vertices", "n", f.vertices, "polygon vertex count (3-20)")
	fl.Float64Var(&f.radius, "radius", 0, "polygon radius in pixels (default: fit the frame)")
	fl.Float64Var(&f.rotation, "rotation", f.rotation, "angle of the first vertex in degrees")
	fl.Float64VarP(&f.duration, "duration", "d", f.duration, "animation length in seconds")
	fl.IntVar(&f.fps, "fps", f.fps, "frames per second")
	fl.Uint64Var(&f.seed, "seed", f.seed, "random seed")
	fl.IntVar(&f.width, "width", f.width, "frame width in pixels")
	fl.IntVar(&f.height, "height", f.height, "frame height in pixels")
	fl.IntVar(&f.warmUp, "warm-up", f.warmUp, "leading points left undrawn")
	fl.Float64Var(&f.pointSize, "point-size", f.pointSize, "point marker radius")
	fl.Float64Var(&f.highlight, "highlight-size", f.highlight, "highlight marker radius")
	fl.Float64Var(&f.lineWidth, "line-width", f.lineWidth, "polygon outline width")
	fl.StringVar(&f.background, "background", f.background, "background colour")
	fl.StringVar(&f.outline, "outline", f.outline, "polygon outline colour")
	fl.StringVar(&f.accent, "highlight-color", f.accent, "highlight marker colour")
	fl.StringVarP(&f.format, "format", "f", f.format, "frame format: png, bmp, tiff")
	fl.StringVarP(&f.output, "output", "o", f.output, "output directory")
	fl.StringVar(&f.name, "name", "", "run directory name (default: <polygon>_r<rate>)")
	fl.BoolVar(&f.clean, "clean", false, "remove frames from a previous run first")
	fl.StringVarP(&f.encode, "encode", "e", f.encode, "animation to assemble: none, gif, mp4")
	fl.StringVar(&f.encoder, "encoder", f.encoder, "encoder: auto, ffmpeg, builtin")
	fl.IntVarP(&f.workers, "workers", "j", 0, "parallel frame renderers (default: CPU count)")
	fl.BoolVar(&f.refresh, "refresh", false, "re-render frames even if cached")
	fl.BoolVar(&f.noProgress, "no-progress", false, "disable the progress bar")
	f.cache.register(cmd)
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	f := newRenderFlags()

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Run the chaos game and write one frame per iteration",
		Long: `Render plays the chaos game on a regular polygon and writes one frame per
iteration to <output>/<polygon>_r<rate>/frames/frame_0001.png, ...

Each frame steps the game exactly once, so a run of --duration seconds at --fps
frames per second draws duration*fps points. Frames are cached, so re-running
the same animation only rewrites files.`,
		Example: `  chaosgame render -n 6 -d 2 --fps 10
  chaosgame render -n 5 --encode gif
  chaosgame render --config run.toml --clean`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildRenderOptions(cmd, &f)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, &f, rerunCommand(cmd))
		},
	}
	f.register(cmd)
	return cmd
}

// buildRenderOptions starts from the defaults, applies --config, then every
// flag the user set explicitly.
func buildRenderOptions(cmd *cobra.Command, f *renderFlags) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if f.config != "" {
		loaded, err := pipeline.LoadOptions(f.config, opts)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	changed := cmd.Flags().Changed
	set := func(name string, apply func()) {
		if changed(name) || f.config == "" {
			apply()
		}
	}

	set("vertices", func() { opts.Vertices = f.vertices })
	set("radius", func() { opts.Radius = f.radius })
	set("duration", func() { opts.Duration = f.duration })
	set("fps", func() { opts.FrameRate = f.fps })
	set("seed", func() { opts.Seed = f.seed })
	set("width", func() { opts.Width = f.width })
	set("height", func() { opts.Height = f.height })
	set("format", func() { opts.Format = f.format })
	set("output", func() { opts.OutputDir = f.output })
	set("name", func() { opts.Name = f.name })
	set("encode", func() { opts.Encode = f.encode })
	set("encoder", func() { opts.Encoder = f.encoder })
	set("workers", func() { opts.Workers = f.workers })

	// Styling and the pointer fields only override when given, so config
	// values and pipeline defaults survive.
	if changed("rotation") {
		r := f.rotation * math.Pi / 180
		opts.Rotation = &r
	}
	if changed("warm-up") {
		w := f.warmUp
		opts.WarmUp = &w
	}
	if changed("point-size") {
		opts.PointRadius = f.pointSize
	}
	if changed("highlight-size") {
		opts.HighlightRadius = f.highlight
	}
	if changed("line-width") {
		opts.LineWidth = f.lineWidth
	}
	if changed("background") {
		opts.Background = f.background
	}
	if changed("outline") {
		opts.Outline = f.outline
	}
	if changed("highlight-color") {
		opts.Highlight = f.accent
	}
	if changed("clean") {
		opts.Clean = f.clean
	}
	if changed("refresh") {
		opts.Refresh = f.refresh
	}
	return opts, nil
}

// runRender executes a run and prints its outputs. rerun is shown in hints
// when the run fails.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, f *renderFlags, rerun string) error {
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, f.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spec := opts.PolygonSpec()
	total := opts.TotalFrames()
	runDir, _ := pipeline.RunDir(opts)
	c.Logger.Debug("resolved options",
		"vertices", spec.Vertices,
		"radius", spec.Radius,
		"frames", total,
		"size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"workers", opts.Workers)

	prog := newProgress(c.Logger)
	var result *pipeline.Result
	if !f.noProgress && isTerminal(os.Stderr) {
		err = runWithProgress(ctx, displayPath(runDir), total, func(ctx context.Context, report func(pipeline.Progress)) error {
			opts.Progress = report
			var runErr error
			result, runErr = runner.Execute(ctx, opts)
			return runErr
		})
	} else {
		result, err = runner.Execute(ctx, opts)
	}
	if err != nil {
		return explain(err, result, rerun)
	}
	prog.done(fmt.Sprintf("Rendered %d frames", len(result.Frames)))

	printSuccess("%s, r = %.4f", result.Name, result.Rate)
	printRunStats(len(result.Frames), result.Total, result.CacheInfo.Hits)
	printFile(result.FramesDir)
	if result.Animation != "" {
		printFile(result.Animation)
	} else if opts.Target() == encode.TargetNone {
		printNextStep("Assemble an animation", "chaosgame encode "+displayPath(result.Dir)+" --to gif")
	}
	return nil
}
