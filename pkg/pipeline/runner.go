package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/chaosgame/pkg/cache"
	"github.com/matzehuels/chaosgame/pkg/chaos"
	"github.com/matzehuels/chaosgame/pkg/encode"
	"github.com/matzehuels/chaosgame/pkg/errors"
	"github.com/matzehuels/chaosgame/pkg/geometry"
	"github.com/matzehuels/chaosgame/pkg/observability"
	"github.com/matzehuels/chaosgame/pkg/render/sink"
)

// Runner encapsulates run execution with frame caching.
// Both the CLI and the preview server use it.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store run results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// rendered is a frame waiting for the writer.
type rendered struct {
	data   []byte
	cached bool
}

// Execute runs setup → frames → (optional) encoding.
//
// On failure the returned Result is still populated with the frames written
// so far and State set to StateFailed. If only encoding fails, State is
// StateComplete and the error carries ENCODING_FAILURE.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()

	// Stage 1: Setup
	p, err := newPlan(opts)
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	p.runHash = r.Keyer.RunHash(opts.RunKeyOpts())

	runDir, err := RunDir(opts)
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	total := opts.TotalFrames()
	dir := sink.NewDir(filepath.Join(runDir, FramesDirName), p.format, total)
	t := newTracker(total)

	result := &Result{
		RunID:     uuid.NewString(),
		Name:      p.name,
		Dir:       runDir,
		FramesDir: dir.Path(),
		Vertices:  opts.Vertices,
		Rate:      p.rate,
		Total:     total,
	}
	manifest := &Manifest{
		RunID:     result.RunID,
		CreatedAt: time.Now().UTC(),
		Polygon:   p.name,
		Rate:      p.rate,
		Total:     total,
		Format:    string(p.format),
		FrameRate: opts.FrameRate,
		Options:   opts,
	}
	hooks := observability.Pipeline()

	fail := func(err error) (*Result, error) {
		t.fail()
		result.State = t.state
		manifest.State, manifest.Frames, manifest.Error = t.state, len(result.Frames), errors.UserMessage(err)
		if werr := WriteManifest(runDir, manifest); werr != nil {
			r.Logger.Warn("manifest not updated", "error", werr)
		}
		hooks.OnRunComplete(ctx, result.RunID, len(result.Frames), time.Since(start), err)
		r.Logger.Error("run failed", "run", result.RunID, "frames", len(result.Frames), "state", t.state, "error", err)
		return result, err
	}

	hooks.OnRunStart(ctx, result.RunID, opts.Vertices, total)
	if err := dir.Prepare(opts.Clean); err != nil {
		return fail(err)
	}
	it, err := chaos.NewIterator(p.vertices, p.rate, chaos.NewSource(opts.Seed))
	if err != nil {
		return fail(err)
	}
	it.Grow(total)
	if err := t.to(StateRunning); err != nil {
		return fail(err)
	}
	manifest.State = t.state
	if err := WriteManifest(runDir, manifest); err != nil {
		return fail(err)
	}
	result.Stats.SetupTime = time.Since(start)

	r.Logger.Info("starting run",
		"run", result.RunID,
		"polygon", p.name,
		"rate", fmt.Sprintf("%.4f", p.rate),
		"frames", total,
		"workers", opts.Workers,
		"dir", runDir)

	// Stage 2: Frames
	renderStart := time.Now()
	frames, info, err := r.renderFrames(ctx, p, it, dir, t)
	result.Frames = frames
	result.CacheInfo = info
	result.Stats.RenderTime = time.Since(renderStart)
	if err != nil {
		return fail(err)
	}
	if err := t.to(StateComplete); err != nil {
		return fail(err)
	}
	result.State = t.state
	result.Points = it.Sequence().Len()
	result.Highlight = it.Current()

	r.Logger.Info("rendered frames",
		"frames", len(frames),
		"cache_hits", info.Hits,
		"duration", result.Stats.RenderTime)

	// Stage 3: Encode
	var encodeErr error
	if target := opts.Target(); target != encode.TargetNone {
		encodeStart := time.Now()
		result.Animation, encodeErr = r.Encode(ctx, dir, opts.FrameRate, target, opts.Encoder)
		result.Stats.EncodeTime = time.Since(encodeStart)
	}

	manifest.State, manifest.Frames, manifest.Animation = t.state, len(frames), result.Animation
	if encodeErr != nil {
		manifest.Error = errors.UserMessage(encodeErr)
	}
	if err := WriteManifest(runDir, manifest); err != nil {
		r.Logger.Warn("manifest not updated", "error", err)
	}
	hooks.OnRunComplete(ctx, result.RunID, len(frames), time.Since(start), encodeErr)
	return result, encodeErr
}

// renderFrames steps the iterator once per frame and renders frames on a
// bounded worker pool. A single writer stores frames in index order, so
// frame k is on disk before frame k+1.
func (r *Runner) renderFrames(ctx context.Context, p *plan, it *chaos.Iterator, dir *sink.Dir, t *tracker) ([]string, CacheInfo, error) {
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := p.opts
	total := t.total
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	slots := make([]chan rendered, total)
	for i := range slots {
		slots[i] = make(chan rendered, 1)
	}
	// window bounds frames rendered but not yet written.
	window := make(chan struct{}, 2*opts.Workers)

	var (
		written []string
		info    CacheInfo
	)
	writeDone := make(chan error, 1)
	go func() {
		err := func() error {
			for i, slot := range slots {
				var fr rendered
				select {
				case fr = <-slot:
				case <-ctx.Done():
					return ctx.Err()
				}
				index := i + 1
				path, err := dir.Write(index, fr.data)
				<-window
				if err != nil {
					return err
				}
				if err := t.commit(index); err != nil {
					return err
				}
				written = append(written, path)
				if fr.cached {
					info.Hits++
				} else {
					info.Misses++
				}
				r.Logger.Debug("frame written", "frame", index, "cached", fr.cached)
				if opts.Progress != nil {
					opts.Progress(Progress{Frame: index, Total: total, Cached: fr.cached})
				}
			}
			return nil
		}()
		if err != nil {
			cancel()
		}
		writeDone <- err
	}()

	launched := 0
loop:
	for index := 1; index <= total; index++ {
		select {
		case window <- struct{}{}:
		case <-gctx.Done():
			break loop
		}
		it.Step()
		points := it.Sequence().Prefix(index + 1)
		g.Go(func() error {
			frameStart := time.Now()
			data, cached, err := r.frame(gctx, p, index, points)
			observability.Pipeline().OnFrameRendered(gctx, index, cached, time.Since(frameStart), err)
			if err != nil {
				return err
			}
			slots[index-1] <- rendered{data: data, cached: cached}
			return nil
		})
		launched++
	}

	renderErr := g.Wait()
	if renderErr != nil || launched < total {
		cancel()
	}
	writeErr := <-writeDone

	switch {
	case writeErr != nil && !isCancellation(writeErr):
		return written, info, writeErr
	case renderErr != nil && !isCancellation(renderErr):
		return written, info, renderErr
	case parent.Err() != nil:
		return written, info, errors.Wrap(errors.ErrCodeCanceled, parent.Err(), "run canceled after %d of %d frames", len(written), total)
	case renderErr != nil:
		return written, info, renderErr
	case writeErr != nil:
		return written, info, writeErr
	}
	return written, info, nil
}

// frame returns the encoded bytes of frame index, from the cache when
// possible. Cache failures are never fatal.
func (r *Runner) frame(ctx context.Context, p *plan, index int, points []geometry.Point) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.FrameKey(p.runHash, index, string(p.format))
	_, disabled := r.Cache.(*cache.NullCache)

	if !disabled && !p.opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "frame")
			return data, true, nil
		} else if err != nil {
			r.Logger.Debug("cache lookup failed", "frame", index, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "frame")
	}

	f, err := p.renderer.Render(index, points, p.vertices)
	if err != nil {
		return nil, false, err
	}
	data, err := sink.Bytes(f.Image, p.format)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeRenderFailure, err, "frame %d: encode %s", index, p.format)
	}

	if !disabled {
		if err := r.Cache.Set(ctx, key, data, cache.TTLFrame); err != nil {
			r.Logger.Debug("frame not cached", "frame", index, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "frame", len(data))
		}
	}
	return data, false, nil
}

// Preview renders a single frame with caching and returns it encoded in the
// options' frame format. Frames are keyed exactly like frames of a full run,
// so previews and runs share cache entries.
func (r *Runner) Preview(ctx context.Context, opts Options, index int) ([]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	if err := validateFrameIndex(index); err != nil {
		return nil, false, err
	}

	p, err := newPlan(opts)
	if err != nil {
		return nil, false, err
	}
	p.runHash = r.Keyer.RunHash(opts.RunKeyOpts())

	points, err := p.replay(opts.Seed, index)
	if err != nil {
		return nil, false, err
	}
	return r.frame(ctx, p, index, points)
}

// Encode assembles the frames in dir into an animation next to it and
// returns the animation path.
func (r *Runner) Encode(ctx context.Context, dir *sink.Dir, frameRate int, target encode.Target, encoder string) (string, error) {
	enc, err := encode.Select(encoder, target)
	if err != nil {
		return "", err
	}
	req, err := encode.NewRequest(dir, frameRate, target)
	if err != nil {
		return "", err
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	hooks := observability.Pipeline()
	hooks.OnEncodeStart(ctx, enc.Name(), string(target), len(req.Frames))
	start := time.Now()
	err = enc.Encode(ctx, req)
	hooks.OnEncodeComplete(ctx, enc.Name(), string(target), time.Since(start), err)
	if err != nil {
		return "", err
	}

	r.Logger.Info("encoded animation",
		"encoder", enc.Name(),
		"output", req.Output,
		"frames", len(req.Frames),
		"duration", time.Since(start))
	return req.Output, nil
}

// EncodeRun re-encodes an existing run directory. A frameRate of zero uses
// the rate recorded in the manifest. A directory without a manifest, such
// as frames copied from elsewhere, is encoded from the frames found in it at
// DefaultFrameRate unless frameRate is given.
func (r *Runner) EncodeRun(ctx context.Context, runDir string, target encode.Target, encoder string, frameRate int) (string, error) {
	if target == encode.TargetNone {
		return "", errors.Invalid("no animation target given")
	}
	framesDir := filepath.Join(runDir, FramesDirName)
	if _, err := os.Stat(filepath.Join(runDir, ManifestName)); os.IsNotExist(err) {
		format, total, err := sink.Detect(framesDir)
		if err != nil {
			return "", errors.Invalid("%s has no %s and no frames", runDir, ManifestName)
		}
		if frameRate == 0 {
			frameRate = DefaultFrameRate
		}
		r.Logger.Warn("no run manifest, encoding detected frames",
			"dir", runDir, "format", format, "frames", total, "fps", frameRate)
		return r.Encode(ctx, sink.NewDir(framesDir, format, total), frameRate, target, encoder)
	}

	m, err := ReadManifest(runDir)
	if err != nil {
		return "", err
	}
	if m.State != StateComplete {
		return "", errors.Invalid("run %s is %s; only complete runs can be encoded", m.RunID, m.State)
	}
	format, err := sink.ParseFormat(m.Format)
	if err != nil {
		return "", err
	}
	if frameRate == 0 {
		frameRate = m.FrameRate
	}
	dir := sink.NewDir(framesDir, format, m.Total)

	out, err := r.Encode(ctx, dir, frameRate, target, encoder)
	if err != nil {
		return "", err
	}
	m.Animation, m.Error = out, ""
	if err := WriteManifest(runDir, m); err != nil {
		r.Logger.Warn("manifest not updated", "error", err)
	}
	return out, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, errors.ErrCodeCanceled) || err == context.Canceled || err == context.DeadlineExceeded
}
