package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Counters implements every hook interface with atomic counters.
// The zero value is ready to use.
type Counters struct {
	runs          atomic.Int64
	runFailures   atomic.Int64
	frames        atomic.Int64
	framesCached  atomic.Int64
	frameFailures atomic.Int64
	renderNanos   atomic.Int64
	encodes       atomic.Int64
	encodeFailure atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	cacheBytes    atomic.Int64
	requests      atomic.Int64
	serverErrors  atomic.Int64
}

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	Runs           int64         `json:"runs"`
	RunFailures    int64         `json:"run_failures"`
	Frames         int64         `json:"frames"`
	FramesCached   int64         `json:"frames_cached"`
	FrameFailures  int64         `json:"frame_failures"`
	RenderTime     time.Duration `json:"render_time_ns"`
	Encodes        int64         `json:"encodes"`
	EncodeFailures int64         `json:"encode_failures"`
	CacheHits      int64         `json:"cache_hits"`
	CacheMisses    int64         `json:"cache_misses"`
	CacheBytes     int64         `json:"cache_bytes_written"`
	Requests       int64         `json:"http_requests"`
	ServerErrors   int64         `json:"http_5xx"`
}

// Snapshot returns the current counter values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Runs:           c.runs.Load(),
		RunFailures:    c.runFailures.Load(),
		Frames:         c.frames.Load(),
		FramesCached:   c.framesCached.Load(),
		FrameFailures:  c.frameFailures.Load(),
		RenderTime:     time.Duration(c.renderNanos.Load()),
		Encodes:        c.encodes.Load(),
		EncodeFailures: c.encodeFailure.Load(),
		CacheHits:      c.cacheHits.Load(),
		CacheMisses:    c.cacheMisses.Load(),
		CacheBytes:     c.cacheBytes.Load(),
		Requests:       c.requests.Load(),
		ServerErrors:   c.serverErrors.Load(),
	}
}

func (c *Counters) OnRunStart(context.Context, string, int, int) { c.runs.Add(1) }

func (c *Counters) OnRunComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	if err != nil {
		c.runFailures.Add(1)
	}
}

func (c *Counters) OnFrameRendered(_ context.Context, _ int, cached bool, d time.Duration, err error) {
	switch {
	case err != nil:
		c.frameFailures.Add(1)
	case cached:
		c.framesCached.Add(1)
	default:
		c.frames.Add(1)
		c.renderNanos.Add(int64(d))
	}
}

func (c *Counters) OnEncodeStart(context.Context, string, string, int) { c.encodes.Add(1) }

func (c *Counters) OnEncodeComplete(_ context.Context, _, _ string, _ time.Duration, err error) {
	if err != nil {
		c.encodeFailure.Add(1)
	}
}

func (c *Counters) OnCacheHit(context.Context, string)  { c.cacheHits.Add(1) }
func (c *Counters) OnCacheMiss(context.Context, string) { c.cacheMisses.Add(1) }
func (c *Counters) OnCacheSet(_ context.Context, _ string, size int) {
	c.cacheBytes.Add(int64(size))
}

func (c *Counters) OnRequest(context.Context, string, string) { c.requests.Add(1) }

func (c *Counters) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	if status >= 500 {
		c.serverErrors.Add(1)
	}
}

var (
	_ PipelineHooks = (*Counters)(nil)
	_ CacheHooks    = (*Counters)(nil)
	_ HTTPHooks     = (*Counters)(nil)
)
