// Package pkg provides the core libraries for Chaosgame animations.
//
// # Overview
//
// Chaosgame plays the chaos game on a regular polygon: starting from the
// centre, it repeatedly picks a random vertex and moves a fraction of the way
// towards it. With the optimal contraction ratio for the polygon, the points
// settle onto a clean, self-similar attractor. Every iteration becomes one
// animation frame. The pkg directory is organized into three main areas:
//
//  1. Domain logic ([geometry], [chaos], [palette], [render])
//  2. Orchestration ([pipeline], [encode])
//  3. Infrastructure ([cache], [observability], [errors], [buildinfo])
//
// # Architecture
//
// The data flow of a run:
//
//	Options (flags, TOML, YAML or JSON)
//	         ↓
//	    [geometry] package (vertices + optimal rate)
//	         ↓
//	    [chaos] package (one step per frame, append-only sequence)
//	         ↓
//	    [render] package (full repaint per frame, colours from [palette])
//	         ↓
//	    frames/frame_0001.png ... → [encode] → animation.gif / animation.mp4
//
// # Quick Start
//
// Render a short hexagon animation:
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	opts := pipeline.DefaultOptions()
//	opts.Vertices = 6
//	opts.Duration, opts.FrameRate = 2, 10
//	result, err := runner.Execute(ctx, opts)
//	// result.FramesDir holds frame_0001.png ... frame_0020.png
//
// Drive the pieces directly:
//
//	vertices, _ := geometry.Vertices(geometry.PolygonSpec{Vertices: 5, Radius: 500, Rotation: geometry.DefaultRotation})
//	rate, _ := geometry.OptimalRate(5)
//	it, _ := chaos.NewIterator(vertices, rate, chaos.NewSource(42))
//	r, _ := render.New(render.Options{Width: 1080, Height: 1080, Radius: 500})
//	for i := 1; i <= 300; i++ {
//	    it.Step()
//	    frame, _ := r.Render(i, it.Sequence().Prefix(i+1), vertices)
//	    _ = frame
//	}
//
// # Main Packages
//
// [geometry] - Regular polygon vertices, display names and the optimal
// contraction ratio per vertex count.
//
// [chaos] - The chaos-game iterator. Deterministic for a seed, so any frame
// can be replayed without re-running the whole animation.
//
// [palette] - Maps a point to a colour from its angle and distance to the
// polygon centre.
//
// [render] - Rasterises one frame. [render/sink] writes frames as PNG, BMP or
// TIFF files in index order.
//
// [encode] - Assembles frame directories into GIF (builtin or ffmpeg) or MP4
// (ffmpeg).
//
// [pipeline] - Complete run (setup → frames → encode) used by the CLI and
// the preview server. Tracks run state and writes a run.json manifest.
//
// [cache] - Frame cache backends: file (CLI default), Redis (shared) and
// null.
//
// [observability] - Hooks for runs, frames, encodes, cache and HTTP, with an
// in-memory counter implementation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/chaos/...              # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [geometry]: https://pkg.go.dev/github.com/matzehuels/chaosgame/pkg/geometry
// [chaos]: https://pkg.go.dev/github.com/matzehuels/chaosgame/pkg/chaos
// [palette]: https://pkg.go.dev/github.com/matzehuels/chaosgame/pkg/palette
// [render]: https://pkg.go.dev/github.com/matzehuels/chaosgame/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/chaosgame/pkg/render/sink
// [encode]: https://pkg.go.dev/github.com/matzehuels/chaosgame/pkg/encode
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/chaosgame/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/chaosgame/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/chaosgame/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/chaosgame/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/chaosgame/pkg/buildinfo
package pkg
