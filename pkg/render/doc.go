// Package render rasterises chaos-game frames.
//
// # Overview
//
// A frame is a full repaint of the current state of a run:
//
//  1. clear to the background colour
//  2. stroke the polygon outline through the vertices in order
//  3. draw a small marker for every point after the warm-up prefix,
//     coloured by [palette.Map]
//  4. draw a larger highlight marker at the most recent point
//
// Coordinates are relative to the polygon centre, which is placed at the
// centre of the image. The renderer never modifies the points or vertices it
// is given, so frames can be rendered concurrently from prefixes of the same
// [chaos.Sequence].
//
//	r, err := render.New(render.Options{Width: 1080, Height: 1080, Radius: 500})
//	frame, err := r.Render(25, seq.Prefix(26), vertices)
//
// # Warm-up
//
// The first few chaos-game points have not yet been pulled onto the
// attractor and only add noise. Options.WarmUp of them are skipped when
// drawing markers; the highlight is always drawn. A zero WarmUp draws every
// point and a negative one selects [DefaultWarmUp], which is what runs use.
//
// # Output formats
//
// Encoding frames to files lives in the [sink] subpackage.
//
// [palette.Map]: github.com/matzehuels/chaosgame/pkg/palette.Map
// [chaos.Sequence]: github.com/matzehuels/chaosgame/pkg/chaos.Sequence
// [sink]: github.com/matzehuels/chaosgame/pkg/render/sink
package render
