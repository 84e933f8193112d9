package render

import (
	"image"

	"github.com/gogpu/gg"

	"github.com/matzehuels/chaosgame/pkg/errors"
	"github.com/matzehuels/chaosgame/pkg/geometry"
	"github.com/matzehuels/chaosgame/pkg/palette"
)

// Frame is one rendered animation frame.
type Frame struct {
	Index      int            // 1-based frame number
	Image      image.Image    // width×height raster
	Highlight  geometry.Point // most recent point, drawn as the highlight
	PointCount int            // points in the prefix the frame was drawn from
}

// Renderer draws frames with fixed options. It holds no per-frame state and
// is safe for concurrent use.
type Renderer struct {
	opts       Options
	background gg.RGBA
	outline    gg.RGBA
	highlight  gg.RGBA
}

// New validates opts, after applying defaults, and returns a Renderer.
func New(opts Options) (*Renderer, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{
		opts:       opts,
		background: gg.Hex(opts.Background),
		outline:    gg.Hex(opts.Outline),
		highlight:  gg.Hex(opts.Highlight),
	}, nil
}

// Options returns the effective options.
func (r *Renderer) Options() Options { return r.opts }

// Render draws frame index from the given point prefix and vertex set.
// points must hold at least the seed point; its last element is highlighted.
func (r *Renderer) Render(index int, points, vertices []geometry.Point) (*Frame, error) {
	if len(points) == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "render: empty point sequence")
	}
	if len(vertices) < 3 {
		return nil, errors.New(errors.ErrCodeInternal, "render: polygon needs at least 3 vertices")
	}

	dc := gg.NewContext(r.opts.Width, r.opts.Height)
	defer dc.Close()

	cx, cy := float64(r.opts.Width)/2, float64(r.opts.Height)/2

	dc.ClearWithColor(r.background)

	dc.SetColor(r.outline.Color())
	dc.SetLineWidth(r.opts.LineWidth)
	dc.MoveTo(cx+vertices[0].X, cy+vertices[0].Y)
	for _, v := range vertices[1:] {
		dc.LineTo(cx+v.X, cy+v.Y)
	}
	dc.ClosePath()
	if err := dc.Stroke(); err != nil {
		return nil, failed(index, "outline", err)
	}

	for i := r.opts.WarmUp; i < len(points); i++ {
		p := points[i]
		s, err := palette.Map(p, r.opts.Radius)
		if err != nil {
			return nil, failed(index, "colour", err)
		}
		dc.SetColor(s.Color())
		dc.DrawCircle(cx+p.X, cy+p.Y, r.opts.PointRadius)
		if err := dc.Fill(); err != nil {
			return nil, failed(index, "point", err)
		}
	}

	last := points[len(points)-1]
	dc.SetColor(r.highlight.Color())
	dc.DrawCircle(cx+last.X, cy+last.Y, r.opts.HighlightRadius)
	if err := dc.Fill(); err != nil {
		return nil, failed(index, "highlight", err)
	}

	if err := dc.FlushGPU(); err != nil {
		return nil, failed(index, "flush", err)
	}

	return &Frame{
		Index:      index,
		Image:      dc.Image(),
		Highlight:  last,
		PointCount: len(points),
	}, nil
}

func failed(index int, stage string, err error) error {
	return errors.Wrap(errors.ErrCodeRenderFailure, err, "frame %d: %s", index, stage)
}
