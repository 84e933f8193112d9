package render

import (
	"github.com/jbeda/geom"

	"github.com/matzehuels/chaosgame/pkg/errors"
)

// Rendering defaults.
const (
	DefaultWidth           = 1080
	DefaultHeight          = 1080
	DefaultRadius          = 500.0
	DefaultWarmUp          = 10
	DefaultPointRadius     = 1.5
	DefaultHighlightRadius = 6.0
	DefaultLineWidth       = 2.0
	DefaultBackground      = "#0b0b12"
	DefaultOutline         = "#f5f5f5"
	DefaultHighlight       = "#ff3b30"
)

// Options controls frame geometry and styling.
type Options struct {
	Width           int     `json:"width" toml:"width" yaml:"width"`
	Height          int     `json:"height" toml:"height" yaml:"height"`
	Radius          float64 `json:"radius" toml:"radius" yaml:"radius"` // colour falloff reference
	WarmUp          int     `json:"warm_up" toml:"warm_up" yaml:"warm_up"`
	PointRadius     float64 `json:"point_radius,omitempty" toml:"point_radius" yaml:"point_radius,omitempty"`
	HighlightRadius float64 `json:"highlight_radius,omitempty" toml:"highlight_radius" yaml:"highlight_radius,omitempty"`
	LineWidth       float64 `json:"line_width,omitempty" toml:"line_width" yaml:"line_width,omitempty"`
	Background      string  `json:"background,omitempty" toml:"background" yaml:"background,omitempty"`
	Outline         string  `json:"outline,omitempty" toml:"outline" yaml:"outline,omitempty"`
	Highlight       string  `json:"highlight,omitempty" toml:"highlight" yaml:"highlight,omitempty"`
}

// SetDefaults fills zero-valued fields. WarmUp is left alone since zero is
// a meaningful value; use a negative WarmUp to request the default.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Radius == 0 {
		o.Radius = DefaultRadius
	}
	if o.WarmUp < 0 {
		o.WarmUp = DefaultWarmUp
	}
	if o.PointRadius == 0 {
		o.PointRadius = DefaultPointRadius
	}
	if o.HighlightRadius == 0 {
		o.HighlightRadius = DefaultHighlightRadius
	}
	if o.LineWidth == 0 {
		o.LineWidth = DefaultLineWidth
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.Outline == "" {
		o.Outline = DefaultOutline
	}
	if o.Highlight == "" {
		o.Highlight = DefaultHighlight
	}
}

// Validate checks the options after defaults have been applied.
func (o Options) Validate() error {
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"radius", o.Radius},
		{"point radius", o.PointRadius},
		{"highlight radius", o.HighlightRadius},
		{"line width", o.LineWidth},
	} {
		if err := errors.ValidatePositive(f.name, f.v); err != nil {
			return err
		}
	}
	if o.WarmUp < 0 {
		return errors.Invalid("warm-up must be non-negative, got %d", o.WarmUp)
	}
	for name, c := range map[string]string{
		"background": o.Background,
		"outline":    o.Outline,
		"highlight":  o.Highlight,
	} {
		if !isHexColor(c) {
			return errors.Invalid("%s colour %q is not a hex colour", name, c)
		}
	}
	return nil
}

// Fits reports whether bounds, relative to the polygon centre, lie inside
// the frame once the centre is placed at the middle of the image.
func (o Options) Fits(bounds geom.Rect) bool {
	hw, hh := float64(o.Width)/2, float64(o.Height)/2
	return bounds.Min.X >= -hw && bounds.Max.X <= hw &&
		bounds.Min.Y >= -hh && bounds.Max.Y <= hh
}

func isHexColor(s string) bool {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
