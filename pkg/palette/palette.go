// Package palette maps chaos-game points to colours.
//
// The hue follows the polar angle of a point around the polygon centre, so
// each lobe of the attractor gets its own band of the colour wheel. Saturation
// and value fall off gently with distance from the centre. Both are clamped to
// [0, 1]: points generated on the boundary can sit slightly beyond the
// reference radius and would otherwise leave the HSV range.
package palette

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/chaosgame/pkg/errors"
	"github.com/matzehuels/chaosgame/pkg/geometry"
)

const (
	baseSaturation = 0.4
	baseValue      = 0.9
	falloff        = 0.1
)

// Sample is a colour in hue/saturation/value form.
// Hue is in degrees, [0, 360). Saturation and Value are in [0, 1].
type Sample struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Value      float64 `json:"value"`
}

// Map returns the colour of point p, given relative to the polygon centre,
// for a polygon of the given radius.
func Map(p geometry.Point, radius float64) (Sample, error) {
	if !finite(p.X) || !finite(p.Y) {
		return Sample{}, errors.Invalid("cannot colour non-finite point (%v, %v)", p.X, p.Y)
	}
	if err := errors.ValidatePositive("radius", radius); err != nil {
		return Sample{}, err
	}

	r := p.Magnitude()
	hue := math.Atan2(p.Y, p.X) * 180 / math.Pi
	if hue < 0 {
		hue += 360
	}
	// -tiny + 360 rounds to exactly 360.
	if hue >= 360 {
		hue = 0
	}

	f := 1 - r/radius
	return Sample{
		Hue:        hue,
		Saturation: clamp01(baseSaturation + falloff*f),
		Value:      clamp01(baseValue + falloff*f),
	}, nil
}

// Color converts the sample to an opaque RGB colour.
func (s Sample) Color() color.Color {
	return colorful.Hsv(s.Hue, s.Saturation, s.Value).Clamped()
}

// Hex returns the sample as a #rrggbb string.
func (s Sample) Hex() string {
	return colorful.Hsv(s.Hue, s.Saturation, s.Value).Clamped().Hex()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
