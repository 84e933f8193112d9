package geometry

import (
	"math"

	"github.com/jbeda/geom"

	"github.com/matzehuels/chaosgame/pkg/errors"
)

// Point is a 2D coordinate relative to the polygon centre.
type Point = geom.Coord

// DefaultRotation places the first vertex straight up in screen space.
const DefaultRotation = -math.Pi / 2

// Origin is the polygon centre and the seed of every point sequence.
var Origin = Point{X: 0, Y: 0}

// PolygonSpec describes a regular polygon centred on the origin.
type PolygonSpec struct {
	Vertices int     `json:"vertices" toml:"vertices" yaml:"vertices"`
	Radius   float64 `json:"radius" toml:"radius" yaml:"radius"`
	Rotation float64 `json:"rotation" toml:"rotation" yaml:"rotation"` // radians
}

// Validate checks that s describes a drawable polygon.
func (s PolygonSpec) Validate() error {
	if err := errors.ValidateVertexCount(s.Vertices); err != nil {
		return err
	}
	if err := errors.ValidatePositive("radius", s.Radius); err != nil {
		return err
	}
	if math.IsNaN(s.Rotation) || math.IsInf(s.Rotation, 0) {
		return errors.Invalid("rotation must be a finite angle, got %v", s.Rotation)
	}
	return nil
}

// Vertices returns the n corners of the polygon in order.
// Vertex k sits at angle k·2π/n + Rotation on the circle of the given radius.
func Vertices(spec PolygonSpec) ([]Point, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	step := 2 * math.Pi / float64(spec.Vertices)
	out := make([]Point, spec.Vertices)
	for k := range out {
		theta := float64(k)*step + spec.Rotation
		out[k] = Point{
			X: Origin.X + spec.Radius*math.Cos(theta),
			Y: Origin.Y + spec.Radius*math.Sin(theta),
		}
	}
	return out, nil
}

// Bounds returns the smallest axis-aligned rectangle containing all points.
// An empty input yields the zero rectangle.
func Bounds(points []Point) geom.Rect {
	if len(points) == 0 {
		return geom.Rect{}
	}
	r := geom.Rect{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r.ExpandToContainCoord(p)
	}
	return r
}
