package geometry

import (
	"github.com/matzehuels/chaosgame/pkg/errors"
)

// MinNamedVertices and MaxNamedVertices bound the polygons that have a display name.
const (
	MinNamedVertices = 3
	MaxNamedVertices = 20
)

var polygonNames = [...]string{
	3:  "triangle",
	4:  "square",
	5:  "pentagon",
	6:  "hexagon",
	7:  "heptagon",
	8:  "octagon",
	9:  "nonagon",
	10: "decagon",
	11: "hendecagon",
	12: "dodecagon",
	13: "tridecagon",
	14: "tetradecagon",
	15: "pentadecagon",
	16: "hexadecagon",
	17: "heptadecagon",
	18: "octadecagon",
	19: "enneadecagon",
	20: "icosagon",
}

// Name returns the display name of a regular polygon with n vertices.
// Counts outside [MinNamedVertices, MaxNamedVertices] are a configuration error.
func Name(n int) (string, error) {
	if n < MinNamedVertices || n > MaxNamedVertices {
		return "", errors.Invalid("no polygon name for %d vertices (supported: %d-%d)", n, MinNamedVertices, MaxNamedVertices)
	}
	return polygonNames[n], nil
}

// Named lists the vertex counts that have a display name, in increasing order.
func Named() []int {
	out := make([]int, 0, MaxNamedVertices-MinNamedVertices+1)
	for n := MinNamedVertices; n <= MaxNamedVertices; n++ {
		out = append(out, n)
	}
	return out
}
