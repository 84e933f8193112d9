package geometry_test

import (
	"fmt"

	"github.com/matzehuels/chaosgame/pkg/geometry"
)

func ExampleOptimalRate() {
	for _, n := range []int{3, 4, 5, 6} {
		r, _ := geometry.OptimalRate(n)
		name, _ := geometry.Name(n)
		fmt.Printf("%s: %.4f\n", name, r)
	}
	// Output:
	// triangle: 0.5000
	// square: 0.5000
	// pentagon: 0.6180
	// hexagon: 0.6667
}

func ExampleVertices() {
	vs, _ := geometry.Vertices(geometry.PolygonSpec{
		Vertices: 4,
		Radius:   100,
		Rotation: geometry.DefaultRotation,
	})
	for _, v := range vs {
		fmt.Printf("(%.0f, %.0f)\n", v.X, v.Y)
	}
	// Output:
	// (0, -100)
	// (100, 0)
	// (0, 100)
	// (-100, 0)
}
