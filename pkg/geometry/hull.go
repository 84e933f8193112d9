package geometry

// hullTolerance absorbs floating-point error for points on an edge.
const hullTolerance = 1e-9

// InConvexPolygon reports whether p lies inside or on the boundary of the
// convex polygon whose vertices are given in order (either winding).
func InConvexPolygon(p Point, vertices []Point) bool {
	n := len(vertices)
	if n < 3 {
		return false
	}

	var sign float64
	for i := 0; i < n; i++ {
		a := vertices[i]
		b := vertices[(i+1)%n]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)

		// Scale the tolerance with the edge length so large radii behave.
		edge := b.Minus(a).Magnitude()
		if cross > -hullTolerance*edge && cross < hullTolerance*edge {
			continue
		}
		if sign == 0 {
			sign = cross
			continue
		}
		if (cross > 0) != (sign > 0) {
			return false
		}
	}
	return true
}
