// Package geometry computes the static setup of a chaos game: the vertices of a
// regular polygon and the contraction ratio that makes its attractor crisp.
//
// # Coordinates
//
// Points are expressed relative to the polygon centre (the origin) in screen
// orientation: x grows to the right and y grows downwards. With the default
// rotation of -π/2 the first vertex therefore points up.
//
// # Optimal Rate
//
// [OptimalRate] returns the interpolation fraction r used at every chaos-game
// step. The closed forms depend on n mod 4:
//
//	n ≡ 0 (mod 4): r = 1 / (1 + tan(π/n))
//	n ≡ 2 (mod 4): r = 1 / (1 + sin(π/n))
//	otherwise:     r = 1 / (1 + 2·sin(π/(2n)))
//
// For n = 3 this is the classic midpoint rule (r = 0.5) that draws the
// Sierpinski triangle.
//
// All functions in this package are pure: identical inputs always produce
// bit-identical outputs.
package geometry
