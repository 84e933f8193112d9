// Package chaos implements the chaos game: a point repeatedly moves a fixed
// fraction of the way toward a randomly chosen polygon vertex.
//
// # Sequence
//
// Every run owns one [Sequence]. It starts with the origin and grows by
// exactly one point per [Iterator.Step]. Points are never removed or
// modified, so a prefix returned by [Sequence.Prefix] stays valid while the
// iterator keeps appending. That is what lets frames be rendered in parallel
// with stepping:
//
//	it, _ := chaos.NewIterator(vertices, rate, chaos.NewSource(42))
//	for frame := 1; frame <= total; frame++ {
//	    it.Step()
//	    pts := it.Sequence().Prefix(frame + 1)
//	    go render(frame, pts)
//	}
//
// # Randomness
//
// Vertex choices come from a [Source]. [NewSource] returns a seeded PCG
// generator so that identical seeds reproduce identical sequences; tests can
// inject a scripted source instead.
package chaos
