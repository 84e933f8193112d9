package geometry

import (
	"math"
	"testing"

	"github.com/matzehuels/chaosgame/pkg/errors"
)

const tol = 1e-9

func TestVertices(t *testing.T) {
	for n := 3; n <= 24; n++ {
		spec := PolygonSpec{Vertices: n, Radius: 250, Rotation: DefaultRotation}
		vs, err := Vertices(spec)
		if err != nil {
			t.Fatalf("Vertices(%d) error: %v", n, err)
		}
		if len(vs) != n {
			t.Fatalf("Vertices(%d) returned %d points", n, len(vs))
		}

		want := 2 * math.Pi / float64(n)
		for k, v := range vs {
			if d := v.Minus(Origin).Magnitude(); math.Abs(d-spec.Radius) > tol*spec.Radius {
				t.Errorf("n=%d vertex %d at distance %v, want %v", n, k, d, spec.Radius)
			}
			next := vs[(k+1)%n]
			got := math.Atan2(next.Y, next.X) - math.Atan2(v.Y, v.X)
			for got < 0 {
				got += 2 * math.Pi
			}
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("n=%d angular gap after vertex %d = %v, want %v", n, k, got, want)
			}
		}
	}
}

func TestVerticesFirstPointsUp(t *testing.T) {
	vs, err := Vertices(PolygonSpec{Vertices: 3, Radius: 500, Rotation: DefaultRotation})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(vs[0].X) > tol || math.Abs(vs[0].Y+500) > tol {
		t.Errorf("first vertex = %+v, want (0, -500)", vs[0])
	}
}

func TestVerticesInvalid(t *testing.T) {
	tests := []struct {
		name string
		spec PolygonSpec
	}{
		{"too few vertices", PolygonSpec{Vertices: 2, Radius: 1}},
		{"zero radius", PolygonSpec{Vertices: 3, Radius: 0}},
		{"negative radius", PolygonSpec{Vertices: 5, Radius: -10}},
		{"nan radius", PolygonSpec{Vertices: 5, Radius: math.NaN()}},
		{"inf rotation", PolygonSpec{Vertices: 5, Radius: 1, Rotation: math.Inf(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Vertices(tt.spec)
			if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
				t.Errorf("Vertices(%+v) error = %v, want INVALID_CONFIGURATION", tt.spec, err)
			}
		})
	}
}

func TestVerticesDeterministic(t *testing.T) {
	spec := PolygonSpec{Vertices: 7, Radius: 123.456, Rotation: 0.3}
	a, _ := Vertices(spec)
	b, _ := Vertices(spec)
	for i := range a {
		if math.Float64bits(a[i].X) != math.Float64bits(b[i].X) || math.Float64bits(a[i].Y) != math.Float64bits(b[i].Y) {
			t.Fatalf("vertex %d differs between calls: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestOptimalRateRange(t *testing.T) {
	for n := 3; n <= 200; n++ {
		r, err := OptimalRate(n)
		if err != nil {
			t.Fatalf("OptimalRate(%d) error: %v", n, err)
		}
		if !(r > 0 && r < 1) {
			t.Errorf("OptimalRate(%d) = %v, want value in (0, 1)", n, r)
		}
	}
}

func TestOptimalRateKnownValues(t *testing.T) {
	tests := []struct {
		n    int
		want float64
	}{
		{3, 0.5},
		{4, 0.5},
		{6, 2.0 / 3.0},
		{5, 1 / (1 + 2*math.Sin(math.Pi/10))},
		{8, 1 / (1 + math.Tan(math.Pi/8))},
	}

	for _, tt := range tests {
		got, err := OptimalRate(tt.n)
		if err != nil {
			t.Fatalf("OptimalRate(%d) error: %v", tt.n, err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("OptimalRate(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestOptimalRateInvalid(t *testing.T) {
	for _, n := range []int{-3, 0, 1, 2} {
		if _, err := OptimalRate(n); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
			t.Errorf("OptimalRate(%d) error = %v, want INVALID_CONFIGURATION", n, err)
		}
	}
}

func TestOptimalRateDeterministic(t *testing.T) {
	for n := 3; n <= 20; n++ {
		a, _ := OptimalRate(n)
		b, _ := OptimalRate(n)
		if math.Float64bits(a) != math.Float64bits(b) {
			t.Errorf("OptimalRate(%d) not bit-identical across calls", n)
		}
	}
}

func TestMustOptimalRatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustOptimalRate(2) should panic")
		}
	}()
	MustOptimalRate(2)
}

func TestName(t *testing.T) {
	tests := []struct {
		n       int
		want    string
		wantErr bool
	}{
		{3, "triangle", false},
		{4, "square", false},
		{6, "hexagon", false},
		{12, "dodecagon", false},
		{20, "icosagon", false},
		{2, "", true},
		{21, "", true},
	}

	for _, tt := range tests {
		got, err := Name(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("Name(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Name(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestNamedCoversEveryName(t *testing.T) {
	named := Named()
	if len(named) != MaxNamedVertices-MinNamedVertices+1 {
		t.Fatalf("Named() returned %d counts", len(named))
	}
	for _, n := range named {
		if name, err := Name(n); err != nil || name == "" {
			t.Errorf("Name(%d) = %q, %v", n, name, err)
		}
	}
}

func TestInConvexPolygon(t *testing.T) {
	square := []Point{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"centre", Point{X: 0, Y: 0}, true},
		{"corner", Point{X: 1, Y: 1}, true},
		{"edge", Point{X: 0, Y: -1}, true},
		{"outside right", Point{X: 1.01, Y: 0}, false},
		{"far away", Point{X: 10, Y: 10}, false},
	}

	for _, tt := range tests {
		if got := InConvexPolygon(tt.p, square); got != tt.want {
			t.Errorf("%s: InConvexPolygon(%v) = %v, want %v", tt.name, tt.p, got, tt.want)
		}
	}

	if InConvexPolygon(Point{}, square[:2]) {
		t.Error("degenerate polygon should contain nothing")
	}
}

func TestBounds(t *testing.T) {
	vs, _ := Vertices(PolygonSpec{Vertices: 4, Radius: 10, Rotation: 0})
	b := Bounds(vs)
	if math.Abs(b.Width()-20) > tol || math.Abs(b.Height()-20) > tol {
		t.Errorf("Bounds = %v, want 20x20", b)
	}
	if empty := Bounds(nil); empty.Width() != 0 || empty.Height() != 0 {
		t.Errorf("Bounds(nil) = %v, want zero", empty)
	}
}
