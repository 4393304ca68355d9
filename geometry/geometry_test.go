package geometry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

const tol = 1e-9

func vecNear(a, b r2.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

func TestLineSegmentDerived(t *testing.T) {
	s := NewLineSegment(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 10, Y: 0})

	if !vecNear(s.Center(), r2.Vec{X: 5, Y: 0}, tol) {
		t.Errorf("center = %v, want (5,0)", s.Center())
	}
	if !vecNear(s.Normal(), r2.Vec{X: 0, Y: -1}, tol) {
		t.Errorf("normal = %v, want (0,-1)", s.Normal())
	}
	if math.Abs(r2.Norm(s.Normal())-1) > tol {
		t.Errorf("normal not unit: %v", r2.Norm(s.Normal()))
	}
	if math.Abs(s.Length()-10) > tol {
		t.Errorf("length = %v, want 10", s.Length())
	}

	degenerate := NewLineSegment(r2.Vec{X: 3, Y: 3}, r2.Vec{X: 3, Y: 3})
	if degenerate.Normal() != (r2.Vec{}) {
		t.Errorf("degenerate normal = %v, want zero", degenerate.Normal())
	}
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name           string
		a0, a1, b0, b1 r2.Vec
		want           bool
	}{
		{"crossing", r2.Vec{X: 0, Y: 0}, r2.Vec{X: 10, Y: 10}, r2.Vec{X: 0, Y: 10}, r2.Vec{X: 10, Y: 0}, true},
		{"disjoint", r2.Vec{X: 0, Y: 0}, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 5, Y: 0}, r2.Vec{X: 5, Y: 10}, false},
		{"parallel", r2.Vec{X: 0, Y: 0}, r2.Vec{X: 10, Y: 0}, r2.Vec{X: 0, Y: 1}, r2.Vec{X: 10, Y: 1}, false},
		{"touching endpoint", r2.Vec{X: 0, Y: 0}, r2.Vec{X: 5, Y: 0}, r2.Vec{X: 5, Y: -5}, r2.Vec{X: 5, Y: 5}, true},
		{"short of segment", r2.Vec{X: 0, Y: 0}, r2.Vec{X: 4.9, Y: 0}, r2.Vec{X: 5, Y: -5}, r2.Vec{X: 5, Y: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentsIntersect(tt.a0, tt.a1, tt.b0, tt.b1); got != tt.want {
				t.Errorf("SegmentsIntersect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReflectPreservesTangent(t *testing.T) {
	// Vertical wall at x=5
	wall := NewLineSegment(r2.Vec{X: 5, Y: -10}, r2.Vec{X: 5, Y: 10})
	v := r2.Vec{X: 10, Y: 3}
	got := Reflect(v, wall.Normal())

	if !vecNear(got, r2.Vec{X: -10, Y: 3}, tol) {
		t.Errorf("Reflect = %v, want (-10,3)", got)
	}
	if math.Abs(r2.Norm(got)-r2.Norm(v)) > tol {
		t.Errorf("reflection changed speed: %v -> %v", r2.Norm(v), r2.Norm(got))
	}
}

func TestDistanceTo(t *testing.T) {
	s := NewLineSegment(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 10, Y: 0})
	tests := []struct {
		name string
		p    r2.Vec
		want float64
	}{
		{"above middle", r2.Vec{X: 5, Y: 3}, 3},
		{"past end", r2.Vec{X: 13, Y: 4}, 5},
		{"before start", r2.Vec{X: -3, Y: 0}, 3},
		{"on segment", r2.Vec{X: 2, Y: 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.DistanceTo(tt.p); math.Abs(got-tt.want) > tol {
				t.Errorf("DistanceTo(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPolyline(t *testing.T) {
	pts := []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	if got := len(Polyline(pts, false)); got != 2 {
		t.Errorf("open polyline segments = %d, want 2", got)
	}
	closed := Polyline(pts, true)
	if len(closed) != 3 {
		t.Fatalf("closed polyline segments = %d, want 3", len(closed))
	}
	if closed[2].P1 != pts[0] {
		t.Errorf("closing segment ends at %v, want %v", closed[2].P1, pts[0])
	}
	if Polyline(pts[:1], true) != nil {
		t.Error("single point should produce no segments")
	}
}

func TestDefaultBody(t *testing.T) {
	body := DefaultBody()

	if got := len(body.CollisionSegments()); got != len(DefaultOutline) {
		t.Errorf("collision segments = %d, want %d", got, len(DefaultOutline))
	}
	if got := len(body.ForceLines()); got != len(DefaultForceChain)-1 {
		t.Errorf("force lines = %d, want %d", got, len(DefaultForceChain)-1)
	}

	// The whole force chain lies inside the outline
	for _, p := range DefaultForceChain {
		if !body.Contains(p) {
			t.Errorf("force chain point %v outside body", p)
		}
	}

	// No force line crosses the boundary
	for i, fl := range body.ForceLines() {
		for j, seg := range body.CollisionSegments() {
			if seg.Crosses(fl.P0, fl.P1) {
				t.Errorf("force line %d crosses boundary segment %d", i, j)
			}
		}
	}

	end, ok := body.ChainEnd()
	if !ok || end != DefaultForceChain[len(DefaultForceChain)-1] {
		t.Errorf("ChainEnd = %v,%v", end, ok)
	}
}

func TestBodyEmpty(t *testing.T) {
	body := NewBody(nil, nil)
	if !math.IsInf(body.DistanceToBoundary(r2.Vec{}), 1) {
		t.Error("empty body distance should be +Inf")
	}
	if body.Contains(r2.Vec{}) {
		t.Error("empty body contains nothing")
	}
	if _, ok := body.ChainEnd(); ok {
		t.Error("empty body has no chain end")
	}
}

func TestAppendageClamp(t *testing.T) {
	a := NewAppendage(r2.Vec{X: 0, Y: 0}, 0.2, -1, 1)

	if got := a.SetAngle(2); got != 1 {
		t.Errorf("SetAngle(2) = %v, want 1", got)
	}
	if got := a.SetAngle(-5); got != -1 {
		t.Errorf("SetAngle(-5) = %v, want -1", got)
	}
	if got := a.SetAngle(math.NaN()); got != -1 {
		t.Errorf("SetAngle(NaN) = %v, want unchanged -1", got)
	}
	a.Reset()
	if a.Angle() != 0.2 {
		t.Errorf("after Reset angle = %v, want 0.2", a.Angle())
	}
}

func TestArmFinger(t *testing.T) {
	arm := NewArm(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 10, Y: 0}, 0, -math.Pi, math.Pi)

	if !vecNear(arm.FingerPosition(), r2.Vec{X: 10, Y: 0}, tol) {
		t.Errorf("finger at 0 = %v", arm.FingerPosition())
	}

	arm.SetAngle(math.Pi / 2)
	if !vecNear(arm.FingerPosition(), r2.Vec{X: 0, Y: 10}, 1e-9) {
		t.Errorf("finger at pi/2 = %v, want (0,10)", arm.FingerPosition())
	}

	target := r2.Vec{X: -5, Y: 5}
	arm.SetAngle(arm.AngleToward(target))
	dir := r2.Unit(arm.FingerPosition())
	want := r2.Unit(target)
	if !vecNear(dir, want, 1e-9) {
		t.Errorf("finger direction = %v, want %v", dir, want)
	}
}
