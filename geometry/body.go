package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Body is the immutable collision and force-line geometry of the figure.
// It is safe to share between goroutines; nothing mutates it after construction.
type Body struct {
	segments   []LineSegment
	forceLines []LineSegment
}

// NewBody creates a body from explicit segment lists. Both slices are copied.
func NewBody(collision, forceLines []LineSegment) *Body {
	b := &Body{
		segments:   make([]LineSegment, len(collision)),
		forceLines: make([]LineSegment, len(forceLines)),
	}
	copy(b.segments, collision)
	copy(b.forceLines, forceLines)
	return b
}

// NewPolygonBody creates a body from a closed outline and an open force-line chain.
func NewPolygonBody(outline, chain []r2.Vec) *Body {
	return &Body{
		segments:   Polyline(outline, true),
		forceLines: Polyline(chain, false),
	}
}

// CollisionSegments returns the boundary segments in collision order.
// The returned slice is shared and must not be modified.
func (b *Body) CollisionSegments() []LineSegment { return b.segments }

// ForceLines returns the force-line chain in order.
// The returned slice is shared and must not be modified.
func (b *Body) ForceLines() []LineSegment { return b.forceLines }

// DistanceToBoundary returns the distance from p to the nearest collision segment.
// Returns +Inf for a body without segments.
func (b *Body) DistanceToBoundary(p r2.Vec) float64 {
	best := math.Inf(1)
	for i := range b.segments {
		if d := b.segments[i].DistanceTo(p); d < best {
			best = d
		}
	}
	return best
}

// Contains reports whether p lies inside the collision outline (even-odd rule).
func (b *Body) Contains(p r2.Vec) bool {
	inside := false
	for i := range b.segments {
		a, c := b.segments[i].P0, b.segments[i].P1
		if (a.Y > p.Y) == (c.Y > p.Y) {
			continue
		}
		x := a.X + (p.Y-a.Y)*(c.X-a.X)/(c.Y-a.Y)
		if p.X < x {
			inside = !inside
		}
	}
	return inside
}

// ChainEnd returns the far endpoint of the last force line, or false if there are none.
func (b *Body) ChainEnd() (r2.Vec, bool) {
	if len(b.forceLines) == 0 {
		return r2.Vec{}, false
	}
	return b.forceLines[len(b.forceLines)-1].P1, true
}
