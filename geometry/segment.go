// Package geometry provides the immutable body silhouette, line segment
// queries and the rotating limb models.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// LineSegment is an immutable segment with a precomputed unit normal and midpoint.
type LineSegment struct {
	P0, P1 r2.Vec

	normal r2.Vec
	center r2.Vec
}

// NewLineSegment creates a segment from p0 to p1.
// The normal is the direction rotated a quarter turn, (dy, -dx), normalized.
// Degenerate segments have a zero normal.
func NewLineSegment(p0, p1 r2.Vec) LineSegment {
	d := r2.Sub(p1, p0)
	var n r2.Vec
	if l := r2.Norm(d); l > 0 {
		n = r2.Vec{X: d.Y / l, Y: -d.X / l}
	}
	return LineSegment{
		P0:     p0,
		P1:     p1,
		normal: n,
		center: r2.Scale(0.5, r2.Add(p0, p1)),
	}
}

// Normal returns the unit normal.
func (s LineSegment) Normal() r2.Vec { return s.normal }

// Center returns the midpoint.
func (s LineSegment) Center() r2.Vec { return s.center }

// Length returns the segment length.
func (s LineSegment) Length() float64 { return r2.Norm(r2.Sub(s.P1, s.P0)) }

// DistanceTo returns the shortest distance from p to any point on the segment.
func (s LineSegment) DistanceTo(p r2.Vec) float64 {
	d := r2.Sub(s.P1, s.P0)
	l2 := r2.Norm2(d)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, s.P0))
	}
	t := r2.Dot(r2.Sub(p, s.P0), d) / l2
	t = math.Max(0, math.Min(1, t))
	closest := r2.Add(s.P0, r2.Scale(t, d))
	return r2.Norm(r2.Sub(p, closest))
}

// Crosses reports whether the travel segment a0->a1 intersects this segment.
func (s LineSegment) Crosses(a0, a1 r2.Vec) bool {
	return SegmentsIntersect(a0, a1, s.P0, s.P1)
}

// SegmentsIntersect reports whether segments a0-a1 and b0-b1 share a point.
// Parallel segments (including collinear overlap) report false.
func SegmentsIntersect(a0, a1, b0, b1 r2.Vec) bool {
	r := r2.Sub(a1, a0)
	s := r2.Sub(b1, b0)
	denom := r2.Cross(r, s)
	if denom == 0 {
		return false
	}
	qp := r2.Sub(b0, a0)
	t := r2.Cross(qp, s) / denom
	u := r2.Cross(qp, r) / denom
	return t >= 0 && t <= 1 && u >= 0 && u <= 1
}

// Reflect mirrors v about the line with unit normal n: v - 2(v.n)n.
func Reflect(v, n r2.Vec) r2.Vec {
	return r2.Sub(v, r2.Scale(2*r2.Dot(v, n), n))
}

// Polyline builds consecutive segments through points.
// A closed polyline adds a final segment back to the first point.
func Polyline(points []r2.Vec, closed bool) []LineSegment {
	if len(points) < 2 {
		return nil
	}
	n := len(points) - 1
	if closed {
		n++
	}
	segs := make([]LineSegment, 0, n)
	for i := 0; i < len(points)-1; i++ {
		segs = append(segs, NewLineSegment(points[i], points[i+1]))
	}
	if closed {
		segs = append(segs, NewLineSegment(points[len(points)-1], points[0]))
	}
	return segs
}
