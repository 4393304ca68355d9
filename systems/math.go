package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Clamp functions for common value ranges

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// Time step handling

// sanitizeDT returns the step to integrate with and whether any motion should happen.
// Non-finite or non-positive steps mean no motion; positive steps are capped at maxDT
// when maxDT > 0.
func sanitizeDT(dt, maxDT float64) (float64, bool) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return 0, false
	}
	if maxDT > 0 && dt > maxDT {
		dt = maxDT
	}
	return dt, true
}

// Vector helpers

// polar returns a vector of the given length and angle.
func polar(length, angle float64) r2.Vec {
	return r2.Vec{X: length * math.Cos(angle), Y: length * math.Sin(angle)}
}

// bearing returns the angle of the vector from p to q.
func bearing(p, q r2.Vec) float64 {
	d := r2.Sub(q, p)
	return math.Atan2(d.Y, d.X)
}

// limitLength rescales v to maxLen when it is longer.
func limitLength(v r2.Vec, maxLen float64) r2.Vec {
	l := r2.Norm(v)
	if l > maxLen && l > 0 {
		return r2.Scale(maxLen/l, v)
	}
	return v
}

// distance returns the Euclidean distance between two points.
func distance(p, q r2.Vec) float64 {
	return r2.Norm(r2.Sub(q, p))
}
