package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Appendage is a limb that rotates about a fixed pivot.
// The angle is an external input; the simulation only reads it.
type Appendage struct {
	pivot        r2.Vec
	angle        float64
	initialAngle float64
	minAngle     float64
	maxAngle     float64
}

// NewAppendage creates a limb at its initial angle.
// A range with minAngle >= maxAngle disables clamping.
func NewAppendage(pivot r2.Vec, initialAngle, minAngle, maxAngle float64) *Appendage {
	a := &Appendage{
		pivot:        pivot,
		initialAngle: initialAngle,
		minAngle:     minAngle,
		maxAngle:     maxAngle,
	}
	a.angle = a.clamp(initialAngle)
	return a
}

// Pivot returns the rotation center.
func (a *Appendage) Pivot() r2.Vec { return a.pivot }

// Angle returns the current angle in radians.
func (a *Appendage) Angle() float64 { return a.angle }

// SetAngle sets the angle, clamped to the limb's range, and returns the applied value.
// Non-finite angles are ignored.
func (a *Appendage) SetAngle(angle float64) float64 {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return a.angle
	}
	a.angle = a.clamp(angle)
	return a.angle
}

// Reset restores the initial angle.
func (a *Appendage) Reset() {
	a.angle = a.clamp(a.initialAngle)
}

// Rotate maps a body-local point into the limb's current frame.
func (a *Appendage) Rotate(p r2.Vec) r2.Vec {
	return r2.Rotate(p, a.angle, a.pivot)
}

func (a *Appendage) clamp(angle float64) float64 {
	if a.minAngle >= a.maxAngle {
		return angle
	}
	return math.Max(a.minAngle, math.Min(a.maxAngle, angle))
}

// Arm is an appendage with a fingertip, the source of the spark.
type Arm struct {
	*Appendage
	finger r2.Vec // fingertip at angle 0
}

// NewArm creates an arm whose fingertip sits at finger when the angle is 0.
func NewArm(pivot, finger r2.Vec, initialAngle, minAngle, maxAngle float64) *Arm {
	return &Arm{
		Appendage: NewAppendage(pivot, initialAngle, minAngle, maxAngle),
		finger:    finger,
	}
}

// FingerPosition returns the fingertip at the current angle.
func (a *Arm) FingerPosition() r2.Vec {
	return a.Rotate(a.finger)
}

// AngleToward returns the (unclamped) angle that points the fingertip at target.
func (a *Arm) AngleToward(target r2.Vec) float64 {
	toTarget := r2.Sub(target, a.pivot)
	toFinger := r2.Sub(a.finger, a.pivot)
	return wrapAngle(math.Atan2(toTarget.Y, toTarget.X) - math.Atan2(toFinger.Y, toFinger.X))
}

// wrapAngle wraps an angle to [-Pi, Pi].
func wrapAngle(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}
