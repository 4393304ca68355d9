// Package components defines ECS components for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Mode is the motion variant of an electron.
type Mode uint8

const (
	ModeFree        Mode = iota // Bound to the body: repulsion, integration, collision
	ModeDischarging             // Walking the discharge route toward the sink
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case ModeFree:
		return "free"
	case ModeDischarging:
		return "discharging"
	default:
		return "unknown"
	}
}

// Position is an electron's body-local position.
type Position struct {
	r2.Vec
}

// Velocity is an electron's velocity in units per second.
type Velocity struct {
	r2.Vec
}

// Charge identifies an electron and records its current mode.
// Exactly one of FreeMotion or SparkWalk is attached, matching Mode.
type Charge struct {
	ID   uint32
	Mode Mode
	Born int32 // tick the electron was added
}

// FreeMotion tracks progress along the body's force-line chain.
// Indices refer to Body.ForceLines(); -1 means unresolved.
type FreeMotion struct {
	Target   int
	Previous int
	ChainEnd bool // reached the last force line; the electron stays parked on the chain
}

// NewFreeMotion returns a FreeMotion with the target resolved lazily on the first step.
func NewFreeMotion() FreeMotion {
	return FreeMotion{Target: -1, Previous: -1}
}

// SparkWalk tracks progress along the discharge route.
// Indices refer to the route captured when the discharge began.
type SparkWalk struct {
	Segment  int
	Previous int
	Done     bool // end of route reached; pending removal
}
