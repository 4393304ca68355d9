package game

import (
	"math"

	"github.com/pthm-cable/travoltage/config"
)

// ScenarioPhase is a stage of the scripted cycle.
type ScenarioPhase uint8

const (
	ScenarioRub       ScenarioPhase = iota // swing the foot over the carpet
	ScenarioReach                          // rotate the arm toward the sink
	ScenarioDischarge                      // wait for the spark to drain the body
	ScenarioRest                           // arm back to its start angle
)

// String returns the phase name.
func (p ScenarioPhase) String() string {
	switch p {
	case ScenarioRub:
		return "rub"
	case ScenarioReach:
		return "reach"
	case ScenarioDischarge:
		return "discharge"
	case ScenarioRest:
		return "rest"
	default:
		return "unknown"
	}
}

// Scenario drives the limbs of a Game through rub, reach, discharge and rest,
// one tick of Scenario.DT at a time. It stands in for a user in headless runs.
type Scenario struct {
	g   *Game
	cfg config.ScenarioConfig

	phase   ScenarioPhase
	elapsed float64 // seconds in the current phase
	rubTime float64
	cycles  int
}

// NewScenario creates a scenario starting in the rub phase.
func NewScenario(g *Game) *Scenario {
	return &Scenario{g: g, cfg: g.cfg.Scenario}
}

// Phase returns the current phase.
func (s *Scenario) Phase() ScenarioPhase { return s.phase }

// Cycles returns the number of completed rub-to-rest cycles.
func (s *Scenario) Cycles() int { return s.cycles }

// Step sets the limbs for this tick and steps the game.
func (s *Scenario) Step() Batch {
	dt := s.cfg.DT
	g := s.g
	armStep := s.cfg.ReachSpeed * dt

	switch s.phase {
	case ScenarioRub:
		limbs := g.cfg.Limbs
		mid := (limbs.CarpetMinAngle + limbs.CarpetMaxAngle) / 2
		amp := (limbs.CarpetMaxAngle - limbs.CarpetMinAngle) / 2
		s.rubTime += dt
		g.SetLegAngle(mid + amp*math.Sin(2*math.Pi*s.cfg.RubFrequency*s.rubTime))
		if s.elapsed >= s.cfg.RubSeconds {
			s.enter(ScenarioReach)
		}

	case ScenarioReach:
		aim := g.arm.AngleToward(g.Sink())
		prev := g.ArmAngle()
		applied := g.SetArmAngle(approach(prev, aim, armStep))
		// Arrived, or pinned at the end of the arm's range
		arrived := math.Abs(applied-aim) < 1e-9 || applied == prev
		if g.IsDischarging() {
			s.enter(ScenarioDischarge)
		} else if arrived {
			// Touching the sink with too little charge to jump the gap
			if g.ElectronCount() > 0 && g.BeginDischarge() > 0 {
				s.enter(ScenarioDischarge)
			} else {
				s.enter(ScenarioRest)
			}
		}

	case ScenarioDischarge:
		if !g.IsDischarging() {
			s.enter(ScenarioRest)
		}

	case ScenarioRest:
		initial := g.cfg.Limbs.Arm.InitialAngle
		g.SetArmAngle(approach(g.ArmAngle(), initial, armStep))
		if s.elapsed >= s.cfg.RestSeconds && math.Abs(g.ArmAngle()-initial) < 1e-9 {
			s.cycles++
			s.enter(ScenarioRub)
		}
	}

	batch := g.Step(dt)
	s.elapsed += dt
	return batch
}

func (s *Scenario) enter(p ScenarioPhase) {
	s.phase = p
	s.elapsed = 0
}
