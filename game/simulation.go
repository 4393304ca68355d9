package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/travoltage/telemetry"
)

// updateLimbs moves the spark source to the fingertip and notes limb motion.
func (g *Game) updateLimbs() {
	g.spark.SetAnchors(g.arm.FingerPosition(), g.spark.Sink())

	g.limbsChanged = g.arm.Angle() != g.lastArm || g.leg.Angle() != g.lastLeg
	g.lastArm = g.arm.Angle()
}

// updatePickup converts leg travel on the carpet into electrons.
func (g *Game) updatePickup() {
	angle := g.leg.Angle()
	delta := math.Abs(angle - g.lastLeg)
	g.lastLeg = angle

	step := g.cfg.Limbs.RubStep
	if step <= 0 || !g.onCarpet(angle) {
		return
	}

	g.rubTravel += delta
	for g.rubTravel >= step {
		g.rubTravel -= step
		if !g.spawnPickup() {
			// Full: the rest of the travel is lost
			g.rubTravel = 0
			return
		}
	}
}

// dischargeThreshold returns the finger-to-sink distance that triggers a
// discharge for n electrons: more charge jumps a wider gap.
func (g *Game) dischargeThreshold(n int) float64 {
	d := g.cfg.Discharge
	return math.Max(d.MinDistance, math.Min(d.MaxDistance, float64(n)*d.DistancePerElectron))
}

// updateTrigger starts a discharge when the finger is close enough to the sink.
func (g *Game) updateTrigger() {
	if g.discharge.IsActive() {
		return
	}
	n := g.field.Count()
	if n == 0 {
		return
	}
	if g.FingerToSink() <= g.dischargeThreshold(n) {
		g.BeginDischarge()
	}
}

// updateFreeMotion steps free electrons and returns the ones that moved.
func (g *Game) updateFreeMotion(dt float64) []ecs.Entity {
	report := g.field.Step(dt)
	if report.Bounces > 0 {
		g.collector.Record(telemetry.NewBounceEvent(g.tick, report.Bounces))
	}
	return report.Moved
}

// updateDischarge advances the spark walk and returns the electrons that moved.
func (g *Game) updateDischarge(dt float64) []ecs.Entity {
	report := g.discharge.Step(dt)
	if report.Enlisted > 0 {
		g.dischargeTracker.Enlist(report.Enlisted)
	}

	if n := len(report.Removed); n > 0 {
		g.collector.Record(telemetry.NewElectronRemovedEvent(g.tick, n))
		g.dischargeTracker.Drain(n)
		g.pending.Removed = append(g.pending.Removed, report.Removed...)
	}

	if report.Ended {
		g.collector.Record(telemetry.NewDischargeEndedEvent(g.tick))
		g.pending.DischargeEnded = true
		if rec, ok := g.dischargeTracker.End(g.tick); ok {
			logDischargeEnded(rec)
			if err := g.outputManager.WriteDischarge(rec); err != nil {
				logOutputError("discharge", err)
			}
		}
	}
	return report.Moved
}

// updateProjection refreshes display positions. Every electron is reported when
// a limb moved, since its display position changes even if it did not.
func (g *Game) updateProjection(moved []ecs.Entity) {
	if len(moved) == 0 && !g.limbsChanged {
		return
	}

	set := make(map[ecs.Entity]struct{}, len(moved))
	for _, e := range moved {
		set[e] = struct{}{}
	}

	for _, e := range g.field.Electrons() {
		_, didMove := set[e]
		if !didMove && !g.limbsChanged {
			continue
		}
		if v, ok := g.view(e, didMove); ok {
			g.pending.Moved = append(g.pending.Moved, v)
		}
	}
}
