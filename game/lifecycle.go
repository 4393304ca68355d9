package game

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/travoltage/telemetry"
)

// AddElectron adds a free electron at a body-local position.
// Returns false when the body is at capacity.
func (g *Game) AddElectron(at r2.Vec) (ecs.Entity, bool) {
	e, ok := g.field.Add(at)
	if !ok {
		g.collector.Record(telemetry.NewElectronRejectedEvent(g.tick))
		return e, false
	}
	id, _ := g.field.ID(e)
	g.collector.Record(telemetry.NewElectronAddedEvent(g.tick, id))
	g.pending.Added = append(g.pending.Added, e)
	return e, true
}

// spawnPickup adds one electron at the leg spawn point with jitter.
func (g *Game) spawnPickup() bool {
	limbs := g.cfg.Limbs
	j := limbs.SpawnJitter
	at := r2.Vec{
		X: limbs.SpawnPoint.X + (g.rng.Float64()*2-1)*j,
		Y: limbs.SpawnPoint.Y + (g.rng.Float64()*2-1)*j,
	}
	_, ok := g.AddElectron(at)
	return ok
}

// BeginDischarge starts a discharge regardless of the finger distance.
// Returns the number of electrons sent along the spark route.
func (g *Game) BeginDischarge() int {
	wasActive := g.discharge.IsActive()
	n := g.discharge.BeginDischarge()
	if !g.discharge.IsActive() {
		return 0
	}

	if wasActive {
		g.dischargeTracker.Enlist(n)
		return n
	}

	dist := g.FingerToSink()
	g.dischargeTracker.Begin(g.tick, n, len(g.discharge.Route()), dist)
	g.collector.Record(telemetry.NewDischargeStartedEvent(g.tick, n))
	g.pending.DischargeStarted = true
	logDischargeStarted(g.tick, n, dist)
	return n
}

// Reset removes every electron and stops any discharge. Limb angles are kept.
func (g *Game) Reset() {
	removed := g.discharge.Reset()
	g.rubTravel = 0
	g.dischargeTracker.Abort()

	g.collector.Record(telemetry.NewResetEvent(g.tick, len(removed)))
	g.pending.Removed = append(g.pending.Removed, removed...)
	g.pending.Reset = true
	logReset(g.tick, len(removed))
}

// onCarpet reports whether the foot touches the carpet at the given leg angle.
func (g *Game) onCarpet(angle float64) bool {
	return angle >= g.cfg.Limbs.CarpetMinAngle && angle <= g.cfg.Limbs.CarpetMaxAngle
}
