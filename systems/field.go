// Package systems provides the electron field, spark path and discharge systems.
package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/travoltage/components"
	"github.com/pthm-cable/travoltage/config"
	"github.com/pthm-cable/travoltage/geometry"
)

// StepReport describes one free-motion tick.
type StepReport struct {
	Moved   []ecs.Entity // every free electron stepped this tick, bounced or not
	Bounces int
	Parked  int // electrons that reached the end of the force-line chain this tick
}

// ElectronField owns the electron set and advances free electrons.
// Electrons are ark entities; iteration follows insertion order.
type ElectronField struct {
	world *ecs.World
	body  *geometry.Body
	rng   *rand.Rand
	cfg   config.ElectronConfig

	mapper    *ecs.Map4[components.Position, components.Velocity, components.Charge, components.FreeMotion]
	posMap    *ecs.Map[components.Position]
	velMap    *ecs.Map[components.Velocity]
	chargeMap *ecs.Map[components.Charge]
	freeMap   *ecs.Map[components.FreeMotion]
	walkMap   *ecs.Map[components.SparkWalk]

	electrons []ecs.Entity
	pending   []ecs.Entity // removals deferred until the end of the tick
	nextID    uint32
	tick      int32
}

// NewElectronField creates an empty field over the given body.
// A nil body or random source is a wiring error and panics.
func NewElectronField(world *ecs.World, body *geometry.Body, rng *rand.Rand, cfg config.ElectronConfig) *ElectronField {
	if body == nil {
		panic("systems: NewElectronField requires a body")
	}
	if rng == nil {
		panic("systems: NewElectronField requires a random source")
	}
	return &ElectronField{
		world:     world,
		body:      body,
		rng:       rng,
		cfg:       cfg,
		mapper:    ecs.NewMap4[components.Position, components.Velocity, components.Charge, components.FreeMotion](world),
		posMap:    ecs.NewMap[components.Position](world),
		velMap:    ecs.NewMap[components.Velocity](world),
		chargeMap: ecs.NewMap[components.Charge](world),
		freeMap:   ecs.NewMap[components.FreeMotion](world),
		walkMap:   ecs.NewMap[components.SparkWalk](world),
	}
}

// Add introduces a free electron at a body-local position with the configured
// initial velocity. Returns false without adding when the field is at capacity.
func (f *ElectronField) Add(at r2.Vec) (ecs.Entity, bool) {
	if f.cfg.MaxElectrons > 0 && len(f.electrons) >= f.cfg.MaxElectrons {
		return ecs.Entity{}, false
	}

	id := f.nextID
	f.nextID++

	pos := components.Position{Vec: at}
	vel := components.Velocity{Vec: f.cfg.InitialVelocity}
	charge := components.Charge{ID: id, Mode: components.ModeFree, Born: f.tick}
	free := components.NewFreeMotion()

	e := f.mapper.NewEntity(&pos, &vel, &charge, &free)
	f.electrons = append(f.electrons, e)
	return e, true
}

// Step advances every free electron by dt seconds: pairwise repulsion,
// integration, boundary collision and force-line bookkeeping.
// A non-finite or non-positive dt moves nothing.
func (f *ElectronField) Step(dt float64) StepReport {
	var report StepReport
	dt, ok := sanitizeDT(dt, f.cfg.MaxDT)
	if !ok {
		return report
	}
	f.tick++

	segments := f.body.CollisionSegments()
	for _, e := range f.electrons {
		charge := f.chargeMap.Get(e)
		if charge.Mode != components.ModeFree {
			continue
		}
		pos := f.posMap.Get(e)
		vel := f.velMap.Get(e)
		free := f.freeMap.Get(e)

		force := f.repulsion(e, pos.Vec)
		if f.cfg.ForceLineAttraction > 0 {
			force = r2.Add(force, f.attraction(free, pos.Vec))
		}

		v := limitLength(r2.Add(vel.Vec, force), f.cfg.MaxSpeed)
		v = r2.Scale(f.cfg.Damping, v)
		next := r2.Add(pos.Vec, r2.Scale(dt, v))

		bounced := false
		for i := range segments {
			// First intersecting segment in body order wins
			if segments[i].Crosses(pos.Vec, next) {
				v = geometry.Reflect(v, segments[i].Normal())
				bounced = true
				break
			}
		}
		vel.Vec = v
		if bounced {
			report.Bounces++
		} else {
			pos.Vec = next
		}

		if f.trackForceLine(free, pos.Vec) {
			report.Parked++
		}
		report.Moved = append(report.Moved, e)
	}
	return report
}

// repulsion sums the capped pair forces acting on e from a random subset of the
// other free electrons.
func (f *ElectronField) repulsion(e ecs.Entity, p r2.Vec) r2.Vec {
	var net r2.Vec
	for _, o := range f.electrons {
		if o == e || f.chargeMap.Get(o).Mode != components.ModeFree {
			continue
		}
		if f.rng.Float64() < f.cfg.SkipProbability {
			continue
		}
		d := r2.Sub(f.posMap.Get(o).Vec, p)
		dist := math.Max(r2.Norm(d), f.cfg.MinDistance)
		scale := f.cfg.RepulsionScale / math.Pow(dist*f.cfg.DistanceScale, f.cfg.RepulsionExponent)
		pair := limitLength(r2.Scale(scale, d), f.cfg.ForceCap)
		net = r2.Sub(net, pair)
	}
	return net
}

// attraction pulls toward the far end of the current target force line.
func (f *ElectronField) attraction(free *components.FreeMotion, p r2.Vec) r2.Vec {
	lines := f.body.ForceLines()
	if free.ChainEnd || free.Target < 0 || free.Target >= len(lines) {
		return r2.Vec{}
	}
	d := r2.Sub(lines[free.Target].P1, p)
	if r2.Norm(d) == 0 {
		return r2.Vec{}
	}
	return r2.Scale(f.cfg.ForceLineAttraction, r2.Unit(d))
}

// trackForceLine advances the electron along the force-line chain and reports
// whether it reached the end of the chain on this call.
// With no force lines the electron is left untouched.
func (f *ElectronField) trackForceLine(free *components.FreeMotion, p r2.Vec) bool {
	lines := f.body.ForceLines()
	if len(lines) == 0 || free.ChainEnd {
		return false
	}
	if free.Target < 0 || free.Target >= len(lines) {
		free.Target, _ = nextSegment(lines, p, -1)
		return false
	}
	if distance(p, lines[free.Target].P1) > f.cfg.ForceLineThreshold {
		return false
	}

	next, terminal := nextSegment(lines, p, free.Target)
	free.Previous = free.Target
	if terminal {
		free.ChainEnd = true
		return true
	}
	free.Target = next
	return false
}

// startWalk switches a free electron to walking the route from the given segment.
// Electrons already discharging are left alone.
func (f *ElectronField) startWalk(e ecs.Entity, segment int) bool {
	charge := f.chargeMap.Get(e)
	if charge.Mode != components.ModeFree {
		return false
	}
	charge.Mode = components.ModeDischarging
	f.freeMap.Remove(e)
	walk := components.SparkWalk{Segment: segment, Previous: -1}
	f.walkMap.Add(e, &walk)
	return true
}

// markForRemoval queues an electron for removal at the end of the tick.
func (f *ElectronField) markForRemoval(e ecs.Entity) {
	f.pending = append(f.pending, e)
}

// applyRemovals removes all queued electrons, preserving the order of the rest,
// and returns the removed handles.
func (f *ElectronField) applyRemovals() []ecs.Entity {
	if len(f.pending) == 0 {
		return nil
	}

	// First pass: mark removals (must complete before modifying)
	remove := make(map[ecs.Entity]struct{}, len(f.pending))
	for _, e := range f.pending {
		remove[e] = struct{}{}
	}

	removed := make([]ecs.Entity, 0, len(remove))
	kept := f.electrons[:0]
	for _, e := range f.electrons {
		if _, ok := remove[e]; ok {
			removed = append(removed, e)
			f.world.RemoveEntity(e)
			continue
		}
		kept = append(kept, e)
	}
	clear(f.electrons[len(kept):])
	f.electrons = kept
	f.pending = f.pending[:0]
	return removed
}

// Clear removes every electron and returns the removed handles in order.
func (f *ElectronField) Clear() []ecs.Entity {
	removed := f.electrons
	for _, e := range removed {
		f.world.RemoveEntity(e)
	}
	f.electrons = nil
	f.pending = f.pending[:0]
	return removed
}

// Electrons returns the live electrons in insertion order.
func (f *ElectronField) Electrons() []ecs.Entity {
	out := make([]ecs.Entity, len(f.electrons))
	copy(out, f.electrons)
	return out
}

// Count returns the number of live electrons.
func (f *ElectronField) Count() int { return len(f.electrons) }

// Capacity returns the configured electron cap (0 = unlimited).
func (f *ElectronField) Capacity() int { return f.cfg.MaxElectrons }

// Body returns the geometry the field collides against.
func (f *ElectronField) Body() *geometry.Body { return f.body }

// Alive reports whether e is a live electron of this field.
func (f *ElectronField) Alive(e ecs.Entity) bool {
	return !e.IsZero() && f.world.Alive(e) && f.chargeMap.Has(e)
}

// Position returns an electron's body-local position.
func (f *ElectronField) Position(e ecs.Entity) (r2.Vec, bool) {
	if !f.Alive(e) {
		return r2.Vec{}, false
	}
	return f.posMap.Get(e).Vec, true
}

// Velocity returns an electron's velocity.
func (f *ElectronField) Velocity(e ecs.Entity) (r2.Vec, bool) {
	if !f.Alive(e) {
		return r2.Vec{}, false
	}
	return f.velMap.Get(e).Vec, true
}

// Mode returns an electron's motion variant.
func (f *ElectronField) Mode(e ecs.Entity) (components.Mode, bool) {
	if !f.Alive(e) {
		return components.ModeFree, false
	}
	return f.chargeMap.Get(e).Mode, true
}

// ID returns an electron's stable identifier.
func (f *ElectronField) ID(e ecs.Entity) (uint32, bool) {
	if !f.Alive(e) {
		return 0, false
	}
	return f.chargeMap.Get(e).ID, true
}

// Charge returns a copy of an electron's identity and mode.
func (f *ElectronField) Charge(e ecs.Entity) (components.Charge, bool) {
	if !f.Alive(e) {
		return components.Charge{}, false
	}
	return *f.chargeMap.Get(e), true
}

// FreeMotion returns a copy of a free electron's force-line progress.
func (f *ElectronField) FreeMotion(e ecs.Entity) (components.FreeMotion, bool) {
	if !f.Alive(e) || !f.freeMap.Has(e) {
		return components.FreeMotion{}, false
	}
	return *f.freeMap.Get(e), true
}

// SetState overwrites an electron's position and velocity.
// Intended for scripted setups and tests; unknown entities are ignored.
func (f *ElectronField) SetState(e ecs.Entity, pos, vel r2.Vec) {
	if !f.Alive(e) {
		return
	}
	f.posMap.Get(e).Vec = pos
	f.velMap.Get(e).Vec = vel
}
