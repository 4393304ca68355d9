package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/travoltage/components"
	"github.com/pthm-cable/travoltage/config"
	"github.com/pthm-cable/travoltage/geometry"
)

// DischargeState is the phase of the discharge state machine.
type DischargeState uint8

const (
	DischargeIdle DischargeState = iota
	DischargeActive
)

// String returns the state name.
func (s DischargeState) String() string {
	if s == DischargeActive {
		return "active"
	}
	return "idle"
}

// DischargeReport describes one discharge tick.
type DischargeReport struct {
	Moved    []ecs.Entity // discharging electrons stepped this tick
	Removed  []ecs.Entity // electrons that reached the end of the route
	Enlisted int          // free electrons switched to the route this tick
	Ended    bool         // the discharge finished on this tick
}

// DischargeController drains electrons from the body along the spark route.
//
// On BeginDischarge the controller captures a route: the body's force-line chain,
// a bridge to the fingertip and the freshly generated spark path. Electrons walk
// that route segment by segment; the visible spark path still regenerates every
// tick while active.
type DischargeController struct {
	field *ElectronField
	spark *SparkPathGenerator
	rng   *rand.Rand
	cfg   config.DischargeConfig

	state DischargeState
	route []geometry.LineSegment
}

// NewDischargeController creates an idle controller.
func NewDischargeController(field *ElectronField, spark *SparkPathGenerator, rng *rand.Rand, cfg config.DischargeConfig) *DischargeController {
	if field == nil || spark == nil {
		panic("systems: NewDischargeController requires a field and spark generator")
	}
	if rng == nil {
		panic("systems: NewDischargeController requires a random source")
	}
	return &DischargeController{
		field: field,
		spark: spark,
		rng:   rng,
		cfg:   cfg,
	}
}

// BeginDischarge switches every free electron to walking the spark route and
// returns how many were switched. With no electrons the controller stays idle.
// Calling it while active enlists free electrons added since and leaves
// electrons already discharging on their way.
func (d *DischargeController) BeginDischarge() int {
	if d.field.Count() == 0 {
		d.state = DischargeIdle
		return 0
	}
	if d.state == DischargeIdle {
		path := d.spark.Regenerate()
		d.route = buildRoute(d.field.Body().ForceLines(), path)
		d.state = DischargeActive
	}
	return d.enlistFree()
}

// enlistFree starts every free electron on the route at its nearest segment.
func (d *DischargeController) enlistFree() int {
	n := 0
	for _, e := range d.field.electrons {
		if d.field.chargeMap.Get(e).Mode != components.ModeFree {
			continue
		}
		seg, _ := nextSegment(d.route, d.field.posMap.Get(e).Vec, -1)
		if d.field.startWalk(e, seg) {
			n++
		}
	}
	return n
}

// IsActive reports whether a discharge is in progress.
func (d *DischargeController) IsActive() bool { return d.state == DischargeActive }

// State returns the current phase.
func (d *DischargeController) State() DischargeState { return d.state }

// Route returns the route captured for the current discharge. Callers must not modify it.
func (d *DischargeController) Route() []geometry.LineSegment { return d.route }

// Step advances every discharging electron toward the sink and removes the ones
// that reached the end of the route. Removals are applied after the walk pass.
// The controller returns to idle on the tick the last electron is removed.
func (d *DischargeController) Step(dt float64) DischargeReport {
	var report DischargeReport
	if d.state != DischargeActive {
		return report
	}
	dt, ok := sanitizeDT(dt, d.field.cfg.MaxDT)
	if !ok {
		return report
	}

	report.Enlisted = d.enlistFree()
	d.spark.Regenerate()

	arrive := d.cfg.ArriveSpeed * dt
	for _, e := range d.field.electrons {
		if d.field.chargeMap.Get(e).Mode != components.ModeDischarging {
			continue
		}
		walk := d.field.walkMap.Get(e)
		if walk.Done {
			continue
		}
		if walk.Segment < 0 || walk.Segment >= len(d.route) {
			walk.Done = true
			d.field.markForRemoval(e)
			continue
		}

		pos := d.field.posMap.Get(e)
		target := d.route[walk.Segment].P1
		dist := distance(pos.Vec, target)

		if dist <= arrive {
			next, terminal := nextSegment(d.route, pos.Vec, walk.Segment)
			walk.Previous = walk.Segment
			if terminal {
				walk.Done = true
				d.field.markForRemoval(e)
				continue
			}
			walk.Segment = next
			continue
		}

		// Head for the segment end with a small random deviation, never overshooting it
		heading := bearing(pos.Vec, target) + (d.rng.Float64()-0.5)*d.cfg.Jitter
		step := d.cfg.WalkSpeed * dt
		if step > dist {
			step = dist
		}
		d.field.velMap.Get(e).Vec = polar(d.cfg.WalkSpeed, heading)
		pos.Vec = r2.Add(pos.Vec, polar(step, heading))
		report.Moved = append(report.Moved, e)
	}

	report.Removed = d.field.applyRemovals()
	if d.field.Count() == 0 {
		d.finish()
		report.Ended = true
	}
	return report
}

// Reset removes every electron and returns to idle. Safe to call in any state.
func (d *DischargeController) Reset() []ecs.Entity {
	removed := d.field.Clear()
	d.finish()
	return removed
}

func (d *DischargeController) finish() {
	d.state = DischargeIdle
	d.route = nil
	d.spark.Clear()
}
