package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/travoltage/components"
	"github.com/pthm-cable/travoltage/config"
	"github.com/pthm-cable/travoltage/geometry"
)

// Projector maps body-local electron positions into the display frame, where the
// leg and arm are rotated by their current angles.
//
// Each electron keeps a short history of the region it was in. An electron that
// stayed in a limb is rotated with it; one crossing between limb and body is
// blended by the share of its history spent in the body.
type Projector struct {
	leg, arm  *geometry.Appendage
	legRegion r2.Box
	armRegion r2.Box
	size      int

	histMap *ecs.Map[components.RegionHistory]
}

// NewProjector creates a projector for the given limbs.
func NewProjector(world *ecs.World, leg, arm *geometry.Appendage, cfg config.ProjectionConfig) *Projector {
	return &Projector{
		leg:       leg,
		arm:       arm,
		legRegion: cfg.LegRegion,
		armRegion: cfg.ArmRegion,
		size:      cfg.HistorySize,
		histMap:   ecs.NewMap[components.RegionHistory](world),
	}
}

// Classify returns the region containing p. Leg takes precedence over arm.
func (p *Projector) Classify(pos r2.Vec) components.Region {
	switch {
	case boxContains(p.legRegion, pos):
		return components.RegionLeg
	case boxContains(p.armRegion, pos):
		return components.RegionArm
	default:
		return components.RegionBody
	}
}

// Observe records the region of e's position and returns its display position.
// The first observation fills the history with the starting region.
func (p *Projector) Observe(e ecs.Entity, pos r2.Vec) r2.Vec {
	region := p.Classify(pos)
	if !p.histMap.Has(e) {
		h := components.NewRegionHistory(p.size)
		for i := 0; i < int(h.Size); i++ {
			h.Push(region)
		}
		p.histMap.Add(e, &h)
	} else {
		p.histMap.Get(e).Push(region)
	}
	return p.project(p.histMap.Get(e), pos)
}

// Project returns e's display position from its existing history without recording.
func (p *Projector) Project(e ecs.Entity, pos r2.Vec) r2.Vec {
	if !p.histMap.Has(e) {
		return p.rotateFor(p.Classify(pos), pos, 0)
	}
	return p.project(p.histMap.Get(e), pos)
}

func (p *Projector) project(h *components.RegionHistory, pos r2.Vec) r2.Vec {
	bodyFrac := h.Fraction(components.RegionBody)
	if bodyFrac >= 1 {
		return pos
	}
	limb := components.RegionLeg
	if h.Fraction(components.RegionLeg) < h.Fraction(components.RegionArm) {
		limb = components.RegionArm
	}
	return p.rotateFor(limb, pos, bodyFrac)
}

// rotateFor rotates pos with the limb and blends back toward pos by bodyFrac.
func (p *Projector) rotateFor(limb components.Region, pos r2.Vec, bodyFrac float64) r2.Vec {
	var rotated r2.Vec
	switch {
	case limb == components.RegionLeg && p.leg != nil:
		rotated = p.leg.Rotate(pos)
	case limb == components.RegionArm && p.arm != nil:
		rotated = p.arm.Rotate(pos)
	default:
		return pos
	}
	t := clampFloat(bodyFrac, 0, 1)
	return r2.Add(rotated, r2.Scale(t, r2.Sub(pos, rotated)))
}

// boxContains reports whether p lies inside b, edges included.
func boxContains(b r2.Box, p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}
