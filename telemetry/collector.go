package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	added             int
	rejected          int
	removed           int
	bounces           int
	dischargesStarted int
	dischargesEnded   int
	resets            int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(1)
	if dt > 0 {
		ticksPerWindow = int32(windowDurationSec / dt)
	}
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record counts an event in the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventElectronAdded:
		c.added += max(ev.Count, 1)
	case EventElectronRejected:
		c.rejected += max(ev.Count, 1)
	case EventElectronRemoved:
		c.removed += ev.Count
	case EventBounce:
		c.bounces += ev.Count
	case EventDischargeStarted:
		c.dischargesStarted++
	case EventDischargeEnded:
		c.dischargesEnded++
	case EventReset:
		c.resets++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Sample is the state captured at the end of a window.
type Sample struct {
	Free        int
	Discharging int

	Speeds             []float64 // free electron speeds
	BoundaryDistances  []float64 // free electron distances to the nearest collision segment
	LegAngle, ArmAngle float64
	FingerToSink       float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	speedMean, speedP50, speedP90, speedMax := ComputeDistribution(s.Speeds)
	distMean, _, _, _ := ComputeDistribution(s.BoundaryDistances)
	distP10 := QuantileOf(s.BoundaryDistances, 0.10)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Electrons:   s.Free + s.Discharging,
		Free:        s.Free,
		Discharging: s.Discharging,

		Added:             c.added,
		Rejected:          c.rejected,
		Removed:           c.removed,
		Bounces:           c.bounces,
		DischargesStarted: c.dischargesStarted,
		DischargesEnded:   c.dischargesEnded,
		Resets:            c.resets,

		SpeedMean: speedMean,
		SpeedP50:  speedP50,
		SpeedP90:  speedP90,
		SpeedMax:  speedMax,

		BoundaryDistMean: distMean,
		BoundaryDistP10:  distP10,

		LegAngle:     s.LegAngle,
		ArmAngle:     s.ArmAngle,
		FingerToSink: s.FingerToSink,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.added = 0
	c.rejected = 0
	c.removed = 0
	c.bounces = 0
	c.dischargesStarted = 0
	c.dischargesEnded = 0
	c.resets = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
