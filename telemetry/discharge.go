package telemetry

import "log/slog"

// DischargeRecord summarizes one completed discharge.
type DischargeRecord struct {
	Index       int     `csv:"index"`
	StartTick   int32   `csv:"start_tick"`
	EndTick     int32   `csv:"end_tick"`
	Electrons   int     `csv:"electrons"` // enlisted over the whole discharge
	Drained     int     `csv:"drained"`
	DurationSec float64 `csv:"duration_sec"`
	RouteLength int     `csv:"route_segments"`
	TriggerDist float64 `csv:"trigger_distance"` // finger-to-sink distance when it began
}

// LogValue implements slog.LogValuer for structured logging.
func (r DischargeRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("index", r.Index),
		slog.Int("start_tick", int(r.StartTick)),
		slog.Int("end_tick", int(r.EndTick)),
		slog.Int("electrons", r.Electrons),
		slog.Int("drained", r.Drained),
		slog.Float64("duration_sec", r.DurationSec),
	)
}

// DischargeTracker builds a DischargeRecord for each discharge in progress.
type DischargeTracker struct {
	dt      float64
	count   int
	active  bool
	current DischargeRecord
}

// NewDischargeTracker creates a tracker converting ticks with dt seconds per tick.
func NewDischargeTracker(dt float64) *DischargeTracker {
	return &DischargeTracker{dt: dt}
}

// Begin opens a record. Calling it again while open adds late enlistments.
func (t *DischargeTracker) Begin(tick int32, enlisted, routeSegments int, triggerDist float64) {
	if t.active {
		t.current.Electrons += enlisted
		return
	}
	t.active = true
	t.current = DischargeRecord{
		Index:       t.count,
		StartTick:   tick,
		Electrons:   enlisted,
		RouteLength: routeSegments,
		TriggerDist: triggerDist,
	}
}

// Enlist adds electrons that joined the open discharge after it began.
func (t *DischargeTracker) Enlist(n int) {
	if t.active {
		t.current.Electrons += n
	}
}

// Drain counts electrons removed at the sink.
func (t *DischargeTracker) Drain(n int) {
	if t.active {
		t.current.Drained += n
	}
}

// End closes the open record and returns it. ok is false when nothing was open.
func (t *DischargeTracker) End(tick int32) (DischargeRecord, bool) {
	if !t.active {
		return DischargeRecord{}, false
	}
	r := t.current
	r.EndTick = tick
	r.DurationSec = float64(tick-r.StartTick) * t.dt
	t.active = false
	t.count++
	t.current = DischargeRecord{}
	return r, true
}

// Abort drops the open record without producing it (e.g. on reset).
func (t *DischargeTracker) Abort() {
	t.active = false
	t.current = DischargeRecord{}
}

// Active reports whether a record is open.
func (t *DischargeTracker) Active() bool { return t.active }

// Completed returns the number of records produced so far.
func (t *DischargeTracker) Completed() int { return t.count }
