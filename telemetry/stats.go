package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Electron counts at window end
	Electrons   int `csv:"electrons"`
	Free        int `csv:"free"`
	Discharging int `csv:"discharging"`

	// Events during window
	Added             int `csv:"added"`
	Rejected          int `csv:"rejected"`
	Removed           int `csv:"removed"`
	Bounces           int `csv:"bounces"`
	DischargesStarted int `csv:"discharges_started"`
	DischargesEnded   int `csv:"discharges_ended"`
	Resets            int `csv:"resets"`

	// Free electron speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// How tightly electrons hug the surface
	BoundaryDistMean float64 `csv:"boundary_dist_mean"`
	BoundaryDistP10  float64 `csv:"boundary_dist_p10"`

	// Limb state at window end
	LegAngle     float64 `csv:"leg_angle"`
	ArmAngle     float64 `csv:"arm_angle"`
	FingerToSink float64 `csv:"finger_to_sink"`
}

// QuantileOf returns the empirical p-quantile of values, 0 for an empty slice.
// values is not modified.
func QuantileOf(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(clampUnit(p), stat.Empirical, sorted, nil)
}

// ComputeDistribution calculates mean, median, 90th percentile and maximum.
// Returns zeros for an empty slice.
func ComputeDistribution(values []float64) (mean, p50, p90, maxVal float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	// Sort for quantiles
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	maxVal = floats.Max(sorted)

	return mean, p50, p90, maxVal
}

func clampUnit(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("electrons", s.Electrons),
		slog.Int("free", s.Free),
		slog.Int("discharging", s.Discharging),
		slog.Int("added", s.Added),
		slog.Int("rejected", s.Rejected),
		slog.Int("removed", s.Removed),
		slog.Int("bounces", s.Bounces),
		slog.Int("discharges_started", s.DischargesStarted),
		slog.Int("discharges_ended", s.DischargesEnded),
		slog.Int("resets", s.Resets),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("boundary_dist_mean", s.BoundaryDistMean),
		slog.Float64("boundary_dist_p10", s.BoundaryDistP10),
		slog.Float64("leg_angle", s.LegAngle),
		slog.Float64("arm_angle", s.ArmAngle),
		slog.Float64("finger_to_sink", s.FingerToSink),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
