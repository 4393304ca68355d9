package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/travoltage/components"
	"github.com/pthm-cable/travoltage/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sample())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		logOutputError("telemetry", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		logOutputError("perf", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			logOutputError("bookmark", err)
		}
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sample captures the electron and limb state for the stats window.
func (g *Game) sample() telemetry.Sample {
	s := telemetry.Sample{
		LegAngle:     g.leg.Angle(),
		ArmAngle:     g.arm.Angle(),
		FingerToSink: g.FingerToSink(),
	}

	for _, e := range g.field.Electrons() {
		mode, ok := g.field.Mode(e)
		if !ok {
			continue
		}
		if mode == components.ModeDischarging {
			s.Discharging++
			continue
		}
		s.Free++
		pos, _ := g.field.Position(e)
		vel, _ := g.field.Velocity(e)
		s.Speeds = append(s.Speeds, r2.Norm(vel))
		s.BoundaryDistances = append(s.BoundaryDistances, g.body.DistanceToBoundary(pos))
	}
	return s
}

// Snapshot returns the current state.
func (g *Game) Snapshot() *telemetry.Snapshot {
	return g.createSnapshot(nil)
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(g.createSnapshot(bookmark), g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RNGSeed:     g.rngSeed,
		Tick:        g.tick,
		LegAngle:    g.leg.Angle(),
		ArmAngle:    g.arm.Angle(),
		Discharging: g.discharge.IsActive(),
		Bookmark:    bookmark,
	}

	for _, v := range g.Electrons() {
		vel, _ := g.field.Velocity(v.Entity)
		charge, _ := g.field.Charge(v.Entity)
		snapshot.Electrons = append(snapshot.Electrons, telemetry.ElectronState{
			ID:       v.ID,
			Mode:     v.Mode.String(),
			Born:     charge.Born,
			X:        v.Position.X,
			Y:        v.Position.Y,
			VelX:     vel.X,
			VelY:     vel.Y,
			DisplayX: v.Display.X,
			DisplayY: v.Display.Y,
		})
	}
	return snapshot
}
