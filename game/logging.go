package game

import (
	"log/slog"

	"github.com/pthm-cable/travoltage/telemetry"
)

func logDischargeStarted(tick int32, electrons int, dist float64) {
	slog.Debug("discharge started",
		"tick", tick,
		"electrons", electrons,
		"finger_to_sink", dist,
	)
}

func logDischargeEnded(rec telemetry.DischargeRecord) {
	slog.Debug("discharge ended", "discharge", rec)
}

func logReset(tick int32, cleared int) {
	slog.Debug("reset", "tick", tick, "cleared", cleared)
}

func logOutputError(kind string, err error) {
	slog.Error("failed to write "+kind, "error", err)
}
