package game

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/travoltage/components"
	"github.com/pthm-cable/travoltage/config"
	"github.com/pthm-cable/travoltage/telemetry"
)

func init() {
	config.MustInit("")
}

const testDT = 1.0 / 60.0

func newTestGame(t *testing.T, mutate func(*config.Config)) *Game {
	t.Helper()
	cfg := config.Cfg().Clone()
	if mutate != nil {
		mutate(cfg)
		cfg.Recompute()
	}
	g := NewGameWithOptions(Options{Seed: 7, Config: cfg})
	t.Cleanup(g.Unload)
	return g
}

func containsEntity(list []ecs.Entity, e ecs.Entity) bool {
	for _, x := range list {
		if x == e {
			return true
		}
	}
	return false
}

func TestAddElectronReportedInNextBatch(t *testing.T) {
	g := newTestGame(t, nil)

	e, ok := g.AddElectron(r2.Vec{X: 430, Y: 440})
	if !ok {
		t.Fatal("AddElectron failed")
	}

	batch := g.Step(testDT)
	if !containsEntity(batch.Added, e) {
		t.Error("added electron missing from batch")
	}
	if len(batch.Moved) != 1 || batch.Moved[0].Entity != e {
		t.Fatalf("moved = %+v, want the new electron", batch.Moved)
	}
	if batch.Moved[0].Mode != components.ModeFree {
		t.Errorf("mode = %v, want free", batch.Moved[0].Mode)
	}
	if batch.Tick != 1 || g.Tick() != 1 {
		t.Errorf("tick = %d/%d, want 1", batch.Tick, g.Tick())
	}

	// Reported once
	if next := g.Step(testDT); len(next.Added) != 0 {
		t.Errorf("added reported twice: %v", next.Added)
	}
}

func TestAddElectronRespectsCap(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) { c.Electron.MaxElectrons = 3 })

	for i := 0; i < 3; i++ {
		if _, ok := g.AddElectron(r2.Vec{X: 430, Y: 440 - float64(i)*10}); !ok {
			t.Fatalf("add %d rejected below cap", i)
		}
	}
	if e, ok := g.AddElectron(r2.Vec{X: 430, Y: 400}); ok || !e.IsZero() {
		t.Error("add above cap should return the zero entity and false")
	}
	if g.ElectronCount() != 3 {
		t.Errorf("count = %d, want 3", g.ElectronCount())
	}
}

func TestRubPickup(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  int
	}{
		{"on carpet", 0.5, 2}, // 0.5 rad of travel at 0.2 per electron
		{"off carpet", 1.0, 0},
		{"no motion", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, nil)
			g.SetLegAngle(tt.angle)
			batch := g.Step(testDT)

			if g.ElectronCount() != tt.want {
				t.Errorf("count = %d, want %d", g.ElectronCount(), tt.want)
			}
			if len(batch.Added) != tt.want {
				t.Errorf("batch added = %d, want %d", len(batch.Added), tt.want)
			}
		})
	}
}

func TestRubTravelAccumulates(t *testing.T) {
	g := newTestGame(t, nil)

	// Small swings add up across ticks
	angles := []float64{0.15, 0, 0.15, 0, 0.15}
	for _, a := range angles {
		g.SetLegAngle(a)
		g.Step(testDT)
	}
	// 0.75 rad of travel
	if g.ElectronCount() != 3 {
		t.Errorf("count = %d, want 3", g.ElectronCount())
	}
}

func TestDischargeThreshold(t *testing.T) {
	g := newTestGame(t, nil)

	tests := []struct {
		n    int
		want float64
	}{
		{0, 15},
		{1, 15},
		{30, 30},
		{100, 80},
	}
	for _, tt := range tests {
		if got := g.dischargeThreshold(tt.n); got != tt.want {
			t.Errorf("dischargeThreshold(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestDischargeTriggeredByReach(t *testing.T) {
	g := newTestGame(t, nil)

	var added []ecs.Entity
	for i := 0; i < 5; i++ {
		e, _ := g.AddElectron(r2.Vec{X: 430 + float64(i)*5, Y: 440})
		added = append(added, e)
	}

	// Far from the sink: nothing happens
	if batch := g.Step(testDT); batch.DischargeStarted || g.IsDischarging() {
		t.Fatal("discharge started with the arm at rest")
	}

	g.SetArmAngle(g.Arm().AngleToward(g.Sink()))
	if d := g.FingerToSink(); d > 15 {
		t.Fatalf("finger-to-sink = %v at aim, want <= 15", d)
	}

	batch := g.Step(testDT)
	if !batch.DischargeStarted || !g.IsDischarging() {
		t.Fatal("expected discharge to start once the finger reached the sink")
	}
	if len(g.SparkPath()) == 0 {
		t.Error("expected a spark path while discharging")
	}

	var removed []ecs.Entity
	ended := false
	for i := 0; i < 20000 && !ended; i++ {
		b := g.Step(testDT)
		removed = append(removed, b.Removed...)
		ended = b.DischargeEnded
		if g.IsDischarging() != (g.ElectronCount() > 0) {
			t.Fatalf("tick %d: discharging = %v with %d electrons", i, g.IsDischarging(), g.ElectronCount())
		}
	}

	if !ended {
		t.Fatal("discharge did not finish")
	}
	if len(removed) != len(added) {
		t.Errorf("removed %d electrons, want %d", len(removed), len(added))
	}
	for _, e := range added {
		if !containsEntity(removed, e) {
			t.Errorf("electron %v never removed", e)
		}
	}
	if len(g.SparkPath()) != 0 {
		t.Error("spark path should clear when the discharge ends")
	}
}

func TestBeginDischargeWithoutElectrons(t *testing.T) {
	g := newTestGame(t, nil)

	if n := g.BeginDischarge(); n != 0 {
		t.Errorf("BeginDischarge = %d, want 0", n)
	}
	if g.IsDischarging() {
		t.Error("should stay idle with no electrons")
	}
	if batch := g.Step(testDT); batch.DischargeStarted {
		t.Error("no discharge should be reported")
	}
}

func TestReset(t *testing.T) {
	g := newTestGame(t, nil)

	for i := 0; i < 4; i++ {
		g.AddElectron(r2.Vec{X: 430, Y: 440 - float64(i)*10})
	}
	g.Step(testDT)
	g.BeginDischarge()
	g.Reset()

	if g.IsDischarging() || g.ElectronCount() != 0 {
		t.Fatalf("after reset: discharging = %v count = %d", g.IsDischarging(), g.ElectronCount())
	}

	batch := g.Step(testDT)
	if !batch.Reset {
		t.Error("expected reset flag")
	}
	if len(batch.Removed) != 4 {
		t.Errorf("removed = %d, want 4", len(batch.Removed))
	}
	if batch.DischargeEnded {
		t.Error("reset should not report a discharge end")
	}

	// Safe to repeat
	g.Reset()
	if batch := g.Step(testDT); !batch.Reset || len(batch.Removed) != 0 {
		t.Errorf("second reset batch = %+v", batch)
	}
}

func TestLimbRotationMovesDisplay(t *testing.T) {
	g := newTestGame(t, nil)

	e, _ := g.AddElectron(r2.Vec{X: 430, Y: 452}) // inside the leg region
	g.Step(0)

	// Off the carpet so no pickup happens
	angle := g.SetLegAngle(0.9)
	batch := g.Step(0)

	var view *ElectronView
	for i := range batch.Moved {
		if batch.Moved[i].Entity == e {
			view = &batch.Moved[i]
		}
	}
	if view == nil {
		t.Fatal("limb rotation should report the electron as moved")
	}

	pivot := g.Config().Limbs.Leg.Pivot
	want := r2.Rotate(view.Position, angle, pivot)
	if math.Abs(view.Display.X-want.X) > 1e-9 || math.Abs(view.Display.Y-want.Y) > 1e-9 {
		t.Errorf("display = %v, want %v", view.Display, want)
	}
	if view.Position != (r2.Vec{X: 430, Y: 452}) {
		t.Errorf("body-local position changed with dt=0: %v", view.Position)
	}

	// Nothing moves when neither limbs nor electrons change
	if batch := g.Step(0); len(batch.Moved) != 0 {
		t.Errorf("moved = %d, want 0", len(batch.Moved))
	}
}

func TestStatsCallbackAndOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var windows []telemetry.WindowStats

	g := NewGameWithOptions(Options{
		Seed:           3,
		StatsWindowSec: 0.5,
		OutputDir:      dir,
		StatsCallback:  func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	g.AddElectron(r2.Vec{X: 430, Y: 440})
	g.AddElectron(r2.Vec{X: 440, Y: 440})
	for i := 0; i < 100; i++ {
		g.Step(testDT)
	}
	g.Unload()

	if len(windows) != 3 {
		t.Fatalf("windows = %d, want 3", len(windows))
	}
	if windows[0].Added != 2 || windows[0].Electrons != 2 || windows[0].Free != 2 {
		t.Errorf("first window = %+v", windows[0])
	}
	if windows[1].Added != 0 {
		t.Errorf("second window added = %d, want 0", windows[1].Added)
	}

	for _, name := range []string{"telemetry.csv", "perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestSnapshot(t *testing.T) {
	g := newTestGame(t, nil)
	g.AddElectron(r2.Vec{X: 430, Y: 440})
	g.AddElectron(r2.Vec{X: 440, Y: 440})
	g.Step(testDT)

	s := g.Snapshot()
	if s.Version != telemetry.SnapshotVersion || s.RNGSeed != 7 || s.Tick != 1 {
		t.Errorf("header = %+v", s)
	}
	if len(s.Electrons) != 2 {
		t.Fatalf("electrons = %d, want 2", len(s.Electrons))
	}
	if s.Electrons[0].ID != 0 || s.Electrons[1].ID != 1 || s.Electrons[0].Mode != "free" {
		t.Errorf("electrons = %+v", s.Electrons)
	}
}

func TestApproach(t *testing.T) {
	tests := []struct {
		cur, target, step, want float64
	}{
		{0, 1, 0.25, 0.25},
		{0, -1, 0.25, -0.25},
		{0.9, 1, 0.25, 1},
		{0, 1, 0, 0},
	}
	for _, tt := range tests {
		if got := approach(tt.cur, tt.target, tt.step); got != tt.want {
			t.Errorf("approach(%v, %v, %v) = %v, want %v", tt.cur, tt.target, tt.step, got, tt.want)
		}
	}
}
