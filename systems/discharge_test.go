package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/travoltage/components"
	"github.com/pthm-cable/travoltage/config"
	"github.com/pthm-cable/travoltage/geometry"
)

type dischargeRig struct {
	field      *ElectronField
	spark      *SparkPathGenerator
	controller *DischargeController
}

func newDischargeRig(seed int64) *dischargeRig {
	cfg := config.Cfg()
	rng := rand.New(rand.NewSource(seed))
	field := NewElectronField(ecs.NewWorld(), geometry.DefaultBody(), rng, cfg.Electron)
	spark := NewSparkPathGenerator(rng, cfg.Spark, cfg.Derived.MaxTurnAngle)
	return &dischargeRig{
		field:      field,
		spark:      spark,
		controller: NewDischargeController(field, spark, rng, cfg.Discharge),
	}
}

func TestGenerateSparkPathShape(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	source := r2.Vec{X: 525, Y: 198}
	sink := r2.Vec{X: 545, Y: 258}

	tests := []struct {
		name      string
		maxPoints int
		step      float64
	}{
		{"default", 100, 6},
		{"single point", 1, 6},
		{"short steps", 37, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := GenerateSparkPath(rng, source, sink, tt.maxPoints, math.Pi/3.8, tt.step)
			if len(path) != tt.maxPoints {
				t.Fatalf("len = %d, want %d", len(path), tt.maxPoints)
			}
			if path[0] != source {
				t.Errorf("first point = %v, want %v", path[0], source)
			}
			for i := 1; i < len(path); i++ {
				if d := r2.Norm(r2.Sub(path[i], path[i-1])); math.Abs(d-tt.step) > 1e-9 {
					t.Errorf("segment %d length = %v, want %v", i, d, tt.step)
				}
			}
		})
	}

	if got := GenerateSparkPath(rng, source, sink, 0, 1, 6); len(got) != 0 {
		t.Errorf("maxPoints 0 returned %d points", len(got))
	}
}

func TestSparkPathHeadsTowardSink(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	source := r2.Vec{X: 0, Y: 0}
	sink := r2.Vec{X: 300, Y: 0}

	// With zero jitter the path is a straight line toward the sink
	path := GenerateSparkPath(rng, source, sink, 11, 0, 10)
	last := path[len(path)-1]
	if math.Abs(last.X-100) > 1e-9 || math.Abs(last.Y) > 1e-9 {
		t.Errorf("last point = %v, want (100,0)", last)
	}
}

func TestNextSegment(t *testing.T) {
	route := geometry.Polyline([]r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 30, Y: 0}}, false)

	tests := []struct {
		name         string
		pos          r2.Vec
		current      int
		wantIdx      int
		wantTerminal bool
	}{
		{"initial nearest", r2.Vec{X: 11, Y: 1}, -1, 1, false},
		{"advance", r2.Vec{X: 10, Y: 0}, 0, 1, false},
		{"skip ahead to nearest later", r2.Vec{X: 21, Y: 0}, 0, 2, false},
		{"end of route repeats", r2.Vec{X: 30, Y: 0}, 2, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, terminal := nextSegment(route, tt.pos, tt.current)
			if idx != tt.wantIdx || terminal != tt.wantTerminal {
				t.Errorf("nextSegment = (%d,%v), want (%d,%v)", idx, terminal, tt.wantIdx, tt.wantTerminal)
			}
		})
	}

	if idx, terminal := nextSegment(nil, r2.Vec{}, -1); idx != -1 || !terminal {
		t.Errorf("empty route = (%d,%v), want (-1,true)", idx, terminal)
	}
}

func TestDischargeCompletes(t *testing.T) {
	rig := newDischargeRig(11)
	for i := 0; i < 25; i++ {
		rig.field.Add(r2.Vec{X: 428 + float64(i%5), Y: 450 + float64(i/5)})
	}
	for i := 0; i < 30; i++ {
		rig.field.Step(1.0 / 60.0)
	}

	if n := rig.controller.BeginDischarge(); n != 25 {
		t.Fatalf("BeginDischarge switched %d, want 25", n)
	}
	if !rig.controller.IsActive() {
		t.Fatal("controller not active after BeginDischarge")
	}
	for _, e := range rig.field.Electrons() {
		if mode, _ := rig.field.Mode(e); mode != components.ModeDischarging {
			t.Fatalf("electron %v mode = %v, want discharging", e, mode)
		}
	}
	if len(rig.spark.CurrentPath()) == 0 {
		t.Error("spark path empty during discharge")
	}

	const maxTicks = 20000
	ended := false
	for tick := 0; tick < maxTicks && !ended; tick++ {
		report := rig.controller.Step(1.0 / 60.0)
		ended = report.Ended
		if rig.controller.IsActive() != (rig.field.Count() > 0) {
			t.Fatalf("tick %d: active=%v with %d electrons", tick, rig.controller.IsActive(), rig.field.Count())
		}
	}

	if !ended {
		t.Fatalf("discharge did not finish within %d ticks, %d electrons left", maxTicks, rig.field.Count())
	}
	if rig.field.Count() != 0 {
		t.Errorf("count after discharge = %d, want 0", rig.field.Count())
	}
	if len(rig.spark.CurrentPath()) != 0 {
		t.Error("spark path still showing after discharge")
	}
}

func TestBeginDischargeWithoutElectrons(t *testing.T) {
	rig := newDischargeRig(1)
	if n := rig.controller.BeginDischarge(); n != 0 {
		t.Errorf("switched %d electrons, want 0", n)
	}
	if rig.controller.IsActive() {
		t.Error("controller active with no electrons")
	}
}

func TestBeginDischargeIdempotent(t *testing.T) {
	rig := newDischargeRig(2)
	rig.field.Add(r2.Vec{X: 430, Y: 452})
	rig.field.Add(r2.Vec{X: 432, Y: 452})

	if n := rig.controller.BeginDischarge(); n != 2 {
		t.Fatalf("first BeginDischarge = %d, want 2", n)
	}
	route := rig.controller.Route()

	late, _ := rig.field.Add(r2.Vec{X: 431, Y: 455})
	if n := rig.controller.BeginDischarge(); n != 1 {
		t.Errorf("second BeginDischarge = %d, want 1 (only the new free electron)", n)
	}
	if mode, _ := rig.field.Mode(late); mode != components.ModeDischarging {
		t.Errorf("late electron mode = %v", mode)
	}
	if len(rig.controller.Route()) != len(route) {
		t.Error("route replaced by repeated BeginDischarge")
	}
}

func TestDischargeResetIdempotent(t *testing.T) {
	rig := newDischargeRig(4)
	for i := 0; i < 5; i++ {
		rig.field.Add(r2.Vec{X: 430, Y: 450 + float64(i)})
	}
	rig.controller.BeginDischarge()
	rig.controller.Step(1.0 / 60.0)

	removed := rig.controller.Reset()
	if len(removed) != 5 {
		t.Errorf("first reset removed %d, want 5", len(removed))
	}
	first := struct {
		count  int
		active bool
		path   int
	}{rig.field.Count(), rig.controller.IsActive(), len(rig.spark.CurrentPath())}

	if removed := rig.controller.Reset(); len(removed) != 0 {
		t.Errorf("second reset removed %d, want 0", len(removed))
	}
	second := struct {
		count  int
		active bool
		path   int
	}{rig.field.Count(), rig.controller.IsActive(), len(rig.spark.CurrentPath())}

	if first != second || first.count != 0 || first.active {
		t.Errorf("reset states differ: %+v vs %+v", first, second)
	}
}

func TestDischargeStepIdleAndDegenerateDT(t *testing.T) {
	rig := newDischargeRig(6)
	e, _ := rig.field.Add(r2.Vec{X: 430, Y: 452})

	if report := rig.controller.Step(1.0 / 60.0); len(report.Moved) != 0 || report.Ended {
		t.Errorf("idle step reported %+v", report)
	}

	rig.controller.BeginDischarge()
	before, _ := rig.field.Position(e)
	for _, dt := range []float64{0, -1, math.NaN()} {
		rig.controller.Step(dt)
	}
	after, _ := rig.field.Position(e)
	if before != after {
		t.Errorf("degenerate dt moved electron %v -> %v", before, after)
	}
	if !rig.controller.IsActive() {
		t.Error("degenerate dt ended the discharge")
	}
}

func TestDischargeEmptyRouteRemovesImmediately(t *testing.T) {
	cfg := config.Cfg()
	rng := rand.New(rand.NewSource(1))
	field := NewElectronField(ecs.NewWorld(), squareBody(100), rng, cfg.Electron)
	sparkCfg := cfg.Spark
	sparkCfg.MaxPoints = 1
	spark := NewSparkPathGenerator(rng, sparkCfg, 0)
	controller := NewDischargeController(field, spark, rng, cfg.Discharge)

	field.Add(r2.Vec{X: 50, Y: 50})
	controller.BeginDischarge()
	report := controller.Step(1.0 / 60.0)

	if !report.Ended || len(report.Removed) != 1 {
		t.Errorf("report = %+v, want ended with one removal", report)
	}
	if controller.IsActive() {
		t.Error("controller still active")
	}
}

func TestBuildRoute(t *testing.T) {
	lines := geometry.Polyline([]r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}}, false)
	path := []r2.Vec{{X: 20, Y: 0}, {X: 26, Y: 0}, {X: 32, Y: 0}}

	route := buildRoute(lines, path)
	if len(route) != 4 {
		t.Fatalf("route segments = %d, want 4", len(route))
	}
	if route[1].P0 != (r2.Vec{X: 10, Y: 0}) || route[1].P1 != path[0] {
		t.Errorf("bridge = %v -> %v", route[1].P0, route[1].P1)
	}
	for i := 1; i < len(route); i++ {
		if route[i].P0 != route[i-1].P1 {
			t.Errorf("route broken between %d and %d", i-1, i)
		}
	}
}
