// Package game wires the electron field, spark, discharge controller, limbs and
// telemetry into one steppable simulation.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/travoltage/components"
	"github.com/pthm-cable/travoltage/config"
	"github.com/pthm-cable/travoltage/geometry"
	"github.com/pthm-cable/travoltage/systems"
	"github.com/pthm-cable/travoltage/telemetry"
)

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool    // log window stats and bookmarks via slog
	StatsWindowSec float64 // 0 = use config
	SnapshotDir    string  // save a snapshot on each bookmark when set
	OutputDir      string  // CSV output when set
	Config         *config.Config
	Body           *geometry.Body // nil = default silhouette

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// ElectronView is one electron as seen by a renderer.
type ElectronView struct {
	Entity   ecs.Entity
	ID       uint32
	Mode     components.Mode
	Position r2.Vec // body-local
	Display  r2.Vec // after limb projection
}

// Batch is everything that changed during one Step.
// Adds, removals and resets made between steps are reported by the next Step.
type Batch struct {
	Tick             int32
	Moved            []ElectronView
	Added            []ecs.Entity
	Removed          []ecs.Entity
	DischargeStarted bool
	DischargeEnded   bool
	Reset            bool
}

// Game holds the complete simulation state.
type Game struct {
	cfg     *config.Config
	world   *ecs.World
	rng     *rand.Rand
	rngSeed int64

	body *geometry.Body
	leg  *geometry.Appendage
	arm  *geometry.Arm

	field     *systems.ElectronField
	spark     *systems.SparkPathGenerator
	discharge *systems.DischargeController
	projector *systems.Projector

	// State
	tick         int32
	lastLeg      float64 // leg angle seen by the previous pickup pass
	lastArm      float64
	rubTravel    float64 // leg travel on the carpet not yet converted to electrons
	pending      Batch   // changes made between steps
	limbsChanged bool

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	dischargeTracker *telemetry.DischargeTracker
	outputManager    *telemetry.OutputManager
	logStats         bool
	snapshotDir      string
	statsCallback    func(telemetry.WindowStats)
}

// NewGame creates a game with default options.
func NewGame() *Game {
	return NewGameWithOptions(Options{Seed: 42})
}

// NewGameWithOptions creates a game with the given options.
// Output setup failures are logged and leave CSV output disabled.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	body := opts.Body
	if body == nil {
		body = geometry.DefaultBody()
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))

	limbs := cfg.Limbs
	leg := geometry.NewAppendage(limbs.Leg.Pivot, limbs.Leg.InitialAngle, limbs.Leg.MinAngle, limbs.Leg.MaxAngle)
	arm := geometry.NewArm(limbs.Arm.Pivot, limbs.Arm.Finger, limbs.Arm.InitialAngle, limbs.Arm.MinAngle, limbs.Arm.MaxAngle)

	field := systems.NewElectronField(world, body, rng, cfg.Electron)
	spark := systems.NewSparkPathGenerator(rng, cfg.Spark, cfg.Derived.MaxTurnAngle)
	spark.SetAnchors(arm.FingerPosition(), cfg.Spark.Sink)

	g := &Game{
		cfg:       cfg,
		world:     world,
		rng:       rng,
		rngSeed:   opts.Seed,
		body:      body,
		leg:       leg,
		arm:       arm,
		field:     field,
		spark:     spark,
		discharge: systems.NewDischargeController(field, spark, rng, cfg.Discharge),
		projector: systems.NewProjector(world, leg, arm.Appendage, cfg.Projection),
		lastLeg:   leg.Angle(),
		lastArm:   arm.Angle(),

		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
		statsCallback: opts.StatsCallback,
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Scenario.DT)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10, cfg.Electron.MaxElectrons)
	g.dischargeTracker = telemetry.NewDischargeTracker(cfg.Scenario.DT)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	return g
}

// Step advances the simulation by dt seconds and returns what changed.
func (g *Game) Step(dt float64) Batch {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseLimbs)
	g.updateLimbs()

	g.perfCollector.StartPhase(telemetry.PhasePickup)
	g.updatePickup()
	g.updateTrigger()

	g.perfCollector.StartPhase(telemetry.PhaseFreeMotion)
	moved := g.updateFreeMotion(dt)

	g.perfCollector.StartPhase(telemetry.PhaseDischarge)
	moved = append(moved, g.updateDischarge(dt)...)

	g.perfCollector.StartPhase(telemetry.PhaseProjection)
	g.updateProjection(moved)

	g.tick++
	g.pending.Tick = g.tick

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()

	batch := g.pending
	g.pending = Batch{}
	return batch
}

// SetLegAngle sets the leg angle (clamped to its range) and returns the applied value.
func (g *Game) SetLegAngle(angle float64) float64 { return g.leg.SetAngle(angle) }

// SetArmAngle sets the arm angle (clamped to its range) and returns the applied value.
func (g *Game) SetArmAngle(angle float64) float64 { return g.arm.SetAngle(angle) }

// LegAngle returns the current leg angle.
func (g *Game) LegAngle() float64 { return g.leg.Angle() }

// ArmAngle returns the current arm angle.
func (g *Game) ArmAngle() float64 { return g.arm.Angle() }

// Arm returns the arm model.
func (g *Game) Arm() *geometry.Arm { return g.arm }

// FingerPosition returns the fingertip, the spark source.
func (g *Game) FingerPosition() r2.Vec { return g.arm.FingerPosition() }

// Sink returns the spark sink.
func (g *Game) Sink() r2.Vec { return g.spark.Sink() }

// FingerToSink returns the distance between fingertip and sink.
func (g *Game) FingerToSink() float64 {
	return r2.Norm(r2.Sub(g.spark.Sink(), g.arm.FingerPosition()))
}

// IsDischarging reports whether a discharge is in progress.
func (g *Game) IsDischarging() bool { return g.discharge.IsActive() }

// SparkPath returns the current visible spark path, empty when idle.
func (g *Game) SparkPath() []r2.Vec { return g.spark.CurrentPath() }

// Electrons returns the live electrons in insertion order with display positions.
func (g *Game) Electrons() []ElectronView {
	live := g.field.Electrons()
	out := make([]ElectronView, 0, len(live))
	for _, e := range live {
		if v, ok := g.view(e, false); ok {
			out = append(out, v)
		}
	}
	return out
}

// ElectronCount returns the number of live electrons.
func (g *Game) ElectronCount() int { return g.field.Count() }

// Body returns the body geometry.
func (g *Game) Body() *geometry.Body { return g.body }

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 { return g.tick }

// Seed returns the seed the random source was created with.
func (g *Game) Seed() int64 { return g.rngSeed }

// Config returns the configuration the game was built with.
func (g *Game) Config() *config.Config { return g.cfg }

// PerfStats returns the rolling performance statistics.
func (g *Game) PerfStats() telemetry.PerfStats { return g.perfCollector.Stats() }

// Unload closes output files.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// view builds the renderer view of e. record adds the position to the
// projection history; otherwise the existing history is used.
func (g *Game) view(e ecs.Entity, record bool) (ElectronView, bool) {
	pos, ok := g.field.Position(e)
	if !ok {
		return ElectronView{}, false
	}
	id, _ := g.field.ID(e)
	mode, _ := g.field.Mode(e)

	display := g.projector.Project(e, pos)
	if record {
		display = g.projector.Observe(e, pos)
	}
	return ElectronView{Entity: e, ID: id, Mode: mode, Position: pos, Display: display}, true
}
