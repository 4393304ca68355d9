package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/travoltage/config"
)

// GenerateSparkPath builds a jittered polyline from source toward sink.
// Each point is placed stepLength from the previous one along the bearing to the
// sink plus a uniform perturbation in [-maxTurn, +maxTurn]. The result always has
// maxPoints points (none when maxPoints <= 0) and starts exactly at source.
// It is not guaranteed to end at sink.
func GenerateSparkPath(rng *rand.Rand, source, sink r2.Vec, maxPoints int, maxTurn, stepLength float64) []r2.Vec {
	if maxPoints <= 0 {
		return nil
	}
	path := make([]r2.Vec, 0, maxPoints)
	path = append(path, source)

	current := source
	for len(path) < maxPoints {
		angle := bearing(current, sink) + (rng.Float64()*2-1)*maxTurn
		current = r2.Add(current, polar(stepLength, angle))
		path = append(path, current)
	}
	return path
}

// SparkPathGenerator owns the visible spark polyline between two anchors.
type SparkPathGenerator struct {
	rng        *rand.Rand
	source     r2.Vec
	sink       r2.Vec
	maxPoints  int
	maxTurn    float64
	stepLength float64

	path []r2.Vec
}

// NewSparkPathGenerator creates a generator anchored at the configured source and sink.
// maxTurn is in radians.
func NewSparkPathGenerator(rng *rand.Rand, cfg config.SparkConfig, maxTurn float64) *SparkPathGenerator {
	if rng == nil {
		panic("systems: NewSparkPathGenerator requires a random source")
	}
	return &SparkPathGenerator{
		rng:        rng,
		source:     cfg.Source,
		sink:       cfg.Sink,
		maxPoints:  cfg.MaxPoints,
		maxTurn:    maxTurn,
		stepLength: cfg.StepLength,
	}
}

// SetAnchors moves the source and sink used by the next regeneration.
func (g *SparkPathGenerator) SetAnchors(source, sink r2.Vec) {
	g.source = source
	g.sink = sink
}

// Source returns the current source anchor.
func (g *SparkPathGenerator) Source() r2.Vec { return g.source }

// Sink returns the current sink anchor.
func (g *SparkPathGenerator) Sink() r2.Vec { return g.sink }

// Regenerate replaces the current path with a fresh one and returns it.
func (g *SparkPathGenerator) Regenerate() []r2.Vec {
	g.path = GenerateSparkPath(g.rng, g.source, g.sink, g.maxPoints, g.maxTurn, g.stepLength)
	return g.path
}

// CurrentPath returns the last generated path, empty when no discharge is showing.
// The returned slice is replaced, not modified, by Regenerate; callers must not modify it.
func (g *SparkPathGenerator) CurrentPath() []r2.Vec { return g.path }

// Clear hides the path.
func (g *SparkPathGenerator) Clear() { g.path = nil }
