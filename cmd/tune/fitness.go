package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/travoltage/config"
	"github.com/pthm-cable/travoltage/game"
	"github.com/pthm-cable/travoltage/telemetry"
)

// Windows with fewer free electrons say little about how they spread.
const (
	qualityWarmupWindows = 1
	qualityMinFree       = 5

	// Returned when a run never had enough free electrons to score.
	unscoredFitness = 1e6
)

// FitnessEvaluator runs headless scenarios and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu             sync.Mutex
	lastCompletion float64 // discharge completion from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 1.0,
	}
}

// LastCompletion returns the discharge completion ratio from the most recent evaluation.
func (fe *FitnessEvaluator) LastCompletion() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastCompletion
}

// runResult holds the results from a single scenario run.
type runResult struct {
	windowStats []telemetry.WindowStats
}

// Evaluate computes fitness for a raw parameter vector (lower = better): the mean
// distance of free electrons to the skin, penalized when discharges fail to finish.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fitness := make([]float64, len(fe.seeds))
	completion := make([]float64, len(fe.seeds))

	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			fitness[idx], completion[idx] = computeFitness(result.windowStats)
		}(i, seed)
	}
	wg.Wait()

	fe.mu.Lock()
	fe.lastCompletion = stat.Mean(completion, nil)
	fe.mu.Unlock()

	return stat.Mean(fitness, nil)
}

// runSimulation executes a single scripted run for maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Recompute()

	result := &runResult{}
	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		StatsWindowSec: fe.statsWindow,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	defer g.Unload()

	s := game.NewScenario(g)
	for g.Tick() < fe.maxTicks {
		s.Step()
	}
	return result
}

// computeFitness scores one run and returns the fitness and discharge completion ratio.
func computeFitness(windows []telemetry.WindowStats) (fitness, completion float64) {
	if len(windows) <= qualityWarmupWindows {
		return unscoredFitness, 0
	}

	var dists []float64
	var started, ended float64
	for _, w := range windows[qualityWarmupWindows:] {
		started += float64(w.DischargesStarted)
		ended += float64(w.DischargesEnded)
		if w.Free < qualityMinFree {
			continue
		}
		dists = append(dists, w.BoundaryDistMean)
	}
	if len(dists) == 0 {
		return unscoredFitness, 0
	}

	completion = 1
	if started > 0 {
		completion = math.Min(ended/started, 1)
	}
	// Penalize runs whose spread drifts between windows
	spread := floats.Max(dists) - floats.Min(dists)
	fitness = (stat.Mean(dists, nil) + 0.1*spread) * (1 + (1 - completion))
	return fitness, completion
}
