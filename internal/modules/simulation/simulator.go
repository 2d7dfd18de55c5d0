package simulation

import (
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/quantfolio/riskd/internal/domain"
	"github.com/quantfolio/riskd/pkg/formulas"
)

// covRegularizer is added to the covariance diagonal when the first
// Cholesky factorization fails numerically.
const covRegularizer = 1e-10

// Simulator generates correlated Monte Carlo price paths via Cholesky
// factorization of the asset covariance matrix.
//
// A non-zero seed makes every run fully reproducible: path i always draws
// from a generator seeded with seed+i, independent of worker count. Seed 0
// selects entropy-based seeding for production use.
type Simulator struct {
	seed    int64
	workers int
	log     zerolog.Logger
}

// NewSimulator creates a simulator with entropy-based seeding.
func NewSimulator(log zerolog.Logger) *Simulator {
	return &Simulator{
		workers: runtime.NumCPU(),
		log:     log.With().Str("module", "simulation").Logger(),
	}
}

// NewSeededSimulator creates a deterministic simulator for tests.
func NewSeededSimulator(seed int64, log zerolog.Logger) *Simulator {
	s := NewSimulator(log)
	s.seed = seed
	return s
}

// Inputs are the estimated market parameters and run settings for one
// simulation request. MeanDaily and Covariance are daily (not annualized)
// and ordered consistently with Weights.
type Inputs struct {
	MeanDaily      []float64
	Covariance     [][]float64
	Weights        []float64
	NumSimulations int
	HorizonDays    int
	Investment     float64
	Confidence     float64
}

// RunOutput is the aggregated outcome of a simulation run.
type RunOutput struct {
	PercentilePaths map[string][]float64
	TerminalStats   TerminalStats
	VaR1D           float64
	ProbabilityLoss float64
	SampledPaths    [][]float64
}

// Run executes the full correlated Monte Carlo simulation.
//
// Each path draws a horizonDays×nAssets matrix of standard normals,
// transforms it by the Cholesky factor and the mean vector into correlated
// daily asset returns, and compounds the weighted portfolio return into a
// wealth path starting at the investment amount.
func (s *Simulator) Run(in Inputs) (*RunOutput, error) {
	nAssets := len(in.Weights)
	if nAssets == 0 || len(in.MeanDaily) != nAssets || len(in.Covariance) != nAssets {
		return nil, domain.NewInsufficientDataError("inconsistent simulation inputs: %d weights, %d means, %d covariance rows",
			len(in.Weights), len(in.MeanDaily), len(in.Covariance))
	}

	lower, err := s.factorize(in.Covariance)
	if err != nil {
		return nil, err
	}

	// Collapse the per-asset transform to portfolio level: the weighted sum
	// of correlated asset returns equals w·μ + (Lᵀw)·Z for iid normal Z.
	meanPort := 0.0
	for j, w := range in.Weights {
		meanPort += w * in.MeanDaily[j]
	}
	loadings := make([]float64, nAssets)
	for k := 0; k < nAssets; k++ {
		for j := 0; j < nAssets; j++ {
			loadings[k] += in.Weights[j] * lower.At(j, k)
		}
	}

	baseSeed := s.seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}

	start := time.Now()
	paths := make([][]float64, in.NumSimulations)
	dailyReturns := make([][]float64, in.NumSimulations)

	var wg sync.WaitGroup
	chunk := (in.NumSimulations + s.workers - 1) / s.workers
	for w := 0; w < s.workers; w++ {
		lo, hi := w*chunk, (w+1)*chunk
		if hi > in.NumSimulations {
			hi = in.NumSimulations
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				rng := rand.New(rand.NewSource(baseSeed + int64(i)))
				paths[i], dailyReturns[i] = simulatePath(rng, meanPort, loadings, in.HorizonDays, in.Investment)
			}
		}(lo, hi)
	}
	wg.Wait()

	out := s.aggregate(in, paths, dailyReturns, baseSeed)

	s.log.Info().
		Int("num_simulations", in.NumSimulations).
		Int("horizon_days", in.HorizonDays).
		Int("num_assets", nAssets).
		Dur("elapsed", time.Since(start)).
		Msg("Monte Carlo simulation complete")

	return out, nil
}

// factorize computes the lower Cholesky factor of the covariance matrix,
// retrying once with a small diagonal regularizer before giving up.
func (s *Simulator) factorize(cov [][]float64) (*mat.TriDense, error) {
	n := len(cov)
	flat := make([]float64, 0, n*n)
	for i := range cov {
		if len(cov[i]) != n {
			return nil, domain.NewNumericalError("covariance matrix is not square")
		}
		flat = append(flat, cov[i]...)
	}

	var chol mat.Cholesky
	if chol.Factorize(mat.NewSymDense(n, flat)) {
		var lower mat.TriDense
		chol.LTo(&lower)
		return &lower, nil
	}

	s.log.Warn().Msg("Covariance matrix not positive-definite, retrying with regularizer")
	for i := 0; i < n; i++ {
		flat[i*n+i] += covRegularizer
	}
	if chol.Factorize(mat.NewSymDense(n, flat)) {
		var lower mat.TriDense
		chol.LTo(&lower)
		return &lower, nil
	}

	return nil, domain.NewNumericalError("covariance matrix is not positive-definite even after regularization")
}

// simulatePath builds one cumulative wealth path and its daily portfolio
// returns. The path has horizonDays+1 entries with path[0] = investment.
func simulatePath(rng *rand.Rand, meanPort float64, loadings []float64, horizonDays int, investment float64) ([]float64, []float64) {
	path := make([]float64, horizonDays+1)
	rets := make([]float64, horizonDays)
	path[0] = investment

	wealth := investment
	for d := 0; d < horizonDays; d++ {
		r := meanPort
		for k := range loadings {
			r += loadings[k] * rng.NormFloat64()
		}
		rets[d] = r
		wealth *= 1 + r
		path[d+1] = wealth
	}

	return path, rets
}

func (s *Simulator) aggregate(in Inputs, paths, dailyReturns [][]float64, baseSeed int64) *RunOutput {
	numDays := in.HorizonDays
	percentiles := []float64{5, 25, 50, 75, 95}

	// Percentile fan across paths per day index.
	percentilePaths := make(map[string][]float64, len(percentiles))
	for _, p := range percentiles {
		percentilePaths[pctKey(p)] = make([]float64, numDays+1)
	}
	column := make([]float64, len(paths))
	for d := 0; d <= numDays; d++ {
		for i := range paths {
			column[i] = paths[i][d]
		}
		sort.Float64s(column)
		for _, p := range percentiles {
			percentilePaths[pctKey(p)][d] = percentileOfSorted(column, p)
		}
	}

	// Terminal value distribution.
	terminal := make([]float64, len(paths))
	losses := 0
	for i := range paths {
		terminal[i] = paths[i][numDays]
		if terminal[i] < in.Investment {
			losses++
		}
	}
	sort.Float64s(terminal)
	stats := TerminalStats{
		Mean:   formulas.Mean(terminal),
		Median: percentileOfSorted(terminal, 50),
		Std:    populationStd(terminal),
		Min:    terminal[0],
		Max:    terminal[len(terminal)-1],
		P5:     percentileOfSorted(terminal, 5),
		P25:    percentileOfSorted(terminal, 25),
		P75:    percentileOfSorted(terminal, 75),
		P95:    percentileOfSorted(terminal, 95),
	}

	// Simulation VaR over the flattened daily portfolio returns.
	flat := make([]float64, 0, len(paths)*numDays)
	for i := range dailyReturns {
		flat = append(flat, dailyReturns[i]...)
	}
	sort.Float64s(flat)
	var1d := -percentileOfSorted(flat, (1-in.Confidence)*100)

	return &RunOutput{
		PercentilePaths: percentilePaths,
		TerminalStats:   stats,
		VaR1D:           var1d,
		ProbabilityLoss: float64(losses) / float64(len(paths)),
		SampledPaths:    samplePaths(paths, rand.New(rand.NewSource(baseSeed))),
	}
}

// samplePaths returns at most SampledPathLimit paths, uniformly sampled
// without replacement, to bound response size for charting.
func samplePaths(paths [][]float64, rng *rand.Rand) [][]float64 {
	limit := sampledPathLimit
	if len(paths) <= limit {
		return paths
	}

	indices := rng.Perm(len(paths))[:limit]
	sort.Ints(indices)
	sampled := make([][]float64, limit)
	for i, idx := range indices {
		sampled[i] = paths[idx]
	}
	return sampled
}

// percentileOfSorted mirrors formulas.Percentile but assumes data is
// already sorted, avoiding repeated copies on large columns.
func percentileOfSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// populationStd is the uncorrected standard deviation, matching how the
// terminal-value spread is reported.
func populationStd(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean := formulas.Mean(data)
	sum := 0.0
	for _, v := range data {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(data)))
}

func pctKey(p float64) string {
	switch p {
	case 5:
		return "p5"
	case 25:
		return "p25"
	case 50:
		return "p50"
	case 75:
		return "p75"
	default:
		return "p95"
	}
}
