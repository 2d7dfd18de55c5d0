package simulation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/riskd/internal/domain"
)

func testInputs() Inputs {
	return Inputs{
		MeanDaily: []float64{0.0005, 0.0003},
		Covariance: [][]float64{
			{0.0002, 0.00005},
			{0.00005, 0.0001},
		},
		Weights:        []float64{0.6, 0.4},
		NumSimulations: 500,
		HorizonDays:    60,
		Investment:     100000,
		Confidence:     0.95,
	}
}

func TestRun_OutputShape(t *testing.T) {
	sim := NewSeededSimulator(42, zerolog.Nop())

	out, err := sim.Run(testInputs())
	require.NoError(t, err)

	for _, key := range []string{"p5", "p25", "p50", "p75", "p95"} {
		require.Contains(t, out.PercentilePaths, key)
		assert.Len(t, out.PercentilePaths[key], 61)
		// Every path starts at the investment amount.
		assert.InDelta(t, 100000.0, out.PercentilePaths[key][0], 1e-9)
	}

	assert.LessOrEqual(t, len(out.SampledPaths), 200)
	for _, path := range out.SampledPaths {
		assert.Len(t, path, 61)
		assert.InDelta(t, 100000.0, path[0], 1e-9)
	}

	assert.GreaterOrEqual(t, out.ProbabilityLoss, 0.0)
	assert.LessOrEqual(t, out.ProbabilityLoss, 1.0)
	assert.Greater(t, out.VaR1D, 0.0)
	assert.Greater(t, out.TerminalStats.Max, out.TerminalStats.Min)
	assert.GreaterOrEqual(t, out.TerminalStats.P95, out.TerminalStats.P5)
}

func TestRun_PercentilesOrdered(t *testing.T) {
	sim := NewSeededSimulator(7, zerolog.Nop())

	out, err := sim.Run(testInputs())
	require.NoError(t, err)

	for d := 0; d <= 60; d++ {
		assert.LessOrEqual(t, out.PercentilePaths["p5"][d], out.PercentilePaths["p25"][d])
		assert.LessOrEqual(t, out.PercentilePaths["p25"][d], out.PercentilePaths["p50"][d])
		assert.LessOrEqual(t, out.PercentilePaths["p50"][d], out.PercentilePaths["p75"][d])
		assert.LessOrEqual(t, out.PercentilePaths["p75"][d], out.PercentilePaths["p95"][d])
	}
}

func TestRun_Deterministic(t *testing.T) {
	a, err := NewSeededSimulator(99, zerolog.Nop()).Run(testInputs())
	require.NoError(t, err)
	b, err := NewSeededSimulator(99, zerolog.Nop()).Run(testInputs())
	require.NoError(t, err)

	assert.Equal(t, a.PercentilePaths, b.PercentilePaths)
	assert.Equal(t, a.TerminalStats, b.TerminalStats)
	assert.Equal(t, a.VaR1D, b.VaR1D)
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	one := NewSeededSimulator(5, zerolog.Nop())
	one.workers = 1
	many := NewSeededSimulator(5, zerolog.Nop())
	many.workers = 8

	a, err := one.Run(testInputs())
	require.NoError(t, err)
	b, err := many.Run(testInputs())
	require.NoError(t, err)

	assert.Equal(t, a.TerminalStats, b.TerminalStats)
	assert.Equal(t, a.PercentilePaths, b.PercentilePaths)
}

func TestRun_HigherVolatilityWidensOutcomes(t *testing.T) {
	calm := testInputs()
	calm.MeanDaily = []float64{0, 0}

	wild := calm
	wild.Covariance = [][]float64{
		{0.002, 0.0005},
		{0.0005, 0.001},
	}

	calmOut, err := NewSeededSimulator(11, zerolog.Nop()).Run(calm)
	require.NoError(t, err)
	wildOut, err := NewSeededSimulator(11, zerolog.Nop()).Run(wild)
	require.NoError(t, err)

	assert.Greater(t, wildOut.VaR1D, calmOut.VaR1D)
	assert.Greater(t, wildOut.TerminalStats.Std, calmOut.TerminalStats.Std)
}

func TestRun_NearSingularCovarianceIsRegularized(t *testing.T) {
	in := testInputs()
	// Perfectly correlated assets make the covariance matrix singular;
	// the jitter retry should still produce a factorization.
	in.Covariance = [][]float64{
		{0.0001, 0.0001},
		{0.0001, 0.0001},
	}

	out, err := NewSeededSimulator(3, zerolog.Nop()).Run(in)
	require.NoError(t, err)
	assert.NotEmpty(t, out.SampledPaths)
}

func TestRun_InvalidCovarianceFails(t *testing.T) {
	in := testInputs()
	// Negative variance is not a valid covariance matrix.
	in.Covariance = [][]float64{
		{-0.0001, 0},
		{0, -0.0001},
	}

	_, err := NewSeededSimulator(3, zerolog.Nop()).Run(in)

	var nerr *domain.NumericalError
	require.ErrorAs(t, err, &nerr)
}

func TestRun_InconsistentInputs(t *testing.T) {
	in := testInputs()
	in.Weights = []float64{1.0}

	_, err := NewSeededSimulator(3, zerolog.Nop()).Run(in)

	var ierr *domain.InsufficientDataError
	require.ErrorAs(t, err, &ierr)
}

func TestSamplePaths_Limit(t *testing.T) {
	in := testInputs()
	in.NumSimulations = 300

	out, err := NewSeededSimulator(21, zerolog.Nop()).Run(in)
	require.NoError(t, err)
	assert.Len(t, out.SampledPaths, 200)
}

func TestPercentileOfSorted(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}

	assert.InDelta(t, 1.0, percentileOfSorted(data, 0), 1e-9)
	assert.InDelta(t, 3.0, percentileOfSorted(data, 50), 1e-9)
	assert.InDelta(t, 5.0, percentileOfSorted(data, 100), 1e-9)
	// Linear interpolation between ranks.
	assert.InDelta(t, 1.4, percentileOfSorted(data, 10), 1e-9)
}
