package shaping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsnprobe/internal/capture/stats"
)

// classFromIntervals builds a TCStats as the aggregator would for a run of
// consecutive intervals (microseconds).
func classFromIntervals(intervals []uint64) stats.TCStats {
	tc := stats.TCStats{Count: uint64(len(intervals)) + 1}
	for _, iv := range intervals {
		tc.TotalIntervalUS += iv
		tc.History = append(tc.History, iv)
	}
	return tc
}

func repeat(iv uint64, n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = iv
	}
	return out
}

func TestAnalyzeUniformPacingUnshaped(t *testing.T) {
	// 10 ms spacing, perfectly even: zero spread, zero bursts.
	tc := classFromIntervals(repeat(10000, 100))

	v, ok := DefaultConfig().Analyze(tc)
	require.True(t, ok)
	assert.InDelta(t, 10000, v.MeanUS, 1e-9)
	assert.Zero(t, v.StddevUS)
	assert.Zero(t, v.Burst)
	assert.False(t, v.Shaped)
}

func TestAnalyzeHighVarianceShaped(t *testing.T) {
	// Alternating tiny/huge spacing around a 10 ms mean: stddev far above
	// 0.3x the mean.
	var intervals []uint64
	for i := 0; i < 50; i++ {
		intervals = append(intervals, 2000, 18000)
	}
	tc := classFromIntervals(intervals)

	v, ok := DefaultConfig().Analyze(tc)
	require.True(t, ok)
	assert.InDelta(t, 10000, v.MeanUS, 1e-9)
	assert.Greater(t, v.StddevUS, 0.3*v.MeanUS)
	assert.True(t, v.Shaped)
}

func TestAnalyzeBurstRatioShaped(t *testing.T) {
	// Even 500 us spacing: zero variance, but every interval is under the
	// 1 ms burst threshold.
	tc := classFromIntervals(repeat(500, 60))

	v, ok := DefaultConfig().Analyze(tc)
	require.True(t, ok)
	assert.Zero(t, v.StddevUS)
	assert.Equal(t, uint64(60), v.Burst)
	assert.True(t, v.Shaped)
}

func TestAnalyzeBurstBelowFractionUnshaped(t *testing.T) {
	// A quarter of the intervals burst; below the one-third threshold, and
	// the spread stays modest.
	intervals := append(repeat(900, 25), repeat(1050, 75)...)
	tc := classFromIntervals(intervals)

	v, ok := DefaultConfig().Analyze(tc)
	require.True(t, ok)
	assert.Equal(t, uint64(25), v.Burst)
	assert.False(t, v.Shaped)
}

func TestAnalyzeNeedsTwoPackets(t *testing.T) {
	_, ok := DefaultConfig().Analyze(stats.TCStats{Count: 1})
	assert.False(t, ok)
	_, ok = DefaultConfig().Analyze(stats.TCStats{})
	assert.False(t, ok)
}

func TestAnalyzeCustomThresholds(t *testing.T) {
	// Same data, stricter ratio: flips the verdict.
	intervals := append(repeat(9000, 50), repeat(11000, 50)...)
	tc := classFromIntervals(intervals)

	v, ok := DefaultConfig().Analyze(tc)
	require.True(t, ok)
	assert.False(t, v.Shaped, "10% spread is fine at the stock 0.3 ratio")

	strict := DefaultConfig()
	strict.StddevRatio = 0.05
	v, ok = strict.Analyze(tc)
	require.True(t, ok)
	assert.True(t, v.Shaped)
}
