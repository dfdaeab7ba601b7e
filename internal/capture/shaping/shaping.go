// Package shaping holds the post-capture heuristic that decides whether a
// class's traffic was altered by a downstream shaper or policer. A paced
// sender produces near-constant spacing; buffering and bursting raise both
// the interval variance and the share of back-to-back arrivals. The
// thresholds are empirical knobs, not a calibrated measurement.
package shaping

import (
	"math"

	"tsnprobe/internal/capture/stats"
)

// Config tunes the detector. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// StddevRatio flags a class when stddev > StddevRatio * mean.
	StddevRatio float64

	// BurstFraction flags a class when more than this share of the stored
	// intervals fall under BurstThresholdUS.
	BurstFraction float64

	// BurstThresholdUS is the interval, in microseconds, under which an
	// arrival counts as part of a burst.
	BurstThresholdUS uint64
}

// DefaultConfig returns the stock thresholds: 0.3x mean spread, one third
// of intervals under 1 ms.
func DefaultConfig() Config {
	return Config{
		StddevRatio:      0.3,
		BurstFraction:    1.0 / 3.0,
		BurstThresholdUS: 1000,
	}
}

// Verdict is the analysis result for one class.
type Verdict struct {
	MeanUS   float64
	StddevUS float64
	Burst    uint64
	Shaped   bool
}

// Analyze judges one class. The second return is false when the class has
// fewer than two packets and therefore no intervals to judge. The stddev
// and burst ratio are population figures over the retained history, which
// may be a truncated prefix of the full capture.
func (c Config) Analyze(tc stats.TCStats) (Verdict, bool) {
	if tc.Count < 2 {
		return Verdict{}, false
	}

	var v Verdict
	v.MeanUS = tc.AvgIntervalUS()

	var sumSq float64
	for _, iv := range tc.History {
		d := float64(iv) - v.MeanUS
		sumSq += d * d
		if iv < c.BurstThresholdUS {
			v.Burst++
		}
	}
	if n := len(tc.History); n > 0 {
		v.StddevUS = math.Sqrt(sumSq / float64(n))
		burstRatio := float64(v.Burst) / float64(n)
		v.Shaped = v.StddevUS > c.StddevRatio*v.MeanUS || burstRatio > c.BurstFraction
	}
	return v, true
}
