// Package stats implements an online moment accumulator (count plus the
// first four central moments) that two independently computed accumulators
// can fuse via Pébay/Terriberry's pairwise combination without revisiting
// the underlying samples.
package stats

import "math"

// DistributionMetrics is the reported shape of a distribution derived from
// an OnlineStats accumulator.
type DistributionMetrics struct {
	Mean        float64
	Variance    float64
	StdDev      float64
	Skewness    float64
	Kurtosis    float64
	SampleCount uint64
}

// OnlineStats accumulates (n, mean, m2, m3, m4) — the count and first four
// central moments — in a form that supports both exact one-pass creation and
// pairwise combination of two independently accumulated instances.
type OnlineStats struct {
	n  uint64
	m1 float64 // mean
	m2 float64
	m3 float64
	m4 float64
}

// New returns an empty accumulator.
func New() OnlineStats {
	return OnlineStats{}
}

// Create computes exact central moments over values in one pass.
func Create(values []float64) OnlineStats {
	n := uint64(len(values))
	if n == 0 {
		return OnlineStats{}
	}

	var sum float64
	for _, x := range values {
		sum += x
	}
	mean := sum / float64(n)

	var m2, m3, m4 float64
	for _, x := range values {
		delta := x - mean
		delta2 := delta * delta
		m2 += delta2
		m3 += delta2 * delta
		m4 += delta2 * delta2
	}

	return OnlineStats{n: n, m1: mean, m2: m2, m3: m3, m4: m4}
}

// Add folds one new sample into s, implemented as the degenerate case of
// Combine against a singleton accumulator.
func (s OnlineStats) Add(x float64) OnlineStats {
	return Combine(s, OnlineStats{n: 1, m1: x})
}

// Combine fuses two independently accumulated instances using Pébay and
// Terriberry's batch pairwise update for higher-order central moments.
func Combine(a, b OnlineStats) OnlineStats {
	if a.n == 0 {
		return b
	}
	if b.n == 0 {
		return a
	}

	delta := b.m1 - a.m1
	total := float64(a.n) + float64(b.n)

	aProp := float64(a.n) / total
	bProp := -float64(b.n) / total

	da := aProp * delta
	db := bProp * delta

	da2 := da * da
	db2 := db * db

	m2 := a.m2 + b.m2 + float64(a.n)*db2 + float64(b.n)*da2

	m3 := a.m3 + b.m3 +
		float64(a.n)*db2*db + float64(b.n)*da2*da +
		3.0*delta*(a.m2*bProp+b.m2*aProp)

	m4 := a.m4 + b.m4 +
		float64(a.n)*db2*db2 + float64(b.n)*da2*da2 +
		4.0*delta*(a.m3*bProp+b.m3*aProp) +
		6.0*(delta*delta)*(a.m2*bProp*bProp+b.m2*aProp*aProp)

	return OnlineStats{
		n:  a.n + b.n,
		m1: a.m1 - db,
		m2: m2,
		m3: m3,
		m4: m4,
	}
}

// ToMetrics derives the reported distribution shape. Variance uses Bessel's
// correction; skewness is the Fisher-Pearson coefficient (0 below n=3);
// kurtosis is the method-of-moments excess kurtosis (0 below n=4).
func (s OnlineStats) ToMetrics() DistributionMetrics {
	if s.n < 2 {
		return DistributionMetrics{}
	}

	n := float64(s.n)
	variance := s.m2 / (n - 1.0)
	stdDev := 0.0
	if variance > 0 {
		stdDev = math.Sqrt(variance)
	}

	skewness := 0.0
	if s.n >= 3 && variance > 0 && stdDev > 0 {
		skewness = s.m3 / (n * variance * stdDev)
	}

	kurtosis := 0.0
	if s.n >= 4 {
		popVariance := s.m2 / n
		m4Normalized := s.m4 / n
		if popVariance > 0 {
			kurtosis = (m4Normalized / (popVariance * popVariance)) - 3.0
		}
	}

	return DistributionMetrics{
		Mean:        s.m1,
		Variance:    variance,
		StdDev:      stdDev,
		Skewness:    skewness,
		Kurtosis:    kurtosis,
		SampleCount: s.n,
	}
}
