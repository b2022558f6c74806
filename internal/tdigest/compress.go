package tdigest

import "github.com/0xknxwledge/lvrctl/internal/stats"

// AdaptiveParameters tracks how many samples a digest has seen and scales
// its compression parameters accordingly: conservative for small samples,
// increasingly aggressive as the sample count grows, further fine-tuned by
// the observed distribution's skewness and kurtosis.
type AdaptiveParameters struct {
	DeltaPartial uint64
	DeltaFinal   uint64
	BufferSize   int

	baseDeltaPartial uint64 // 20
	baseDeltaFinal   uint64 // 10
	baseBufferSize   int    // 200

	scaledDeltaPartial uint64 // 1000
	scaledDeltaFinal   uint64 // 200
	scaledBufferSize   int    // 2000

	initialScaleThreshold uint64 // 2000 samples
	adaptationThreshold   uint64 // 10000 samples
	samplesSeen           uint64
}

// NewAdaptiveParameters returns the conservative base parameter set.
func NewAdaptiveParameters() *AdaptiveParameters {
	return &AdaptiveParameters{
		DeltaPartial: 20, DeltaFinal: 10, BufferSize: 200,
		baseDeltaPartial: 20, baseDeltaFinal: 10, baseBufferSize: 200,
		scaledDeltaPartial: 1000, scaledDeltaFinal: 200, scaledBufferSize: 2000,
		initialScaleThreshold: 2000, adaptationThreshold: 10000,
	}
}

// Adapt updates the compression parameters for the given distribution shape.
// Below initialScaleThreshold it is a no-op; between the thresholds it scales
// linearly toward the scaled ceiling; above adaptationThreshold it further
// fine-tunes by skewness and kurtosis.
func (p *AdaptiveParameters) Adapt(m stats.DistributionMetrics) {
	p.samplesSeen = m.SampleCount

	if p.samplesSeen < p.initialScaleThreshold {
		return
	}
	if p.DeltaPartial == p.baseDeltaPartial {
		p.applyInitialScaling()
		return
	}
	if p.samplesSeen >= p.adaptationThreshold {
		p.fineTune(m)
	}
}

func (p *AdaptiveParameters) applyInitialScaling() {
	scaleFactor := float64(p.samplesSeen) / float64(p.initialScaleThreshold)
	if scaleFactor > 2.0 {
		scaleFactor = 2.0 // cap initial scaling at 2x
	}

	p.DeltaPartial = minU64(uint64(float64(p.baseDeltaPartial)*scaleFactor), p.scaledDeltaPartial)
	p.DeltaFinal = minU64(uint64(float64(p.baseDeltaFinal)*scaleFactor), p.scaledDeltaFinal)
	p.BufferSize = minInt(int(float64(p.baseBufferSize)*scaleFactor), p.scaledBufferSize)
}

func (p *AdaptiveParameters) fineTune(m stats.DistributionMetrics) {
	sizeFactor := float64(p.samplesSeen) / float64(p.adaptationThreshold)
	if sizeFactor > 3.0 {
		sizeFactor = 3.0
	}

	adjustment := 1.0

	absSkew := m.Skewness
	if absSkew < 0 {
		absSkew = -absSkew
	}
	if absSkew > 1.0 {
		adjustment *= 1.0 + 0.1*(absSkew-1.0)
		if adjustment > 1.3 {
			adjustment = 1.3 // cap at 30% increase
		}
	}

	if m.Kurtosis < 0.0 {
		adjustment *= 1.0 + 0.2*(-m.Kurtosis/2.0) // more compression, platykurtic
	} else {
		adjustment *= 1.0 - 0.2*(m.Kurtosis/4.0) // less compression, leptokurtic
	}

	if p.samplesSeen < 5000 {
		adjustment *= 0.8
	}

	newDeltaPartial := minU64(uint64(float64(p.baseDeltaPartial)*sizeFactor*adjustment), p.scaledDeltaPartial)
	newDeltaFinal := minU64(uint64(float64(p.baseDeltaFinal)*sizeFactor*adjustment), p.scaledDeltaFinal)
	newBufferSize := minInt(int(float64(p.baseBufferSize)*sizeFactor), p.scaledBufferSize)

	p.DeltaPartial = maxU64(newDeltaPartial, p.baseDeltaPartial)
	p.DeltaFinal = maxU64(newDeltaFinal, p.baseDeltaFinal)
	p.BufferSize = maxInt(newBufferSize, p.baseBufferSize)
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
