// Package checkpoint implements the durable per-(pool, markout) aggregate:
// a running total, max-LVR tracker, seven histogram bucket counters and a
// streaming quantile digest, all safe for concurrent updates from the fetch
// fan-out.
package checkpoint

import (
	"sync"
	"sync/atomic"

	"github.com/0xknxwledge/lvrctl/internal/domain"
	"github.com/0xknxwledge/lvrctl/internal/stats"
	"github.com/0xknxwledge/lvrctl/internal/tdigest"
)

const (
	defaultDeltaPartial = 20
	defaultDeltaFinal   = 10
	defaultBufferSize   = 200
)

type maxLVR struct {
	mu    sync.Mutex
	value uint64
	block uint64
}

// Checkpoint is the durable aggregate for one (pool, markout) pair. Every
// field that can be touched by concurrent UpdateStats calls is either
// atomic or guarded by its own mutex, so a single Checkpoint can be shared
// across the goroutines processing a chunk.
type Checkpoint struct {
	Pool    domain.Pool
	Markout domain.MarkoutTime

	runningTotal int64 // atomic; cents, signed to tolerate a negative LVR definition

	buckets [domain.BucketCount]uint64 // atomic counters, index 0 is always "=0"

	lastUpdatedBlock uint64 // atomic

	max maxLVR

	digestMu sync.Mutex
	digest   *tdigest.TDigest

	momentsMu sync.Mutex
	moments   stats.OnlineStats
}

// New creates an empty checkpoint for the given pool and markout, wired to
// a fresh digest with the fixed default compression parameters; the
// parameters do not adapt to the number of samples seen.
func New(pool domain.Pool, markout domain.MarkoutTime) *Checkpoint {
	return &Checkpoint{
		Pool:    pool,
		Markout: markout,
		digest:  tdigest.New(defaultDeltaPartial, defaultDeltaFinal, defaultBufferSize),
	}
}

// UpdateStats folds one (block, lvrCents) observation into the checkpoint:
// running total, max tracker, bucket counter, digest (non-zero magnitudes
// only) and the high-water block mark.
func (c *Checkpoint) UpdateStats(blockNumber uint64, lvrCents uint64) {
	atomic.AddInt64(&c.runningTotal, int64(lvrCents))

	if lvrCents > 0 {
		c.max.mu.Lock()
		if lvrCents > c.max.value {
			c.max.value = lvrCents
			c.max.block = blockNumber
		}
		c.max.mu.Unlock()
	}

	absDollars := float64(lvrCents) / 100.0
	if absDollars == 0.0 {
		atomic.AddUint64(&c.buckets[0], 1)
	} else {
		c.digestMu.Lock()
		c.digest.Add(absDollars)
		c.digestMu.Unlock()
		atomic.AddUint64(&c.buckets[domain.BucketIndex(absDollars)], 1)

		c.momentsMu.Lock()
		c.moments = c.moments.Add(absDollars)
		c.momentsMu.Unlock()
	}

	fetchMaxUint64(&c.lastUpdatedBlock, blockNumber)
}

// fetchMaxUint64 atomically sets *addr to the larger of its current value
// and v, retrying under contention (there is no atomic.MaxUint64 in the
// standard library).
func fetchMaxUint64(addr *uint64, v uint64) {
	for {
		cur := atomic.LoadUint64(addr)
		if v <= cur {
			return
		}
		if atomic.CompareAndSwapUint64(addr, cur, v) {
			return
		}
	}
}

// Finalize re-merges the digest under its tighter final compression
// parameter. Call once, after all updates for this checkpoint's lifetime
// have been applied.
func (c *Checkpoint) Finalize() {
	c.digestMu.Lock()
	defer c.digestMu.Unlock()
	c.digest.FinalizingMerge()
}

// Snapshot is the point-in-time, immutable view of a checkpoint persisted
// to the checkpoints/ columnar artifact.
type Snapshot struct {
	Pool              domain.Pool
	Markout           domain.MarkoutTime
	MaxLVRValue       uint64
	MaxLVRBlock       uint64
	RunningTotal      uint64
	Buckets           [domain.BucketCount]uint64
	LastUpdatedBlock  uint64
	NonZeroProportion float64
	Percentile25Cents uint64
	MedianCents       uint64
	Percentile75Cents uint64
	NonZeroSamples    uint64

	// MinNonZeroCents is the digest's lowest-quantile estimate, not an exact
	// minimum — subject to the same approximation error as the other
	// digest-derived percentiles.
	MinNonZeroCents uint64

	// Moment-derived distribution shape over non-zero absolute-dollar
	// magnitudes. Zero-valued (all fields 0) until at least two non-zero
	// samples have been observed.
	MeanDollars     float64
	VarianceDollars float64
	StdDevDollars   float64
	Skewness        float64
	Kurtosis        float64
}

// Snapshot captures the checkpoint's current state. running_total is
// clamped to zero if it somehow went negative (it never should, since LVR
// cents are non-negative by construction at the fetch layer).
func (c *Checkpoint) Snapshot() Snapshot {
	c.max.mu.Lock()
	maxValue, maxBlock := c.max.value, c.max.block
	c.max.mu.Unlock()

	c.digestMu.Lock()
	pMin, _ := c.digest.Quantile(0.0)
	p25, _ := c.digest.Quantile(0.25)
	p50, _ := c.digest.Quantile(0.50)
	p75, _ := c.digest.Quantile(0.75)
	samples := c.digest.Samples()
	c.digestMu.Unlock()

	var buckets [domain.BucketCount]uint64
	var totalCount, nonZeroCount uint64
	for i := range c.buckets {
		v := atomic.LoadUint64(&c.buckets[i])
		buckets[i] = v
		totalCount += v
		if i > 0 {
			nonZeroCount += v
		}
	}

	nonZeroProportion := 0.0
	if totalCount > 0 {
		nonZeroProportion = float64(nonZeroCount) / float64(totalCount)
	}

	running := atomic.LoadInt64(&c.runningTotal)
	if running < 0 {
		running = 0
	}

	c.momentsMu.Lock()
	metrics := c.moments.ToMetrics()
	c.momentsMu.Unlock()

	return Snapshot{
		Pool:              c.Pool,
		Markout:           c.Markout,
		MaxLVRValue:       maxValue,
		MaxLVRBlock:       maxBlock,
		RunningTotal:      uint64(running),
		Buckets:           buckets,
		LastUpdatedBlock:  atomic.LoadUint64(&c.lastUpdatedBlock),
		NonZeroProportion: nonZeroProportion,
		Percentile25Cents: uint64(roundHalfAwayFromZero(p25 * 100.0)),
		MedianCents:       uint64(roundHalfAwayFromZero(p50 * 100.0)),
		Percentile75Cents: uint64(roundHalfAwayFromZero(p75 * 100.0)),
		NonZeroSamples:    samples,
		MinNonZeroCents:   uint64(roundHalfAwayFromZero(pMin * 100.0)),
		MeanDollars:       metrics.Mean,
		VarianceDollars:   metrics.Variance,
		StdDevDollars:     metrics.StdDev,
		Skewness:          metrics.Skewness,
		Kurtosis:          metrics.Kurtosis,
	}
}

func roundHalfAwayFromZero(x float64) float64 {
	if x < 0 {
		return -roundHalfAwayFromZero(-x)
	}
	whole := float64(int64(x))
	frac := x - whole
	if frac >= 0.5 {
		return whole + 1
	}
	return whole
}
