package precompute

import (
	"context"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/domain"
)

// writeHistograms materializes the seven-bucket LVR magnitude distribution
// for every (pool, markout), one row per bucket.
func (r *Runner) writeHistograms(ctx context.Context, snapshots []checkpoint.Snapshot, _ []intervalRow) error {
	n := len(snapshots) * domain.BucketCount
	pairAddress := make([]string, 0, n)
	poolName := make([]string, 0, n)
	markoutTime := make([]string, 0, n)
	rangeStart := make([]float64, 0, n)
	rangeEnd := make([]float64, 0, n)
	rangeEndValid := make([]bool, 0, n)
	count := make([]uint64, 0, n)
	label := make([]string, 0, n)

	for _, s := range snapshots {
		for i, c := range s.Buckets {
			pairAddress = append(pairAddress, string(s.Pool))
			poolName = append(poolName, domain.Name(s.Pool))
			markoutTime = append(markoutTime, s.Markout.String())
			rangeStart = append(rangeStart, bucketRangeStart(i))
			end, ok := bucketRangeEnd(i)
			rangeEnd = append(rangeEnd, end)
			rangeEndValid = append(rangeEndValid, ok)
			count = append(count, c)
			label = append(label, domain.BucketLabels[i])
		}
	}

	record := buildRecord(histogramSchema, n,
		stringArray(pairAddress), stringArray(poolName), stringArray(markoutTime),
		float64Array(rangeStart), nullableFloat64Array(rangeEnd, rangeEndValid),
		uint64Array(count), stringArray(label),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/distributions/histograms.parquet", record, writeAttempts)
}

// writePercentileBands materializes the digest-derived quartile markers at
// each checkpoint's most-recently-updated block. Unlike the per-chunk
// checkpoint snapshots the upstream implementation reads to build a
// historical band curve, this pipeline keeps exactly one continuously
// updated checkpoint per (pool, markout), so the band curve collapses to
// its single current point rather than a time series.
func (r *Runner) writePercentileBands(ctx context.Context, snapshots []checkpoint.Snapshot, _ []intervalRow) error {
	pairAddress := make([]string, 0, len(snapshots))
	poolName := make([]string, 0, len(snapshots))
	markoutTime := make([]string, 0, len(snapshots))
	blockNumber := make([]uint64, 0, len(snapshots))
	p25 := make([]uint64, 0, len(snapshots))
	median := make([]uint64, 0, len(snapshots))
	p75 := make([]uint64, 0, len(snapshots))

	for _, s := range snapshots {
		pairAddress = append(pairAddress, string(s.Pool))
		poolName = append(poolName, domain.Name(s.Pool))
		markoutTime = append(markoutTime, s.Markout.String())
		blockNumber = append(blockNumber, s.LastUpdatedBlock)
		p25 = append(p25, s.Percentile25Cents)
		median = append(median, s.MedianCents)
		p75 = append(p75, s.Percentile75Cents)
	}

	record := buildRecord(percentileBandsSchema, len(snapshots),
		stringArray(pairAddress), stringArray(poolName), stringArray(markoutTime),
		uint64Array(blockNumber), uint64Array(p25), uint64Array(median), uint64Array(p75),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/distributions/percentile_bands.parquet", record, writeAttempts)
}

// writeQuartilePlots materializes a five-number-summary style view (minus
// the maximum, which the max_lvr artifact already covers) for every (pool,
// markout).
func (r *Runner) writeQuartilePlots(ctx context.Context, snapshots []checkpoint.Snapshot, _ []intervalRow) error {
	pairAddress := make([]string, 0, len(snapshots))
	poolName := make([]string, 0, len(snapshots))
	markoutTime := make([]string, 0, len(snapshots))
	minNonZero := make([]uint64, 0, len(snapshots))
	p25 := make([]uint64, 0, len(snapshots))
	median := make([]uint64, 0, len(snapshots))
	p75 := make([]uint64, 0, len(snapshots))

	for _, s := range snapshots {
		pairAddress = append(pairAddress, string(s.Pool))
		poolName = append(poolName, domain.Name(s.Pool))
		markoutTime = append(markoutTime, s.Markout.String())
		minNonZero = append(minNonZero, s.MinNonZeroCents)
		p25 = append(p25, s.Percentile25Cents)
		median = append(median, s.MedianCents)
		p75 = append(p75, s.Percentile75Cents)
	}

	record := buildRecord(quartilePlotsSchema, len(snapshots),
		stringArray(pairAddress), stringArray(poolName), stringArray(markoutTime),
		uint64Array(minNonZero), uint64Array(p25), uint64Array(median), uint64Array(p75),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/distributions/quartile_plots.parquet", record, writeAttempts)
}

// writeDistributionMetrics materializes the moment-derived shape (mean,
// standard deviation, skewness, excess kurtosis) of each (pool, markout)'s
// non-zero LVR magnitude distribution, in dollars.
func (r *Runner) writeDistributionMetrics(ctx context.Context, snapshots []checkpoint.Snapshot, _ []intervalRow) error {
	pairAddress := make([]string, 0, len(snapshots))
	poolName := make([]string, 0, len(snapshots))
	markoutTime := make([]string, 0, len(snapshots))
	mean := make([]float64, 0, len(snapshots))
	stdDev := make([]float64, 0, len(snapshots))
	skewness := make([]float64, 0, len(snapshots))
	kurtosis := make([]float64, 0, len(snapshots))

	for _, s := range snapshots {
		pairAddress = append(pairAddress, string(s.Pool))
		poolName = append(poolName, domain.Name(s.Pool))
		markoutTime = append(markoutTime, s.Markout.String())
		mean = append(mean, s.MeanDollars)
		stdDev = append(stdDev, s.StdDevDollars)
		skewness = append(skewness, s.Skewness)
		kurtosis = append(kurtosis, s.Kurtosis)
	}

	record := buildRecord(distributionMetricsSchema, len(snapshots),
		stringArray(pairAddress), stringArray(poolName), stringArray(markoutTime),
		float64Array(mean), float64Array(stdDev), float64Array(skewness), float64Array(kurtosis),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/distributions/metrics.parquet", record, writeAttempts)
}
