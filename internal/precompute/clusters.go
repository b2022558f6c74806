package precompute

import (
	"context"
	"sort"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/domain"
)

type clusterMarkoutKey struct {
	cluster domain.Cluster
	markout domain.MarkoutTime
}

// writeClusterProportions materializes each cluster's share of total LVR
// within a markout, across every cluster sharing that markout.
func (r *Runner) writeClusterProportions(ctx context.Context, snapshots []checkpoint.Snapshot, _ []intervalRow) error {
	totals := make(map[clusterMarkoutKey]uint64)
	markoutGrandTotal := make(map[domain.MarkoutTime]uint64)

	for _, s := range snapshots {
		cluster := domain.ClusterOf(s.Pool)
		if cluster == "" {
			continue
		}
		key := clusterMarkoutKey{cluster, s.Markout}
		totals[key] += s.RunningTotal
		markoutGrandTotal[s.Markout] += s.RunningTotal
	}

	keys := sortedClusterMarkoutKeys(totals)

	clusterName := make([]string, 0, len(keys))
	markoutTime := make([]string, 0, len(keys))
	totalLVR := make([]uint64, 0, len(keys))
	proportion := make([]float64, 0, len(keys))

	for _, k := range keys {
		total := totals[k]
		grand := markoutGrandTotal[k.markout]
		prop := 0.0
		if grand > 0 {
			prop = float64(total) / float64(grand)
		}
		clusterName = append(clusterName, string(k.cluster))
		markoutTime = append(markoutTime, k.markout.String())
		totalLVR = append(totalLVR, total)
		proportion = append(proportion, prop)
	}

	record := buildRecord(clusterProportionsSchema, len(keys),
		stringArray(clusterName), stringArray(markoutTime), uint64Array(totalLVR), float64Array(proportion),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/clusters/proportions.parquet", record, writeAttempts)
}

// writeClusterHistograms materializes the seven-bucket LVR magnitude
// distribution per (cluster, markout), summing bucket counters across every
// pool belonging to the cluster.
func (r *Runner) writeClusterHistograms(ctx context.Context, snapshots []checkpoint.Snapshot, _ []intervalRow) error {
	buckets := make(map[clusterMarkoutKey]*[domain.BucketCount]uint64)

	for _, s := range snapshots {
		cluster := domain.ClusterOf(s.Pool)
		if cluster == "" {
			continue
		}
		key := clusterMarkoutKey{cluster, s.Markout}
		acc, ok := buckets[key]
		if !ok {
			acc = &[domain.BucketCount]uint64{}
			buckets[key] = acc
		}
		for i, v := range s.Buckets {
			acc[i] += v
		}
	}

	keys := sortedClusterMarkoutKeysFromBuckets(buckets)
	n := len(keys) * domain.BucketCount

	clusterName := make([]string, 0, n)
	markoutTime := make([]string, 0, n)
	rangeStart := make([]float64, 0, n)
	rangeEnd := make([]float64, 0, n)
	rangeEndValid := make([]bool, 0, n)
	count := make([]uint64, 0, n)
	label := make([]string, 0, n)

	for _, k := range keys {
		acc := buckets[k]
		for i, c := range acc {
			clusterName = append(clusterName, string(k.cluster))
			markoutTime = append(markoutTime, k.markout.String())
			rangeStart = append(rangeStart, bucketRangeStart(i))
			end, ok := bucketRangeEnd(i)
			rangeEnd = append(rangeEnd, end)
			rangeEndValid = append(rangeEndValid, ok)
			count = append(count, c)
			label = append(label, domain.BucketLabels[i])
		}
	}

	record := buildRecord(clusterHistogramSchema, n,
		stringArray(clusterName), stringArray(markoutTime),
		float64Array(rangeStart), nullableFloat64Array(rangeEnd, rangeEndValid),
		uint64Array(count), stringArray(label),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/clusters/histograms.parquet", record, writeAttempts)
}

type monthlyClusterKey struct {
	timeRange string
	clusterMarkoutKey
}

// writeMonthlyClusterTotals materializes per-calendar-chunk LVR totals for
// every (cluster, markout), summed from interval rollups. Interval rows at
// a chunk boundary with no recognized calendar label are skipped.
func (r *Runner) writeMonthlyClusterTotals(ctx context.Context, _ []checkpoint.Snapshot, rows []intervalRow) error {
	totals := make(map[monthlyClusterKey]uint64)

	for _, row := range rows {
		cluster := domain.ClusterOf(row.Pool)
		if cluster == "" {
			continue
		}
		label := domain.MonthLabel(row.ChunkStart)
		if label == "" {
			continue
		}
		key := monthlyClusterKey{timeRange: label, clusterMarkoutKey: clusterMarkoutKey{cluster, row.Markout}}
		totals[key] += row.TotalLVRCents
	}

	keys := make([]monthlyClusterKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].timeRange != keys[j].timeRange {
			return keys[i].timeRange < keys[j].timeRange
		}
		if keys[i].cluster != keys[j].cluster {
			return keys[i].cluster < keys[j].cluster
		}
		return keys[i].markout < keys[j].markout
	})

	timeRange := make([]string, 0, len(keys))
	clusterName := make([]string, 0, len(keys))
	markoutTime := make([]string, 0, len(keys))
	totalLVR := make([]uint64, 0, len(keys))

	for _, k := range keys {
		timeRange = append(timeRange, k.timeRange)
		clusterName = append(clusterName, string(k.cluster))
		markoutTime = append(markoutTime, k.markout.String())
		totalLVR = append(totalLVR, totals[k])
	}

	record := buildRecord(monthlyClusterTotalsSchema, len(keys),
		stringArray(timeRange), stringArray(clusterName), stringArray(markoutTime), uint64Array(totalLVR),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/clusters/monthly_totals.parquet", record, writeAttempts)
}

// writeClusterNonZero materializes the non-zero observation proportion per
// (cluster, markout), summed from each member pool's checkpoint buckets.
func (r *Runner) writeClusterNonZero(ctx context.Context, snapshots []checkpoint.Snapshot, _ []intervalRow) error {
	type agg struct{ total, nonZero uint64 }
	totals := make(map[clusterMarkoutKey]*agg)

	for _, s := range snapshots {
		cluster := domain.ClusterOf(s.Pool)
		if cluster == "" {
			continue
		}
		key := clusterMarkoutKey{cluster, s.Markout}
		a, ok := totals[key]
		if !ok {
			a = &agg{}
			totals[key] = a
		}
		total, nonZero := bucketTotals(s)
		a.total += total
		a.nonZero += nonZero
	}

	keys := make([]clusterMarkoutKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].cluster != keys[j].cluster {
			return keys[i].cluster < keys[j].cluster
		}
		return keys[i].markout < keys[j].markout
	})

	clusterName := make([]string, 0, len(keys))
	markoutTime := make([]string, 0, len(keys))
	totalObservations := make([]uint64, 0, len(keys))
	nonZeroObservations := make([]uint64, 0, len(keys))
	proportion := make([]float64, 0, len(keys))

	for _, k := range keys {
		a := totals[k]
		prop := 0.0
		if a.total > 0 {
			prop = float64(a.nonZero) / float64(a.total)
		}
		clusterName = append(clusterName, string(k.cluster))
		markoutTime = append(markoutTime, k.markout.String())
		totalObservations = append(totalObservations, a.total)
		nonZeroObservations = append(nonZeroObservations, a.nonZero)
		proportion = append(proportion, prop)
	}

	record := buildRecord(clusterNonZeroSchema, len(keys),
		stringArray(clusterName), stringArray(markoutTime),
		uint64Array(totalObservations), uint64Array(nonZeroObservations), float64Array(proportion),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/clusters/non_zero.parquet", record, writeAttempts)
}

func sortedClusterMarkoutKeys(m map[clusterMarkoutKey]uint64) []clusterMarkoutKey {
	keys := make([]clusterMarkoutKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].cluster != keys[j].cluster {
			return keys[i].cluster < keys[j].cluster
		}
		return keys[i].markout < keys[j].markout
	})
	return keys
}

func sortedClusterMarkoutKeysFromBuckets(m map[clusterMarkoutKey]*[domain.BucketCount]uint64) []clusterMarkoutKey {
	keys := make([]clusterMarkoutKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].cluster != keys[j].cluster {
			return keys[i].cluster < keys[j].cluster
		}
		return keys[i].markout < keys[j].markout
	})
	return keys
}
