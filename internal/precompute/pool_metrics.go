package precompute

import (
	"context"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/domain"
)

// writePoolTotals materializes one row per (pool, markout) with its final
// running total and block coverage, read directly off the finalized
// checkpoint rather than re-summing every interval artifact.
func (r *Runner) writePoolTotals(ctx context.Context, snapshots []checkpoint.Snapshot, _ []intervalRow) error {
	pairAddress := make([]string, 0, len(snapshots))
	poolName := make([]string, 0, len(snapshots))
	markoutTime := make([]string, 0, len(snapshots))
	totalLVR := make([]uint64, 0, len(snapshots))
	nonZeroBlocks := make([]uint64, 0, len(snapshots))
	totalBlocks := make([]uint64, 0, len(snapshots))

	for _, s := range snapshots {
		total, nonZero := bucketTotals(s)
		pairAddress = append(pairAddress, string(s.Pool))
		poolName = append(poolName, domain.Name(s.Pool))
		markoutTime = append(markoutTime, s.Markout.String())
		totalLVR = append(totalLVR, s.RunningTotal)
		nonZeroBlocks = append(nonZeroBlocks, nonZero)
		totalBlocks = append(totalBlocks, total)
	}

	record := buildRecord(poolTotalsSchema, len(snapshots),
		stringArray(pairAddress), stringArray(poolName), stringArray(markoutTime),
		uint64Array(totalLVR), uint64Array(nonZeroBlocks), uint64Array(totalBlocks),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/pool_metrics/totals.parquet", record, writeAttempts)
}

// writeMaxLVR materializes one row per (pool, markout) naming the block at
// which its all-time maximum LVR occurred.
func (r *Runner) writeMaxLVR(ctx context.Context, snapshots []checkpoint.Snapshot, _ []intervalRow) error {
	pairAddress := make([]string, 0, len(snapshots))
	poolName := make([]string, 0, len(snapshots))
	markoutTime := make([]string, 0, len(snapshots))
	blockNumber := make([]uint64, 0, len(snapshots))
	maxLVR := make([]uint64, 0, len(snapshots))

	for _, s := range snapshots {
		pairAddress = append(pairAddress, string(s.Pool))
		poolName = append(poolName, domain.Name(s.Pool))
		markoutTime = append(markoutTime, s.Markout.String())
		blockNumber = append(blockNumber, s.MaxLVRBlock)
		maxLVR = append(maxLVR, s.MaxLVRValue)
	}

	record := buildRecord(maxLVRSchema, len(snapshots),
		stringArray(pairAddress), stringArray(poolName), stringArray(markoutTime),
		uint64Array(blockNumber), uint64Array(maxLVR),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/pool_metrics/max_lvr.parquet", record, writeAttempts)
}

// writeNonZeroProportions materializes the fraction of observed blocks with
// non-zero LVR, per (pool, markout).
func (r *Runner) writeNonZeroProportions(ctx context.Context, snapshots []checkpoint.Snapshot, _ []intervalRow) error {
	pairAddress := make([]string, 0, len(snapshots))
	poolName := make([]string, 0, len(snapshots))
	markoutTime := make([]string, 0, len(snapshots))
	nonZeroBlocks := make([]uint64, 0, len(snapshots))
	totalBlocks := make([]uint64, 0, len(snapshots))
	proportion := make([]float64, 0, len(snapshots))

	for _, s := range snapshots {
		total, nonZero := bucketTotals(s)
		pairAddress = append(pairAddress, string(s.Pool))
		poolName = append(poolName, domain.Name(s.Pool))
		markoutTime = append(markoutTime, s.Markout.String())
		nonZeroBlocks = append(nonZeroBlocks, nonZero)
		totalBlocks = append(totalBlocks, total)
		proportion = append(proportion, s.NonZeroProportion)
	}

	record := buildRecord(nonZeroSchema, len(snapshots),
		stringArray(pairAddress), stringArray(poolName), stringArray(markoutTime),
		uint64Array(nonZeroBlocks), uint64Array(totalBlocks), float64Array(proportion),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/pool_metrics/non_zero.parquet", record, writeAttempts)
}

// bucketTotals sums a snapshot's seven histogram bucket counters into
// (total, nonZero) observation counts.
func bucketTotals(s checkpoint.Snapshot) (total uint64, nonZero uint64) {
	for i, v := range s.Buckets {
		total += v
		if i > 0 {
			nonZero += v
		}
	}
	return total, nonZero
}
