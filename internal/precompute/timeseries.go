package precompute

import (
	"context"
	"sort"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/domain"
)

type poolMarkoutKey struct {
	pool    domain.Pool
	markout domain.MarkoutTime
}

type runningEntry struct {
	blockNumber uint64
	key         poolMarkoutKey
	total       uint64
}

// writeRunningTotals materializes the chronological cumulative LVR total
// per (pool, markout), walking every interval rollup in ascending block
// order. Intervals with no non-zero observations contribute nothing and
// are skipped, matching the teacher's own filter.
func (r *Runner) writeRunningTotals(ctx context.Context, _ []checkpoint.Snapshot, rows []intervalRow) error {
	entries := make([]runningEntry, 0, len(rows))
	for _, row := range rows {
		if row.NonZeroCount == 0 {
			continue
		}
		block := row.ChunkStart + row.IntervalID*BlocksPerInterval
		entries = append(entries, runningEntry{
			blockNumber: block,
			key:         poolMarkoutKey{row.Pool, row.Markout},
			total:       row.TotalLVRCents,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].blockNumber != entries[j].blockNumber {
			return entries[i].blockNumber < entries[j].blockNumber
		}
		if entries[i].key.pool != entries[j].key.pool {
			return entries[i].key.pool < entries[j].key.pool
		}
		return entries[i].key.markout < entries[j].key.markout
	})

	running := make(map[poolMarkoutKey]uint64, len(entries))
	blockNumber := make([]uint64, 0, len(entries))
	markoutTime := make([]string, 0, len(entries))
	pairAddress := make([]string, 0, len(entries))
	runningTotal := make([]uint64, 0, len(entries))

	for _, e := range entries {
		running[e.key] += e.total
		blockNumber = append(blockNumber, e.blockNumber)
		markoutTime = append(markoutTime, e.key.markout.String())
		pairAddress = append(pairAddress, string(e.key.pool))
		runningTotal = append(runningTotal, running[e.key])
	}

	record := buildRecord(runningTotalsSchema, len(entries),
		uint64Array(blockNumber), stringArray(markoutTime), stringArray(pairAddress), uint64Array(runningTotal),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/running_totals/totals.parquet", record, writeAttempts)
}

type dailyKey struct {
	timeRange string
	poolMarkoutKey
}

// writeDailyTimeSeries materializes per-calendar-chunk (non-cumulative) LVR
// totals per (pool, markout). The upstream implementation calls an
// equivalent method that was never actually defined; this artifact fills
// that gap using the same interval rollups writeRunningTotals consumes.
func (r *Runner) writeDailyTimeSeries(ctx context.Context, _ []checkpoint.Snapshot, rows []intervalRow) error {
	totals := make(map[dailyKey]uint64)

	for _, row := range rows {
		label := domain.MonthLabel(row.ChunkStart)
		if label == "" {
			continue
		}
		key := dailyKey{timeRange: label, poolMarkoutKey: poolMarkoutKey{row.Pool, row.Markout}}
		totals[key] += row.TotalLVRCents
	}

	keys := make([]dailyKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].timeRange != keys[j].timeRange {
			return keys[i].timeRange < keys[j].timeRange
		}
		if keys[i].pool != keys[j].pool {
			return keys[i].pool < keys[j].pool
		}
		return keys[i].markout < keys[j].markout
	})

	timeRange := make([]string, 0, len(keys))
	pairAddress := make([]string, 0, len(keys))
	markoutTime := make([]string, 0, len(keys))
	totalLVR := make([]uint64, 0, len(keys))

	for _, k := range keys {
		timeRange = append(timeRange, k.timeRange)
		pairAddress = append(pairAddress, string(k.pool))
		markoutTime = append(markoutTime, k.markout.String())
		totalLVR = append(totalLVR, totals[k])
	}

	record := buildRecord(dailyTimeSeriesSchema, len(keys),
		stringArray(timeRange), stringArray(pairAddress), stringArray(markoutTime), uint64Array(totalLVR),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/running_totals/daily_time_series.parquet", record, writeAttempts)
}
