package columnar

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/domain"
)

var pool = memory.NewGoAllocator()

// IntervalBatch builds one record batch covering every supplied interval
// row, in caller-supplied order (the caller is expected to have sorted by
// interval_id already, matching the teacher's pre-write sort).
func IntervalBatch(rows []domain.IntervalData) arrow.Record {
	intervalID := array.NewUint64Builder(pool)
	pairAddress := array.NewStringBuilder(pool)
	markoutTime := array.NewStringBuilder(pool)
	totalLVR := array.NewUint64Builder(pool)
	maxLVR := array.NewUint64Builder(pool)
	nonZeroCount := array.NewUint64Builder(pool)
	totalCount := array.NewUint64Builder(pool)
	defer func() {
		intervalID.Release()
		pairAddress.Release()
		markoutTime.Release()
		totalLVR.Release()
		maxLVR.Release()
		nonZeroCount.Release()
		totalCount.Release()
	}()

	for _, r := range rows {
		intervalID.Append(r.IntervalID)
		pairAddress.Append(string(r.Pool))
		markoutTime.Append(r.Markout.String())
		totalLVR.Append(r.TotalLVRCents)
		maxLVR.Append(r.MaxLVRCents)
		nonZeroCount.Append(r.NonZeroCount)
		totalCount.Append(r.TotalCount)
	}

	cols := []arrow.Array{
		intervalID.NewArray(), pairAddress.NewArray(), markoutTime.NewArray(),
		totalLVR.NewArray(), maxLVR.NewArray(), nonZeroCount.NewArray(), totalCount.NewArray(),
	}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	return array.NewRecord(IntervalSchema, cols, int64(len(rows)))
}

// CheckpointBatch builds a single-row record batch for one checkpoint
// snapshot.
func CheckpointBatch(snap checkpoint.Snapshot) arrow.Record {
	pairAddress := array.NewStringBuilder(pool)
	markoutTime := array.NewStringBuilder(pool)
	maxLVRBlock := array.NewUint64Builder(pool)
	maxLVRValue := array.NewUint64Builder(pool)
	runningTotal := array.NewUint64Builder(pool)
	buckets := make([]*array.Uint64Builder, domain.BucketCount)
	for i := range buckets {
		buckets[i] = array.NewUint64Builder(pool)
	}
	lastUpdatedBlock := array.NewUint64Builder(pool)
	nonZeroProportion := array.NewFloat64Builder(pool)
	p25 := array.NewUint64Builder(pool)
	median := array.NewUint64Builder(pool)
	p75 := array.NewUint64Builder(pool)
	nonZeroSamples := array.NewUint64Builder(pool)
	minNonZeroCents := array.NewUint64Builder(pool)
	meanDollars := array.NewFloat64Builder(pool)
	varianceDollars := array.NewFloat64Builder(pool)
	stdDevDollars := array.NewFloat64Builder(pool)
	skewness := array.NewFloat64Builder(pool)
	kurtosis := array.NewFloat64Builder(pool)

	pairAddress.Append(string(snap.Pool))
	markoutTime.Append(snap.Markout.String())
	maxLVRBlock.Append(snap.MaxLVRBlock)
	maxLVRValue.Append(snap.MaxLVRValue)
	runningTotal.Append(snap.RunningTotal)
	for i, b := range buckets {
		b.Append(snap.Buckets[i])
	}
	lastUpdatedBlock.Append(snap.LastUpdatedBlock)
	nonZeroProportion.Append(snap.NonZeroProportion)
	p25.Append(snap.Percentile25Cents)
	median.Append(snap.MedianCents)
	p75.Append(snap.Percentile75Cents)
	nonZeroSamples.Append(snap.NonZeroSamples)
	minNonZeroCents.Append(snap.MinNonZeroCents)
	meanDollars.Append(snap.MeanDollars)
	varianceDollars.Append(snap.VarianceDollars)
	stdDevDollars.Append(snap.StdDevDollars)
	skewness.Append(snap.Skewness)
	kurtosis.Append(snap.Kurtosis)

	cols := []arrow.Array{
		pairAddress.NewArray(), markoutTime.NewArray(), maxLVRBlock.NewArray(), maxLVRValue.NewArray(),
		runningTotal.NewArray(),
		buckets[0].NewArray(), buckets[1].NewArray(), buckets[2].NewArray(), buckets[3].NewArray(),
		buckets[4].NewArray(), buckets[5].NewArray(), buckets[6].NewArray(),
		lastUpdatedBlock.NewArray(), nonZeroProportion.NewArray(),
		p25.NewArray(), median.NewArray(), p75.NewArray(), nonZeroSamples.NewArray(),
		minNonZeroCents.NewArray(),
		meanDollars.NewArray(), varianceDollars.NewArray(), stdDevDollars.NewArray(),
		skewness.NewArray(), kurtosis.NewArray(),
	}

	pairAddress.Release()
	markoutTime.Release()
	maxLVRBlock.Release()
	maxLVRValue.Release()
	runningTotal.Release()
	for _, b := range buckets {
		b.Release()
	}
	lastUpdatedBlock.Release()
	nonZeroProportion.Release()
	p25.Release()
	median.Release()
	p75.Release()
	nonZeroSamples.Release()
	minNonZeroCents.Release()
	meanDollars.Release()
	varianceDollars.Release()
	stdDevDollars.Release()
	skewness.Release()
	kurtosis.Release()

	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	return array.NewRecord(CheckpointSchema, cols, 1)
}
