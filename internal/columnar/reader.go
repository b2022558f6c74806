package columnar

import (
	"bytes"
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/domain"
	"github.com/0xknxwledge/lvrctl/internal/objstore"
)

// ReadIntervals loads one intervals/*.parquet artifact back into
// domain.IntervalData rows, in on-disk row order.
func ReadIntervals(ctx context.Context, store objstore.Store, path string) ([]domain.IntervalData, error) {
	table, err := readTable(ctx, store, path)
	if err != nil {
		return nil, err
	}
	defer table.Release()

	n := int(table.NumRows())
	intervalID := uint64Column(table, 0)
	pairAddress := stringColumn(table, 1)
	markoutTime := stringColumn(table, 2)
	totalLVR := uint64Column(table, 3)
	maxLVR := uint64Column(table, 4)
	nonZeroCount := uint64Column(table, 5)
	totalCount := uint64Column(table, 6)

	out := make([]domain.IntervalData, n)
	for i := 0; i < n; i++ {
		out[i] = domain.IntervalData{
			IntervalID:    intervalID[i],
			Pool:          domain.Norm(pairAddress[i]),
			Markout:       parseMarkoutString(markoutTime[i]),
			TotalLVRCents: totalLVR[i],
			MaxLVRCents:   maxLVR[i],
			NonZeroCount:  nonZeroCount[i],
			TotalCount:    totalCount[i],
		}
	}
	return out, nil
}

// ReadCheckpoint loads one checkpoints/*.parquet artifact back into a
// checkpoint.Snapshot.
func ReadCheckpoint(ctx context.Context, store objstore.Store, path string) (checkpoint.Snapshot, error) {
	table, err := readTable(ctx, store, path)
	if err != nil {
		return checkpoint.Snapshot{}, err
	}
	defer table.Release()

	if table.NumRows() != 1 {
		return checkpoint.Snapshot{}, fmt.Errorf("checkpoint artifact %s: expected exactly one row, got %d", path, table.NumRows())
	}

	pairAddress := stringColumn(table, 0)[0]
	markoutTime := stringColumn(table, 1)[0]
	maxLVRBlock := uint64Column(table, 2)[0]
	maxLVRValue := uint64Column(table, 3)[0]
	runningTotal := uint64Column(table, 4)[0]

	var buckets [domain.BucketCount]uint64
	for i := 0; i < domain.BucketCount; i++ {
		buckets[i] = uint64Column(table, 5+i)[0]
	}

	lastUpdatedBlock := uint64Column(table, 12)[0]
	nonZeroProportion := float64Column(table, 13)[0]
	p25 := uint64Column(table, 14)[0]
	median := uint64Column(table, 15)[0]
	p75 := uint64Column(table, 16)[0]
	nonZeroSamples := uint64Column(table, 17)[0]
	minNonZeroCents := uint64Column(table, 18)[0]
	meanDollars := float64Column(table, 19)[0]
	varianceDollars := float64Column(table, 20)[0]
	stdDevDollars := float64Column(table, 21)[0]
	skewness := float64Column(table, 22)[0]
	kurtosis := float64Column(table, 23)[0]

	return checkpoint.Snapshot{
		Pool:              domain.Norm(pairAddress),
		Markout:           parseMarkoutString(markoutTime),
		MaxLVRValue:       maxLVRValue,
		MaxLVRBlock:       maxLVRBlock,
		RunningTotal:      runningTotal,
		Buckets:           buckets,
		LastUpdatedBlock:  lastUpdatedBlock,
		NonZeroProportion: nonZeroProportion,
		Percentile25Cents: p25,
		MedianCents:       median,
		Percentile75Cents: p75,
		NonZeroSamples:    nonZeroSamples,
		MinNonZeroCents:   minNonZeroCents,
		MeanDollars:       meanDollars,
		VarianceDollars:   varianceDollars,
		StdDevDollars:     stdDevDollars,
		Skewness:          skewness,
		Kurtosis:          kurtosis,
	}, nil
}

func parseMarkoutString(s string) domain.MarkoutTime {
	if s == "brontes" {
		return domain.MarkoutBrontes
	}
	for _, m := range domain.NumericMarkouts {
		if m.String() == s {
			return m
		}
	}
	return domain.MarkoutZero
}

// ReadTable loads an arbitrary artifact's columns as an Arrow table, for
// callers (the precomputation stage's own readers, the query API) that need
// a schema readTable/ReadIntervals/ReadCheckpoint don't already cover.
// Callers must Release the returned table.
func ReadTable(ctx context.Context, store objstore.Store, path string) (arrow.Table, error) {
	return readTable(ctx, store, path)
}

// Uint64Column, StringColumn and Float64Column expose the column-extraction
// helpers used internally by ReadIntervals/ReadCheckpoint to callers reading
// precomputed artifacts with their own schemas.
func Uint64Column(t arrow.Table, idx int) []uint64   { return uint64Column(t, idx) }
func StringColumn(t arrow.Table, idx int) []string   { return stringColumn(t, idx) }
func Float64Column(t arrow.Table, idx int) []float64 { return float64Column(t, idx) }

func readTable(ctx context.Context, store objstore.Store, path string) (arrow.Table, error) {
	data, err := store.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading parquet artifact %s: %w", path, err)
	}

	reader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening parquet reader for %s: %w", path, err)
	}

	fileReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{}, pool)
	if err != nil {
		return nil, fmt.Errorf("opening arrow reader for %s: %w", path, err)
	}

	table, err := fileReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading arrow table for %s: %w", path, err)
	}
	return table, nil
}

func uint64Column(t arrow.Table, idx int) []uint64 {
	col := t.Column(idx).Data()
	out := make([]uint64, 0, t.NumRows())
	for _, chunk := range col.Chunks() {
		arr := chunk.(*array.Uint64)
		for i := 0; i < arr.Len(); i++ {
			out = append(out, arr.Value(i))
		}
	}
	return out
}

func stringColumn(t arrow.Table, idx int) []string {
	col := t.Column(idx).Data()
	out := make([]string, 0, t.NumRows())
	for _, chunk := range col.Chunks() {
		arr := chunk.(*array.String)
		for i := 0; i < arr.Len(); i++ {
			out = append(out, arr.Value(i))
		}
	}
	return out
}

func float64Column(t arrow.Table, idx int) []float64 {
	col := t.Column(idx).Data()
	out := make([]float64, 0, t.NumRows())
	for _, chunk := range col.Chunks() {
		arr := chunk.(*array.Float64)
		for i := 0; i < arr.Len(); i++ {
			out = append(out, arr.Value(i))
		}
	}
	return out
}
