package precompute

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

var allocator = memory.NewGoAllocator()

func uint64Array(values []uint64) arrow.Array {
	b := array.NewUint64Builder(allocator)
	defer b.Release()
	b.AppendValues(values, nil)
	return b.NewArray()
}

func stringArray(values []string) arrow.Array {
	b := array.NewStringBuilder(allocator)
	defer b.Release()
	b.AppendValues(values, nil)
	return b.NewArray()
}

func float64Array(values []float64) arrow.Array {
	b := array.NewFloat64Builder(allocator)
	defer b.Release()
	b.AppendValues(values, nil)
	return b.NewArray()
}

// nullableFloat64Array builds a Float64 column where valid[i] == false
// appends a null instead of values[i].
func nullableFloat64Array(values []float64, valid []bool) arrow.Array {
	b := array.NewFloat64Builder(allocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return b.NewArray()
}

func releaseAll(cols []arrow.Array) {
	for _, c := range cols {
		c.Release()
	}
}

// buildRecord assembles a record batch from pre-built columns and releases
// them once the record holds its own reference.
func buildRecord(schema *arrow.Schema, numRows int, cols ...arrow.Array) arrow.Record {
	defer releaseAll(cols)
	return array.NewRecord(schema, cols, int64(numRows))
}
