// Package columnar builds Arrow record batches for every artifact this
// pipeline produces and serializes them to Parquet with SNAPPY compression,
// the object-store bytes the processor and precomputation stages persist.
package columnar

import "github.com/apache/arrow-go/v18/arrow"

// IntervalSchema is the wire shape of one row in an intervals/*.parquet
// artifact: one row per (pool, markout, interval).
var IntervalSchema = arrow.NewSchema([]arrow.Field{
	{Name: "interval_id", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "pair_address", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "total_lvr_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "max_lvr_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "non_zero_count", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "total_count", Type: arrow.PrimitiveTypes.Uint64},
}, nil)

// CheckpointSchema is the wire shape of one row in a
// checkpoints/<pool>_<markout>.parquet artifact: exactly one row, the
// current durable aggregate for that (pool, markout) pair. Bucket fields
// follow the single seven-bucket scheme used consistently across every
// consumer of checkpoint data.
var CheckpointSchema = arrow.NewSchema([]arrow.Field{
	{Name: "pair_address", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "max_lvr_block", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "max_lvr_value", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "running_total", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "total_bucket_eq0", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "total_bucket_0_10", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "total_bucket_10_100", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "total_bucket_100_500", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "total_bucket_500_1000", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "total_bucket_1000_10000", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "total_bucket_10000_plus", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "last_updated_block", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "non_zero_proportion", Type: arrow.PrimitiveTypes.Float64},
	{Name: "percentile_25_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "median_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "percentile_75_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "non_zero_samples", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "min_nonzero_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "mean_dollars", Type: arrow.PrimitiveTypes.Float64},
	{Name: "variance_dollars", Type: arrow.PrimitiveTypes.Float64},
	{Name: "std_dev_dollars", Type: arrow.PrimitiveTypes.Float64},
	{Name: "skewness", Type: arrow.PrimitiveTypes.Float64},
	{Name: "kurtosis", Type: arrow.PrimitiveTypes.Float64},
}, nil)
