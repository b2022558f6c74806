// Package precompute materializes the denormalized, query-serving Parquet
// artifacts that the API layer reads directly rather than recomputing from
// raw checkpoints and intervals on every request. It runs once, after a
// processing pass finalizes every checkpoint.
package precompute

import "github.com/apache/arrow-go/v18/arrow"

var runningTotalsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "block_number", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "pool_address", Type: arrow.BinaryTypes.String},
	{Name: "running_total_cents", Type: arrow.PrimitiveTypes.Uint64},
}, nil)

var dailyTimeSeriesSchema = arrow.NewSchema([]arrow.Field{
	{Name: "time_range", Type: arrow.BinaryTypes.String},
	{Name: "pool_address", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "total_lvr_cents", Type: arrow.PrimitiveTypes.Uint64},
}, nil)

var poolTotalsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "pool_address", Type: arrow.BinaryTypes.String},
	{Name: "pool_name", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "total_lvr_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "non_zero_blocks", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "total_blocks", Type: arrow.PrimitiveTypes.Uint64},
}, nil)

var maxLVRSchema = arrow.NewSchema([]arrow.Field{
	{Name: "pool_address", Type: arrow.BinaryTypes.String},
	{Name: "pool_name", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "block_number", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "max_lvr_cents", Type: arrow.PrimitiveTypes.Uint64},
}, nil)

var nonZeroSchema = arrow.NewSchema([]arrow.Field{
	{Name: "pool_address", Type: arrow.BinaryTypes.String},
	{Name: "pool_name", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "non_zero_blocks", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "total_blocks", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "non_zero_proportion", Type: arrow.PrimitiveTypes.Float64},
}, nil)

var histogramSchema = arrow.NewSchema([]arrow.Field{
	{Name: "pool_address", Type: arrow.BinaryTypes.String},
	{Name: "pool_name", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "bucket_range_start", Type: arrow.PrimitiveTypes.Float64},
	{Name: "bucket_range_end", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "count", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "label", Type: arrow.BinaryTypes.String},
}, nil)

var percentileBandsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "pool_address", Type: arrow.BinaryTypes.String},
	{Name: "pool_name", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "block_number", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "percentile_25_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "median_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "percentile_75_cents", Type: arrow.PrimitiveTypes.Uint64},
}, nil)

var quartilePlotsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "pool_address", Type: arrow.BinaryTypes.String},
	{Name: "pool_name", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "min_nonzero_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "percentile_25_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "median_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "percentile_75_cents", Type: arrow.PrimitiveTypes.Uint64},
}, nil)

var distributionMetricsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "pool_address", Type: arrow.BinaryTypes.String},
	{Name: "pool_name", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "mean", Type: arrow.PrimitiveTypes.Float64},
	{Name: "std_dev", Type: arrow.PrimitiveTypes.Float64},
	{Name: "skewness", Type: arrow.PrimitiveTypes.Float64},
	{Name: "kurtosis", Type: arrow.PrimitiveTypes.Float64},
}, nil)

var clusterProportionsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "cluster_name", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "total_lvr_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "proportion", Type: arrow.PrimitiveTypes.Float64},
}, nil)

var clusterHistogramSchema = arrow.NewSchema([]arrow.Field{
	{Name: "cluster_name", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "bucket_range_start", Type: arrow.PrimitiveTypes.Float64},
	{Name: "bucket_range_end", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "count", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "label", Type: arrow.BinaryTypes.String},
}, nil)

var monthlyClusterTotalsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "time_range", Type: arrow.BinaryTypes.String},
	{Name: "cluster_name", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "total_lvr_cents", Type: arrow.PrimitiveTypes.Uint64},
}, nil)

var clusterNonZeroSchema = arrow.NewSchema([]arrow.Field{
	{Name: "cluster_name", Type: arrow.BinaryTypes.String},
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "total_observations", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "non_zero_observations", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "non_zero_proportion", Type: arrow.PrimitiveTypes.Float64},
}, nil)

var lvrRatiosSchema = arrow.NewSchema([]arrow.Field{
	{Name: "markout_time", Type: arrow.BinaryTypes.String},
	{Name: "ratio", Type: arrow.PrimitiveTypes.Float64},
	{Name: "realized_lvr_cents", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "theoretical_lvr_cents", Type: arrow.PrimitiveTypes.Uint64},
}, nil)
