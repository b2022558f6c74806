package precompute

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/columnar"
	"github.com/0xknxwledge/lvrctl/internal/objstore"
)

// writeAttempts is the retry ceiling for every precomputed artifact write,
// matching the teacher's PrecomputedWriter's fixed retry count.
const writeAttempts = 3

// Runner materializes every denormalized query-serving artifact from the
// checkpoints/ and intervals/ data a processing pass already wrote.
type Runner struct {
	store  objstore.Store
	writer *columnar.Writer
	log    *zap.SugaredLogger
}

// New constructs a precomputation runner against the given store.
func New(store objstore.Store, writer *columnar.Writer, log *zap.SugaredLogger) *Runner {
	return &Runner{store: store, writer: writer, log: log}
}

// Run materializes every artifact in sequence, matching the order of the
// teacher's own precomputation pass. A failure at any stage aborts the
// remaining stages: artifacts of the stages that already completed hold this
// run's output, while those of the remaining stages keep whatever a previous
// run wrote, so precomputed/ can then mix output from both runs.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("starting precomputation phase")

	snapshots, err := loadCheckpointSnapshots(ctx, r.store)
	if err != nil {
		return fmt.Errorf("loading checkpoint snapshots: %w", err)
	}
	rows, err := loadIntervalRows(ctx, r.store)
	if err != nil {
		return fmt.Errorf("loading interval rows: %w", err)
	}

	stages := []struct {
		name string
		run  func(context.Context, []checkpoint.Snapshot, []intervalRow) error
	}{
		{"running totals", r.writeRunningTotals},
		{"pool totals", r.writePoolTotals},
		{"max LVR", r.writeMaxLVR},
		{"non-zero proportions", r.writeNonZeroProportions},
		{"histograms", r.writeHistograms},
		{"percentile bands", r.writePercentileBands},
		{"quartile plots", r.writeQuartilePlots},
		{"daily time series", r.writeDailyTimeSeries},
		{"cluster proportions", r.writeClusterProportions},
		{"cluster histograms", r.writeClusterHistograms},
		{"monthly cluster totals", r.writeMonthlyClusterTotals},
		{"cluster non-zero", r.writeClusterNonZero},
		{"distribution metrics", r.writeDistributionMetrics},
		{"LVR ratios", r.writeLVRRatios},
	}

	for _, stage := range stages {
		if err := stage.run(ctx, snapshots, rows); err != nil {
			return fmt.Errorf("precomputing %s: %w", stage.name, err)
		}
		r.log.Infow("completed precomputation stage", "stage", stage.name)
	}

	r.log.Info("successfully completed all metric precomputations")
	return nil
}

// bucketRangeStart and bucketRangeEnd describe the seven-bucket histogram
// scheme's dollar boundaries, matching domain.BucketLabels in order. The
// final bucket has no upper bound.
func bucketRangeStart(i int) float64 {
	starts := [...]float64{0, 0, 10, 100, 500, 1000, 10000}
	return starts[i]
}

func bucketRangeEnd(i int) (float64, bool) {
	ends := [...]float64{0, 10, 100, 500, 1000, 10000, 0}
	if i == len(ends)-1 {
		return 0, false
	}
	return ends[i], true
}
