// Package validator cross-checks every checkpoint's running total against
// the sum of its interval rollups, surfacing discrepancies at a severity
// proportional to their size.
package validator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/0xknxwledge/lvrctl/internal/columnar"
	"github.com/0xknxwledge/lvrctl/internal/objstore"
)

// significantThresholdPercent is the discrepancy magnitude, as a percentage
// of the checkpoint total, above which a mismatch is logged as an error
// rather than a warning.
const significantThresholdPercent = 1.0

// Stats is the outcome of cross-checking one (pool, markout) key's
// checkpoint total against its summed interval rollups.
type Stats struct {
	CheckpointTotal    uint64
	IntervalsTotal     uint64
	Difference         int64
	DifferencePercent  float64
}

// Validator reads every checkpoint and interval artifact back from the
// object store and reconciles them.
type Validator struct {
	store objstore.Store
	log   *zap.SugaredLogger
}

// New constructs a validator against the given object store.
func New(store objstore.Store, log *zap.SugaredLogger) *Validator {
	return &Validator{store: store, log: log}
}

// ValidateAll reads every checkpoints/ and intervals/ artifact, reconciles
// their totals per (pool, markout) key, and logs each key's outcome at a
// severity matching its discrepancy size.
func (v *Validator) ValidateAll(ctx context.Context) (map[string]Stats, error) {
	checkpointTotals, err := v.loadCheckpointTotals(ctx)
	if err != nil {
		return nil, err
	}
	intervalTotals, err := v.loadIntervalTotals(ctx)
	if err != nil {
		return nil, err
	}

	results := make(map[string]Stats, len(checkpointTotals))
	for key, checkpointTotal := range checkpointTotals {
		intervalsTotal := intervalTotals[key]
		difference := int64(checkpointTotal) - int64(intervalsTotal)

		differencePercent := 0.0
		if checkpointTotal != 0 {
			differencePercent = (float64(difference) / float64(checkpointTotal)) * 100.0
		}

		stats := Stats{
			CheckpointTotal:   checkpointTotal,
			IntervalsTotal:    intervalsTotal,
			Difference:        difference,
			DifferencePercent: differencePercent,
		}

		switch {
		case difference == 0:
			v.log.Infow("validation passed", "key", key, "total", checkpointTotal)
		case absFloat(differencePercent) > significantThresholdPercent:
			v.log.Errorw("significant discrepancy", "key", key,
				"checkpoint_total", checkpointTotal, "intervals_total", intervalsTotal,
				"difference", difference, "difference_percent", differencePercent)
		default:
			v.log.Warnw("minor discrepancy", "key", key,
				"checkpoint_total", checkpointTotal, "intervals_total", intervalsTotal,
				"difference", difference, "difference_percent", differencePercent)
		}

		results[key] = stats
	}

	return results, nil
}

func keyFor(pool, markout string) string {
	return pool + "_" + markout
}

func (v *Validator) loadCheckpointTotals(ctx context.Context) (map[string]uint64, error) {
	paths, err := v.store.List(ctx, "checkpoints")
	if err != nil {
		return nil, fmt.Errorf("listing checkpoint artifacts: %w", err)
	}

	totals := make(map[string]uint64, len(paths))
	for _, path := range paths {
		if !strings.HasSuffix(path, ".parquet") {
			continue
		}
		snap, err := columnar.ReadCheckpoint(ctx, v.store, path)
		if err != nil {
			return nil, fmt.Errorf("reading checkpoint artifact %s: %w", path, err)
		}
		totals[keyFor(string(snap.Pool), snap.Markout.String())] = snap.RunningTotal
	}
	return totals, nil
}

func (v *Validator) loadIntervalTotals(ctx context.Context) (map[string]uint64, error) {
	paths, err := v.store.List(ctx, "intervals")
	if err != nil {
		return nil, fmt.Errorf("listing interval artifacts: %w", err)
	}

	totals := make(map[string]uint64, 0)
	for _, path := range paths {
		if !strings.HasSuffix(path, ".parquet") {
			continue
		}
		rows, err := columnar.ReadIntervals(ctx, v.store, path)
		if err != nil {
			return nil, fmt.Errorf("reading interval artifact %s: %w", path, err)
		}
		for _, r := range rows {
			totals[keyFor(string(r.Pool), r.Markout.String())] += r.TotalLVRCents
		}
	}
	return totals, nil
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
