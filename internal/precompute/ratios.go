package precompute

import (
	"context"
	"sort"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/domain"
)

// writeLVRRatios materializes one row per numeric markout whose theoretical
// total is non-zero (markouts with a zero total get no row): the realized
// (BRONTES) LVR total against that markout's theoretical LVR total, each
// summed across every pool, capped at a 100% ratio.
func (r *Runner) writeLVRRatios(ctx context.Context, snapshots []checkpoint.Snapshot, _ []intervalRow) error {
	var realized uint64
	theoretical := make(map[domain.MarkoutTime]uint64, len(domain.NumericMarkouts))

	for _, s := range snapshots {
		if s.Markout == domain.MarkoutBrontes {
			realized += s.RunningTotal
			continue
		}
		theoretical[s.Markout] += s.RunningTotal
	}

	markouts := make([]domain.MarkoutTime, 0, len(theoretical))
	for m, total := range theoretical {
		if total == 0 {
			continue
		}
		markouts = append(markouts, m)
	}
	sort.Slice(markouts, func(i, j int) bool { return markoutLess(markouts[i], markouts[j]) })

	markoutTime := make([]string, 0, len(markouts))
	ratio := make([]float64, 0, len(markouts))
	realizedCol := make([]uint64, 0, len(markouts))
	theoreticalCol := make([]uint64, 0, len(markouts))

	for _, m := range markouts {
		total := theoretical[m]
		ratioValue := (float64(realized) / float64(total)) * 100.0
		if ratioValue > 100.0 {
			ratioValue = 100.0
		}
		markoutTime = append(markoutTime, m.String())
		ratio = append(ratio, ratioValue)
		realizedCol = append(realizedCol, realized)
		theoreticalCol = append(theoreticalCol, total)
	}

	record := buildRecord(lvrRatiosSchema, len(markouts),
		stringArray(markoutTime), float64Array(ratio), uint64Array(realizedCol), uint64Array(theoreticalCol),
	)
	defer record.Release()

	return r.writer.WriteArtifact(ctx, "precomputed/ratios/lvr_ratios.parquet", record, writeAttempts)
}

// markoutLess orders markouts ascending by numeric offset, with the
// symbolic BRONTES variant always sorting last.
func markoutLess(a, b domain.MarkoutTime) bool {
	if a == domain.MarkoutBrontes {
		return false
	}
	if b == domain.MarkoutBrontes {
		return true
	}
	av, _ := a.AsFloat()
	bv, _ := b.AsFloat()
	return av < bv
}
