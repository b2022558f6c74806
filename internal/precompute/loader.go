package precompute

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/columnar"
	"github.com/0xknxwledge/lvrctl/internal/domain"
	"github.com/0xknxwledge/lvrctl/internal/objstore"
)

// BlocksPerInterval mirrors processor.BlocksPerDay; duplicated here (rather
// than imported) so this package has no dependency on processor, which
// itself depends on precompute to run the final precomputation pass.
const BlocksPerInterval uint64 = 7200

// intervalRow pairs one interval rollup with the chunk start block parsed
// from its source artifact's path, needed to place it on an absolute block
// axis and to label it with a calendar month.
type intervalRow struct {
	ChunkStart uint64
	domain.IntervalData
}

func loadCheckpointSnapshots(ctx context.Context, store objstore.Store) ([]checkpoint.Snapshot, error) {
	paths, err := store.List(ctx, "checkpoints")
	if err != nil {
		return nil, fmt.Errorf("listing checkpoint artifacts: %w", err)
	}

	snapshots := make([]checkpoint.Snapshot, 0, len(paths))
	for _, path := range paths {
		if !strings.HasSuffix(path, ".parquet") {
			continue
		}
		snap, err := columnar.ReadCheckpoint(ctx, store, path)
		if err != nil {
			return nil, fmt.Errorf("reading checkpoint artifact %s: %w", path, err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func loadIntervalRows(ctx context.Context, store objstore.Store) ([]intervalRow, error) {
	paths, err := store.List(ctx, "intervals")
	if err != nil {
		return nil, fmt.Errorf("listing interval artifacts: %w", err)
	}

	var rows []intervalRow
	for _, path := range paths {
		if !strings.HasSuffix(path, ".parquet") {
			continue
		}
		chunkStart := chunkStartFromPath(path)
		data, err := columnar.ReadIntervals(ctx, store, path)
		if err != nil {
			return nil, fmt.Errorf("reading interval artifact %s: %w", path, err)
		}
		for _, d := range data {
			rows = append(rows, intervalRow{ChunkStart: chunkStart, IntervalData: d})
		}
	}
	return rows, nil
}

// chunkStartFromPath extracts the leading block number from an
// "intervals/{start}_{end}.parquet" path, defaulting to the merge block if
// the name doesn't parse (matching the teacher's own fallback behavior for
// malformed filenames).
func chunkStartFromPath(path string) uint64 {
	name := path
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimSuffix(name, ".parquet")
	parts := strings.SplitN(name, "_", 2)
	if len(parts) == 0 {
		return domain.MergeBlock
	}
	start, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return domain.MergeBlock
	}
	return start
}
