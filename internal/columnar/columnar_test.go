package columnar

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/domain"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Put(_ context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[path] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Get(_ context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[path], nil
}

func (m *memStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p := range m.data {
		if len(p) >= len(prefix) && p[:len(prefix)] == prefix {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestIntervalBatchRoundTripsThroughParquet(t *testing.T) {
	store := newMemStore()
	writer := NewWriter(store, zap.NewNop().Sugar())

	rows := []domain.IntervalData{
		{IntervalID: 2, Pool: domain.Norm("0xb"), Markout: domain.MarkoutZero, TotalLVRCents: 200, MaxLVRCents: 150, NonZeroCount: 1, TotalCount: 1},
		{IntervalID: 1, Pool: domain.Norm("0xa"), Markout: domain.MarkoutZero, TotalLVRCents: 100, MaxLVRCents: 100, NonZeroCount: 1, TotalCount: 2},
	}

	if err := writer.WriteIntervals(context.Background(), rows, 10, 20); err != nil {
		t.Fatalf("WriteIntervals: %v", err)
	}

	got, err := ReadIntervals(context.Background(), store, "intervals/10_20.parquet")
	if err != nil {
		t.Fatalf("ReadIntervals: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	// WriteIntervals sorts by interval_id before persisting.
	if got[0].IntervalID != 1 || got[1].IntervalID != 2 {
		t.Errorf("expected rows sorted by interval_id, got order %d, %d", got[0].IntervalID, got[1].IntervalID)
	}
	if got[0].Pool != domain.Norm("0xa") || got[0].TotalLVRCents != 100 {
		t.Errorf("unexpected row 0: %+v", got[0])
	}
}

func TestWriteIntervalsSkipsEmptyChunk(t *testing.T) {
	store := newMemStore()
	writer := NewWriter(store, zap.NewNop().Sugar())

	if err := writer.WriteIntervals(context.Background(), nil, 10, 20); err != nil {
		t.Fatalf("WriteIntervals with no rows should not error: %v", err)
	}
	if data, _ := store.Get(context.Background(), "intervals/10_20.parquet"); data != nil {
		t.Errorf("expected no artifact written for an empty chunk")
	}
}

func TestCheckpointBatchRoundTripsAllFields(t *testing.T) {
	store := newMemStore()
	writer := NewWriter(store, zap.NewNop().Sugar())

	snap := checkpoint.Snapshot{
		Pool:              domain.Norm("0xpool"),
		Markout:           domain.MarkoutPositive1,
		MaxLVRValue:       9000,
		MaxLVRBlock:       123,
		RunningTotal:      45000,
		Buckets:           [domain.BucketCount]uint64{1, 2, 3, 4, 5, 6, 7},
		LastUpdatedBlock:  999,
		NonZeroProportion: 0.75,
		Percentile25Cents: 10,
		MedianCents:       20,
		Percentile75Cents: 30,
		NonZeroSamples:    28,
		MinNonZeroCents:   5,
		MeanDollars:       12.5,
		VarianceDollars:   3.2,
		StdDevDollars:     1.8,
		Skewness:          0.4,
		Kurtosis:          -0.1,
	}

	if err := writer.WriteCheckpoints(context.Background(), []checkpoint.Snapshot{snap}); err != nil {
		t.Fatalf("WriteCheckpoints: %v", err)
	}

	path := "checkpoints/" + string(snap.Pool) + "_" + snap.Markout.String() + ".parquet"
	got, err := ReadCheckpoint(context.Background(), store, path)
	if err != nil {
		t.Fatalf("ReadCheckpoint: %v", err)
	}

	if got.Pool != snap.Pool || got.Markout != snap.Markout {
		t.Errorf("pool/markout mismatch: got %v/%v, want %v/%v", got.Pool, got.Markout, snap.Pool, snap.Markout)
	}
	if got.RunningTotal != snap.RunningTotal || got.MaxLVRValue != snap.MaxLVRValue {
		t.Errorf("running total/max mismatch: %+v", got)
	}
	if got.Buckets != snap.Buckets {
		t.Errorf("bucket mismatch: got %+v, want %+v", got.Buckets, snap.Buckets)
	}
	if got.MeanDollars != snap.MeanDollars || got.Kurtosis != snap.Kurtosis {
		t.Errorf("moment field mismatch: %+v", got)
	}
}

func TestWriteCheckpointsPersistsEachSnapshotIndependently(t *testing.T) {
	store := newMemStore()
	writer := NewWriter(store, zap.NewNop().Sugar())

	snaps := []checkpoint.Snapshot{
		{Pool: domain.Norm("0xa"), Markout: domain.MarkoutZero, RunningTotal: 1},
		{Pool: domain.Norm("0xb"), Markout: domain.MarkoutBrontes, RunningTotal: 2},
	}
	if err := writer.WriteCheckpoints(context.Background(), snaps); err != nil {
		t.Fatalf("WriteCheckpoints: %v", err)
	}

	paths, err := store.List(context.Background(), "checkpoints/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 checkpoint artifacts, got %d", len(paths))
	}
}

func TestWriteArtifactPersistsArbitraryRecord(t *testing.T) {
	store := newMemStore()
	writer := NewWriter(store, zap.NewNop().Sugar())

	record := CheckpointBatch(checkpoint.Snapshot{Pool: domain.Norm("0xa"), Markout: domain.MarkoutZero})
	defer record.Release()

	if err := writer.WriteArtifact(context.Background(), "custom/path.parquet", record, 3); err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}
	if data, _ := store.Get(context.Background(), "custom/path.parquet"); len(data) == 0 {
		t.Errorf("expected non-empty serialized artifact")
	}
}

func TestReadTableExposesRawColumns(t *testing.T) {
	store := newMemStore()
	writer := NewWriter(store, zap.NewNop().Sugar())

	rows := []domain.IntervalData{
		{IntervalID: 1, Pool: domain.Norm("0xa"), Markout: domain.MarkoutZero, TotalLVRCents: 100, MaxLVRCents: 100, NonZeroCount: 1, TotalCount: 1},
	}
	if err := writer.WriteIntervals(context.Background(), rows, 1, 2); err != nil {
		t.Fatalf("WriteIntervals: %v", err)
	}

	tbl, err := ReadTable(context.Background(), store, "intervals/1_2.parquet")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	defer tbl.Release()

	if tbl.NumRows() != 1 {
		t.Fatalf("expected 1 row, got %d", tbl.NumRows())
	}
	if got := Uint64Column(tbl, 0); got[0] != 1 {
		t.Errorf("expected interval_id 1, got %d", got[0])
	}
	if got := StringColumn(tbl, 1); got[0] != "0xa" {
		t.Errorf("expected pair_address 0xa, got %s", got[0])
	}
}
