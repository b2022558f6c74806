package validator

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/columnar"
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

func seed(t *testing.T, store *memStore, pool domain.Pool, markout domain.MarkoutTime, checkpointTotal uint64, intervalTotal uint64) {
	t.Helper()
	log := zap.NewNop().Sugar()
	writer := columnar.NewWriter(store, log)

	snap := checkpoint.Snapshot{Pool: pool, Markout: markout, RunningTotal: checkpointTotal}
	if err := writer.WriteCheckpoints(context.Background(), []checkpoint.Snapshot{snap}); err != nil {
		t.Fatalf("seeding checkpoint: %v", err)
	}

	interval := domain.IntervalData{
		IntervalID: 0, Pool: pool, Markout: markout,
		TotalLVRCents: intervalTotal, MaxLVRCents: intervalTotal, NonZeroCount: 1, TotalCount: 1,
	}
	if err := writer.WriteIntervals(context.Background(), []domain.IntervalData{interval}, 0, 1); err != nil {
		t.Fatalf("seeding interval: %v", err)
	}
}

func TestValidateAllReportsNoDifferenceWhenTotalsMatch(t *testing.T) {
	store := newMemStore()
	pool := domain.Norm("0xa")
	seed(t, store, pool, domain.MarkoutZero, 500, 500)

	results, err := New(store, zap.NewNop().Sugar()).ValidateAll(context.Background())
	if err != nil {
		t.Fatalf("ValidateAll: %v", err)
	}

	key := keyFor(string(pool), domain.MarkoutZero.String())
	stats, ok := results[key]
	if !ok {
		t.Fatalf("expected a result for key %q", key)
	}
	if stats.Difference != 0 || stats.DifferencePercent != 0 {
		t.Errorf("expected zero difference, got %+v", stats)
	}
}

func TestValidateAllComputesDifferenceAndPercent(t *testing.T) {
	store := newMemStore()
	pool := domain.Norm("0xb")
	seed(t, store, pool, domain.MarkoutZero, 1000, 900)

	results, err := New(store, zap.NewNop().Sugar()).ValidateAll(context.Background())
	if err != nil {
		t.Fatalf("ValidateAll: %v", err)
	}

	key := keyFor(string(pool), domain.MarkoutZero.String())
	stats := results[key]
	if stats.Difference != 100 {
		t.Errorf("expected difference 100, got %d", stats.Difference)
	}
	if stats.DifferencePercent != 10.0 {
		t.Errorf("expected difference percent 10.0, got %f", stats.DifferencePercent)
	}
}

func TestValidateAllHandlesMultipleKeysIndependently(t *testing.T) {
	store := newMemStore()
	seed(t, store, domain.Norm("0xa"), domain.MarkoutZero, 100, 100)
	seed(t, store, domain.Norm("0xb"), domain.MarkoutBrontes, 200, 150)

	results, err := New(store, zap.NewNop().Sugar()).ValidateAll(context.Background())
	if err != nil {
		t.Fatalf("ValidateAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 independent results, got %d", len(results))
	}
}

func TestValidateAllOnEmptyStoreReturnsEmptyResults(t *testing.T) {
	results, err := New(newMemStore(), zap.NewNop().Sugar()).ValidateAll(context.Background())
	if err != nil {
		t.Fatalf("ValidateAll on an empty store should not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results on an empty store, got %d", len(results))
	}
}

func TestCallbackSurfacesNoErrorOnMismatchOnlyOnReadFailure(t *testing.T) {
	store := newMemStore()
	seed(t, store, domain.Norm("0xa"), domain.MarkoutZero, 100, 50) // mismatched, but readable

	cb := Callback(zap.NewNop().Sugar())
	if err := cb(context.Background(), store); err != nil {
		t.Errorf("expected Callback to not surface a discrepancy as an error, got %v", err)
	}
}
