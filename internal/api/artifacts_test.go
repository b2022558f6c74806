package api

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

func TestReadArtifactRowsRoundTrips(t *testing.T) {
	store := newMemStore()
	writer := columnar.NewWriter(store, zap.NewNop().Sugar())

	pool := domain.Norm("0x4585fe77225b41b697c938b018e2ac67ac5a20c0")
	snap := checkpoint.Snapshot{
		Pool:         pool,
		Markout:      domain.MarkoutBrontes,
		RunningTotal: 4200,
		MeanDollars:  9.5,
	}
	if err := writer.WriteCheckpoints(context.Background(), []checkpoint.Snapshot{snap}); err != nil {
		t.Fatalf("seeding checkpoint: %v", err)
	}

	path := "checkpoints/" + string(pool) + "_" + domain.MarkoutBrontes.String() + ".parquet"
	rows, err := readArtifactRows(context.Background(), store, path)
	if err != nil {
		t.Fatalf("readArtifactRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["pair_address"] != string(pool) {
		t.Errorf("expected pair_address %s, got %v", pool, rows[0]["pair_address"])
	}
	if rows[0]["running_total"] != uint64(4200) {
		t.Errorf("expected running_total 4200, got %v", rows[0]["running_total"])
	}
	if rows[0]["mean_dollars"] != 9.5 {
		t.Errorf("expected mean_dollars 9.5, got %v", rows[0]["mean_dollars"])
	}
}

func TestFilterRowsIsCaseInsensitiveAndEmptyIsNoop(t *testing.T) {
	rows := []map[string]any{
		{"pool_address": "0xAAA", "value": uint64(1)},
		{"pool_address": "0xbbb", "value": uint64(2)},
	}

	all := filterRows(rows, "pool_address", "")
	if len(all) != 2 {
		t.Fatalf("expected empty filter to be a no-op, got %d rows", len(all))
	}

	matched := filterRows(rows, "pool_address", "0xaaa")
	if len(matched) != 1 || matched[0]["value"] != uint64(1) {
		t.Errorf("expected a single case-insensitive match, got %+v", matched)
	}

	none := filterRows(rows, "pool_address", "0xccc")
	if len(none) != 0 {
		t.Errorf("expected no matches, got %+v", none)
	}
}
