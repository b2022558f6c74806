package precompute

import (
	"context"
	"sync"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"go.uber.org/zap"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/columnar"
	"github.com/0xknxwledge/lvrctl/internal/domain"
)

// memStore is a minimal in-process objstore.Store, good enough to round-trip
// real Parquet bytes through the writer/reader stack under test.
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
	cp := append([]byte(nil), data...)
	m.data[path] = cp
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

var (
	wbtcWeth = domain.Norm("0x4585fe77225b41b697c938b018e2ac67ac5a20c0") // ClusterWBTCWETH
	usdcUsdt = domain.Norm("0x3416cf6c708da44db2624d63ea0aaef7113527c6") // ClusterStable
)

func seedFixtures(t *testing.T, store *memStore, writer *columnar.Writer) {
	t.Helper()
	ctx := context.Background()

	snapshots := []checkpoint.Snapshot{
		{
			Pool:              wbtcWeth,
			Markout:           domain.MarkoutBrontes,
			MaxLVRValue:       5000,
			MaxLVRBlock:       16200000,
			RunningTotal:      10000,
			Buckets:           [domain.BucketCount]uint64{10, 5, 3, 1, 0, 0, 0},
			LastUpdatedBlock:  16200500,
			NonZeroProportion: 0.45,
			Percentile25Cents: 100,
			MedianCents:       300,
			Percentile75Cents: 700,
			NonZeroSamples:    9,
			MinNonZeroCents:   5,
			MeanDollars:       12.5,
			StdDevDollars:     4.2,
			Skewness:          0.8,
			Kurtosis:          1.1,
		},
		{
			Pool:              wbtcWeth,
			Markout:           domain.MarkoutZero,
			MaxLVRValue:       3000,
			MaxLVRBlock:       16200100,
			RunningTotal:      6000,
			Buckets:           [domain.BucketCount]uint64{8, 4, 2, 0, 0, 0, 0},
			LastUpdatedBlock:  16200500,
			NonZeroProportion: 0.43,
			Percentile25Cents: 80,
			MedianCents:       250,
			Percentile75Cents: 600,
			NonZeroSamples:    6,
			MinNonZeroCents:   4,
		},
		{
			Pool:              usdcUsdt,
			Markout:           domain.MarkoutBrontes,
			MaxLVRValue:       1000,
			MaxLVRBlock:       16185400,
			RunningTotal:      4000,
			Buckets:           [domain.BucketCount]uint64{20, 2, 1, 0, 0, 0, 0},
			LastUpdatedBlock:  16200500,
			NonZeroProportion: 0.13,
			Percentile25Cents: 50,
			MedianCents:       90,
			Percentile75Cents: 150,
			NonZeroSamples:    3,
			MinNonZeroCents:   2,
		},
	}
	if err := writer.WriteCheckpoints(ctx, snapshots); err != nil {
		t.Fatalf("seeding checkpoints: %v", err)
	}

	rows := []domain.IntervalData{
		{IntervalID: 0, Pool: wbtcWeth, Markout: domain.MarkoutBrontes, TotalLVRCents: 4000, MaxLVRCents: 2000, NonZeroCount: 5, TotalCount: 10},
		{IntervalID: 1, Pool: wbtcWeth, Markout: domain.MarkoutBrontes, TotalLVRCents: 6000, MaxLVRCents: 5000, NonZeroCount: 4, TotalCount: 10},
		{IntervalID: 0, Pool: usdcUsdt, Markout: domain.MarkoutBrontes, TotalLVRCents: 4000, MaxLVRCents: 1000, NonZeroCount: 3, TotalCount: 10},
		{IntervalID: 2, Pool: wbtcWeth, Markout: domain.MarkoutZero, TotalLVRCents: 0, MaxLVRCents: 0, NonZeroCount: 0, TotalCount: 10},
	}
	chunkStart := domain.MergeBlock
	chunkEnd := chunkStart + 216000
	if err := writer.WriteIntervals(ctx, rows, chunkStart, chunkEnd); err != nil {
		t.Fatalf("seeding intervals: %v", err)
	}
	_ = store
}

func runPrecompute(t *testing.T) *memStore {
	t.Helper()
	store := newMemStore()
	log := zap.NewNop().Sugar()
	writer := columnar.NewWriter(store, log)
	seedFixtures(t, store, writer)

	if err := New(store, writer, log).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return store
}

func readArtifact(t *testing.T, store *memStore, path string) (arrow.Table, func()) {
	t.Helper()
	tbl, err := columnar.ReadTable(context.Background(), store, path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return tbl, tbl.Release
}

func TestRunWritesEveryArtifact(t *testing.T) {
	store := runPrecompute(t)

	want := []string{
		"precomputed/running_totals/totals.parquet",
		"precomputed/running_totals/daily_time_series.parquet",
		"precomputed/pool_metrics/totals.parquet",
		"precomputed/pool_metrics/max_lvr.parquet",
		"precomputed/pool_metrics/non_zero.parquet",
		"precomputed/distributions/histograms.parquet",
		"precomputed/distributions/percentile_bands.parquet",
		"precomputed/distributions/quartile_plots.parquet",
		"precomputed/distributions/metrics.parquet",
		"precomputed/clusters/proportions.parquet",
		"precomputed/clusters/histograms.parquet",
		"precomputed/clusters/monthly_totals.parquet",
		"precomputed/clusters/non_zero.parquet",
		"precomputed/ratios/lvr_ratios.parquet",
	}
	for _, path := range want {
		data, err := store.Get(context.Background(), path)
		if err != nil {
			t.Fatalf("Get(%s): %v", path, err)
		}
		if len(data) == 0 {
			t.Errorf("expected non-empty artifact at %s", path)
		}
	}
}

func TestWritePoolTotalsReflectsCheckpointState(t *testing.T) {
	store := runPrecompute(t)
	tbl, release := readArtifact(t, store, "precomputed/pool_metrics/totals.parquet")
	defer release()

	pairAddress := columnar.StringColumn(tbl, 0)
	markoutTime := columnar.StringColumn(tbl, 2)
	totalLVR := columnar.Uint64Column(tbl, 3)

	found := false
	for i := range pairAddress {
		if pairAddress[i] == string(wbtcWeth) && markoutTime[i] == domain.MarkoutBrontes.String() {
			found = true
			if totalLVR[i] != 10000 {
				t.Errorf("expected running total 10000, got %d", totalLVR[i])
			}
		}
	}
	if !found {
		t.Fatalf("expected a row for %s/%s", wbtcWeth, domain.MarkoutBrontes)
	}
}

func TestWriteLVRRatiosCapsAtOneHundred(t *testing.T) {
	store := runPrecompute(t)
	tbl, release := readArtifact(t, store, "precomputed/ratios/lvr_ratios.parquet")
	defer release()

	markoutTime := columnar.StringColumn(tbl, 0)
	ratio := columnar.Float64Column(tbl, 1)

	if len(markoutTime) != 1 {
		t.Fatalf("expected exactly one theoretical markout with a non-zero total, got %d rows", len(markoutTime))
	}
	if markoutTime[0] != domain.MarkoutZero.String() {
		t.Errorf("expected markout %s, got %s", domain.MarkoutZero, markoutTime[0])
	}
	// realized = 10000 + 4000 = 14000, theoretical (MARKOUT_ZERO) = 6000, so
	// the raw ratio exceeds 100% and must be clamped.
	if ratio[0] != 100.0 {
		t.Errorf("expected ratio clamped to 100, got %f", ratio[0])
	}
}

func TestWriteClusterProportionsGroupsByCluster(t *testing.T) {
	store := runPrecompute(t)
	tbl, release := readArtifact(t, store, "precomputed/clusters/proportions.parquet")
	defer release()

	clusterName := columnar.StringColumn(tbl, 0)
	markoutTime := columnar.StringColumn(tbl, 1)
	proportion := columnar.Float64Column(tbl, 3)

	for i := range clusterName {
		if clusterName[i] == string(domain.ClusterWBTCWETH) && markoutTime[i] == domain.MarkoutBrontes.String() {
			// wbtc_weth contributes 10000 of the 14000 (10000+4000) BRONTES
			// total spread across both clusters represented in the fixture.
			want := 10000.0 / 14000.0
			if diff := proportion[i] - want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected proportion %f, got %f", want, proportion[i])
			}
			return
		}
	}
	t.Fatalf("expected a wbtc_weth/brontes row")
}

func TestWriteRunningTotalsSkipsZeroIntervalsAndAccumulates(t *testing.T) {
	store := runPrecompute(t)
	tbl, release := readArtifact(t, store, "precomputed/running_totals/totals.parquet")
	defer release()

	markoutTime := columnar.StringColumn(tbl, 1)
	pairAddress := columnar.StringColumn(tbl, 2)
	runningTotal := columnar.Uint64Column(tbl, 3)

	var seenZeroMarkout bool
	var lastWbtcBrontesTotal uint64
	for i := range markoutTime {
		if pairAddress[i] == string(wbtcWeth) && markoutTime[i] == domain.MarkoutZero.String() {
			seenZeroMarkout = true
		}
		if pairAddress[i] == string(wbtcWeth) && markoutTime[i] == domain.MarkoutBrontes.String() {
			lastWbtcBrontesTotal = runningTotal[i]
		}
	}
	if seenZeroMarkout {
		t.Errorf("expected the zero-non_zero_count interval to be skipped entirely")
	}
	if lastWbtcBrontesTotal != 10000 {
		t.Errorf("expected cumulative total 10000 (4000+6000), got %d", lastWbtcBrontesTotal)
	}
}

func TestWriteDistributionMetricsCarriesMomentFields(t *testing.T) {
	store := runPrecompute(t)
	tbl, release := readArtifact(t, store, "precomputed/distributions/metrics.parquet")
	defer release()

	pairAddress := columnar.StringColumn(tbl, 0)
	markoutTime := columnar.StringColumn(tbl, 2)
	mean := columnar.Float64Column(tbl, 3)

	for i := range pairAddress {
		if pairAddress[i] == string(wbtcWeth) && markoutTime[i] == domain.MarkoutBrontes.String() {
			if mean[i] != 12.5 {
				t.Errorf("expected mean 12.5, got %f", mean[i])
			}
			return
		}
	}
	t.Fatalf("expected a wbtc_weth/brontes distribution metrics row")
}

func TestBucketRangeBoundaries(t *testing.T) {
	if start := bucketRangeStart(0); start != 0 {
		t.Errorf("expected zero bucket to start at 0, got %f", start)
	}
	end, ok := bucketRangeEnd(0)
	if !ok || end != 0 {
		t.Errorf("expected zero bucket to end at 0 (ok=true), got end=%f ok=%v", end, ok)
	}
	_, ok = bucketRangeEnd(domain.BucketCount - 1)
	if ok {
		t.Errorf("expected the final bucket to have no upper bound")
	}
}

func TestMarkoutLessSortsBrontesLast(t *testing.T) {
	if !markoutLess(domain.MarkoutNegative2, domain.MarkoutBrontes) {
		t.Errorf("expected any numeric markout to sort before BRONTES")
	}
	if markoutLess(domain.MarkoutBrontes, domain.MarkoutZero) {
		t.Errorf("expected BRONTES to never sort before a numeric markout")
	}
	if !markoutLess(domain.MarkoutNegative2, domain.MarkoutPositive2) {
		t.Errorf("expected ascending numeric order")
	}
}

func TestChunkStartFromPath(t *testing.T) {
	cases := map[string]uint64{
		"intervals/15537393_15753393.parquet": 15537393,
		"intervals/malformed.parquet":         domain.MergeBlock,
		"intervals/":                          domain.MergeBlock,
	}
	for path, want := range cases {
		if got := chunkStartFromPath(path); got != want {
			t.Errorf("chunkStartFromPath(%q) = %d, want %d", path, got, want)
		}
	}
}
