package checkpoint

import (
	"sync"
	"testing"

	"github.com/0xknxwledge/lvrctl/internal/domain"
)

func TestUpdateStatsAccumulatesRunningTotal(t *testing.T) {
	cp := New(domain.Norm("0xpool"), domain.MarkoutZero)
	cp.UpdateStats(100, 500)
	cp.UpdateStats(101, 250)

	snap := cp.Snapshot()
	if snap.RunningTotal != 750 {
		t.Errorf("expected running total 750, got %d", snap.RunningTotal)
	}
}

func TestUpdateStatsTracksMaxAndItsBlock(t *testing.T) {
	cp := New(domain.Norm("0xpool"), domain.MarkoutZero)
	cp.UpdateStats(10, 100)
	cp.UpdateStats(11, 900)
	cp.UpdateStats(12, 300)

	snap := cp.Snapshot()
	if snap.MaxLVRValue != 900 || snap.MaxLVRBlock != 11 {
		t.Errorf("expected max 900 at block 11, got %d at block %d", snap.MaxLVRValue, snap.MaxLVRBlock)
	}
}

func TestUpdateStatsZeroValueOnlyIncrementsBucketZero(t *testing.T) {
	cp := New(domain.Norm("0xpool"), domain.MarkoutZero)
	cp.UpdateStats(1, 0)
	cp.UpdateStats(2, 0)

	snap := cp.Snapshot()
	if snap.Buckets[0] != 2 {
		t.Errorf("expected bucket 0 count 2, got %d", snap.Buckets[0])
	}
	for i := 1; i < domain.BucketCount; i++ {
		if snap.Buckets[i] != 0 {
			t.Errorf("expected bucket %d empty, got %d", i, snap.Buckets[i])
		}
	}
	if snap.NonZeroProportion != 0.0 {
		t.Errorf("expected non-zero proportion 0.0, got %f", snap.NonZeroProportion)
	}
}

func TestUpdateStatsClassifiesNonZeroIntoCorrectBucket(t *testing.T) {
	cp := New(domain.Norm("0xpool"), domain.MarkoutZero)
	cp.UpdateStats(1, 50)   // $0.50 -> bucket 1, (0,10]
	cp.UpdateStats(2, 5000) // $50.00 -> bucket 2, (10,100]

	snap := cp.Snapshot()
	if snap.Buckets[1] != 1 || snap.Buckets[2] != 1 {
		t.Errorf("expected one sample in bucket 1 and one in bucket 2, got %+v", snap.Buckets)
	}
	if snap.NonZeroProportion != 1.0 {
		t.Errorf("expected non-zero proportion 1.0, got %f", snap.NonZeroProportion)
	}
}

func TestSnapshotNonZeroSamplesExcludesZeroObservations(t *testing.T) {
	cp := New(domain.Norm("0xpool"), domain.MarkoutZero)
	cp.UpdateStats(1, 0)
	cp.UpdateStats(2, 0)
	cp.UpdateStats(3, 100)

	snap := cp.Snapshot()
	if snap.NonZeroSamples != 1 {
		t.Errorf("expected 1 non-zero sample fed to the digest, got %d", snap.NonZeroSamples)
	}
}

func TestSnapshotMomentsReflectNonZeroMagnitudesOnly(t *testing.T) {
	cp := New(domain.Norm("0xpool"), domain.MarkoutZero)
	cp.UpdateStats(1, 0)
	cp.UpdateStats(2, 200) // $2.00
	cp.UpdateStats(3, 400) // $4.00

	snap := cp.Snapshot()
	if snap.MeanDollars != 3.0 {
		t.Errorf("expected mean of non-zero magnitudes 3.0, got %f", snap.MeanDollars)
	}
}

func TestLastUpdatedBlockTracksHighWaterMarkOutOfOrder(t *testing.T) {
	cp := New(domain.Norm("0xpool"), domain.MarkoutZero)
	cp.UpdateStats(50, 1)
	cp.UpdateStats(20, 2) // out of order, should not regress the high-water mark
	cp.UpdateStats(40, 3)

	if snap := cp.Snapshot(); snap.LastUpdatedBlock != 50 {
		t.Errorf("expected last updated block to stay at the high-water mark 50, got %d", snap.LastUpdatedBlock)
	}
}

func TestConcurrentUpdateStatsIsRaceFree(t *testing.T) {
	cp := New(domain.Norm("0xpool"), domain.MarkoutZero)

	var wg sync.WaitGroup
	const goroutines = 20
	const perGoroutine = 100
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(base uint64) {
			defer wg.Done()
			for i := uint64(0); i < perGoroutine; i++ {
				cp.UpdateStats(base+i, i+1)
			}
		}(uint64(g * perGoroutine))
	}
	wg.Wait()

	snap := cp.Snapshot()
	var want uint64
	for i := uint64(0); i < perGoroutine; i++ {
		want += (i + 1) * goroutines
	}
	if snap.RunningTotal != want {
		t.Errorf("expected running total %d after concurrent updates, got %d", want, snap.RunningTotal)
	}
}

func TestFinalizeDoesNotPanicOnEmptyCheckpoint(t *testing.T) {
	cp := New(domain.Norm("0xpool"), domain.MarkoutZero)
	cp.Finalize()
	_ = cp.Snapshot()
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	cases := map[float64]float64{
		0.4:  0,
		0.5:  1,
		1.5:  2,
		-0.5: -1,
		-1.5: -2,
		2.49: 2,
	}
	for in, want := range cases {
		if got := roundHalfAwayFromZero(in); got != want {
			t.Errorf("roundHalfAwayFromZero(%f) = %f, want %f", in, got, want)
		}
	}
}
