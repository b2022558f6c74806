package columnar

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/domain"
	"github.com/0xknxwledge/lvrctl/internal/lvrerr"
	"github.com/0xknxwledge/lvrctl/internal/objstore"
)

// maxConcurrentWrites bounds the number of Parquet writes in flight against
// the object store at any moment.
const maxConcurrentWrites = 8

// maxRetries is the ceiling on write attempts for an intervals/ artifact
// before the write is reported as failed. Checkpoint writes use 3 attempts;
// precomputed artifacts pass their own count to WriteArtifact.
const maxRetries = 20

// Writer serializes record batches to Parquet and persists them under a
// bounded-concurrency semaphore, retrying transient store failures with
// exponential backoff.
type Writer struct {
	store objstore.Store
	log   *zap.SugaredLogger
	sem   *semaphore.Weighted
}

// NewWriter constructs a writer against the given object store.
func NewWriter(store objstore.Store, log *zap.SugaredLogger) *Writer {
	return &Writer{
		store: store,
		log:   log,
		sem:   semaphore.NewWeighted(maxConcurrentWrites),
	}
}

func serializeParquet(record arrow.Record) ([]byte, error) {
	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithBatchSize(1024*1024),
		parquet.WithDataPageSize(1024*1024),
	)

	var buf bytes.Buffer
	writer, err := pqarrow.NewFileWriter(record.Schema(), &buf, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return nil, fmt.Errorf("creating parquet writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		writer.Close()
		return nil, fmt.Errorf("writing record batch: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// putWithRetry persists data at path, retrying on failure with a 2^attempt
// second exponential backoff (matching the teacher's curve exactly) up to
// attempts total tries.
func (w *Writer) putWithRetry(ctx context.Context, path string, data []byte, attempts int) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 2 * time.Second
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxInterval = time.Duration(1<<uint(attempts)) * time.Second
	policy.MaxElapsedTime = 0 // bounded by WithMaxRetries, not wall-clock

	attempt := 0
	operation := func() error {
		attempt++
		err := w.store.Put(ctx, path, data)
		if err == nil {
			return nil
		}
		if attempt >= attempts {
			return backoff.Permanent(err)
		}
		w.log.Warnw("write attempt failed, retrying", "path", path, "attempt", attempt, "err", err)
		return err
	}

	bounded := backoff.WithMaxRetries(policy, uint64(attempts))
	if err := backoff.Retry(operation, backoff.WithContext(bounded, ctx)); err != nil {
		return lvrerr.IOError("writing %s after %d retries: %v", path, attempts, err)
	}
	return nil
}

// WriteArtifact serializes an arbitrary record batch and persists it at
// path, under the shared write semaphore. Used by the precomputation stage
// for every denormalized query-serving artifact that isn't an interval or
// checkpoint row.
func (w *Writer) WriteArtifact(ctx context.Context, path string, record arrow.Record, attempts int) error {
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquiring write semaphore: %w", err)
	}
	defer w.sem.Release(1)

	data, err := serializeParquet(record)
	if err != nil {
		return fmt.Errorf("serializing artifact %s: %w", path, err)
	}
	return w.putWithRetry(ctx, path, data, attempts)
}

// WriteIntervals serializes and persists one intervals/ artifact for a
// chunk's block range. Writes acquire the shared write semaphore, matching
// the teacher's bounded-concurrency discipline.
func (w *Writer) WriteIntervals(ctx context.Context, rows []domain.IntervalData, chunkStart, chunkEnd uint64) error {
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquiring write semaphore: %w", err)
	}
	defer w.sem.Release(1)

	if len(rows) == 0 {
		w.log.Warnw("no interval data to write for chunk", "chunk_start", chunkStart, "chunk_end", chunkEnd)
		return nil
	}

	sorted := append([]domain.IntervalData(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].IntervalID < sorted[j].IntervalID })

	record := IntervalBatch(sorted)
	defer record.Release()

	data, err := serializeParquet(record)
	if err != nil {
		return fmt.Errorf("serializing interval batch for chunk %d-%d: %w", chunkStart, chunkEnd, err)
	}

	path := fmt.Sprintf("intervals/%d_%d.parquet", chunkStart, chunkEnd)
	return w.putWithRetry(ctx, path, data, maxRetries)
}

// WriteCheckpoints serializes and persists one checkpoints/ artifact per
// snapshot, in parallel, bounded by the shared write semaphore.
func (w *Writer) WriteCheckpoints(ctx context.Context, snapshots []checkpoint.Snapshot) error {
	var wg sync.WaitGroup
	errs := make([]error, len(snapshots))

	for i, snap := range snapshots {
		wg.Add(1)
		go func(i int, snap checkpoint.Snapshot) {
			defer wg.Done()
			if err := w.sem.Acquire(ctx, 1); err != nil {
				errs[i] = fmt.Errorf("acquiring write semaphore: %w", err)
				return
			}
			defer w.sem.Release(1)

			record := CheckpointBatch(snap)
			defer record.Release()

			data, err := serializeParquet(record)
			if err != nil {
				errs[i] = fmt.Errorf("serializing checkpoint %s/%s: %w", snap.Pool, snap.Markout, err)
				return
			}

			path := fmt.Sprintf("checkpoints/%s_%s.parquet", snap.Pool, snap.Markout)
			errs[i] = w.putWithRetry(ctx, path, data, 3)
		}(i, snap)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
