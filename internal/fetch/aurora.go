package fetch

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/0xknxwledge/lvrctl/internal/config"
	"github.com/0xknxwledge/lvrctl/internal/lvrerr"
)

// AuroraFetcher retrieves indexed-feed rows, holding one connection pool per
// markout index since each index is queried independently and repeatedly
// across chunks.
type AuroraFetcher struct {
	cfg   config.AuroraConfig
	log   *zap.SugaredLogger
	mu    sync.Mutex
	pools map[uint64]*sql.DB

	reconnectAttempts int
	reconnectDelay    time.Duration
}

// NewAuroraFetcher constructs a fetcher against the given configuration. No
// connection is opened until the first FetchDetails call.
func NewAuroraFetcher(cfg config.AuroraConfig, log *zap.SugaredLogger) *AuroraFetcher {
	return &AuroraFetcher{
		cfg:               cfg,
		log:               log,
		pools:             make(map[uint64]*sql.DB),
		reconnectAttempts: MaxAttempts,
		reconnectDelay:    5 * time.Second,
	}
}

func (f *AuroraFetcher) poolFor(index uint64) (*sql.DB, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if db, ok := f.pools[index]; ok {
		return db, false, nil
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?timeout=%ds&tls=skip-verify",
		f.cfg.User, f.cfg.Password, f.cfg.Host, f.cfg.Port, f.cfg.Database, f.cfg.ConnectTimeout)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, false, lvrerr.DatabaseError("opening aurora pool for index %d: %v", index, err)
	}
	db.SetMaxOpenConns(12)
	db.SetMaxIdleConns(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, false, lvrerr.DatabaseError("verifying aurora connection for index %d: %v", index, err)
	}

	f.pools[index] = db
	return db, true, nil
}

// FetchDetails retrieves every row for (index, block in (chunkStart,
// chunkEnd]), sub-batching in 7200-block windows and retrying each failed
// batch up to reconnectAttempts times before giving up entirely.
func (f *AuroraFetcher) FetchDetails(ctx context.Context, index uint64, chunkStart, chunkEnd uint64) ([]RawDetail, error) {
	f.log.Infow("starting indexed-feed fetch", "index", index, "chunk_start", chunkStart, "chunk_end", chunkEnd)

	var all []RawDetail
	currentStart := chunkStart
	attempts := 0
	totalBatches := (chunkEnd - chunkStart + BatchSize - 1) / BatchSize
	completed := uint64(0)

	for currentStart < chunkEnd {
		attempts++
		currentEnd := currentStart + BatchSize
		if currentEnd > chunkEnd {
			currentEnd = chunkEnd
		}

		db, created, err := f.poolFor(index)
		if err != nil {
			return nil, err
		}
		if created {
			f.log.Infow("created aurora pool", "index", index)
		}

		batch, err := f.fetchBatch(ctx, db, index, currentStart, currentEnd)
		if err != nil {
			if attempts >= f.reconnectAttempts {
				return nil, lvrerr.DatabaseError(
					"fetching indexed-feed batch after %d attempts (index=%d, blocks=%d-%d): %v",
					f.reconnectAttempts, index, currentStart, currentEnd, err)
			}
			f.log.Warnw("indexed-feed batch failed, retrying", "attempt", attempts, "index", index, "err", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.reconnectDelay):
			}
			continue
		}

		all = append(all, batch...)
		currentStart = currentEnd
		attempts = 0
		completed++
		f.log.Infow("completed indexed-feed batch", "completed", completed, "total", totalBatches, "index", index, "records", len(batch))
	}

	f.log.Infow("completed indexed-feed fetch", "index", index, "total_records", len(all))
	return all, nil
}

func (f *AuroraFetcher) fetchBatch(ctx context.Context, db *sql.DB, index, batchStart, batchEnd uint64) ([]RawDetail, error) {
	const query = `
		SELECT blockNumber, details, ` + "`index`" + `
		FROM t_lvr
		WHERE blockNumber > ? AND blockNumber <= ?
		AND details IS NOT NULL
		AND ` + "`index`" + ` = ?
		ORDER BY blockNumber ASC, ` + "`index`" + ` ASC
	`

	rows, err := db.QueryContext(ctx, query, batchStart, batchEnd, index)
	if err != nil {
		return nil, fmt.Errorf("executing indexed-feed query: %w", err)
	}
	defer rows.Close()

	var out []RawDetail
	for rows.Next() {
		var d RawDetail
		if err := rows.Scan(&d.BlockNumber, &d.Details, &d.Index); err != nil {
			return nil, fmt.Errorf("scanning indexed-feed row: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating indexed-feed rows: %w", err)
	}
	return out, nil
}

// Close releases every pooled connection.
func (f *AuroraFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var first error
	for _, db := range f.pools {
		if err := db.Close(); err != nil && first == nil {
			first = err
		}
	}
	f.pools = make(map[uint64]*sql.DB)
	return first
}
