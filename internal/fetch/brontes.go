package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"github.com/0xknxwledge/lvrctl/internal/config"
	"github.com/0xknxwledge/lvrctl/internal/domain"
	"github.com/0xknxwledge/lvrctl/internal/lvrerr"
)

// BrontesFetcher retrieves event-feed rows over a block range, aggregating
// profit plus revenue per pool per block across the allow-listed pool
// universe for a fixed analysis run.
type BrontesFetcher struct {
	cfg  config.BrontesConfig
	log  *zap.SugaredLogger
	conn clickhouse.Conn

	reconnectAttempts int
	reconnectDelay    time.Duration
}

// brontesRunID identifies the analysis run whose results this pipeline
// consumes; it is fixed for the lifetime of the dataset being ingested.
const brontesRunID = 1000

// NewBrontesFetcher constructs a fetcher against the given configuration.
// The underlying connection is opened lazily on first use.
func NewBrontesFetcher(cfg config.BrontesConfig, log *zap.SugaredLogger) *BrontesFetcher {
	return &BrontesFetcher{
		cfg:               cfg,
		log:               log,
		reconnectAttempts: MaxAttempts,
		reconnectDelay:    5 * time.Second,
	}
}

func (f *BrontesFetcher) connection(ctx context.Context) (clickhouse.Conn, error) {
	if f.conn != nil {
		return f.conn, nil
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", f.cfg.Host, f.cfg.Port)},
		Auth: clickhouse.Auth{
			Username: f.cfg.User,
			Password: f.cfg.Password,
		},
	})
	if err != nil {
		return nil, lvrerr.DatabaseError("opening brontes connection: %v", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, lvrerr.DatabaseError("verifying brontes connection: %v", err)
	}
	f.conn = conn
	return conn, nil
}

// FetchAnalysis retrieves every aggregated (pool, block) row for block in
// (chunkStart, chunkEnd], sub-batching in 7200-block windows and retrying
// each failed batch up to reconnectAttempts times.
func (f *BrontesFetcher) FetchAnalysis(ctx context.Context, chunkStart, chunkEnd uint64) ([]RawAnalysis, error) {
	f.log.Infow("starting event-feed fetch", "chunk_start", chunkStart, "chunk_end", chunkEnd)

	var all []RawAnalysis
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

		conn, err := f.connection(ctx)
		if err != nil {
			return nil, err
		}

		batch, err := f.fetchBatch(ctx, conn, currentStart, currentEnd)
		if err != nil {
			if attempts >= f.reconnectAttempts {
				return nil, lvrerr.DatabaseError(
					"fetching event-feed batch after %d attempts (blocks=%d-%d): %v",
					f.reconnectAttempts, currentStart, currentEnd, err)
			}
			f.log.Warnw("event-feed batch failed, retrying", "attempt", attempts, "err", err)
			f.conn = nil // force reconnect on retry
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
		f.log.Infow("completed event-feed batch", "completed", completed, "total", totalBatches, "records", len(batch))
	}

	f.log.Infow("completed event-feed fetch", "total_records", len(all))
	return all, nil
}

func (f *BrontesFetcher) fetchBatch(ctx context.Context, conn clickhouse.Conn, batchStart, batchEnd uint64) ([]RawAnalysis, error) {
	pools := make([]string, len(domain.BrontesPools))
	for i, p := range domain.BrontesPools {
		pools[i] = string(p)
	}

	const query = `
		SELECT
			p.profit AS pool_address,
			block_number,
			SUM(p.profit_amt + p.revenue_amt) AS lvr
		FROM brontes.block_analysis
		ARRAY JOIN cex_dex_arbed_pool_all AS p
		WHERE p.profit IN (?)
			AND run_id = ?
			AND p.profit != '0x0000000000000000000000000000000000000000'
			AND p.revenue != '0x0000000000000000000000000000000000000000'
			AND block_number > ?
			AND block_number <= ?
		GROUP BY block_number, pool_address
		ORDER BY block_number ASC
	`

	rows, err := conn.Query(ctx, query, pools, brontesRunID, batchStart, batchEnd)
	if err != nil {
		return nil, fmt.Errorf("executing event-feed query: %w", err)
	}
	defer rows.Close()

	var out []RawAnalysis
	for rows.Next() {
		var r RawAnalysis
		if err := rows.Scan(&r.PoolAddress, &r.BlockNumber, &r.LVR); err != nil {
			return nil, fmt.Errorf("scanning event-feed row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event-feed rows: %w", err)
	}
	return out, nil
}

// Close releases the underlying connection, if any.
func (f *BrontesFetcher) Close() error {
	if f.conn == nil {
		return nil
	}
	err := f.conn.Close()
	f.conn = nil
	return err
}
