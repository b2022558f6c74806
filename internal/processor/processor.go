// Package processor drives the chunked batch ingestion: fan out to both
// upstream feeds, unify and zero-fill their samples, fold them into
// per-(pool, markout) checkpoints, aggregate per-interval rollups, and
// persist both as columnar artifacts — retrying whole chunks on failure and
// triggering the precomputation pass once every chunk has landed.
package processor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/0xknxwledge/lvrctl/internal/checkpoint"
	"github.com/0xknxwledge/lvrctl/internal/columnar"
	"github.com/0xknxwledge/lvrctl/internal/domain"
	"github.com/0xknxwledge/lvrctl/internal/fetch"
	"github.com/0xknxwledge/lvrctl/internal/lvrerr"
	"github.com/0xknxwledge/lvrctl/internal/objstore"
	"github.com/0xknxwledge/lvrctl/internal/precompute"
)

// BlocksPerDay is the block cadence of one ingestion interval.
const BlocksPerDay uint64 = 7200

// IntervalsPerFile is the number of BlocksPerDay-sized intervals batched
// into a single chunk before a write.
const IntervalsPerFile uint64 = 30

// BlocksPerChunk is the block width of one processing chunk.
const BlocksPerChunk uint64 = BlocksPerDay * IntervalsPerFile

// maxChunkRetries bounds how many times a single chunk is retried before
// the whole run fails.
const maxChunkRetries = 20

// ValidationFunc runs the post-chunk cross-check against the object store;
// Processor calls it (when set) after each chunk successfully writes.
type ValidationFunc func(ctx context.Context, store objstore.Store) error

// Processor drives end-to-end ingestion over [StartBlock, EndBlock).
type Processor struct {
	StartBlock uint64
	EndBlock   uint64

	aurora  fetch.IndexedFetcher
	brontes fetch.EventFetcher
	store   objstore.Store
	writer  *columnar.Writer
	log     *zap.SugaredLogger

	checkpoints *checkpoint.Store
	progress    Progress

	validate ValidationFunc
}

// New constructs a processor wired to concrete fetchers and an object
// store. validate may be nil to skip post-chunk validation.
func New(
	startBlock, endBlock uint64,
	aurora fetch.IndexedFetcher,
	brontes fetch.EventFetcher,
	store objstore.Store,
	log *zap.SugaredLogger,
	validate ValidationFunc,
) *Processor {
	return &Processor{
		StartBlock:  startBlock,
		EndBlock:    endBlock,
		aurora:      aurora,
		brontes:     brontes,
		store:       store,
		writer:      columnar.NewWriter(store, log),
		log:         log,
		checkpoints: checkpoint.NewStore(),
		validate:    validate,
	}
}

// Progress returns a point-in-time view of run progress.
func (p *Processor) Progress() ProgressSnapshot {
	return p.progress.Snapshot()
}

// ProcessBlocks runs the full chunked ingestion loop, finalizes every
// checkpoint, and triggers the precomputation pass on success.
func (p *Processor) ProcessBlocks(ctx context.Context) error {
	p.log.Infow("starting block processing", "start_block", p.StartBlock, "end_block", p.EndBlock)

	totalBlocks := p.EndBlock - p.StartBlock
	totalChunks := (totalBlocks + BlocksPerChunk - 1) / BlocksPerChunk
	p.progress.start(int64(totalChunks), int64(totalBlocks))

	for chunkIdx := uint64(0); chunkIdx < totalChunks; chunkIdx++ {
		chunkStart := p.StartBlock + chunkIdx*BlocksPerChunk
		chunkEnd := chunkStart + BlocksPerChunk
		if chunkEnd > p.EndBlock {
			chunkEnd = p.EndBlock
		}

		if err := p.processChunkWithRetries(ctx, chunkIdx, chunkStart, chunkEnd, totalChunks); err != nil {
			return err
		}
		p.progress.advance(int64(chunkIdx), int64(chunkEnd-chunkStart))

		p.log.Infow("chunk processed",
			"chunk", chunkIdx+1, "total_chunks", totalChunks,
			"percent", p.progress.Snapshot().PercentComplete)

		if p.validate != nil {
			if err := p.validate(ctx, p.store); err != nil {
				p.log.Errorw("validation failed", "chunk", chunkIdx+1, "err", err)
				return err
			}
			p.log.Infow("validation passed", "chunk", chunkIdx+1)
		}
	}

	p.log.Infow("finalizing checkpoints")
	p.checkpoints.FinalizeAll()
	if err := p.writeCheckpoints(ctx); err != nil {
		return fmt.Errorf("writing finalized checkpoints: %w", err)
	}
	p.log.Infow("finished processing all blocks", "start_block", p.StartBlock, "end_block", p.EndBlock)

	if err := precompute.New(p.store, p.writer, p.log).Run(ctx); err != nil {
		return fmt.Errorf("running precomputation: %w", err)
	}

	p.progress.finish()
	return nil
}

func (p *Processor) processChunkWithRetries(ctx context.Context, chunkIdx, chunkStart, chunkEnd, totalChunks uint64) error {
	var lastErr error
	for attempt := 1; attempt <= maxChunkRetries; attempt++ {
		p.log.Infow("processing chunk", "chunk", chunkIdx+1, "total_chunks", totalChunks,
			"blocks", fmt.Sprintf("%d-%d", chunkStart, chunkEnd), "attempt", attempt)

		err := p.processChunk(ctx, chunkStart, chunkEnd)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= maxChunkRetries {
			p.log.Errorw("chunk failed after max attempts", "chunk", chunkIdx+1, "attempts", maxChunkRetries, "err", err)
			return fmt.Errorf("chunk %d-%d failed after %d attempts: %w", chunkStart, chunkEnd, maxChunkRetries, err)
		}

		delay := time.Duration(5*attempt) * time.Second
		p.log.Warnw("chunk failed, retrying", "chunk", chunkIdx+1, "attempt", attempt, "err", err, "retry_in", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func (p *Processor) processChunk(ctx context.Context, chunkStart, chunkEnd uint64) error {
	auroraResults, brontesResults, err := p.fetchData(ctx, chunkStart, chunkEnd)
	if err != nil {
		return err
	}

	intervals, updates, err := p.processResults(chunkStart, chunkEnd, auroraResults, brontesResults)
	if err != nil {
		return err
	}

	if len(intervals) > 0 {
		if err := p.writer.WriteIntervals(ctx, intervals, chunkStart, chunkEnd); err != nil {
			return fmt.Errorf("writing interval data for chunk %d-%d: %w", chunkStart, chunkEnd, err)
		}
	}

	for _, u := range updates {
		p.applyCheckpointUpdate(u)
	}
	if err := p.writeCheckpoints(ctx); err != nil {
		return fmt.Errorf("writing checkpoints for chunk %d-%d: %w", chunkStart, chunkEnd, err)
	}

	return nil
}

// auroraBatch is one markout index's full result set for the chunk.
type auroraBatch struct {
	markout domain.MarkoutTime
	details []fetch.RawDetail
}

func (p *Processor) fetchData(ctx context.Context, chunkStart, chunkEnd uint64) ([]auroraBatch, []fetch.RawAnalysis, error) {
	type auroraResult struct {
		batch auroraBatch
		err   error
	}

	auroraCh := make(chan auroraResult, len(domain.NumericMarkouts))
	for _, m := range domain.NumericMarkouts {
		m := m
		go func() {
			idx, _ := m.Index()
			details, err := p.aurora.FetchDetails(ctx, uint64(idx), chunkStart, chunkEnd)
			auroraCh <- auroraResult{batch: auroraBatch{markout: m, details: details}, err: err}
		}()
	}

	brontesCh := make(chan struct {
		rows []fetch.RawAnalysis
		err  error
	}, 1)
	go func() {
		rows, err := p.brontes.FetchAnalysis(ctx, chunkStart, chunkEnd)
		brontesCh <- struct {
			rows []fetch.RawAnalysis
			err  error
		}{rows, err}
	}()

	auroraResults := make([]auroraBatch, 0, len(domain.NumericMarkouts))
	for range domain.NumericMarkouts {
		r := <-auroraCh
		if r.err != nil {
			return nil, nil, fmt.Errorf("fetching indexed-feed data: %w", r.err)
		}
		auroraResults = append(auroraResults, r.batch)
	}

	brontesResult := <-brontesCh
	if brontesResult.err != nil {
		return nil, nil, fmt.Errorf("fetching event-feed data: %w", brontesResult.err)
	}

	return auroraResults, brontesResult.rows, nil
}

// checkpointUpdate is the unified sample set destined for one (pool,
// markout) checkpoint, not yet applied.
type checkpointUpdate struct {
	pool       domain.Pool
	markout    domain.MarkoutTime
	samples    []domain.UnifiedSample
	chunkStart uint64
	chunkEnd   uint64
}

func toCents(value float64) (uint64, error) {
	cents := value * 100.0
	if cents < 0 || cents > 1.8e19 { // well within uint64 range but guards overflow on round
		return 0, lvrerr.ProcessingError("LVR value %v out of range for uint64 cents representation", value)
	}
	return uint64(roundToNearest(cents)), nil
}

func roundToNearest(x float64) float64 {
	if x < 0 {
		return -roundToNearest(-x)
	}
	whole := float64(int64(x))
	if x-whole >= 0.5 {
		return whole + 1
	}
	return whole
}

func (p *Processor) processResults(
	chunkStart, chunkEnd uint64,
	auroraResults []auroraBatch,
	brontesResults []fetch.RawAnalysis,
) ([]domain.IntervalData, []checkpointUpdate, error) {
	unified := make(map[string][]domain.UnifiedSample)

	keyOf := func(pool domain.Pool, markout domain.MarkoutTime) string {
		return string(pool) + "|" + markout.String()
	}

	for _, batch := range auroraResults {
		for _, poolAddr := range domain.AllPools {
			poolName := domain.Name(poolAddr)
			if poolName == "" {
				continue
			}

			var samples []domain.UnifiedSample
			for _, detail := range batch.details {
				lvr, ok := fetch.ParseLVRDetails(detail.Details, poolName)
				if !ok {
					continue
				}
				cents, err := toCents(lvr)
				if err != nil {
					continue
				}
				samples = append(samples, domain.UnifiedSample{
					BlockNumber: detail.BlockNumber,
					Cents:       cents,
					Source:      domain.SourceAurora,
				})
			}
			if len(samples) > 0 {
				unified[keyOf(poolAddr, batch.markout)] = samples
			}
		}
	}

	brontesByPool := make(map[domain.Pool][]domain.UnifiedSample)
	for _, r := range brontesResults {
		if r.BlockNumber < chunkStart || r.BlockNumber >= chunkEnd {
			continue
		}
		cents, err := toCents(r.LVR)
		if err != nil {
			continue
		}
		pool := domain.Norm(r.PoolAddress)
		brontesByPool[pool] = append(brontesByPool[pool], domain.UnifiedSample{
			BlockNumber: r.BlockNumber,
			Cents:       cents,
			Source:      domain.SourceBrontes,
		})
	}

	for _, pool := range domain.BrontesPools {
		events := brontesByPool[pool]
		byBlock := make(map[uint64]uint64, len(events))
		for _, e := range events {
			byBlock[e.BlockNumber] = e.Cents
		}

		complete := make([]domain.UnifiedSample, 0, chunkEnd-chunkStart)
		for block := chunkStart; block < chunkEnd; block++ {
			cents := byBlock[block]
			complete = append(complete, domain.UnifiedSample{
				BlockNumber: block,
				Cents:       cents,
				Source:      domain.SourceBrontes,
			})
		}
		unified[keyOf(pool, domain.MarkoutBrontes)] = complete
	}

	keys := make([]string, 0, len(unified))
	for k := range unified {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var intervals []domain.IntervalData
	var updates []checkpointUpdate

	for _, k := range keys {
		samples := unified[k]
		pool, markout := splitKey(k)

		updates = append(updates, checkpointUpdate{
			pool:       pool,
			markout:    markout,
			samples:    samples,
			chunkStart: chunkStart,
			chunkEnd:   chunkEnd,
		})

		rows := p.calculateIntervalMetrics(chunkStart, chunkEnd, pool, markout, samples)
		intervals = append(intervals, rows...)
	}

	return intervals, updates, nil
}

func splitKey(k string) (domain.Pool, domain.MarkoutTime) {
	for i := len(k) - 1; i >= 0; i-- {
		if k[i] == '|' {
			pool := domain.Pool(k[:i])
			markoutStr := k[i+1:]
			if markoutStr == "brontes" {
				return pool, domain.MarkoutBrontes
			}
			for _, m := range domain.NumericMarkouts {
				if m.String() == markoutStr {
					return pool, m
				}
			}
		}
	}
	return domain.Pool(k), domain.MarkoutZero
}

func (p *Processor) applyCheckpointUpdate(u checkpointUpdate) {
	deploymentBlock := domain.DeploymentBlock(u.pool)
	effectiveStart := max64(u.chunkStart, deploymentBlock)
	if effectiveStart >= u.chunkEnd {
		return
	}

	cp := p.checkpoints.GetOrCreate(u.pool, u.markout)

	byBlock := make(map[uint64]uint64, len(u.samples))
	for _, s := range u.samples {
		if s.BlockNumber >= effectiveStart && s.BlockNumber < u.chunkEnd {
			byBlock[s.BlockNumber] = s.Cents
		}
	}

	for block := effectiveStart; block < u.chunkEnd; block++ {
		cents := byBlock[block] // 0 if absent
		cp.UpdateStats(block, cents)
	}
}

// calculateIntervalMetrics aggregates one (pool, markout)'s samples for a
// chunk into per-BlocksPerDay-interval rollups, respecting deployment
// blocks that fall mid-chunk.
func (p *Processor) calculateIntervalMetrics(
	chunkStart, chunkEnd uint64,
	pool domain.Pool,
	markout domain.MarkoutTime,
	samples []domain.UnifiedSample,
) []domain.IntervalData {
	deploymentBlock := domain.DeploymentBlock(pool)
	effectiveChunkStart := max64(chunkStart, deploymentBlock)
	if effectiveChunkStart >= chunkEnd {
		return nil
	}

	byBlock := make(map[uint64]uint64, len(samples))
	for _, s := range samples {
		if s.BlockNumber >= effectiveChunkStart && s.BlockNumber < chunkEnd {
			byBlock[s.BlockNumber] = s.Cents
		}
	}

	type intervalAgg struct {
		totalCount   uint64
		nonZeroCount uint64
		totalCents   uint64
		maxCents     uint64
	}
	aggs := make(map[uint64]*intervalAgg)

	for block := effectiveChunkStart; block < chunkEnd; block++ {
		intervalID := (block - chunkStart) / BlocksPerDay

		agg, ok := aggs[intervalID]
		if !ok {
			agg = &intervalAgg{}
			aggs[intervalID] = agg
		}
		agg.totalCount++

		cents := byBlock[block]
		if cents > 0 {
			agg.nonZeroCount++
			agg.totalCents += cents
			if cents > agg.maxCents {
				agg.maxCents = cents
			}
		}
	}

	ids := make([]uint64, 0, len(aggs))
	for id := range aggs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.IntervalData, 0, len(ids))
	for _, id := range ids {
		agg := aggs[id]
		out = append(out, domain.IntervalData{
			IntervalID:    id,
			Pool:          pool,
			Markout:       markout,
			TotalLVRCents: agg.totalCents,
			MaxLVRCents:   agg.maxCents,
			NonZeroCount:  agg.nonZeroCount,
			TotalCount:    agg.totalCount,
		})
	}
	return out
}

func (p *Processor) writeCheckpoints(ctx context.Context) error {
	snapshots := p.checkpoints.Snapshots()
	p.log.Infow("writing checkpoints", "count", len(snapshots))
	if err := p.writer.WriteCheckpoints(ctx, snapshots); err != nil {
		return err
	}
	p.log.Infow("wrote checkpoints", "count", len(snapshots))
	return nil
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
