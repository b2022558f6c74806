package processor

import "sync/atomic"

// Progress is a thread-safe view of a running or completed ingestion, read
// concurrently through Processor.Progress while the processing loop updates
// it.
type Progress struct {
	currentChunk   atomic.Int64
	totalChunks    atomic.Int64
	processedBlocks atomic.Int64
	totalBlocks    atomic.Int64
	isRunning      atomic.Bool
}

// ProgressSnapshot is the read-only view exposed to API consumers.
type ProgressSnapshot struct {
	CurrentChunk    int64   `json:"current_chunk"`
	TotalChunks     int64   `json:"total_chunks"`
	ProcessedBlocks int64   `json:"processed_blocks"`
	TotalBlocks     int64   `json:"total_blocks"`
	PercentComplete float64 `json:"percent_complete"`
	Running         bool    `json:"running"`
}

func (p *Progress) start(totalChunks, totalBlocks int64) {
	p.totalChunks.Store(totalChunks)
	p.totalBlocks.Store(totalBlocks)
	p.currentChunk.Store(0)
	p.processedBlocks.Store(0)
	p.isRunning.Store(true)
}

func (p *Progress) advance(chunkIdx int64, blocksInChunk int64) {
	p.currentChunk.Store(chunkIdx + 1)
	p.processedBlocks.Add(blocksInChunk)
}

func (p *Progress) finish() {
	p.isRunning.Store(false)
}

// Snapshot returns the current progress state.
func (p *Progress) Snapshot() ProgressSnapshot {
	total := p.totalBlocks.Load()
	processed := p.processedBlocks.Load()
	pct := 0.0
	if total > 0 {
		pct = (float64(processed) / float64(total)) * 100.0
	}
	return ProgressSnapshot{
		CurrentChunk:    p.currentChunk.Load(),
		TotalChunks:     p.totalChunks.Load(),
		ProcessedBlocks: processed,
		TotalBlocks:     total,
		PercentComplete: pct,
		Running:         p.isRunning.Load(),
	}
}
