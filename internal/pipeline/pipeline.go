package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumenstudy/lumen/internal/progress"
	"github.com/lumenstudy/lumen/internal/providers"
)

// ErrNoPages is returned when every chunk failed to produce pages. Partial
// success merges fine; total failure must be rejected, not returned as a
// silently empty result.
var ErrNoPages = errors.New("no pages were generated for any chunk")

// Config holds pipeline tuning knobs.
type Config struct {
	// MaxConcurrency is the worker budget for chunk fan-out (default 3).
	MaxConcurrency int

	// MaxRetries is the attempt budget per chunk (default 3).
	MaxRetries int

	// AttemptTimeout bounds each generation attempt.
	AttemptTimeout time.Duration
}

// Processor runs the chunked pipeline for large documents.
type Processor struct {
	generator providers.Generator
	store     progress.Store
	cfg       Config
	logger    *slog.Logger
}

// NewProcessor creates a pipeline processor. store may be nil when no
// progress reporting is wanted (e.g. in tests).
func NewProcessor(generator providers.Generator, store progress.Store, cfg Config, logger *slog.Logger) *Processor {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		generator: generator,
		store:     store,
		cfg:       cfg,
		logger:    logger,
	}
}

// ProcessRequest describes one large-document processing job.
type ProcessRequest struct {
	FileData      []byte
	MimeType      string
	DocumentTitle string
	TotalPages    int
	FileSizeBytes int64
	ContextText   string

	UserID     string
	DocumentID string

	// OnProgress, if set, receives every progress snapshot in addition to
	// the progress store.
	OnProgress ProgressFunc
}

// ProcessLargeDocument runs the full pipeline: select a chunk size, plan
// chunks, fan them out under the worker budget, and merge the settled
// results into one ordered artifact. Individual chunk failures are reported
// through progress but only a batch with zero usable pages is an error.
func (p *Processor) ProcessLargeDocument(ctx context.Context, req ProcessRequest) (*MergedResult, error) {
	if req.TotalPages < 1 {
		return nil, fmt.Errorf("total pages must be >= 1, got %d", req.TotalPages)
	}
	if req.MimeType == "" {
		req.MimeType = "application/pdf"
	}

	key := progress.Key{UserID: req.UserID, DocumentID: req.DocumentID}
	log := p.logger.With("document_id", req.DocumentID, "user_id", req.UserID)

	chunkSize := SelectChunkSize(req.TotalPages, req.FileSizeBytes)
	descriptors := PlanChunks(req.TotalPages, chunkSize)

	log.Info("starting chunked processing",
		"total_pages", req.TotalPages,
		"file_size_bytes", req.FileSizeBytes,
		"chunk_size", chunkSize,
		"chunks", len(descriptors),
		"max_concurrency", p.cfg.MaxConcurrency)

	p.report(key, progress.Record{
		TotalChunks: len(descriptors),
		Status:      progress.StatusStarting,
		Stage:       "planning",
		Message:     fmt.Sprintf("processing %d pages in %d chunks", req.TotalPages, len(descriptors)),
		Errors:      []string{},
	})

	exec := NewExecutor(ExecutorConfig{
		Generator:      p.generator,
		MaxRetries:     p.cfg.MaxRetries,
		AttemptTimeout: p.cfg.AttemptTimeout,
		Logger:         log,
	})

	onProgress := func(rec progress.Record) {
		p.report(key, rec)
		if req.OnProgress != nil {
			req.OnProgress(rec)
		}
	}

	results := RunChunks(ctx, exec, req.FileData, req.MimeType, descriptors, req.DocumentTitle, req.ContextText, p.cfg.MaxConcurrency, onProgress)

	merged := Merge(results, req.DocumentTitle, req.TotalPages)

	final := progress.Record{
		TotalChunks:     len(descriptors),
		CompletedChunks: len(descriptors),
		ProgressPercent: 100,
		Errors:          collectErrors(results),
	}

	if len(merged.Pages) == 0 {
		final.Status = progress.StatusError
		final.Stage = "failed"
		final.Message = "no pages could be generated from the document"
		p.report(key, final)
		if req.OnProgress != nil {
			req.OnProgress(final)
		}
		log.Error("chunked processing produced no pages", "chunks", len(descriptors))
		return nil, ErrNoPages
	}

	final.Status = progress.StatusCompleted
	final.Stage = "merged"
	final.Message = fmt.Sprintf("generated %d pages from %d chunks", len(merged.Pages), len(descriptors))
	p.report(key, final)
	if req.OnProgress != nil {
		req.OnProgress(final)
	}

	log.Info("chunked processing complete",
		"pages", len(merged.Pages),
		"failed_chunks", len(final.Errors))

	return merged, nil
}

// report writes a progress snapshot. Progress reporting is best-effort and
// never fails the pipeline.
func (p *Processor) report(key progress.Key, rec progress.Record) {
	if p.store == nil {
		return
	}
	if err := p.store.Set(key, rec); err != nil {
		p.logger.Warn("failed to record progress", "document_id", key.DocumentID, "error", err)
	}
}

func collectErrors(results []ChunkResult) []string {
	errs := []string{}
	for _, res := range results {
		if res.Error != "" {
			errs = append(errs, fmt.Sprintf("chunk %d (pages %d-%d): %s",
				res.Descriptor.Index, res.Descriptor.StartPage, res.Descriptor.EndPage, res.Error))
		}
	}
	return errs
}
