package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/lumenstudy/lumen/internal/providers"
)

// ChunkResult is the settled outcome of one chunk. Exactly one of Payload
// and Error is set. A failed chunk never aborts its siblings; the error is
// carried as data to the merger and the progress record.
type ChunkResult struct {
	Descriptor     ChunkDescriptor             `json:"descriptor"`
	Payload        *providers.StructuredResult `json:"payload,omitempty"`
	Error          string                      `json:"error,omitempty"`
	ProcessingTime time.Duration               `json:"processing_time"`
	Attempts       int                         `json:"attempts"`
}

// Executor runs a single chunk against the generation provider with
// bounded retry and exponential backoff on transient failures.
type Executor struct {
	generator      providers.Generator
	maxRetries     int
	attemptTimeout time.Duration
	logger         *slog.Logger
}

// ExecutorConfig configures a chunk executor.
type ExecutorConfig struct {
	Generator providers.Generator

	// MaxRetries is the total number of attempts per chunk (default 3).
	MaxRetries int

	// AttemptTimeout bounds each individual generation attempt, so a hung
	// provider call cannot stall the batch (default 5m, 0 keeps default).
	AttemptTimeout time.Duration

	Logger *slog.Logger
}

// NewExecutor creates a chunk executor.
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Executor{
		generator:      cfg.Generator,
		maxRetries:     cfg.MaxRetries,
		attemptTimeout: cfg.AttemptTimeout,
		logger:         cfg.Logger,
	}
}

// Execute runs one chunk to a settled ChunkResult. It never returns an
// error: retries are exhausted internally, terminal failures short-circuit,
// and either way the outcome is recorded in the result.
func (e *Executor) Execute(ctx context.Context, fileData []byte, mimeType string, desc ChunkDescriptor, documentTitle, contextText string) ChunkResult {
	start := time.Now()
	log := e.logger.With("chunk", desc.Index, "pages", fmt.Sprintf("%d-%d", desc.StartPage, desc.EndPage))

	prompt := buildChunkPrompt(desc, documentTitle, contextText)

	attempts := 0
	var payload *providers.StructuredResult

	err := retry.Do(
		func() error {
			attempts++

			attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
			defer cancel()

			result, err := e.generator.Generate(attemptCtx, &providers.Request{
				FileData: fileData,
				MimeType: mimeType,
				Prompt:   prompt,
			})
			if err != nil {
				return err
			}

			// Defensive clamp: the generator may ignore the range
			// instruction and annotate pages outside the chunk.
			kept := filterToRange(result.Pages, desc)
			if dropped := len(result.Pages) - len(kept); dropped > 0 {
				log.Debug("dropped out-of-range pages", "dropped", dropped)
			}
			if len(kept) == 0 {
				return fmt.Errorf("no pages within range %d-%d", desc.StartPage, desc.EndPage)
			}
			result.Pages = kept

			payload = result
			return nil
		},
		retry.Attempts(uint(e.maxRetries)),
		retry.RetryIf(providers.IsRetryable),
		retry.Delay(time.Second),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("chunk attempt failed, retrying", "attempt", n+1, "error", err)
		}),
	)

	res := ChunkResult{
		Descriptor:     desc,
		ProcessingTime: time.Since(start),
		Attempts:       attempts,
	}

	if err != nil {
		res.Error = err.Error()
		log.Warn("chunk failed", "attempts", attempts, "error", err)
		return res
	}

	res.Payload = payload
	log.Debug("chunk succeeded", "attempts", attempts, "pages", len(payload.Pages))
	return res
}

// filterToRange keeps only pages inside the descriptor's page range.
func filterToRange(pages []providers.PageRecord, desc ChunkDescriptor) []providers.PageRecord {
	kept := make([]providers.PageRecord, 0, len(pages))
	for _, p := range pages {
		if p.PageNumber >= desc.StartPage && p.PageNumber <= desc.EndPage {
			kept = append(kept, p)
		}
	}
	return kept
}
