package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lumenstudy/lumen/internal/progress"
)

// ProgressFunc receives a fresh progress snapshot after every chunk settles.
type ProgressFunc func(rec progress.Record)

// RunChunks fans the planned descriptors out to maxConcurrency workers.
// Each worker claims the next unclaimed descriptor off a shared atomic
// cursor, so slow chunks never hold up a fixed partition. Results are
// written into the slot matching descriptor.Index, and every index is
// written exactly once regardless of completion order.
func RunChunks(ctx context.Context, exec *Executor, fileData []byte, mimeType string, descriptors []ChunkDescriptor, documentTitle, contextText string, maxConcurrency int, onProgress ProgressFunc) []ChunkResult {
	total := len(descriptors)
	results := make([]ChunkResult, total)
	if total == 0 {
		return results
	}

	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	if maxConcurrency > total {
		maxConcurrency = total
	}

	var (
		cursor atomic.Int64

		mu        sync.Mutex
		completed int
		errs      []string
	)

	settle := func(res ChunkResult) {
		mu.Lock()
		completed++
		if res.Error != "" {
			errs = append(errs, fmt.Sprintf("chunk %d (pages %d-%d): %s",
				res.Descriptor.Index, res.Descriptor.StartPage, res.Descriptor.EndPage, res.Error))
		}
		rec := progress.Record{
			TotalChunks:     total,
			CompletedChunks: completed,
			CurrentChunk:    res.Descriptor.Index,
			ProgressPercent: (completed*100 + total/2) / total,
			Status:          progress.StatusProcessing,
			Stage:           "generating",
			Message:         fmt.Sprintf("processed %d of %d chunks", completed, total),
			Errors:          append([]string(nil), errs...),
		}
		mu.Unlock()

		if onProgress != nil {
			onProgress(rec)
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < maxConcurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				idx := int(cursor.Add(1)) - 1
				if idx >= total {
					return
				}

				desc := descriptors[idx]
				res := exec.Execute(ctx, fileData, mimeType, desc, documentTitle, contextText)
				results[desc.Index] = res
				settle(res)
			}
		}()
	}
	wg.Wait()

	return results
}
