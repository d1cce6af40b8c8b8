package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lumenstudy/lumen/internal/providers"
)

// MergedResult is the single document-level artifact built from all chunk
// results. Pages are sorted ascending by page number with no duplicates.
// Built once and immutable; the caller owns persistence.
type MergedResult struct {
	DocumentTitle  string                 `json:"document_title"`
	TotalPages     int                    `json:"total_pages"`
	Pages          []providers.PageRecord `json:"pages"`
	OverallSummary string                 `json:"overall_summary"`
	LearningPath   []string               `json:"learning_path,omitempty"`
}

// Merge combines per-chunk outputs into one ordered result. Failed chunks
// (nil payload) are skipped; input order does not matter. Merge itself
// never fails: a result with zero pages is the caller's signal that the
// whole batch was unusable.
func Merge(results []ChunkResult, documentTitle string, totalPages int) *MergedResult {
	succeeded := make([]ChunkResult, 0, len(results))
	for _, res := range results {
		if res.Payload != nil {
			succeeded = append(succeeded, res)
		}
	}

	// The scheduler already emits slot order, but merge must not assume it.
	sort.Slice(succeeded, func(i, j int) bool {
		return succeeded[i].Descriptor.Index < succeeded[j].Descriptor.Index
	})

	merged := &MergedResult{
		DocumentTitle: documentTitle,
		TotalPages:    totalPages,
		Pages:         []providers.PageRecord{},
	}

	var summaries []string
	seenPages := make(map[int]struct{})
	seenSteps := make(map[string]struct{})

	for _, res := range succeeded {
		for _, page := range res.Payload.Pages {
			if _, ok := seenPages[page.PageNumber]; ok {
				continue
			}
			seenPages[page.PageNumber] = struct{}{}
			merged.Pages = append(merged.Pages, page)
		}

		if summary := strings.TrimSpace(res.Payload.OverallSummary); summary != "" {
			summaries = append(summaries, fmt.Sprintf("Pages %d-%d: %s",
				res.Descriptor.StartPage, res.Descriptor.EndPage, summary))
		}

		for _, step := range res.Payload.LearningPath {
			if _, ok := seenSteps[step]; ok {
				continue
			}
			seenSteps[step] = struct{}{}
			merged.LearningPath = append(merged.LearningPath, step)
		}
	}

	// Chunks may internally be unordered; restore global page order.
	sort.Slice(merged.Pages, func(i, j int) bool {
		return merged.Pages[i].PageNumber < merged.Pages[j].PageNumber
	})

	if len(summaries) > 0 {
		merged.OverallSummary = strings.Join(summaries, "\n\n")
	} else {
		merged.OverallSummary = fmt.Sprintf("Study guide for %s.", documentTitle)
	}

	return merged
}
