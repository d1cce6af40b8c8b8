package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lumenstudy/lumen/internal/providers"
)

func chunkResult(start, end, index, total int, summary string, path ...string) ChunkResult {
	pages := make([]providers.PageRecord, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, providers.PageRecord{
			PageNumber: p,
			Title:      fmt.Sprintf("Page %d", p),
			Summary:    fmt.Sprintf("summary %d", p),
		})
	}
	return ChunkResult{
		Descriptor: ChunkDescriptor{StartPage: start, EndPage: end, Index: index, TotalChunks: total},
		Payload: &providers.StructuredResult{
			Pages:          pages,
			OverallSummary: summary,
			LearningPath:   path,
		},
	}
}

// TestMerge_OutOfOrder checks merge output is identical regardless of the
// order chunk results arrive in.
func TestMerge_OutOfOrder(t *testing.T) {
	// Chunks delivered reversed: 41-47, 21-40, 1-20.
	results := []ChunkResult{
		chunkResult(41, 47, 2, 3, "closing chapters"),
		chunkResult(21, 40, 1, 3, "middle chapters"),
		chunkResult(1, 20, 0, 3, "opening chapters"),
	}

	merged := Merge(results, "Calculus Notes", 47)

	if len(merged.Pages) != 47 {
		t.Fatalf("len(Pages) = %d, want 47", len(merged.Pages))
	}
	for i, p := range merged.Pages {
		if p.PageNumber != i+1 {
			t.Fatalf("Pages[%d].PageNumber = %d, want %d", i, p.PageNumber, i+1)
		}
	}
	if merged.TotalPages != 47 {
		t.Errorf("TotalPages = %d, want 47", merged.TotalPages)
	}

	// Summaries follow chunk order, not arrival order.
	wantSummary := "Pages 1-20: opening chapters\n\nPages 21-40: middle chapters\n\nPages 41-47: closing chapters"
	if merged.OverallSummary != wantSummary {
		t.Errorf("OverallSummary = %q, want %q", merged.OverallSummary, wantSummary)
	}
}

// TestMerge_DuplicatePages checks a page reported by two chunks is kept
// once, first chunk wins.
func TestMerge_DuplicatePages(t *testing.T) {
	first := chunkResult(1, 10, 0, 2, "")
	second := chunkResult(10, 20, 1, 2, "")
	second.Payload.Pages[0].Summary = "duplicate of page 10"

	merged := Merge([]ChunkResult{second, first}, "Doc", 20)

	if len(merged.Pages) != 20 {
		t.Fatalf("len(Pages) = %d, want 20", len(merged.Pages))
	}
	if got := merged.Pages[9].Summary; got != "summary 10" {
		t.Errorf("page 10 summary = %q, want first chunk's record", got)
	}
}

// TestMerge_SkipsFailedChunks checks nil payloads are ignored.
func TestMerge_SkipsFailedChunks(t *testing.T) {
	results := []ChunkResult{
		chunkResult(1, 10, 0, 3, "first"),
		{
			Descriptor: ChunkDescriptor{StartPage: 11, EndPage: 20, Index: 1, TotalChunks: 3},
			Error:      "provider unavailable",
		},
		chunkResult(21, 30, 2, 3, "third"),
	}

	merged := Merge(results, "Doc", 30)

	if len(merged.Pages) != 20 {
		t.Fatalf("len(Pages) = %d, want 20 (failed chunk skipped)", len(merged.Pages))
	}
	if strings.Contains(merged.OverallSummary, "11-20") {
		t.Errorf("OverallSummary mentions failed chunk: %q", merged.OverallSummary)
	}
}

// TestMerge_EmptyBatch checks merging only failures yields zero pages and
// the fallback summary.
func TestMerge_EmptyBatch(t *testing.T) {
	results := []ChunkResult{
		{Descriptor: ChunkDescriptor{StartPage: 1, EndPage: 10, Index: 0, TotalChunks: 1}, Error: "boom"},
	}

	merged := Merge(results, "Empty Doc", 10)

	if len(merged.Pages) != 0 {
		t.Fatalf("len(Pages) = %d, want 0", len(merged.Pages))
	}
	if merged.OverallSummary != "Study guide for Empty Doc." {
		t.Errorf("OverallSummary = %q, want fallback", merged.OverallSummary)
	}
}

// TestMerge_LearningPath checks steps are concatenated in chunk order with
// duplicates removed.
func TestMerge_LearningPath(t *testing.T) {
	results := []ChunkResult{
		chunkResult(11, 20, 1, 2, "", "review limits", "practice derivatives"),
		chunkResult(1, 10, 0, 2, "", "learn notation", "review limits"),
	}

	merged := Merge(results, "Doc", 20)

	want := []string{"learn notation", "review limits", "practice derivatives"}
	if len(merged.LearningPath) != len(want) {
		t.Fatalf("LearningPath = %v, want %v", merged.LearningPath, want)
	}
	for i := range want {
		if merged.LearningPath[i] != want[i] {
			t.Errorf("LearningPath[%d] = %q, want %q", i, merged.LearningPath[i], want[i])
		}
	}
}
