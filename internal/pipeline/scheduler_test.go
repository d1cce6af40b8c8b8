package pipeline

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lumenstudy/lumen/internal/progress"
	"github.com/lumenstudy/lumen/internal/providers"
)

// TestRunChunks_SlotOrder checks results land in descriptor order even when
// chunks complete out of order.
func TestRunChunks_SlotOrder(t *testing.T) {
	mock := coverageMock(100)
	inner := mock.ResultFunc
	mock.ResultFunc = func(req *providers.Request) (*providers.StructuredResult, error) {
		// Jitter so completion order differs from claim order.
		time.Sleep(time.Duration(rand.Intn(10)) * time.Millisecond)
		return inner(req)
	}

	exec := NewExecutor(ExecutorConfig{Generator: mock})
	descriptors := PlanChunks(100, 20)

	results := RunChunks(context.Background(), exec, []byte("%PDF"), "application/pdf", descriptors, "Doc", "", 4, nil)

	if len(results) != 5 {
		t.Fatalf("len(results) = %d, want 5", len(results))
	}
	for i, res := range results {
		if res.Descriptor.Index != i {
			t.Errorf("results[%d].Descriptor.Index = %d, want %d", i, res.Descriptor.Index, i)
		}
		if res.Error != "" {
			t.Errorf("results[%d].Error = %q, want success", i, res.Error)
		}
	}
}

// TestRunChunks_BoundedConcurrency checks no more than maxConcurrency
// chunks are in flight at once.
func TestRunChunks_BoundedConcurrency(t *testing.T) {
	const maxConcurrency = 3

	var inFlight, peak atomic.Int64
	mock := coverageMock(200)
	inner := mock.ResultFunc
	mock.ResultFunc = func(req *providers.Request) (*providers.StructuredResult, error) {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return inner(req)
	}

	exec := NewExecutor(ExecutorConfig{Generator: mock})
	descriptors := PlanChunks(200, 20)

	RunChunks(context.Background(), exec, []byte("%PDF"), "application/pdf", descriptors, "Doc", "", maxConcurrency, nil)

	if got := peak.Load(); got > maxConcurrency {
		t.Errorf("peak in-flight = %d, want <= %d", got, maxConcurrency)
	}
}

// TestRunChunks_PartialFailure checks one failed chunk does not abort the
// rest of the batch.
func TestRunChunks_PartialFailure(t *testing.T) {
	mock := coverageMock(100)
	inner := mock.ResultFunc
	mock.ResultFunc = func(req *providers.Request) (*providers.StructuredResult, error) {
		result, err := inner(req)
		if err != nil {
			return nil, err
		}
		// Starve the chunk covering pages 41-60 of pages; the executor
		// rejects an empty range as a terminal failure.
		kept := result.Pages[:0]
		for _, p := range result.Pages {
			if p.PageNumber < 41 || p.PageNumber > 60 {
				kept = append(kept, p)
			}
		}
		result.Pages = kept
		return result, nil
	}

	exec := NewExecutor(ExecutorConfig{Generator: mock, MaxRetries: 1})
	descriptors := PlanChunks(100, 20)

	results := RunChunks(context.Background(), exec, []byte("%PDF"), "application/pdf", descriptors, "Doc", "", 2, nil)

	var failed, succeeded int
	for _, res := range results {
		if res.Error != "" {
			failed++
			if res.Descriptor.StartPage != 41 {
				t.Errorf("failed chunk starts at %d, want 41", res.Descriptor.StartPage)
			}
		} else {
			succeeded++
		}
	}
	if failed != 1 || succeeded != 4 {
		t.Errorf("failed = %d, succeeded = %d, want 1 and 4", failed, succeeded)
	}
}

// TestRunChunks_ProgressSnapshots checks every settled chunk produces one
// snapshot and completed counts 1..total each appear exactly once.
func TestRunChunks_ProgressSnapshots(t *testing.T) {
	mock := coverageMock(100)

	exec := NewExecutor(ExecutorConfig{Generator: mock})
	descriptors := PlanChunks(100, 20)

	var mu sync.Mutex
	var snapshots []progress.Record
	onProgress := func(rec progress.Record) {
		mu.Lock()
		snapshots = append(snapshots, rec)
		mu.Unlock()
	}

	RunChunks(context.Background(), exec, []byte("%PDF"), "application/pdf", descriptors, "Doc", "", 3, onProgress)

	if len(snapshots) != 5 {
		t.Fatalf("len(snapshots) = %d, want 5 (one per chunk)", len(snapshots))
	}
	// Delivery order may race, but each completed count appears once.
	seen := make(map[int]int)
	for _, rec := range snapshots {
		seen[rec.CompletedChunks]++
		if rec.TotalChunks != 5 {
			t.Errorf("TotalChunks = %d, want 5", rec.TotalChunks)
		}
		wantPct := (rec.CompletedChunks*100 + 2) / 5
		if rec.ProgressPercent != wantPct {
			t.Errorf("ProgressPercent = %d for %d completed, want %d",
				rec.ProgressPercent, rec.CompletedChunks, wantPct)
		}
		if rec.Status != progress.StatusProcessing {
			t.Errorf("Status = %q, want %q", rec.Status, progress.StatusProcessing)
		}
	}
	for i := 1; i <= 5; i++ {
		if seen[i] != 1 {
			t.Errorf("completed count %d seen %d times, want 1", i, seen[i])
		}
	}
}

// TestRunChunks_Empty checks an empty plan returns without hanging.
func TestRunChunks_Empty(t *testing.T) {
	exec := NewExecutor(ExecutorConfig{Generator: coverageMock(1)})
	results := RunChunks(context.Background(), exec, nil, "application/pdf", nil, "Doc", "", 3, nil)
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}
