package providers

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

const MockName = "mock"

// Mock is a Generator for testing.
type Mock struct {
	// Configurable behavior
	Latency    time.Duration
	ShouldFail bool
	FailStatus int // Status code for failures (default 503)
	FailFirst  int // Fail the first N requests, then succeed (0 = honor ShouldFail)
	Result     *StructuredResult
	ResultFunc func(req *Request) (*StructuredResult, error)

	// State
	requestCount atomic.Int64
}

// NewMock creates a mock generator with sensible defaults.
func NewMock() *Mock {
	return &Mock{
		Latency: time.Millisecond,
		Result: &StructuredResult{
			DocumentTitle:  "Mock Document",
			TotalPages:     1,
			Pages:          []PageRecord{{PageNumber: 1, Summary: "mock page"}},
			OverallSummary: "mock summary",
		},
	}
}

// Name returns the provider identifier.
func (m *Mock) Name() string {
	return MockName
}

// RequestCount returns the number of Generate calls made so far.
func (m *Mock) RequestCount() int {
	return int(m.requestCount.Load())
}

// Generate returns the configured result or failure.
func (m *Mock) Generate(ctx context.Context, req *Request) (*StructuredResult, error) {
	count := m.requestCount.Add(1)

	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Latency):
		}
	}

	fail := m.ShouldFail
	if m.FailFirst > 0 {
		fail = count <= int64(m.FailFirst)
	}
	if fail {
		status := m.FailStatus
		if status == 0 {
			status = http.StatusServiceUnavailable
		}
		return nil, &Error{
			Provider:   MockName,
			StatusCode: status,
			Message:    fmt.Sprintf("mock failure (request %d)", count),
		}
	}

	if m.ResultFunc != nil {
		return m.ResultFunc(req)
	}

	// Return a copy so callers cannot mutate shared state.
	result := *m.Result
	result.Provider = MockName
	return &result, nil
}

// Verify interface
var _ Generator = (*Mock)(nil)
