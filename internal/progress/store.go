// Package progress provides the cross-request progress channel for
// long-running document processing: a keyed store the pipeline writes and
// a polling client reads. The store is an interface so the in-memory map
// can be swapped for a distributed cache in multi-instance deployments.
package progress

import "time"

// Status is the job-level processing state.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Key identifies one processing job.
type Key struct {
	UserID     string
	DocumentID string
}

// Record is a snapshot of processing progress for a polling client.
type Record struct {
	TotalChunks     int       `json:"total_chunks"`
	CompletedChunks int       `json:"completed_chunks"`
	CurrentChunk    int       `json:"current_chunk"`
	ProgressPercent int       `json:"progress_percent"`
	Status          Status    `json:"status"`
	Stage           string    `json:"stage"`
	Message         string    `json:"message"`
	Errors          []string  `json:"errors"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Default is the record reported for unknown keys. A process restart loses
// in-flight progress; clients observing not_started may re-trigger.
func Default() Record {
	return Record{Status: StatusNotStarted, Errors: []string{}}
}

// Store is the keyed progress channel. Implementations must tolerate
// concurrent reads from polling clients while the pipeline writes.
type Store interface {
	// Get returns the record for key, or ok=false if absent.
	Get(key Key) (Record, bool)

	// Set upserts the record for key.
	Set(key Key, rec Record) error

	// Delete removes the record for key.
	Delete(key Key)
}
