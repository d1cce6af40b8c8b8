// Package document handles uploaded PDF intake and in-process document
// records. The durable relational backend of the full product is an
// external collaborator; Store is the seam in front of it.
package document

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lumenstudy/lumen/internal/pipeline"
)

// Processing states for a document.
const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Document is one uploaded PDF and its processing state.
type Document struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	Filename      string    `json:"filename"`
	PageCount     int       `json:"page_count"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`

	// Path is where the PDF is stored on disk.
	Path string `json:"-"`

	// ContextText is plain text from the opening pages, fed to every
	// chunk request for orientation.
	ContextText string `json:"-"`
}

// Store is a thread-safe in-memory document registry. It also holds the
// merged study-guide result once processing completes.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]*Document
	results map[string]*pipeline.MergedResult
}

// NewStore creates an empty document store.
func NewStore() *Store {
	return &Store{
		docs:    make(map[string]*Document),
		results: make(map[string]*pipeline.MergedResult),
	}
}

// Put registers a document.
func (s *Store) Put(doc *Document) {
	s.mu.Lock()
	s.docs[doc.ID] = doc
	s.mu.Unlock()
}

// Get returns a document by ID.
func (s *Store) Get(id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %q not found", id)
	}
	copied := *doc
	return &copied, nil
}

// List returns all documents, newest first.
func (s *Store) List() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		copied := *doc
		docs = append(docs, &copied)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs
}

// SetStatus updates a document's processing state.
func (s *Store) SetStatus(id, status string) {
	s.mu.Lock()
	if doc, ok := s.docs[id]; ok {
		doc.Status = status
	}
	s.mu.Unlock()
}

// SaveResult stores the merged artifact for a completed document.
func (s *Store) SaveResult(id string, result *pipeline.MergedResult) {
	s.mu.Lock()
	s.results[id] = result
	if doc, ok := s.docs[id]; ok {
		doc.Status = StatusCompleted
	}
	s.mu.Unlock()
}

// Result returns the merged artifact for a document, if processing has
// completed.
func (s *Store) Result(id string) (*pipeline.MergedResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	return result, ok
}
