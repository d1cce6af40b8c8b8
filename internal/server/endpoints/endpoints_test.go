package endpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lumenstudy/lumen/internal/document"
	"github.com/lumenstudy/lumen/internal/home"
	"github.com/lumenstudy/lumen/internal/progress"
	"github.com/lumenstudy/lumen/internal/providers"
	"github.com/lumenstudy/lumen/internal/svcctx"
)

// newTestServices builds a service set backed by in-memory stores and a
// mock generator whose results cover any requested page range.
func newTestServices(t *testing.T, pageCount int) *svcctx.Services {
	t.Helper()

	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}

	mock := providers.NewMock()
	mock.ResultFunc = func(req *providers.Request) (*providers.StructuredResult, error) {
		pages := make([]providers.PageRecord, 0, pageCount)
		for i := 1; i <= pageCount; i++ {
			pages = append(pages, providers.PageRecord{
				PageNumber: i,
				Summary:    fmt.Sprintf("summary %d", i),
				Title:      fmt.Sprintf("Page %d", i),
			})
		}
		return &providers.StructuredResult{
			Pages:          pages,
			OverallSummary: "chunk summary",
		}, nil
	}

	registry := providers.NewRegistry()
	registry.Register("mock", mock)

	return &svcctx.Services{
		Registry:  registry,
		Documents: document.NewStore(),
		Progress:  progress.NewMemoryStore(0, nil),
		Home:      h,
	}
}

// newTestHandler registers all endpoints on a mux with the services
// injected into every request context.
func newTestHandler(services *svcctx.Services) http.Handler {
	mux := http.NewServeMux()
	NewRegistry().RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc { return next })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(svcctx.WithServices(r.Context(), services)))
	})
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(newTestServices(t, 1))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q, want ok", resp.Status)
	}
	if len(resp.Generators) != 1 || resp.Generators[0] != "mock" {
		t.Errorf("Generators = %v, want [mock]", resp.Generators)
	}
}

func TestDocumentsEndpoints(t *testing.T) {
	services := newTestServices(t, 5)
	services.Documents.Put(&document.Document{
		ID:        "d1",
		UserID:    "u1",
		Title:     "Notes",
		PageCount: 5,
		Status:    document.StatusUploaded,
		CreatedAt: time.Now(),
	})
	handler := newTestHandler(services)

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/documents", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var docs []document.Document
		if err := json.NewDecoder(rec.Body).Decode(&docs); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(docs) != 1 || docs[0].ID != "d1" {
			t.Errorf("docs = %+v, want one document d1", docs)
		}
	})

	t.Run("get", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/documents/d1", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/documents/nope", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestUploadEndpoint_RejectsNonPDF(t *testing.T) {
	handler := newTestHandler(newTestServices(t, 1))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("not a pdf"))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/documents/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "PDF") {
		t.Errorf("body = %q, want PDF rejection", rec.Body.String())
	}
}

func TestProgressEndpoints(t *testing.T) {
	services := newTestServices(t, 1)
	handler := newTestHandler(services)

	t.Run("unknown key returns not_started", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/progress/u1/d1", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var got progress.Record
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Status != progress.StatusNotStarted {
			t.Errorf("Status = %q, want %q", got.Status, progress.StatusNotStarted)
		}
	})

	t.Run("upsert then get", func(t *testing.T) {
		body, _ := json.Marshal(progress.Record{
			Status:          progress.StatusProcessing,
			TotalChunks:     4,
			CompletedChunks: 2,
			ProgressPercent: 50,
		})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/progress/u1/d1", bytes.NewReader(body))
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("upsert status = %d, want 200", rec.Code)
		}

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/progress/u1/d1", nil))
		var got progress.Record
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.CompletedChunks != 2 || got.Status != progress.StatusProcessing {
			t.Errorf("got = %+v, want stored record", got)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/progress/u1/d1", strings.NewReader("{nope"))
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestProcessEndpoint(t *testing.T) {
	const pageCount = 10

	services := newTestServices(t, pageCount)
	handler := newTestHandler(services)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	services.Documents.Put(&document.Document{
		ID:        "d1",
		UserID:    "u1",
		Title:     "Notes",
		PageCount: pageCount,
		Status:    document.StatusUploaded,
		Path:      path,
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/documents/d1/process", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	// Processing runs in the background; wait for the result to land.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, ok := services.Documents.Result("d1"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for background processing")
		}
		time.Sleep(10 * time.Millisecond)
	}

	doc, _ := services.Documents.Get("d1")
	if doc.Status != document.StatusCompleted {
		t.Errorf("Status = %q, want %q", doc.Status, document.StatusCompleted)
	}

	t.Run("result available", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/documents/d1/result", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "summary 1") {
			t.Errorf("result body missing page summaries: %s", rec.Body.String())
		}
	})

	t.Run("progress recorded", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/progress/u1/d1", nil))
		var got progress.Record
		if err := json.NewDecoder(recorder.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Status != progress.StatusCompleted {
			t.Errorf("Status = %q, want %q", got.Status, progress.StatusCompleted)
		}
	})
}

func TestProcessEndpoint_Missing(t *testing.T) {
	handler := newTestHandler(newTestServices(t, 1))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/documents/nope/process", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestResultEndpoint_NotReady(t *testing.T) {
	services := newTestServices(t, 1)
	services.Documents.Put(&document.Document{ID: "d1", Status: document.StatusUploaded})
	handler := newTestHandler(services)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/documents/d1/result", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
