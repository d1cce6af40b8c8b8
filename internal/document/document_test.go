package document

import (
	"testing"
	"time"

	"github.com/lumenstudy/lumen/internal/home"
	"github.com/lumenstudy/lumen/internal/pipeline"
)

func TestStore_PutGet(t *testing.T) {
	store := NewStore()

	doc := &Document{ID: "d1", Title: "Notes", Status: StatusUploaded}
	store.Put(doc)

	got, err := store.Get("d1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Notes" {
		t.Errorf("Title = %q, want %q", got.Title, "Notes")
	}

	// Get returns a copy; mutating it must not touch the store.
	got.Title = "Mutated"
	again, _ := store.Get("d1")
	if again.Title != "Notes" {
		t.Errorf("store record mutated through Get copy")
	}

	if _, err := store.Get("missing"); err == nil {
		t.Error("Get(missing) error = nil, want not found")
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := NewStore()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	store.Put(&Document{ID: "old", CreatedAt: base})
	store.Put(&Document{ID: "new", CreatedAt: base.Add(time.Hour)})
	store.Put(&Document{ID: "mid", CreatedAt: base.Add(time.Minute)})

	docs := store.List()
	if len(docs) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(docs))
	}
	wantOrder := []string{"new", "mid", "old"}
	for i, want := range wantOrder {
		if docs[i].ID != want {
			t.Errorf("List()[%d].ID = %q, want %q", i, docs[i].ID, want)
		}
	}
}

func TestStore_StatusAndResult(t *testing.T) {
	store := NewStore()
	store.Put(&Document{ID: "d1", Status: StatusUploaded})

	store.SetStatus("d1", StatusProcessing)
	doc, _ := store.Get("d1")
	if doc.Status != StatusProcessing {
		t.Errorf("Status = %q, want %q", doc.Status, StatusProcessing)
	}

	if _, ok := store.Result("d1"); ok {
		t.Error("Result() ok = true before processing finished")
	}

	merged := &pipeline.MergedResult{DocumentTitle: "Notes", TotalPages: 5}
	store.SaveResult("d1", merged)

	got, ok := store.Result("d1")
	if !ok {
		t.Fatal("Result() ok = false after SaveResult")
	}
	if got.TotalPages != 5 {
		t.Errorf("TotalPages = %d, want 5", got.TotalPages)
	}

	doc, _ = store.Get("d1")
	if doc.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q after SaveResult", doc.Status, StatusCompleted)
	}
}

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"linear-algebra-notes.pdf", "linear-algebra-notes"},
		{"/tmp/uploads/Physics 101.PDF", "Physics 101"},
		{"noext", "noext"},
		{".pdf", "Untitled Document"},
	}
	for _, tc := range cases {
		if got := deriveTitle(tc.filename); got != tc.want {
			t.Errorf("deriveTitle(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestIntake_RejectsBadInput(t *testing.T) {
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	store := NewStore()

	t.Run("empty data", func(t *testing.T) {
		_, err := Intake(h, store, IntakeRequest{Filename: "a.pdf"})
		if err == nil {
			t.Error("Intake() error = nil, want rejection of empty data")
		}
	})

	t.Run("not a pdf", func(t *testing.T) {
		_, err := Intake(h, store, IntakeRequest{Filename: "a.pdf", Data: []byte("plain text, not a PDF")})
		if err == nil {
			t.Error("Intake() error = nil, want PDF parse failure")
		}
	})

	if len(store.List()) != 0 {
		t.Errorf("store has %d documents after failed intakes, want 0", len(store.List()))
	}
}
