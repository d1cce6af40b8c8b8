package document

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/lumenstudy/lumen/internal/home"
)

// contextPageLimit bounds how many opening pages feed the context text.
const contextPageLimit = 5

// contextCharLimit bounds the extracted context text.
const contextCharLimit = 4000

// IntakeRequest contains the parameters for accepting an uploaded PDF.
type IntakeRequest struct {
	UserID   string
	Filename string
	Title    string // optional, derived from filename if empty
	Data     []byte
	Logger   *slog.Logger
}

// Intake validates an uploaded PDF, persists it under the home directory,
// and returns the registered document record.
func Intake(homeDir *home.Dir, store *Store, req IntakeRequest) (*Document, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	if len(req.Data) == 0 {
		return nil, fmt.Errorf("no file data provided")
	}

	pageCount, err := api.PageCount(bytes.NewReader(req.Data), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("PDF contains no pages")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = deriveTitle(req.Filename)
	}

	docID := uuid.New().String()

	path := homeDir.UploadPath(docID)
	if err := os.WriteFile(path, req.Data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to store PDF: %w", err)
	}

	contextText, err := extractContextText(req.Data)
	if err != nil {
		// Context text is an enrichment, not a requirement; scanned PDFs
		// with no text layer land here.
		log.Debug("context text extraction failed", "document_id", docID, "error", err)
	}

	doc := &Document{
		ID:            docID,
		UserID:        req.UserID,
		Title:         title,
		Filename:      req.Filename,
		PageCount:     pageCount,
		FileSizeBytes: int64(len(req.Data)),
		Status:        StatusUploaded,
		CreatedAt:     time.Now().UTC(),
		Path:          path,
		ContextText:   contextText,
	}
	store.Put(doc)

	log.Info("document uploaded", "document_id", docID, "title", title, "pages", pageCount, "bytes", doc.FileSizeBytes)

	return doc, nil
}

// extractContextText pulls plain text from the opening pages to orient the
// generator on what the document is about.
func extractContextText(data []byte) (string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF for text extraction: %w", err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()
	if numPages > contextPageLimit {
		numPages = contextPageLimit
	}

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
		if buf.Len() >= contextCharLimit {
			break
		}
	}

	text := strings.TrimSpace(buf.String())
	if len(text) > contextCharLimit {
		text = text[:contextCharLimit]
	}
	return text, nil
}

// deriveTitle extracts a title from a PDF filename.
// e.g., "linear-algebra-notes.pdf" -> "linear-algebra-notes"
func deriveTitle(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return "Untitled Document"
	}
	return name
}
