package endpoints

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenstudy/lumen/internal/api"
	"github.com/lumenstudy/lumen/internal/document"
	"github.com/lumenstudy/lumen/internal/pipeline"
	"github.com/lumenstudy/lumen/internal/providers"
	"github.com/lumenstudy/lumen/internal/svcctx"
)

// ProcessResponse acknowledges that background processing has started.
type ProcessResponse struct {
	DocumentID string `json:"document_id"`
	UserID     string `json:"user_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// ProcessEndpoint handles POST /api/documents/{document_id}/process.
type ProcessEndpoint struct{}

func (e *ProcessEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{document_id}/process", e.handler
}

func (e *ProcessEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Start processing a document
//	@Description	Kicks off chunked study-guide generation in the background; poll the progress endpoint for status
//	@Tags			documents
//	@Produce		json
//	@Param			document_id	path		string	true	"Document ID"
//	@Param			generator	query		string	false	"Generator name (defaults to configured default)"
//	@Success		202			{object}	ProcessResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Router			/api/documents/{document_id}/process [post]
func (e *ProcessEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	services := svcctx.ServicesFrom(r.Context())
	if services == nil || services.Documents == nil || services.Registry == nil {
		writeError(w, http.StatusInternalServerError, "server not initialized")
		return
	}

	doc, err := services.Documents.Get(r.PathValue("document_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if doc.Status == document.StatusProcessing {
		writeError(w, http.StatusConflict, "document is already being processed")
		return
	}

	generator, err := resolveGenerator(services, r.URL.Query().Get("generator"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fileData, err := os.ReadFile(doc.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read stored document: "+err.Error())
		return
	}

	cfg := pipeline.Config{}
	if services.ConfigManager != nil {
		pc := services.ConfigManager.Get().Pipeline
		cfg.MaxConcurrency = pc.MaxConcurrency
		cfg.MaxRetries = pc.MaxRetries
		cfg.AttemptTimeout = time.Duration(pc.AttemptTimeoutSeconds) * time.Second
	}

	logger := svcctx.LoggerFrom(r.Context())
	processor := pipeline.NewProcessor(generator, services.Progress, cfg, logger)
	services.Documents.SetStatus(doc.ID, document.StatusProcessing)

	req := pipeline.ProcessRequest{
		FileData:      fileData,
		MimeType:      "application/pdf",
		DocumentTitle: doc.Title,
		TotalPages:    doc.PageCount,
		FileSizeBytes: doc.FileSizeBytes,
		ContextText:   doc.ContextText,
		UserID:        doc.UserID,
		DocumentID:    doc.ID,
	}

	// Detached from the request context: processing outlives the 202.
	go func() {
		ctx := context.Background()
		merged, err := processor.ProcessLargeDocument(ctx, req)
		if err != nil {
			logger.Error("document processing failed",
				"document_id", doc.ID, "error", err)
			services.Documents.SetStatus(doc.ID, document.StatusError)
			return
		}
		services.Documents.SaveResult(doc.ID, merged)
		logger.Info("document processing completed",
			"document_id", doc.ID, "pages", len(merged.Pages))
	}()

	writeJSON(w, http.StatusAccepted, ProcessResponse{
		DocumentID: doc.ID,
		UserID:     doc.UserID,
		Status:     "processing",
		Message:    "processing started; poll the progress endpoint for status",
	})
}

// resolveGenerator picks the named generator, or the configured default
// when name is empty.
func resolveGenerator(services *svcctx.Services, name string) (providers.Generator, error) {
	if name != "" {
		return services.Registry.Get(name)
	}
	return services.Registry.Default()
}

func (e *ProcessEndpoint) Command(getServerURL func() string) *cobra.Command {
	var generator string
	cmd := &cobra.Command{
		Use:   "process <document-id>",
		Short: "Start study-guide generation for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/api/documents/" + args[0] + "/process"
			if generator != "" {
				path += "?generator=" + generator
			}
			var resp ProcessResponse
			if err := client.Post(cmd.Context(), path, nil, &resp); err != nil {
				return err
			}
			fmt.Printf("Processing started for %s (%s)\n", resp.DocumentID, resp.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&generator, "generator", "", "generator to use")
	return cmd
}
