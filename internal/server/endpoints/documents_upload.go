package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumenstudy/lumen/internal/api"
	"github.com/lumenstudy/lumen/internal/document"
	"github.com/lumenstudy/lumen/internal/svcctx"
)

// maxUploadBytes caps uploaded PDF size at 100MB.
const maxUploadBytes = 100 << 20

// DocumentsUploadEndpoint handles POST /api/documents/upload.
type DocumentsUploadEndpoint struct{}

func (e *DocumentsUploadEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/upload", e.handler
}

func (e *DocumentsUploadEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Upload a PDF document
//	@Description	Accepts a PDF file upload, counts its pages and stores it for processing
//	@Tags			documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"PDF file"
//	@Param			user_id	formData	string	false	"Owner user ID"
//	@Param			title	formData	string	false	"Document title (derived from filename if omitted)"
//	@Success		201		{object}	document.Document
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/documents/upload [post]
func (e *DocumentsUploadEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "only PDF files are supported")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload: "+err.Error())
		return
	}

	home := svcctx.HomeFrom(r.Context())
	docs := svcctx.DocumentsFrom(r.Context())
	if home == nil || docs == nil {
		writeError(w, http.StatusInternalServerError, "server not initialized")
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		userID = "anonymous"
	}

	doc, err := document.Intake(home, docs, document.IntakeRequest{
		UserID:   userID,
		Filename: header.Filename,
		Title:    r.FormValue("title"),
		Data:     data,
		Logger:   svcctx.LoggerFrom(r.Context()),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (e *DocumentsUploadEndpoint) Command(getServerURL func() string) *cobra.Command {
	var userID, title string
	cmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			fields := map[string]string{}
			if userID != "" {
				fields["user_id"] = userID
			}
			if title != "" {
				fields["title"] = title
			}
			var doc document.Document
			if err := client.PostFile(cmd.Context(), "/api/documents/upload", args[0], fields, &doc); err != nil {
				return err
			}
			fmt.Printf("Uploaded %q: id=%s pages=%d\n", doc.Title, doc.ID, doc.PageCount)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owner user ID")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	return cmd
}
