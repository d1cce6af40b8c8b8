package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/lumenstudy/lumen/internal/api"
	"github.com/lumenstudy/lumen/internal/document"
	"github.com/lumenstudy/lumen/internal/svcctx"
)

// DocumentsListEndpoint handles GET /api/documents.
type DocumentsListEndpoint struct{}

func (e *DocumentsListEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents", e.handler
}

func (e *DocumentsListEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	List uploaded documents
//	@Tags		documents
//	@Produce	json
//	@Success	200	{array}	document.Document
//	@Router		/api/documents [get]
func (e *DocumentsListEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	docs := svcctx.DocumentsFrom(r.Context())
	if docs == nil {
		writeError(w, http.StatusInternalServerError, "server not initialized")
		return
	}
	writeJSON(w, http.StatusOK, docs.List())
}

func (e *DocumentsListEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List uploaded documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var docs []document.Document
			if err := client.Get(cmd.Context(), "/api/documents", &docs); err != nil {
				return err
			}
			return api.Output(docs)
		},
	}
}

// DocumentsGetEndpoint handles GET /api/documents/{document_id}.
type DocumentsGetEndpoint struct{}

func (e *DocumentsGetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{document_id}", e.handler
}

func (e *DocumentsGetEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Get a document by ID
//	@Tags		documents
//	@Produce	json
//	@Param		document_id	path		string	true	"Document ID"
//	@Success	200			{object}	document.Document
//	@Failure	404			{object}	ErrorResponse
//	@Router		/api/documents/{document_id} [get]
func (e *DocumentsGetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	docs := svcctx.DocumentsFrom(r.Context())
	if docs == nil {
		writeError(w, http.StatusInternalServerError, "server not initialized")
		return
	}
	doc, err := docs.Get(r.PathValue("document_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (e *DocumentsGetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <document-id>",
		Short: "Get a document by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var doc document.Document
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0], &doc); err != nil {
				return err
			}
			return api.Output(doc)
		},
	}
}
