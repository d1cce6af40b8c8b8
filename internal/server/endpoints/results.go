package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/lumenstudy/lumen/internal/api"
	"github.com/lumenstudy/lumen/internal/pipeline"
	"github.com/lumenstudy/lumen/internal/svcctx"
)

// ResultEndpoint handles GET /api/documents/{document_id}/result.
type ResultEndpoint struct{}

func (e *ResultEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{document_id}/result", e.handler
}

func (e *ResultEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Get the merged study guide for a document
//	@Tags		documents
//	@Produce	json
//	@Param		document_id	path		string	true	"Document ID"
//	@Success	200			{object}	pipeline.MergedResult
//	@Failure	404			{object}	ErrorResponse
//	@Router		/api/documents/{document_id}/result [get]
func (e *ResultEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	docs := svcctx.DocumentsFrom(r.Context())
	if docs == nil {
		writeError(w, http.StatusInternalServerError, "server not initialized")
		return
	}
	id := r.PathValue("document_id")
	if _, err := docs.Get(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	result, ok := docs.Result(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no result available; document has not finished processing")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (e *ResultEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "result <document-id>",
		Short: "Get the merged study guide for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var result pipeline.MergedResult
			path := "/api/documents/" + args[0] + "/result"
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}
			return api.Output(result)
		},
	}
}
