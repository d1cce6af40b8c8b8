package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/lumenstudy/lumen/internal/api"
	"github.com/lumenstudy/lumen/internal/progress"
	"github.com/lumenstudy/lumen/internal/svcctx"
)

// ProgressGetEndpoint handles GET /api/progress/{user_id}/{document_id}.
type ProgressGetEndpoint struct{}

func (e *ProgressGetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/progress/{user_id}/{document_id}", e.handler
}

func (e *ProgressGetEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get processing progress
//	@Description	Returns the latest progress snapshot for a user and document; unknown keys return a not_started record
//	@Tags			progress
//	@Produce		json
//	@Param			user_id		path		string	true	"User ID"
//	@Param			document_id	path		string	true	"Document ID"
//	@Success		200			{object}	progress.Record
//	@Router			/api/progress/{user_id}/{document_id} [get]
func (e *ProgressGetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.ProgressFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusInternalServerError, "server not initialized")
		return
	}
	key := progress.Key{
		UserID:     r.PathValue("user_id"),
		DocumentID: r.PathValue("document_id"),
	}
	rec, ok := store.Get(key)
	if !ok {
		rec = progress.Default()
	}
	writeJSON(w, http.StatusOK, rec)
}

func (e *ProgressGetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <user-id> <document-id>",
		Short: "Get processing progress for a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var rec progress.Record
			path := "/api/progress/" + args[0] + "/" + args[1]
			if err := client.Get(cmd.Context(), path, &rec); err != nil {
				return err
			}
			return api.Output(rec)
		},
	}
}

// ProgressSetEndpoint handles POST /api/progress/{user_id}/{document_id}.
// Clients use it to seed or correct a progress record, for example when
// resuming a session from another device.
type ProgressSetEndpoint struct{}

func (e *ProgressSetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/progress/{user_id}/{document_id}", e.handler
}

func (e *ProgressSetEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Upsert a progress record
//	@Tags		progress
//	@Accept		json
//	@Produce	json
//	@Param		user_id		path		string			true	"User ID"
//	@Param		document_id	path		string			true	"Document ID"
//	@Param		record		body		progress.Record	true	"Progress record"
//	@Success	200			{object}	progress.Record
//	@Failure	400			{object}	ErrorResponse
//	@Router		/api/progress/{user_id}/{document_id} [post]
func (e *ProgressSetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.ProgressFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusInternalServerError, "server not initialized")
		return
	}
	var rec progress.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid progress record: "+err.Error())
		return
	}
	key := progress.Key{
		UserID:     r.PathValue("user_id"),
		DocumentID: r.PathValue("document_id"),
	}
	if err := store.Set(key, rec); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stored, _ := store.Get(key)
	writeJSON(w, http.StatusOK, stored)
}

func (e *ProgressSetEndpoint) Command(getServerURL func() string) *cobra.Command {
	// Progress upserts are made by clients mid-session, not from the CLI.
	return nil
}
