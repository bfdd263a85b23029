package endpoints

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Julien-ser/ResumeWorthy/internal/api"
	"github.com/Julien-ser/ResumeWorthy/internal/extract"
	"github.com/Julien-ser/ResumeWorthy/internal/ingest"
	"github.com/Julien-ser/ResumeWorthy/internal/sanitize"
	"github.com/Julien-ser/ResumeWorthy/internal/structuring"
	"github.com/Julien-ser/ResumeWorthy/internal/svcctx"
)

// multipartMemory is how much of an upload is held in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

// IngestBlocksEndpoint handles POST /api/blocks/ingest with a multipart PDF upload.
type IngestBlocksEndpoint struct{}

var _ api.Endpoint = (*IngestBlocksEndpoint)(nil)

func (e *IngestBlocksEndpoint) Route() (string, string, http.HandlerFunc) {
	return http.MethodPost, "/api/blocks/ingest", e.handler
}

func (e *IngestBlocksEndpoint) RequiresInit() bool { return true }

func (e *IngestBlocksEndpoint) CommandGroup() string { return "blocks" }

// handler godoc
//
//	@Summary		Ingest a résumé PDF
//	@Description	Extracts the text, structures it into blocks with the configured model and stores them.
//	@Tags			blocks
//	@Accept			mpfd
//	@Produce		json
//	@Param			file		formData	file	true	"Résumé PDF"
//	@Param			owner_id	formData	string	false	"Owner id (defaults to the configured owner)"
//	@Success		201			{object}	ingest.Result
//	@Failure		400			{object}	ErrorResponse
//	@Failure		413			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Failure		502			{object}	ErrorResponse
//	@Failure		503			{object}	ErrorResponse
//	@Router			/api/blocks/ingest [post]
func (e *IngestBlocksEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := svcctx.ConfigFrom(ctx)

	pipeline := svcctx.IngesterFrom(ctx)
	if pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, "ingestion pipeline not initialized")
		return
	}

	if limit := cfg.Ingest.MaxUploadBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, fh, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file %s is not a PDF", fh.Filename))
		return
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != extract.MediaTypePDF {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported media type %q", ct))
			return
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read upload: %v", err))
		return
	}

	ownerID := r.FormValue("owner_id")
	if ownerID == "" {
		ownerID = cfg.Defaults.OwnerID
	}

	res, err := pipeline.Ingest(ctx, data, ownerID)
	if err != nil {
		writeError(w, ingestStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ingestStatus maps a pipeline failure to its HTTP status.
func ingestStatus(err error) int {
	var (
		parseErr   *extract.DocumentParseError
		inferErr   *structuring.InferenceError
		schemaErr  *sanitize.SchemaViolationError
		persistErr *ingest.PersistenceError
	)
	switch {
	case errors.Is(err, ingest.ErrEmptyOwner), errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrNoProvider):
		return http.StatusServiceUnavailable
	case errors.As(err, &inferErr):
		return http.StatusBadGateway
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &persistErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (e *IngestBlocksEndpoint) Command(getServerURL func() string) *cobra.Command {
	var ownerID string
	cmd := &cobra.Command{
		Use:   "ingest <file.pdf>",
		Short: "Upload a résumé PDF and store its blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			fields := map[string]string{}
			if ownerID != "" {
				fields["owner_id"] = ownerID
			}

			client := api.NewClient(getServerURL())
			var resp ingest.Result
			if err := client.PostFile(cmd.Context(), "/api/blocks/ingest", filepath.Base(args[0]), data, fields, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner id (defaults to the server's configured owner)")
	return cmd
}
