package endpoints

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/Julien-ser/ResumeWorthy/internal/api"
	"github.com/Julien-ser/ResumeWorthy/internal/blocks"
	"github.com/Julien-ser/ResumeWorthy/internal/export"
	"github.com/Julien-ser/ResumeWorthy/internal/svcctx"
)

// ListBlocksResponse is the response for listing blocks.
type ListBlocksResponse struct {
	Blocks []blocks.Block `json:"blocks"`
	Total  int            `json:"total"`
}

// ListBlocksEndpoint handles GET /api/blocks.
type ListBlocksEndpoint struct{}

var _ api.Endpoint = (*ListBlocksEndpoint)(nil)

func (e *ListBlocksEndpoint) Route() (string, string, http.HandlerFunc) {
	return http.MethodGet, "/api/blocks", e.handler
}

func (e *ListBlocksEndpoint) RequiresInit() bool { return true }

func (e *ListBlocksEndpoint) CommandGroup() string { return "blocks" }

// handler godoc
//
//	@Summary		List blocks
//	@Description	Returns stored blocks, most recently created first.
//	@Tags			blocks
//	@Produce		json
//	@Param			owner_id	query		string	false	"Only blocks of this owner"
//	@Param			type		query		string	false	"Only blocks of this type"
//	@Success		200			{object}	ListBlocksResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/blocks [get]
func (e *ListBlocksEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st := svcctx.StoreFrom(r.Context())
	all, err := st.ListBlocks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list blocks: %v", err))
		return
	}

	resp := ListBlocksResponse{Blocks: make([]blocks.Block, 0, len(all))}
	for _, b := range all {
		if filter.Match(b) {
			resp.Blocks = append(resp.Blocks, b)
		}
	}
	resp.Total = len(resp.Blocks)
	writeJSON(w, http.StatusOK, resp)
}

// filterFromQuery reads owner_id and type, rejecting unknown types.
func filterFromQuery(q url.Values) (export.Filter, error) {
	f := export.Filter{OwnerID: q.Get("owner_id")}
	if s := q.Get("type"); s != "" {
		t, err := blocks.ParseType(s)
		if err != nil {
			return f, err
		}
		f.Type = t
	}
	return f, nil
}

func filterQuery(ownerID, typ string) string {
	q := url.Values{}
	if ownerID != "" {
		q.Set("owner_id", ownerID)
	}
	if typ != "" {
		q.Set("type", typ)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (e *ListBlocksEndpoint) Command(getServerURL func() string) *cobra.Command {
	var ownerID, typ string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored blocks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListBlocksResponse
			if err := client.Get(cmd.Context(), "/api/blocks"+filterQuery(ownerID, typ), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&ownerID, "owner", "", "Filter by owner id")
	cmd.Flags().StringVar(&typ, "type", "", "Filter by block type")
	return cmd
}
