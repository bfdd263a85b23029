package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Julien-ser/ResumeWorthy/internal/api"
	"github.com/Julien-ser/ResumeWorthy/internal/blocks"
	"github.com/Julien-ser/ResumeWorthy/internal/svcctx"
)

// maxCreateBody bounds the JSON body of a manual block.
const maxCreateBody = 1 << 20

// CreateBlockRequest is the body for adding one block by hand.
type CreateBlockRequest struct {
	OwnerID string         `json:"user_id,omitempty"`
	Type    string         `json:"type"`
	Content blocks.Content `json:"content"`
	Tags    []string       `json:"tags,omitempty"`
}

// CreateBlockEndpoint handles POST /api/blocks.
type CreateBlockEndpoint struct{}

var _ api.Endpoint = (*CreateBlockEndpoint)(nil)

func (e *CreateBlockEndpoint) Route() (string, string, http.HandlerFunc) {
	return http.MethodPost, "/api/blocks", e.handler
}

func (e *CreateBlockEndpoint) RequiresInit() bool { return true }

func (e *CreateBlockEndpoint) CommandGroup() string { return "blocks" }

// handler godoc
//
//	@Summary	Add a block
//	@Tags		blocks
//	@Accept		json
//	@Produce	json
//	@Param		block	body		CreateBlockRequest	true	"Block to add"
//	@Success	201		{object}	blocks.Block
//	@Failure	400		{object}	ErrorResponse
//	@Failure	500		{object}	ErrorResponse
//	@Router		/api/blocks [post]
func (e *CreateBlockEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req CreateBlockRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCreateBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	typ, err := blocks.ParseType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OwnerID == "" {
		req.OwnerID = svcctx.ConfigFrom(r.Context()).Defaults.OwnerID
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	b := blocks.Block{OwnerID: req.OwnerID, Type: typ, Content: req.Content, Tags: req.Tags}
	if err := blocks.ValidateBlock(b); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := svcctx.StoreFrom(r.Context()).InsertBlocks(r.Context(), []blocks.Block{b})
	if err != nil || len(stored) != 1 {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store block: %v", err))
		return
	}
	svcctx.LoggerFrom(r.Context()).Info("block.created", "id", stored[0].ID, "type", typ)
	writeJSON(w, http.StatusCreated, stored[0])
}

func (e *CreateBlockEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		req     CreateBlockRequest
		bullets []string
	)
	cmd := &cobra.Command{
		Use:   "add <type>",
		Short: "Add a block by hand",
		Long: `Add one block. Type is one of experience, education, project, skill, summary.

Examples:
  resumeworthy api blocks add skill --skill Go --proficiency expert --tag backend
  resumeworthy api blocks add experience --title Engineer --company Acme --bullet "Built things"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Type = args[0]
			req.Content.DescriptionBullets = bullets

			client := api.NewClient(getServerURL())
			var resp blocks.Block
			if err := client.Post(cmd.Context(), "/api/blocks", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&req.OwnerID, "owner", "", "Owner id (defaults to the server's configured owner)")
	cmd.Flags().StringVar(&req.Content.Title, "title", "", "Title or role")
	cmd.Flags().StringVar(&req.Content.Company, "company", "", "Company, school or organization")
	cmd.Flags().StringVar(&req.Content.Location, "location", "", "Location")
	cmd.Flags().StringVar(&req.Content.DateRange, "dates", "", "Date range, e.g. \"2020 - 2023\"")
	cmd.Flags().StringVar(&req.Content.SkillName, "skill", "", "Skill name")
	cmd.Flags().StringVar(&req.Content.Proficiency, "proficiency", "", "Skill proficiency")
	cmd.Flags().StringArrayVar(&bullets, "bullet", nil, "Description bullet (repeatable)")
	cmd.Flags().StringArrayVar(&req.Tags, "tag", nil, "Tag (repeatable)")
	return cmd
}
