package endpoints

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Julien-ser/ResumeWorthy/internal/api"
	"github.com/Julien-ser/ResumeWorthy/internal/export"
	"github.com/Julien-ser/ResumeWorthy/internal/home"
	"github.com/Julien-ser/ResumeWorthy/internal/svcctx"
)

// ExportBlocksEndpoint handles GET /api/blocks/export.
type ExportBlocksEndpoint struct{}

var _ api.Endpoint = (*ExportBlocksEndpoint)(nil)

func (e *ExportBlocksEndpoint) Route() (string, string, http.HandlerFunc) {
	return http.MethodGet, "/api/blocks/export", e.handler
}

func (e *ExportBlocksEndpoint) RequiresInit() bool { return true }

func (e *ExportBlocksEndpoint) CommandGroup() string { return "blocks" }

// handler godoc
//
//	@Summary		Export blocks as XLSX
//	@Description	Returns a workbook with one row per block, newest first.
//	@Tags			blocks
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			owner_id	query	string	false	"Only blocks of this owner"
//	@Param			type		query	string	false	"Only blocks of this type"
//	@Success		200			{file}	binary
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/blocks/export [get]
func (e *ExportBlocksEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	exporter := svcctx.ExporterFrom(r.Context())
	if exporter == nil {
		exporter = export.NewService(svcctx.StoreFrom(r.Context()), svcctx.LoggerFrom(r.Context()))
	}

	data, err := exporter.BlocksXLSX(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("export failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="blocks.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (e *ExportBlocksEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outputFile, ownerID, typ string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download all blocks as an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFile == "" {
				homePath, _ := cmd.Flags().GetString("home")
				h, err := home.New(homePath)
				if err != nil {
					return err
				}
				if err := h.EnsureExists(); err != nil {
					return err
				}
				outputFile = h.ExportPath(time.Now())
			}

			client := api.NewClient(getServerURL())
			data, _, err := client.GetRaw(cmd.Context(), "/api/blocks/export"+filterQuery(ownerID, typ))
			if err != nil {
				return err
			}
			if err := os.WriteFile(outputFile, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outputFile, err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", outputFile, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFile, "file", "f", "", "Output path (default: <home>/exports/blocks_<timestamp>.xlsx)")
	cmd.Flags().StringVar(&ownerID, "owner", "", "Filter by owner id")
	cmd.Flags().StringVar(&typ, "type", "", "Filter by block type")
	return cmd
}
