package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Julien-ser/ResumeWorthy/internal/api"
	"github.com/Julien-ser/ResumeWorthy/internal/ingest"
	"github.com/Julien-ser/ResumeWorthy/internal/providers"
	"github.com/Julien-ser/ResumeWorthy/internal/store"
)

var ingestOwner string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>",
	Short: "Ingest a résumé PDF without a server",
	Long: `Run the ingestion pipeline in-process: extract the PDF text, ask the
configured model to structure it, and write the blocks to the configured
store. With the memory driver the blocks are printed and then discarded.

Examples:
  resumeworthy ingest resume.pdf
  resumeworthy ingest resume.pdf --owner 3f2c... -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		h, err := getHome()
		if err != nil {
			return err
		}
		cm, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfg := cm.Get()

		st, err := store.Open(ctx, cfg.ToStoreConfig(), logger)
		if err != nil {
			return err
		}
		defer st.Close()

		registry := providers.NewRegistry()
		registry.SetLogger(logger)
		registry.Reload(cfg.ToProviderRegistryConfig())

		pipeline, err := ingest.Build(cfg, registry, st, logger)
		if err != nil {
			return err
		}

		owner := ingestOwner
		if owner == "" {
			owner = cfg.Defaults.OwnerID
		}
		res, err := pipeline.Ingest(ctx, data, owner)
		if err != nil {
			return err
		}
		return api.Output(res)
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestOwner, "owner", "", "Owner id (default: defaults.owner_id)")
	rootCmd.AddCommand(ingestCmd)
}
