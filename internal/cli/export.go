package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dannysarco/llm-token-optimizer/internal/session"
)

func newExportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Export the history to a JSON document",
		Long:  "Write the full optimization history to a standalone JSON file.\nThe default filename is keyed by today's date.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}
			h := session.Load(cfg.HistoryPath)

			out := session.ExportFilename(time.Now())
			if len(args) == 1 {
				out = args[0]
			}
			if err := h.Export(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", h.Len(), out)
			return nil
		},
	}
}
