package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dannysarco/llm-token-optimizer/internal/session"
)

func newHistoryCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show optimization history and session totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}
			h := session.Load(cfg.HistoryPath)
			printHistory(cmd, h)
			return nil
		},
	}
}

func printHistory(cmd *cobra.Command, h *session.History) {
	out := cmd.OutOrStdout()
	if h.Len() == 0 {
		fmt.Fprintln(out, "No optimizations recorded yet.")
		return
	}

	header := color.New(color.Bold)
	saved := color.New(color.FgGreen)
	wasted := color.New(color.FgRed)

	header.Fprintf(out, "%-20s %8s %8s %8s %12s %12s\n",
		"WHEN", "ORIG", "OPT", "SAVED", "COST", "COST SAVED")
	for _, r := range h.Records() {
		line := fmt.Sprintf("%-20s %8d %8d %8d %12.6f %12.6f",
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.OriginalTokens, r.OptimizedTokens, r.TokensSaved,
			r.TotalCostUSD, r.CostSavedUSD)
		if r.TokensSaved < 0 {
			wasted.Fprintln(out, line)
		} else {
			fmt.Fprintln(out, line)
		}
	}

	s := h.Aggregates()
	fmt.Fprintln(out)
	header.Fprintf(out, "Session: ")
	fmt.Fprintf(out, "%d optimizations, $%.6f spent, ", s.Count, s.TotalCostUSD)
	saved.Fprintf(out, "%d tokens / $%.6f saved\n", s.TokensSaved, s.CostSavedUSD)
}
