package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dannysarco/llm-token-optimizer/internal/relayclient"
	"github.com/dannysarco/llm-token-optimizer/internal/wizard"
)

func newSetupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Configure the client interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}

			answers, err := wizard.Run(wizard.Answers{
				RelayURL:   cfg.RelayURL,
				AccessKey:  cfg.AccessKey,
				DebounceMs: cfg.DebounceMs,
			})
			if err != nil {
				return err
			}

			cfg.RelayURL = answers.RelayURL
			cfg.AccessKey = answers.AccessKey
			cfg.DebounceMs = answers.DebounceMs
			if err := SaveConfig(*configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", *configPath)
			fmt.Fprintln(cmd.OutOrStdout(), relayStatus(cmd.Context(), cfg))
			return nil
		},
	}
}

// relayStatus probes the configured relay's health endpoint so setup ends
// with a verdict on whether the saved settings actually work.
func relayStatus(ctx context.Context, cfg Config) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	h, err := relayclient.New(cfg.RelayURL, cfg.AccessKey).CheckHealth(ctx)
	if err != nil {
		return fmt.Sprintf("Relay not reachable at %s: %v", cfg.RelayURL, err)
	}
	return fmt.Sprintf("Relay %s at %s (model %s)", h.Status, cfg.RelayURL, h.Model)
}
