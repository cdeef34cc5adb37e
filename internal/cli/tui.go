package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dannysarco/llm-token-optimizer/internal/relayclient"
	"github.com/dannysarco/llm-token-optimizer/internal/session"
	"github.com/dannysarco/llm-token-optimizer/internal/tui"
)

func runTUI(configPath string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	client := relayclient.New(cfg.RelayURL, cfg.AccessKey)
	history := session.Load(cfg.HistoryPath)

	model := tui.NewModel(client, history, time.Duration(cfg.DebounceMs)*time.Millisecond)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("cli.runTUI: %w", err)
	}
	return nil
}
