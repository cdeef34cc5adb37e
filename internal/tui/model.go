// Package tui implements the interactive optimizer: a prompt editor with
// live token counting, optimize-on-demand, and the session history view.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dannysarco/llm-token-optimizer/internal/pricing"
	"github.com/dannysarco/llm-token-optimizer/internal/relayclient"
	"github.com/dannysarco/llm-token-optimizer/internal/session"
)

// RelayAPI is the slice of the relay client the TUI needs.
type RelayAPI interface {
	CountTokens(ctx context.Context, text string) (int, error)
	Optimize(ctx context.Context, text string) (*relayclient.OptimizeResult, error)
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ── Messages ─────────────────────────────────────────────────────────────────

// debounceMsg fires when the quiet period after an edit elapses. gen is the
// generation token issued for that edit; a mismatch means the input changed
// again and this timer is superseded.
type debounceMsg struct{ gen int }

// countResultMsg carries a finished count request. Results whose gen no
// longer matches the latest issued token are discarded, so a slow early
// request can never overwrite a newer count.
type countResultMsg struct {
	gen    int
	tokens int
	err    error
}

type optimizeDoneMsg struct {
	prompt         string
	originalTokens int
	res            *relayclient.OptimizeResult
	err            error
}

type spinMsg struct{}

// Model is the Bubble Tea model for the optimizer.
type Model struct {
	api      RelayAPI
	history  *session.History
	rates    pricing.Rates
	debounce time.Duration

	input textarea.Model

	width  int
	height int

	// Live counting state. countGen increases on every edit; only the
	// result matching the latest generation is applied.
	countGen     int
	lastText     string
	liveCount    int
	hasLiveCount bool
	counting     bool

	optimizing    bool
	spinnerPos    int
	lastOptimized string
	statusMsg     string
	errMsg        string

	confirmClear bool
}

// NewModel creates the TUI model.
func NewModel(api RelayAPI, history *session.History, debounce time.Duration) *Model {
	ta := textarea.New()
	ta.Placeholder = "Paste or type a prompt. Ctrl+O optimizes it."
	ta.Focus()
	ta.CharLimit = 0
	ta.SetHeight(6)
	ta.ShowLineNumbers = false

	return &Model{
		api:      api,
		history:  history,
		rates:    pricing.Default,
		debounce: debounce,
		input:    ta,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 4)
		return m, nil

	case tea.KeyMsg:
		if m.confirmClear {
			return m.handleClearConfirm(msg)
		}
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			if m.errMsg != "" {
				m.errMsg = ""
				return m, nil
			}
			return m, tea.Quit
		case tea.KeyCtrlO:
			return m, m.startOptimize()
		case tea.KeyCtrlS:
			return m.exportHistory()
		case tea.KeyCtrlX:
			if m.history.Len() > 0 {
				m.confirmClear = true
			}
			return m, nil
		}
		return m.updateInput(msg)

	case debounceMsg:
		// A later edit superseded this timer.
		if msg.gen != m.countGen {
			return m, nil
		}
		return m, m.countCmd(msg.gen, m.lastText)

	case countResultMsg:
		if msg.gen != m.countGen {
			return m, nil // stale response for superseded input
		}
		m.counting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.liveCount = msg.tokens
		m.hasLiveCount = true
		return m, nil

	case optimizeDoneMsg:
		return m.finishOptimize(msg)

	case spinMsg:
		if !m.optimizing {
			return m, nil
		}
		m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
		return m, spinCmd()
	}

	return m.updateInput(msg)
}

// updateInput routes a message to the textarea and reacts to text changes.
func (m *Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var taCmd tea.Cmd
	m.input, taCmd = m.input.Update(msg)

	text := m.input.Value()
	if text == m.lastText {
		return m, taCmd
	}
	m.lastText = text
	m.countGen++ // supersede any pending timer or in-flight request

	if strings.TrimSpace(text) == "" {
		// Empty input clears the count without issuing a request.
		m.hasLiveCount = false
		m.counting = false
		return m, taCmd
	}

	m.counting = true
	gen := m.countGen
	debounceTimer := tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{gen: gen}
	})
	return m, tea.Batch(taCmd, debounceTimer)
}

func (m *Model) countCmd(gen int, text string) tea.Cmd {
	return func() tea.Msg {
		tokens, err := m.api.CountTokens(context.Background(), text)
		return countResultMsg{gen: gen, tokens: tokens, err: err}
	}
}

// startOptimize validates locally, then runs the optimize flow off the
// event loop. The original token count is the live count when present,
// otherwise a fresh count call is made before optimizing.
func (m *Model) startOptimize() tea.Cmd {
	if m.optimizing {
		return nil
	}
	prompt := m.input.Value()
	if strings.TrimSpace(prompt) == "" {
		m.errMsg = "Prompt is empty — nothing to optimize."
		return nil
	}

	m.optimizing = true
	m.errMsg = ""
	m.statusMsg = ""

	haveCount := m.hasLiveCount && !m.counting
	liveCount := m.liveCount

	work := func() tea.Msg {
		ctx := context.Background()

		originalTokens := liveCount
		if !haveCount {
			n, err := m.api.CountTokens(ctx, prompt)
			if err != nil {
				return optimizeDoneMsg{err: err}
			}
			originalTokens = n
		}

		res, err := m.api.Optimize(ctx, prompt)
		if err != nil {
			return optimizeDoneMsg{err: err}
		}
		return optimizeDoneMsg{prompt: prompt, originalTokens: originalTokens, res: res}
	}
	return tea.Batch(work, spinCmd())
}

func (m *Model) finishOptimize(msg optimizeDoneMsg) (tea.Model, tea.Cmd) {
	m.optimizing = false
	if msg.err != nil {
		// Failure leaves all prior state untouched; no record is appended.
		m.errMsg = msg.err.Error()
		return m, nil
	}

	rec := session.NewRecord(m.rates,
		msg.prompt, msg.res.Optimized,
		msg.originalTokens, msg.res.OptimizedTokens,
		msg.res.Usage.InputTokens, msg.res.Usage.OutputTokens)

	if err := m.history.Append(rec); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}

	m.lastOptimized = msg.res.Optimized
	m.statusMsg = fmt.Sprintf("Saved %d tokens ($%.6f) — total cost $%.6f",
		rec.TokensSaved, rec.CostSavedUSD, rec.TotalCostUSD)
	return m, nil
}

func (m *Model) handleClearConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmClear = false
	if msg.String() == "y" {
		if err := m.history.Clear(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.statusMsg = "History cleared."
	}
	return m, nil
}

func (m *Model) exportHistory() (tea.Model, tea.Cmd) {
	name := session.ExportFilename(time.Now())
	if err := m.history.Export(name); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.statusMsg = fmt.Sprintf("Exported %d records to %s", m.history.Len(), name)
	return m, nil
}

func spinCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return spinMsg{}
	})
}
