package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	countStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	resultStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1)
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("LLM Token Optimizer"))
	b.WriteString("\n\n")
	b.WriteString(boxStyle.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.countLine())
	b.WriteString("\n")

	if m.lastOptimized != "" {
		b.WriteString("\n")
		b.WriteString(resultStyle.Render("Optimized:\n" + m.lastOptimized))
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("✗ " + m.errMsg))
		b.WriteString(dimStyle.Render("  (esc to dismiss)"))
		b.WriteString("\n")
	} else if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(okStyle.Render("✓ " + m.statusMsg))
		b.WriteString("\n")
	}

	if m.confirmClear {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("Clear all %d history records? (y/N)", m.history.Len())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statsLines())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("ctrl+o optimize · ctrl+s export · ctrl+x clear · esc quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) countLine() string {
	if m.optimizing {
		return countStyle.Render(spinnerFrames[m.spinnerPos] + " optimizing…")
	}
	if m.counting {
		return dimStyle.Render("counting…")
	}
	if m.hasLiveCount {
		return countStyle.Render(fmt.Sprintf("~%d tokens ($%.6f input)", m.liveCount, m.rates.InputCost(m.liveCount)))
	}
	return dimStyle.Render("—")
}

func (m *Model) statsLines() string {
	sum := m.history.Aggregates()
	if sum.Count == 0 {
		return dimStyle.Render("No optimizations yet this session.")
	}
	stats := fmt.Sprintf("%d optimizations · %d tokens saved ($%.6f) · total spend $%.6f",
		sum.Count, sum.TokensSaved, sum.CostSavedUSD, sum.TotalCostUSD)

	width := m.width - 4
	if width < 10 {
		width = 40
	}
	chart := Sparkline(m.history.CumulativeCosts(), width)
	return okStyle.Render(stats) + "\n" +
		dimStyle.Render("cumulative cost ") + countStyle.Render(chart)
}
