package tui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannysarco/llm-token-optimizer/internal/relayclient"
	"github.com/dannysarco/llm-token-optimizer/internal/session"
)

type stubAPI struct {
	countCalls  []string
	countTokens int
	countErr    error

	optimizeCalls []string
	optimizeRes   *relayclient.OptimizeResult
	optimizeErr   error
}

func (s *stubAPI) CountTokens(_ context.Context, text string) (int, error) {
	s.countCalls = append(s.countCalls, text)
	return s.countTokens, s.countErr
}

func (s *stubAPI) Optimize(_ context.Context, text string) (*relayclient.OptimizeResult, error) {
	s.optimizeCalls = append(s.optimizeCalls, text)
	return s.optimizeRes, s.optimizeErr
}

func newTestModel(t *testing.T, api *stubAPI) *Model {
	t.Helper()
	history := session.Load(filepath.Join(t.TempDir(), "history.json"))
	return NewModel(api, history, 10*time.Millisecond)
}

// typeText feeds text into the model one keystroke at a time, discarding
// the debounce timers the edits schedule. Tests inject debounceMsg directly
// to control timing.
func typeText(m *Model, text string) *Model {
	for _, r := range text {
		mi, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = mi.(*Model)
	}
	return m
}

// drainCmd executes cmd, flattening batches, and returns all produced
// messages except spinner ticks.
func drainCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	var msgs []tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			msgs = append(msgs, drainCmd(c)...)
		}
	case spinMsg:
	case nil:
	default:
		msgs = append(msgs, msg)
	}
	return msgs
}

func TestRapidEditsCountOnlyFinalText(t *testing.T) {
	api := &stubAPI{countTokens: 42}
	m := newTestModel(t, api)

	m = typeText(m, "abc")
	require.Equal(t, 3, m.countGen)
	assert.True(t, m.counting)

	// Timers from the superseded edits fire and are ignored.
	mi, cmd := m.Update(debounceMsg{gen: 1})
	m = mi.(*Model)
	assert.Nil(t, cmd)
	mi, cmd = m.Update(debounceMsg{gen: 2})
	m = mi.(*Model)
	assert.Nil(t, cmd)
	assert.Empty(t, api.countCalls)

	// The latest timer triggers exactly one request, for the final text.
	mi, cmd = m.Update(debounceMsg{gen: 3})
	m = mi.(*Model)
	require.NotNil(t, cmd)
	msgs := drainCmd(cmd)
	require.Len(t, msgs, 1)
	require.Equal(t, []string{"abc"}, api.countCalls)

	mi, _ = m.Update(msgs[0])
	m = mi.(*Model)
	assert.True(t, m.hasLiveCount)
	assert.Equal(t, 42, m.liveCount)
	assert.False(t, m.counting)
}

func TestStaleCountResultDiscarded(t *testing.T) {
	api := &stubAPI{}
	m := newTestModel(t, api)
	m = typeText(m, "ab")
	require.Equal(t, 2, m.countGen)

	mi, _ := m.Update(countResultMsg{gen: 1, tokens: 99})
	m = mi.(*Model)
	assert.False(t, m.hasLiveCount, "stale result must not apply")

	mi, _ = m.Update(countResultMsg{gen: 2, tokens: 7})
	m = mi.(*Model)
	assert.True(t, m.hasLiveCount)
	assert.Equal(t, 7, m.liveCount)
}

func TestEmptyInputClearsCountWithoutRequest(t *testing.T) {
	api := &stubAPI{countTokens: 5}
	m := newTestModel(t, api)
	m = typeText(m, "x")

	mi, _ := m.Update(countResultMsg{gen: m.countGen, tokens: 5})
	m = mi.(*Model)
	require.True(t, m.hasLiveCount)

	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = mi.(*Model)
	assert.False(t, m.hasLiveCount)
	assert.False(t, m.counting)

	// The timer scheduled before deletion is now superseded.
	_, cmd := m.Update(debounceMsg{gen: 1})
	assert.Nil(t, cmd)
	assert.Empty(t, api.countCalls)
}

func TestOptimizeBlankPromptFailsLocally(t *testing.T) {
	api := &stubAPI{}
	m := newTestModel(t, api)
	m = typeText(m, "   ")

	mi, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = mi.(*Model)
	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.errMsg)
	assert.Empty(t, api.countCalls)
	assert.Empty(t, api.optimizeCalls)
}

func TestOptimizeReusesLiveCount(t *testing.T) {
	api := &stubAPI{
		optimizeRes: &relayclient.OptimizeResult{
			Optimized:       "be brief",
			Usage:           relayclient.Usage{InputTokens: 120, OutputTokens: 8},
			OriginalTokens:  120,
			OptimizedTokens: 2,
			Savings:         118,
		},
	}
	m := newTestModel(t, api)
	m = typeText(m, "please be very brief")
	mi, _ := m.Update(countResultMsg{gen: m.countGen, tokens: 10})
	m = mi.(*Model)

	mi, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = mi.(*Model)
	require.True(t, m.optimizing)
	msgs := drainCmd(cmd)
	require.Len(t, msgs, 1)

	// The live count stands in for the original; no extra count call.
	assert.Empty(t, api.countCalls)
	require.Equal(t, []string{"please be very brief"}, api.optimizeCalls)

	mi, _ = m.Update(msgs[0])
	m = mi.(*Model)
	assert.False(t, m.optimizing)
	assert.Empty(t, m.errMsg)
	require.Equal(t, 1, m.history.Len())

	rec := m.history.Records()[0]
	assert.Equal(t, "please be very brief", rec.OriginalPrompt)
	assert.Equal(t, "be brief", rec.OptimizedPrompt)
	assert.Equal(t, 10, rec.OriginalTokens)
	assert.Equal(t, 2, rec.OptimizedTokens)
	assert.Equal(t, 8, rec.TokensSaved)
	assert.InDelta(t, 120*3.00/1_000_000+8*15.00/1_000_000, rec.TotalCostUSD, 1e-12)
}

func TestOptimizeIssuesFreshCountWhenNoneLive(t *testing.T) {
	api := &stubAPI{
		countTokens: 11,
		optimizeRes: &relayclient.OptimizeResult{
			Optimized:       "short",
			Usage:           relayclient.Usage{InputTokens: 50, OutputTokens: 2},
			OptimizedTokens: 1,
		},
	}
	m := newTestModel(t, api)
	m = typeText(m, "some prompt")
	// The count is still pending; optimize must not trust it.
	require.True(t, m.counting)

	mi, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = mi.(*Model)
	msgs := drainCmd(cmd)
	require.Len(t, msgs, 1)
	require.Equal(t, []string{"some prompt"}, api.countCalls)

	mi, _ = m.Update(msgs[0])
	m = mi.(*Model)
	require.Equal(t, 1, m.history.Len())
	assert.Equal(t, 11, m.history.Records()[0].OriginalTokens)
}

func TestOptimizeFailureLeavesHistoryUntouched(t *testing.T) {
	api := &stubAPI{
		countTokens: 4,
		optimizeErr: errors.New("Optimization failed: upstream exploded"),
	}
	m := newTestModel(t, api)
	m = typeText(m, "oops")
	mi, _ := m.Update(countResultMsg{gen: m.countGen, tokens: 4})
	m = mi.(*Model)

	mi, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = mi.(*Model)
	msgs := drainCmd(cmd)
	require.Len(t, msgs, 1)

	mi, _ = m.Update(msgs[0])
	m = mi.(*Model)
	assert.Contains(t, m.errMsg, "Optimization failed")
	assert.Zero(t, m.history.Len())
	assert.True(t, m.hasLiveCount, "prior count survives a failed optimize")
}

func TestClearRequiresConfirmation(t *testing.T) {
	api := &stubAPI{
		optimizeRes: &relayclient.OptimizeResult{Optimized: "x", OptimizedTokens: 1},
	}
	m := newTestModel(t, api)
	m = typeText(m, "something")
	mi, _ := m.Update(countResultMsg{gen: m.countGen, tokens: 3})
	m = mi.(*Model)
	mi, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = mi.(*Model)
	for _, msg := range drainCmd(cmd) {
		mi, _ = m.Update(msg)
		m = mi.(*Model)
	}
	require.Equal(t, 1, m.history.Len())

	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	m = mi.(*Model)
	require.True(t, m.confirmClear)

	// Anything but "y" cancels.
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = mi.(*Model)
	assert.False(t, m.confirmClear)
	assert.Equal(t, 1, m.history.Len())

	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	m = mi.(*Model)
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = mi.(*Model)
	assert.Zero(t, m.history.Len())
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil, 10))
	assert.Equal(t, "▁█", Sparkline([]float64{0, 1}, 10))
	assert.Equal(t, "▁▁▁", Sparkline([]float64{0, 0, 0}, 10), "flat series stays at the floor")
	assert.Len(t, []rune(Sparkline(make([]float64, 50), 10)), 10, "truncates to the newest points")
}
