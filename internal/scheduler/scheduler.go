// Package scheduler wraps robfig/cron to send the daily spend summary.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dannysarco/llm-token-optimizer/internal/notify"
	"github.com/dannysarco/llm-token-optimizer/internal/store"
)

// summarySchedule fires once per day shortly after midnight, summarizing the
// previous day.
const summarySchedule = "5 0 * * *"

// Notifier receives the rendered summary.
type Notifier interface {
	Send(event, msg string)
}

// Engine manages the cron scheduler.
type Engine struct {
	cron   *cron.Cron
	db     *store.DB
	notify Notifier
}

// New creates a cron-based Engine.
func New(db *store.DB, notify Notifier) *Engine {
	return &Engine{cron: cron.New(), db: db, notify: notify}
}

// Start registers the summary job and begins the cron engine. The engine
// stops when ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	_, err := e.cron.AddFunc(summarySchedule, func() {
		if err := e.SendDailySummary(context.Background()); err != nil {
			log.Printf("scheduler: daily summary: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler.Start: %w", err)
	}
	e.cron.Start()
	go func() {
		<-ctx.Done()
		e.cron.Stop()
	}()
	return nil
}

// SendDailySummary aggregates yesterday's ledger and notifies.
// Days with no recorded calls are skipped silently.
func (e *Engine) SendDailySummary(ctx context.Context) error {
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	totals, err := e.db.TotalsSince(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("scheduler.SendDailySummary: %w", err)
	}

	for _, t := range totals {
		if t.Date != yesterday {
			continue
		}
		e.notify.Send(notify.EventDailySummary, FormatSummary(t))
		return nil
	}
	return nil
}

// FormatSummary renders one day's totals as the notification text.
func FormatSummary(t store.DailyTotal) string {
	return fmt.Sprintf(
		"📊 %s — %d calls, %d in / %d out tokens, %d tokens saved, $%.4f spent",
		t.Date, t.Calls, t.InputTokens, t.OutputTokens, t.TokensSaved, t.CostUSD,
	)
}
