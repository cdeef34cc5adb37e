// Package governor watches daily USD spend against a fixed budget and
// triggers alerts when the spend crosses zone thresholds.
package governor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dannysarco/llm-token-optimizer/internal/notify"
	"github.com/dannysarco/llm-token-optimizer/internal/store"
)

// Zone represents the current spend level.
type Zone int

const (
	ZoneGreen  Zone = iota // 0–60% of daily budget
	ZoneYellow             // 60–80%
	ZoneOrange             // 80–90%
	ZoneRed                // 90–100%+
)

// String returns a human-readable label for the zone.
func (z Zone) String() string {
	switch z {
	case ZoneYellow:
		return "YELLOW"
	case ZoneOrange:
		return "ORANGE"
	case ZoneRed:
		return "RED"
	default:
		return "GREEN"
	}
}

// Notifier receives zone-escalation alerts.
type Notifier interface {
	Send(event, msg string)
}

// Governor computes spend zones and alerts on escalation.
type Governor struct {
	db             *store.DB
	notify         Notifier
	dailyBudgetUSD float64

	mu       sync.Mutex
	lastZone Zone
	known    bool
}

// New creates a Governor. A zero or negative budget disables zone checks
// (everything stays GREEN).
func New(db *store.DB, notify Notifier, dailyBudgetUSD float64) *Governor {
	return &Governor{db: db, notify: notify, dailyBudgetUSD: dailyBudgetUSD}
}

// CurrentZone calculates the zone for today's recorded spend.
func (g *Governor) CurrentZone(ctx context.Context) (Zone, float64, error) {
	today := time.Now().Format("2006-01-02")
	spend, err := g.db.SpendSince(ctx, today)
	if err != nil {
		return ZoneGreen, 0, fmt.Errorf("governor.CurrentZone: %w", err)
	}
	return zoneFor(spend, g.dailyBudgetUSD), spend, nil
}

func zoneFor(spend, budget float64) Zone {
	if budget <= 0 {
		return ZoneGreen
	}
	pct := spend / budget * 100
	switch {
	case pct >= 90:
		return ZoneRed
	case pct >= 80:
		return ZoneOrange
	case pct >= 60:
		return ZoneYellow
	default:
		return ZoneGreen
	}
}

// CheckBudget detects zone changes and sends an alert when a threshold is
// crossed upward. De-escalation never re-alerts.
func (g *Governor) CheckBudget(ctx context.Context) Zone {
	zone, spend, err := g.CurrentZone(ctx)
	if err != nil {
		log.Printf("governor.CheckBudget: %v", err)
		return ZoneGreen
	}

	g.mu.Lock()
	prev, known := g.lastZone, g.known
	g.lastZone, g.known = zone, true
	g.mu.Unlock()

	if known && zone <= prev {
		return zone
	}

	switch zone {
	case ZoneYellow:
		g.alert("⚠️ Daily spend at YELLOW: $%.4f of $%.2f budget.", spend)
	case ZoneOrange:
		g.alert("🟠 Daily spend at ORANGE: $%.4f of $%.2f budget.", spend)
	case ZoneRed:
		g.alert("🔴 Daily spend at RED: $%.4f of $%.2f budget!", spend)
	}
	return zone
}

func (g *Governor) alert(format string, spend float64) {
	if g.notify == nil {
		return
	}
	g.notify.Send(notify.EventBudgetWarning, fmt.Sprintf(format, spend, g.dailyBudgetUSD))
}
