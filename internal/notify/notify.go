// Package notify provides a notification dispatcher that routes budget and
// summary events to configured adapters.
package notify

import "log"

// Event names carried to the webhook adapter.
const (
	EventBudgetWarning = "budget_warning"
	EventDailySummary  = "daily_summary"
)

// Sender can send a plain text message.
type Sender interface {
	Send(msg string) error
}

// WebhookFirer can fire a webhook event.
type WebhookFirer interface {
	Fire(event string, payload interface{})
}

// Dispatcher routes notification events to Telegram and a webhook.
type Dispatcher struct {
	telegram Sender
	webhook  WebhookFirer
}

// New creates a Dispatcher. Both telegram and webhook may be nil (disabled).
func New(telegram Sender, webhook WebhookFirer) *Dispatcher {
	return &Dispatcher{telegram: telegram, webhook: webhook}
}

// Send dispatches a notification to all configured adapters. Telegram gets
// the message text as-is; the webhook gets it as the event payload.
func (d *Dispatcher) Send(event, msg string) {
	if d == nil {
		return
	}
	if d.telegram != nil {
		if err := d.telegram.Send(msg); err != nil {
			log.Printf("notify: telegram send: %v", err)
		}
	}
	if d.webhook != nil {
		d.webhook.Fire(event, msg)
	}
}
