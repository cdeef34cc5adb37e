// llm-token-optimizer relay daemon.
// Entry point: wires all packages and starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dannysarco/llm-token-optimizer/internal/anthropic"
	"github.com/dannysarco/llm-token-optimizer/internal/auth"
	"github.com/dannysarco/llm-token-optimizer/internal/config"
	"github.com/dannysarco/llm-token-optimizer/internal/governor"
	"github.com/dannysarco/llm-token-optimizer/internal/notify"
	"github.com/dannysarco/llm-token-optimizer/internal/platform"
	"github.com/dannysarco/llm-token-optimizer/internal/pricing"
	"github.com/dannysarco/llm-token-optimizer/internal/relay"
	"github.com/dannysarco/llm-token-optimizer/internal/scheduler"
	"github.com/dannysarco/llm-token-optimizer/internal/store"
	"github.com/dannysarco/llm-token-optimizer/internal/telegram"
	"github.com/dannysarco/llm-token-optimizer/internal/webhook"
	"github.com/dannysarco/llm-token-optimizer/internal/ws"
	"github.com/dannysarco/llm-token-optimizer/web"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	log.Printf("llm-token-optimizer relay %s starting…", Version)

	// ── 1. Load configuration ────────────────────────────────────────────────
	cfg := config.Load()
	if cfg.AnthropicAPIKey == "" {
		log.Fatal("ANTHROPIC_API_KEY is required")
	}
	log.Printf("Config: port=%s model=%s workDir=%s", cfg.Port, cfg.Model, cfg.WorkDir)

	// ── 2. Ensure work directory exists ─────────────────────────────────────
	if err := platform.EnsureDir(cfg.WorkDir); err != nil {
		log.Fatalf("EnsureDir %s: %v", cfg.WorkDir, err)
	}

	// ── 3. Open usage ledger + migrate ───────────────────────────────────────
	db, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("store.New: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("store.Migrate: %v", err)
	}
	log.Printf("Usage ledger ready: %s", cfg.DBPath)

	// Root context, cancelled on the shutdown signal.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── 4. WebSocket hub ─────────────────────────────────────────────────────
	hub := ws.NewHub()
	go hub.Run(ctx)

	// ── 5. Telegram bot ──────────────────────────────────────────────────────
	bot, err := telegram.New(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Printf("Telegram init error (continuing without Telegram): %v", err)
	}
	if bot != nil {
		log.Printf("Telegram alerts enabled (chatID=%d)", cfg.TelegramChatID)
	}

	// ── 6. Notify dispatcher ─────────────────────────────────────────────────
	notifier := notify.New(telegramSender(bot), webhookFirer(webhook.New(cfg.WebhookURL)))

	// ── 7. Spend governor ────────────────────────────────────────────────────
	gov := governor.New(db, notifier, cfg.DailyBudgetUSD)

	// ── 8. Daily summary scheduler ───────────────────────────────────────────
	sched := scheduler.New(db, notifier)
	if err := sched.Start(ctx); err != nil {
		log.Printf("scheduler.Start: %v", err)
	}

	// ── 9. Access key guard ──────────────────────────────────────────────────
	guard, err := auth.NewGuard(cfg.AccessKey)
	if err != nil {
		log.Fatalf("auth.NewGuard: %v", err)
	}
	if guard != nil {
		log.Printf("API routes require %s header", auth.HeaderName)
	}

	// ── 10. HTTP router ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	relay.SetupRoutes(mux, &relay.Deps{
		Provider: anthropic.NewProvider(anthropic.NewClient(cfg.AnthropicAPIKey), cfg.Model, cfg.MaxOutputTokens),
		Store:    db,
		Governor: gov,
		Hub:      hub,
		Rates:    pricing.Default,
		Guard:    guard,
	})

	// WebSocket endpoint.
	mux.HandleFunc("GET /ws", hub.ServeWS)

	// Dashboard at /, JSON 404 everywhere else.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			relay.NotFound(w, r)
			return
		}
		content, err := web.Files.ReadFile("index.html")
		if err != nil {
			relay.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(content)
	})

	// Recovery + logging middleware.
	handler := loggingMiddleware(recoveryMiddleware(mux))

	// ── 11. Start HTTP server ────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received %s — shutting down…", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown: %v", err)
		}
	}()

	log.Printf("Relay listening on http://0.0.0.0:%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("ListenAndServe: %v", err)
	}
	log.Printf("Relay stopped.")
}

// telegramSender wraps *telegram.Bot to implement notify.Sender.
// Returns nil if bot is nil (Telegram disabled).
func telegramSender(bot *telegram.Bot) notify.Sender {
	if bot == nil {
		return nil
	}
	return bot
}

// webhookFirer wraps *webhook.Dispatcher to implement notify.WebhookFirer.
// Returns nil if the dispatcher is nil (no WEBHOOK_URL configured).
func webhookFirer(d *webhook.Dispatcher) notify.WebhookFirer {
	if d == nil {
		return nil
	}
	return d
}

// loggingMiddleware logs each request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// recoveryMiddleware recovers from panics and returns 500.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				log.Printf("panic: %v", rv)
				http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
