// Relay between the telephony bridge provider and the conversational AI
// partner: receives call lifecycle webhooks, manages the agent session and
// provisions inbound PSTN bridge sessions.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/voicebridge/convoai-relay/internal/agent"
	"github.com/voicebridge/convoai-relay/internal/config"
	"github.com/voicebridge/convoai-relay/internal/middleware"
	"github.com/voicebridge/convoai-relay/internal/origin"
	"github.com/voicebridge/convoai-relay/internal/pstn"
	"github.com/voicebridge/convoai-relay/internal/token"
	"github.com/voicebridge/convoai-relay/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting relay", "port", cfg.Port)

	// Initialize services.
	issuer := token.NewIssuer(cfg.AppID, cfg.AppCertificate, cfg.TokenExpiration)
	origins := origin.NewValidator(cfg.AllowedOrigins)

	partner := agent.NewClient(cfg.AIEndpoint, cfg.AppID, cfg.APIKey, cfg.APISecret, cfg.RequestTimeout)
	controller := agent.NewController(partner, issuer, cfg)

	feed := webhook.NewFeed()
	processor := webhook.NewProcessor(controller, feed)
	webhookHandler := webhook.NewHandler(processor, feed)

	bridge := pstn.NewBridge(cfg.PSTNEndpoint, cfg.AppID, cfg.PSTNAuth, cfg.DefaultUID, issuer, cfg.RequestTimeout)
	pstnHandler := pstn.NewHandler(bridge, origins)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(origins))

	webhookHandler.RegisterRoutes(r)
	pstnHandler.RegisterRoutes(r)

	// Note: the notification feed holds WebSocket connections open, so no
	// write timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// A running agent session should not outlive the call relay.
	if controller.Active() {
		if err := controller.Stop(shutdownCtx); err != nil {
			slog.Warn("Failed to stop agent session during shutdown", "error", err)
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
