// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/adapter/directory"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/config"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/logger"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/server"
	exploreService "github.com/kulmetehan/turkish-diaspora-app-sub003/internal/service/explore"
)

func main() {
	// Load .env if present; deployments set real environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger.Setup()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	natsConn, err := initNATS(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsConn.Close()

	directoryClient := directory.NewClient(directory.ClientConfig{
		BaseURL: cfg.Directory.BaseURL,
		Timeout: cfg.Directory.Timeout,
	})

	// Initialize the session manager
	sessionManager := exploreService.NewSessionManager(
		directoryClient,
		natsConn,
		exploreService.SessionManagerConfig{
			EventsTopic:     cfg.Explore.EventsTopic,
			SessionTTL:      cfg.Explore.SessionTTL,
			MonitorInterval: cfg.Explore.MonitorInterval,
			MaxSessions:     cfg.Explore.MaxSessions,
			Session: exploreService.SessionConfig{
				ViewportDebounce: cfg.Explore.ViewportDebounce,
				SearchDebounce:   cfg.Explore.SearchDebounce,
				PageSize:         cfg.Explore.PageSize,
				ViewportLimit:    cfg.Explore.ViewportLimit,
				SearchCacheSize:  cfg.Explore.SearchCacheSize,
				SuggestionLimit:  cfg.Explore.SuggestionLimit,
			},
		},
	)

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, natsConn, sessionManager, cfg.Explore.EventsTopic)

	// Start HTTP server
	go func() {
		logger.L().Info("starting HTTP server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logger.L().Info("shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server first so no new sessions arrive
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("HTTP server shutdown error", "err", err)
	}

	// Stop the session manager and every live session
	if err := sessionManager.Stop(shutdownCtx); err != nil {
		logger.L().Error("session manager shutdown error", "err", err)
	}

	logger.L().Info("shutdown complete")
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.L().Warn("NATS disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.L().Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.L().Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
