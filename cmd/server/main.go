// Package main is the entry point for the maintenance event sync server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/maintenance-manager/backend/internal/api"
	"github.com/maintenance-manager/backend/internal/calendar"
	"github.com/maintenance-manager/backend/internal/config"
	"github.com/maintenance-manager/backend/internal/event"
	"github.com/maintenance-manager/backend/internal/location"
	"github.com/maintenance-manager/backend/internal/storage"
	"github.com/maintenance-manager/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	configPath := flag.String("config", "/etc/maintenance-manager/config.yaml", "Path to YAML configuration file")
	addr := flag.String("addr", "", "HTTP server address (overrides config)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.Listen); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	log.Printf("Starting maintenance event sync server (version: %s)...", version)

	// Initialize database
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %q: %v", cfg.DataDir, err)
	}
	db, err := storage.NewDB(filepath.Join(cfg.DataDir, "maintenance-manager.db"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	eventRepo := storage.NewEventRepository(db)
	locationRepo := storage.NewLocationRepository(db)

	// Initialize the remote calendar client
	ctx := context.Background()
	var remote calendar.Client
	if cfg.DevMode {
		log.Println("Dev mode: using in-process calendar provider")
		remote = calendar.NewMemoryClient()
	} else {
		remote, err = calendar.NewGoogleClient(ctx, cfg.Google.CredentialsFile, cfg.Google.CalendarID)
		if err != nil {
			log.Fatalf("Failed to create calendar client: %v", err)
		}
	}

	// Initialize the coordinator and the periodic sync
	coordinator := event.NewCoordinator(remote, eventRepo, location.NewStoreResolver(locationRepo))
	scheduler := event.NewScheduler(coordinator, hub, cfg.SyncSchedule)
	if err := scheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start sync scheduler: %v", err)
	}

	// Initialize HTTP router
	router := api.NewRouter(api.Services{
		DB:          db,
		Events:      eventRepo,
		Locations:   locationRepo,
		Coordinator: coordinator,
		Scheduler:   scheduler,
		Hub:         hub,
		StaticDir:   cfg.StaticDir,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Server listening on %s", cfg.Listen)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	scheduler.Stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
