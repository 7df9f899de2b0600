package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Tomlord1122/kanban-backend/internal/cache"
	"github.com/Tomlord1122/kanban-backend/internal/config"
	"github.com/Tomlord1122/kanban-backend/internal/database"
	"github.com/Tomlord1122/kanban-backend/internal/repository"
	"github.com/Tomlord1122/kanban-backend/internal/server"
	"github.com/Tomlord1122/kanban-backend/internal/service"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, closeCache func(), done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	closeCache()

	if dbService != nil {
		if err := dbService.Close(); err != nil {
			log.WithError(err).Error("Error closing database connection pool")
		}
	}

	log.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// openCache connects to Redis when REDIS_URL is set. The API keeps serving
// uncached when Redis is unreachable at startup.
func openCache(cfg *config.Config) (service.SnapshotCache, func()) {
	if cfg.RedisURL == "" {
		return nil, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.WithError(err).Warn("board cache disabled")
		return nil, func() {}
	}
	log.WithField("ttl", cfg.BoardCacheTTL).Info("board cache enabled")
	return cache.New(client, cfg.BoardCacheTTL), func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Error closing redis client")
		}
	}
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.SetLevel(cfg.LogLevel)

	// 1. Initialize Database
	dbService, err := database.New(cfg.DB)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	if cfg.AutoMigrate {
		log.Info("Running database auto-migration...")
		if err := dbService.Migrate(); err != nil {
			log.WithError(err).Fatal("Failed to auto-migrate database")
		}
		log.Info("Database auto-migration complete.")
	}

	// 2. Initialize the store and the optional board cache
	store := repository.NewGormStore(dbService.GetDB())
	snapshots, closeCache := openCache(cfg)

	// 3. Initialize Services
	services := server.Services{
		Boards:  service.NewBoardService(store, snapshots),
		Columns: service.NewColumnService(store, snapshots),
		Tasks:   service.NewTaskService(store, snapshots),
	}

	// 4. Initialize Server/Router, passing dependencies
	chiServer := server.NewServer(cfg.Port, services, dbService)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(chiServer, dbService, closeCache, done)

	log.WithField("addr", chiServer.Addr).Info("Starting server")
	err = chiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("HTTP server ListenAndServe error")
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete.")
}
