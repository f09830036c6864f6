package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neonsprawl/engine/internal/config"
	"github.com/neonsprawl/engine/internal/game"
	"github.com/neonsprawl/engine/internal/handlers"
	"github.com/neonsprawl/engine/internal/logger"
	"github.com/neonsprawl/engine/internal/middleware"
	"github.com/neonsprawl/engine/internal/router"
	"github.com/neonsprawl/engine/internal/store"
	"github.com/neonsprawl/engine/internal/transport/ws"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting engine",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"world_size_x", cfg.WorldSizeX,
		"world_size_y", cfg.WorldSizeY)

	redisStore := store.NewRedisStore(cfg.RedisURL, log)
	storeCtx, storeCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storeCancel()

	if err := redisStore.WaitForConnection(storeCtx); err != nil {
		log.Error("Failed to connect to store", "error", err)
		os.Exit(1)
	}
	log.Info("Store connection established successfully")

	generator := game.NewGenerator(redisStore, cfg.WorldSizeX, cfg.WorldSizeY, log)
	genCtx, genCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer genCancel()
	if err := generator.Initialize(genCtx); err != nil {
		log.Error("Failed to initialize world", "error", err)
		os.Exit(1)
	}

	locks := game.NewKeyedLocks()
	world := game.NewWorld(redisStore, cfg.WorldSizeX, cfg.WorldSizeY, log)
	actionLog := game.NewActionLog(redisStore, log)
	resolver := game.NewResolver(redisStore, world, actionLog, locks, cfg, log)
	chars := game.NewCharacters(redisStore, locks, cfg, log)
	ap := game.NewAPEconomy(redisStore, locks, log)

	gameRouter := router.NewRouter(resolver, chars, world, actionLog, log)
	wsServer := ws.NewServer(gameRouter, log)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(redisStore, log))

	characterHandler := handlers.NewCharacterHandler(chars, resolver, log)
	mux.Handle("/v1/character", characterHandler)
	mux.Handle("/v1/character/", characterHandler)

	mux.Handle("/v1/action", handlers.NewActionHandler(chars, resolver, actionLog, log))
	mux.Handle("/v1/location", handlers.NewLocationHandler(chars, world, log))
	mux.Handle("/v1/map", handlers.NewMapHandler(chars, world, log))
	mux.Handle("/v1/logs", handlers.NewLogsHandler(chars, actionLog, log))
	mux.Handle("/ws", wsServer.Handler())

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Background AP regeneration.
	regenCtx, regenCancel := context.WithCancel(context.Background())
	defer regenCancel()
	go func() {
		ticker := time.NewTicker(cfg.APRegenInterval)
		defer ticker.Stop()
		for {
			select {
			case <-regenCtx.Done():
				return
			case <-ticker.C:
				updated, err := ap.RegenAll(regenCtx, cfg.APRegenRate)
				if err != nil {
					log.Error("AP regeneration pass failed", "error", err)
					continue
				}
				log.Debug("AP regeneration pass complete", "characters_updated", updated)
			}
		}
	}()

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	regenCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Drain in-flight requests before closing the store they depend on.
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := redisStore.Close(); err != nil {
		log.Error("Error closing store connection", "error", err)
	}

	log.Info("Server exited")
}
