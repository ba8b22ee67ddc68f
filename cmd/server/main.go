package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nomisrosen/Hash-Chat-2/internal/config"
	"github.com/nomisrosen/Hash-Chat-2/internal/handlers"
	"github.com/nomisrosen/Hash-Chat-2/internal/history"
	"github.com/nomisrosen/Hash-Chat-2/internal/session"
	"github.com/nomisrosen/Hash-Chat-2/internal/websocket"
	"github.com/nomisrosen/Hash-Chat-2/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Room state: session registry and per-room history, injected into the
	// websocket layer. Everything lives in memory and dies with the process.
	registry := session.NewRegistry()
	store := history.NewStore(cfg.Chat.HistoryLimit)
	hubManager := websocket.NewManager(store)

	wsHandlers := handlers.NewWebSocketHandlers(registry, hubManager, cfg.Chat.MaxFrameBytes)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandlers.HandleWebSocket)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("🚀 Server started on http://localhost%s", cfg.Server.Port)
	logger.Info("📡 WebSocket endpoint: ws://localhost%s/ws", cfg.Server.Port)
	logger.Info("🗝️  Rooms are addressed by phrase hash; message bodies stay encrypted end to end")

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")
	hubManager.Shutdown()
}
