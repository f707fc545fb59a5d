package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"

	"github.com/squadmgr/squad-server-manager/internal/api"
	"github.com/squadmgr/squad-server-manager/internal/config"
	"github.com/squadmgr/squad-server-manager/internal/database"
	"github.com/squadmgr/squad-server-manager/internal/logging"
	"github.com/squadmgr/squad-server-manager/internal/store"
	"github.com/squadmgr/squad-server-manager/internal/supervisor"
	"github.com/squadmgr/squad-server-manager/internal/updates"
	"github.com/squadmgr/squad-server-manager/internal/websocket"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config file")
	migrateOnly := pflag.Bool("migrate", false, "run database migrations and exit")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := setupLogging(cfg); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logging.Close()

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Println("Running database migrations...")
	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")
	if *migrateOnly {
		return
	}

	serverStore := store.New(db.DB)
	if err := serverStore.ResetRunningFlags(); err != nil {
		log.Fatalf("Failed to reset stale running flags: %v", err)
	}

	// WebSocket hub
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// Update job manager
	updateManager := updates.NewManager(cfg.Updates.Command)

	// Supervisor registry
	registry := supervisor.NewRegistry(serverStore, cfg.Storage.ChatLogDir, cfg.Rcon.Timeout())
	registry.OnChat = func(id int64, line string) {
		hub.Broadcast(websocket.ChatRoom(id), "chat", line)
	}
	registry.OnServerExit = func(id int64) {
		updateManager.FailActive(id, "server process exited")
		hub.Broadcast(websocket.ChatRoom(id), "status", "server stopped")
	}

	// Chat log retention sweep
	scheduler := cron.New()
	sweepSpec := fmt.Sprintf("@every %s", cfg.ChatLog.SweepEvery())
	if _, err := scheduler.AddFunc(sweepSpec, func() {
		supervisor.PruneChatLogs(cfg.Storage.ChatLogDir, cfg.ChatLog.RetentionDuration())
	}); err != nil {
		log.Fatalf("Failed to schedule chat log pruning: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("All components initialized successfully")

	router := api.SetupRouter(cfg, serverStore, registry, updateManager, hub)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Println("Stopping managed servers...")
	registry.StopAll()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func setupLogging(cfg *config.Config) error {
	if strings.TrimSpace(cfg.Logging.File) == "" {
		dataDir := cfg.Storage.DataDir
		if dataDir == "" {
			dataDir = "./data"
		}
		cfg.Logging.File = filepath.Join(dataDir, "logs", "manager.log")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
		return err
	}
	logging.Init(cfg.Logging)
	return nil
}
