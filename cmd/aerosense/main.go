package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aerosense/aerosense/internal/alerts"
	"github.com/aerosense/aerosense/internal/api"
	"github.com/aerosense/aerosense/internal/config"
	"github.com/aerosense/aerosense/internal/insights"
	"github.com/aerosense/aerosense/internal/monitor"
	"github.com/aerosense/aerosense/internal/notifications"
	"github.com/aerosense/aerosense/internal/sensor"
	"github.com/aerosense/aerosense/internal/storage/sqlite"
	"github.com/aerosense/aerosense/internal/websocket"
	"github.com/aerosense/aerosense/pkg/logger"
)

func main() {
	configPath := flag.String("config", "aerosense.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting AeroSense",
		logger.String("config", *configPath),
		logger.Int("port", cfg.Server.Port))

	db, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		log.Error("Failed to open database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	sessionStorage := sqlite.NewSessionStorage(db, log)
	stateStorage := sqlite.NewStateStorage(db, log)

	if !cfg.Sensor.Simulated {
		log.Warn("No hardware BLE adapter built in, falling back to simulated sensors")
	}
	bleManager := sensor.NewSimulatedManager(
		time.Duration(cfg.Sensor.ScanWindowSeconds)*time.Second,
		time.Duration(cfg.Sensor.ConnectDelayMs)*time.Millisecond,
		log,
	)

	wsServer := websocket.NewServer(log)
	alertManager := alerts.NewManager(log)
	notifier := notifications.NewLogNotifier(log)
	insightsService := insights.NewService(cfg.Insights.OpenAIAPIKey, cfg.Insights.Model, log)

	monitorService := monitor.NewService(
		bleManager,
		alertManager,
		notifier,
		sessionStorage,
		stateStorage,
		wsServer,
		time.Duration(cfg.Sensor.SamplingIntervalSeconds)*time.Second,
		log,
	)

	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 10*time.Second)
	monitorService.Restore(restoreCtx)
	cancelRestore()

	router := api.NewRouter(monitorService, insightsService, wsServer, cfg, log)

	server := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     router.Routes(),
		ReadTimeout: time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutting down", logger.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("HTTP server failed", logger.Error(err))
	}

	monitorService.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", logger.Error(err))
	}

	log.Info("Shutdown complete")
}
