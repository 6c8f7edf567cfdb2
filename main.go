package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"kurirai/config"
	qhttp "kurirai/http"
	"kurirai/logging"
	"kurirai/ml"
	"kurirai/monitoring"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Load the model eagerly so a missing artifact is reported before the
	// first request arrives.
	metrics := monitoring.NewMetrics()
	handle := ml.FileModelHandle(cfg.Model.Type, cfg.Model.Path)
	predictor, err := ml.NewPredictor(handle, cfg.Cache.Size, metrics)
	if err != nil {
		logger.Fatal("Failed to build predictor", zap.Error(err))
	}
	if err := predictor.Ready(); err != nil {
		logger.Error("Model not loaded", zap.String("path", cfg.Model.Path), zap.Error(err))
	}

	// 3. Start HTTP server
	serverConfig := qhttp.DefaultServerConfig()
	serverConfig.Port = cfg.HTTP.Port
	serverConfig.Timeout = cfg.HTTP.Timeout
	serverConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverConfig.ModelPath = cfg.Model.Path

	server := qhttp.NewServer(serverConfig, predictor, metrics, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	if err := server.Stop(); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Exiting")
}
