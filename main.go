package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/epe-tools/desvinculados-engine/pkg/config"
	"github.com/epe-tools/desvinculados-engine/pkg/handlers"
	"github.com/epe-tools/desvinculados-engine/pkg/logging"
	"github.com/epe-tools/desvinculados-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load("config.yaml", Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	session := services.NewSessionService(logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewDatasetHandler(session, cfg, logger).RegisterRoutes(mux)
	handlers.NewExportHandler(session, logger).RegisterRoutes(mux)

	logger.Info("starting desvinculados-engine",
		zap.String("addr", cfg.Addr()),
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env))
	if err := http.ListenAndServe(cfg.Addr(), mux); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
