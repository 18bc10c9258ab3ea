package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"chaintrack/internal/commons"
	"chaintrack/internal/config"
	"chaintrack/internal/infrastructure/logger"
	"chaintrack/internal/infrastructure/mysql"
	"chaintrack/internal/inventory"
	"chaintrack/internal/inventory/ledger"
	"chaintrack/internal/server"
	"chaintrack/internal/store/filestore"
	"chaintrack/internal/store/mysqlstore"

	"go.uber.org/zap"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	recordStore, cleanup, err := newRecordStore(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("initializing record store", zap.Error(err))
	}
	defer cleanup()

	inventoryCtrl := inventory.NewModule(recordStore, zapLogger)

	router := server.NewRouter(inventoryCtrl, zapLogger)
	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}

// loadConfig prefers a yaml config file when CONFIG_FILE points at one,
// otherwise reads the environment.
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return commons.LoadConfig(path)
	}
	return config.Load()
}

func newRecordStore(cfg *config.Config, zapLogger *zap.Logger) (ledger.RecordStore, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMySQL:
		db, err := mysql.NewConnection(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		zapLogger.Info("database connected", zap.String("host", cfg.Database.Host))
		return mysqlstore.New(db, cfg.Store.LockTimeout, zapLogger), func() { db.Close() }, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.FilePath), 0o755); err != nil {
			return nil, nil, err
		}
		zapLogger.Info("using file store", zap.String("path", cfg.Store.FilePath))
		return filestore.New(cfg.Store.FilePath, cfg.Store.LockTimeout, zapLogger), func() {}, nil
	}
}
