package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"saboteur/internal/config"
	"saboteur/internal/engine"
	"saboteur/internal/replay"
	"saboteur/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	port := flag.Int("port", cfg.Port, "server port")
	flag.Parse()

	logger, err := newLogger(cfg.Dev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := engine.DefaultCatalog()
	if cfg.CatalogPath != "" {
		catalog, err = engine.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			logger.Fatal("load catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
		}
	}

	var store replay.Store = replay.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rdb, err := replay.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		store = replay.NewRedisStore(rdb)
		logger.Info("replays stored in redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	}

	srv := server.New(server.Options{
		Port:      *port,
		PublicURL: cfg.PublicURL,
		Catalog:   catalog,
		Store:     store,
		Logger:    logger,
	})
	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
