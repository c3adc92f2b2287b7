package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/localan/shortener/internal/api/rest"
	"github.com/localan/shortener/internal/config"
	"github.com/localan/shortener/internal/storage"
	"github.com/localan/shortener/internal/storage/inmemory"
	"github.com/localan/shortener/internal/storage/inpsql"
	"github.com/localan/shortener/internal/storage/insqlite"
)

func main() {
	_ = godotenv.Load()
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}

	cfg, err := config.NewDefaultConfiguration()
	if err != nil {
		log.Fatal("configuration failed", zap.Error(err))
	}
	cfg.ParseFlags()

	// pick the storage backend from the DSN; the DB-backed ones register a
	// closer goroutine on the waiting group
	var linkStorage storage.LinkStorage
	switch {
	case cfg.StorageConfig.DatabaseDSN == "":
		linkStorage = inmemory.InitStorage()
	case strings.HasPrefix(cfg.StorageConfig.DatabaseDSN, "postgres://") || strings.HasPrefix(cfg.StorageConfig.DatabaseDSN, "postgresql://"):
		wg.Add(1)
		linkStorage, err = inpsql.InitStorage(ctx, wg, cfg.StorageConfig, log)
	default:
		wg.Add(1)
		linkStorage, err = insqlite.InitStorage(ctx, wg, cfg.StorageConfig, log)
	}
	if err != nil {
		log.Fatal("storage initialization failed", zap.Error(err))
	}

	server, err := rest.InitServer(ctx, cfg, linkStorage, log)
	if err != nil {
		log.Fatal("server initialization failed", zap.Error(err))
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-done
		log.Info("server shutdown attempted")
		ctxTO, cancelTO := context.WithTimeout(ctx, 5*time.Second)
		defer cancelTO()
		if err := server.Shutdown(ctxTO); err != nil {
			log.Fatal("server shutdown failed", zap.Error(err))
		}
		cancel()
	}()

	log.Info("server start attempted", zap.String("address", cfg.ServerConfig.ServerAddress))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server failed", zap.Error(err))
	}
	// wait for the storage closer goroutine before exiting
	wg.Wait()
	log.Info("server shutdown succeeded")
}
