package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"

	"github.com/stevemurr/transfer-store/config"
	"github.com/stevemurr/transfer-store/handler"
	"github.com/stevemurr/transfer-store/logging"
	"github.com/stevemurr/transfer-store/store"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Production(), cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	s, err := store.New(cfg.Store)
	if err != nil {
		logger.Fatal("failed to create store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	if c, ok := s.(io.Closer); ok {
		defer c.Close()
	}

	h := handler.New(s, logger)
	wrapped := cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	})(h)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           wrapped,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Transfer Store starting",
			zap.String("addr", cfg.Addr()),
			zap.String("store", cfg.Store.Backend),
			zap.String("env", cfg.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
