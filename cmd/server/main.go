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
	"time"

	"go.uber.org/zap"

	_ "github.com/tropicaldog17/folio/docs"
	"github.com/tropicaldog17/folio/internal/app"
	"github.com/tropicaldog17/folio/internal/config"
	"github.com/tropicaldog17/folio/internal/handlers"
	"github.com/tropicaldog17/folio/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default $FOLIO_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	zl, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}

	a, err := app.New(cfg, zl)
	if err != nil {
		zl.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	if err := a.DB.Health(); err != nil {
		zl.Fatal("database health check failed", zap.Error(err))
	}

	router := handlers.NewRouter(
		handlers.NewPortfolioHandler(a.Portfolio),
		handlers.NewPriceUpdateHandler(a.Updates),
		a.DB,
		zl,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		zl.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
