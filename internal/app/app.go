// Package app wires the store, the feeds and the services for both the HTTP
// server and the command line tool.
package app

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/tropicaldog17/folio/internal/config"
	"github.com/tropicaldog17/folio/internal/db"
	"github.com/tropicaldog17/folio/internal/repositories"
	"github.com/tropicaldog17/folio/internal/services"
)

type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *db.DB
	Portfolio services.PortfolioService
	Updates   services.PriceUpdateService
}

// New connects to the database and builds the services. The caller owns the
// returned App and must Close it.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	database, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established",
		zap.String("driver", cfg.Database.Driver),
		zap.String("path", cfg.Database.Path))

	positions := repositories.NewPositionRepository(database)
	snapshots := repositories.NewSnapshotRepository(database)

	// one client shared by both feeds; per-call deadlines come from the feed timeout
	httpClient := &http.Client{}
	fetcher := services.NewPriceFetcher(logger,
		services.NewEquityFeed(cfg.Feeds.EquityBaseURL, httpClient, cfg.Feeds.Timeout),
		services.NewCryptoFeed(cfg.Feeds.CryptoBaseURL, httpClient, cfg.Feeds.Timeout),
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        database,
		Portfolio: services.NewPortfolioService(positions, snapshots, logger),
		Updates:   services.NewPriceUpdateService(positions, snapshots, fetcher, logger),
	}, nil
}

func (a *App) Close() error {
	_ = a.Logger.Sync()
	return a.DB.Close()
}
