package services

import (
	"context"

	"github.com/tropicaldog17/folio/internal/models"
)

// Fetcher looks up the current price of a position. It never fails: problems
// are reported in the result.
type Fetcher interface {
	Fetch(ctx context.Context, p *models.Position) models.FetchResult
}

// PortfolioService defines the position and price operations used by the
// presentation layers
type PortfolioService interface {
	AddPosition(ctx context.Context, in *models.PositionInput) (*models.Position, error)
	ListPositions(ctx context.Context) ([]*models.Position, error)
	GetPosition(ctx context.Context, id uint) (*models.Position, error)
	UpdatePriceSettings(ctx context.Context, id uint, settings models.PriceSettings) (*models.Position, error)
	SaveManualPrice(ctx context.Context, id uint, in models.ManualPriceInput) (*models.PriceSnapshot, error)
	LatestPrices(ctx context.Context) ([]*models.PriceSnapshot, error)
	PriceHistory(ctx context.Context, symbol string) ([]*models.PriceSnapshot, error)
	PositionHistory(ctx context.Context, id uint) ([]*models.PriceSnapshot, error)
	Overview(ctx context.Context) (*models.Overview, error)
}

// PriceUpdateService refreshes prices from the feeds
type PriceUpdateService interface {
	FetchOne(ctx context.Context, id uint) (models.PriceUpdateRow, error)
	FetchAll(ctx context.Context, ids []uint) (*models.PriceUpdateReport, error)
}
