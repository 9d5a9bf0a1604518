package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tropicaldog17/folio/internal/models"
)

// PositionRepository defines the data operations on positions
type PositionRepository interface {
	Create(ctx context.Context, p *models.Position) error
	GetByID(ctx context.Context, id uint) (*models.Position, error)
	// List returns positions ordered by name; a non-empty ids restricts the result.
	List(ctx context.Context, ids []uint) ([]*models.Position, error)
	UpdatePriceSettings(ctx context.Context, id uint, source models.PriceSource, symbol string) error
}

// SnapshotRepository defines the data operations on price snapshots
type SnapshotRepository interface {
	// Append inserts a snapshot dated today; it never replaces an existing row.
	Append(ctx context.Context, symbol string, price decimal.Decimal, currency, source string, positionID *uint) (*models.PriceSnapshot, error)
	Insert(ctx context.Context, snapshot *models.PriceSnapshot) error
	// LatestPerSymbol returns the newest snapshot of every symbol keyed by symbol.
	LatestPerSymbol(ctx context.Context) (map[string]*models.PriceSnapshot, error)
	History(ctx context.Context, symbol string) ([]*models.PriceSnapshot, error)
	Count(ctx context.Context, symbol string) (int64, error)
}
