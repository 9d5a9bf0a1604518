package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tropicaldog17/folio/internal/models"
	"github.com/tropicaldog17/folio/internal/repositories"
)

// PriceUpdateServiceImpl implements PriceUpdateService
type PriceUpdateServiceImpl struct {
	positions repositories.PositionRepository
	snapshots repositories.SnapshotRepository
	fetcher   Fetcher
	logger    *zap.Logger
}

// NewPriceUpdateService creates a new price update service
func NewPriceUpdateService(positions repositories.PositionRepository, snapshots repositories.SnapshotRepository, fetcher Fetcher, logger *zap.Logger) PriceUpdateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceUpdateServiceImpl{positions: positions, snapshots: snapshots, fetcher: fetcher, logger: logger}
}

// FetchOne refreshes a single position.
func (s *PriceUpdateServiceImpl) FetchOne(ctx context.Context, id uint) (models.PriceUpdateRow, error) {
	p, err := s.positions.GetByID(ctx, id)
	if err != nil {
		return models.PriceUpdateRow{}, err
	}
	return s.update(ctx, s.logger, p), nil
}

// FetchAll refreshes the given positions, or all when ids is empty, in name
// order. A failure for one position never affects the others and snapshots
// already written stay. A cancelled context stops the batch before the next
// position; the rows done so far are returned with the context error.
func (s *PriceUpdateServiceImpl) FetchAll(ctx context.Context, ids []uint) (*models.PriceUpdateReport, error) {
	positions, err := s.positions.List(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	report := &models.PriceUpdateReport{RunID: uuid.NewString(), Rows: make([]models.PriceUpdateRow, 0, len(positions))}
	log := s.logger.With(zap.String("run_id", report.RunID))
	log.Info("price update started", zap.Int("positions", len(positions)))

	for _, p := range positions {
		if err := ctx.Err(); err != nil {
			log.Warn("price update cancelled", zap.Int("done", len(report.Rows)), zap.Error(err))
			return report, err
		}
		row := s.update(ctx, log, p)
		if row.Price != nil {
			report.Updated++
		} else {
			report.Failed++
		}
		report.Rows = append(report.Rows, row)
	}

	log.Info("price update finished", zap.Int("updated", report.Updated), zap.Int("failed", report.Failed))
	return report, nil
}

// update fetches one position and appends a snapshot on success.
func (s *PriceUpdateServiceImpl) update(ctx context.Context, log *zap.Logger, p *models.Position) models.PriceUpdateRow {
	row := models.PriceUpdateRow{PositionID: p.ID, Name: p.Name}

	res := s.fetcher.Fetch(ctx, p)
	if !res.OK {
		row.Status = res.Reason
		if res.Reason != ReasonNoFeed {
			log.Warn("price unavailable",
				zap.Uint("position", p.ID),
				zap.String("name", p.Name),
				zap.String("source", string(p.PriceSource)),
				zap.String("reason", res.Reason),
				zap.Error(res.Err))
		}
		return row
	}

	positionID := p.ID
	if _, err := s.snapshots.Append(ctx, p.SnapshotSymbol(), res.Price, res.Currency, res.Provider, &positionID); err != nil {
		log.Error("failed to store price", zap.Uint("position", p.ID), zap.Error(err))
		row.Status = "store error: " + err.Error()
		return row
	}

	price := res.Price
	row.Price = &price
	row.Currency = res.Currency
	row.Status = res.Provider
	return row
}
