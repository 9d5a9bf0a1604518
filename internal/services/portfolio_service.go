package services

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/tropicaldog17/folio/internal/errors"
	"github.com/tropicaldog17/folio/internal/models"
	"github.com/tropicaldog17/folio/internal/repositories"
)

// PortfolioServiceImpl implements PortfolioService
type PortfolioServiceImpl struct {
	positions repositories.PositionRepository
	snapshots repositories.SnapshotRepository
	logger    *zap.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(positions repositories.PositionRepository, snapshots repositories.SnapshotRepository, logger *zap.Logger) PortfolioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioServiceImpl{positions: positions, snapshots: snapshots, logger: logger}
}

func (s *PortfolioServiceImpl) AddPosition(ctx context.Context, in *models.PositionInput) (*models.Position, error) {
	p, err := in.ToPosition()
	if err != nil {
		return nil, err
	}
	if err := s.positions.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("position added", zap.Uint("id", p.ID), zap.String("name", p.Name), zap.String("source", string(p.PriceSource)))
	return p, nil
}

func (s *PortfolioServiceImpl) ListPositions(ctx context.Context) ([]*models.Position, error) {
	return s.positions.List(ctx, nil)
}

func (s *PortfolioServiceImpl) GetPosition(ctx context.Context, id uint) (*models.Position, error) {
	return s.positions.GetByID(ctx, id)
}

// UpdatePriceSettings changes how a position is priced. Unknown sources are
// rejected here rather than silently treated as manual at fetch time.
func (s *PortfolioServiceImpl) UpdatePriceSettings(ctx context.Context, id uint, settings models.PriceSettings) (*models.Position, error) {
	src, err := models.ParsePriceSource(settings.Source)
	if err != nil {
		return nil, err
	}
	symbol := strings.TrimSpace(settings.Symbol)
	if err := s.positions.UpdatePriceSettings(ctx, id, src, symbol); err != nil {
		return nil, err
	}
	s.logger.Info("price settings updated", zap.Uint("id", id), zap.String("source", string(src)), zap.String("symbol", symbol))
	return s.positions.GetByID(ctx, id)
}

// SaveManualPrice records a hand-entered price for today. The currency
// defaults to the position's.
func (s *PortfolioServiceImpl) SaveManualPrice(ctx context.Context, id uint, in models.ManualPriceInput) (*models.PriceSnapshot, error) {
	if !in.Price.IsPositive() {
		return nil, &apperrors.ErrValidation{Field: "price", Message: "must be positive"}
	}
	p, err := s.positions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	currency := in.Currency
	if strings.TrimSpace(currency) == "" {
		currency = p.Currency
	}
	positionID := p.ID
	snap, err := s.snapshots.Append(ctx, p.SnapshotSymbol(), in.Price, currency, models.SourceManual, &positionID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("manual price saved", zap.String("symbol", snap.Symbol), zap.String("price", snap.Price.String()))
	return snap, nil
}

func (s *PortfolioServiceImpl) LatestPrices(ctx context.Context) ([]*models.PriceSnapshot, error) {
	latest, err := s.snapshots.LatestPerSymbol(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.PriceSnapshot, 0, len(latest))
	for _, snap := range latest {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *PortfolioServiceImpl) PriceHistory(ctx context.Context, symbol string) ([]*models.PriceSnapshot, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, &apperrors.ErrValidation{Field: "symbol", Message: "is required"}
	}
	return s.snapshots.History(ctx, symbol)
}

func (s *PortfolioServiceImpl) PositionHistory(ctx context.Context, id uint) ([]*models.PriceSnapshot, error) {
	p, err := s.positions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.snapshots.History(ctx, p.SnapshotSymbol())
}

// Overview values every position at its latest snapshot, largest market value first.
func (s *PortfolioServiceImpl) Overview(ctx context.Context) (*models.Overview, error) {
	positions, err := s.positions.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	latest, err := s.snapshots.LatestPerSymbol(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.PositionView, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, models.NewPositionView(*p, latest[p.SnapshotSymbol()]))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].MarketValue.Cmp(rows[j].MarketValue); c != 0 {
			return c > 0
		}
		return rows[i].Name < rows[j].Name
	})

	return &models.Overview{Rows: rows, Summary: models.Summarize(rows)}, nil
}
