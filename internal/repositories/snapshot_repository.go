package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tropicaldog17/folio/internal/db"
	"github.com/tropicaldog17/folio/internal/models"
)

// newest row per symbol; same-day ties go to the latest insert
const latestPerSymbolQuery = `
	SELECT s.id, s.symbol, s.position_id, s.price, s.currency, s.as_of, s.source, s.created_at
	FROM price_snapshots s
	WHERE s.id = (
		SELECT s2.id FROM price_snapshots s2
		WHERE s2.symbol = s.symbol
		ORDER BY s2.as_of DESC, s2.id DESC
		LIMIT 1
	)
	ORDER BY s.symbol`

type snapshotRepository struct {
	db  *db.DB
	now func() time.Time
	// loc decides which calendar day "today" is
	loc *time.Location
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(database *db.DB) SnapshotRepository {
	return &snapshotRepository{db: database, now: time.Now, loc: time.Local}
}

func (r *snapshotRepository) Append(ctx context.Context, symbol string, price decimal.Decimal, currency, source string, positionID *uint) (*models.PriceSnapshot, error) {
	s := &models.PriceSnapshot{
		Symbol:     symbol,
		PositionID: positionID,
		Price:      price,
		Currency:   currency,
		AsOf:       models.AsOfDate(r.now().In(r.loc)),
		Source:     source,
	}
	if err := r.Insert(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *snapshotRepository) Insert(ctx context.Context, s *models.PriceSnapshot) error {
	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	if s.Currency == "" {
		s.Currency = models.DefaultCurrency
	}
	if s.Source == "" {
		s.Source = models.SourceManual
	}
	s.AsOf = models.AsOfDate(s.AsOf)
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid price snapshot: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("failed to append price snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) LatestPerSymbol(ctx context.Context) (map[string]*models.PriceSnapshot, error) {
	var rows []*models.PriceSnapshot
	if err := r.db.WithContext(ctx).Raw(latestPerSymbolQuery).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get latest prices: %w", err)
	}
	latest := make(map[string]*models.PriceSnapshot, len(rows))
	for _, s := range rows {
		latest[s.Symbol] = s
	}
	return latest, nil
}

func (r *snapshotRepository) History(ctx context.Context, symbol string) ([]*models.PriceSnapshot, error) {
	var rows []*models.PriceSnapshot
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("as_of ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}
	return rows, nil
}

func (r *snapshotRepository) Count(ctx context.Context, symbol string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.PriceSnapshot{}).Where("symbol = ?", symbol).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count price snapshots: %w", err)
	}
	return n, nil
}
