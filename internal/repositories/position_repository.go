package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tropicaldog17/folio/internal/db"
	apperrors "github.com/tropicaldog17/folio/internal/errors"
	"github.com/tropicaldog17/folio/internal/models"
)

type positionRepository struct {
	db *db.DB
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(database *db.DB) PositionRepository {
	return &positionRepository{db: database}
}

func (r *positionRepository) Create(ctx context.Context, p *models.Position) error {
	if err := p.Normalize(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}
	return nil
}

func (r *positionRepository) GetByID(ctx context.Context, id uint) (*models.Position, error) {
	var p models.Position
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("position %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &p, nil
}

func (r *positionRepository) List(ctx context.Context, ids []uint) ([]*models.Position, error) {
	query := r.db.WithContext(ctx).Model(&models.Position{})
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	var positions []*models.Position
	if err := query.Order("name ASC").Order("id ASC").Find(&positions).Error; err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, nil
}

func (r *positionRepository) UpdatePriceSettings(ctx context.Context, id uint, source models.PriceSource, symbol string) error {
	res := r.db.WithContext(ctx).Model(&models.Position{}).Where("id = ?", id).Updates(map[string]interface{}{
		"price_source": string(source),
		"price_symbol": symbol,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update price settings: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("position %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
