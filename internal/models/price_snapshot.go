package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// SourceManual labels snapshots entered by hand.
const SourceManual = "manual"

// PriceSnapshot is one recorded price observation for a symbol.
// Rows are append-only; the symbol is the ticker-or-name of a position and is
// joined by string equality, PositionID is informational only.
type PriceSnapshot struct {
	ID         uint            `json:"id" gorm:"primaryKey;column:id"`
	Symbol     string          `json:"symbol" gorm:"column:symbol;type:varchar(255);not null;index:idx_price_snapshots_symbol_as_of,priority:1"`
	PositionID *uint           `json:"position_id,omitempty" gorm:"column:position_id;index"`
	Price      decimal.Decimal `json:"price" gorm:"column:price;type:decimal(30,10);not null"`
	Currency   string          `json:"currency" gorm:"column:currency;type:varchar(10);not null;default:'EUR'"`
	AsOf       time.Time       `json:"as_of" gorm:"column:as_of;type:date;not null;index:idx_price_snapshots_symbol_as_of,priority:2"`
	Source     string          `json:"source" gorm:"column:source;type:varchar(50)"`
	CreatedAt  time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for PriceSnapshot
func (PriceSnapshot) TableName() string {
	return "price_snapshots"
}

func (s *PriceSnapshot) Validate() error {
	if s.Symbol == "" {
		return errors.New("symbol is required")
	}
	if s.Price.IsZero() || s.Price.IsNegative() {
		return errors.New("price must be positive")
	}
	if s.AsOf.IsZero() {
		return errors.New("as-of date is required")
	}
	return nil
}

// AsOfDate is the calendar date of t in t's own location, kept as UTC midnight
// so stored dates compare equal regardless of zone.
func AsOfDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
