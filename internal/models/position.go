package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/tropicaldog17/folio/internal/errors"
)

// DefaultCurrency is used for positions and prices that do not specify one.
const DefaultCurrency = "EUR"

// PositionType classifies a holding
type PositionType string

const (
	PositionTypeEquity PositionType = "Equity"
	PositionTypeETF    PositionType = "ETF"
	PositionTypeFund   PositionType = "Fund"
	PositionTypeCrypto PositionType = "Crypto"
	PositionTypeBond   PositionType = "Bond"
	PositionTypeCash   PositionType = "Cash"
)

// PositionTypes lists the recognised position types in display order.
var PositionTypes = []PositionType{
	PositionTypeEquity, PositionTypeETF, PositionTypeFund,
	PositionTypeCrypto, PositionTypeBond, PositionTypeCash,
}

// German labels stored by older versions
var positionTypeAliases = map[string]PositionType{
	"aktie":   PositionTypeEquity,
	"stock":   PositionTypeEquity,
	"fonds":   PositionTypeFund,
	"krypto":  PositionTypeCrypto,
	"anleihe": PositionTypeBond,
}

// ParsePositionType normalises s into a PositionType. The empty string is allowed
// and maps to an unset type.
func ParsePositionType(s string) (PositionType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, t := range PositionTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	if t, ok := positionTypeAliases[strings.ToLower(s)]; ok {
		return t, nil
	}
	return "", &apperrors.ErrValidation{Field: "type", Message: fmt.Sprintf("unknown position type %q", s)}
}

// PriceSource selects how a position is priced
type PriceSource string

const (
	PriceSourceManual     PriceSource = "manual"
	PriceSourceEquityFeed PriceSource = "equity-feed"
	PriceSourceCryptoFeed PriceSource = "crypto-feed"
)

var priceSourceAliases = map[string]PriceSource{
	"yahoo":     PriceSourceEquityFeed,
	"equity":    PriceSourceEquityFeed,
	"coingecko": PriceSourceCryptoFeed,
	"crypto":    PriceSourceCryptoFeed,
}

// ParsePriceSource normalises s into a PriceSource. Empty means manual.
// Labels stored by older versions ("yahoo", "coingecko") are accepted.
func ParsePriceSource(s string) (PriceSource, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch PriceSource(s) {
	case "":
		return PriceSourceManual, nil
	case PriceSourceManual, PriceSourceEquityFeed, PriceSourceCryptoFeed:
		return PriceSource(s), nil
	}
	if src, ok := priceSourceAliases[s]; ok {
		return src, nil
	}
	return "", &apperrors.ErrValidation{Field: "price_source", Message: fmt.Sprintf("unknown price source %q", s)}
}

// Position represents a tracked holding
type Position struct {
	ID           uint             `json:"id" gorm:"primaryKey;column:id"`
	Name         string           `json:"name" gorm:"column:name;type:varchar(255);not null;index"`
	Ticker       string           `json:"ticker,omitempty" gorm:"column:ticker;type:varchar(64)"`
	Type         PositionType     `json:"type,omitempty" gorm:"column:type;type:varchar(20)"`
	Platform     string           `json:"platform,omitempty" gorm:"column:platform;type:varchar(255)"`
	Quantity     decimal.Decimal  `json:"quantity" gorm:"column:quantity;type:decimal(30,10);not null"`
	AvgCost      decimal.Decimal  `json:"avg_cost" gorm:"column:avg_cost;type:decimal(30,10);not null"`
	Currency     string           `json:"currency" gorm:"column:currency;type:varchar(10);not null;default:'EUR'"`
	ISIN         string           `json:"isin,omitempty" gorm:"column:isin;type:varchar(64)"`
	ExpenseRatio *decimal.Decimal `json:"ter,omitempty" gorm:"column:ter;type:decimal(12,6)"`
	PurchaseDate *string          `json:"purchase_date,omitempty" gorm:"column:purchase_date;type:varchar(10)"`
	PriceSource  PriceSource      `json:"price_source" gorm:"column:price_source;type:varchar(20);not null;default:'manual'"`
	PriceSymbol  string           `json:"price_symbol,omitempty" gorm:"column:price_symbol;type:varchar(255)"`
	Notes        string           `json:"notes,omitempty" gorm:"column:notes;type:text"`
	CreatedAt    time.Time        `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for Position
func (Position) TableName() string {
	return "positions"
}

// SnapshotSymbol is the key price snapshots are recorded under: the ticker when
// set, otherwise the name.
func (p *Position) SnapshotSymbol() string {
	if t := strings.TrimSpace(p.Ticker); t != "" {
		return t
	}
	return p.Name
}

// FeedSymbol is the symbol sent to the price feed: the configured price symbol,
// falling back to the ticker and then the name.
func (p *Position) FeedSymbol() string {
	if s := strings.TrimSpace(p.PriceSymbol); s != "" {
		return s
	}
	return p.SnapshotSymbol()
}

// Normalize fills defaults and canonicalises enum labels in place.
func (p *Position) Normalize() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Ticker = strings.TrimSpace(p.Ticker)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	t, err := ParsePositionType(string(p.Type))
	if err != nil {
		return err
	}
	p.Type = t
	src, err := ParsePriceSource(string(p.PriceSource))
	if err != nil {
		return err
	}
	p.PriceSource = src
	if p.PurchaseDate != nil && strings.TrimSpace(*p.PurchaseDate) == "" {
		p.PurchaseDate = nil
	}
	return nil
}

// Validate checks the invariants of a position
func (p *Position) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &apperrors.ErrValidation{Field: "name", Message: "is required"}
	}
	if p.Quantity.IsNegative() {
		return &apperrors.ErrValidation{Field: "quantity", Message: "must not be negative"}
	}
	if p.AvgCost.IsNegative() {
		return &apperrors.ErrValidation{Field: "avg_cost", Message: "must not be negative"}
	}
	if p.ExpenseRatio != nil && p.ExpenseRatio.IsNegative() {
		return &apperrors.ErrValidation{Field: "ter", Message: "must not be negative"}
	}
	if p.PurchaseDate != nil {
		if _, err := time.Parse("2006-01-02", *p.PurchaseDate); err != nil {
			return &apperrors.ErrValidation{Field: "purchase_date", Message: "must be YYYY-MM-DD"}
		}
	}
	if _, err := ParsePriceSource(string(p.PriceSource)); err != nil {
		return err
	}
	return nil
}

// PositionInput is the user-supplied form of a new position. Quantity and
// average cost are pointers so a missing value can be told apart from zero.
type PositionInput struct {
	Name         string           `json:"name"`
	Ticker       string           `json:"ticker,omitempty"`
	Type         string           `json:"type,omitempty"`
	Platform     string           `json:"platform,omitempty"`
	Quantity     *decimal.Decimal `json:"quantity"`
	AvgCost      *decimal.Decimal `json:"avg_cost"`
	Currency     string           `json:"currency,omitempty"`
	ISIN         string           `json:"isin,omitempty"`
	ExpenseRatio *decimal.Decimal `json:"ter,omitempty"`
	PurchaseDate string           `json:"purchase_date,omitempty"`
	PriceSource  string           `json:"price_source,omitempty"`
	PriceSymbol  string           `json:"price_symbol,omitempty"`
	Notes        string           `json:"notes,omitempty"`
}

// ToPosition converts the input into a normalised, validated Position.
func (in *PositionInput) ToPosition() (*Position, error) {
	if in.Quantity == nil {
		return nil, &apperrors.ErrValidation{Field: "quantity", Message: "is required"}
	}
	if in.AvgCost == nil {
		return nil, &apperrors.ErrValidation{Field: "avg_cost", Message: "is required"}
	}
	p := &Position{
		Name:         in.Name,
		Ticker:       in.Ticker,
		Type:         PositionType(in.Type),
		Platform:     strings.TrimSpace(in.Platform),
		Quantity:     *in.Quantity,
		AvgCost:      *in.AvgCost,
		Currency:     in.Currency,
		ISIN:         strings.TrimSpace(in.ISIN),
		ExpenseRatio: in.ExpenseRatio,
		PriceSource:  PriceSource(in.PriceSource),
		PriceSymbol:  strings.TrimSpace(in.PriceSymbol),
		Notes:        in.Notes,
	}
	if in.PurchaseDate != "" {
		d := strings.TrimSpace(in.PurchaseDate)
		p.PurchaseDate = &d
	}
	if err := p.Normalize(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// PriceSettings is the only mutable part of a stored position.
type PriceSettings struct {
	Source string `json:"price_source"`
	Symbol string `json:"price_symbol"`
}
