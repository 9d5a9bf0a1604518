package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionView joins a position with its latest price snapshot and carries the
// derived valuation columns.
type PositionView struct {
	Position
	Price         *decimal.Decimal `json:"price,omitempty"`
	PriceCurrency string           `json:"price_currency,omitempty"`
	AsOf          *time.Time       `json:"as_of,omitempty"`
	MarketValue   decimal.Decimal  `json:"market_value"`
	CostBasis     decimal.Decimal  `json:"cost_basis"`
	Gain          decimal.Decimal  `json:"gain"`
	GainPercent   decimal.Decimal  `json:"gain_percent"`
}

// NewPositionView values p at the latest snapshot, which may be nil.
func NewPositionView(p Position, latest *PriceSnapshot) PositionView {
	v := PositionView{Position: p}
	var price *decimal.Decimal
	if latest != nil {
		px := latest.Price
		asOf := latest.AsOf
		price = &px
		v.Price = &px
		v.PriceCurrency = latest.Currency
		v.AsOf = &asOf
	}
	v.MarketValue = MarketValue(p.Quantity, price)
	v.CostBasis = p.Quantity.Mul(p.AvgCost)
	v.Gain = v.MarketValue.Sub(v.CostBasis)
	v.GainPercent = GainPercent(p.AvgCost, price)
	return v
}

// MarketValue is quantity × price, or zero without a price.
func MarketValue(quantity decimal.Decimal, price *decimal.Decimal) decimal.Decimal {
	if price == nil {
		return decimal.Zero
	}
	return quantity.Mul(*price)
}

// GainPercent is (price − avgCost) / avgCost as a fraction.
// Zero when the average cost is zero or the price is unknown.
func GainPercent(avgCost decimal.Decimal, price *decimal.Decimal) decimal.Decimal {
	if price == nil || avgCost.IsZero() {
		return decimal.Zero
	}
	return price.Sub(avgCost).Div(avgCost)
}

// PortfolioSummary aggregates a set of position views.
type PortfolioSummary struct {
	Positions   int             `json:"positions"`
	Priced      int             `json:"priced"`
	MarketValue decimal.Decimal `json:"market_value"`
	CostBasis   decimal.Decimal `json:"cost_basis"`
	Gain        decimal.Decimal `json:"gain"`
}

// Summarize totals the views. Currencies are not converted.
func Summarize(views []PositionView) PortfolioSummary {
	s := PortfolioSummary{
		MarketValue: decimal.Zero,
		CostBasis:   decimal.Zero,
		Gain:        decimal.Zero,
	}
	for _, v := range views {
		s.Positions++
		if v.Price != nil {
			s.Priced++
		}
		s.MarketValue = s.MarketValue.Add(v.MarketValue)
		s.CostBasis = s.CostBasis.Add(v.CostBasis)
		s.Gain = s.Gain.Add(v.Gain)
	}
	return s
}

// Overview is the dashboard payload
type Overview struct {
	Rows    []PositionView   `json:"rows"`
	Summary PortfolioSummary `json:"summary"`
}
