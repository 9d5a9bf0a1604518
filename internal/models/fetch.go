package models

import (
	"github.com/shopspring/decimal"
)

// FetchResult is the outcome of one price lookup. Either OK is set together
// with Price, Currency and Provider, or Reason explains the failure.
type FetchResult struct {
	OK       bool            `json:"ok"`
	Price    decimal.Decimal `json:"price,omitempty"`
	Currency string          `json:"currency,omitempty"`
	Provider string          `json:"provider,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	// Err holds the typed cause of a failure for logging
	Err error `json:"-"`
}

// Fetched builds a successful result.
func Fetched(price decimal.Decimal, currency, provider string) FetchResult {
	return FetchResult{OK: true, Price: price, Currency: currency, Provider: provider}
}

// Unavailable builds a failed result.
func Unavailable(reason string, err error) FetchResult {
	return FetchResult{Reason: reason, Err: err}
}

// PriceUpdateRow reports what a price update did for one position.
// Status is the provider label on success and the failure reason otherwise.
type PriceUpdateRow struct {
	PositionID uint             `json:"position_id"`
	Name       string           `json:"name"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Currency   string           `json:"currency,omitempty"`
	Status     string           `json:"status"`
}

// PriceUpdateReport is the result of a batch price update
type PriceUpdateReport struct {
	RunID   string           `json:"run_id"`
	Rows    []PriceUpdateRow `json:"rows"`
	Updated int              `json:"updated"`
	Failed  int              `json:"failed"`
}

// FetchRequest selects positions for a batch update; empty means all.
type FetchRequest struct {
	PositionIDs []uint `json:"position_ids,omitempty"`
}

// ManualPriceInput records a hand-entered price.
type ManualPriceInput struct {
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency,omitempty"`
}
