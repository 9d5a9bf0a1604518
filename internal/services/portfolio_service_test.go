package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "github.com/tropicaldog17/folio/internal/errors"
	"github.com/tropicaldog17/folio/internal/models"
)

func newPortfolioService(t *testing.T) (PortfolioService, testStore) {
	store := newTestStore(t)
	return NewPortfolioService(store.positions, store.snapshots, zaptest.NewLogger(t)), store
}

func TestPortfolioService_ManualPriceValuation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPortfolioService(t)

	p, err := svc.AddPosition(ctx, &models.PositionInput{
		Name: "ACME Corp", Ticker: "ACME", Type: "Aktie",
		Quantity: decPtr("10"), AvgCost: decPtr("50"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PositionTypeEquity, p.Type)
	assert.Equal(t, models.PriceSourceManual, p.PriceSource)

	snap, err := svc.SaveManualPrice(ctx, p.ID, models.ManualPriceInput{Price: decimal.NewFromInt(60)})
	require.NoError(t, err)
	assert.Equal(t, "ACME", snap.Symbol)
	assert.Equal(t, "EUR", snap.Currency)
	assert.Equal(t, models.SourceManual, snap.Source)
	require.NotNil(t, snap.PositionID)
	assert.Equal(t, p.ID, *snap.PositionID)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, ov.Rows, 1)
	row := ov.Rows[0]
	require.NotNil(t, row.Price)
	assert.True(t, row.MarketValue.Equal(decimal.NewFromInt(600)), row.MarketValue.String())
	assert.True(t, row.Gain.Equal(decimal.NewFromInt(100)), row.Gain.String())
	assert.True(t, row.GainPercent.Equal(decimal.RequireFromString("0.2")), row.GainPercent.String())
	assert.Equal(t, 1, ov.Summary.Priced)
}

func TestPortfolioService_OverviewOrderAndUnpriced(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPortfolioService(t)

	add := func(name, ticker, qty string) *models.Position {
		p, err := svc.AddPosition(ctx, &models.PositionInput{Name: name, Ticker: ticker, Quantity: decPtr(qty), AvgCost: decPtr("1")})
		require.NoError(t, err)
		return p
	}
	small := add("Small", "SML", "1")
	big := add("Big", "BIG", "100")
	add("Unpriced", "", "5")

	_, err := svc.SaveManualPrice(ctx, small.ID, models.ManualPriceInput{Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = svc.SaveManualPrice(ctx, big.ID, models.ManualPriceInput{Price: decimal.NewFromInt(2), Currency: "usd"})
	require.NoError(t, err)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, ov.Rows, 3)
	assert.Equal(t, "Big", ov.Rows[0].Name)
	assert.Equal(t, "USD", ov.Rows[0].PriceCurrency)
	assert.Equal(t, "Small", ov.Rows[1].Name)
	assert.Equal(t, "Unpriced", ov.Rows[2].Name)
	assert.Nil(t, ov.Rows[2].Price)
	assert.True(t, ov.Rows[2].MarketValue.IsZero())
	assert.True(t, ov.Rows[2].GainPercent.IsZero())

	assert.Equal(t, 3, ov.Summary.Positions)
	assert.Equal(t, 2, ov.Summary.Priced)
	assert.True(t, ov.Summary.MarketValue.Equal(decimal.NewFromInt(210)), ov.Summary.MarketValue.String())
}

func TestPortfolioService_UpdatePriceSettings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPortfolioService(t)

	p, err := svc.AddPosition(ctx, &models.PositionInput{Name: "World ETF", Quantity: decPtr("3"), AvgCost: decPtr("90")})
	require.NoError(t, err)

	updated, err := svc.UpdatePriceSettings(ctx, p.ID, models.PriceSettings{Source: "yahoo", Symbol: " IWDA.AS "})
	require.NoError(t, err)
	assert.Equal(t, models.PriceSourceEquityFeed, updated.PriceSource)
	assert.Equal(t, "IWDA.AS", updated.PriceSymbol)
	assert.Equal(t, "IWDA.AS", updated.FeedSymbol())
	assert.Equal(t, "World ETF", updated.SnapshotSymbol())

	_, err = svc.UpdatePriceSettings(ctx, p.ID, models.PriceSettings{Source: "bloomberg"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.UpdatePriceSettings(ctx, 999, models.PriceSettings{Source: "manual"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPortfolioService_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPortfolioService(t)

	_, err := svc.AddPosition(ctx, &models.PositionInput{Name: "No qty", AvgCost: decPtr("1")})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.AddPosition(ctx, &models.PositionInput{Name: "Neg", Quantity: decPtr("-1"), AvgCost: decPtr("1")})
	assert.True(t, apperrors.IsValidation(err))

	p, err := svc.AddPosition(ctx, &models.PositionInput{Name: "Gold", Quantity: decPtr("1"), AvgCost: decPtr("1")})
	require.NoError(t, err)

	_, err = svc.SaveManualPrice(ctx, p.ID, models.ManualPriceInput{Price: decimal.Zero})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.SaveManualPrice(ctx, 42, models.ManualPriceInput{Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.GetPosition(ctx, 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.PriceHistory(ctx, "  ")
	assert.True(t, apperrors.IsValidation(err))
}

func TestPortfolioService_HistoryAndLatest(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPortfolioService(t)

	p, err := svc.AddPosition(ctx, &models.PositionInput{Name: "Gold", Quantity: decPtr("1"), AvgCost: decPtr("1")})
	require.NoError(t, err)
	q, err := svc.AddPosition(ctx, &models.PositionInput{Name: "ACME Corp", Ticker: "ACME", Quantity: decPtr("1"), AvgCost: decPtr("1")})
	require.NoError(t, err)

	for _, px := range []int64{10, 11} {
		_, err := svc.SaveManualPrice(ctx, p.ID, models.ManualPriceInput{Price: decimal.NewFromInt(px)})
		require.NoError(t, err)
	}
	_, err = svc.SaveManualPrice(ctx, q.ID, models.ManualPriceInput{Price: decimal.NewFromInt(5)})
	require.NoError(t, err)

	hist, err := svc.PositionHistory(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 2)

	hist, err = svc.PriceHistory(ctx, "Gold")
	require.NoError(t, err)
	assert.Len(t, hist, 2)

	latest, err := svc.LatestPrices(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "ACME", latest[0].Symbol)
	assert.Equal(t, "Gold", latest[1].Symbol)
	// same-day appends: the later insert wins
	assert.True(t, latest[1].Price.Equal(decimal.NewFromInt(11)))
}
