package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tropicaldog17/folio/internal/models"
	"github.com/tropicaldog17/folio/internal/repositories"
)

func addPosition(t *testing.T, store testStore, p *models.Position) *models.Position {
	t.Helper()
	require.NoError(t, store.positions.Create(context.Background(), p))
	return p
}

func TestPriceUpdateService_FetchAll(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	equity := equityServer(t,
		status(http.StatusInternalServerError),
		status(http.StatusNotFound),
		body("text/csv", acmeCSV))
	crypto := equityServer(t, nil, nil, nil) // every path 404s

	fetcher := NewPriceFetcher(zaptest.NewLogger(t),
		NewEquityFeed(equity.URL, nil, time.Second),
		NewCryptoFeed(crypto.URL, nil, time.Second))
	svc := NewPriceUpdateService(store.positions, store.snapshots, fetcher, zaptest.NewLogger(t))

	a := addPosition(t, store, &models.Position{Name: "ACME Corp", Ticker: "ACME", Quantity: decimal.NewFromInt(10), AvgCost: decimal.NewFromInt(50), PriceSource: models.PriceSourceEquityFeed})
	b := addPosition(t, store, &models.Position{Name: "Bond Ladder", Quantity: decimal.NewFromInt(1), AvgCost: decimal.NewFromInt(1000)})
	c := addPosition(t, store, &models.Position{Name: "Coin", Ticker: "BTC", Type: models.PositionTypeCrypto, Quantity: decimal.NewFromInt(1), AvgCost: decimal.NewFromInt(1), PriceSource: models.PriceSourceCryptoFeed})

	report, err := svc.FetchAll(ctx, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Rows, 3)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 2, report.Failed)

	rowA, rowB, rowC := report.Rows[0], report.Rows[1], report.Rows[2]
	assert.Equal(t, a.ID, rowA.PositionID)
	require.NotNil(t, rowA.Price)
	assert.True(t, rowA.Price.Equal(decimal.NewFromInt(55)))
	assert.Equal(t, "EUR", rowA.Currency)
	assert.Equal(t, "equity-feed", rowA.Status)

	assert.Equal(t, b.ID, rowB.PositionID)
	assert.Nil(t, rowB.Price)
	assert.Equal(t, ReasonNoFeed, rowB.Status)

	assert.Equal(t, c.ID, rowC.PositionID)
	assert.Nil(t, rowC.Price)
	assert.Equal(t, ReasonCryptoUnavailable, rowC.Status)

	n, err := store.snapshots.Count(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = store.snapshots.Count(ctx, "BTC")
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = store.snapshots.Count(ctx, "Bond Ladder")
	require.NoError(t, err)
	assert.Zero(t, n)

	hist, err := store.snapshots.History(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "equity-feed", hist[0].Source)
	require.NotNil(t, hist[0].PositionID)
	assert.Equal(t, a.ID, *hist[0].PositionID)

	// a second run on the same day appends rather than replaces
	_, err = svc.FetchAll(ctx, []uint{a.ID})
	require.NoError(t, err)
	n, err = store.snapshots.Count(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

type scriptedFetcher struct {
	results map[uint]models.FetchResult
	onFetch func(p *models.Position)
	seen    []uint
}

func (f *scriptedFetcher) Fetch(ctx context.Context, p *models.Position) models.FetchResult {
	f.seen = append(f.seen, p.ID)
	if f.onFetch != nil {
		f.onFetch(p)
	}
	if r, ok := f.results[p.ID]; ok {
		return r
	}
	return models.Unavailable(ReasonNoFeed, nil)
}

func TestPriceUpdateService_FetchOne(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	p := addPosition(t, store, &models.Position{Name: "World ETF", Quantity: decimal.NewFromInt(2), AvgCost: decimal.NewFromInt(80), PriceSource: models.PriceSourceEquityFeed})

	fetcher := &scriptedFetcher{results: map[uint]models.FetchResult{
		p.ID: models.Fetched(decimal.RequireFromString("91.5"), "EUR", "equity-feed"),
	}}
	svc := NewPriceUpdateService(store.positions, store.snapshots, fetcher, nil)

	row, err := svc.FetchOne(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, row.Price)
	assert.Equal(t, "equity-feed", row.Status)

	latest, err := store.snapshots.LatestPerSymbol(ctx)
	require.NoError(t, err)
	require.Contains(t, latest, "World ETF")
	assert.True(t, latest["World ETF"].Price.Equal(decimal.RequireFromString("91.5")))

	_, err = svc.FetchOne(ctx, 404)
	assert.Error(t, err)
}

func TestPriceUpdateService_StopsOnCancel(t *testing.T) {
	store := newTestStore(t)
	first := addPosition(t, store, &models.Position{Name: "Alpha", Quantity: decimal.NewFromInt(1), AvgCost: decimal.NewFromInt(1)})
	addPosition(t, store, &models.Position{Name: "Beta", Quantity: decimal.NewFromInt(1), AvgCost: decimal.NewFromInt(1)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fetcher := &scriptedFetcher{onFetch: func(*models.Position) { cancel() }}
	svc := NewPriceUpdateService(store.positions, store.snapshots, fetcher, zaptest.NewLogger(t))

	report, err := svc.FetchAll(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, first.ID, report.Rows[0].PositionID)
	assert.Equal(t, []uint{first.ID}, fetcher.seen)
}

type failingSnapshots struct {
	repositories.SnapshotRepository
}

func (failingSnapshots) Append(ctx context.Context, symbol string, price decimal.Decimal, currency, source string, positionID *uint) (*models.PriceSnapshot, error) {
	return nil, errors.New("disk full")
}

func TestPriceUpdateService_StoreErrorIsReported(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	a := addPosition(t, store, &models.Position{Name: "Alpha", Quantity: decimal.NewFromInt(1), AvgCost: decimal.NewFromInt(1), PriceSource: models.PriceSourceEquityFeed})
	b := addPosition(t, store, &models.Position{Name: "Beta", Quantity: decimal.NewFromInt(1), AvgCost: decimal.NewFromInt(1), PriceSource: models.PriceSourceEquityFeed})

	fetcher := &scriptedFetcher{results: map[uint]models.FetchResult{
		a.ID: models.Fetched(decimal.NewFromInt(2), "EUR", "equity-feed"),
		b.ID: models.Fetched(decimal.NewFromInt(3), "EUR", "equity-feed"),
	}}
	svc := NewPriceUpdateService(store.positions, failingSnapshots{store.snapshots}, fetcher, zaptest.NewLogger(t))

	report, err := svc.FetchAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	for _, row := range report.Rows {
		assert.Nil(t, row.Price)
		assert.Equal(t, "store error: disk full", row.Status)
	}
	assert.Equal(t, 2, report.Failed)
}
