package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tropicaldog17/folio/internal/errors"
	"github.com/tropicaldog17/folio/internal/models"
	"github.com/tropicaldog17/folio/internal/services"
)

type mockPortfolioService struct {
	positions    map[uint]*models.Position
	added        *models.PositionInput
	settings     models.PriceSettings
	manual       models.ManualPriceInput
	historyQuery string
}

func newMockPortfolio() *mockPortfolioService {
	return &mockPortfolioService{positions: map[uint]*models.Position{
		1: {ID: 1, Name: "ACME Corp", Ticker: "ACME", Quantity: decimal.NewFromInt(10), AvgCost: decimal.NewFromInt(50), Currency: "EUR", PriceSource: models.PriceSourceManual},
	}}
}

func (m *mockPortfolioService) get(id uint) (*models.Position, error) {
	p, ok := m.positions[id]
	if !ok {
		return nil, fmt.Errorf("position %d: %w", id, apperrors.ErrNotFound)
	}
	return p, nil
}

func (m *mockPortfolioService) AddPosition(_ context.Context, in *models.PositionInput) (*models.Position, error) {
	m.added = in
	p, err := in.ToPosition()
	if err != nil {
		return nil, err
	}
	p.ID = 2
	return p, nil
}
func (m *mockPortfolioService) ListPositions(_ context.Context) ([]*models.Position, error) {
	return []*models.Position{m.positions[1]}, nil
}
func (m *mockPortfolioService) GetPosition(_ context.Context, id uint) (*models.Position, error) {
	return m.get(id)
}
func (m *mockPortfolioService) UpdatePriceSettings(_ context.Context, id uint, s models.PriceSettings) (*models.Position, error) {
	m.settings = s
	src, err := models.ParsePriceSource(s.Source)
	if err != nil {
		return nil, err
	}
	p, err := m.get(id)
	if err != nil {
		return nil, err
	}
	p.PriceSource, p.PriceSymbol = src, s.Symbol
	return p, nil
}
func (m *mockPortfolioService) SaveManualPrice(_ context.Context, id uint, in models.ManualPriceInput) (*models.PriceSnapshot, error) {
	m.manual = in
	p, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return &models.PriceSnapshot{ID: 7, Symbol: p.SnapshotSymbol(), Price: in.Price, Currency: "EUR", Source: models.SourceManual}, nil
}
func (m *mockPortfolioService) LatestPrices(_ context.Context) ([]*models.PriceSnapshot, error) {
	return []*models.PriceSnapshot{{Symbol: "ACME", Price: decimal.NewFromInt(60)}}, nil
}
func (m *mockPortfolioService) PriceHistory(_ context.Context, symbol string) ([]*models.PriceSnapshot, error) {
	m.historyQuery = symbol
	if strings.TrimSpace(symbol) == "" {
		return nil, &apperrors.ErrValidation{Field: "symbol", Message: "is required"}
	}
	return []*models.PriceSnapshot{}, nil
}
func (m *mockPortfolioService) PositionHistory(_ context.Context, id uint) ([]*models.PriceSnapshot, error) {
	if _, err := m.get(id); err != nil {
		return nil, err
	}
	return []*models.PriceSnapshot{{Symbol: "ACME"}}, nil
}
func (m *mockPortfolioService) Overview(_ context.Context) (*models.Overview, error) {
	latest := &models.PriceSnapshot{Symbol: "ACME", Price: decimal.NewFromInt(60), Currency: "EUR"}
	rows := []models.PositionView{models.NewPositionView(*m.positions[1], latest)}
	return &models.Overview{Rows: rows, Summary: models.Summarize(rows)}, nil
}

var _ services.PortfolioService = (*mockPortfolioService)(nil)

type mockPriceUpdateService struct {
	ids []uint
}

func (m *mockPriceUpdateService) FetchOne(_ context.Context, id uint) (models.PriceUpdateRow, error) {
	return models.PriceUpdateRow{PositionID: id, Status: services.ReasonNoFeed}, nil
}
func (m *mockPriceUpdateService) FetchAll(_ context.Context, ids []uint) (*models.PriceUpdateReport, error) {
	m.ids = ids
	return &models.PriceUpdateReport{RunID: "run-1", Rows: []models.PriceUpdateRow{{PositionID: 1, Name: "ACME Corp", Status: services.ReasonNoFeed}}, Failed: 1}, nil
}

var _ services.PriceUpdateService = (*mockPriceUpdateService)(nil)

func newTestRouter() (http.Handler, *mockPortfolioService, *mockPriceUpdateService) {
	ps := newMockPortfolio()
	us := &mockPriceUpdateService{}
	return NewRouter(NewPortfolioHandler(ps), NewPriceUpdateHandler(us), nil, nil), ps, us
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	return rw
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestRouter()
	rw := do(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), `"healthy"`)
}

func TestCreatePosition(t *testing.T) {
	h, ps, _ := newTestRouter()

	rw := do(h, http.MethodPost, "/api/positions", `{"name":"World ETF","type":"ETF","quantity":"3","avg_cost":"90.5","price_source":"yahoo"}`)
	require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())

	var p models.Position
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &p))
	assert.Equal(t, uint(2), p.ID)
	assert.Equal(t, models.PriceSourceEquityFeed, p.PriceSource)
	assert.True(t, p.AvgCost.Equal(decimal.RequireFromString("90.5")))
	assert.Equal(t, "World ETF", ps.added.Name)
}

func TestCreatePosition_BadRequest(t *testing.T) {
	h, _, _ := newTestRouter()

	rw := do(h, http.MethodPost, "/api/positions", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rw.Code)

	rw = do(h, http.MethodPost, "/api/positions", `{"name":"No quantity","avg_cost":1}`)
	assert.Equal(t, http.StatusBadRequest, rw.Code)
	assert.Contains(t, rw.Body.String(), "quantity")
}

func TestGetPosition(t *testing.T) {
	h, _, _ := newTestRouter()

	rw := do(h, http.MethodGet, "/api/positions/1", "")
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), `"ACME Corp"`)

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/api/positions/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/api/positions/abc", "").Code)
}

func TestUpdatePriceSettings(t *testing.T) {
	h, ps, _ := newTestRouter()

	rw := do(h, http.MethodPut, "/api/positions/1/price-settings", `{"price_source":"equity-feed","price_symbol":"ACME.DE"}`)
	require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())
	assert.Equal(t, "ACME.DE", ps.settings.Symbol)
	assert.Contains(t, rw.Body.String(), `"price_source":"equity-feed"`)

	rw = do(h, http.MethodPut, "/api/positions/1/price-settings", `{"price_source":"bloomberg"}`)
	assert.Equal(t, http.StatusBadRequest, rw.Code)

	rw = do(h, http.MethodGet, "/api/positions/1/price-settings", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rw.Code)
}

func TestManualPrice(t *testing.T) {
	h, ps, _ := newTestRouter()

	rw := do(h, http.MethodPost, "/api/positions/1/prices", `{"price":"60"}`)
	require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())
	assert.True(t, ps.manual.Price.Equal(decimal.NewFromInt(60)))

	var snap models.PriceSnapshot
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &snap))
	assert.Equal(t, "ACME", snap.Symbol)

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/api/positions/5/prices", `{"price":1}`).Code)
}

func TestPriceHistory(t *testing.T) {
	h, ps, _ := newTestRouter()

	rw := do(h, http.MethodGet, "/api/prices/history?symbol=ACME", "")
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, "ACME", ps.historyQuery)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/api/prices/history", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/positions/1/history", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/prices/latest", "").Code)
}

func TestOverview(t *testing.T) {
	h, _, _ := newTestRouter()

	rw := do(h, http.MethodGet, "/api/overview", "")
	require.Equal(t, http.StatusOK, rw.Code)

	var ov models.Overview
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &ov))
	require.Len(t, ov.Rows, 1)
	assert.True(t, ov.Rows[0].MarketValue.Equal(decimal.NewFromInt(600)))
	assert.True(t, ov.Rows[0].GainPercent.Equal(decimal.RequireFromString("0.2")))
	assert.True(t, ov.Summary.Gain.Equal(decimal.NewFromInt(100)))
}

func TestFetchPrices(t *testing.T) {
	h, _, us := newTestRouter()

	rw := do(h, http.MethodPost, "/api/prices/fetch", "")
	require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())
	assert.Empty(t, us.ids)

	var report models.PriceUpdateReport
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &report))
	assert.Equal(t, "run-1", report.RunID)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "no feed", report.Rows[0].Status)
	assert.Nil(t, report.Rows[0].Price)

	rw = do(h, http.MethodPost, "/api/prices/fetch", `{"position_ids":[1,3]}`)
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, []uint{1, 3}, us.ids)
}

func TestCORSPreflight(t *testing.T) {
	h, _, _ := newTestRouter()
	rw := do(h, http.MethodOptions, "/api/positions", "")
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, "*", rw.Header().Get("Access-Control-Allow-Origin"))
}
