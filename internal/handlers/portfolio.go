package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tropicaldog17/folio/internal/models"
	"github.com/tropicaldog17/folio/internal/services"
)

type PortfolioHandler struct {
	service services.PortfolioService
}

func NewPortfolioHandler(service services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{service: service}
}

// HandlePositions handles collection-level operations for positions.
// @Summary List or create positions
// @Description Get all positions ordered by name, or add a new one
// @Tags positions
// @Accept json
// @Produce json
// @Param position body models.PositionInput false "Position to add (POST only)"
// @Success 200 {array} models.Position
// @Success 201 {object} models.Position
// @Failure 400 {string} string "Invalid request"
// @Failure 500 {string} string "Internal server error"
// @Router /positions [get]
// @Router /positions [post]
func (h *PortfolioHandler) HandlePositions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		positions, err := h.service.ListPositions(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, positions)
	case http.MethodPost:
		var in models.PositionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		p, err := h.service.AddPosition(r.Context(), &in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandlePosition handles GET /api/positions/{id}
// @Summary Get a position
// @Tags positions
// @Produce json
// @Param id path int true "Position ID"
// @Success 200 {object} models.Position
// @Failure 404 {string} string "Not found"
// @Router /positions/{id} [get]
func (h *PortfolioHandler) HandlePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid position ID", http.StatusBadRequest)
		return
	}
	p, err := h.service.GetPosition(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandlePriceSettings handles PUT /api/positions/{id}/price-settings
// @Summary Update price settings
// @Description Set the price source (manual, equity-feed, crypto-feed) and feed symbol of a position
// @Tags positions
// @Accept json
// @Produce json
// @Param id path int true "Position ID"
// @Param settings body models.PriceSettings true "Price settings"
// @Success 200 {object} models.Position
// @Failure 400 {string} string "Unknown price source"
// @Failure 404 {string} string "Not found"
// @Router /positions/{id}/price-settings [put]
func (h *PortfolioHandler) HandlePriceSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid position ID", http.StatusBadRequest)
		return
	}
	var settings models.PriceSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	p, err := h.service.UpdatePriceSettings(r.Context(), id, settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleManualPrice handles POST /api/positions/{id}/prices
// @Summary Record a manual price
// @Description Append a hand-entered price snapshot dated today
// @Tags prices
// @Accept json
// @Produce json
// @Param id path int true "Position ID"
// @Param price body models.ManualPriceInput true "Price"
// @Success 201 {object} models.PriceSnapshot
// @Failure 400 {string} string "Invalid request"
// @Failure 404 {string} string "Not found"
// @Router /positions/{id}/prices [post]
func (h *PortfolioHandler) HandleManualPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid position ID", http.StatusBadRequest)
		return
	}
	var in models.ManualPriceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	snap, err := h.service.SaveManualPrice(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// HandlePositionHistory handles GET /api/positions/{id}/history
// @Summary Price history of a position
// @Tags prices
// @Produce json
// @Param id path int true "Position ID"
// @Success 200 {array} models.PriceSnapshot
// @Failure 404 {string} string "Not found"
// @Router /positions/{id}/history [get]
func (h *PortfolioHandler) HandlePositionHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid position ID", http.StatusBadRequest)
		return
	}
	hist, err := h.service.PositionHistory(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

// HandleLatestPrices handles GET /api/prices/latest
// @Summary Latest price per symbol
// @Tags prices
// @Produce json
// @Success 200 {array} models.PriceSnapshot
// @Router /prices/latest [get]
func (h *PortfolioHandler) HandleLatestPrices(w http.ResponseWriter, r *http.Request) {
	latest, err := h.service.LatestPrices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

// HandlePriceHistory handles GET /api/prices/history?symbol=ACME
// @Summary Price history of a symbol
// @Tags prices
// @Produce json
// @Param symbol query string true "Snapshot symbol (ticker or name)"
// @Success 200 {array} models.PriceSnapshot
// @Failure 400 {string} string "symbol is required"
// @Router /prices/history [get]
func (h *PortfolioHandler) HandlePriceHistory(w http.ResponseWriter, r *http.Request) {
	hist, err := h.service.PriceHistory(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

// HandleOverview handles GET /api/overview
// @Summary Portfolio overview
// @Description Every position valued at its latest price, with totals
// @Tags overview
// @Produce json
// @Success 200 {object} models.Overview
// @Router /overview [get]
func (h *PortfolioHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.service.Overview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}
