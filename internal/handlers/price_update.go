package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/tropicaldog17/folio/internal/models"
	"github.com/tropicaldog17/folio/internal/services"
)

type PriceUpdateHandler struct {
	service services.PriceUpdateService
}

func NewPriceUpdateHandler(service services.PriceUpdateService) *PriceUpdateHandler {
	return &PriceUpdateHandler{service: service}
}

// HandleFetch handles POST /api/prices/fetch
// @Summary Fetch prices from the feeds
// @Description Refresh the given positions, or all of them when the body is empty. One row is returned per position.
// @Tags prices
// @Accept json
// @Produce json
// @Param request body models.FetchRequest false "Positions to refresh"
// @Success 200 {object} models.PriceUpdateReport
// @Failure 400 {string} string "Invalid request"
// @Router /prices/fetch [post]
func (h *PriceUpdateHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	var req models.FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	report, err := h.service.FetchAll(r.Context(), req.PositionIDs)
	if err != nil && report == nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
