package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/tropicaldog17/folio/internal/db"
)

// NewRouter wires the API routes. database may be nil, in which case /health
// only reports the process as up.
func NewRouter(portfolio *PortfolioHandler, updates *PriceUpdateHandler, database *db.DB, logger *zap.Logger) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if database != nil {
			if err := database.Health(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "folio"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/positions", portfolio.HandlePositions).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/positions/{id}", portfolio.HandlePosition).Methods(http.MethodGet)
	api.HandleFunc("/positions/{id}/price-settings", portfolio.HandlePriceSettings).Methods(http.MethodPut)
	api.HandleFunc("/positions/{id}/prices", portfolio.HandleManualPrice).Methods(http.MethodPost)
	api.HandleFunc("/positions/{id}/history", portfolio.HandlePositionHistory).Methods(http.MethodGet)
	api.HandleFunc("/prices/latest", portfolio.HandleLatestPrices).Methods(http.MethodGet)
	api.HandleFunc("/prices/history", portfolio.HandlePriceHistory).Methods(http.MethodGet)
	api.HandleFunc("/prices/fetch", updates.HandleFetch).Methods(http.MethodPost)
	api.HandleFunc("/overview", portfolio.HandleOverview).Methods(http.MethodGet)

	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	return corsHandler(logRequests(logger, router))
}

func corsHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(logger *zap.Logger, next http.Handler) http.Handler {
	if logger == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
