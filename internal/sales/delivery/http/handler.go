package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	menudomain "github.com/spicehouse/menu-service/internal/menu/domain"
	"github.com/spicehouse/menu-service/internal/sales/domain"
	"github.com/spicehouse/menu-service/internal/sales/usecase/command"
	"github.com/spicehouse/menu-service/internal/sales/usecase/query"
	"github.com/spicehouse/menu-service/pkg/logger"
)

// SalesHandler handles HTTP requests for sale recording and reporting
type SalesHandler struct {
	recordHandler *command.RecordSaleHandler
	reportHandler *query.SalesReportHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(repo domain.SalesRepository, reg prometheus.Registerer) *SalesHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_service_requests_total",
			Help: "Total number of requests to sales endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sales_service_request_duration_seconds",
			Help:    "Duration of sales requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	reg.MustRegister(requestCounter)
	reg.MustRegister(requestLatency)

	return &SalesHandler{
		recordHandler:  command.NewRecordSaleHandler(repo),
		reportHandler:  query.NewSalesReportHandler(repo),
		requestCounter: requestCounter,
		requestLatency: requestLatency,
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *SalesHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes registers the sales routes, all credential-gated
func (h *SalesHandler) RegisterRoutes(router *mux.Router, authorize func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/admin/sales", h.metricsMiddleware("/admin/sales", authorize(h.RecordSale))).Methods("POST")
	router.HandleFunc("/admin/reports/sales", h.metricsMiddleware("/admin/reports/sales", authorize(h.SalesReport))).Methods("GET")
}

// RecordSale handles POST /admin/sales
func (h *SalesHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderRef     string  `json:"order_ref"`
		DishID       uint    `json:"dish_id"`
		Quantity     int     `json:"quantity"`
		PricePerItem float64 `json:"price_per_item"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "bad_request")
		return
	}

	cmd := command.RecordSaleCommand{
		OrderRef:     req.OrderRef,
		DishID:       req.DishID,
		Quantity:     req.Quantity,
		PricePerItem: req.PricePerItem,
	}

	sale, err := h.recordHandler.Handle(cmd)
	if err != nil {
		switch {
		case errors.Is(err, menudomain.ErrDishNotFound):
			respondError(w, http.StatusNotFound, "Dish not found", "not_found")
		case errors.Is(err, domain.ErrInsufficientStock):
			respondError(w, http.StatusConflict, "Insufficient stock for this dish", "conflict")
		default:
			respondError(w, http.StatusBadRequest, err.Error(), "bad_request")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Sale recorded successfully",
		"sale":    sale,
	})
}

// SalesReport handles GET /admin/reports/sales
func (h *SalesHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportHandler.Handle(query.SalesReportQuery{})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to build sales report")
		respondError(w, http.StatusInternalServerError, "Failed to build sales report", "internal")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message, code string) {
	respondJSON(w, status, map[string]string{"error": message, "code": code})
}
