package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/spicehouse/menu-service/internal/menu/domain"
	"github.com/spicehouse/menu-service/internal/menu/usecase/command"
	"github.com/spicehouse/menu-service/internal/menu/usecase/query"
	"github.com/spicehouse/menu-service/pkg/logger"
)

// MenuHandler handles HTTP requests for dishes using CQRS pattern
type MenuHandler struct {
	// Command handlers
	addHandler            *command.AddDishHandler
	updateHandler         *command.UpdateDishHandler
	deleteHandler         *command.DeleteDishHandler
	markOutOfStockHandler *command.MarkOutOfStockHandler
	updateStockHandler    *command.UpdateStockHandler

	// Query handlers
	getDishHandler    *query.GetDishHandler
	listHandler       *query.ListDishesHandler
	outOfStockHandler *query.ListOutOfStockHandler
	reportHandler     *query.InventoryReportHandler

	repo           domain.MenuRepository
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	totalDishes    prometheus.Gauge
}

// NewMenuHandler creates a new menu handler. Metrics are registered on the
// given registerer so tests can use a private registry.
func NewMenuHandler(repo domain.MenuRepository, reg prometheus.Registerer) *MenuHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_service_requests_total",
			Help: "Total number of requests to menu service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "menu_service_request_duration_seconds",
			Help:    "Duration of menu service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	totalDishes := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "menu_service_total_dishes",
			Help: "Total number of dishes on the menu",
		},
	)

	reg.MustRegister(requestCounter)
	reg.MustRegister(requestLatency)
	reg.MustRegister(totalDishes)

	return &MenuHandler{
		addHandler:            command.NewAddDishHandler(repo),
		updateHandler:         command.NewUpdateDishHandler(repo),
		deleteHandler:         command.NewDeleteDishHandler(repo),
		markOutOfStockHandler: command.NewMarkOutOfStockHandler(repo),
		updateStockHandler:    command.NewUpdateStockHandler(repo),
		getDishHandler:        query.NewGetDishHandler(repo),
		listHandler:           query.NewListDishesHandler(repo),
		outOfStockHandler:     query.NewListOutOfStockHandler(repo),
		reportHandler:         query.NewInventoryReportHandler(repo),
		repo:                  repo,
		requestCounter:        requestCounter,
		requestLatency:        requestLatency,
		totalDishes:           totalDishes,
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
func (h *MenuHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes registers the menu routes. Routes carrying the authorize
// middleware require a valid signed credential.
func (h *MenuHandler) RegisterRoutes(router *mux.Router, authorize func(http.HandlerFunc) http.HandlerFunc) {
	// Public routes
	router.HandleFunc("/dishes", h.metricsMiddleware("/dishes", h.ListDishes)).Methods("GET")
	router.HandleFunc("/dishes/{id}", h.metricsMiddleware("/dishes/{id}", h.GetDish)).Methods("GET")
	router.HandleFunc("/menu/dishes/{id}/out-of-stock", h.metricsMiddleware("/menu/dishes/{id}/out-of-stock", h.MarkOutOfStock)).Methods("PATCH")
	router.HandleFunc("/menu/dishes/{id}/stock", h.metricsMiddleware("/menu/dishes/{id}/stock", h.UpdateStock)).Methods("PATCH")

	// Credential-gated routes
	router.HandleFunc("/dishes", h.metricsMiddleware("/dishes", authorize(h.AddDish))).Methods("POST")
	router.HandleFunc("/dishes/{id}", h.metricsMiddleware("/dishes/{id}", authorize(h.UpdateDish))).Methods("PUT")
	router.HandleFunc("/dishes/{id}", h.metricsMiddleware("/dishes/{id}", authorize(h.DeleteDish))).Methods("DELETE")
	router.HandleFunc("/admin/dishes/out-of-stock", h.metricsMiddleware("/admin/dishes/out-of-stock", authorize(h.ListOutOfStock))).Methods("GET")
	router.HandleFunc("/admin/reports/inventory", h.metricsMiddleware("/admin/reports/inventory", authorize(h.InventoryReport))).Methods("GET")
}

type dishRequest struct {
	Name         string `json:"name"`
	CategoryID   uint   `json:"category_id"`
	Availability bool   `json:"availability"`
	Stock        *int   `json:"stock"`
}

// ListDishes handles GET /dishes
func (h *MenuHandler) ListDishes(w http.ResponseWriter, r *http.Request) {
	q := query.ListDishesQuery{}

	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid category_id filter", "bad_request")
			return
		}
		categoryID := uint(id)
		q.CategoryID = &categoryID
	}
	if raw := r.URL.Query().Get("availability"); raw != "" {
		availability, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid availability filter", "bad_request")
			return
		}
		q.Availability = &availability
	}

	dishes, err := h.listHandler.Handle(q)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list dishes")
		respondError(w, http.StatusInternalServerError, "Failed to list dishes", "internal")
		return
	}

	respondJSON(w, http.StatusOK, dishes)
}

// GetDish handles GET /dishes/{id}
func (h *MenuHandler) GetDish(w http.ResponseWriter, r *http.Request) {
	id, ok := dishID(w, r)
	if !ok {
		return
	}

	dish, err := h.getDishHandler.Handle(query.GetDishQuery{ID: id})
	if err != nil {
		if errors.Is(err, domain.ErrDishNotFound) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("Dish with ID %d not found", id), "not_found")
			return
		}
		logger.Error(r.Context()).Err(err).Msg("Failed to get dish")
		respondError(w, http.StatusInternalServerError, "Failed to get dish", "internal")
		return
	}

	respondJSON(w, http.StatusOK, dish)
}

// AddDish handles POST /dishes
func (h *MenuHandler) AddDish(w http.ResponseWriter, r *http.Request) {
	var req dishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "bad_request")
		return
	}

	cmd := command.AddDishCommand{
		Name:         req.Name,
		CategoryID:   req.CategoryID,
		Availability: req.Availability,
		Stock:        req.Stock,
	}

	dish, err := h.addHandler.Handle(cmd)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateDish) {
			respondError(w, http.StatusConflict, "Dish with this name already exists in the category", "conflict")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error(), "bad_request")
		return
	}

	h.updateDishesMetric()

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Dish added successfully",
		"dish":    dish,
	})
}

// UpdateDish handles PUT /dishes/{id}
func (h *MenuHandler) UpdateDish(w http.ResponseWriter, r *http.Request) {
	id, ok := dishID(w, r)
	if !ok {
		return
	}

	var req dishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "bad_request")
		return
	}

	cmd := command.UpdateDishCommand{
		ID:           id,
		Name:         req.Name,
		CategoryID:   req.CategoryID,
		Availability: req.Availability,
		Stock:        req.Stock,
	}

	dish, err := h.updateHandler.Handle(cmd)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDishNotFound):
			respondError(w, http.StatusNotFound, "Dish not found", "not_found")
		case errors.Is(err, domain.ErrDuplicateDish):
			respondError(w, http.StatusConflict, "Dish with this name already exists in the category", "conflict")
		default:
			respondError(w, http.StatusBadRequest, err.Error(), "bad_request")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Dish updated successfully",
		"dish":    dish,
	})
}

// DeleteDish handles DELETE /dishes/{id}
func (h *MenuHandler) DeleteDish(w http.ResponseWriter, r *http.Request) {
	id, ok := dishID(w, r)
	if !ok {
		return
	}

	if err := h.deleteHandler.Handle(command.DeleteDishCommand{ID: id}); err != nil {
		if errors.Is(err, domain.ErrDishNotFound) {
			respondError(w, http.StatusNotFound, "Dish not found", "not_found")
			return
		}
		logger.Error(r.Context()).Err(err).Msg("Failed to delete dish")
		respondError(w, http.StatusInternalServerError, "Failed to delete dish", "internal")
		return
	}

	h.updateDishesMetric()

	respondJSON(w, http.StatusOK, map[string]any{"message": "Dish deleted successfully"})
}

// MarkOutOfStock handles PATCH /menu/dishes/{id}/out-of-stock
func (h *MenuHandler) MarkOutOfStock(w http.ResponseWriter, r *http.Request) {
	id, ok := dishID(w, r)
	if !ok {
		return
	}

	if err := h.markOutOfStockHandler.Handle(command.MarkOutOfStockCommand{DishID: id}); err != nil {
		if errors.Is(err, domain.ErrDishNotFound) {
			respondError(w, http.StatusNotFound, "Dish not found", "not_found")
			return
		}
		logger.Error(r.Context()).Err(err).Msg("Failed to mark dish out of stock")
		respondError(w, http.StatusInternalServerError, "Failed to mark dish out of stock", "internal")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Dish with ID %d marked as out of stock", id),
	})
}

// UpdateStock handles PATCH /menu/dishes/{id}/stock?stock=
func (h *MenuHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := dishID(w, r)
	if !ok {
		return
	}

	raw := r.URL.Query().Get("stock")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "Missing stock query parameter", "bad_request")
		return
	}
	stock, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid stock value", "bad_request")
		return
	}

	if err := h.updateStockHandler.Handle(command.UpdateStockCommand{DishID: id, Stock: stock}); err != nil {
		if errors.Is(err, domain.ErrDishNotFound) {
			respondError(w, http.StatusNotFound, "Dish not found", "not_found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error(), "bad_request")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Stock for dish with ID %d updated to %d", id, stock),
	})
}

// ListOutOfStock handles GET /admin/dishes/out-of-stock
func (h *MenuHandler) ListOutOfStock(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.outOfStockHandler.Handle(query.ListOutOfStockQuery{})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list out-of-stock dishes")
		respondError(w, http.StatusInternalServerError, "Failed to list out-of-stock dishes", "internal")
		return
	}

	// Empty result keeps the message shape rather than an empty list
	if len(dishes) == 0 {
		respondJSON(w, http.StatusOK, map[string]any{"message": "No out-of-stock dishes found"})
		return
	}

	respondJSON(w, http.StatusOK, dishes)
}

// InventoryReport handles GET /admin/reports/inventory
func (h *MenuHandler) InventoryReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportHandler.Handle(query.InventoryReportQuery{})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to build inventory report")
		respondError(w, http.StatusInternalServerError, "Failed to build inventory report", "internal")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// updateDishesMetric updates the total dishes gauge
func (h *MenuHandler) updateDishesMetric() {
	count, err := h.repo.Count()
	if err == nil {
		h.totalDishes.Set(float64(count))
	}
}

func dishID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid dish ID", "bad_request")
		return 0, false
	}
	return uint(id), true
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
