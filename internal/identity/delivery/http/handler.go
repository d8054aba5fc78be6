package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/spicehouse/menu-service/internal/identity/domain"
	"github.com/spicehouse/menu-service/internal/identity/usecase/command"
	"github.com/spicehouse/menu-service/internal/middleware"
	"github.com/spicehouse/menu-service/pkg/logger"
)

// IdentityHandler handles HTTP requests for registration, login, password
// change and token issuing
type IdentityHandler struct {
	registerHandler       *command.RegisterUserHandler
	loginHandler          *command.LoginUserHandler
	changePasswordHandler *command.ChangePasswordHandler

	repo           domain.UserRepository
	tokenTTL       time.Duration
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	totalUsers     prometheus.Gauge
}

// NewIdentityHandler creates a new identity handler. Metrics are
// registered on the given registerer so tests can use a private registry.
func NewIdentityHandler(
	registerHandler *command.RegisterUserHandler,
	loginHandler *command.LoginUserHandler,
	changePasswordHandler *command.ChangePasswordHandler,
	repo domain.UserRepository,
	tokenTTL time.Duration,
	reg prometheus.Registerer,
) *IdentityHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_service_requests_total",
			Help: "Total number of requests to identity service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "identity_service_request_duration_seconds",
			Help:    "Duration of identity service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	totalUsers := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "identity_service_total_users",
			Help: "Total number of registered users",
		},
	)

	reg.MustRegister(requestCounter)
	reg.MustRegister(requestLatency)
	reg.MustRegister(totalUsers)

	return &IdentityHandler{
		registerHandler:       registerHandler,
		loginHandler:          loginHandler,
		changePasswordHandler: changePasswordHandler,
		repo:                  repo,
		tokenTTL:              tokenTTL,
		requestCounter:        requestCounter,
		requestLatency:        requestLatency,
		totalUsers:            totalUsers,
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
func (h *IdentityHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes registers the identity routes
func (h *IdentityHandler) RegisterRoutes(router *mux.Router, authorize func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/register", h.metricsMiddleware("/register", h.Register)).Methods("POST")
	router.HandleFunc("/login", h.metricsMiddleware("/login", h.Login)).Methods("POST")
	router.HandleFunc("/token", h.metricsMiddleware("/token", h.IssueToken)).Methods("POST")
	router.HandleFunc("/change-password", h.metricsMiddleware("/change-password", authorize(h.ChangePassword))).Methods("POST")
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// decodeCredentials accepts JSON bodies as well as the form encoding used
// by the OAuth2 password flow on /token.
func decodeCredentials(r *http.Request) (credentialsRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return credentialsRequest{}, err
		}
		return credentialsRequest{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
		}, nil
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return credentialsRequest{}, err
	}
	return req, nil
}

// Register handles POST /register
func (h *IdentityHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "bad_request")
		return
	}

	cmd := command.RegisterUserCommand{
		Username: req.Username,
		Password: req.Password,
	}

	if _, err := h.registerHandler.Handle(cmd); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			respondError(w, http.StatusConflict, "Username already exists.", "conflict")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error(), "bad_request")
		return
	}

	h.updateUsersMetric()

	respondJSON(w, http.StatusCreated, map[string]any{"message": "User registered successfully!"})
}

// Login handles POST /login. On success the credential is returned in the
// body and set as an HTTP-only cookie.
func (h *IdentityHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "bad_request")
		return
	}

	token, err := h.loginHandler.Handle(command.LoginUserCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid username or password.", "unauthenticated")
			return
		}
		logger.Error(r.Context()).Err(err).Msg("Login failed")
		respondError(w, http.StatusInternalServerError, "Login failed", "internal")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(h.tokenTTL.Seconds()),
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful. Welcome!",
		"token":   token,
	})
}

// IssueToken handles POST /token, the OAuth2-style password flow. The
// returned access token is a signed credential verified on gated routes.
func (h *IdentityHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "bad_request")
		return
	}

	token, err := h.loginHandler.Handle(command.LoginUserCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid username or password.", "unauthenticated")
			return
		}
		logger.Error(r.Context()).Err(err).Msg("Token issuing failed")
		respondError(w, http.StatusInternalServerError, "Token issuing failed", "internal")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// ChangePassword handles POST /change-password. The target user comes from
// the validated credential.
func (h *IdentityHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.Username(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Token is missing", "unauthorized")
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "bad_request")
		return
	}

	cmd := command.ChangePasswordCommand{
		Username:        username,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}

	if err := h.changePasswordHandler.Handle(cmd); err != nil {
		switch {
		case errors.Is(err, domain.ErrWrongPassword):
			respondError(w, http.StatusUnauthorized, "Incorrect current password.", "unauthenticated")
		case errors.Is(err, domain.ErrUserNotFound):
			respondError(w, http.StatusUnauthorized, "Invalid token", "unauthenticated")
		default:
			respondError(w, http.StatusBadRequest, err.Error(), "bad_request")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"message": "Password changed successfully."})
}

// updateUsersMetric updates the registered users gauge
func (h *IdentityHandler) updateUsersMetric() {
	count, err := h.repo.Count()
	if err == nil {
		h.totalUsers.Set(float64(count))
	}
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
