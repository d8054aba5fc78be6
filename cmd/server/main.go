package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"gorm.io/gorm"

	"github.com/spicehouse/menu-service/internal/config"
	identityhttp "github.com/spicehouse/menu-service/internal/identity/delivery/http"
	identityrepo "github.com/spicehouse/menu-service/internal/identity/repository"
	identitycommand "github.com/spicehouse/menu-service/internal/identity/usecase/command"
	menuhttp "github.com/spicehouse/menu-service/internal/menu/delivery/http"
	menurepo "github.com/spicehouse/menu-service/internal/menu/repository"
	"github.com/spicehouse/menu-service/internal/middleware"
	saleshttp "github.com/spicehouse/menu-service/internal/sales/delivery/http"
	salesrepo "github.com/spicehouse/menu-service/internal/sales/repository"
	"github.com/spicehouse/menu-service/pkg/auth"
	"github.com/spicehouse/menu-service/pkg/database"
	"github.com/spicehouse/menu-service/pkg/logger"
	"github.com/spicehouse/menu-service/pkg/tracing"
)

const serviceName = "restaurant-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(serviceName, cfg.LogLevel, cfg.IsDevelopment())
	ctx := context.Background()

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(serviceName, cfg.JaegerEndpoint)
		if err != nil {
			logger.Warn(ctx).Err(err).Msg("Tracing disabled: failed to initialize tracer")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
					logger.Warn(ctx).Err(err).Msg("Failed to shut down tracer")
				}
			}()
		}
	}

	db, err := database.NewSQLiteConnection(database.Config{Path: cfg.DatabasePath})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	router, err := buildRouter(cfg, db, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize application")
	}

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/health", healthHandler(sqlDB.Ping)).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: c.Handler(router),
	}

	go func() {
		logger.Info(ctx).
			Str("addr", cfg.HTTPAddr).
			Str("db", cfg.DatabasePath).
			Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx).Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx).Err(err).Msg("Server shutdown failed")
	}
}

// buildRouter migrates and seeds the store, wires the repositories and
// handlers and registers every route.
func buildRouter(cfg *config.Config, db *gorm.DB, reg prometheus.Registerer) (*mux.Router, error) {
	menuRepository := menurepo.NewGormMenuRepository(db)
	userRepository := identityrepo.NewGormUserRepository(db)
	salesRepository := salesrepo.NewGormSalesRepository(db)

	if err := menuRepository.AutoMigrate(); err != nil {
		return nil, err
	}
	if err := userRepository.AutoMigrate(); err != nil {
		return nil, err
	}
	if err := salesRepository.AutoMigrate(); err != nil {
		return nil, err
	}
	if err := menuRepository.Seed(); err != nil {
		return nil, err
	}

	tokens := auth.NewManager(cfg.AuthSecret, cfg.TokenTTL)
	authorize := middleware.Auth(tokens)

	menuHandler := menuhttp.NewMenuHandler(menuRepository, reg)
	identityHandler := identityhttp.NewIdentityHandler(
		identitycommand.NewRegisterUserHandler(userRepository),
		identitycommand.NewLoginUserHandler(userRepository, tokens),
		identitycommand.NewChangePasswordHandler(userRepository),
		userRepository,
		cfg.TokenTTL,
		reg,
	)
	salesHandler := saleshttp.NewSalesHandler(salesRepository, reg)

	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Tracing("http-request"))

	menuHandler.RegisterRoutes(router, authorize)
	identityHandler.RegisterRoutes(router, authorize)
	salesHandler.RegisterRoutes(router, authorize)

	return router, nil
}

func healthHandler(ping func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"Database unavailable","code":"internal"}`))
			return
		}
		w.Write([]byte(`{"message":"Service is healthy"}`))
	}
}
