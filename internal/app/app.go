package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"optimedu/internal/config"
	"optimedu/internal/errors"
	"optimedu/internal/infrastructure"
	customMiddleware "optimedu/internal/middleware"
	"optimedu/internal/recommend"
	"optimedu/internal/services"
	handlers "optimedu/internal/transport/http"
	"optimedu/pkg/contracts"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Services      *ServiceContainer
	ErrorHandler  *errors.ErrorHandler
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Workspace      *services.Workspace
	Panel          *services.PanelService
	Budget         *services.BudgetService
	Impact         *services.ImpactService
	Recommendation *services.RecommendationService
	Health         *services.HealthService
}

// NewApplication loads configuration from configFile (or the default
// locations when empty), initializes the logger and builds the application.
func NewApplication(configFile string) (*Application, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires an application from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("build_time", contracts.BuildTime))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Otel, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  errors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	ws := services.NewWorkspace()

	var advisor *recommend.Advisor
	if a.Config.Advisor.Enabled() {
		gen, err := recommend.NewOpenAIGenerator(context.Background(), recommend.OpenAIConfig{
			BaseURL: a.Config.Advisor.BaseURL,
			APIKey:  a.Config.Advisor.APIKey,
			Model:   a.Config.Advisor.Model,
			Timeout: a.Config.Advisor.Timeout,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize advisor: %w", err)
		}
		advisor = recommend.NewAdvisor(gen, a.Logger)
		a.Logger.Info("Advisor enabled",
			slog.String("base_url", a.Config.Advisor.BaseURL),
			slog.String("model", a.Config.Advisor.Model))
	} else {
		a.Logger.Info("Advisor disabled: no API key configured")
	}

	a.Services = &ServiceContainer{
		Workspace:      ws,
		Panel:          services.NewPanelService(ws, a.Metrics, a.Logger),
		Budget:         services.NewBudgetService(ws, a.Config.Analysis, a.Metrics, a.Logger),
		Impact:         services.NewImpactService(ws, a.Metrics, a.Logger),
		Recommendation: services.NewRecommendationService(ws, advisor, a.Metrics, a.Logger),
		Health:         services.NewHealthService(contracts.Version, contracts.BuildTime, ws, advisor != nil, a.Logger),
	}
	return nil
}

// setupRouter builds the router.
// Middleware order: RequestID → RealIP → OTel → Logger → Recoverer → Timeout
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// Probes and scraping stay outside the rate limiter
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	r.Get(config.HealthEndpoint, healthHandler.HealthCheck)
	r.Get(config.ReadyEndpoint, healthHandler.ReadinessCheck)
	r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(errors.RecoveryMiddleware(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r, healthHandler)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, healthHandler *handlers.HealthHandler) {
	validation := customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler, a.Config.Analysis.MaxUploadBytes)

	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(validation.ValidateRequest)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

			r.Get("/version", healthHandler.Version)
			r.Get("/health/live", healthHandler.LivenessCheck)

			r.Mount("/panel", handlers.NewPanelHandler(a.Services.Panel, a.Logger, a.ErrorHandler).Routes())

			budgetHandler := handlers.NewBudgetHandler(a.Services.Budget, validation, a.Logger, a.ErrorHandler)
			r.Mount("/forecast", budgetHandler.ForecastRoutes())
			r.Mount("/plan", budgetHandler.PlanRoutes())

			r.Mount("/impact", handlers.NewImpactHandler(a.Services.Impact, validation, a.Logger, a.ErrorHandler).Routes())
		})

		// Language model calls get the advisor timeout plus headroom for rendering
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Advisor.Timeout+5*time.Second, a.Logger))
			r.Mount("/recommendations", handlers.NewRecommendationHandler(
				a.Services.Recommendation, validation, a.Logger, a.ErrorHandler).Routes())
		})
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Request-ID",
		},
		AllowCredentials: false,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts serving in the background. A listener failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)),
		slog.Int("simulation_paths", a.Config.Analysis.Paths),
		slog.Bool("advisor", a.Config.Advisor.Enabled()))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or until ctx is done
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
