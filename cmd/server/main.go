package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maynagashev/autoassist/internal/config"
	"github.com/maynagashev/autoassist/internal/handlers"
	"github.com/maynagashev/autoassist/internal/logging"
	"github.com/maynagashev/autoassist/internal/metrics"
	appmiddleware "github.com/maynagashev/autoassist/internal/middleware"
	"github.com/maynagashev/autoassist/internal/repository"
	"github.com/maynagashev/autoassist/internal/response"
	"github.com/maynagashev/autoassist/internal/services"
	"github.com/maynagashev/autoassist/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	storage repository.Manager
	auth    services.AuthService
	cars    services.CarService
	metrics *metrics.Metrics
	rw      *response.Writer
	log     *slog.Logger
	cfg     *config.Config
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("Ошибка выполнения сервера", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := parseFlags(args)
	if err != nil {
		return err
	}

	log := logging.New(cfg.Env, cfg.LogLevel, os.Stdout)
	slog.SetDefault(log)
	log.Info("Запуск сервера AutoAssist...", "env", cfg.Env, "port", cfg.Port, "storage", cfg.Storage.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setupDependencies(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := deps.storage.Close(closeCtx); closeErr != nil {
			log.Error("Ошибка закрытия хранилища", "error", closeErr)
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      setupRouter(deps),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Запуск HTTP-сервера", "addr", server.Addr)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Остановка сервера")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// setupDependencies открывает хранилище и создает сервисы.
func setupDependencies(ctx context.Context, cfg *config.Config, log *slog.Logger) (*dependencies, error) {
	store, err := repository.Open(ctx, cfg.Storage, logging.Component(log, "storage"))
	if err != nil {
		return nil, err
	}

	validate := validation.New()
	tokens := services.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpire)

	return &dependencies{
		storage: store,
		auth: services.NewAuthService(store.Users(), tokens, validate, services.AuthOptions{
			BcryptCost:   cfg.Auth.BcryptCost,
			QueryTimeout: cfg.Storage.QueryTimeout,
		}, logging.Component(log, "auth")),
		cars:    services.NewCarService(store.Cars(), validate, cfg.Storage.QueryTimeout, logging.Component(log, "cars")),
		metrics: metrics.New(prometheus.NewRegistry()),
		rw:      response.NewWriter(logging.Component(log, "http"), !cfg.IsProduction()),
		log:     log,
		cfg:     cfg,
	}, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(deps *dependencies) *chi.Mux {
	cfg, rw := deps.cfg, deps.rw

	authHandler := handlers.NewAuthHandler(deps.auth, rw, logging.Component(deps.log, "auth-handler"))
	carHandler := handlers.NewCarHandler(deps.cars, rw, logging.Component(deps.log, "car-handler"))
	healthHandler := handlers.NewHealthHandler(deps.storage, cfg.Env, rw, deps.log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.HTTP.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(deps.metrics.Middleware)
	r.Use(appmiddleware.RequestLogger(logging.Component(deps.log, "access")))
	r.Use(middleware.Recoverer)
	r.Use(appmiddleware.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.HTTP.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(appmiddleware.MaxBody(cfg.HTTP.MaxBodyBytes, rw))

	r.NotFound(handlers.NotFound(rw))
	r.MethodNotAllowed(handlers.MethodNotAllowed(rw))

	r.Get("/", healthHandler.Index)
	r.Get("/ping", healthHandler.Ping)
	r.Get("/health", healthHandler.Health)
	r.Method(http.MethodGet, "/metrics", deps.metrics.Handler())

	requireAuth := appmiddleware.Authenticator(deps.auth, rw)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", healthHandler.Index)

		r.Route("/auth", func(r chi.Router) {
			r.With(appmiddleware.RateLimit(cfg.RateLimit.Register, cfg.RateLimit.Window, rw)).
				Post("/register", authHandler.Register)
			r.With(appmiddleware.RateLimit(cfg.RateLimit.Login, cfg.RateLimit.Window, rw)).
				Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/verify", authHandler.Verify)
				r.Get("/profile", authHandler.Profile)
			})
		})

		r.Route("/cars", func(r chi.Router) {
			r.Get("/", carHandler.List)
			r.Get("/search", carHandler.Search)
			r.Get("/brands", carHandler.Brands)
			r.Get("/filters", carHandler.Filters)
			r.Get("/{id}", carHandler.GetByID)
			r.With(requireAuth).Post("/", carHandler.Create)
		})
	})
	return r
}
