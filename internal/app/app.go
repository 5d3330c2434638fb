package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Evgen-Mutagen/finances/internal/controller"
	"github.com/Evgen-Mutagen/finances/internal/middlewareinternal"
	"github.com/Evgen-Mutagen/finances/internal/repository"
	"github.com/Evgen-Mutagen/finances/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type App struct {
	cfg    *Config
	Router *chi.Mux
	store  repository.Store
	Logger *zap.Logger
	Server *http.Server
}

func New(cfg *Config) (*App, error) {
	app := &App{
		cfg:    cfg,
		Router: chi.NewRouter(),
		Logger: zap.L(),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.initRouter()
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	a.Server = &http.Server{
		Addr:    a.cfg.RunAddress,
		Handler: a.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Starting HTTP server",
			zap.String("address", a.cfg.RunAddress))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("Shutting down server...")
		return a.shutdown()
	case err := <-errCh:
		if err != nil {
			a.Logger.Error("Server failed", zap.Error(err))
			_ = a.store.Close()
			return err
		}
		return a.shutdown()
	}
}

func (a *App) initStore() error {
	if a.cfg.DatabaseURI == "" {
		a.Logger.Warn("No database URI configured, keeping data in memory")
		a.store = repository.NewMemoryStore()
		return nil
	}

	dbConfig := repository.DatabaseConfig{
		DSN:            a.cfg.DatabaseURI,
		MigrationsPath: a.cfg.MigrationsPath,
	}

	db, err := repository.NewDatabase(dbConfig)
	if err != nil {
		a.Logger.Error("Database initialization failed",
			zap.String("dsn", a.cfg.MaskDBPassword()),
			zap.Error(err))
		return fmt.Errorf("database initialization failed: %w", err)
	}

	a.store = db
	a.Logger.Info("Database initialized successfully",
		zap.String("migrations_path", a.cfg.MigrationsPath))

	return nil
}

func (a *App) initRouter() {
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.RealIP)
	a.Router.Use(middleware.Logger)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.Compress(5))

	// Services
	userService := service.NewUserService(a.store, a.Logger)
	authService := service.NewAuthService(userService, a.cfg.JWTSecretKey, a.cfg.TokenTTL, a.Logger)
	ledgerService := service.NewLedgerService(a.store, a.Logger, a.cfg.CompensateBalance)

	logger := a.Logger
	// Controllers
	authController := controller.NewAuthController(authService, a.cfg.TokenTTL, logger)
	userController := controller.NewUserController(userService, logger)
	receiveController := controller.NewReceiveController(ledgerService, logger)

	// Public routes
	a.Router.Post("/login", authController.Login)
	a.Router.Post("/users", userController.Create)

	// Protected routes
	a.Router.Group(func(r chi.Router) {
		r.Use(middlewareinternal.JWTAuthMiddleware(authService))

		r.Get("/users", userController.List)
		r.Get("/users/email", userController.GetByEmail)
		r.Get("/users/{id}", userController.Get)
		r.Put("/users/{id}", userController.Update)
		r.Delete("/users/{id}", userController.Delete)

		r.Post("/receives", receiveController.Create)
		r.Get("/receives", receiveController.List)
		r.Get("/receives/all", receiveController.ListAll)
		r.Get("/receives/{id}", receiveController.Get)
		r.Patch("/receives/{id}", receiveController.Update)
		r.Delete("/receives/{id}", receiveController.Delete)
	})
}

func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := a.Server.Shutdown(ctx)
	if cerr := a.store.Close(); err == nil {
		err = cerr
	}
	return err
}
