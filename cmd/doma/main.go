package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/Arooshimran/doma-backend/internal/adapter/fsm"
	"github.com/Arooshimran/doma-backend/internal/adapter/mail"
	"github.com/Arooshimran/doma-backend/internal/adapter/otel"
	"github.com/Arooshimran/doma-backend/internal/adapter/password"
	"github.com/Arooshimran/doma-backend/internal/adapter/river"
	"github.com/Arooshimran/doma-backend/internal/adapter/sqlite"
	"github.com/Arooshimran/doma-backend/internal/adapter/token"
	"github.com/Arooshimran/doma-backend/internal/app"
	"github.com/Arooshimran/doma-backend/internal/config"

	handler "github.com/Arooshimran/doma-backend/internal/adapter/http"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("doma: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	cfg := config.Load()
	logger := slog.Default()

	// --- Observability ---
	otelCfg := otel.ConfigFromEnv()
	providers, err := otel.Setup(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("otel shutdown", "error", err)
		}
	}()

	// --- Storage ---
	db, err := otel.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	repo, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	categoryRepo := sqlite.NewCategoryRepository(db)

	// --- Mail + job queue ---
	mailer, err := mail.New(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
	})
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	queue, err := river.Setup(ctx, db, mailer)
	if err != nil {
		return fmt.Errorf("river setup: %w", err)
	}
	if err := queue.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := queue.Stop(stopCtx); err != nil {
			logger.Error("river stop", "error", err)
		}
	}()

	// --- Application ---
	tracedRepo := otel.NewTracingRepository(repo)
	publisher := otel.NewTracingPublisher(river.NewPublisher(queue))

	vendors := app.NewVendorService(tracedRepo, publisher, fsm.New(), password.New(), logger)
	auth := app.NewAuthService(tracedRepo, password.New(), token.New(cfg.JWTSecret, cfg.TokenTTL))
	categories := app.NewCategoryService(categoryRepo)

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(otelchi.Middleware(otelCfg.ServiceName, otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("doma", "0.1.0"))
	handler.Register(api, handler.NewHandler(vendors, auth, categories, cfg.AdminKey))

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("doma listening", "port", cfg.Port)
		logger.Info("API docs", "url", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-done:
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}
