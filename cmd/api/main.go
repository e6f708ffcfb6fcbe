// Package main is the entry point for the blog API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/pkordes/blog/internal/config"
	"github.com/pkordes/blog/internal/handler"
	"github.com/pkordes/blog/internal/i18n"
	"github.com/pkordes/blog/internal/middleware"
	"github.com/pkordes/blog/internal/repo"
	"github.com/pkordes/blog/internal/service"
	"github.com/pkordes/blog/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A .env file is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use the default stderr logger before ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logLevel, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		db := stdlib.OpenDBFromPool(pool)
		versions, err := migrations.Up(context.Background(), db)
		_ = db.Close()
		if err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied", "versions", versions)
	}

	// --- Languages --------------------------------------------------------
	languages, err := i18n.NewResolver(cfg.Languages, cfg.DefaultLanguage)
	if err != nil {
		slog.Error("invalid language configuration", "error", err)
		os.Exit(1)
	}

	// --- Services ---------------------------------------------------------
	postRepo := repo.NewPostRepo(pool)
	tagRepo := repo.NewTagRepo(pool)
	userRepo := repo.NewUserRepo(pool)
	placeholderRepo := repo.NewPlaceholderRepo(pool)
	pluginRepo := repo.NewPluginRepo(pool)
	entriesRepo := repo.NewLatestEntriesRepo(pool)

	posts := service.NewPostService(postRepo, tagRepo,
		service.WithLanguages(languages),
		service.WithLogger(logger),
		service.WithSaveHooks(service.NewContentLanguageHook(pluginRepo, cfg.ContentLanguage, logger)),
	)

	srv := handler.NewServer(handler.Services{
		Posts:         posts,
		Tags:          service.NewTagService(tagRepo),
		Users:         service.NewUserService(userRepo),
		Content:       service.NewContentService(placeholderRepo, pluginRepo, languages),
		LatestEntries: service.NewLatestEntriesService(entriesRepo, tagRepo, posts, languages),
		Export:        service.NewExportService(postRepo, userRepo, tagRepo),
	}, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit → language.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(middleware.NewLanguageHandler(languages))
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	httpSrv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "languages", languages.Supported())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
