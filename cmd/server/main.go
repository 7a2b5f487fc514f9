package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"brewlog/internal/brewlog"
	"brewlog/internal/config"
	"brewlog/internal/database/sqlite"
	"brewlog/internal/files"
	"brewlog/internal/handlers"
	"brewlog/internal/imaging"
	"brewlog/internal/middleware"
	"brewlog/internal/routing"
	"brewlog/internal/tastewheel"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	logger := cfg.Logger()
	log.Logger = logger

	// Initialize database
	kv, err := sqlite.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to initialize database")
	}
	defer kv.Close()

	fs, err := files.NewOSFileSystem(cfg.DocumentsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare documents directory")
	}

	scratch := filepath.Join(os.TempDir(), "brewlog")
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create scratch directory")
	}

	store := brewlog.New(kv, fs,
		brewlog.WithPlaceholder(cfg.PlaceholderImage),
		brewlog.WithNormalizer(imaging.JPEGNormalizer{ScratchDir: scratch}),
		brewlog.WithLogger(logger.With().Str("component", "brewlog").Logger()),
	)

	wheel, err := tastewheel.New(cfg.WheelRadius)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid wheel radius")
	}

	// Initialize handlers
	h := handlers.NewHandler(store, wheel)
	h.SetConfig(handlers.Config{ScratchDir: scratch})

	rateLimits := middleware.NewDefaultRateLimitConfig()
	stopWrite := rateLimits.WriteLimiter.StartSweeper(5 * time.Minute)
	defer stopWrite()
	stopRead := rateLimits.ReadLimiter.StartSweeper(5 * time.Minute)
	defer stopRead()

	router := routing.SetupRouter(routing.Config{
		Handlers:   h,
		Logger:     logger,
		RateLimits: rateLimits,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("address", srv.Addr).
			Str("database", cfg.DBPath).
			Str("documents", fs.DocumentsDir()).
			Msg("Starting brew log server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}
}
