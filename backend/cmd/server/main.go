package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"network-journal/backend/internal/api"
	"network-journal/backend/internal/engine"
	"network-journal/backend/internal/graph"
	"network-journal/backend/internal/notes"
	"network-journal/backend/pkg/config"
	"network-journal/backend/pkg/logger"
)

const (
	shutdownTimeout = 5 * time.Second
	connectTimeout  = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting graph view server...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	log.Info("Server exited")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	engineCfg, err := engine.ConfigFrom(cfg)
	if err != nil {
		return err
	}
	eng, err := engine.New(engineCfg)
	if err != nil {
		return err
	}

	// The view works without a database; data endpoints then answer 503
	var source api.DataSource
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	driver, err := graph.Connect(connectCtx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	cancel()
	if err != nil {
		log.Warn("Neo4j unavailable, serving an empty graph", zap.Error(err))
	} else {
		defer driver.Close(context.Background())
		repo := graph.NewRepository(driver)
		source = repo

		snap, err := repo.FetchSnapshot(ctx)
		if err != nil {
			log.Warn("Failed to load initial snapshot", zap.Error(err))
		} else {
			eng.Load(snap)
		}
	}

	var extractor api.NoteExtractor
	if cfg.NotesEnabled() {
		extractor = notes.NewExtractor(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.ModelID, cfg.OwnerName)
	} else {
		log.Info("LLM_API_KEY not set, note extraction disabled")
	}

	loop := engine.NewLoop(eng, cfg.FrameRate)
	server := api.NewServer(loop, source, extractor, cfg.OwnerName)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Router(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		log.Info("Server started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown", zap.Error(err))
			return err
		}
		return nil
	})
	return g.Wait()
}
