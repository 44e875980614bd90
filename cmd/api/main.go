package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dkarpushin/tubechat/internal/config"
	"github.com/dkarpushin/tubechat/internal/handler"
	"github.com/dkarpushin/tubechat/internal/logger"
	aiservice "github.com/dkarpushin/tubechat/internal/service/ai"
	chatservice "github.com/dkarpushin/tubechat/internal/service/chat"
	transcriptservice "github.com/dkarpushin/tubechat/internal/service/transcript"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logger.Log.Warnf("failed to load .env file: %v, continuing with system environment only", err)
	}
	logger.InitFromEnv("LOG_LEVEL")

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Errorf("failed to load configuration: %v", err)
		os.Exit(1)
	}

	captionClient := transcriptservice.NewClient(cfg.Transcript.Timeout, cfg.Transcript.RequestsPerSecond, cfg.Transcript.Burst)
	transcripts := transcriptservice.NewService(captionClient, cfg.Transcript.Languages)
	sessions := chatservice.NewService(transcripts, cfg.Session.MaxAge, cfg.Session.ReapProbability)

	var aiSvc *aiservice.Service
	if cfg.AI.Enabled() {
		provider, err := aiservice.NewProviderFromConfig(ctx, cfg.AI)
		if err != nil {
			logger.Log.Warnf("failed to initialize completion provider: %v, continuing without chat", err)
		} else {
			aiSvc = aiservice.NewService(provider, sessions, cfg.AI.ContextBudget, aiservice.DefaultOptions(cfg.AI))
			logger.Log.Infof("completion provider %s initialized, model=%s", provider.Name(), cfg.AI.Model)
		}
	} else {
		logger.Log.Warnf("completion credentials not configured, chat endpoints disabled")
	}

	if cfg.Session.SweepSchedule != "" {
		sweeper, err := chatservice.NewSweeper(sessions, cfg.Session.SweepSchedule)
		if err != nil {
			logger.Log.Errorf("invalid SESSION_SWEEP_CRON: %v", err)
			os.Exit(1)
		}
		sweeper.Start()
		defer sweeper.Stop()
		logger.Log.Infof("session sweeper scheduled: %s", cfg.Session.SweepSchedule)
	}

	router := handler.NewRouter(sessions, aiSvc, transcripts)
	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Log.Infof("tubechat backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Log.Errorf("server error: %v", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
