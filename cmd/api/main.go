package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lectureqa/lectureqa/internal/api"
	"github.com/lectureqa/lectureqa/internal/config"
	"github.com/lectureqa/lectureqa/internal/jobs"
	"github.com/lectureqa/lectureqa/internal/llm"
	"github.com/lectureqa/lectureqa/internal/match"
	"github.com/lectureqa/lectureqa/internal/stt"
	"github.com/lectureqa/lectureqa/internal/stt/xunfei"
	"github.com/lectureqa/lectureqa/internal/transcribe"
	"github.com/lectureqa/lectureqa/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	for _, dir := range []string{cfg.Uploads.UploadDir, cfg.Uploads.WorkDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("could not create directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()

	// Job registry: in-process by default, redis when the registry must
	// survive restarts or be shared.
	var store jobs.Store = jobs.NewMemoryStore()
	if cfg.Jobs.Store == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("redis unavailable", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		store = jobs.NewRedisStore(rdb, 24*time.Hour)
		slog.Info("using redis job store", "addr", cfg.Redis.Addr)
	}

	// Transcription backends
	whisper := transcribe.NewWhisper(transcribe.WhisperConfig{
		Bin:      cfg.Whisper.Bin,
		Model:    cfg.Whisper.Model,
		Language: cfg.Whisper.Language,
		Threads:  cfg.Whisper.Threads,
	})
	backends := map[string]stt.Provider{
		worker.BackendLocal: stt.NewLocal(whisper),
	}
	if cfg.RemoteEnabled() {
		remote, err := xunfei.New(xunfei.Config{
			AppID:      cfg.Xunfei.AppID,
			APIKey:     cfg.Xunfei.APIKey,
			SecretKey:  cfg.Xunfei.SecretKey,
			LegacyHost: cfg.Xunfei.LfasrHost,
			RaasrHost:  cfg.Xunfei.RaasrHost,
		})
		if err != nil {
			slog.Error("invalid cloud STT config", "error", err)
			os.Exit(1)
		}
		backends[worker.BackendRemote] = remote
		slog.Info("cloud STT backend enabled")
	}

	transcoder := &transcribe.Transcoder{FFmpegBin: cfg.Uploads.FFmpegBin}
	wk := worker.New(store, transcoder, backends, cfg.Uploads.WorkDir)
	runner := jobs.NewRunner(cfg.Jobs.MaxConcurrent)

	// Question matching (optional, needs a model API key)
	var matchSvc *match.Service
	if cfg.LLM.APIKey != "" {
		candidates := llm.ResolveCandidates(cfg.LLM.Models, cfg.LLM.ModelsFile, cfg.LLM.Model)
		if len(candidates) == 0 {
			slog.Error("no usable model candidates (set OPENROUTER_MODELS, OPENROUTER_MODELS_FILE or OPENROUTER_MODEL)")
			os.Exit(1)
		}
		caller := llm.NewOpenRouter(cfg.LLM.APIKey, cfg.LLM.BaseURL)
		matchSvc = match.NewService(llm.NewFallback(caller), candidates, cfg.LLM.MaxTokens)
		slog.Info("question matching enabled", "candidates", candidates)
	} else {
		slog.Warn("OPENROUTER_API_KEY not set, question matching disabled")
	}

	router := api.NewRouter(cfg, store, runner, wk, matchSvc)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  10 * time.Minute, // large audio uploads
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
