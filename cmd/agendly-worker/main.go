package main

import (
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"agendly/backend/internal/config"
	"agendly/backend/internal/fiscal"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "agendly-worker"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	var emitter fiscal.DocumentEmitter
	if cfg.FiscalEmitterURL != "" {
		emitter = fiscal.NewHTTPEmitter(cfg.FiscalEmitterURL, nil)
	} else {
		emitter = fiscal.NewLogEmitter(log)
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues:      map[string]int{fiscal.Queue: 1},
		},
	)

	log.Info("worker started", slog.String("redis_addr", cfg.RedisAddr), slog.Int("concurrency", cfg.WorkerConcurrency))

	mux := fiscal.NewServeMux(fiscal.NewHandler(emitter, log))
	if err := srv.Run(mux); err != nil {
		log.Error("worker stopped with error", slog.Any("err", err))
		os.Exit(1)
	}
}
