package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"fedcite/internal/activities"
	"fedcite/internal/batch"
	"fedcite/internal/config"
	"fedcite/internal/logging"
	"fedcite/internal/providers"
	"fedcite/internal/storage"
	"fedcite/internal/workflows"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal("worker: dial temporal", zap.Error(err))
	}
	defer c.Close()

	provider, err := providers.New(cfg)
	if err != nil {
		log.Fatal("worker: batch provider", zap.Error(err))
	}

	var recorder batch.JobRecorder
	if cfg.PostgresURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		db, err := storage.NewDB(ctx, cfg.PostgresURL)
		if err == nil {
			err = db.EnsureSchema(ctx)
		}
		cancel()
		if err != nil {
			log.Fatal("worker: postgres", zap.Error(err))
		}
		defer db.Close()
		recorder = storage.NewBatchJobRepo(db)
	}

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	activities.Register(w, activities.New(provider, recorder, log))

	log.Info("worker: listening",
		zap.String("address", cfg.TemporalAddress),
		zap.String("queue", cfg.TemporalTaskQueue),
		zap.String("provider", provider.Name()),
	)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal("worker: run", zap.Error(err))
	}
}
