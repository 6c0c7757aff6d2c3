package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/cache"
	"github.com/Andessonreis/corre-aqui-dash/internal/config"
	"github.com/Andessonreis/corre-aqui-dash/internal/logging"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/media"
	"github.com/Andessonreis/corre-aqui-dash/internal/storage"
)

// Worker responsável por gerar as miniaturas das imagens enviadas
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(false, "info", "image-worker")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := logging.New(cfg.IsProduction(), cfg.App.LogLevel, "image-worker")
	logger.Info().Msg("starting image worker")

	// Conectar ao Redis
	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()

	storageDriver, err := storage.NewDriver(&cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage driver")
	}

	thumbnailer := media.NewThumbnailer(storageDriver, logger)

	// Context para gerenciar lifecycle
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pubsub := redisClient.Client.Subscribe(ctx, cache.ChannelImageUploaded)
	defer pubsub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consume(ctx, pubsub.Channel(), thumbnailer, logger)
	}()

	logger.Info().
		Str("channel", cache.ChannelImageUploaded).
		Str("driver", storageDriver.Name()).
		Msg("worker ready, waiting for events")

	<-ctx.Done()
	logger.Info().Msg("shutting down worker")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn().Msg("worker did not finish in time")
	}

	logger.Info().Msg("worker stopped")
}

// consume processes events until ctx is cancelled. A failing event is logged
// and skipped.
func consume(ctx context.Context, ch <-chan *redis.Message, thumbnailer *media.Thumbnailer, logger zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			// per-event deadline
			eventCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := thumbnailer.HandleMessage(eventCtx, msg.Payload); err != nil {
				logger.Error().Err(err).Str("payload", msg.Payload).Msg("failed to process image event")
			}
			cancel()
		}
	}
}
