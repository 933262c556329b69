// Package main runs Kafka consumers that forecast every request published
// to the prediction topic.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/bootstrap"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/config"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/kafka"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/metrics"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/service"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/platform"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := platform.InitLogger(cfg.Server.LogLevel, cfg.IsDevelopment())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		platform.LogFatal(logger, "Failed to initialize service", err)
	}

	process := processor(app.Service, logger)

	var wg sync.WaitGroup
	consumers := make([]*kafka.Consumer, 0, cfg.Kafka.ConsumerCount)
	logger.Info().Int("count", cfg.Kafka.ConsumerCount).Str("topic", cfg.Kafka.Topic).Msg("Starting Kafka consumers")

	for i := 0; i < cfg.Kafka.ConsumerCount; i++ {
		consumer, err := kafka.NewConsumer(fmt.Sprintf("consumer-%d", i), cfg.Kafka, process, logger)
		if err != nil {
			platform.LogFatal(logger, "Failed to create consumer", err)
		}
		consumers = append(consumers, consumer)

		wg.Add(1)
		go func(c *kafka.Consumer, id int) {
			defer wg.Done()
			if err := c.Consume(ctx); err != nil {
				logger.Error().Err(err).Int("consumer", id).Msg("Consumer stopped with error")
			}
		}(consumer, i)
	}

	<-ctx.Done()
	logger.Info().Msg("Received termination signal, shutting down")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info().Msg("All consumers stopped")
	case <-time.After(cfg.Server.ShutdownTimeout):
		logger.Warn().Msg("Shutdown timed out")
	}

	for _, c := range consumers {
		if err := c.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close consumer")
		}
	}
	app.Close()
	logger.Info().Msg("Shutdown complete")
}

func processor(svc *service.Service, logger zerolog.Logger) kafka.BatchProcessor {
	return func(ctx context.Context, batch []kafka.Request) error {
		var failed int
		for _, req := range batch {
			run, err := svc.Predict(ctx, req.Body, metrics.SourceKafka)
			if err != nil {
				failed++
				logger.Warn().Err(err).Str("key", req.Key).Int64("offset", req.Offset).Msg("Prediction failed")
				continue
			}
			logger.Debug().Str("run_id", run.ID.String()).Str("key", req.Key).Msg("Prediction recorded")
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d predictions failed", failed, len(batch))
		}
		return nil
	}
}
