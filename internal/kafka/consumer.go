// Package kafka consumes prediction requests from a Kafka topic and hands
// them to a batch processor.
package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Shopify/sarama"
	"github.com/rs/zerolog"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/config"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/api"
)

// Request is a decoded message with its origin, for logging.
type Request struct {
	Key       string
	Partition int32
	Offset    int64
	Body      api.PredictionRequest
}

// BatchProcessor handles a flushed batch of requests.
type BatchProcessor func(ctx context.Context, batch []Request) error

// Decode parses a message value. Unknown fields are rejected.
func Decode(msg *sarama.ConsumerMessage) (Request, error) {
	var body api.PredictionRequest
	dec := json.NewDecoder(bytes.NewReader(msg.Value))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return Request{}, fmt.Errorf("decode message at %d/%d: %w", msg.Partition, msg.Offset, err)
	}
	return Request{
		Key:       string(msg.Key),
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Body:      body,
	}, nil
}

// Consumer reads a topic through a consumer group.
type Consumer struct {
	id     string
	config config.KafkaConfig
	group  sarama.ConsumerGroup
	buffer *batcher
	logger zerolog.Logger
}

func NewConsumer(id string, cfg config.KafkaConfig, processor BatchProcessor, logger zerolog.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	saramaConfig.Consumer.MaxWaitTime = 250 * time.Millisecond

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	logger = logger.With().Str("consumer", id).Logger()
	return &Consumer{
		id:     id,
		config: cfg,
		group:  group,
		buffer: newBatcher(cfg.BatchSize, processor, logger),
		logger: logger,
	}, nil
}

// Consume blocks until ctx is cancelled or the group fails. The buffer is
// flushed before returning.
func (c *Consumer) Consume(ctx context.Context) error {
	defer c.buffer.flush(context.Background())

	go func() {
		for err := range c.group.Errors() {
			c.logger.Error().Err(err).Msg("consumer group error")
		}
	}()

	interval := c.config.BatchTimeout
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ticker.C:
				c.buffer.flush(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	handler := &groupHandler{buffer: c.buffer, logger: c.logger}
	for {
		if err := c.group.Consume(ctx, []string{c.config.Topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	buffer *batcher
	logger zerolog.Logger
}

func (h *groupHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()
	for msg := range claim.Messages() {
		req, err := Decode(msg)
		if err != nil {
			h.logger.Warn().Err(err).Msg("skipping malformed message")
			session.MarkMessage(msg, "")
			continue
		}
		h.buffer.add(ctx, req)
		session.MarkMessage(msg, "")
	}
	return nil
}

// batcher accumulates requests and flushes them when full or on demand.
// Flushes run synchronously so a batch finishes before the next starts.
type batcher struct {
	mu        sync.Mutex
	size      int
	pending   []Request
	processor BatchProcessor
	logger    zerolog.Logger
}

func newBatcher(size int, processor BatchProcessor, logger zerolog.Logger) *batcher {
	if size <= 0 {
		size = 1
	}
	return &batcher{
		size:      size,
		pending:   make([]Request, 0, size),
		processor: processor,
		logger:    logger,
	}
}

func (b *batcher) add(ctx context.Context, r Request) {
	b.mu.Lock()
	b.pending = append(b.pending, r)
	full := len(b.pending) >= b.size
	b.mu.Unlock()

	if full {
		b.flush(ctx)
	}
}

func (b *batcher) flush(ctx context.Context) {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	batch := make([]Request, len(b.pending))
	copy(batch, b.pending)
	b.pending = b.pending[:0]
	b.mu.Unlock()

	if err := b.processor(ctx, batch); err != nil {
		b.logger.Error().Err(err).Int("batch_size", len(batch)).Msg("error processing batch")
	}
}
