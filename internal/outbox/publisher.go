package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/freebook/backend/internal/observability"
	"github.com/freebook/backend/internal/repository"
)

// Producer is the sink events are published to.
type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Publisher polls the outbox and publishes unpublished events. An event that
// fails to publish stays in the outbox and is retried on the next tick.
type Publisher struct {
	repo      repository.OutboxRepository
	producer  Producer
	interval  time.Duration
	batchSize int
}

func NewPublisher(repo repository.OutboxRepository, producer Producer, interval time.Duration, batchSize int) *Publisher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Publisher{repo: repo, producer: producer, interval: interval, batchSize: batchSize}
}

// Start begins the polling loop. It blocks until the context is cancelled.
func (p *Publisher) Start(ctx context.Context) {
	log := observability.GetLogger(ctx)
	log.Info("outbox publisher started", zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox publisher stopping")
			return
		case <-ticker.C:
			p.PublishBatch(ctx)
		}
	}
}

// PublishBatch publishes one batch and returns how many events were marked
// published.
func (p *Publisher) PublishBatch(ctx context.Context) int {
	log := observability.GetLogger(ctx)

	events, err := p.repo.Fetch(ctx, p.batchSize)
	if err != nil {
		log.Error("outbox fetch failed", zap.Error(err))
		return 0
	}

	published := 0
	for _, e := range events {
		if err := p.producer.Publish(ctx, e.Topic, []byte(e.Key), e.Payload); err != nil {
			observability.OutboxPublishFailuresTotal.WithLabelValues(e.Topic).Inc()
			log.Warn("kafka publish failed",
				zap.String("event_id", e.ID),
				zap.String("topic", e.Topic),
				zap.Error(err),
			)
			continue
		}

		if err := p.repo.MarkPublished(ctx, e.ID); err != nil {
			log.Error("outbox mark published failed", zap.String("event_id", e.ID), zap.Error(err))
			continue
		}
		published++
	}
	return published
}
