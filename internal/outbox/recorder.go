package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/repository"
)

// Recorder appends domain events to the outbox. Call it with the context of a
// running transaction so the event commits together with the change.
type Recorder struct {
	Repo repository.OutboxRepository
}

func NewRecorder(repo repository.OutboxRepository) *Recorder {
	return &Recorder{Repo: repo}
}

func (r *Recorder) Record(ctx context.Context, topic, key string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	e := &domain.Event{
		ID:        uuid.NewString(),
		Topic:     topic,
		Key:       key,
		Payload:   b,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.Repo.Insert(ctx, e); err != nil {
		return fmt.Errorf("insert %s event: %w", topic, err)
	}
	return nil
}
