package memory

import (
	"context"
	"time"

	"github.com/freebook/backend/internal/domain"
)

type OutboxRepo struct{ s *Store }

func (r *OutboxRepo) Insert(_ context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.outbox = append(r.s.outbox, *e)
	return nil
}

func (r *OutboxRepo) Fetch(_ context.Context, limit int) ([]domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Event
	for _, e := range r.s.outbox {
		if e.PublishedAt != nil {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkPublished runs outside any transaction, so it waits for a running one
// to finish instead of being undone by its rollback.
func (r *OutboxRepo) MarkPublished(_ context.Context, id string) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.outbox {
		if r.s.outbox[i].ID == id {
			now := time.Now().UTC()
			r.s.outbox[i].PublishedAt = &now
		}
	}
	return nil
}

// Events returns every recorded event; used by tests.
func (r *OutboxRepo) Events() []domain.Event {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.Event(nil), r.s.outbox...)
}
