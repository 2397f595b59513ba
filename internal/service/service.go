package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/repository"
	"github.com/freebook/backend/internal/storage"
)

// ProfileCache is a read-through cache of profiles keyed by id. Get returns
// the cache version it looked at, hit or miss; Set must be given that version
// so a fill racing an invalidation is discarded.
type ProfileCache interface {
	Get(ctx context.Context, id string) (*domain.Profile, int64, error)
	Set(ctx context.Context, p *domain.Profile, version int64) error
	Delete(ctx context.Context, ids ...string) error
}

// EventRecorder writes domain events to the outbox.
type EventRecorder interface {
	Record(ctx context.Context, topic, key string, payload any) error
}

// ImageRemover deletes stored image objects. Owner reports the profile id
// that uploaded an image.
type ImageRemover interface {
	Owner(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

// ImageStore is the full object store behind the image endpoints.
type ImageStore interface {
	ImageRemover
	Upload(ctx context.Context, owner string, r io.Reader, size int64, filename, contentType string) (storage.Image, error)
}

// actors resolves the profile acting on behalf of a token subject.
type actors struct {
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
}

func (a actors) resolve(ctx context.Context, email string) (*domain.Profile, error) {
	acc, err := a.accounts.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrProfileMissing
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	p, err := a.profiles.GetByAccountID(ctx, acc.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrProfileMissing
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}
