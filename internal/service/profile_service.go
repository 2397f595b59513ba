package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/observability"
	"github.com/freebook/backend/internal/repository"
	"github.com/freebook/backend/internal/tx"
)

// ProfileService handles profile business logic.
type ProfileService struct {
	profiles repository.ProfileRepository
	actors   actors
	tx       tx.Transactor
	events   EventRecorder
	cache    ProfileCache
}

func NewProfileService(
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	t tx.Transactor,
	events EventRecorder,
	cache ProfileCache,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		actors:   actors{accounts: accounts, profiles: profiles},
		tx:       t,
		events:   events,
		cache:    cache,
	}
}

func (s *ProfileService) List(ctx context.Context) ([]*domain.Profile, error) {
	return s.profiles.List(ctx)
}

// Current returns the profile behind the token subject.
func (s *ProfileService) Current(ctx context.Context, subject string) (*domain.Profile, error) {
	return s.actors.resolve(ctx, subject)
}

// Get returns a profile by id, checking cache first.
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.Profile, error) {
	p, version, err := s.cache.Get(ctx, id)
	if err == nil {
		return p, nil
	}
	p, err = s.profiles.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if err := s.cache.Set(ctx, p, version); err != nil {
		observability.GetLogger(ctx).Warn("profile cache fill failed", zap.String("profile_id", id), zap.Error(err))
	}
	return p, nil
}

// Update replaces the mutable fields of the caller's own profile, invalidates
// the cache and writes an outbox event.
func (s *ProfileService) Update(ctx context.Context, subject, id string, u domain.ProfileUpdate) (*domain.Profile, error) {
	actor, err := s.actors.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}

	var updated *domain.Profile
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		cur, err := s.profiles.Get(ctx, id)
		if err != nil {
			return err
		}
		if cur.ID != actor.ID {
			return domain.ErrForbidden
		}

		updated = u.Apply(cur)
		if err := s.profiles.Update(ctx, updated); err != nil {
			return fmt.Errorf("failed to update profile in repo: %w", err)
		}
		return s.events.Record(ctx, domain.TopicProfileUpdated, updated.ID, updated)
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, updated.ID); err != nil {
		observability.GetLogger(ctx).Warn("profile cache invalidation failed", zap.Error(err))
	}
	return updated, nil
}
