package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/observability"
	"github.com/freebook/backend/internal/repository"
	"github.com/freebook/backend/internal/tx"
)

// InteractionService implements the like and save toggles. Every toggle is a
// pair of guarded writes in one transaction, so a failed guard leaves both
// sides untouched.
type InteractionService struct {
	posts    repository.PostRepository
	profiles repository.ProfileRepository
	actors   actors
	tx       tx.Transactor
	events   EventRecorder
	cache    ProfileCache
}

func NewInteractionService(
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	posts repository.PostRepository,
	t tx.Transactor,
	events EventRecorder,
	cache ProfileCache,
) *InteractionService {
	return &InteractionService{
		posts:    posts,
		profiles: profiles,
		actors:   actors{accounts: accounts, profiles: profiles},
		tx:       t,
		events:   events,
		cache:    cache,
	}
}

type toggle struct {
	action   string
	topic    string
	conflict error
	profile  func(ctx context.Context, profileID, postID string) (bool, error)
	post     func(ctx context.Context, postID, profileID string) (bool, error)
}

func (s *InteractionService) Like(ctx context.Context, subject, postID string) (*domain.Profile, error) {
	return s.apply(ctx, subject, postID, toggle{
		action:   "like",
		topic:    domain.TopicPostLiked,
		conflict: domain.ErrAlreadyLiked,
		profile:  s.setWriter(s.profiles.AddToSet, repository.LikedPosts),
		post:     s.posts.AddLiker,
	})
}

func (s *InteractionService) Unlike(ctx context.Context, subject, postID string) (*domain.Profile, error) {
	return s.apply(ctx, subject, postID, toggle{
		action:   "unlike",
		topic:    domain.TopicPostUnliked,
		conflict: domain.ErrNotLiked,
		profile:  s.setWriter(s.profiles.RemoveFromSet, repository.LikedPosts),
		post:     s.posts.RemoveLiker,
	})
}

func (s *InteractionService) Save(ctx context.Context, subject, postID string) (*domain.Profile, error) {
	return s.apply(ctx, subject, postID, toggle{
		action:   "save",
		topic:    domain.TopicPostSaved,
		conflict: domain.ErrAlreadySaved,
		profile:  s.setWriter(s.profiles.AddToSet, repository.SavedPosts),
	})
}

func (s *InteractionService) Unsave(ctx context.Context, subject, postID string) (*domain.Profile, error) {
	return s.apply(ctx, subject, postID, toggle{
		action:   "unsave",
		topic:    domain.TopicPostUnsaved,
		conflict: domain.ErrNotSaved,
		profile:  s.setWriter(s.profiles.RemoveFromSet, repository.SavedPosts),
	})
}

type setMutation func(ctx context.Context, profileID string, set repository.ProfileSet, postID string) (bool, error)

func (s *InteractionService) setWriter(fn setMutation, set repository.ProfileSet) func(ctx context.Context, profileID, postID string) (bool, error) {
	return func(ctx context.Context, profileID, postID string) (bool, error) {
		return fn(ctx, profileID, set, postID)
	}
}

// apply returns the acting profile as it stands after the toggle.
func (s *InteractionService) apply(ctx context.Context, subject, postID string, t toggle) (*domain.Profile, error) {
	if postID == "" {
		return nil, fmt.Errorf("missing post id: %w", domain.ErrInvalidInput)
	}

	actor, err := s.actors.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}

	var updated *domain.Profile
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.posts.Get(ctx, postID); err != nil {
			return err
		}

		ok, err := t.profile(ctx, actor.ID, postID)
		if err != nil {
			return fmt.Errorf("failed to %s post: %w", t.action, err)
		}
		if !ok {
			return t.conflict
		}

		if t.post != nil {
			ok, err = t.post(ctx, postID, actor.ID)
			if err != nil {
				return fmt.Errorf("failed to %s post: %w", t.action, err)
			}
			if !ok {
				return t.conflict
			}
		}

		if err := s.events.Record(ctx, t.topic, postID, domain.InteractionPayload{
			ProfileID: actor.ID,
			PostID:    postID,
		}); err != nil {
			return err
		}

		updated, err = s.profiles.Get(ctx, actor.ID)
		return err
	})

	observability.InteractionsTotal.WithLabelValues(t.action, outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, actor.ID); err != nil {
		observability.GetLogger(ctx).Warn("profile cache invalidation failed", zap.Error(err))
	}
	return updated, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
