package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/observability"
	"github.com/freebook/backend/internal/repository"
	"github.com/freebook/backend/internal/tx"
)

// PostService handles post reads and the owner-only mutations.
type PostService struct {
	posts    repository.PostRepository
	profiles repository.ProfileRepository
	actors   actors
	tx       tx.Transactor
	events   EventRecorder
	cache    ProfileCache
	images   ImageRemover

	now func() time.Time
}

// NewPostService wires the post service. images may be nil when no image
// storage is configured.
func NewPostService(
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	posts repository.PostRepository,
	t tx.Transactor,
	events EventRecorder,
	cache ProfileCache,
	images ImageRemover,
) *PostService {
	return &PostService{
		posts:    posts,
		profiles: profiles,
		actors:   actors{accounts: accounts, profiles: profiles},
		tx:       t,
		events:   events,
		cache:    cache,
		images:   images,
		now:      time.Now,
	}
}

func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	p, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post: %w", err)
	}
	return p, nil
}

func (s *PostService) List(ctx context.Context) ([]*domain.Post, error) {
	return s.posts.List(ctx)
}

// Recent returns one page of posts, newest first.
func (s *PostService) Recent(ctx context.Context, page domain.Page) ([]*domain.Post, error) {
	if !page.Valid() {
		return nil, fmt.Errorf("page %d limit %d: %w", page.Number, page.Limit, domain.ErrInvalidInput)
	}
	return s.posts.Recent(ctx, page)
}

func (s *PostService) Search(ctx context.Context, query string) ([]*domain.Post, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query: %w", domain.ErrInvalidInput)
	}
	return s.posts.Search(ctx, query)
}

func (s *PostService) ByCreator(ctx context.Context, creatorID string) ([]*domain.Post, error) {
	return s.posts.ByCreator(ctx, creatorID)
}

// Create stores a new post authored by the profile behind subject.
func (s *PostService) Create(ctx context.Context, subject string, c domain.PostContent) (*domain.Post, error) {
	creator, err := s.actors.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}

	post := c.Apply(&domain.Post{
		ID:        uuid.NewString(),
		CreatorID: creator.ID,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
		LikedBy:   []string{},
	})

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.posts.Create(ctx, post); err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		return s.events.Record(ctx, domain.TopicPostCreated, post.ID, post)
	})
	if err != nil {
		return nil, err
	}

	observability.GetLogger(ctx).Info("post_created",
		zap.String("post_id", post.ID),
		zap.String("creator_id", creator.ID),
	)
	return post, nil
}

// Update replaces the content of a post owned by the profile behind subject.
func (s *PostService) Update(ctx context.Context, subject, id string, c domain.PostContent) (*domain.Post, error) {
	actor, err := s.actors.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}

	var updated *domain.Post
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		cur, err := s.posts.Get(ctx, id)
		if err != nil {
			return err
		}
		if cur.CreatorID != actor.ID {
			return domain.ErrForbidden
		}

		updated = c.Apply(cur)
		if err := s.posts.Update(ctx, updated); err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}
		return s.events.Record(ctx, domain.TopicPostUpdated, updated.ID, updated)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a post owned by the profile behind subject and pulls its id
// from every liked and saved set.
func (s *PostService) Delete(ctx context.Context, subject, id string) error {
	actor, err := s.actors.resolve(ctx, subject)
	if err != nil {
		return err
	}

	var (
		post    *domain.Post
		touched []string
	)
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.posts.Get(ctx, id)
		if err != nil {
			return err
		}
		if p.CreatorID != actor.ID {
			return domain.ErrForbidden
		}

		if err := s.posts.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		ids, err := s.profiles.PullPost(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to detach post from profiles: %w", err)
		}
		post, touched = p, ids
		return s.events.Record(ctx, domain.TopicPostDeleted, id, map[string]string{
			"post_id":    id,
			"creator_id": p.CreatorID,
		})
	})
	if err != nil {
		return err
	}

	log := observability.GetLogger(ctx)
	log.Info("post_deleted", zap.String("post_id", id), zap.Int("profiles_touched", len(touched)))

	if err := s.cache.Delete(ctx, touched...); err != nil {
		log.Warn("profile cache invalidation failed", zap.Error(err))
	}
	if s.images != nil && post.ImgID != "" {
		s.removeImage(ctx, post)
	}
	return nil
}

// removeImage deletes the post's image only when the post's creator uploaded
// it. Failures are logged; the post is already gone.
func (s *PostService) removeImage(ctx context.Context, post *domain.Post) {
	log := observability.GetLogger(ctx).With(zap.String("img_id", post.ImgID))

	owner, err := s.images.Owner(ctx, post.ImgID)
	if err != nil {
		log.Warn("post image lookup failed", zap.Error(err))
		return
	}
	if owner != post.CreatorID {
		log.Warn("post image kept, uploaded by another profile", zap.String("owner", owner))
		return
	}
	if err := s.images.Delete(ctx, post.ImgID); err != nil {
		log.Warn("post image delete failed", zap.Error(err))
	}
}
