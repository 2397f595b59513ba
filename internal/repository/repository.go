package repository

import (
	"context"

	"github.com/freebook/backend/internal/domain"
)

// ProfileSet names one of the post-id sets held on a profile.
type ProfileSet string

const (
	LikedPosts ProfileSet = "likedPosts"
	SavedPosts ProfileSet = "savedPosts"
)

type AccountRepository interface {
	// Create returns domain.ErrEmailConflict when the email is taken.
	Create(ctx context.Context, a *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// ProfileRepository stores profiles. The set mutations are conditional: they
// report false without writing when the guard (absent for Add, present for
// Remove) does not hold.
type ProfileRepository interface {
	Create(ctx context.Context, p *domain.Profile) error
	Get(ctx context.Context, id string) (*domain.Profile, error)
	GetByAccountID(ctx context.Context, accountID string) (*domain.Profile, error)
	List(ctx context.Context) ([]*domain.Profile, error)
	// Update replaces name, email, bio and image fields only.
	Update(ctx context.Context, p *domain.Profile) error

	AddToSet(ctx context.Context, profileID string, set ProfileSet, postID string) (bool, error)
	RemoveFromSet(ctx context.Context, profileID string, set ProfileSet, postID string) (bool, error)
	// PullPost removes postID from every profile's liked and saved sets and
	// returns the ids of the profiles it changed.
	PullPost(ctx context.Context, postID string) ([]string, error)
}

// PostRepository stores posts. AddLiker and RemoveLiker follow the same
// conditional contract as the profile set mutations.
type PostRepository interface {
	Create(ctx context.Context, p *domain.Post) error
	Get(ctx context.Context, id string) (*domain.Post, error)
	List(ctx context.Context) ([]*domain.Post, error)
	Recent(ctx context.Context, page domain.Page) ([]*domain.Post, error)
	// Search matches query literally and case-insensitively against the
	// caption and every tag.
	Search(ctx context.Context, query string) ([]*domain.Post, error)
	ByCreator(ctx context.Context, creatorID string) ([]*domain.Post, error)
	// Update replaces caption, tags, images and location only.
	Update(ctx context.Context, p *domain.Post) error
	Delete(ctx context.Context, id string) error

	AddLiker(ctx context.Context, postID, profileID string) (bool, error)
	RemoveLiker(ctx context.Context, postID, profileID string) (bool, error)
}

type OutboxRepository interface {
	Insert(ctx context.Context, e *domain.Event) error
	// Fetch returns up to limit unpublished events, oldest first.
	Fetch(ctx context.Context, limit int) ([]domain.Event, error)
	MarkPublished(ctx context.Context, id string) error
}
