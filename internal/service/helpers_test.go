package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freebook/backend/internal/cache"
	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/outbox"
	"github.com/freebook/backend/internal/repository/memory"
	"github.com/freebook/backend/internal/security"
	"github.com/freebook/backend/internal/storage"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, id string) (*domain.Profile, int64, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).(*domain.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, p *domain.Profile, version int64) error {
	return m.Called(ctx, p, version).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, ids ...string) error {
	return m.Called(ctx, ids).Error(0)
}

type MockImages struct {
	mock.Mock
}

func (m *MockImages) Upload(ctx context.Context, owner string, r io.Reader, size int64, filename, contentType string) (storage.Image, error) {
	args := m.Called(ctx, owner, r, size, filename, contentType)
	return args.Get(0).(storage.Image), args.Error(1)
}

func (m *MockImages) Owner(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockImages) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type fixture struct {
	store        *memory.Store
	tokens       *security.TokenIssuer
	auth         *AuthService
	posts        *PostService
	interactions *InteractionService
	profiles     *ProfileService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, cache.Nop{}, nil)
}

func newFixtureWith(t *testing.T, c ProfileCache, images ImageRemover) *fixture {
	t.Helper()

	store := memory.NewStore()
	rec := outbox.NewRecorder(store.Outbox())
	tokens := security.NewTokenIssuer("test-secret", "freebook-auth", "freebook-clients", time.Hour)

	return &fixture{
		store:        store,
		tokens:       tokens,
		auth:         NewAuthService(store.Accounts(), store.Profiles(), store, rec, tokens),
		posts:        NewPostService(store.Accounts(), store.Profiles(), store.Posts(), store, rec, c, images),
		interactions: NewInteractionService(store.Accounts(), store.Profiles(), store.Posts(), store, rec, c),
		profiles:     NewProfileService(store.Accounts(), store.Profiles(), store, rec, c),
	}
}

// register creates a user and returns the token subject and profile.
func (f *fixture) register(t *testing.T, username string) (string, *domain.Profile) {
	t.Helper()
	ctx := context.Background()

	token, err := f.auth.Register(ctx, RegisterInput{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	subject, err := f.tokens.Subject(token)
	require.NoError(t, err)

	p, err := f.profiles.Current(ctx, subject)
	require.NoError(t, err)
	return subject, p
}

func (f *fixture) createPost(t *testing.T, subject, caption string, tags ...string) *domain.Post {
	t.Helper()
	p, err := f.posts.Create(context.Background(), subject, domain.PostContent{
		Caption: caption,
		Tags:    tags,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) topics() []string {
	var out []string
	for _, e := range f.store.Outbox().Events() {
		out = append(out, e.Topic)
	}
	return out
}
