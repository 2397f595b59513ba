// Package memory implements the repository contracts in process memory. It
// backs STORE_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/repository"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account // keyed by email
	profiles map[string]domain.Profile
	posts    map[string]domain.Post
	outbox   []domain.Event

	// txMu serialises transactions; each runs against a snapshot it can
	// restore on failure. Writers outside WithTx must hold it too.
	txMu sync.Mutex
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		profiles: make(map[string]domain.Profile),
		posts:    make(map[string]domain.Post),
	}
}

func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s} }
func (s *Store) Profiles() *ProfileRepo { return &ProfileRepo{s} }
func (s *Store) Posts() *PostRepo       { return &PostRepo{s} }
func (s *Store) Outbox() *OutboxRepo    { return &OutboxRepo{s} }

// WithTx implements tx.Transactor. Writes made by fn are rolled back when it
// returns an error.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Ping backs the readiness check.
func (s *Store) Ping(context.Context) error { return nil }

type snapshot struct {
	accounts map[string]domain.Account
	profiles map[string]domain.Profile
	posts    map[string]domain.Post
	outbox   []domain.Event
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		accounts: make(map[string]domain.Account, len(s.accounts)),
		profiles: make(map[string]domain.Profile, len(s.profiles)),
		posts:    make(map[string]domain.Post, len(s.posts)),
		outbox:   append([]domain.Event(nil), s.outbox...),
	}
	for k, v := range s.accounts {
		snap.accounts[k] = v
	}
	for k, v := range s.profiles {
		snap.profiles[k] = copyProfile(v)
	}
	for k, v := range s.posts {
		snap.posts[k] = copyPost(v)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = snap.accounts
	s.profiles = snap.profiles
	s.posts = snap.posts
	s.outbox = snap.outbox
}

func copyProfile(p domain.Profile) domain.Profile {
	p.LikedPosts = append([]string{}, p.LikedPosts...)
	p.SavedPosts = append([]string{}, p.SavedPosts...)
	return p
}

func copyPost(p domain.Post) domain.Post {
	p.Tags = append([]string{}, p.Tags...)
	p.LikedBy = append([]string{}, p.LikedBy...)
	return p
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func sortNewestFirst(posts []*domain.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
}

var (
	_ repository.AccountRepository = (*AccountRepo)(nil)
	_ repository.ProfileRepository = (*ProfileRepo)(nil)
	_ repository.PostRepository    = (*PostRepo)(nil)
	_ repository.OutboxRepository  = (*OutboxRepo)(nil)
)
