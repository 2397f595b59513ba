package memory

import (
	"context"

	"github.com/freebook/backend/internal/domain"
)

type AccountRepo struct{ s *Store }

func (r *AccountRepo) Create(_ context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[a.Email]; ok {
		return domain.ErrEmailConflict
	}
	r.s.accounts[a.Email] = *a
	return nil
}

func (r *AccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}
