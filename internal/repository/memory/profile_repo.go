package memory

import (
	"context"
	"sort"

	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/repository"
)

type ProfileRepo struct{ s *Store }

func (r *ProfileRepo) Create(_ context.Context, p *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.profiles[p.ID] = copyProfile(*p)
	return nil
}

func (r *ProfileRepo) Get(_ context.Context, id string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	out := copyProfile(p)
	return &out, nil
}

func (r *ProfileRepo) GetByAccountID(_ context.Context, accountID string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.profiles {
		if p.AccountID == accountID {
			out := copyProfile(p)
			return &out, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (r *ProfileRepo) List(_ context.Context) ([]*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Profile, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		cp := copyProfile(p)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ProfileRepo) Update(_ context.Context, p *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.profiles[p.ID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	cur.Name = p.Name
	cur.Email = p.Email
	cur.Bio = p.Bio
	cur.ImgURL = p.ImgURL
	cur.ImgID = p.ImgID
	r.s.profiles[p.ID] = cur
	return nil
}

func (r *ProfileRepo) AddToSet(_ context.Context, profileID string, set repository.ProfileSet, postID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[profileID]
	if !ok {
		return false, nil
	}
	ids := field(&p, set)
	if indexOf(*ids, postID) >= 0 {
		return false, nil
	}
	*ids = append(*ids, postID)
	r.s.profiles[profileID] = p
	return true, nil
}

func (r *ProfileRepo) RemoveFromSet(_ context.Context, profileID string, set repository.ProfileSet, postID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[profileID]
	if !ok {
		return false, nil
	}
	ids := field(&p, set)
	if indexOf(*ids, postID) < 0 {
		return false, nil
	}
	*ids = without(*ids, postID)
	r.s.profiles[profileID] = p
	return true, nil
}

func (r *ProfileRepo) PullPost(_ context.Context, postID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var changed []string
	for id, p := range r.s.profiles {
		if indexOf(p.LikedPosts, postID) < 0 && indexOf(p.SavedPosts, postID) < 0 {
			continue
		}
		p.LikedPosts = without(p.LikedPosts, postID)
		p.SavedPosts = without(p.SavedPosts, postID)
		r.s.profiles[id] = p
		changed = append(changed, id)
	}
	sort.Strings(changed)
	return changed, nil
}

func field(p *domain.Profile, set repository.ProfileSet) *[]string {
	if set == repository.SavedPosts {
		return &p.SavedPosts
	}
	return &p.LikedPosts
}
