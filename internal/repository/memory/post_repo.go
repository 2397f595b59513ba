package memory

import (
	"context"
	"strings"

	"github.com/freebook/backend/internal/domain"
)

type PostRepo struct{ s *Store }

func (r *PostRepo) Create(_ context.Context, p *domain.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.posts[p.ID] = copyPost(*p)
	return nil
}

func (r *PostRepo) Get(_ context.Context, id string) (*domain.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	out := copyPost(p)
	return &out, nil
}

func (r *PostRepo) List(_ context.Context) ([]*domain.Post, error) {
	return r.filter(func(*domain.Post) bool { return true }), nil
}

func (r *PostRepo) Recent(_ context.Context, page domain.Page) ([]*domain.Post, error) {
	all := r.filter(func(*domain.Post) bool { return true })

	start := page.Skip()
	if start < 0 || start >= int64(len(all)) {
		return []*domain.Post{}, nil
	}
	end := start + int64(page.Limit)
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[start:end], nil
}

func (r *PostRepo) Search(_ context.Context, query string) ([]*domain.Post, error) {
	q := strings.ToLower(query)
	return r.filter(func(p *domain.Post) bool {
		if strings.Contains(strings.ToLower(p.Caption), q) {
			return true
		}
		for _, tag := range p.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	}), nil
}

func (r *PostRepo) ByCreator(_ context.Context, creatorID string) ([]*domain.Post, error) {
	return r.filter(func(p *domain.Post) bool { return p.CreatorID == creatorID }), nil
}

func (r *PostRepo) filter(keep func(*domain.Post) bool) []*domain.Post {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Post, 0)
	for _, p := range r.s.posts {
		cp := copyPost(p)
		if keep(&cp) {
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out
}

func (r *PostRepo) Update(_ context.Context, p *domain.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.posts[p.ID]
	if !ok {
		return domain.ErrPostNotFound
	}
	cur.Caption = p.Caption
	cur.Tags = append([]string{}, p.Tags...)
	cur.ImgURL = p.ImgURL
	cur.ImgID = p.ImgID
	cur.Location = p.Location
	r.s.posts[p.ID] = cur
	return nil
}

func (r *PostRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r *PostRepo) AddLiker(_ context.Context, postID, profileID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[postID]
	if !ok || indexOf(p.LikedBy, profileID) >= 0 {
		return false, nil
	}
	p.LikedBy = append(p.LikedBy, profileID)
	r.s.posts[postID] = p
	return true, nil
}

func (r *PostRepo) RemoveLiker(_ context.Context, postID, profileID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[postID]
	if !ok || indexOf(p.LikedBy, profileID) < 0 {
		return false, nil
	}
	p.LikedBy = without(p.LikedBy, profileID)
	r.s.posts[postID] = p
	return true, nil
}
