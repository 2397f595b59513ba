package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freebook/backend/internal/cache"
	"github.com/freebook/backend/internal/domain"
)

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	u, up := f.register(t, "alice")

	post := f.createPost(t, u, "sunset", "sky")
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, up.ID, post.CreatorID)
	assert.Empty(t, post.LikedBy)
	assert.Equal(t, time.UTC, post.CreatedAt.Location())

	_, err := f.posts.Create(context.Background(), "ghost@example.com", domain.PostContent{Caption: "x"})
	assert.ErrorIs(t, err, domain.ErrProfileMissing)
}

func TestUpdatePost_PreservesIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, _ := f.register(t, "alice")
	v, vp := f.register(t, "bob")
	post := f.createPost(t, u, "sunset", "sky")
	_, err := f.interactions.Like(ctx, v, post.ID)
	require.NoError(t, err)

	updated, err := f.posts.Update(ctx, u, post.ID, domain.PostContent{
		Caption:  "dawn",
		Tags:     []string{"morning"},
		Location: "Oslo",
	})
	require.NoError(t, err)
	assert.Equal(t, "dawn", updated.Caption)

	got, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, post.CreatorID, got.CreatorID)
	assert.True(t, post.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, []string{vp.ID}, got.LikedBy)
	assert.Equal(t, []string{"morning"}, got.Tags)
	assert.Equal(t, "Oslo", got.Location)
}

func TestUpdatePost_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, _ := f.register(t, "alice")
	v, _ := f.register(t, "bob")
	post := f.createPost(t, u, "sunset")

	_, err := f.posts.Update(ctx, v, post.ID, domain.PostContent{Caption: "mine now"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.posts.Update(ctx, u, "missing", domain.PostContent{Caption: "x"})
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	got, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "sunset", got.Caption)
}

func TestDeletePost_CascadesAndCleansUp(t *testing.T) {
	c := new(MockCache)
	images := new(MockImages)
	f := newFixtureWith(t, c, images)
	ctx := context.Background()

	u, up := f.register(t, "alice")
	v, vp := f.register(t, "bob")
	post, err := f.posts.Create(ctx, u, domain.PostContent{Caption: "sunset", ImgID: "abc.png"})
	require.NoError(t, err)
	keep := f.createPost(t, u, "keep")

	c.On("Delete", mock.Anything, []string{vp.ID}).Return(nil)
	_, err = f.interactions.Save(ctx, v, post.ID)
	require.NoError(t, err)
	_, err = f.interactions.Like(ctx, v, post.ID)
	require.NoError(t, err)
	_, err = f.interactions.Save(ctx, v, keep.ID)
	require.NoError(t, err)

	images.On("Owner", mock.Anything, "abc.png").Return(up.ID, nil)
	images.On("Delete", mock.Anything, "abc.png").Return(errors.New("s3 down"))

	require.NoError(t, f.posts.Delete(ctx, u, post.ID))

	prof, err := f.store.Profiles().Get(ctx, vp.ID)
	require.NoError(t, err)
	assert.False(t, prof.HasSaved(post.ID))
	assert.False(t, prof.HasLiked(post.ID))
	assert.Equal(t, []string{keep.ID}, prof.SavedPosts)

	_, err = f.posts.Get(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	c.AssertExpectations(t)
	images.AssertExpectations(t)
}

func TestDeletePost_KeepsImageOfAnotherProfile(t *testing.T) {
	images := new(MockImages)
	f := newFixtureWith(t, cache.Nop{}, images)
	ctx := context.Background()

	u, _ := f.register(t, "alice")
	_, bp := f.register(t, "bob")
	post, err := f.posts.Create(ctx, u, domain.PostContent{Caption: "borrowed", ImgID: "bobs.png"})
	require.NoError(t, err)

	images.On("Owner", mock.Anything, "bobs.png").Return(bp.ID, nil)

	require.NoError(t, f.posts.Delete(ctx, u, post.ID))
	images.AssertExpectations(t)
	images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeletePost_OwnershipAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, _ := f.register(t, "alice")
	v, _ := f.register(t, "bob")
	post := f.createPost(t, u, "sunset")

	assert.ErrorIs(t, f.posts.Delete(ctx, v, post.ID), domain.ErrForbidden)
	assert.ErrorIs(t, f.posts.Delete(ctx, u, "missing"), domain.ErrPostNotFound)

	_, err := f.posts.Get(ctx, post.ID)
	assert.NoError(t, err)
}

func TestSearchPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, _ := f.register(t, "alice")

	a := f.createPost(t, u, "Golden Sunset", "sky")
	b := f.createPost(t, u, "lunch", "SUNday")
	f.createPost(t, u, "rain", "clouds")
	dot := f.createPost(t, u, "a.c literal")
	f.createPost(t, u, "abc")

	got, err := f.posts.Search(ctx, "sun")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids(got))

	got, err = f.posts.Search(ctx, "a.c")
	require.NoError(t, err)
	assert.Equal(t, []string{dot.ID}, ids(got))

	spaced := f.createPost(t, u, "a beach day")
	f.createPost(t, u, "abeach")
	got, err = f.posts.Search(ctx, " beach")
	require.NoError(t, err)
	assert.Equal(t, []string{spaced.ID}, ids(got))

	_, err = f.posts.Search(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecentPosts_Paginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, _ := f.register(t, "alice")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var created []string
	for i := 0; i < 6; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		f.posts.now = func() time.Time { return at }
		created = append(created, f.createPost(t, u, "post").ID)
	}

	first, err := f.posts.Recent(ctx, domain.Page{Number: 0, Limit: 3})
	require.NoError(t, err)
	second, err := f.posts.Recent(ctx, domain.Page{Number: 1, Limit: 3})
	require.NoError(t, err)

	all := append(ids(first), ids(second)...)
	assert.Equal(t, []string{created[5], created[4], created[3], created[2], created[1], created[0]}, all)

	for _, page := range []domain.Page{{Number: -1, Limit: 3}, {Number: 0, Limit: 0}, {Number: 0, Limit: 101}} {
		_, err := f.posts.Recent(ctx, page)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	past, err := f.posts.Recent(ctx, domain.Page{Number: math.MaxInt64, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestByCreator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, up := f.register(t, "alice")
	v, _ := f.register(t, "bob")
	mine := f.createPost(t, u, "one")
	f.createPost(t, v, "two")

	got, err := f.posts.ByCreator(ctx, up.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{mine.ID}, ids(got))

	got, err = f.posts.ByCreator(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func ids(posts []*domain.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
