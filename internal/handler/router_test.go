package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freebook/backend/internal/cache"
	"github.com/freebook/backend/internal/config"
	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/outbox"
	"github.com/freebook/backend/internal/repository/memory"
	"github.com/freebook/backend/internal/security"
	"github.com/freebook/backend/internal/service"
	"github.com/freebook/backend/internal/storage"
)

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, owner string, r io.Reader, size int64, filename, contentType string) (storage.Image, error) {
	args := m.Called(ctx, owner, r, size, filename, contentType)
	return args.Get(0).(storage.Image), args.Error(1)
}

func (m *MockImageStore) Owner(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type testServer struct {
	*httptest.Server
	images *MockImageStore
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()

	cfg := &config.Config{
		ServiceName:    "freebook-test",
		RequestTimeout: 5 * time.Second,
		RateLimit:      config.RateLimitConf{Requests: rateLimit, Window: time.Minute},
	}

	store := memory.NewStore()
	rec := outbox.NewRecorder(store.Outbox())
	tokens := security.NewTokenIssuer("test-secret", "freebook-auth", "freebook-clients", time.Hour)
	images := new(MockImageStore)
	nop := cache.Nop{}

	h := Handlers{
		Auth: NewAuthHandler(service.NewAuthService(store.Accounts(), store.Profiles(), store, rec, tokens)),
		Posts: NewPostHandler(
			service.NewPostService(store.Accounts(), store.Profiles(), store.Posts(), store, rec, nop, images),
			service.NewInteractionService(store.Accounts(), store.Profiles(), store.Posts(), store, rec, nop),
		),
		Users:  NewUserHandler(service.NewProfileService(store.Accounts(), store.Profiles(), store, rec, nop)),
		Images: NewImageHandler(service.NewImageService(store.Accounts(), store.Profiles(), images)),
	}

	srv := httptest.NewServer(NewRouter(cfg, h, tokens))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, images: images}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decodeBody[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func (s *testServer) register(t *testing.T, username string) (string, domain.Profile) {
	t.Helper()
	res := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     username,
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	token := decodeBody[map[string]string](t, res)["token"]
	require.NotEmpty(t, token)

	res = s.do(t, http.MethodGet, "/users/current", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	return token, decodeBody[domain.Profile](t, res)
}

func (s *testServer) createPost(t *testing.T, token, caption string, tags ...string) domain.Post {
	t.Helper()
	res := s.do(t, http.MethodPost, "/posts/create", token, map[string]any{
		"caption": caption,
		"tags":    tags,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	return decodeBody[domain.Post](t, res)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, 0)
	_, p := s.register(t, "alice")
	assert.Empty(t, p.LikedPosts)
	assert.Empty(t, p.SavedPosts)

	res := s.do(t, http.MethodPost, "/auth/authenticate", "", map[string]string{
		"email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, decodeBody[map[string]string](t, res)["token"])

	res = s.do(t, http.MethodPost, "/auth/authenticate", "", map[string]string{
		"email": "alice@example.com", "password": "nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "unauthorized", decodeBody[map[string]string](t, res)["error"])

	res = s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "x", "username": "x", "email": "alice@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res = s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "x", "username": "x", "email": "not-an-email", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "invalid_argument", decodeBody[map[string]string](t, res)["error"])
}

func TestBearerRequired(t *testing.T) {
	s := newTestServer(t, 0)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/posts/create"},
		{http.MethodPut, "/posts/abc"},
		{http.MethodDelete, "/posts/abc"},
		{http.MethodPatch, "/posts/like?postId=abc"},
		{http.MethodGet, "/users/current"},
		{http.MethodPut, "/users/abc"},
		{http.MethodPost, "/images"},
		{http.MethodDelete, "/images/abc.png"},
	} {
		res := s.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, route.path)

		res = s.do(t, route.method, route.path, "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, route.path)
	}
}

func TestPostLifecycle(t *testing.T) {
	s := newTestServer(t, 0)
	u, up := s.register(t, "alice")
	v, vp := s.register(t, "bob")

	post := s.createPost(t, u, "Golden sunset", "sky")
	assert.Equal(t, up.ID, post.CreatorID)

	res := s.do(t, http.MethodGet, "/posts/"+post.ID, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = s.do(t, http.MethodGet, "/posts/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "not_found", decodeBody[map[string]string](t, res)["error"])

	// like as bob
	res = s.do(t, http.MethodPatch, "/posts/like?postId="+post.ID, v, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, []string{post.ID}, decodeBody[domain.Profile](t, res).LikedPosts)

	res = s.do(t, http.MethodPatch, "/posts/like?postId="+post.ID, v, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res = s.do(t, http.MethodGet, "/posts/"+post.ID, "", nil)
	assert.Equal(t, []string{vp.ID}, decodeBody[domain.Post](t, res).LikedBy)

	res = s.do(t, http.MethodPatch, "/posts/unlike?postId="+post.ID, v, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, decodeBody[domain.Profile](t, res).LikedPosts)

	res = s.do(t, http.MethodPatch, "/posts/like", v, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = s.do(t, http.MethodPatch, "/posts/save?postId=missing", v, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	// ownership
	res = s.do(t, http.MethodPut, "/posts/"+post.ID, v, map[string]any{"caption": "stolen"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res = s.do(t, http.MethodDelete, "/posts/"+post.ID, v, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res = s.do(t, http.MethodPut, "/posts/"+post.ID, u, map[string]any{"caption": "dawn", "tags": []string{"am"}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	updated := decodeBody[domain.Post](t, res)
	assert.Equal(t, "dawn", updated.Caption)
	assert.Equal(t, post.ID, updated.ID)
	assert.True(t, post.CreatedAt.Equal(updated.CreatedAt))

	// save then delete cascades
	res = s.do(t, http.MethodPatch, "/posts/save?postId="+post.ID, v, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = s.do(t, http.MethodDelete, "/posts/"+post.ID, u, nil)
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	res = s.do(t, http.MethodGet, "/users/"+vp.ID, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, decodeBody[domain.Profile](t, res).SavedPosts)

	res = s.do(t, http.MethodDelete, "/posts/"+post.ID, u, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPostQueries(t *testing.T) {
	s := newTestServer(t, 0)
	u, up := s.register(t, "alice")

	a := s.createPost(t, u, "Golden Sunset")
	b := s.createPost(t, u, "lunch", "sunday")
	s.createPost(t, u, "rain")

	res := s.do(t, http.MethodGet, "/posts/search?query=SUN", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var found []string
	for _, p := range decodeBody[[]domain.Post](t, res) {
		found = append(found, p.ID)
	}
	assert.ElementsMatch(t, []string{a.ID, b.ID}, found)

	res = s.do(t, http.MethodGet, "/posts/search?query=", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = s.do(t, http.MethodGet, "/posts", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, decodeBody[[]domain.Post](t, res), 3)

	res = s.do(t, http.MethodGet, "/posts/creator/"+up.ID, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, decodeBody[[]domain.Post](t, res), 3)

	res = s.do(t, http.MethodGet, "/posts/creator/nobody", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, decodeBody[[]domain.Post](t, res))

	res = s.do(t, http.MethodGet, "/posts/recent?page=0&limit=2", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, decodeBody[[]domain.Post](t, res), 2)

	res = s.do(t, http.MethodGet, "/posts/recent", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, decodeBody[[]domain.Post](t, res), 3)

	res = s.do(t, http.MethodGet, "/posts/recent?page=9223372036854775807&limit=2", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, decodeBody[[]domain.Post](t, res))

	for _, q := range []string{"page=-1", "limit=0", "limit=101", "page=x"} {
		res = s.do(t, http.MethodGet, "/posts/recent?"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, q)
	}
}

func TestUsers(t *testing.T) {
	s := newTestServer(t, 0)
	u, up := s.register(t, "alice")
	v, _ := s.register(t, "bob")

	res := s.do(t, http.MethodGet, "/users", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, decodeBody[[]domain.Profile](t, res), 2)

	update := map[string]string{"name": "Alice", "email": "alice@new.org", "bio": "hello"}

	res = s.do(t, http.MethodPut, "/users/"+up.ID, v, update)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res = s.do(t, http.MethodPut, "/users/"+up.ID, u, update)
	require.Equal(t, http.StatusOK, res.StatusCode)
	got := decodeBody[domain.Profile](t, res)
	assert.Equal(t, up.ID, got.ID)
	assert.Equal(t, up.AccountID, got.AccountID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hello", got.Bio)

	res = s.do(t, http.MethodPut, "/users/"+up.ID, u, map[string]string{"name": "", "email": "x"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = s.do(t, http.MethodGet, "/users/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestImages(t *testing.T) {
	s := newTestServer(t, 0)
	u, up := s.register(t, "alice")

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	s.images.On("Upload", mock.Anything, up.ID, mock.Anything, int64(len(png)), "cat.png", "image/png").
		Return(storage.Image{ID: "id.png", URL: "http://cdn/freebook/images/id.png"}, nil)
	s.images.On("Owner", mock.Anything, "id.png").Return(up.ID, nil)
	s.images.On("Delete", mock.Anything, "id.png").Return(nil)

	res := s.upload(t, u, "cat.png", png)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, storage.Image{ID: "id.png", URL: "http://cdn/freebook/images/id.png"}, decodeBody[storage.Image](t, res))

	res = s.upload(t, u, "notes.txt", []byte("just some text"))
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = s.do(t, http.MethodDelete, "/images/id.png", u, nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	s.images.AssertExpectations(t)
}

func TestImages_DeleteRequiresOwner(t *testing.T) {
	s := newTestServer(t, 0)
	_, alice := s.register(t, "alice")
	bob, _ := s.register(t, "bob")

	s.images.On("Owner", mock.Anything, "abc.png").Return(alice.ID, nil)
	s.images.On("Owner", mock.Anything, "gone.png").Return("", domain.ErrNotFound)

	res := s.do(t, http.MethodDelete, "/images/abc.png", bob, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res = s.do(t, http.MethodDelete, "/images/gone.png", bob, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	s.images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func (s *testServer) upload(t *testing.T, token, filename string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.URL+"/images", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestRateLimiting(t *testing.T) {
	s := newTestServer(t, 3)

	body := map[string]string{"email": "nobody@example.com", "password": "secret123"}
	for i := 0; i < 3; i++ {
		res := s.do(t, http.MethodPost, "/auth/authenticate", "", body)
		assert.NotEqual(t, http.StatusTooManyRequests, res.StatusCode, "request %d", i)
	}

	res := s.do(t, http.MethodPost, "/auth/authenticate", "", body)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)

	// Reads are not limited.
	res = s.do(t, http.MethodGet, "/posts", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
