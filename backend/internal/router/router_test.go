package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/postboard/postboard/backend/internal/setup"
	"github.com/postboard/postboard/shared/api"
	"github.com/postboard/postboard/shared/config"
	"github.com/postboard/postboard/shared/domain"
	internal_errors "github.com/postboard/postboard/shared/errors"
	"github.com/postboard/postboard/shared/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memStorage is an in-memory stand-in for the PostgreSQL storage.
type memStorage struct {
	mu     sync.Mutex
	users  map[domain.UserId]domain.User
	posts  map[domain.PostId]domain.Post
	nextId int64
}

func newMemStorage() *memStorage {
	return &memStorage{users: map[domain.UserId]domain.User{}, posts: map[domain.PostId]domain.Post{}, nextId: 100}
}

func (s *memStorage) id() int64 {
	s.nextId++
	return s.nextId
}

func (s *memStorage) SaveUser(ctx context.Context, email domain.Email, passHash string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return domain.User{}, internal_errors.Conflict("user with email %s already exists", email)
		}
	}
	user := domain.User{Id: s.id(), Email: email, PassHash: passHash, CreatedAt: time.Now()}
	s.users[user.Id] = user
	return user, nil
}

func (s *memStorage) UserByEmail(ctx context.Context, email domain.Email) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, internal_errors.NotFound("User not found")
}

func (s *memStorage) UserById(ctx context.Context, id domain.UserId) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, internal_errors.NotFound("user with id %d not found", id)
	}
	return u, nil
}

func (s *memStorage) deleteUser(id domain.UserId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	for pid, p := range s.posts {
		if p.OwnerId == id {
			delete(s.posts, pid)
		}
	}
}

func (s *memStorage) putPost(p domain.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Owner = domain.User{Id: p.OwnerId, Email: s.users[p.OwnerId].Email}
	s.posts[p.Id] = p
}

func (s *memStorage) SavePost(ctx context.Context, data domain.PostCreationData) (domain.Post, error) {
	s.mu.Lock()
	id := s.id()
	s.mu.Unlock()
	s.putPost(domain.Post{Id: id, Title: data.Title, Content: data.Content, Published: data.Published, OwnerId: data.OwnerId, CreatedAt: time.Now()})
	return s.Post(ctx, id)
}

func (s *memStorage) Post(ctx context.Context, id domain.PostId) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return domain.Post{}, internal_errors.NotFound("post with id %d not found", id)
	}
	return p, nil
}

func (s *memStorage) Posts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Post
	for _, p := range s.posts {
		visible := p.Published || p.OwnerId == filter.ViewerId
		if visible && strings.Contains(strings.ToLower(p.Title), strings.ToLower(filter.Search)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id > out[j].Id })
	if filter.Offset >= len(out) {
		return []domain.Post{}, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *memStorage) UpdatePost(ctx context.Context, data domain.PostUpdateData) (domain.Post, error) {
	p, err := s.Post(ctx, data.Id)
	if err != nil {
		return domain.Post{}, err
	}
	p.Title, p.Content, p.Published = data.Title, data.Content, data.Published
	s.putPost(p)
	return p, nil
}

func (s *memStorage) DeletePost(ctx context.Context, id domain.PostId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return internal_errors.NotFound("post with id %d not found", id)
	}
	delete(s.posts, id)
	return nil
}

func (s *memStorage) Ping(ctx context.Context) error { return nil }

// --- Test app ---

type testApp struct {
	t       *testing.T
	handler http.Handler
	storage *memStorage
	deps    *setup.Dependencies
}

func newTestApp(t *testing.T, modify ...func(*config.Public)) *testApp {
	t.Helper()
	public := config.Defaults()
	public.BcryptCost = bcrypt.MinCost
	public.LoginRateLimit = 1000
	for _, m := range modify {
		m(&public)
	}
	cfg := &config.Config{Public: public, Private: config.Private{JwtKey: "router-test-signing-key"}}
	require.NoError(t, cfg.Validate())

	storage := newMemStorage()
	deps := setup.Wire(cfg, storage)
	return &testApp{t: t, handler: New(deps), storage: storage, deps: deps}
}

func (a *testApp) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) signup(email, password string) api.UserResponse {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/users", "", api.CreateUserRequest{Email: email, Password: password})
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	var user api.UserResponse
	require.NoError(a.t, json.NewDecoder(rr.Body).Decode(&user))
	return user
}

func (a *testApp) login(email, password string) string {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/login", "", api.LoginRequest{Email: email, Password: password})
	require.Equal(a.t, http.StatusOK, rr.Code, rr.Body.String())
	var token api.TokenResponse
	require.NoError(a.t, json.NewDecoder(rr.Body).Decode(&token))
	require.Equal(a.t, "bearer", token.TokenType)
	return token.AccessToken
}

func detail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body api.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body.Detail
}

// --- Tests ---

func TestPostLifecycle(t *testing.T) {
	app := newTestApp(t)
	user := app.signup("owner@example.com", "password123")
	token := app.login("owner@example.com", "password123")

	rr := app.do(http.MethodPost, "/posts", token, map[string]any{"title": "Hello", "content": "<p>World</p>"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created api.PostResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, user.Id, created.UserId)
	assert.Equal(t, "owner@example.com", created.User.Email)
	assert.True(t, created.Published)

	path := fmt.Sprintf("/posts/%d", created.Id)
	rr = app.do(http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = app.do(http.MethodPut, path, token, map[string]any{"title": "Edited", "content": "new", "published": false})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	var updated api.PostResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	assert.Equal(t, "Edited", updated.Title)
	assert.False(t, updated.Published)

	rr = app.do(http.MethodGet, "/posts", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []api.PostResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	require.Len(t, list, 1, "owner sees own draft")

	rr = app.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = app.do(http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteOthersPostIsForbidden(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice@example.com", "alice-password")
	app.signup("bob@example.com", "bob-password")
	app.storage.putPost(domain.Post{Id: 10, Title: "alice's", Content: "text", Published: true, OwnerId: alice.Id})
	bobToken := app.login("bob@example.com", "bob-password")

	rr := app.do(http.MethodDelete, "/posts/10", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Not authorized to perform requested action", detail(t, rr))

	rr = app.do(http.MethodPut, "/posts/10", bobToken, map[string]any{"title": "mine now", "content": "x"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	post, err := app.storage.Post(context.Background(), 10)
	require.NoError(t, err, "post 10 still exists")
	assert.Equal(t, "alice's", post.Title)
}

func TestMissingPostIsNotFound(t *testing.T) {
	app := newTestApp(t)
	app.signup("any@example.com", "any-password")
	token := app.login("any@example.com", "any-password")

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rr := app.do(method, "/posts/999", token, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code, method)
		assert.Equal(t, "post with id 999 not found", detail(t, rr))
	}
	rr := app.do(http.MethodPut, "/posts/999", token, map[string]any{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/posts"},
		{http.MethodPost, "/posts"},
		{http.MethodGet, "/posts/1"},
		{http.MethodPut, "/posts/1"},
		{http.MethodDelete, "/posts/1"},
	}
	for _, route := range routes {
		rr := app.do(route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", route.method, route.path)
		assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	}

	rr := app.do(http.MethodDelete, "/posts/999", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "authentication is checked before existence")
}

func TestExpiredAndForeignTokens(t *testing.T) {
	app := newTestApp(t)
	user := app.signup("clock@example.com", "clock-password")

	expired, err := app.deps.Jwt.Issue(user.Id, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	rr := app.do(http.MethodGet, "/posts", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Could not validate credentials", detail(t, rr))

	foreign, err := jwt.New("some-other-signing-key", time.Hour).Issue(user.Id, time.Now())
	require.NoError(t, err)
	rr = app.do(http.MethodGet, "/posts", foreign, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	fresh, err := app.deps.Jwt.Issue(user.Id, time.Now())
	require.NoError(t, err)
	rr = app.do(http.MethodGet, "/posts", fresh, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTokenForDeletedUser(t *testing.T) {
	app := newTestApp(t)
	user := app.signup("gone@example.com", "gone-password")
	token := app.login("gone@example.com", "gone-password")
	app.storage.deleteUser(user.Id)

	rr := app.do(http.MethodGet, "/posts", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, fmt.Sprintf("User with id %d not found", user.Id), detail(t, rr))
}

func TestLogin(t *testing.T) {
	t.Run("distinct errors by default", func(t *testing.T) {
		app := newTestApp(t)
		app.signup("known@example.com", "right-password")

		rr := app.do(http.MethodPost, "/login", "", api.LoginRequest{Email: "known@example.com", Password: "wrong-password"})
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "Invalid credentials", detail(t, rr))

		rr = app.do(http.MethodPost, "/login", "", api.LoginRequest{Email: "unknown@example.com", Password: "right-password"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "User not found", detail(t, rr))
	})

	t.Run("unified errors", func(t *testing.T) {
		app := newTestApp(t, func(p *config.Public) { p.UnifyLoginErrors = true })
		app.signup("known@example.com", "right-password")

		wrong := app.do(http.MethodPost, "/login", "", api.LoginRequest{Email: "known@example.com", Password: "wrong-password"})
		unknown := app.do(http.MethodPost, "/login", "", api.LoginRequest{Email: "unknown@example.com", Password: "x"})
		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	})

	t.Run("oauth2 password form", func(t *testing.T) {
		app := newTestApp(t)
		app.signup("form@example.com", "form-password")

		form := url.Values{"username": {"form@example.com"}, "password": {"form-password"}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		app.handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var token api.TokenResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&token))
		assert.NotEmpty(t, token.AccessToken)
	})

	t.Run("missing fields are 400", func(t *testing.T) {
		app := newTestApp(t)
		rr := app.do(http.MethodPost, "/login", "", map[string]string{"email": "x@example.com"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "password is required", detail(t, rr))
	})

	t.Run("rate limited", func(t *testing.T) {
		app := newTestApp(t, func(p *config.Public) { p.LoginRateLimit = 2 })
		for range 2 {
			rr := app.do(http.MethodPost, "/login", "", api.LoginRequest{Email: "x@example.com", Password: "x"})
			assert.Equal(t, http.StatusNotFound, rr.Code)
		}
		rr := app.do(http.MethodPost, "/login", "", api.LoginRequest{Email: "x@example.com", Password: "x"})
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	})

	t.Run("limited client does not lock out the account", func(t *testing.T) {
		app := newTestApp(t, func(p *config.Public) { p.LoginRateLimit = 2 })
		app.signup("victim@example.com", "victim-password")

		loginFrom := func(ip, password string) int {
			var buf bytes.Buffer
			require.NoError(t, json.NewEncoder(&buf).Encode(api.LoginRequest{Email: "victim@example.com", Password: password}))
			req := httptest.NewRequest(http.MethodPost, "/login", &buf)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Real-IP", ip)
			rr := httptest.NewRecorder()
			app.handler.ServeHTTP(rr, req)
			return rr.Code
		}

		assert.Equal(t, http.StatusForbidden, loginFrom("10.0.0.1", "guess-one"))
		assert.Equal(t, http.StatusForbidden, loginFrom("10.0.0.1", "guess-two"))
		assert.Equal(t, http.StatusTooManyRequests, loginFrom("10.0.0.1", "guess-three"))
		assert.Equal(t, http.StatusOK, loginFrom("10.0.0.2", "victim-password"))
	})
}

func TestUsers(t *testing.T) {
	app := newTestApp(t)
	user := app.signup("new@example.com", "password123")
	assert.Equal(t, "new@example.com", user.Email)

	rr := app.do(http.MethodPost, "/users", "", api.CreateUserRequest{Email: "new@example.com", Password: "password456"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = app.do(http.MethodPost, "/users", "", api.CreateUserRequest{Email: "not-an-email", Password: "password456"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = app.do(http.MethodPost, "/users", "", api.CreateUserRequest{Email: "short@example.com", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "password must be at least 8 characters", detail(t, rr))

	rr = app.do(http.MethodGet, fmt.Sprintf("/users/%d", user.Id), "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")

	rr = app.do(http.MethodGet, "/users/424242", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "user with id 424242 not found", detail(t, rr))

	rr = app.do(http.MethodGet, "/users/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDraftVisibility(t *testing.T) {
	app := newTestApp(t)
	app.signup("writer@example.com", "writer-password")
	app.signup("reader@example.com", "reader-password")
	writer := app.login("writer@example.com", "writer-password")
	reader := app.login("reader@example.com", "reader-password")

	rr := app.do(http.MethodPost, "/posts", writer, map[string]any{"title": "Draft", "content": "wip", "published": false})
	require.Equal(t, http.StatusCreated, rr.Code)
	var draft api.PostResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&draft))

	rr = app.do(http.MethodGet, fmt.Sprintf("/posts/%d", draft.Id), reader, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = app.do(http.MethodGet, "/posts?search=draft", reader, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())

	rr = app.do(http.MethodGet, "/posts?limit=abc", reader, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))

	rr = app.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = app.do(http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = app.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
}
