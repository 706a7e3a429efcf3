package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/movieapi/internal/apperrors"
	"github.com/nkiryanov/movieapi/internal/logger"
	"github.com/nkiryanov/movieapi/internal/models"
	"github.com/nkiryanov/movieapi/internal/repository"
	"github.com/nkiryanov/movieapi/internal/service/auth"
	"github.com/nkiryanov/movieapi/internal/service/auth/tokenmanager"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (m *memUsers) CreateUser(_ context.Context, email string, hashedPassword string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[email]; ok {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}
	u := models.User{ID: uuid.New(), CreatedAt: time.Now(), Email: email, HashedPassword: hashedPassword}
	m.users[email] = u
	return u, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return u, nil
}

// In-memory collection. Counts calls so tests can check the store was not touched.
type memCollection[T models.Document] struct {
	mu    sync.Mutex
	docs  map[uuid.UUID]T
	ids   []uuid.UUID
	calls map[string]int

	// Stamps generated id into the document
	withID func(doc T, id uuid.UUID) T

	// Optional reference check on insert
	checkInsert func(doc T) error

	// Returned by every method if set
	fail error

	lastLimit int
	lastPatch models.Fields
}

func newMemCollection[T models.Document](withID func(T, uuid.UUID) T) *memCollection[T] {
	return &memCollection[T]{
		docs:   make(map[uuid.UUID]T),
		calls:  make(map[string]int),
		withID: withID,
	}
}

func (c *memCollection[T]) touched() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

func (c *memCollection[T]) FindOne(_ context.Context, id uuid.UUID) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["FindOne"]++

	var zero T
	if c.fail != nil {
		return zero, c.fail
	}
	doc, ok := c.docs[id]
	if !ok {
		return zero, apperrors.ErrDocumentNotFound
	}
	return doc, nil
}

func (c *memCollection[T]) Find(_ context.Context, limit int) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["Find"]++
	c.lastLimit = limit

	if c.fail != nil {
		return nil, c.fail
	}
	var docs []T
	for _, id := range c.ids {
		if len(docs) == limit {
			break
		}
		docs = append(docs, c.docs[id])
	}
	return docs, nil
}

func (c *memCollection[T]) InsertOne(_ context.Context, doc T) (uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["InsertOne"]++

	if c.fail != nil {
		return uuid.Nil, c.fail
	}
	if c.checkInsert != nil {
		if err := c.checkInsert(doc); err != nil {
			return uuid.Nil, err
		}
	}
	id := uuid.New()
	c.docs[id] = c.withID(doc, id)
	c.ids = append(c.ids, id)
	return id, nil
}

func (c *memCollection[T]) UpdateOne(_ context.Context, id uuid.UUID, patch models.Fields) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["UpdateOne"]++
	c.lastPatch = patch

	if c.fail != nil {
		return c.fail
	}
	if len(patch) == 0 {
		return apperrors.ErrEmptyPatch
	}
	if _, ok := c.docs[id]; !ok {
		return apperrors.ErrDocumentNotFound
	}
	return nil
}

func (c *memCollection[T]) DeleteOne(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["DeleteOne"]++

	if c.fail != nil {
		return c.fail
	}
	if _, ok := c.docs[id]; !ok {
		return apperrors.ErrDocumentNotFound
	}
	delete(c.docs, id)
	c.ids = slices.DeleteFunc(c.ids, func(v uuid.UUID) bool { return v == id })
	return nil
}

type memStorage struct {
	users    *memUsers
	movies   *memCollection[models.Movie]
	theaters *memCollection[models.Theater]
	comments *memCollection[models.Comment]
}

func newMemStorage() *memStorage {
	s := &memStorage{
		users: &memUsers{users: make(map[string]models.User)},
		movies: newMemCollection(func(m models.Movie, id uuid.UUID) models.Movie {
			m.ID = id
			return m
		}),
		theaters: newMemCollection(func(t models.Theater, id uuid.UUID) models.Theater {
			t.ID = id
			return t
		}),
		comments: newMemCollection(func(c models.Comment, id uuid.UUID) models.Comment {
			c.ID = id
			return c
		}),
	}

	s.comments.checkInsert = func(c models.Comment) error {
		if c.MovieID == nil {
			return nil
		}
		if _, err := s.movies.FindOne(context.Background(), *c.MovieID); err != nil {
			return apperrors.ErrReferenceNotFound
		}
		return nil
	}

	return s
}

func (s *memStorage) User() repository.UserRepo { return s.users }
func (s *memStorage) Movies() repository.Collection[models.Movie] { return s.movies }
func (s *memStorage) Theaters() repository.Collection[models.Theater] { return s.theaters }
func (s *memStorage) Comments() repository.Collection[models.Comment] { return s.comments }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testApp struct {
	url     string
	auth    *auth.AuthService
	storage *memStorage

	mu      sync.Mutex
	pingErr error
}

func (a *testApp) ping(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pingErr
}

func (a *testApp) setPingErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pingErr = err
}

// Runs full router over in-memory storage and production auth service
func startApp(t *testing.T) *testApp {
	t.Helper()

	tokens, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	storage := newMemStorage()
	s, err := auth.NewService(auth.Config{Hasher: auth.BcryptHasher{Cost: bcrypt.MinCost}, InsecureCookies: true}, tokens, storage.User())
	require.NoError(t, err)

	app := &testApp{auth: s, storage: storage}

	router := NewRouter(s, storage, pingFunc(app.ping), prometheus.NewRegistry(), logger.NewNoOpLogger())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	app.url = srv.URL

	return app
}

// Signs up a user and returns its access token
func (a *testApp) login(t *testing.T) string {
	t.Helper()

	pair, err := a.auth.Signup(t.Context(), "neo@example.com", "StrongEnoughPassword")
	require.NoError(t, err)
	return pair.Access.Value
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func withCookie(name, value string) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

func (a *testApp) do(t *testing.T, method, path, body string, opts ...func(*http.Request)) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, a.url+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(data)
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
