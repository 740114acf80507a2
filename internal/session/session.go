// Package session keeps each browser's loaded dataset in memory, keyed by a
// signed session cookie.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/MrJamesThe3rd/retailboard/internal/upload"
)

// CookieName carries the signed session token.
const CookieName = "retailboard_session"

var ErrNoDataset = errors.New("no dataset loaded: upload a file first")

// Store holds one dataset per session and forgets it after the TTL elapses
// without a write.
type Store struct {
	cache *cache.Cache
}

func NewStore(ttl time.Duration) *Store {
	return &Store{cache: cache.New(ttl, ttl)}
}

// Put replaces the session's dataset.
func (s *Store) Put(id uuid.UUID, ds *upload.Dataset) {
	s.cache.SetDefault(id.String(), ds)
}

func (s *Store) Get(id uuid.UUID) (*upload.Dataset, error) {
	v, ok := s.cache.Get(id.String())
	if !ok {
		return nil, ErrNoDataset
	}

	return v.(*upload.Dataset), nil
}

func (s *Store) Delete(id uuid.UUID) {
	s.cache.Delete(id.String())
}

// Len reports the number of live sessions holding a dataset.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

type ctxKey struct{}

// WithID returns a context carrying the session id.
func WithID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// ID returns the session id set by Manager.Middleware.
func ID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return id, ok
}

// Manager issues session cookies and resolves a request's dataset.
type Manager struct {
	store  *Store
	tokens *Tokens
	secure bool
}

func NewManager(store *Store, tokens *Tokens, secureCookie bool) *Manager {
	return &Manager{store: store, tokens: tokens, secure: secureCookie}
}

// Middleware ensures every request carries a valid session id, issuing a new
// cookie when the presented one is missing, expired or forged.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(CookieName); err == nil {
			if id, err := m.tokens.Parse(c.Value); err == nil {
				next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
				return
			}
		}

		id := uuid.New()

		token, expires, err := m.tokens.Issue(id)
		if err != nil {
			slog.Error("failed to issue session token", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)

			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			Expires:  expires,
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

// Dataset returns the dataset loaded in the request's session.
func (m *Manager) Dataset(ctx context.Context) (*upload.Dataset, error) {
	id, ok := ID(ctx)
	if !ok {
		return nil, ErrNoDataset
	}

	return m.store.Get(id)
}

// Attach stores ds as the request session's dataset.
func (m *Manager) Attach(ctx context.Context, ds *upload.Dataset) error {
	id, ok := ID(ctx)
	if !ok {
		return errors.New("request has no session")
	}

	m.store.Put(id, ds)

	return nil
}
