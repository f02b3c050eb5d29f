package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/token"
)

var _ token.Store = (*Store)(nil)

type entry struct {
	value     string
	expiresAt time.Time
}

// Store keeps the credential pair in process memory. Entries past their
// expiry are treated as absent.
type Store struct {
	entries   map[token.Kind]entry
	lifetimes token.Lifetimes
	now       func() time.Time
	lock      sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithLifetimes overrides the default token lifetimes.
func WithLifetimes(l token.Lifetimes) Option {
	return func(s *Store) {
		s.lifetimes = l
	}
}

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(options ...Option) *Store {
	s := &Store{
		entries:   make(map[token.Kind]entry),
		lifetimes: token.DefaultLifetimes,
		now:       token.NowTimeFunc,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Store) Set(_ context.Context, access, refresh string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	s.entries[token.Access] = entry{value: access, expiresAt: now.Add(s.lifetimes.Access)}
	s.entries[token.Refresh] = entry{value: refresh, expiresAt: now.Add(s.lifetimes.Refresh)}
	return nil
}

func (s *Store) SetAccess(_ context.Context, access string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.entries[token.Access] = entry{value: access, expiresAt: s.now().Add(s.lifetimes.Access)}
	return nil
}

func (s *Store) Get(_ context.Context, kind token.Kind) (string, error) {
	if !kind.Valid() {
		return "", token.InvalidKind(kind)
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	e, ok := s.entries[kind]
	if !ok || e.value == "" || !s.now().Before(e.expiresAt) {
		return "", errors.ErrTokenNotFound
	}
	return e.value, nil
}

func (s *Store) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	clear(s.entries)
	return nil
}

func (s *Store) HasAccess(ctx context.Context) bool {
	_, err := s.Get(ctx, token.Access)
	return err == nil
}
