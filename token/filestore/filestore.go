package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/token"
)

var _ token.Store = (*Store)(nil)

const (
	homeEnvVar  = "FADJMA_HOME"
	dirName     = ".fadjma"
	defaultFile = "tokens.json"
)

// document is the on-disk representation of the credential pair.
type document struct {
	Access           string    `json:"access,omitempty"`
	AccessExpiresAt  time.Time `json:"access_expires_at,omitempty"`
	Refresh          string    `json:"refresh,omitempty"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
}

// Store persists the credential pair as a single JSON file readable only by
// the current user. Every write replaces the whole file through a rename so
// readers never see half a pair.
type Store struct {
	path      string
	lifetimes token.Lifetimes
	now       func() time.Time
	lock      sync.Mutex
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

// New returns a store backed by the file at path. The parent directory is
// created if needed.
func New(path string, options ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("[filestore.New] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("[filestore.New] failed to create directory: %w", err)
	}

	s := &Store{
		path:      path,
		lifetimes: token.DefaultLifetimes,
		now:       token.NowTimeFunc,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// DefaultPath returns $FADJMA_HOME/tokens.json, or ~/.fadjma/tokens.json when
// the variable is unset.
func DefaultPath() (string, error) {
	if home := os.Getenv(homeEnvVar); home != "" {
		return filepath.Join(home, defaultFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, dirName, defaultFile), nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Set(_ context.Context, access, refresh string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	return s.write(document{
		Access:           access,
		AccessExpiresAt:  now.Add(s.lifetimes.Access),
		Refresh:          refresh,
		RefreshExpiresAt: now.Add(s.lifetimes.Refresh),
	})
}

func (s *Store) SetAccess(_ context.Context, access string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Access = access
	doc.AccessExpiresAt = s.now().Add(s.lifetimes.Access)
	return s.write(doc)
}

func (s *Store) Get(_ context.Context, kind token.Kind) (string, error) {
	if !kind.Valid() {
		return "", token.InvalidKind(kind)
	}

	s.lock.Lock()
	doc, err := s.read()
	s.lock.Unlock()
	if err != nil {
		return "", err
	}

	value, expiresAt := doc.Access, doc.AccessExpiresAt
	if kind == token.Refresh {
		value, expiresAt = doc.Refresh, doc.RefreshExpiresAt
	}
	if value == "" || !s.now().Before(expiresAt) {
		return "", errors.ErrTokenNotFound
	}
	return value, nil
}

func (s *Store) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("[filestore.Clear] failed to remove token file: %w", err)
	}
	return nil
}

func (s *Store) HasAccess(ctx context.Context) bool {
	_, err := s.Get(ctx, token.Access)
	return err == nil
}

// read loads the document; a missing file is an empty document.
func (s *Store) read() (document, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return document{}, nil
	}
	if err != nil {
		return document{}, fmt.Errorf("[filestore] failed to read token file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("[filestore] failed to decode token file: %w", err)
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("[filestore] failed to encode tokens: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tokens-*")
	if err != nil {
		return fmt.Errorf("[filestore] failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore] failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore] failed to write tokens: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filestore] failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("[filestore] failed to replace token file: %w", err)
	}
	return nil
}
