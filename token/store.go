package token

import (
	"context"
	"time"

	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Kind selects one half of the credential pair.
type Kind string

const (
	Access  Kind = "access"  // Short-lived bearer credential sent on every request
	Refresh Kind = "refresh" // Longer-lived credential sent only to the refresh endpoint
)

// Valid reports whether k names a known token kind.
func (k Kind) Valid() bool {
	return k == Access || k == Refresh
}

// Pair is the access/refresh credential pair issued by the login endpoint.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Store persists the credential pair with explicit expirations. It never
// validates token contents; validity is decided by the backend.
//
// Implementations must make Set and Clear atomic from the caller's point of
// view: a reader never observes one token of a pair updated or removed while
// the other is not.
type Store interface {
	// Set stores both tokens. The access token expires after the access
	// lifetime and the refresh token after the refresh lifetime, both measured
	// from the call.
	Set(ctx context.Context, access, refresh string) error

	// SetAccess replaces the access token only, leaving the refresh token and
	// its expiry untouched.
	SetAccess(ctx context.Context, access string) error

	// Get returns the stored token of the given kind or errors.ErrTokenNotFound.
	Get(ctx context.Context, kind Kind) (string, error)

	// Clear removes both tokens. Clearing an empty store is not an error.
	Clear(ctx context.Context) error

	// HasAccess reports whether an access token is present. It says nothing
	// about whether the backend still accepts it.
	HasAccess(ctx context.Context) bool
}

// Lifetimes holds the storage expirations applied by a Store.
type Lifetimes struct {
	Access  time.Duration
	Refresh time.Duration
}

// DefaultLifetimes mirrors the backend's token lifetimes: one hour for access
// tokens and seven days for refresh tokens.
var DefaultLifetimes = Lifetimes{
	Access:  1 * time.Hour,
	Refresh: 7 * 24 * time.Hour,
}

// GetPair returns both tokens; a missing token is returned as an empty string.
func GetPair(ctx context.Context, s Store) (Pair, error) {
	var p Pair
	var err error
	if p.Access, err = get(ctx, s, Access); err != nil {
		return Pair{}, err
	}
	if p.Refresh, err = get(ctx, s, Refresh); err != nil {
		return Pair{}, err
	}
	return p, nil
}

func get(ctx context.Context, s Store, kind Kind) (string, error) {
	v, err := s.Get(ctx, kind)
	if errors.Is(err, errors.ErrTokenNotFound) {
		return "", nil
	}
	return v, err
}

// InvalidKind returns the error reported for an unknown token kind.
func InvalidKind(kind Kind) error {
	return errors.Wrapf(errors.ErrInvalidTokenKey, "kind %q", kind)
}
