package fakeapi

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type accessClaims struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	Generation int64  `json:"gen"`
	jwtlib.RegisteredClaims
}

type storedRefreshToken struct {
	Token  string
	UserID int64
	Iat    time.Time
}

// tokenIssuer creates HS256 access tokens and opaque refresh tokens. Bumping
// the generation invalidates every access token issued before it.
type tokenIssuer struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	refreshLength int

	refresh    map[string]*storedRefreshToken
	generation int64
	lock       sync.RWMutex
}

func newTokenIssuer(secret []byte, accessExpiry, refreshExpiry time.Duration, refreshLength int) *tokenIssuer {
	return &tokenIssuer{
		secret:        secret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		refreshLength: refreshLength,
		refresh:       make(map[string]*storedRefreshToken),
	}
}

// CreateAccessToken signs an access token for u.
func (ti *tokenIssuer) CreateAccessToken(u *users.User) (string, error) {
	ti.lock.RLock()
	gen := ti.generation
	ti.lock.RUnlock()

	now := NowTimeFunc()
	claims := accessClaims{
		Email:      u.Email,
		Role:       string(u.Role),
		Generation: gen,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ti.accessExpiry)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies an access token and returns the user ID it was
// issued for.
func (ti *tokenIssuer) ParseAccessToken(raw string) (int64, error) {
	var claims accessClaims
	_, err := jwtlib.ParseWithClaims(raw, &claims, func(*jwtlib.Token) (any, error) {
		return ti.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(NowTimeFunc))
	if err != nil {
		return 0, errors.Wrapf(errors.ErrUnauthorized, "%v", err)
	}

	ti.lock.RLock()
	gen := ti.generation
	ti.lock.RUnlock()
	if claims.Generation != gen {
		return 0, errors.Wrapf(errors.ErrUnauthorized, "token has expired")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrUnauthorized, "invalid subject")
	}
	return id, nil
}

// CreateRefreshToken issues a refresh token for userID. Several refresh
// tokens may be live for one user (one per login).
func (ti *tokenIssuer) CreateRefreshToken(userID int64) (string, error) {
	tokenBytes := make([]byte, ti.refreshLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	tokenStr := hex.EncodeToString(tokenBytes)

	ti.lock.Lock()
	defer ti.lock.Unlock()
	ti.refresh[tokenStr] = &storedRefreshToken{Token: tokenStr, UserID: userID, Iat: NowTimeFunc()}
	return tokenStr, nil
}

// ResolveRefreshToken returns the user a live refresh token belongs to.
func (ti *tokenIssuer) ResolveRefreshToken(tokenStr string) (int64, error) {
	ti.lock.RLock()
	defer ti.lock.RUnlock()

	rt, ok := ti.refresh[tokenStr]
	if !ok {
		return 0, errors.ErrNotFound
	}
	if NowTimeFunc().Sub(rt.Iat) > ti.refreshExpiry {
		return 0, errors.Wrapf(errors.ErrUnauthorized, "refresh token has expired")
	}
	return rt.UserID, nil
}

// RevokeRefreshToken blacklists a single refresh token.
func (ti *tokenIssuer) RevokeRefreshToken(tokenStr string) error {
	ti.lock.Lock()
	defer ti.lock.Unlock()

	if _, ok := ti.refresh[tokenStr]; !ok {
		return errors.ErrNotFound
	}
	delete(ti.refresh, tokenStr)
	return nil
}

func (ti *tokenIssuer) revokeAllRefreshTokens() {
	ti.lock.Lock()
	defer ti.lock.Unlock()
	clear(ti.refresh)
}

func (ti *tokenIssuer) expireAccessTokens() {
	ti.lock.Lock()
	defer ti.lock.Unlock()
	ti.generation++
}
