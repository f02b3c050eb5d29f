// Package fakeapi is an in-memory implementation of the pharmacy REST backend.
// It serves the authentication endpoints and the list reads the dashboard
// needs, and exposes hooks that let tests expire or revoke credentials.
package fakeapi

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/layebamba/Fadj-Ma-Frontend/auth"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/config"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Config is the configuration the fake backend reads.
type Config interface {
	config.EnvConfig
	config.TokenConfig
	config.FakeAPIConfig
}

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	logger zerolog.Logger

	users    *userRepo
	tokens   *tokenIssuer
	catalog  catalogStore
	validate *validator.Validate

	accessExpiry time.Duration
	bcryptCost   int

	hits       map[string]int
	hitsLock   sync.Mutex
	failLogout atomic.Bool
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithAccessTokenExpiry overrides the access token lifetime.
func WithAccessTokenExpiry(d time.Duration) ServerOption {
	return func(s *Server) {
		s.accessExpiry = d
	}
}

// WithBcryptCost sets the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) ServerOption {
	return func(s *Server) {
		s.bcryptCost = cost
	}
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

func New(cfg Config, options ...ServerOption) (*Server, error) {
	secret := cfg.GetFakeAPISecret()
	if secret == "" {
		return nil, errors.New("[fakeapi.New] JWT secret is required")
	}

	s := &Server{
		env:          cfg.GetEnv(),
		mux:          http.NewServeMux(),
		logger:       log.Logger,
		accessExpiry: cfg.GetAccessTokenExpiry(),
		bcryptCost:   bcrypt.DefaultCost,
		hits:         make(map[string]int),
	}
	for _, opt := range options {
		opt(s)
	}

	s.users = newUserRepo(s.bcryptCost)
	s.tokens = newTokenIssuer([]byte(secret), s.accessExpiry, cfg.GetRefreshTokenExpiry(), cfg.GetRefreshTokenLength())
	s.validate = validator.New(validator.WithRequiredStructEnabled())
	s.validate.RegisterTagNameFunc(auth.JSONFieldName)

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		s.logger.Debug().Str("method", method).Str("path", path).Msg("route registered")
	}
}

// CreateUser adds an account directly, bypassing request validation.
func (s *Server) CreateUser(data users.RegisterData) (*users.User, error) {
	return s.users.Create(data)
}

// Seed replaces the resource data served to the dashboard.
func (s *Server) Seed(c Catalog) {
	s.catalog.Set(c)
}

// ExpireAccessTokens makes every access token issued so far invalid.
func (s *Server) ExpireAccessTokens() {
	s.tokens.expireAccessTokens()
}

// RevokeRefreshTokens blacklists every refresh token issued so far.
func (s *Server) RevokeRefreshTokens() {
	s.tokens.revokeAllRefreshTokens()
}

// FailLogout makes the logout endpoint answer 500 while fail is true.
func (s *Server) FailLogout(fail bool) {
	s.failLogout.Store(fail)
}

// Hits returns how many requests reached the route registered under pattern,
// e.g. "POST /api/auth/refresh/".
func (s *Server) Hits(pattern string) int {
	s.hitsLock.Lock()
	defer s.hitsLock.Unlock()
	return s.hits[pattern]
}

func (s *Server) countHit(pattern string) {
	s.hitsLock.Lock()
	defer s.hitsLock.Unlock()
	s.hits[pattern]++
}
