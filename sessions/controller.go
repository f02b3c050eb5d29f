// Package sessions owns the process-wide session: who is logged in, derived
// from the stored credentials through a profile fetch.
package sessions

import (
	"context"
	"io"
	"sync"

	"github.com/layebamba/Fadj-Ma-Frontend/api"
	"github.com/layebamba/Fadj-Ma-Frontend/auth"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/metrics"
	"github.com/layebamba/Fadj-Ma-Frontend/token"
	"github.com/layebamba/Fadj-Ma-Frontend/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State is the session lifecycle state.
type State int

const (
	StateInitializing State = iota // Before the first authentication check resolves
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Session is an immutable snapshot of the session. User is a copy.
type Session struct {
	State   State
	User    *users.User
	Loading bool
}

// AuthService is the set of backend calls the controller drives.
type AuthService interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.LoginResponse, error)
	Register(ctx context.Context, data users.RegisterData) (*users.User, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*users.User, error)
	UpdateProfile(ctx context.Context, update users.ProfileUpdate) (*users.User, error)
	UploadAvatar(ctx context.Context, filename string, content io.Reader) (*users.User, error)
	ChangePassword(ctx context.Context, change users.PasswordChange) error
}

var _ AuthService = (*auth.Service)(nil)

// Controller is the only writer of session state. Readers get snapshots
// through Current or Subscribe. No lock is held across a network call.
type Controller struct {
	auth      AuthService
	store     token.Store
	navigator api.Navigator
	logger    zerolog.Logger

	state       State
	user        *users.User
	loading     bool
	initStarted bool
	expirations int
	subscribers map[int]chan Session
	nextSubID   int
	lock        sync.RWMutex
}

// ControllerOption defines a function type to modify the Controller instance.
type ControllerOption func(*Controller)

// WithNavigator sets where logout navigates.
func WithNavigator(n api.Navigator) ControllerOption {
	return func(c *Controller) {
		c.navigator = n
	}
}

// WithLogger sets the controller's logger.
func WithLogger(l zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController creates a controller in the Initializing state.
func NewController(authService AuthService, store token.Store, options ...ControllerOption) (*Controller, error) {
	if authService == nil {
		return nil, errors.New("[sessions.NewController] auth service is required")
	}
	if store == nil {
		return nil, errors.New("[sessions.NewController] credential store is required")
	}

	c := &Controller{
		auth:        authService,
		store:       store,
		navigator:   api.NavigatorFunc(func(string) {}),
		logger:      log.Logger,
		state:       StateInitializing,
		loading:     true,
		subscribers: make(map[int]chan Session),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Current returns a snapshot of the session.
func (c *Controller) Current() Session {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.snapshot()
}

// User returns a copy of the current user, or nil.
func (c *Controller) User() *users.User {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.user.Clone()
}

// IsAdmin reports whether the current user belongs to the admin tier.
func (c *Controller) IsAdmin() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return users.IsAdmin(c.user)
}

// Initialize runs the first authentication check. It may be called once;
// later calls return errors.ErrAlreadyInitialized. Without a stored access
// token no request is made. A session established by Login while the check
// is running is kept.
func (c *Controller) Initialize(ctx context.Context) error {
	c.lock.Lock()
	if c.initStarted {
		c.lock.Unlock()
		return errors.ErrAlreadyInitialized
	}
	c.initStarted = true
	c.lock.Unlock()

	if !c.store.HasAccess(ctx) {
		c.resolveInitialization(nil)
		return nil
	}

	u, err := c.auth.Profile(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("session check failed")
		u = nil
	}
	c.resolveInitialization(u)
	return nil
}

func (c *Controller) resolveInitialization(u *users.User) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.loading = false
	if c.state != StateInitializing {
		c.notify()
		return
	}
	if u != nil {
		c.transition(StateAuthenticated, u)
		return
	}
	c.transition(StateAnonymous, nil)
}

// Login authenticates, stores the token pair and loads the profile. The
// returned user is what callers route on. On failure the session is left
// as it was.
func (c *Controller) Login(ctx context.Context, email, password string) (*users.User, error) {
	if _, err := c.auth.Login(ctx, auth.Credentials{Email: email, Password: password}); err != nil {
		return nil, err
	}

	u, err := c.auth.Profile(ctx)
	if err != nil {
		// Credentials must not outlive a failed login.
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.logger.Error().Err(clearErr).Msg("failed to clear credential store")
		}
		return nil, errors.Wrapf(err, "[sessions.Login] failed to load profile")
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	c.loading = false
	c.transition(StateAuthenticated, u)
	return u.Clone(), nil
}

// Register creates the account and then logs in with the same credentials.
func (c *Controller) Register(ctx context.Context, data users.RegisterData) (*users.User, error) {
	if _, err := c.auth.Register(ctx, data); err != nil {
		return nil, err
	}
	return c.Login(ctx, data.Email, data.Password)
}

// Logout revokes the refresh token server-side when possible, then always
// clears the credentials and the user and navigates to the login page. When
// the revoke call itself ended the session, the pipeline has already
// navigated and Logout does not navigate again.
func (c *Controller) Logout(ctx context.Context) {
	c.lock.RLock()
	expirations := c.expirations
	c.lock.RUnlock()

	if err := c.auth.Logout(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("logout endpoint failed")
	}
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Msg("failed to clear credential store")
	}

	c.lock.Lock()
	expired := c.expirations != expirations
	c.loading = false
	c.transition(StateAnonymous, nil)
	c.lock.Unlock()

	if !expired {
		c.navigator.Navigate(api.LoginPath)
	}
}

// ExpireSession records a forced logout: the pipeline already cleared the
// store and handles navigation. It matches the hook signature of
// api.Client.OnSessionExpired.
func (c *Controller) ExpireSession(_ context.Context) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.expirations++
	c.loading = false
	c.transition(StateAnonymous, nil)
}

// UpdateUser sends a partial profile update. The current user becomes the
// server's response, never a local merge.
func (c *Controller) UpdateUser(ctx context.Context, update users.ProfileUpdate) (*users.User, error) {
	id, err := c.authenticatedID()
	if err != nil {
		return nil, err
	}
	u, err := c.auth.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	return c.replaceUser(id, u), nil
}

// UploadAvatar replaces the profile picture and the current user with the
// server's response.
func (c *Controller) UploadAvatar(ctx context.Context, filename string, content io.Reader) (*users.User, error) {
	id, err := c.authenticatedID()
	if err != nil {
		return nil, err
	}
	u, err := c.auth.UploadAvatar(ctx, filename, content)
	if err != nil {
		return nil, err
	}
	return c.replaceUser(id, u), nil
}

// ChangePassword changes the password; the session is unaffected.
func (c *Controller) ChangePassword(ctx context.Context, change users.PasswordChange) error {
	if _, err := c.authenticatedID(); err != nil {
		return err
	}
	return c.auth.ChangePassword(ctx, change)
}

// Subscribe returns a channel receiving a snapshot after every change and a
// function that cancels the subscription. The channel holds one snapshot; a
// slow reader only sees the latest.
func (c *Controller) Subscribe() (<-chan Session, func()) {
	c.lock.Lock()
	defer c.lock.Unlock()

	id := c.nextSubID
	c.nextSubID++
	ch := make(chan Session, 1)
	c.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.lock.Lock()
			defer c.lock.Unlock()
			delete(c.subscribers, id)
			close(ch)
		})
	}
}

func (c *Controller) authenticatedID() (int64, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.state != StateAuthenticated || c.user == nil {
		return 0, errors.ErrNotAuthenticated
	}
	return c.user.ID, nil
}

// replaceUser installs u unless the session changed hands while the request
// was in flight.
func (c *Controller) replaceUser(id int64, u *users.User) *users.User {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.state == StateAuthenticated && c.user != nil && c.user.ID == id {
		c.transition(StateAuthenticated, u)
	}
	return u.Clone()
}

// transition must be called with the lock held.
func (c *Controller) transition(to State, u *users.User) {
	if c.state != to {
		metrics.SessionTransitionsTotal.WithLabelValues(to.String()).Inc()
		c.logger.Debug().Str("from", c.state.String()).Str("to", to.String()).Msg("session transition")
	}
	c.state = to
	c.user = u.Clone()
	c.notify()
}

// notify must be called with the lock held.
func (c *Controller) notify() {
	for _, ch := range c.subscribers {
		snap := c.snapshot()
		select {
		case ch <- snap:
			continue
		default:
		}
		// Drop the stale snapshot in favour of the new one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *Controller) snapshot() Session {
	return Session{State: c.state, User: c.user.Clone(), Loading: c.loading}
}
