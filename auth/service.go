// Package auth wraps the backend's authentication endpoints.
package auth

import (
	"context"
	"io"
	"net/http"

	"github.com/layebamba/Fadj-Ma-Frontend/api"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/token"
	"github.com/layebamba/Fadj-Ma-Frontend/users"
)

// Endpoint paths, relative to the backend base address.
const (
	LoginPath          = "auth/login/"
	RegisterPath       = "auth/register/"
	LogoutPath         = "auth/logout/"
	ProfilePath        = "auth/profile/"
	ChangePasswordPath = "auth/change-password/"
)

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the body returned by the login endpoint. Some backends
// embed the user; it is optional.
type LoginResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    *users.User `json:"user,omitempty"`
}

// Pair returns the token pair carried by the response.
func (r *LoginResponse) Pair() token.Pair {
	return token.Pair{Access: r.Access, Refresh: r.Refresh}
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Service calls the authentication endpoints through the request pipeline and
// keeps the credential store in step with login and logout.
type Service struct {
	doer      api.Doer
	store     token.Store
	validator *Validator
}

// NewService creates a Service.
func NewService(doer api.Doer, store token.Store) (*Service, error) {
	if doer == nil {
		return nil, errors.New("[auth.NewService] request pipeline is required")
	}
	if store == nil {
		return nil, errors.New("[auth.NewService] credential store is required")
	}
	return &Service{
		doer:      doer,
		store:     store,
		validator: NewValidator(),
	}, nil
}

// Login exchanges credentials for a token pair and stores it.
func (s *Service) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	if err := s.validator.ValidateCredentials(creds); err != nil {
		return nil, err
	}

	var resp LoginResponse
	if _, err := s.doer.Do(ctx, &api.Request{Method: http.MethodPost, Path: LoginPath, Body: creds}, &resp); err != nil {
		return nil, err
	}
	if resp.Access == "" || resp.Refresh == "" {
		return nil, ErrMissingTokens
	}
	if err := s.store.Set(ctx, resp.Access, resp.Refresh); err != nil {
		return nil, errors.Wrapf(err, "[auth.Login] failed to store tokens")
	}
	return &resp, nil
}

// Register creates an account. It does not log in. data is sent as given and
// field errors come back from the backend as an *api.APIError.
func (s *Service) Register(ctx context.Context, data users.RegisterData) (*users.User, error) {
	var u users.User
	if _, err := s.doer.Do(ctx, &api.Request{Method: http.MethodPost, Path: RegisterPath, Body: data}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout tells the backend to revoke the refresh token (when one is stored)
// and clears the store. The store is cleared even when the backend call fails;
// both failures are returned joined for the caller to report.
func (s *Service) Logout(ctx context.Context) error {
	var callErr error
	refresh, err := s.store.Get(ctx, token.Refresh)
	if err == nil && refresh != "" {
		_, callErr = s.doer.Do(ctx, &api.Request{
			Method: http.MethodPost,
			Path:   LogoutPath,
			Body:   logoutRequest{RefreshToken: refresh},
		}, nil)
	}

	clearErr := errors.Wrapf(s.store.Clear(ctx), "[auth.Logout] failed to clear tokens")
	return errors.Join(callErr, clearErr)
}

// Profile returns the authenticated user's profile.
func (s *Service) Profile(ctx context.Context) (*users.User, error) {
	var u users.User
	if _, err := s.doer.Do(ctx, &api.Request{Method: http.MethodGet, Path: ProfilePath}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile applies a partial update and returns the stored profile.
func (s *Service) UpdateProfile(ctx context.Context, update users.ProfileUpdate) (*users.User, error) {
	if update.IsEmpty() {
		return nil, ErrEmptyProfileUpdate
	}

	var u users.User
	if _, err := s.doer.Do(ctx, &api.Request{Method: http.MethodPatch, Path: ProfilePath, Body: update}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UploadAvatar replaces the profile picture. The content is read once.
func (s *Service) UploadAvatar(ctx context.Context, filename string, content io.Reader) (*users.User, error) {
	if content == nil {
		return nil, ErrMissingAvatar
	}

	body := &api.Multipart{Files: []api.File{{Field: "avatar", Name: filename, Content: content}}}
	var u users.User
	if _, err := s.doer.Do(ctx, &api.Request{Method: http.MethodPut, Path: ProfilePath, Body: body}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChangePassword changes the account password. The current tokens stay valid.
func (s *Service) ChangePassword(ctx context.Context, change users.PasswordChange) error {
	_, err := s.doer.Do(ctx, &api.Request{Method: http.MethodPost, Path: ChangePasswordPath, Body: change}, nil)
	return err
}
