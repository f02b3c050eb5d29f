package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/layebamba/Fadj-Ma-Frontend/api"
	"github.com/layebamba/Fadj-Ma-Frontend/auth"
	"github.com/layebamba/Fadj-Ma-Frontend/fakeapi"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/config"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/utils"
	"github.com/layebamba/Fadj-Ma-Frontend/token"
	"github.com/layebamba/Fadj-Ma-Frontend/token/memstore"
	"github.com/layebamba/Fadj-Ma-Frontend/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testEmail    = "awa@fadjma.sn"
	testPassword = "user-pass-123"
)

type testFixture struct {
	backend *fakeapi.Server
	store   *memstore.Store
	doer    api.Doer
	service *auth.Service
}

type failingClearStore struct {
	*memstore.Store
	err error
}

func (s *failingClearStore) Clear(context.Context) error {
	return s.err
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	backend, err := fakeapi.New(config.Defaults(), fakeapi.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	_, err = backend.CreateUser(users.RegisterData{Email: testEmail, Password: testPassword, FirstName: "Awa", LastName: "Ndiaye"})
	require.NoError(t, err)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	store := memstore.New()
	client, err := api.New(srv.URL+fakeapi.APIPrefix, store, api.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	service, err := auth.NewService(client, store)
	require.NoError(t, err)

	return &testFixture{backend: backend, store: store, doer: client, service: service}
}

func TestNewService_Validation(t *testing.T) {
	_, err := auth.NewService(nil, memstore.New())
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	t.Run("stores the token pair", func(t *testing.T) {
		resp, err := f.service.Login(ctx, auth.Credentials{Email: testEmail, Password: testPassword})
		require.NoError(t, err)
		require.NotNil(t, resp.User)

		pair, err := token.GetPair(ctx, f.store)
		require.NoError(t, err)
		require.Equal(t, resp.Pair(), pair)
	})

	t.Run("wrong password surfaces backend detail", func(t *testing.T) {
		require.NoError(t, f.store.Clear(ctx))
		_, err := f.service.Login(ctx, auth.Credentials{Email: testEmail, Password: "nope"})
		require.ErrorIs(t, err, errors.ErrUnauthorized)
		require.EqualError(t, err, "No active account found with the given credentials")
		require.False(t, f.store.HasAccess(ctx))
	})

	t.Run("empty form is rejected before any request", func(t *testing.T) {
		hits := f.backend.Hits("POST " + fakeapi.RouteAuthLogin)
		_, err := f.service.Login(ctx, auth.Credentials{Email: " "})
		require.ErrorIs(t, err, auth.ErrInvalidCredentialsForm)
		require.Equal(t, hits, f.backend.Hits("POST "+fakeapi.RouteAuthLogin))
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	data := users.RegisterData{
		Email:     "moussa@fadjma.sn",
		Password:  "secret-123",
		Password2: "secret-123",
		FirstName: "Moussa",
		LastName:  "Diop",
		Phone:     "+221770000000",
	}

	u, err := f.service.Register(ctx, data)
	require.NoError(t, err)
	require.Equal(t, data.Email, u.Email)
	// Registration does not log in.
	require.False(t, f.store.HasAccess(ctx))

	_, err = f.service.Register(ctx, data)
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, "user with this email already exists.", apiErr.FieldError("email"))

	t.Run("backend rejects mismatched passwords", func(t *testing.T) {
		mismatch := data
		mismatch.Email = "other@fadjma.sn"
		mismatch.Password2 = "other-secret"
		hits := f.backend.Hits("POST " + fakeapi.RouteAuthRegister)

		_, err := f.service.Register(ctx, mismatch)
		apiErr, ok := api.AsAPIError(err)
		require.True(t, ok)
		require.Equal(t, "Password fields didn't match.", apiErr.FieldError("password"))
		require.Equal(t, hits+1, f.backend.Hits("POST "+fakeapi.RouteAuthRegister))
	})

	t.Run("backend field errors are returned as sent", func(t *testing.T) {
		_, err := f.service.Register(ctx, users.RegisterData{Email: "bad"})
		apiErr, ok := api.AsAPIError(err)
		require.True(t, ok)
		require.Equal(t, "enter a valid email address", apiErr.FieldError("email"))
		require.Equal(t, "this field is required", apiErr.FieldError("phone"))
	})
}

func TestRegister_SendsInputUnchecked(t *testing.T) {
	ctx := context.Background()

	var received map[string]any
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7,"email":"fatou@fadjma.sn","role":"PHARMACIST"}`))
	}))
	t.Cleanup(srv.Close)

	store := memstore.New()
	client, err := api.New(srv.URL, store, api.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	service, err := auth.NewService(client, store)
	require.NoError(t, err)

	u, err := service.Register(ctx, users.RegisterData{
		Email:     "fatou@fadjma.sn",
		Password:  "pass12",
		Password2: "pass12",
		Role:      "PHARMACIST",
	})
	require.NoError(t, err)
	require.Equal(t, 1, hits)
	require.Equal(t, users.RoleType("PHARMACIST"), u.Role)
	require.False(t, users.IsAdmin(u))
	require.Equal(t, "pass12", received["password"])
	require.Equal(t, "PHARMACIST", received["role"])
	require.Equal(t, "", received["phone"])

	require.NoError(t, service.ChangePassword(ctx, users.PasswordChange{OldPassword: "pass12", NewPassword: "pass12"}))
	require.Equal(t, 2, hits)
}

func TestConfirmPassword(t *testing.T) {
	require.NoError(t, auth.ConfirmPassword("secret-123", "secret-123"))
	require.ErrorIs(t, auth.ConfirmPassword("secret-123", "other"), auth.ErrPasswordsDontMatch)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes the refresh token", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Login(ctx, auth.Credentials{Email: testEmail, Password: testPassword})
		require.NoError(t, err)

		require.NoError(t, f.service.Logout(ctx))
		require.False(t, f.store.HasAccess(ctx))
		require.Equal(t, 1, f.backend.Hits("POST "+fakeapi.RouteAuthLogout))
	})

	t.Run("clears the store when the backend fails", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Login(ctx, auth.Credentials{Email: testEmail, Password: testPassword})
		require.NoError(t, err)
		f.backend.FailLogout(true)

		require.Error(t, f.service.Logout(ctx))
		pair, err := token.GetPair(ctx, f.store)
		require.NoError(t, err)
		require.Equal(t, token.Pair{}, pair)
	})

	t.Run("reports backend and store failures together", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Login(ctx, auth.Credentials{Email: testEmail, Password: testPassword})
		require.NoError(t, err)
		f.backend.FailLogout(true)

		clearErr := errors.New("disk full")
		service, err := auth.NewService(f.doer, &failingClearStore{Store: f.store, err: clearErr})
		require.NoError(t, err)

		err = service.Logout(ctx)
		require.ErrorIs(t, err, clearErr)
		require.ErrorIs(t, err, errors.ErrInternal)
	})

	t.Run("no backend call without a refresh token", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.service.Logout(ctx))
		require.Zero(t, f.backend.Hits("POST "+fakeapi.RouteAuthLogout))
	})
}

func TestProfileOperations(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	_, err := f.service.Login(ctx, auth.Credentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	u, err := f.service.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, testEmail, u.Email)
	require.False(t, users.IsAdmin(u))

	u, err = f.service.UpdateProfile(ctx, users.ProfileUpdate{LastName: utils.Ptr("Sarr")})
	require.NoError(t, err)
	require.Equal(t, "Awa Sarr", u.FullName)

	_, err = f.service.UpdateProfile(ctx, users.ProfileUpdate{})
	require.ErrorIs(t, err, auth.ErrEmptyProfileUpdate)

	u, err = f.service.UploadAvatar(ctx, "awa.jpg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(u.Avatar, "-awa.jpg"))

	_, err = f.service.UploadAvatar(ctx, "none.jpg", nil)
	require.ErrorIs(t, err, auth.ErrMissingAvatar)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	_, err := f.service.Login(ctx, auth.Credentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	err = f.service.ChangePassword(ctx, users.PasswordChange{OldPassword: "wrong-pass", NewPassword: "brand-new-123"})
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, "Wrong password.", apiErr.FieldError("old_password"))

	err = f.service.ChangePassword(ctx, users.PasswordChange{OldPassword: testPassword, NewPassword: testPassword})
	apiErr, ok = api.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, "must differ from the current value", apiErr.FieldError("new_password"))

	require.NoError(t, f.service.ChangePassword(ctx, users.PasswordChange{OldPassword: testPassword, NewPassword: "brand-new-123"}))
	// Existing tokens stay valid.
	_, err = f.service.Profile(ctx)
	require.NoError(t, err)
}

func TestProfile_RefreshesExpiredAccessToken(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	_, err := f.service.Login(ctx, auth.Credentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	before, err := f.store.Get(ctx, token.Access)
	require.NoError(t, err)

	f.backend.ExpireAccessTokens()

	u, err := f.service.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, testEmail, u.Email)
	require.Equal(t, 1, f.backend.Hits("POST "+fakeapi.RouteAuthRefresh))
	require.Equal(t, 2, f.backend.Hits("GET "+fakeapi.RouteAuthProfile))

	after, err := f.store.Get(ctx, token.Access)
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}
