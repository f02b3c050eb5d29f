package fakeapi_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/layebamba/Fadj-Ma-Frontend/fakeapi"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/config"
	"github.com/layebamba/Fadj-Ma-Frontend/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@fadjma.sn"
	adminPassword = "admin-pass-123"
	userEmail     = "awa@fadjma.sn"
	userPassword  = "user-pass-123"
)

type fixture struct {
	api *fakeapi.Server
	srv *httptest.Server
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	api, err := fakeapi.New(config.Defaults(), fakeapi.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	_, err = api.CreateUser(users.RegisterData{Email: adminEmail, Password: adminPassword, FirstName: "Admin", LastName: "Fadj", Role: users.RoleAdmin})
	require.NoError(t, err)
	_, err = api.CreateUser(users.RegisterData{Email: userEmail, Password: userPassword, FirstName: "Awa", LastName: "Ndiaye"})
	require.NoError(t, err)

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return &fixture{api: api, srv: srv}
}

func (f *fixture) do(t *testing.T, method, path, bearer string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (f *fixture) login(t *testing.T, email, password string) (string, string) {
	t.Helper()
	status, body := f.do(t, http.MethodPost, fakeapi.RouteAuthLogin, "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status)
	return body["access"].(string), body["refresh"].(string)
}

func TestLogin(t *testing.T) {
	f := setupFixture(t)

	access, refresh := f.login(t, userEmail, userPassword)
	require.NotEmpty(t, access)
	require.Len(t, refresh, 64)

	status, body := f.do(t, http.MethodPost, fakeapi.RouteAuthLogin, "", map[string]string{"email": userEmail, "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "No active account found with the given credentials", body["detail"])

	status, _ = f.do(t, http.MethodPost, fakeapi.RouteAuthLogin, "", map[string]string{"email": "nobody@fadjma.sn", "password": "x"})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestProfile_RequiresValidAccessToken(t *testing.T) {
	f := setupFixture(t)
	access, _ := f.login(t, userEmail, userPassword)

	status, body := f.do(t, http.MethodGet, fakeapi.RouteAuthProfile, access, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, userEmail, body["email"])
	require.Equal(t, "USER", body["role"])
	require.Equal(t, "Awa Ndiaye", body["full_name"])

	status, _ = f.do(t, http.MethodGet, fakeapi.RouteAuthProfile, "", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = f.do(t, http.MethodGet, fakeapi.RouteAuthProfile, "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	f.api.ExpireAccessTokens()
	status, body = f.do(t, http.MethodGet, fakeapi.RouteAuthProfile, access, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "token_not_valid", body["code"])
}

func TestAccessTokenLifetime(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fakeapi.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { fakeapi.NowTimeFunc = time.Now })

	f := setupFixture(t)
	access, _ := f.login(t, userEmail, userPassword)

	now = now.Add(59 * time.Minute)
	status, _ := f.do(t, http.MethodGet, fakeapi.RouteAuthProfile, access, nil)
	require.Equal(t, http.StatusOK, status)

	now = now.Add(2 * time.Minute)
	status, _ = f.do(t, http.MethodGet, fakeapi.RouteAuthProfile, access, nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRefresh(t *testing.T) {
	f := setupFixture(t)
	_, refresh := f.login(t, userEmail, userPassword)
	f.api.ExpireAccessTokens()

	status, body := f.do(t, http.MethodPost, fakeapi.RouteAuthRefresh, "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, status)
	access := body["access"].(string)

	status, _ = f.do(t, http.MethodGet, fakeapi.RouteAuthProfile, access, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, f.api.Hits("POST "+fakeapi.RouteAuthRefresh))

	f.api.RevokeRefreshTokens()
	status, body = f.do(t, http.MethodPost, fakeapi.RouteAuthRefresh, "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Token is invalid or expired", body["detail"])
}

func TestLogout(t *testing.T) {
	f := setupFixture(t)
	access, refresh := f.login(t, userEmail, userPassword)

	f.api.FailLogout(true)
	status, _ := f.do(t, http.MethodPost, fakeapi.RouteAuthLogout, access, map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusInternalServerError, status)

	f.api.FailLogout(false)
	status, _ = f.do(t, http.MethodPost, fakeapi.RouteAuthLogout, access, map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, status)

	// The refresh token is blacklisted.
	status, _ = f.do(t, http.MethodPost, fakeapi.RouteAuthRefresh, "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRegister(t *testing.T) {
	f := setupFixture(t)

	valid := users.RegisterData{
		Email:     "moussa@fadjma.sn",
		Password:  "secret-123",
		Password2: "secret-123",
		FirstName: "Moussa",
		LastName:  "Diop",
		Phone:     "+221770000000",
	}

	t.Run("created", func(t *testing.T) {
		status, body := f.do(t, http.MethodPost, fakeapi.RouteAuthRegister, "", valid)
		require.Equal(t, http.StatusCreated, status)
		require.Equal(t, valid.Email, body["email"])
		require.Equal(t, "USER", body["role"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		status, body := f.do(t, http.MethodPost, fakeapi.RouteAuthRegister, "", valid)
		require.Equal(t, http.StatusBadRequest, status)
		require.Equal(t, []any{"user with this email already exists."}, body["email"])
	})

	t.Run("passwords differ", func(t *testing.T) {
		data := valid
		data.Email = "other@fadjma.sn"
		data.Password2 = "something-else"
		status, body := f.do(t, http.MethodPost, fakeapi.RouteAuthRegister, "", data)
		require.Equal(t, http.StatusBadRequest, status)
		require.Contains(t, body, "password")
	})

	t.Run("invalid fields", func(t *testing.T) {
		status, body := f.do(t, http.MethodPost, fakeapi.RouteAuthRegister, "", map[string]string{"email": "not-an-email"})
		require.Equal(t, http.StatusBadRequest, status)
		require.Contains(t, body, "email")
		require.Contains(t, body, "password")
		require.Contains(t, body, "first_name")
	})
}

func TestProfileUpdates(t *testing.T) {
	f := setupFixture(t)
	access, _ := f.login(t, userEmail, userPassword)

	status, body := f.do(t, http.MethodPatch, fakeapi.RouteAuthProfile, access, map[string]string{"first_name": "Aïssatou"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Aïssatou", body["first_name"])
	require.Equal(t, "Ndiaye", body["last_name"])
	require.Equal(t, "Aïssatou Ndiaye", body["full_name"])

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("phone", "+221771111111"))
	part, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPut, f.srv.URL+fakeapi.RouteAuthProfile, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var u users.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&u))
	require.Equal(t, "+221771111111", u.Phone)
	require.True(t, strings.HasPrefix(u.Avatar, "/media/avatars/"))
	require.True(t, strings.HasSuffix(u.Avatar, "-me.png"))
}

func TestChangePassword(t *testing.T) {
	f := setupFixture(t)
	access, _ := f.login(t, userEmail, userPassword)

	status, body := f.do(t, http.MethodPost, fakeapi.RouteAuthChangePassword, access, users.PasswordChange{OldPassword: "wrong", NewPassword: "new-pass-123"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, "old_password")

	status, _ = f.do(t, http.MethodPost, fakeapi.RouteAuthChangePassword, access, users.PasswordChange{OldPassword: userPassword, NewPassword: "new-pass-123"})
	require.Equal(t, http.StatusOK, status)

	f.login(t, userEmail, "new-pass-123")
}

func TestResources(t *testing.T) {
	f := setupFixture(t)
	f.api.Seed(fakeapi.Catalog{
		Medicines: []fakeapi.Medicine{{ID: 1, Name: "Doliprane", StockQuantity: 10}},
		Clients:   []fakeapi.Named{{ID: 1, Name: "Fatou Sow"}},
		Paginate:  true,
	})
	userAccess, _ := f.login(t, userEmail, userPassword)
	adminAccess, _ := f.login(t, adminEmail, adminPassword)

	status, body := f.do(t, http.MethodGet, fakeapi.RouteMedicines, userAccess, nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, body["count"])
	require.Len(t, body["results"], 1)

	status, body = f.do(t, http.MethodGet, fakeapi.RouteSuppliers, userAccess, nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, body["results"])

	status, _ = f.do(t, http.MethodGet, fakeapi.RouteUsers, userAccess, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, body = f.do(t, http.MethodGet, fakeapi.RouteUsers, adminAccess, nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 2, body["count"])

	status, _ = f.do(t, http.MethodGet, fakeapi.APIPrefix+"/unknown/", userAccess, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestSeedDemo(t *testing.T) {
	api, err := fakeapi.New(config.Defaults(), fakeapi.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	require.NoError(t, api.SeedDemo())
	// Seeding twice keeps the existing accounts.
	require.NoError(t, api.SeedDemo())

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	f := &fixture{api: api, srv: srv}

	access, _ := f.login(t, fakeapi.DemoAdminEmail, fakeapi.DemoAdminPassword)
	status, body := f.do(t, http.MethodGet, fakeapi.RouteUsers, access, nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 2, body["count"])

	status, body = f.do(t, http.MethodGet, fakeapi.RouteSalesStats, access, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, map[string]any{"total": "845000.00"}, body["total"])
}
