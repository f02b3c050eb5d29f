package api

import (
	"net/http"
	"testing"

	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantFields map[string][]string
	}{
		{
			name:       "detail",
			status:     http.StatusUnauthorized,
			body:       `{"detail":"No active account found with the given credentials"}`,
			wantDetail: "No active account found with the given credentials",
		},
		{
			name:       "error key",
			status:     http.StatusBadRequest,
			body:       `{"error":"Mot de passe actuel incorrect"}`,
			wantDetail: "Mot de passe actuel incorrect",
		},
		{
			name:       "field errors",
			status:     http.StatusBadRequest,
			body:       `{"email":["user with this email already exists."],"password":["too short","too common"]}`,
			wantDetail: "email: user with this email already exists.",
			wantFields: map[string][]string{
				"email":    {"user with this email already exists."},
				"password": {"too short", "too common"},
			},
		},
		{
			name:       "non field errors",
			status:     http.StatusBadRequest,
			body:       `{"non_field_errors":["Passwords do not match"]}`,
			wantDetail: "Passwords do not match",
			wantFields: map[string][]string{"non_field_errors": {"Passwords do not match"}},
		},
		{
			name:       "not json",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantDetail: "request failed with status 502",
		},
		{
			name:       "empty body",
			status:     http.StatusInternalServerError,
			wantDetail: "request failed with status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newAPIError(tt.status, []byte(tt.body))
			require.Equal(t, tt.status, e.Status)
			require.Equal(t, tt.wantDetail, e.Error())
			require.Equal(t, tt.wantFields, e.Fields)
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	require.ErrorIs(t, newAPIError(http.StatusUnauthorized, nil), errors.ErrUnauthorized)
	require.ErrorIs(t, newAPIError(http.StatusForbidden, nil), errors.ErrForbidden)
	require.ErrorIs(t, newAPIError(http.StatusNotFound, nil), errors.ErrNotFound)
	require.ErrorIs(t, newAPIError(http.StatusInternalServerError, nil), errors.ErrInternal)
	require.ErrorIs(t, newAPIError(http.StatusBadGateway, nil), errors.ErrInternal)
	require.Nil(t, newAPIError(http.StatusBadRequest, nil).Unwrap())

	e := newAPIError(http.StatusBadRequest, []byte(`{"phone":["invalid"]}`))
	require.Equal(t, "invalid", e.FieldError("phone"))
	require.Empty(t, e.FieldError("email"))
}
