package nav_test

import (
	"testing"

	"github.com/layebamba/Fadj-Ma-Frontend/nav"
	"github.com/layebamba/Fadj-Ma-Frontend/users"
	"github.com/stretchr/testify/require"
)

var (
	admin    = &users.User{ID: 1, Role: "ADMIN"}
	lowAdmin = &users.User{ID: 2, Role: "admin"}
	member   = &users.User{ID: 3, Role: "USER"}
	other    = &users.User{ID: 4, Role: "PHARMACIST"}
)

func TestVisible(t *testing.T) {
	require.Len(t, nav.Visible(admin), len(nav.Items))
	require.Len(t, nav.Visible(lowAdmin), len(nav.Items))
	require.Equal(t, []nav.Item{{Name: "Médicaments", Path: nav.PathMedicines}}, nav.Visible(member))
	require.Empty(t, nav.Visible(nil))
}

func TestLanding(t *testing.T) {
	require.Equal(t, nav.PathLogin, nav.Landing(nil))
	require.Equal(t, nav.PathDashboard, nav.Landing(admin))
	require.Equal(t, nav.PathDashboard, nav.Landing(lowAdmin))
	require.Equal(t, nav.PathMedicines, nav.Landing(member))
	require.Equal(t, nav.PathMedicines, nav.Landing(other))
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		user     *users.User
		redirect string
		ok       bool
	}{
		{"anonymous on dashboard", "/dashboard", nil, nav.PathLogin, false},
		{"anonymous on login", "/login", nil, "", true},
		{"admin on dashboard", "/dashboard", admin, "", true},
		{"admin on users", "/dashboard/users", admin, "", true},
		{"member on dashboard", "/dashboard/", member, nav.PathMedicines, false},
		{"member on sales", "/dashboard/sales", member, nav.PathMedicines, false},
		{"member on a supplier", "dashboard/suppliers/4", member, nav.PathMedicines, false},
		{"member on users", "/dashboard/users", member, nav.PathMedicines, false},
		{"member on medicines", "/dashboard/medicines", member, "", true},
		{"member on a medicine", "/dashboard/medicines/12", member, "", true},
		{"member on profile", "/dashboard/profile", member, "", true},
		{"unknown role on dashboard", "/dashboard", other, nav.PathMedicines, false},
		{"unknown role on medicines", "/dashboard/medicines", other, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redirect, ok := nav.Guard(tt.path, tt.user)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.redirect, redirect)
		})
	}
}
