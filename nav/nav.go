// Package nav decides which console sections a user may see and where a user
// lands after authentication.
package nav

import (
	"strings"

	"github.com/layebamba/Fadj-Ma-Frontend/users"
)

const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
	PathMedicines = "/dashboard/medicines"
	PathGroups    = "/dashboard/groups"
	PathSuppliers = "/dashboard/suppliers"
	PathClients   = "/dashboard/clients"
	PathSales     = "/dashboard/sales"
	PathUsers     = "/dashboard/users"
	PathProfile   = "/dashboard/profile"
)

// Item is one entry of the sidebar.
type Item struct {
	Name      string
	Path      string
	AdminOnly bool
}

// Items is the sidebar in display order.
var Items = []Item{
	{Name: "Tableau de bord", Path: PathDashboard, AdminOnly: true},
	{Name: "Médicaments", Path: PathMedicines},
	{Name: "Groupes", Path: PathGroups, AdminOnly: true},
	{Name: "Fournisseurs", Path: PathSuppliers, AdminOnly: true},
	{Name: "Clients", Path: PathClients, AdminOnly: true},
	{Name: "Ventes", Path: PathSales, AdminOnly: true},
}

// Visible returns the items u may see. Admins see everything, anyone else
// only the medicines view.
func Visible(u *users.User) []Item {
	if u == nil {
		return nil
	}
	admin := users.IsAdmin(u)
	visible := make([]Item, 0, len(Items))
	for _, item := range Items {
		if admin || !item.AdminOnly {
			visible = append(visible, item)
		}
	}
	return visible
}

// Landing returns where u goes after login or on opening the console.
func Landing(u *users.User) string {
	switch {
	case u == nil:
		return PathLogin
	case users.CanViewDashboard(u):
		return PathDashboard
	default:
		return PathMedicines
	}
}

// Guard reports whether u may open path. When it may not, redirect is where
// to send it instead.
func Guard(path string, u *users.User) (redirect string, ok bool) {
	path = normalize(path)
	if path == PathLogin {
		return "", true
	}
	if u == nil {
		return PathLogin, false
	}
	if path == PathDashboard {
		if users.CanViewDashboard(u) {
			return "", true
		}
		return PathMedicines, false
	}
	if path == PathProfile || users.IsAdmin(u) {
		return "", true
	}
	if adminOnly(path) {
		return PathMedicines, false
	}
	return "", true
}

func adminOnly(path string) bool {
	if path == PathUsers || strings.HasPrefix(path, PathUsers+"/") {
		return true
	}
	for _, item := range Items {
		if !item.AdminOnly {
			continue
		}
		if path == item.Path {
			return true
		}
		// Every section below the dashboard root inherits its item's tier.
		if item.Path != PathDashboard && strings.HasPrefix(path, item.Path+"/") {
			return true
		}
	}
	return false
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
