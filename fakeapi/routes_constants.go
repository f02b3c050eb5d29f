package fakeapi

// Route path constants. Every route lives under APIPrefix; trailing slashes
// are significant.
const (
	APIPrefix = "/api"

	RouteAuthLogin          = APIPrefix + "/auth/login/"
	RouteAuthRegister       = APIPrefix + "/auth/register/"
	RouteAuthRefresh        = APIPrefix + "/auth/refresh/"
	RouteAuthLogout         = APIPrefix + "/auth/logout/"
	RouteAuthProfile        = APIPrefix + "/auth/profile/"
	RouteAuthChangePassword = APIPrefix + "/auth/change-password/"

	RouteMedicines      = APIPrefix + "/medicines/"
	RouteMedicineGroups = APIPrefix + "/medicine-groups/"
	RouteSuppliers      = APIPrefix + "/suppliers/"
	RouteClients        = APIPrefix + "/clients/"
	RouteSalesStats     = APIPrefix + "/sales/stats/"
	RouteUsers          = APIPrefix + "/users/"
)
