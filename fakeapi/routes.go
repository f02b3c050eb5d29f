package fakeapi

import "net/http"

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth)...))

	// PROFILE
	s.RegisterRouteFunc("GET "+RouteAuthProfile, ChainMiddleware(s.ProfileHandler(), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteFunc("PATCH "+RouteAuthProfile, ChainMiddleware(s.ProfileUpdateHandler(), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteFunc("PUT "+RouteAuthProfile, ChainMiddleware(s.ProfileUploadHandler(), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteFunc("POST "+RouteAuthChangePassword, ChainMiddleware(s.ChangePasswordHandler(), s.APIMiddleware(s.RequireAuth)...))

	// RESOURCES
	s.RegisterRouteFunc("GET "+RouteMedicines, ChainMiddleware(s.listHandler(func(c Catalog) any { return c.Medicines }), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteFunc("GET "+RouteMedicineGroups, ChainMiddleware(s.listHandler(func(c Catalog) any { return c.Groups }), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteFunc("GET "+RouteSuppliers, ChainMiddleware(s.listHandler(func(c Catalog) any { return c.Suppliers }), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteFunc("GET "+RouteClients, ChainMiddleware(s.listHandler(func(c Catalog) any { return c.Clients }), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteFunc("GET "+RouteSalesStats, ChainMiddleware(s.SalesStatsHandler(), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteFunc("GET "+RouteUsers, ChainMiddleware(s.UsersHandler(), s.APIMiddleware(s.RequireAuth, s.RequireAdmin)...))

	s.RegisterRouteFunc(APIPrefix+"/", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.")
	}, s.APIMiddleware()...))
}
