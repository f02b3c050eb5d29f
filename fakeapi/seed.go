package fakeapi

import (
	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/users"
)

// Demo accounts created by SeedDemo.
const (
	DemoAdminEmail    = "admin@fadjma.sn"
	DemoAdminPassword = "admin1234"
	DemoUserEmail     = "pharmacien@fadjma.sn"
	DemoUserPassword  = "pharma1234"
)

// SeedDemo creates one admin account, one regular account and a small
// catalog so the console has something to show against a local backend.
func (s *Server) SeedDemo() error {
	accounts := []users.RegisterData{
		{Email: DemoAdminEmail, Password: DemoAdminPassword, FirstName: "Admin", LastName: "Fadj-Ma", Role: users.RoleAdmin},
		{Email: DemoUserEmail, Password: DemoUserPassword, FirstName: "Awa", LastName: "Ndiaye", Role: users.RoleUser},
	}
	for _, a := range accounts {
		if _, err := s.users.Create(a); err != nil && !errors.Is(err, errDuplicateEmail) {
			return errors.Wrapf(err, "[SeedDemo] failed to create %s", a.Email)
		}
	}

	s.Seed(Catalog{
		Medicines: []Medicine{
			{ID: 1, Name: "Doliprane 1000mg", MedicineID: "D06ID232435454", Group: 1, StockQuantity: 350, MinStockAlert: 20},
			{ID: 2, Name: "Amoxicilline 500mg", MedicineID: "A01ID232435455", Group: 2, StockQuantity: 12, MinStockAlert: 20, IsLowStock: true},
			{ID: 3, Name: "Ventoline", MedicineID: "V12ID232435456", Group: 3, StockQuantity: 0, MinStockAlert: 5, IsLowStock: true},
			{ID: 4, Name: "Efferalgan", MedicineID: "E44ID232435457", Group: 1, StockQuantity: 80, MinStockAlert: 10},
		},
		Groups: []Named{
			{ID: 1, Name: "Antalgiques"},
			{ID: 2, Name: "Antibiotiques"},
			{ID: 3, Name: "Bronchodilatateurs"},
		},
		Suppliers: []Named{
			{ID: 1, Name: "Laborex Sénégal"},
			{ID: 2, Name: "Cophase"},
		},
		Clients: []Named{
			{ID: 1, Name: "Fatou Sow", FullName: "Fatou Sow"},
			{ID: 2, Name: "Ibrahima Fall", FullName: "Ibrahima Fall"},
		},
		Sales: SalesStats{
			Total:         SalesTotal{Total: "845000.00"},
			QuantitySold:  1240,
			InvoicesCount: 312,
		},
		Paginate: true,
	})
	return nil
}
