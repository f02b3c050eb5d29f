package fakeapi

import "sync"

// Medicine is the subset of the medicine resource the console reads.
type Medicine struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	MedicineID    string `json:"medicine_id"`
	Group         int64  `json:"group"`
	StockQuantity int    `json:"stock_quantity"`
	MinStockAlert int    `json:"min_stock_alert"`
	IsLowStock    bool   `json:"is_low_stock"`
}

// Named is a resource listed only by name (groups, suppliers, clients).
type Named struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name,omitempty"`
}

// SalesTotal mirrors the nested aggregate of the sales statistics endpoint;
// the total is a decimal string.
type SalesTotal struct {
	Total string `json:"total"`
}

// SalesStats is the body of the sales statistics endpoint.
type SalesStats struct {
	Total         SalesTotal `json:"total"`
	QuantitySold  int        `json:"quantity_sold"`
	InvoicesCount int        `json:"invoices_count"`
}

// Catalog is the read-only resource data served to the dashboard.
type Catalog struct {
	Medicines []Medicine
	Groups    []Named
	Suppliers []Named
	Clients   []Named
	Sales     SalesStats

	// Paginate wraps list responses as {"count": n, "results": [...]}.
	Paginate bool
}

type catalogStore struct {
	catalog Catalog
	lock    sync.RWMutex
}

func (cs *catalogStore) Set(c Catalog) {
	cs.lock.Lock()
	defer cs.lock.Unlock()
	cs.catalog = c
}

func (cs *catalogStore) Get() Catalog {
	cs.lock.RLock()
	defer cs.lock.RUnlock()
	return cs.catalog
}
