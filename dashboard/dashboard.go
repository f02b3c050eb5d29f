// Package dashboard aggregates the admin dashboard figures from the resource
// endpoints.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/layebamba/Fadj-Ma-Frontend/api"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/utils"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	MedicinesPath      = "medicines/"
	MedicineGroupsPath = "medicine-groups/"
	SuppliersPath      = "suppliers/"
	ClientsPath        = "clients/"
	SalesStatsPath     = "sales/stats/"
	UsersPath          = "users/"
)

// InventoryStatus grades the share of medicines that are low or out of stock.
type InventoryStatus string

const (
	InventoryExcellent InventoryStatus = "excellent"
	InventoryGood      InventoryStatus = "good"
	InventoryFair      InventoryStatus = "fair"
	InventoryCritical  InventoryStatus = "critical"
)

// Label returns the status as shown in the console.
func (s InventoryStatus) Label() string {
	switch s {
	case InventoryExcellent:
		return "Excellent"
	case InventoryGood:
		return "Bien"
	case InventoryFair:
		return "Moyen"
	default:
		return "Critique"
	}
}

// Medicine holds the stock fields the aggregation reads. StockQuantity is nil
// when the backend omits it; such a medicine is neither available nor out of
// stock.
type Medicine struct {
	Name          string `json:"name"`
	StockQuantity *int   `json:"stock_quantity"`
	IsLowStock    bool   `json:"is_low_stock"`
}

// Stats are the dashboard figures. Sales figures the backend does not report
// are zero.
type Stats struct {
	MedicinesCount     int
	LowStockCount      int
	MedicinesAvailable int
	GroupsCount        int
	SuppliersCount     int
	ClientsCount       int
	UsersCount         int
	TotalRevenue       float64
	QuantitySold       int
	InvoicesGenerated  int
	Inventory          InventoryStatus
	TopClient          string
}

// Service computes dashboard statistics.
type Service struct {
	doer api.Doer
}

func NewService(doer api.Doer) *Service {
	return &Service{doer: doer}
}

// Stats fetches every resource concurrently and aggregates them. The users
// list is admin-only on some backends; its failure counts as zero users.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var (
		medicines                  []Medicine
		groups, suppliers, clients []json.RawMessage
		userList                   []json.RawMessage
		sales                      salesStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.fetchList(gctx, MedicinesPath, &medicines) })
	g.Go(func() error { return s.fetchList(gctx, MedicineGroupsPath, &groups) })
	g.Go(func() error { return s.fetchList(gctx, SuppliersPath, &suppliers) })
	g.Go(func() error { return s.fetchList(gctx, ClientsPath, &clients) })
	g.Go(func() error {
		_, err := s.doer.Do(gctx, &api.Request{Path: SalesStatsPath}, &sales)
		return err
	})
	g.Go(func() error {
		if err := s.fetchList(gctx, UsersPath, &userList); err != nil {
			log.Debug().Err(err).Msg("users list unavailable, counting zero users")
			userList = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "[dashboard.Stats] failed to load dashboard data")
	}

	stats := &Stats{
		MedicinesCount: len(medicines),
		LowStockCount: utils.CountWhere(medicines, func(m Medicine) bool {
			return m.IsLowStock
		}),
		MedicinesAvailable: utils.CountWhere(medicines, func(m Medicine) bool {
			return utils.ValueOr(m.StockQuantity, 0) > 0
		}),
		GroupsCount:       len(groups),
		SuppliersCount:    len(suppliers),
		ClientsCount:      len(clients),
		UsersCount:        len(userList),
		TotalRevenue:      float64(sales.Total.Total),
		QuantitySold:      sales.QuantitySold,
		InvoicesGenerated: sales.InvoicesCount,
		Inventory:         Inventory(medicines),
		TopClient:         firstClientName(clients),
	}
	return stats, nil
}

// Inventory grades medicines: an empty list is critical, otherwise the share
// of low-stock plus out-of-stock entries decides. Only an explicit zero
// quantity counts as out of stock.
func Inventory(medicines []Medicine) InventoryStatus {
	if len(medicines) == 0 {
		return InventoryCritical
	}
	low := utils.CountWhere(medicines, func(m Medicine) bool { return m.IsLowStock })
	out := utils.CountWhere(medicines, func(m Medicine) bool { return utils.PtrEquals(m.StockQuantity, 0) })
	problem := float64(low+out) / float64(len(medicines)) * 100

	switch {
	case problem == 0:
		return InventoryExcellent
	case problem < 10:
		return InventoryGood
	case problem < 25:
		return InventoryFair
	default:
		return InventoryCritical
	}
}

// fetchList reads a list endpoint that answers either a bare array or a
// paginated {"results": [...]} envelope.
func (s *Service) fetchList(ctx context.Context, path string, out any) error {
	resp, err := s.doer.Do(ctx, &api.Request{Path: path}, nil)
	if err != nil {
		return err
	}
	items, err := listItems(resp.Body)
	if err != nil {
		return fmt.Errorf("[dashboard] %s: %w", path, err)
	}
	return json.Unmarshal(items, out)
}

func listItems(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage("[]"), nil
	}
	if trimmed[0] == '[' {
		return trimmed, nil
	}

	var page struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	if len(page.Results) == 0 || string(page.Results) == "null" {
		return json.RawMessage("[]"), nil
	}
	return page.Results, nil
}

func firstClientName(clients []json.RawMessage) string {
	if len(clients) == 0 {
		return ""
	}
	var c struct {
		Name      string `json:"name"`
		FullName  string `json:"full_name"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.Unmarshal(clients[0], &c); err != nil {
		return ""
	}
	switch {
	case c.Name != "":
		return c.Name
	case c.FullName != "":
		return c.FullName
	default:
		return strings.TrimSpace(c.FirstName + " " + c.LastName)
	}
}

type salesStats struct {
	Total struct {
		Total decimal `json:"total"`
	} `json:"total"`
	QuantitySold  int `json:"quantity_sold"`
	InvoicesCount int `json:"invoices_count"`
}

// decimal accepts a JSON number, a numeric string or null.
type decimal float64

func (d *decimal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid decimal %s: %w", b, err)
	}
	*d = decimal(f)
	return nil
}
