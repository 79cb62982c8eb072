package adapter

import (
	"context"
	"sync"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

// ProductCatalog is the seat a tenant's product source occupies: a
// database, a spreadsheet sync, or (per SPEC_FULL §4.3) an
// AI-assisted matcher sitting in front of either.
type ProductCatalog interface {
	Search(ctx context.Context, brief string, filters adcp.ProductFilters) ([]adcp.Product, error)
	// Get resolves a single product by id within a tenant, returning
	// (nil, nil) on a miss rather than an error.
	Get(ctx context.Context, tenantID, productID string) (*adcp.Product, error)
}

// InMemoryCatalog is a static per-tenant catalog, sufficient for tests
// and for tenants that have not wired a real catalog backend.
type InMemoryCatalog struct {
	mu       sync.RWMutex
	products map[string][]adcp.Product // tenant_id -> products
}

func NewInMemoryCatalog() *InMemoryCatalog {
	return &InMemoryCatalog{products: make(map[string][]adcp.Product)}
}

// Seed registers products for a tenant, replacing any previous set.
func (c *InMemoryCatalog) Seed(tenantID string, products []adcp.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range products {
		products[i].TenantID = tenantID
	}
	c.products[tenantID] = products
}

// Get returns the first product matching productID within tenantID, or
// (nil, nil) if none does.
func (c *InMemoryCatalog) Get(_ context.Context, tenantID, productID string) (*adcp.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products[tenantID] {
		if p.ProductID == productID {
			pc := p
			return &pc, nil
		}
	}
	return nil, nil
}

func (c *InMemoryCatalog) Search(_ context.Context, brief string, filters adcp.ProductFilters) ([]adcp.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []adcp.Product
	for _, p := range c.products[filters.TenantID] {
		if adcp.MatchesBrief(p, brief, filters) {
			out = append(out, p)
		}
	}
	return out, nil
}
