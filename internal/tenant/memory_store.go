package tenant

import (
	"context"
	"sync"
)

// MemoryStore is a minimal in-process PrincipalStore. The real backing
// store (principals, tenants, tokens) is explicitly out of scope for
// this core (SPEC_FULL §1) — this implementation exists only so
// cmd/server has something concrete to boot against in dev/test, the
// same role adapter.InMemoryCatalog/InMemoryAdapter play for the other
// out-of-scope collaborators.
type MemoryStore struct {
	mu         sync.RWMutex
	tenants    map[string]*Tenant
	bySubdomain map[string]*Tenant
	byVHost    map[string]*Tenant
	principals map[string]*Principal // keyed by access token
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenants:     make(map[string]*Tenant),
		bySubdomain: make(map[string]*Tenant),
		byVHost:     make(map[string]*Tenant),
		principals:  make(map[string]*Principal),
	}
}

// SeedTenant registers a tenant for subdomain/virtual-host lookup.
func (m *MemoryStore) SeedTenant(t Tenant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tc := t
	m.tenants[t.TenantID] = &tc
	if t.Subdomain != "" {
		m.bySubdomain[t.Subdomain] = &tc
	}
	if t.VirtualHost != "" {
		m.byVHost[t.VirtualHost] = &tc
	}
}

// SeedPrincipal registers a principal, keyed globally by its (unique)
// access token per the §4.1 invariant.
func (m *MemoryStore) SeedPrincipal(p Principal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pc := p
	m.principals[p.AccessToken] = &pc
}

func (m *MemoryStore) LookupByToken(_ context.Context, tenantID, token string) (*Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.principals[token]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return p, nil
}

func (m *MemoryStore) LookupGlobalByToken(_ context.Context, token string) (*Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.principals[token], nil
}

func (m *MemoryStore) GetTenant(_ context.Context, tenantID string) (*Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tenants[tenantID], nil
}

func (m *MemoryStore) GetTenantBySubdomain(_ context.Context, subdomain string) (*Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bySubdomain[subdomain], nil
}

func (m *MemoryStore) GetTenantByVirtualHost(_ context.Context, virtualHost string) (*Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byVHost[virtualHost], nil
}
