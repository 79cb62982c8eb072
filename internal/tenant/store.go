package tenant

import "context"

// PrincipalStore is the narrow lookup interface the core consumes for
// authentication storage (principals, tenants, tokens). Its
// implementation — a real database, an Admin-service client, whatever —
// is explicitly out of scope for this core (spec §1).
type PrincipalStore interface {
	// LookupByToken finds a principal whose (tenant_id, access_token)
	// matches exactly. Returns (nil, nil) on no match, never an error
	// for a simple miss.
	LookupByToken(ctx context.Context, tenantID, token string) (*Principal, error)

	// LookupGlobalByToken finds any principal by token with no tenant
	// scoping. Callers MUST only use this when no tenant was detected
	// from headers; see the security invariants in §4.1.
	LookupGlobalByToken(ctx context.Context, token string) (*Principal, error)

	GetTenant(ctx context.Context, tenantID string) (*Tenant, error)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	GetTenantByVirtualHost(ctx context.Context, virtualHost string) (*Tenant, error)
}
