// Package tenant implements the Auth & Tenant Resolver: mapping
// transport signals (headers, bearer tokens) to a (Tenant, Principal)
// pair, and building the per-request ToolContext handed to every skill
// handler.
package tenant

import "time"

// Tenant is a publisher identity. Read-only from the core's
// perspective; provisioned by the Admin subsystem.
type Tenant struct {
	TenantID           string
	Subdomain          string
	VirtualHost        string
	AdServerKind       string
	AdminToken         string
	AutoApproveFormats bool
	HumanReviewRequired bool
	MaxDailyBudget     float64
	WebhookURLs        []string
	IsActive           bool
}

// Principal is an advertiser identity scoped to exactly one tenant.
type Principal struct {
	PrincipalID       string
	TenantID          string
	Name              string
	AccessToken       string
	PlatformMappings  map[string]string
}

// ReservedSubdomains must never resolve to a tenant via the Host
// subdomain match (§4.1).
var ReservedSubdomains = map[string]bool{
	"localhost": true,
	"www":       true,
}

// RootSalesAgentHost is excluded from subdomain-based tenant detection;
// it identifies the bare root host with no tenant subdomain.
const RootSalesAgentHost = "sales-agent.example.com"

// cacheEntry wraps a cached Tenant with its insertion time for TTL
// eviction.
type cacheEntry struct {
	tenant    Tenant
	insertedAt time.Time
}
