package tenant

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

// IncomingHostHeader is set by an upstream router to the tenant's
// virtual host; it takes precedence over the bare Host header (§4.1).
const IncomingHostHeader = "Apx-Incoming-Host"

// AdminTenantHeader is only honored on admin paths.
const AdminTenantHeader = "x-adcp-tenant"

// Resolver implements the Auth & Tenant Resolver component.
type Resolver struct {
	Store PrincipalStore
	Cache Cache
}

func NewResolver(store PrincipalStore, cache Cache) *Resolver {
	return &Resolver{Store: store, Cache: cache}
}

// ResolveTenant tries Apx-Incoming-Host (exact virtual-host match) then
// the Host header's subdomain, excluding reserved subdomains and the
// root sales-agent host. No fallback to a default tenant ever occurs.
func (r *Resolver) ResolveTenant(ctx context.Context, headers http.Header) (*Tenant, *adcp.Error) {
	if vhost := headers.Get(IncomingHostHeader); vhost != "" {
		if t, ok := r.lookupByVirtualHost(ctx, vhost); ok {
			return t, nil
		}
	}

	host := headers.Get("Host")
	if host != "" {
		sub := subdomainOf(host)
		if sub != "" && !ReservedSubdomains[sub] && host != RootSalesAgentHost {
			if t, ok := r.lookupBySubdomain(ctx, sub); ok {
				return t, nil
			}
		}
	}

	return nil, &adcp.Error{
		Code:     adcp.CodeTenantDetectionFailed,
		Message:  "could not resolve a tenant from request headers",
		Severity: adcp.SeverityError,
	}
}

func subdomainOf(host string) string {
	host = strings.Split(host, ":")[0]
	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}
	return parts[0]
}

func (r *Resolver) lookupByVirtualHost(ctx context.Context, vhost string) (*Tenant, bool) {
	if r.Cache != nil {
		if t, ok := r.Cache.Get(ctx, "vhost:"+vhost); ok {
			return t, true
		}
	}
	t, err := r.Store.GetTenantByVirtualHost(ctx, vhost)
	if err != nil || t == nil || !t.IsActive {
		return nil, false
	}
	if r.Cache != nil {
		r.Cache.Set(ctx, "vhost:"+vhost, *t)
	}
	return t, true
}

func (r *Resolver) lookupBySubdomain(ctx context.Context, sub string) (*Tenant, bool) {
	if r.Cache != nil {
		if t, ok := r.Cache.Get(ctx, "sub:"+sub); ok {
			return t, true
		}
	}
	t, err := r.Store.GetTenantBySubdomain(ctx, sub)
	if err != nil || t == nil || !t.IsActive {
		return nil, false
	}
	if r.Cache != nil {
		r.Cache.Set(ctx, "sub:"+sub, *t)
	}
	return t, true
}

// AnonymousPrincipalID marks the synthetic Principal returned by
// ResolvePrincipal when a tokenless request is allowed through to an
// auth-optional discovery operation.
const AnonymousPrincipalID = "anonymous"

// ResolvePrincipal implements §4.1's precedence: when a tenant is
// already known, the principal (or admin token) is looked up strictly
// within that tenant. A global cross-tenant lookup is only attempted
// when the caller passes an empty tenantID, and even then the returned
// principal's own tenant becomes the request's tenant context — it is
// never allowed to silently diverge from a tenant already detected from
// headers (enforced by the caller, BuildContext, not here).
//
// allowAnonymous only relaxes the missing-token case: a token that is
// present but invalid is always rejected, anonymous or not (spec.md's
// "if token present but invalid -> reject; if absent -> serve
// anonymous catalog").
func (r *Resolver) ResolvePrincipal(ctx context.Context, token string, t *Tenant, allowAnonymous bool) (*Principal, *adcp.Error) {
	if token == "" {
		if allowAnonymous && t != nil {
			return &Principal{PrincipalID: AnonymousPrincipalID, TenantID: t.TenantID}, nil
		}
		return nil, &adcp.Error{Code: adcp.CodeAuthentication, Message: "missing auth token", Severity: adcp.SeverityError}
	}

	if t != nil {
		p, err := r.Store.LookupByToken(ctx, t.TenantID, token)
		if err == nil && p != nil {
			return p, nil
		}
		if token == t.AdminToken {
			return &Principal{PrincipalID: fmt.Sprintf("admin_%s", t.TenantID), TenantID: t.TenantID}, nil
		}
		return nil, &adcp.Error{Code: adcp.CodePrincipalNotInTenant, Message: "token is not valid for the detected tenant", Severity: adcp.SeverityError}
	}

	p, err := r.Store.LookupGlobalByToken(ctx, token)
	if err != nil || p == nil {
		return nil, &adcp.Error{Code: adcp.CodeAuthentication, Message: "invalid token", Severity: adcp.SeverityError}
	}
	return p, nil
}

// BuildContext constructs the immutable ToolContext for one request. It
// must succeed with both a tenant and principal or return an error; it
// never falls back to a default tenant (§4.1 invariant 1), and it never
// accepts a principal whose tenant differs from the detected tenant
// (§4.1 invariant 2).
func (r *Resolver) BuildContext(ctx context.Context, token string, headers http.Header, toolName, contextID string, allowAnonymous bool) (*adcp.ToolContext, *adcp.Error) {
	t, tErr := r.ResolveTenant(ctx, headers)
	if tErr != nil {
		return nil, tErr
	}
	return r.BuildContextForTenant(ctx, token, t, toolName, contextID, allowAnonymous)
}

// BuildContextForTenant completes ToolContext construction once the
// tenant is already resolved, letting a caller (the MCP bridge) resolve
// the tenant once per connection and defer the token/allowAnonymous
// decision until the specific operation being invoked is known.
func (r *Resolver) BuildContextForTenant(ctx context.Context, token string, t *Tenant, toolName, contextID string, allowAnonymous bool) (*adcp.ToolContext, *adcp.Error) {
	p, pErr := r.ResolvePrincipal(ctx, token, t, allowAnonymous)
	if pErr != nil {
		return nil, pErr
	}

	if p.TenantID != t.TenantID {
		return nil, &adcp.Error{Code: adcp.CodePrincipalNotInTenant, Message: "principal does not belong to the detected tenant", Severity: adcp.SeverityError}
	}

	if contextID == "" {
		contextID = uuid.NewString()
	}

	return &adcp.ToolContext{
		ContextID:        contextID,
		TenantID:         t.TenantID,
		PrincipalID:      p.PrincipalID,
		ToolName:         toolName,
		RequestTimestamp: time.Now().UTC(),
		Metadata:         map[string]string{},
	}, nil
}
