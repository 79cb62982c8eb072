package tenant

import (
	"context"
	"net/http"
	"testing"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	tenants    map[string]*Tenant
	byVHost    map[string]*Tenant
	bySubdomain map[string]*Tenant
	principals map[string]*Principal // token -> principal
}

func (f *fakeStore) LookupByToken(_ context.Context, tenantID, token string) (*Principal, error) {
	p, ok := f.principals[token]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return p, nil
}

func (f *fakeStore) LookupGlobalByToken(_ context.Context, token string) (*Principal, error) {
	return f.principals[token], nil
}

func (f *fakeStore) GetTenant(_ context.Context, id string) (*Tenant, error) {
	return f.tenants[id], nil
}

func (f *fakeStore) GetTenantBySubdomain(_ context.Context, sub string) (*Tenant, error) {
	return f.bySubdomain[sub], nil
}

func (f *fakeStore) GetTenantByVirtualHost(_ context.Context, vhost string) (*Tenant, error) {
	return f.byVHost[vhost], nil
}

func newFixture() *fakeStore {
	wonder := &Tenant{TenantID: "wonder", Subdomain: "wonder", AdminToken: "admin-secret", IsActive: true}
	other := &Tenant{TenantID: "other", Subdomain: "other", IsActive: true}
	return &fakeStore{
		tenants:     map[string]*Tenant{"wonder": wonder, "other": other},
		bySubdomain: map[string]*Tenant{"wonder": wonder, "other": other},
		byVHost:     map[string]*Tenant{"otheragent.example.com": other},
		principals: map[string]*Principal{
			"T1": {PrincipalID: "p1", TenantID: "wonder", AccessToken: "T1"},
		},
	}
}

func TestBuildContext_HappyPath(t *testing.T) {
	r := NewResolver(newFixture(), nil)
	headers := http.Header{"Host": []string{"wonder.sales-agent.example.com"}}

	ctx, err := r.BuildContext(context.Background(), "T1", headers, "get_products", "", false)
	require.Nil(t, err)
	assert.Equal(t, "wonder", ctx.TenantID)
	assert.Equal(t, "p1", ctx.PrincipalID)
	assert.NotEmpty(t, ctx.ContextID)
}

func TestBuildContext_AnonymousAllowedWhenNoToken(t *testing.T) {
	r := NewResolver(newFixture(), nil)
	headers := http.Header{"Host": []string{"wonder.sales-agent.example.com"}}

	ctx, err := r.BuildContext(context.Background(), "", headers, "get_products", "", true)
	require.Nil(t, err)
	assert.Equal(t, "wonder", ctx.TenantID)
	assert.Equal(t, AnonymousPrincipalID, ctx.PrincipalID)
}

func TestBuildContext_AnonymousNotAllowedForNonDiscoveryOps(t *testing.T) {
	r := NewResolver(newFixture(), nil)
	headers := http.Header{"Host": []string{"wonder.sales-agent.example.com"}}

	_, err := r.BuildContext(context.Background(), "", headers, "create_media_buy", "", false)
	require.NotNil(t, err)
	assert.Equal(t, adcp.CodeAuthentication, err.Code)
}

func TestBuildContext_InvalidTokenRejectedEvenWhenAnonymousAllowed(t *testing.T) {
	r := NewResolver(newFixture(), nil)
	headers := http.Header{"Host": []string{"wonder.sales-agent.example.com"}}

	_, err := r.BuildContext(context.Background(), "not-a-real-token", headers, "get_products", "", true)
	require.NotNil(t, err)
	assert.Equal(t, adcp.CodePrincipalNotInTenant, err.Code)
}

func TestBuildContext_TenantIsolationBreach(t *testing.T) {
	r := NewResolver(newFixture(), nil)
	// Valid token for "wonder", but headers route to "other".
	headers := http.Header{IncomingHostHeader: []string{"otheragent.example.com"}}

	_, err := r.BuildContext(context.Background(), "T1", headers, "get_products", "", false)
	require.NotNil(t, err)
	assert.Equal(t, adcp.CodePrincipalNotInTenant, err.Code)
}

func TestBuildContext_NoFallbackTenant(t *testing.T) {
	r := NewResolver(newFixture(), nil)
	headers := http.Header{"Host": []string{"localhost"}}

	_, err := r.BuildContext(context.Background(), "T1", headers, "get_products", "", false)
	require.NotNil(t, err)
	assert.Equal(t, adcp.CodeTenantDetectionFailed, err.Code)
}

func TestResolvePrincipal_AdminTokenScopedToOwningTenant(t *testing.T) {
	r := NewResolver(newFixture(), nil)
	wonder := &Tenant{TenantID: "wonder", AdminToken: "admin-secret"}
	other := &Tenant{TenantID: "other", AdminToken: "other-secret"}

	p, err := r.ResolvePrincipal(context.Background(), "admin-secret", wonder, false)
	require.Nil(t, err)
	assert.Equal(t, "admin_wonder", p.PrincipalID)

	_, err2 := r.ResolvePrincipal(context.Background(), "admin-secret", other, false)
	require.NotNil(t, err2)
}
