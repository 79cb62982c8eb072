package mcpbridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagent-dev/adcp-sales-agent/internal/adapter"
	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
	"github.com/kagent-dev/adcp-sales-agent/internal/skills"
	"github.com/kagent-dev/adcp-sales-agent/internal/tenant"
)

type fakeStore struct {
	tenants    map[string]*tenant.Tenant
	principals map[string]*tenant.Principal
}

func (f *fakeStore) LookupByToken(_ context.Context, tenantID, token string) (*tenant.Principal, error) {
	p, ok := f.principals[token]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return p, nil
}
func (f *fakeStore) LookupGlobalByToken(_ context.Context, token string) (*tenant.Principal, error) {
	return f.principals[token], nil
}
func (f *fakeStore) GetTenant(_ context.Context, id string) (*tenant.Tenant, error) { return f.tenants[id], nil }
func (f *fakeStore) GetTenantBySubdomain(_ context.Context, sub string) (*tenant.Tenant, error) {
	return f.tenants[sub], nil
}
func (f *fakeStore) GetTenantByVirtualHost(_ context.Context, vhost string) (*tenant.Tenant, error) {
	return nil, nil
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store := &fakeStore{
		tenants:    map[string]*tenant.Tenant{"wonder": {TenantID: "wonder", Subdomain: "wonder", IsActive: true}},
		principals: map[string]*tenant.Principal{"T1": {PrincipalID: "p1", TenantID: "wonder", AccessToken: "T1"}},
	}
	resolver := tenant.NewResolver(store, nil)

	catalog := adapter.NewInMemoryCatalog()
	catalog.Seed("wonder", []adcp.Product{{ProductID: "prod_1", Name: "Sports Pre-roll", PropertyTags: []string{"sports"}}})

	registry := skills.NewRegistry(logr.Discard(), adapter.NewInMemoryAdapter(), catalog, adapter.NewInMemoryFormatRegistry(), adapter.NewInMemorySignalsProvider())
	return New(logr.Discard(), resolver, registry)
}

func wonderConnContext(token string) context.Context {
	wonder := &tenant.Tenant{TenantID: "wonder", Subdomain: "wonder", IsActive: true}
	return context.WithValue(context.Background(), connCtxKey{}, connContext{tenant: wonder, token: token})
}

func TestInvoke_GetProductsReturnsSeededProduct(t *testing.T) {
	h := newTestHandler(t)
	ctx := wonderConnContext("T1")

	result, out, err := h.invoke(ctx, "get_products", map[string]any{"brief": "pre-roll"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.NotNil(t, out)
	assert.Len(t, out["products"], 1)
}

func TestInvoke_UnknownSkillReturnsToolError(t *testing.T) {
	h := newTestHandler(t)
	ctx := wonderConnContext("T1")

	result, _, err := h.invoke(ctx, "not_a_real_skill", map[string]any{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestInvoke_AnonymousAllowedForDiscoveryOperation(t *testing.T) {
	h := newTestHandler(t)
	ctx := wonderConnContext("")

	result, out, err := h.invoke(ctx, "get_products", map[string]any{"brief": "pre-roll"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.NotNil(t, out)
}

func TestInvoke_MissingTokenRejectedForNonDiscoveryOperation(t *testing.T) {
	h := newTestHandler(t)
	ctx := wonderConnContext("")

	result, _, err := h.invoke(ctx, "create_media_buy", map[string]any{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServeHTTP_UnknownTenantReturnsNotFound(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/mcp/", nil)
	req.Host = "nosuchtenant.sales-agent.example.com"
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
