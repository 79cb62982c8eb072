package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SeedAndLookup(t *testing.T) {
	store := NewMemoryStore()
	store.SeedTenant(Tenant{TenantID: "wonder", Subdomain: "wonder", VirtualHost: "wonder.example.com", IsActive: true})
	store.SeedPrincipal(Principal{PrincipalID: "p1", TenantID: "wonder", AccessToken: "tok-1"})

	ctx := context.Background()

	byID, err := store.GetTenant(ctx, "wonder")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "wonder", byID.TenantID)

	bySub, err := store.GetTenantBySubdomain(ctx, "wonder")
	require.NoError(t, err)
	assert.Equal(t, "wonder", bySub.TenantID)

	byVHost, err := store.GetTenantByVirtualHost(ctx, "wonder.example.com")
	require.NoError(t, err)
	assert.Equal(t, "wonder", byVHost.TenantID)

	p, err := store.LookupByToken(ctx, "wonder", "tok-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "p1", p.PrincipalID)

	wrongTenant, err := store.LookupByToken(ctx, "other", "tok-1")
	require.NoError(t, err)
	assert.Nil(t, wrongTenant)

	global, err := store.LookupGlobalByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", global.PrincipalID)
}
