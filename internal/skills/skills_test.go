package skills

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagent-dev/adcp-sales-agent/internal/adapter"
	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

func newTestRegistry() *Registry {
	catalog := adapter.NewInMemoryCatalog()
	catalog.Seed("wonder", []adcp.Product{
		{
			ProductID:      "prod_sports_video",
			Name:           "Sports Pre-roll",
			Description:    "15s pre-roll across sports content",
			FormatIDs:      []adcp.FormatID{{ID: "video_preroll_15s"}},
			PropertyTags:   []string{"sports"},
			PricingOptions: []adcp.PricingOption{{PricingModel: adcp.PricingCPM, IsFixed: true, Rate: 18, Currency: "USD"}},
		},
	})
	return NewRegistry(logr.Discard(), adapter.NewInMemoryAdapter(), catalog, adapter.NewInMemoryFormatRegistry(), adapter.NewInMemorySignalsProvider())
}

func testToolCtx() *adcp.ToolContext {
	return &adcp.ToolContext{TenantID: "wonder", PrincipalID: "p1", ToolName: "test"}
}

func TestGetProducts_MatchesBrief(t *testing.T) {
	r := newTestRegistry()
	resp, err := r.GetProducts(context.Background(), adcp.GetProductsRequest{Brief: "sports"}, testToolCtx())
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "prod_sports_video", resp.Products[0].ProductID)
}

func TestGetProducts_TenantIsolated(t *testing.T) {
	r := newTestRegistry()
	ctx := &adcp.ToolContext{TenantID: "other", PrincipalID: "p1"}
	resp, err := r.GetProducts(context.Background(), adcp.GetProductsRequest{Brief: "sports"}, ctx)
	require.NoError(t, err)
	assert.Empty(t, resp.Products)
}

func TestCreateMediaBuy_CreatesLineItemPerPackage(t *testing.T) {
	r := newTestRegistry()
	req := adcp.CreateMediaBuyRequest{
		BuyerRef: "buyer-1",
		Packages: []adcp.Package{{ProductID: "prod_sports_video", Budget: adcp.Budget{Total: 1000, Currency: "USD"}}},
		Budget:   adcp.Budget{Total: 1000, Currency: "USD"},
	}
	req.StartTime = time.Now().Add(24 * time.Hour)
	req.EndTime = req.StartTime.Add(24 * time.Hour)
	resp, err := r.CreateMediaBuy(context.Background(), req, testToolCtx())
	require.NoError(t, err)
	require.Len(t, resp.Packages, 1)
	assert.NotEmpty(t, resp.MediaBuyID)
	assert.NotEmpty(t, resp.Packages[0].PackageID)
	assert.NotEmpty(t, resp.Packages[0].PlatformLineItemID, "adapter should assign a platform line item")
	assert.Empty(t, resp.Errors)
}

func TestCreateMediaBuy_DryRunSkipsAdapter(t *testing.T) {
	r := newTestRegistry()
	toolCtx := testToolCtx()
	toolCtx.TestingContext = &adcp.TestingContext{SkipAdapterCall: true}
	req := adcp.CreateMediaBuyRequest{
		BuyerRef: "buyer-1",
		Packages: []adcp.Package{{ProductID: "prod_sports_video", Budget: adcp.Budget{Total: 500, Currency: "USD"}}},
	}
	req.Budget = adcp.Budget{Total: 500, Currency: "USD"}
	req.StartTime = time.Now().Add(24 * time.Hour)
	req.EndTime = req.StartTime.Add(24 * time.Hour)
	resp, err := r.CreateMediaBuy(context.Background(), req, toolCtx)
	require.NoError(t, err)
	require.Empty(t, resp.Errors, "request must pass validation to reach the dry-run path")
	require.Len(t, resp.Packages, 1)
	assert.NotEmpty(t, resp.MediaBuyID)
	assert.Empty(t, resp.Packages[0].PlatformLineItemID)
}

func TestUpdateMediaBuy_UnknownMediaBuyReturnsError(t *testing.T) {
	r := newTestRegistry()
	resp, err := r.UpdateMediaBuy(context.Background(), adcp.UpdateMediaBuyRequest{MediaBuyID: "mb_missing"}, testToolCtx())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, adcp.CodeProductNotFound, resp.Errors[0].Code)
}

func TestCreateThenGetDelivery_AggregatesAcrossPackages(t *testing.T) {
	r := newTestRegistry()
	toolCtx := testToolCtx()
	start := time.Now().Add(24 * time.Hour)
	created, err := r.CreateMediaBuy(context.Background(), adcp.CreateMediaBuyRequest{
		BuyerRef:  "buyer-1",
		Packages:  []adcp.Package{{ProductID: "prod_sports_video", Budget: adcp.Budget{Total: 1000, Currency: "USD"}}},
		Budget:    adcp.Budget{Total: 1000, Currency: "USD"},
		StartTime: start,
		EndTime:   start.Add(24 * time.Hour),
	}, toolCtx)
	require.NoError(t, err)

	req := adcp.GetMediaBuyDeliveryRequest{MediaBuyID: created.MediaBuyID}
	resp, err := r.GetMediaBuyDelivery(context.Background(), req, toolCtx)
	require.NoError(t, err)
	require.Len(t, resp.MediaBuyDeliveries, 1)
	assert.Equal(t, created.MediaBuyID, resp.MediaBuyDeliveries[0].MediaBuyID)
	assert.Greater(t, resp.AggregatedTotals.Impressions, int64(0))
}

func TestSyncCreatives_RejectsInvalidSnippet(t *testing.T) {
	r := newTestRegistry()
	resp, err := r.SyncCreatives(context.Background(), adcp.SyncCreativesRequest{
		Creatives: []adcp.Creative{{CreativeID: "cr1", Snippet: "too short"}},
	}, testToolCtx())
	require.NoError(t, err)
	require.Len(t, resp.Creatives, 1)
	assert.Equal(t, "rejected", resp.Creatives[0].Action)
}

func TestSyncThenListCreatives_RoundTrips(t *testing.T) {
	r := newTestRegistry()
	toolCtx := testToolCtx()
	_, err := r.SyncCreatives(context.Background(), adcp.SyncCreativesRequest{
		Creatives: []adcp.Creative{{CreativeID: "cr1", Snippet: "<script>adtag</script>", SnippetType: "html"}},
	}, toolCtx)
	require.NoError(t, err)

	listResp, err := r.ListCreatives(context.Background(), adcp.ListCreativesRequest{}, toolCtx)
	require.NoError(t, err)
	require.Len(t, listResp.Creatives, 1)
	assert.Equal(t, "cr1", listResp.Creatives[0].CreativeID)
}

func TestGetSignals_FiltersBySpec(t *testing.T) {
	r := newTestRegistry()
	resp, err := r.GetSignals(context.Background(), adcp.GetSignalsRequest{SignalSpec: "sports"}, testToolCtx())
	require.NoError(t, err)
	require.Len(t, resp.Signals, 1)
	assert.Equal(t, "sports_content", resp.Signals[0].SignalAgentSegmentID)
}

func TestActivateSignal_UnknownIDErrors(t *testing.T) {
	r := newTestRegistry()
	resp, err := r.ActivateSignal(context.Background(), "does_not_exist", nil, testToolCtx())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Errors)
}
