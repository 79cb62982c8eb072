package skills

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

func validCreateMediaBuyRequest() adcp.CreateMediaBuyRequest {
	return adcp.CreateMediaBuyRequest{
		BuyerRef:  "nike_q1",
		StartTime: time.Now().Add(24 * time.Hour),
		EndTime:   time.Now().Add(48 * time.Hour),
		Budget:    adcp.Budget{Total: 5000, Currency: "USD"},
		Packages: []adcp.Package{
			{BuyerRef: "pkg1", ProductID: "prod_sports_video", Budget: adcp.Budget{Total: 5000, Currency: "USD"}},
		},
	}
}

func TestCreateMediaBuy_Succeeds(t *testing.T) {
	r := newTestRegistry()
	req := validCreateMediaBuyRequest()
	resp, err := r.CreateMediaBuy(context.Background(), req, testToolCtx())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.MediaBuyID)
	require.Len(t, resp.Packages, 1)
	assert.NotEmpty(t, resp.Packages[0].PackageID)
	assert.Empty(t, resp.Errors)
}

func TestCreateMediaBuy_PastStartTimeFails(t *testing.T) {
	r := newTestRegistry()
	req := validCreateMediaBuyRequest()
	req.StartTime = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	resp, err := r.CreateMediaBuy(context.Background(), req, testToolCtx())
	require.NoError(t, err)
	assert.Empty(t, resp.MediaBuyID)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, adcp.CodeValidation, resp.Errors[0].Code)
	assert.Contains(t, resp.Errors[0].Message, "past")
	require.Len(t, resp.Packages, 1)
	assert.NotEmpty(t, resp.Packages[0].PackageID)
}

func TestCreateMediaBuy_EndBeforeStartFails(t *testing.T) {
	r := newTestRegistry()
	req := validCreateMediaBuyRequest()
	req.EndTime = req.StartTime.Add(-time.Hour)
	resp, err := r.CreateMediaBuy(context.Background(), req, testToolCtx())
	require.NoError(t, err)
	assert.Empty(t, resp.MediaBuyID)
	require.NotEmpty(t, resp.Errors)
	found := false
	for _, e := range resp.Errors {
		if e.Field == "end_time" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCreateMediaBuy_NonPositiveBudgetFails(t *testing.T) {
	r := newTestRegistry()
	req := validCreateMediaBuyRequest()
	req.Budget = adcp.Budget{Total: 0, Currency: "USD"}
	resp, err := r.CreateMediaBuy(context.Background(), req, testToolCtx())
	require.NoError(t, err)
	assert.Empty(t, resp.MediaBuyID)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, "budget", resp.Errors[0].Field)
}

func TestCreateMediaBuy_EmptyPackagesFails(t *testing.T) {
	r := newTestRegistry()
	req := validCreateMediaBuyRequest()
	req.Packages = nil
	resp, err := r.CreateMediaBuy(context.Background(), req, testToolCtx())
	require.NoError(t, err)
	assert.Empty(t, resp.MediaBuyID)
	require.NotEmpty(t, resp.Errors)
}

func TestCreateMediaBuy_UnresolvableProductFails(t *testing.T) {
	r := newTestRegistry()
	req := validCreateMediaBuyRequest()
	req.Packages[0].ProductID = "does_not_exist"
	resp, err := r.CreateMediaBuy(context.Background(), req, testToolCtx())
	require.NoError(t, err)
	assert.Empty(t, resp.MediaBuyID)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, adcp.CodeProductNotFound, resp.Errors[0].Code)
}

func TestCreateMediaBuy_UnsupportedPricingModelFails(t *testing.T) {
	r := newTestRegistry()
	req := validCreateMediaBuyRequest()
	req.Packages[0].PricingModel = adcp.PricingCPP
	resp, err := r.CreateMediaBuy(context.Background(), req, testToolCtx())
	require.NoError(t, err)
	assert.Empty(t, resp.MediaBuyID)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, adcp.CodePricingModelUnsupported, resp.Errors[0].Code)
	assert.Contains(t, resp.Errors[0].Message, "cpp")
}

func TestCreateMediaBuy_SupportedPricingModelSucceeds(t *testing.T) {
	r := newTestRegistry()
	req := validCreateMediaBuyRequest()
	req.Packages[0].PricingModel = adcp.PricingCPM
	resp, err := r.CreateMediaBuy(context.Background(), req, testToolCtx())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.MediaBuyID)
	assert.Empty(t, resp.Errors)
}
