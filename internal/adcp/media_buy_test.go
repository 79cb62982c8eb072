package adcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromWireCreateMediaBuyRequest_LegacyFieldCompatibility(t *testing.T) {
	raw := []byte(`{
		"product_ids": ["prod_1"],
		"start_date": "2099-02-01",
		"end_date": "2099-02-28",
		"total_budget": 5000,
		"currency": "USD"
	}`)

	req, warnings, err := FromWireCreateMediaBuyRequest(raw)
	require.NoError(t, err)
	require.NotEmpty(t, warnings)

	require.Len(t, req.Packages, 1)
	assert.Equal(t, "prod_1", req.Packages[0].ProductID)
	assert.Equal(t, "2099-02-01T00:00:00Z", req.StartTime.Format("2006-01-02T15:04:05Z07:00"))
	assert.Equal(t, "2099-02-28T00:00:00Z", req.EndTime.Format("2006-01-02T15:04:05Z07:00"))
	assert.Equal(t, 5000.0, req.Budget.Total)
	assert.Equal(t, "USD", req.Budget.Currency)
}

func TestFromWireCreateMediaBuyRequest_RoundTripFixedPoint(t *testing.T) {
	legacy := []byte(`{
		"product_ids": ["prod_1"],
		"start_date": "2099-02-01",
		"end_date": "2099-02-28",
		"total_budget": 5000,
		"currency": "USD"
	}`)

	req, _, err := FromWireCreateMediaBuyRequest(legacy)
	require.NoError(t, err)

	resp := CreateMediaBuyResponse{
		MediaBuyID: "mb_1",
		Packages: []Package{{
			PackageID: "pkg1",
			ProductID: req.Packages[0].ProductID,
			Budget:    req.Budget,
		}},
	}
	wire, err := json.Marshal(resp.ToWire())
	require.NoError(t, err)
	assert.Contains(t, string(wire), `"start_time"`)
	assert.NotContains(t, string(wire), "total_budget")
	assert.NotContains(t, string(wire), "product_ids")

	canonical := []byte(`{
		"packages": [{"product_id": "prod_1", "budget": {"total": 5000, "currency": "USD"}}],
		"start_time": "2099-02-01T00:00:00Z",
		"end_time": "2099-02-28T00:00:00Z",
		"budget": {"total": 5000, "currency": "USD"}
	}`)
	req2, _, err := FromWireCreateMediaBuyRequest(canonical)
	require.NoError(t, err)
	assert.Equal(t, req.Budget, req2.Budget)
	assert.Equal(t, req.StartTime, req2.StartTime)
}

func TestFromWireCreateMediaBuyRequest_ASAPOnlyOnStart(t *testing.T) {
	raw := []byte(`{"packages":[{"product_id":"p1"}],"start_time":"asap","end_time":"2099-01-01T00:00:00Z","budget":5000}`)
	req, _, err := FromWireCreateMediaBuyRequest(raw)
	require.NoError(t, err)
	assert.True(t, req.StartASAP)

	bad := []byte(`{"packages":[{"product_id":"p1"}],"start_time":"2099-01-01T00:00:00Z","end_time":"asap","budget":5000}`)
	_, _, err = FromWireCreateMediaBuyRequest(bad)
	assert.Error(t, err)
}

func TestBudget_AcceptsThreeShapes(t *testing.T) {
	object, err := json.Marshal(Budget{Total: 5000, Currency: "USD"})
	require.NoError(t, err)
	shapes := [][]byte{
		[]byte(`5000`),
		[]byte(`{"total":5000,"currency":"USD"}`),
		object,
	}
	var results []Budget
	for _, raw := range shapes {
		var b Budget
		require.NoError(t, json.Unmarshal(raw, &b))
		results = append(results, b)
	}
	assert.Equal(t, 5000.0, results[0].Total)
	assert.Equal(t, 5000.0, results[1].Total)
	assert.Equal(t, "USD", results[1].Currency)
	assert.Equal(t, results[1], results[2])
}

func TestFormatID_LegacyStringForm(t *testing.T) {
	var f FormatID
	require.NoError(t, json.Unmarshal([]byte(`"display_300x250"`), &f))
	assert.Equal(t, "display_300x250", f.ID)
	assert.Empty(t, f.AgentURL)

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"agent_url":"","id":"display_300x250"}`, string(out))
}

func TestProduct_ValidateOneOf(t *testing.T) {
	neither := Product{ProductID: "p1"}
	assert.NotNil(t, neither.ValidateOneOf())

	both := Product{ProductID: "p1", Properties: []Property{{Domain: "example.com"}}, PropertyTags: []string{"premium"}}
	assert.NotNil(t, both.ValidateOneOf())

	ok := Product{ProductID: "p1", PropertyTags: []string{"premium"}}
	assert.Nil(t, ok.ValidateOneOf())
}
