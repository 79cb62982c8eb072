package dispatcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagent-dev/adcp-sales-agent/internal/adapter"
	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
	"github.com/kagent-dev/adcp-sales-agent/internal/audit"
	"github.com/kagent-dev/adcp-sales-agent/internal/pushconfig"
	"github.com/kagent-dev/adcp-sales-agent/internal/skills"
	"github.com/kagent-dev/adcp-sales-agent/internal/tenant"
	"github.com/kagent-dev/adcp-sales-agent/internal/webhook"
)

type fakeStore struct {
	tenants    map[string]*tenant.Tenant
	byVHost    map[string]*tenant.Tenant
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

func (f *fakeStore) GetTenant(_ context.Context, id string) (*tenant.Tenant, error) {
	return f.tenants[id], nil
}

func (f *fakeStore) GetTenantBySubdomain(_ context.Context, sub string) (*tenant.Tenant, error) {
	return f.tenants[sub], nil
}

func (f *fakeStore) GetTenantByVirtualHost(_ context.Context, vhost string) (*tenant.Tenant, error) {
	return f.byVHost[vhost], nil
}

func newFixtureStore() *fakeStore {
	wonder := &tenant.Tenant{TenantID: "wonder", Subdomain: "wonder", IsActive: true}
	other := &tenant.Tenant{TenantID: "other", Subdomain: "other", IsActive: true}
	return &fakeStore{
		tenants: map[string]*tenant.Tenant{"wonder": wonder, "other": other},
		byVHost: map[string]*tenant.Tenant{"otheragent.example.com": other},
		principals: map[string]*tenant.Principal{
			"T1": {PrincipalID: "p1", TenantID: "wonder", AccessToken: "T1"},
		},
	}
}

func newTestDispatcher(t *testing.T, webhookServer *httptest.Server) *Dispatcher {
	t.Helper()
	resolver := tenant.NewResolver(newFixtureStore(), nil)

	catalog := adapter.NewInMemoryCatalog()
	catalog.Seed("wonder", []adcp.Product{
		{
			ProductID:      "prod_1",
			Name:           "Sports Pre-roll",
			FormatIDs:      []adcp.FormatID{{ID: "video_preroll_15s"}},
			PropertyTags:   []string{"sports"},
			PricingOptions: []adcp.PricingOption{{PricingModel: adcp.PricingCPM, IsFixed: true, Rate: 18, Currency: "USD"}},
		},
	})
	registry := skills.NewRegistry(logr.Discard(), adapter.NewInMemoryAdapter(), catalog, adapter.NewInMemoryFormatRegistry(), adapter.NewInMemorySignalsProvider())

	configs := pushconfig.NewMemoryStore()
	if webhookServer != nil {
		_, _ = configs.Set(context.Background(), pushconfig.Config{
			TenantID: "wonder", PrincipalID: "p1", ID: "pnc1", URL: webhookServer.URL,
			AuthenticationType: "HMAC-SHA256", AuthenticationToken: "s3cret",
		})
	}

	wh := webhook.NewService(logr.Discard(), 2, nil)
	auditFeed := audit.NewFeed(logr.Discard(), nil)

	return New(logr.Discard(), resolver, registry, configs, wh, auditFeed, time.Hour)
}

func rpcPost(t *testing.T, d *Dispatcher, method string, params any, token, host string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0", "id": "1", "method": method, "params": params,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/a2a", strings.NewReader(string(body)))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Host = host

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp rpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error, "unexpected rpc error: %+v", resp.Error)
	out, ok := resp.Result.(map[string]any)
	require.True(t, ok, "result is not an object: %v", resp.Result)
	return out
}

func TestMessageSend_NaturalLanguageProductsQuery(t *testing.T) {
	d := newTestDispatcher(t, nil)
	params := map[string]any{
		"message": map[string]any{
			"messageId": "m1",
			"role":      "user",
			"parts":     []map[string]any{{"kind": "text", "text": "What video ad products do you have available?"}},
		},
	}
	rec := rpcPost(t, d, "message/send", params, "T1", "wonder.sales-agent.example.com")
	assert.Equal(t, http.StatusOK, rec.Code)
	result := decodeResult(t, rec)
	assert.Equal(t, "completed", result["status"].(map[string]any)["state"])
}

func TestMessageSend_ExplicitSkillCreateMediaBuy(t *testing.T) {
	d := newTestDispatcher(t, nil)
	params := map[string]any{
		"message": map[string]any{
			"messageId": "m1",
			"role":      "user",
			"parts": []map[string]any{
				{
					"kind": "data",
					"data": map[string]any{
						"skill": "create_media_buy",
						"input": map[string]any{
							"brand_manifest": map[string]any{"name": "Nike"},
							"buyer_ref":      "nike_q1",
							"packages": []map[string]any{
								{"buyer_ref": "pkg1", "product_id": "prod_1", "budget": map[string]any{"total": 5000, "currency": "USD"}},
							},
							"start_time": "2099-02-01T00:00:00Z",
							"end_time":   "2099-02-28T23:59:59Z",
							"budget":     map[string]any{"total": 5000, "currency": "USD"},
						},
					},
				},
			},
		},
	}
	rec := rpcPost(t, d, "message/send", params, "T1", "wonder.sales-agent.example.com")
	result := decodeResult(t, rec)
	assert.Equal(t, "completed", result["status"].(map[string]any)["state"])
}

func TestMessageSend_TenantIsolationBreach(t *testing.T) {
	d := newTestDispatcher(t, nil)
	params := map[string]any{
		"message": map[string]any{
			"messageId": "m1",
			"role":      "user",
			"parts":     []map[string]any{{"kind": "text", "text": "what products are available"}},
		},
	}
	body, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": "1", "method": "message/send", "params": params})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/a2a", strings.NewReader(string(body)))
	req.Header.Set("Authorization", "Bearer T1")
	req.Header.Set(tenant.IncomingHostHeader, "otheragent.example.com")
	req.Host = "wonder.sales-agent.example.com"

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, req)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidRequest, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, adcp.CodePrincipalNotInTenant)
}

func TestTasksCancel_IsIdempotent(t *testing.T) {
	d := newTestDispatcher(t, nil)
	sendParams := map[string]any{
		"message": map[string]any{
			"messageId": "m1",
			"role":      "user",
			"parts":     []map[string]any{{"kind": "text", "text": "hello"}},
		},
	}
	sendRec := rpcPost(t, d, "message/send", sendParams, "T1", "wonder.sales-agent.example.com")
	sendResult := decodeResult(t, sendRec)
	taskID := sendResult["id"].(string)

	first := decodeResult(t, rpcPost(t, d, "tasks/cancel", map[string]any{"id": taskID}, "T1", "wonder.sales-agent.example.com"))
	second := decodeResult(t, rpcPost(t, d, "tasks/cancel", map[string]any{"id": taskID}, "T1", "wonder.sales-agent.example.com"))
	assert.Equal(t, first["status"], second["status"])
	assert.Equal(t, "canceled", first["status"].(map[string]any)["state"])
}

func TestPushNotificationConfig_SetGetList(t *testing.T) {
	d := newTestDispatcher(t, nil)
	setResult := decodeResult(t, rpcPost(t, d, "tasks/pushNotificationConfig/set", map[string]any{"url": "https://buyer.example.com/hook"}, "T1", "wonder.sales-agent.example.com"))
	id := setResult["id"].(string)
	require.NotEmpty(t, id)

	getResult := decodeResult(t, rpcPost(t, d, "tasks/pushNotificationConfig/get", map[string]any{"id": id}, "T1", "wonder.sales-agent.example.com"))
	assert.Equal(t, "https://buyer.example.com/hook", getResult["url"])

	var listResp rpcResponse
	listRec := rpcPost(t, d, "tasks/pushNotificationConfig/list", map[string]any{}, "T1", "wonder.sales-agent.example.com")
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &listResp))
	require.Nil(t, listResp.Error, "unexpected rpc error: %+v", listResp.Error)
	list, ok := listResp.Result.([]any)
	require.True(t, ok, "list result is not an array: %v", listResp.Result)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].(map[string]any)["id"])
}

func TestMessageSend_AnonymousGetProductsIsServed(t *testing.T) {
	d := newTestDispatcher(t, nil)
	params := map[string]any{
		"message": map[string]any{
			"messageId": "m1",
			"role":      "user",
			"parts": []map[string]any{
				{
					"kind": "data",
					"data": map[string]any{
						"skill": "get_products",
						"input": map[string]any{"brief": "pre-roll", "brand_manifest": map[string]any{"name": "Acme"}},
					},
				},
			},
		},
	}
	rec := rpcPost(t, d, "message/send", params, "", "wonder.sales-agent.example.com")
	result := decodeResult(t, rec)
	assert.Equal(t, "completed", result["status"].(map[string]any)["state"])
}

func TestMessageSend_AnonymousCreateMediaBuyIsRejected(t *testing.T) {
	d := newTestDispatcher(t, nil)
	params := map[string]any{
		"message": map[string]any{
			"messageId": "m1",
			"role":      "user",
			"parts": []map[string]any{
				{
					"kind": "data",
					"data": map[string]any{
						"skill": "create_media_buy",
						"input": map[string]any{},
					},
				},
			},
		},
	}
	rec := rpcPost(t, d, "message/send", params, "", "wonder.sales-agent.example.com")
	var resp rpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidRequest, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, adcp.CodeAuthentication)
}

func TestMessageSend_AnonymousNaturalLanguageIsRejected(t *testing.T) {
	d := newTestDispatcher(t, nil)
	params := map[string]any{
		"message": map[string]any{
			"messageId": "m1",
			"role":      "user",
			"parts":     []map[string]any{{"kind": "text", "text": "what products are available"}},
		},
	}
	rec := rpcPost(t, d, "message/send", params, "", "wonder.sales-agent.example.com")
	var resp rpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidRequest, resp.Error.Code)
}

func TestUnknownMethod_ReturnsMethodNotFound(t *testing.T) {
	d := newTestDispatcher(t, nil)
	rec := rpcPost(t, d, "tasks/doesNotExist", map[string]any{}, "T1", "wonder.sales-agent.example.com")
	var resp rpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)
}
