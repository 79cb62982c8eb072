package agentcard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagent-dev/adcp-sales-agent/internal/tenant"
)

func TestHandler_UsesIncomingHostHeaderOverRawHost(t *testing.T) {
	h := NewHandler("Sales Agent", "test agent", "1.0.0")
	req := httptest.NewRequest(http.MethodGet, "/.well-known/agent-card.json", nil)
	req.Host = "internal-lb:8080"
	req.Header.Set(tenant.IncomingHostHeader, "wonder.sales-agent.example.com")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var card Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, "https://wonder.sales-agent.example.com/a2a", card.URL)
	assert.NotEmpty(t, card.Skills)
}

func TestHandler_LocalhostUsesHTTP(t *testing.T) {
	h := NewHandler("Sales Agent", "test agent", "1.0.0")
	req := httptest.NewRequest(http.MethodGet, "/.well-known/agent-card.json", nil)
	req.Host = "localhost:8080"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var card Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, "http://localhost:8080/a2a", card.URL)
}
