// Package agentcard serves the A2A agent card: the static skill
// manifest a buyer agent fetches before ever calling /a2a, with the
// agent's own URL computed per-request from the inbound host headers
// so the same process answers correctly behind any tenant subdomain.
package agentcard

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kagent-dev/adcp-sales-agent/internal/tenant"
)

// Skill describes one operation advertised in the agent card.
type Skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// Card is the static template this server publishes, minus the
// request-scoped url field filled in at serve time.
type Card struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Version         string   `json:"version"`
	URL             string   `json:"url"`
	Capabilities    []string `json:"capabilities"`
	Skills          []Skill  `json:"skills"`
	DefaultInputModes  []string `json:"default_input_modes"`
	DefaultOutputModes []string `json:"default_output_modes"`
}

// DefaultSkills enumerates the skills this agent serves, matching the
// Tool/Skill Core's registry one for one.
func DefaultSkills() []Skill {
	return []Skill{
		{ID: "get_products", Name: "Get Products", Description: "Search available advertising inventory", Tags: []string{"discovery"}},
		{ID: "list_creative_formats", Name: "List Creative Formats", Description: "List supported creative formats", Tags: []string{"discovery"}},
		{ID: "list_authorized_properties", Name: "List Authorized Properties", Description: "List properties this agent is authorized to sell", Tags: []string{"discovery"}},
		{ID: "create_media_buy", Name: "Create Media Buy", Description: "Create a new media buy", Tags: []string{"media-buy"}},
		{ID: "update_media_buy", Name: "Update Media Buy", Description: "Update an existing media buy", Tags: []string{"media-buy"}},
		{ID: "get_media_buy_delivery", Name: "Get Media Buy Delivery", Description: "Retrieve delivery metrics for media buys", Tags: []string{"reporting"}},
		{ID: "update_performance_index", Name: "Update Performance Index", Description: "Submit performance feedback for a media buy", Tags: []string{"reporting"}},
		{ID: "sync_creatives", Name: "Sync Creatives", Description: "Create, update, or delete creative assets", Tags: []string{"creative"}},
		{ID: "list_creatives", Name: "List Creatives", Description: "List synced creative assets", Tags: []string{"creative"}},
		{ID: "get_signals", Name: "Get Signals", Description: "Discover audience and contextual signals", Tags: []string{"signals"}},
		{ID: "activate_signal", Name: "Activate Signal", Description: "Activate a discovered signal for deployment", Tags: []string{"signals"}},
	}
}

// Handler serves the agent card at any of the well-known paths.
type Handler struct {
	Name        string
	Description string
	Version     string
	Skills      []Skill
}

func NewHandler(name, description, version string) *Handler {
	return &Handler{Name: name, Description: description, Version: version, Skills: DefaultSkills()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	card := Card{
		Name:               h.Name,
		Description:        h.Description,
		Version:            h.Version,
		URL:                computeURL(r) + "/a2a",
		Capabilities:       []string{"streaming", "push-notifications"},
		Skills:             h.Skills,
		DefaultInputModes:  []string{"text", "data"},
		DefaultOutputModes: []string{"text", "data"},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(card)
}

// computeURL prefers the reverse-proxy-supplied incoming host header
// over the raw Host header, and uses http for local development hosts
// since they are never served over TLS.
func computeURL(r *http.Request) string {
	host := r.Header.Get(tenant.IncomingHostHeader)
	if host == "" {
		host = r.Host
	}
	scheme := "https"
	if strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1") {
		scheme = "http"
	}
	return scheme + "://" + host
}
