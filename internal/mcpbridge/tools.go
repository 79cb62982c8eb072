package mcpbridge

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kagent-dev/adcp-sales-agent/internal/skills"
)

// toolSpec names one AdCP operation exposed as an MCP tool. Every
// entry shares the same Input/Output shape (a raw JSON object) since
// the actual decoding happens inside skills.Invoke, the same seam the
// A2A dispatcher's explicit-skill path uses — see skillcall.go.
type toolSpec struct {
	Skill       string
	Description string
}

var toolSpecs = []toolSpec{
	{"get_products", "Search the publisher's product catalog against a brief and optional filters."},
	{"list_authorized_properties", "List the advertising properties this tenant is authorized to sell against."},
	{"list_creative_formats", "List creative formats accepted by the publisher's ad server."},
	{"create_media_buy", "Create a media buy from one or more packages, a budget, and flight dates."},
	{"update_media_buy", "Update an existing media buy's packages, budget, or flight dates."},
	{"get_media_buy_delivery", "Retrieve delivery totals for one or more media buys."},
	{"update_performance_index", "Report a buyer-side performance index back against a media buy."},
	{"sync_creatives", "Upload or update creative assets and their package assignments."},
	{"list_creatives", "List previously synced creatives, optionally filtered and paginated."},
	{"get_signals", "Discover audience signals matching a spec, optionally scoped to a deployment."},
	{"activate_signal", "Activate a discovered signal for delivery."},
}

// registerTool wires one AdCP skill as an MCP tool. Input and Output
// are both raw JSON objects (map[string]any): the real typed decoding
// already happens once, inside skills.Invoke, and duplicating typed
// Input/Output structs per tool here would just be a second copy of
// the same FromWire coercion the A2A path already owns.
func registerTool(server *mcpsdk.Server, h *Handler, spec toolSpec) {
	skillName := spec.Skill
	mcpsdk.AddTool[map[string]any, map[string]any](
		server,
		&mcpsdk.Tool{Name: skillName, Description: spec.Description},
		func(ctx context.Context, req *mcpsdk.CallToolRequest, input map[string]any) (*mcpsdk.CallToolResult, map[string]any, error) {
			return h.invoke(ctx, skillName, input)
		},
	)
}

func (h *Handler) invoke(ctx context.Context, skillName string, input map[string]any) (*mcpsdk.CallToolResult, map[string]any, error) {
	cc, ok := connFromContext(ctx)
	if !ok {
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "missing tenant context"}},
			IsError: true,
		}, nil, nil
	}

	toolCtx, adcpErr := h.Resolver.BuildContextForTenant(ctx, cc.token, cc.tenant, skillName, "", skills.AllowsAnonymous(skillName))
	if adcpErr != nil {
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: adcpErr.Error()}},
			IsError: true,
		}, nil, nil
	}

	out, err := skills.Invoke(ctx, h.Skills, skillName, input, toolCtx)
	if err != nil {
		if _, unknown := err.(skills.ErrUnknownSkill); unknown {
			return &mcpsdk.CallToolResult{
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil, nil
		}
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: fmt.Sprintf("%s failed: %v", skillName, err)}},
			IsError: true,
		}, nil, nil
	}

	text, marshalErr := json.Marshal(out)
	if marshalErr != nil {
		text = []byte("{}")
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(text)}},
	}, out, nil
}
