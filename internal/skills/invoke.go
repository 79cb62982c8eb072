package skills

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

// ErrUnknownSkill signals a protocol-level "no such operation" fault —
// the A2A dispatcher maps it to JSON-RPC MethodNotFound, the MCP
// bridge maps it to a tool-call error.
type ErrUnknownSkill struct{ Name string }

func (e ErrUnknownSkill) Error() string { return fmt.Sprintf("unknown skill %q", e.Name) }

// Invoke is the one seam every transport (A2A explicit-skill DataPart,
// A2A natural-language routing, and the MCP bridge) dispatches
// through, so all three share the identical FromWire/ToWire coercion
// and error-mapping surface (SPEC_FULL §4.2, §9 transport parity).
func Invoke(ctx context.Context, reg *Registry, name string, input map[string]any, toolCtx *adcp.ToolContext) (map[string]any, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid input: %w", name, err)
	}

	switch name {
	case "get_products":
		var req adcp.GetProductsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("get_products: %w", err)
		}
		resp, err := reg.GetProducts(ctx, req, toolCtx)
		if err != nil {
			return nil, err
		}
		return resp.ToWire(), nil

	case "list_authorized_properties":
		var req adcp.ListAuthorizedPropertiesRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("list_authorized_properties: %w", err)
		}
		resp, err := reg.ListAuthorizedProperties(ctx, req, toolCtx)
		if err != nil {
			return nil, err
		}
		return resp.ToWire(), nil

	case "list_creative_formats":
		var req adcp.ListCreativeFormatsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("list_creative_formats: %w", err)
		}
		resp, err := reg.ListCreativeFormats(ctx, req, toolCtx)
		if err != nil {
			return nil, err
		}
		return resp.ToWire(), nil

	case "create_media_buy":
		req, warnings, err := adcp.FromWireCreateMediaBuyRequest(raw)
		if err != nil {
			return nil, fmt.Errorf("create_media_buy: %w", err)
		}
		resp, err := reg.CreateMediaBuy(ctx, *req, toolCtx)
		if err != nil {
			return nil, err
		}
		out := resp.ToWire()
		if len(warnings) > 0 {
			out["_warnings"] = warnings
		}
		return out, nil

	case "update_media_buy":
		req, warnings, err := adcp.FromWireUpdateMediaBuyRequest(raw)
		if err != nil {
			return nil, fmt.Errorf("update_media_buy: %w", err)
		}
		resp, err := reg.UpdateMediaBuy(ctx, *req, toolCtx)
		if err != nil {
			return nil, err
		}
		out := resp.ToWire()
		if len(warnings) > 0 {
			out["_warnings"] = warnings
		}
		return out, nil

	case "get_media_buy_delivery":
		var req adcp.GetMediaBuyDeliveryRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("get_media_buy_delivery: %w", err)
		}
		resp, err := reg.GetMediaBuyDelivery(ctx, req, toolCtx)
		if err != nil {
			return nil, err
		}
		return resp.ToWire(), nil

	case "update_performance_index":
		var req adcp.UpdatePerformanceIndexRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("update_performance_index: %w", err)
		}
		resp, err := reg.UpdatePerformanceIndex(ctx, req, toolCtx)
		if err != nil {
			return nil, err
		}
		return resp.ToWire(), nil

	case "sync_creatives":
		var req adcp.SyncCreativesRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("sync_creatives: %w", err)
		}
		resp, err := reg.SyncCreatives(ctx, req, toolCtx)
		if err != nil {
			return nil, err
		}
		return resp.ToWire(), nil

	case "list_creatives":
		var req adcp.ListCreativesRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("list_creatives: %w", err)
		}
		resp, err := reg.ListCreatives(ctx, req, toolCtx)
		if err != nil {
			return nil, err
		}
		return resp.ToWire(), nil

	case "get_signals":
		var req adcp.GetSignalsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("get_signals: %w", err)
		}
		resp, err := reg.GetSignals(ctx, req, toolCtx)
		if err != nil {
			return nil, err
		}
		return resp.ToWire(), nil

	case "activate_signal":
		signalID, _ := input["signal_id"].(string)
		deliverTo, _ := input["deliver_to"].(map[string]any)
		resp, err := reg.ActivateSignal(ctx, signalID, deliverTo, toolCtx)
		if err != nil {
			return nil, err
		}
		return resp.ToWire(), nil

	default:
		return nil, ErrUnknownSkill{Name: name}
	}
}
