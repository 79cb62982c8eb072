package dispatcher

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
	"github.com/kagent-dev/adcp-sales-agent/internal/pushconfig"
)

type pushConfigParams struct {
	ID             string           `json:"id,omitempty"`
	URL            string           `json:"url,omitempty"`
	Authentication *webhookAuthWire `json:"authentication,omitempty"`
}

func (d *Dispatcher) handlePushConfigSet(w http.ResponseWriter, ctx context.Context, id string, rawParams json.RawMessage, toolCtx *adcp.ToolContext) {
	var params pushConfigParams
	if err := json.Unmarshal(rawParams, &params); err != nil || params.URL == "" {
		writeJSON(w, errorResponse(id, codeInvalidParams, "url is required"))
		return
	}
	if params.ID == "" {
		params.ID = "pnc_" + uuid.NewString()
	}

	cfg := pushconfig.Config{
		TenantID:    toolCtx.TenantID,
		PrincipalID: toolCtx.PrincipalID,
		ID:          params.ID,
		URL:         params.URL,
	}
	if params.Authentication != nil {
		if len(params.Authentication.Schemes) > 0 {
			cfg.AuthenticationType = params.Authentication.Schemes[0]
		}
		cfg.AuthenticationToken = params.Authentication.Credentials
	}

	saved, err := d.Configs.Set(ctx, cfg)
	if err != nil {
		writeJSON(w, errorResponse(id, codeInternalError, err.Error()))
		return
	}
	writeJSON(w, resultResponse(id, saved.ToWire()))
}

func (d *Dispatcher) handlePushConfigGet(w http.ResponseWriter, ctx context.Context, id string, rawParams json.RawMessage, toolCtx *adcp.ToolContext) {
	var params struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rawParams, &params); err != nil || params.ID == "" {
		writeJSON(w, errorResponse(id, codeInvalidParams, "id is required"))
		return
	}
	cfg, err := d.Configs.Get(ctx, toolCtx.TenantID, toolCtx.PrincipalID, params.ID)
	if err != nil {
		writeJSON(w, errorResponse(id, codeInternalError, err.Error()))
		return
	}
	if cfg == nil {
		writeJSON(w, errorResponse(id, codeInvalidParams, "push notification config not found"))
		return
	}
	writeJSON(w, resultResponse(id, cfg.ToWire()))
}

func (d *Dispatcher) handlePushConfigList(w http.ResponseWriter, ctx context.Context, id string, toolCtx *adcp.ToolContext) {
	list, err := d.Configs.List(ctx, toolCtx.TenantID, toolCtx.PrincipalID)
	if err != nil {
		writeJSON(w, errorResponse(id, codeInternalError, err.Error()))
		return
	}
	wire := make([]map[string]any, len(list))
	for i, cfg := range list {
		wire[i] = cfg.ToWire()
	}
	writeJSON(w, resultResponse(id, wire))
}

func (d *Dispatcher) handlePushConfigDelete(w http.ResponseWriter, ctx context.Context, id string, rawParams json.RawMessage, toolCtx *adcp.ToolContext) {
	var params struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rawParams, &params); err != nil || params.ID == "" {
		writeJSON(w, errorResponse(id, codeInvalidParams, "id is required"))
		return
	}
	if err := d.Configs.Delete(ctx, toolCtx.TenantID, toolCtx.PrincipalID, params.ID); err != nil {
		writeJSON(w, errorResponse(id, codeInternalError, err.Error()))
		return
	}
	writeJSON(w, resultResponse(id, map[string]any{"id": params.ID, "deleted": true}))
}
