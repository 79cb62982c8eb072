// Package dispatcher implements the A2A Dispatcher: a hand-rolled
// JSON-RPC 2.0 server over a single /a2a POST endpoint. It owns task
// lifecycle, routes explicit-skill and natural-language messages to
// the Tool/Skill Core, and fires push-notification webhooks on every
// state transition.
package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
	"github.com/kagent-dev/adcp-sales-agent/internal/audit"
	"github.com/kagent-dev/adcp-sales-agent/internal/pushconfig"
	"github.com/kagent-dev/adcp-sales-agent/internal/skills"
	"github.com/kagent-dev/adcp-sales-agent/internal/tenant"
	"github.com/kagent-dev/adcp-sales-agent/internal/webhook"
)

// Dispatcher wires the Auth & Tenant Resolver, the Tool/Skill Core, the
// push-notification config store, and the webhook Service behind one
// HTTP handler.
type Dispatcher struct {
	Log       logr.Logger
	Resolver  *tenant.Resolver
	Skills    *skills.Registry
	Configs   pushconfig.Store
	Webhooks  *webhook.Service
	Audit     *audit.Feed
	tasks     *taskTable
}

func New(log logr.Logger, resolver *tenant.Resolver, registry *skills.Registry, configs pushconfig.Store, webhooks *webhook.Service, auditFeed *audit.Feed, retention time.Duration) *Dispatcher {
	return &Dispatcher{
		Log:      log.WithName("dispatcher"),
		Resolver: resolver,
		Skills:   registry,
		Configs:  configs,
		Webhooks: webhooks,
		Audit:    auditFeed,
		tasks:    newTaskTable(retention),
	}
}

// StartSweeper runs the task-table TTL sweep in the background until
// ctx is canceled.
func (d *Dispatcher) StartSweeper(ctx context.Context) {
	go d.tasks.runSweeper(ctx, time.Minute)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// ServeHTTP implements the single /a2a JSON-RPC entrypoint.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, errorResponse("", codeInvalidRequest, "malformed JSON-RPC request"))
		return
	}
	id := coerceID(req.ID)
	defer func() {
		if rec := recover(); rec != nil {
			d.Log.Error(fmt.Errorf("panic: %v", rec), "handler panicked", "method", req.Method)
			writeJSON(w, errorResponse(id, codeInternalError, "internal error"))
		}
	}()

	// Some clients send message.messageId as a number; rewrite it as a
	// string so it decodes into protocol.Message.
	var envelope map[string]any
	dec := json.NewDecoder(bytes.NewReader(req.Params))
	dec.UseNumber()
	if dec.Decode(&envelope) == nil {
		if msg, ok := envelope["message"].(map[string]any); ok {
			if n, ok := msg["messageId"].(json.Number); ok {
				msg["messageId"] = n.String()
				if b, err := json.Marshal(envelope); err == nil {
					req.Params = b
				}
			}
		}
	}

	// net/http keeps the request host in r.Host rather than r.Header.
	headers := r.Header
	if headers.Get("Host") == "" && r.Host != "" {
		headers = r.Header.Clone()
		headers.Set("Host", r.Host)
	}

	toolCtx, adcpErr := d.Resolver.BuildContext(r.Context(), bearerToken(r), headers, req.Method, "", allowAnonymous(req))
	if adcpErr != nil {
		writeJSON(w, errorResponse(id, codeInvalidRequest, adcpErr.Error()))
		return
	}

	switch req.Method {
	case "message/send":
		d.handleMessageSend(w, r.Context(), id, req.Params, toolCtx, false)
	case "message/stream":
		d.handleMessageSend(w, r.Context(), id, req.Params, toolCtx, true)
	case "tasks/get":
		d.handleTasksGet(w, id, req.Params, toolCtx)
	case "tasks/cancel":
		d.handleTasksCancel(w, id, req.Params, toolCtx)
	case "tasks/pushNotificationConfig/set":
		d.handlePushConfigSet(w, r.Context(), id, req.Params, toolCtx)
	case "tasks/pushNotificationConfig/get":
		d.handlePushConfigGet(w, r.Context(), id, req.Params, toolCtx)
	case "tasks/pushNotificationConfig/list":
		d.handlePushConfigList(w, r.Context(), id, toolCtx)
	case "tasks/pushNotificationConfig/delete":
		d.handlePushConfigDelete(w, r.Context(), id, req.Params, toolCtx)
	default:
		writeJSON(w, errorResponse(id, codeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method)))
	}
}

// allowAnonymous reports whether req may proceed without a principal
// token: only message/send and message/stream can carry an explicit
// skill invocation, and only when every explicit skill named is one of
// spec.md's "Auth optional" discovery operations (§4.2). A
// natural-language message, with no explicit skill to check, always
// requires a token.
func allowAnonymous(req rpcRequest) bool {
	if req.Method != "message/send" && req.Method != "message/stream" {
		return false
	}
	var params sendMessageParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return false
	}
	_, invocations := parseMessage(params.Message)
	if len(invocations) == 0 {
		return false
	}
	for _, inv := range invocations {
		if !skills.AllowsAnonymous(inv.Skill) {
			return false
		}
	}
	return true
}

// hasFatalDomainErrors reports whether a skill result's errors[] (built
// by the response's ToWire) carries a SeverityError entry — the
// §7 rule that a fatal domain error (no media_buy_id, a rejected
// request) fails that artifact even though the handler returned a
// normal (nil-error) result.
func hasFatalDomainErrors(result map[string]any) bool {
	errs, ok := result["errors"].(adcp.Errors)
	if !ok {
		return false
	}
	return errs.HasFatal()
}

func writeJSON(w http.ResponseWriter, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type sendMessageParams struct {
	Message       protocol.Message          `json:"message"`
	Configuration *messageSendConfiguration `json:"configuration,omitempty"`
}

type messageSendConfiguration struct {
	PushNotificationConfig *pushConfigWire `json:"pushNotificationConfig,omitempty"`
}

type pushConfigWire struct {
	URL            string                  `json:"url"`
	Authentication *webhookAuthWire        `json:"authentication,omitempty"`
}

type webhookAuthWire struct {
	Schemes     []string `json:"schemes"`
	Credentials string   `json:"credentials"`
}

func (d *Dispatcher) handleMessageSend(w http.ResponseWriter, ctx context.Context, id string, rawParams json.RawMessage, toolCtx *adcp.ToolContext, stream bool) {
	var params sendMessageParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		writeJSON(w, errorResponse(id, codeInvalidParams, "invalid message/send params"))
		return
	}

	taskID := uuid.NewString()
	if params.Message.TaskID != nil && *params.Message.TaskID != "" {
		taskID = *params.Message.TaskID
	}
	contextID := toolCtx.ContextID

	text, invocations := parseMessage(params.Message)

	rec := &taskRecord{
		ID:          taskID,
		ContextID:   contextID,
		TenantID:    toolCtx.TenantID,
		PrincipalID: toolCtx.PrincipalID,
		Status:      protocol.TaskStatus{State: protocol.TaskStateWorking, Timestamp: time.Now().UTC().Format(time.RFC3339)},
		History:     []protocol.Message{params.Message},
		Metadata:    map[string]any{"request_text": text},
		CreatedAt:   time.Now().UTC(),
	}
	if len(invocations) > 0 {
		rec.Metadata["invocation_type"] = "explicit_skill"
		names := make([]string, len(invocations))
		for i, inv := range invocations {
			names[i] = inv.Skill
		}
		rec.Metadata["skills_requested"] = names
	} else {
		rec.Metadata["invocation_type"] = "natural_language"
	}
	if params.Configuration != nil && params.Configuration.PushNotificationConfig != nil {
		pc := params.Configuration.PushNotificationConfig
		rec.PushConfig = &inlinePushConfig{URL: pc.URL}
		if pc.Authentication != nil {
			rec.PushConfig.AuthSchemes = pc.Authentication.Schemes
			rec.PushConfig.AuthCredential = pc.Authentication.Credentials
		}
		rec.Metadata["push_notification_config"] = pc.URL
	}
	d.tasks.put(rec)
	d.dispatchWebhook(ctx, rec, "working", nil, "")

	var artifacts []protocol.Artifact
	var anySucceeded, anyFailed bool

	if len(invocations) > 0 {
		for _, inv := range invocations {
			result, err := callSkill(ctx, d.Skills, inv.Skill, inv.Input, toolCtx)
			artifact := protocol.Artifact{ArtifactID: artifactResultID(inv.Skill)}
			if err != nil {
				anyFailed = true
				if _, unknown := err.(skills.ErrUnknownSkill); unknown {
					writeJSON(w, errorResponse(id, codeMethodNotFound, err.Error()))
					return
				}
				artifact.Parts = []protocol.Part{dataPart(map[string]any{"error": err.Error()})}
			} else if hasFatalDomainErrors(result) {
				anyFailed = true
				artifact.Parts = []protocol.Part{dataPart(result)}
			} else {
				anySucceeded = true
				artifact.Parts = []protocol.Part{dataPart(result)}
			}
			artifacts = append(artifacts, artifact)
		}
	} else {
		result, category := d.routeNaturalLanguage(ctx, text, toolCtx)
		anySucceeded = true
		artifacts = append(artifacts, protocol.Artifact{
			ArtifactID: artifactResultID(string(category)),
			Parts:      []protocol.Part{dataPart(result)},
		})
	}

	rec.Artifacts = artifacts

	finalState := protocol.TaskStateCompleted
	if anyFailed && !anySucceeded {
		finalState = protocol.TaskStateFailed
	}
	rec.Status = protocol.TaskStatus{State: finalState, Timestamp: time.Now().UTC().Format(time.RFC3339)}
	rec.TerminalAt = time.Now().UTC()
	d.tasks.put(rec)

	d.Audit.Record(audit.Entry{
		TenantID: toolCtx.TenantID, PrincipalID: toolCtx.PrincipalID,
		Operation: "message/send", Success: finalState == protocol.TaskStateCompleted,
	})

	webhookResult := map[string]any{"artifacts": artifacts}
	if finalState == protocol.TaskStateFailed {
		d.dispatchWebhook(ctx, rec, "failed", nil, "one or more skills failed")
	} else {
		d.dispatchWebhook(ctx, rec, "completed", webhookResult, "")
	}

	if stream {
		d.writeStream(w, rec)
		return
	}

	writeJSON(w, resultResponse(id, taskToWire(rec)))
}

// routeNaturalLanguage classifies the concatenated text and produces a
// best-effort result: products discovery actually searches the
// catalog; the other categories return guidance since they have no
// structured arguments to act on (§4.4 routing rule 2).
func (d *Dispatcher) routeNaturalLanguage(ctx context.Context, text string, toolCtx *adcp.ToolContext) (map[string]any, routeCategory) {
	category := routeText(text)
	switch category {
	case categoryProducts:
		resp, err := d.Skills.GetProducts(ctx, adcp.GetProductsRequest{Brief: text}, toolCtx)
		if err != nil {
			return map[string]any{"error": err.Error()}, category
		}
		return resp.ToWire(), category
	case categoryPricing:
		return map[string]any{"message": "Pricing varies by product; call get_products to see pricing_options per product."}, category
	case categoryTargeting:
		return map[string]any{"message": "Targeting is configured via targeting_overlay on create_media_buy."}, category
	case categoryMediaBuy:
		return map[string]any{"message": "To create a media buy, invoke the create_media_buy skill with packages, budget, and flight dates."}, category
	default:
		return map[string]any{"message": "I can help with: get_products, create_media_buy, update_media_buy, get_media_buy_delivery, sync_creatives, list_creatives, list_creative_formats, list_authorized_properties, get_signals, activate_signal, update_performance_index."}, category
	}
}

// artifactResultID names an artifact after the skill/category that
// produced it plus a short unique suffix, so buyer agents can match
// `<skill>_result` without needing a separate name field.
func artifactResultID(label string) string {
	return label + "_result_" + uuid.NewString()[:8]
}

func dataPart(data map[string]any) protocol.Part {
	return &protocol.DataPart{Kind: "data", Data: data}
}

func taskToWire(rec *taskRecord) map[string]any {
	return map[string]any{
		"id":         rec.ID,
		"context_id": rec.ContextID,
		"status":     map[string]any{"state": rec.Status.State, "timestamp": rec.Status.Timestamp},
		"artifacts":  rec.Artifacts,
	}
}

func (d *Dispatcher) handleTasksGet(w http.ResponseWriter, id string, rawParams json.RawMessage, toolCtx *adcp.ToolContext) {
	var params struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rawParams, &params); err != nil || params.ID == "" {
		writeJSON(w, errorResponse(id, codeInvalidParams, "missing task id"))
		return
	}
	rec, ok := d.tasks.get(toolCtx.TenantID, params.ID)
	if !ok {
		writeJSON(w, errorResponse(id, codeInvalidParams, "task not found"))
		return
	}
	writeJSON(w, resultResponse(id, taskToWire(rec)))
}

// handleTasksCancel moves any task that is not already canceled
// (including a completed or failed one) to canceled and fires a
// canceled webhook. It is idempotent: a second cancel on an already
// canceled task returns the same task and fires no additional webhook.
func (d *Dispatcher) handleTasksCancel(w http.ResponseWriter, id string, rawParams json.RawMessage, toolCtx *adcp.ToolContext) {
	var params struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rawParams, &params); err != nil || params.ID == "" {
		writeJSON(w, errorResponse(id, codeInvalidParams, "missing task id"))
		return
	}
	rec, ok := d.tasks.get(toolCtx.TenantID, params.ID)
	if !ok {
		writeJSON(w, errorResponse(id, codeInvalidParams, "task not found"))
		return
	}
	if rec.Status.State == protocol.TaskStateCanceled {
		writeJSON(w, resultResponse(id, taskToWire(rec)))
		return
	}
	rec.Status = protocol.TaskStatus{State: protocol.TaskStateCanceled, Timestamp: time.Now().UTC().Format(time.RFC3339)}
	rec.TerminalAt = time.Now().UTC()
	d.tasks.put(rec)
	d.dispatchWebhook(context.Background(), rec, "canceled", nil, "")
	writeJSON(w, resultResponse(id, taskToWire(rec)))
}

// dispatchWebhook fires a status webhook when the task carries an
// inline push config (message/send time) or the principal has a
// persisted one registered; inline takes precedence (§9).
func (d *Dispatcher) dispatchWebhook(ctx context.Context, rec *taskRecord, status string, result any, errMsg string) {
	if d.Webhooks == nil {
		return
	}
	cfg, ok := d.resolveWebhookConfig(ctx, rec)
	if !ok {
		return
	}
	d.Webhooks.Send(ctx, cfg, rec.ID, "message/send", status, result, errMsg)
}

func (d *Dispatcher) resolveWebhookConfig(ctx context.Context, rec *taskRecord) (webhook.Config, bool) {
	if rec.PushConfig != nil {
		authType := ""
		if len(rec.PushConfig.AuthSchemes) > 0 {
			authType = rec.PushConfig.AuthSchemes[0]
		}
		return webhook.Config{URL: rec.PushConfig.URL, AuthType: authType, AuthCredential: rec.PushConfig.AuthCredential}, true
	}
	if d.Configs == nil {
		return webhook.Config{}, false
	}
	list, err := d.Configs.List(ctx, rec.TenantID, rec.PrincipalID)
	if err != nil || len(list) == 0 {
		return webhook.Config{}, false
	}
	cfg := list[0]
	return webhook.Config{URL: cfg.URL, AuthType: cfg.AuthenticationType, AuthCredential: cfg.AuthenticationToken}, true
}
