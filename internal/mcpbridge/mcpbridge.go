// Package mcpbridge exposes the same Tool/Skill Core the A2A
// dispatcher uses, wired instead as MCP tools over
// mcpsdk.NewStreamableHTTPHandler, so buyer agents can reach AdCP
// operations over either transport with identical semantics
// (SPEC_FULL §4.3, §9 transport parity).
package mcpbridge

import (
	"context"
	"net/http"

	"github.com/go-logr/logr"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kagent-dev/adcp-sales-agent/internal/skills"
	"github.com/kagent-dev/adcp-sales-agent/internal/tenant"
)

// AuthHeader carries the buyer agent's bearer token on the MCP
// transport, mirroring the A2A transport's Authorization header.
const AuthHeader = "x-adcp-auth"

type connCtxKey struct{}

// connContext carries the one piece of auth state resolved before the
// MCP tool name is known: the tenant (from headers) and the raw token
// (if any). Principal resolution happens per tool call in invoke, once
// the tool name decides whether an absent token is tolerated
// (spec.md's "Auth optional" discovery operations).
type connContext struct {
	tenant *tenant.Tenant
	token  string
}

// Handler bridges MCP tool calls into the shared skills.Registry,
// resolving the tenant for each HTTP request once and deferring
// principal/token authentication to each individual tool call.
type Handler struct {
	Log      logr.Logger
	Resolver *tenant.Resolver
	Skills   *skills.Registry

	server      *mcpsdk.Server
	httpHandler *mcpsdk.StreamableHTTPHandler
}

func New(log logr.Logger, resolver *tenant.Resolver, registry *skills.Registry) *Handler {
	h := &Handler{
		Log:      log.WithName("mcpbridge"),
		Resolver: resolver,
		Skills:   registry,
	}

	impl := &mcpsdk.Implementation{Name: "adcp-sales-agent", Version: "1.0.0"}
	server := mcpsdk.NewServer(impl, nil)
	h.server = server

	for _, spec := range toolSpecs {
		registerTool(server, h, spec)
	}

	h.httpHandler = mcpsdk.NewStreamableHTTPHandler(
		func(*http.Request) *mcpsdk.Server { return server },
		nil,
	)
	return h
}

// ServeHTTP resolves the tenant for the incoming request and stashes
// it (plus the raw token) on the request context, then delegates to
// the MCP SDK's streamable handler. Principal/token authentication is
// deferred to each tool call (see invoke in tools.go) because the
// tenant is all §4.1 routing needs, while the auth-optional decision
// depends on which tool is being called — unknown at this HTTP layer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// net/http keeps the request host in r.Host rather than r.Header.
	headers := r.Header
	if headers.Get("Host") == "" && r.Host != "" {
		headers = r.Header.Clone()
		headers.Set("Host", r.Host)
	}
	t, adcpErr := h.Resolver.ResolveTenant(r.Context(), headers)
	if adcpErr != nil {
		http.Error(w, adcpErr.Error(), http.StatusNotFound)
		return
	}

	token := r.Header.Get(AuthHeader)
	if token == "" {
		token = bearerToken(r)
	}

	ctx := context.WithValue(r.Context(), connCtxKey{}, connContext{tenant: t, token: token})
	h.httpHandler.ServeHTTP(w, r.WithContext(ctx))
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

func connFromContext(ctx context.Context) (connContext, bool) {
	cc, ok := ctx.Value(connCtxKey{}).(connContext)
	return cc, ok
}
