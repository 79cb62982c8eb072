// Package skills is the Tool/Skill Core: one handler per AdCP
// operation, each consuming a ToolContext built by the Auth & Tenant
// Resolver and the collaborator interfaces in internal/adapter.
// Handlers never return a Go error for a domain-level failure — those
// are appended to the response's errors[] — and reserve the error
// return for protocol-level faults such as bad JSON. A failing
// collaborator call is reported as an adapter_error entry in errors[].
package skills

import (
	"github.com/go-logr/logr"

	"github.com/kagent-dev/adcp-sales-agent/internal/adapter"
	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

// Registry bundles the collaborators every handler needs. One Registry
// is constructed per process and shared across tenants; per-tenant
// scoping happens through the ToolContext and through collaborator
// implementations that key their own storage by tenant id.
type Registry struct {
	Log       logr.Logger
	AdServer  adapter.AdServerAdapter
	Catalog   adapter.ProductCatalog
	Formats   adapter.CreativeFormatRegistry
	Signals   adapter.SignalsProvider

	mediaBuys *mediaBuyStore
	creatives *creativeStore
}

func NewRegistry(log logr.Logger, adServer adapter.AdServerAdapter, catalog adapter.ProductCatalog, formats adapter.CreativeFormatRegistry, signals adapter.SignalsProvider) *Registry {
	return &Registry{
		Log:       log.WithName("skills"),
		AdServer:  adServer,
		Catalog:   catalog,
		Formats:   formats,
		Signals:   signals,
		mediaBuys: newMediaBuyStore(),
		creatives: newCreativeStore(),
	}
}

// dryRun reports whether the ToolContext's TestingContext asks to skip
// adapter calls (SkipAdapterCall). ADCP_DRY_RUN is not checked here:
// cmd/server installs adapter.DryRunAdapter as the AdServer instead.
func dryRun(toolCtx *adcp.ToolContext) bool {
	return toolCtx != nil && toolCtx.TestingContext != nil && toolCtx.TestingContext.SkipAdapterCall
}

// anonymousSkills is the set of discovery operations the spec tags
// "Auth optional": served from the anonymous catalog when no token is
// present, rejected only when a token is present but invalid.
var anonymousSkills = map[string]bool{
	"get_products":               true,
	"list_creative_formats":      true,
	"list_authorized_properties": true,
}

// AllowsAnonymous reports whether name may be invoked without a
// principal token.
func AllowsAnonymous(name string) bool {
	return anonymousSkills[name]
}
