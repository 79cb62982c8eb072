package dispatcher

import (
	"context"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
	"github.com/kagent-dev/adcp-sales-agent/internal/skills"
)

// callSkill is a thin forwarder onto the shared skills.Invoke seam, so
// the A2A explicit-skill path, the natural-language router, and the
// MCP bridge (internal/mcpbridge) all go through one coercion surface.
func callSkill(ctx context.Context, reg *skills.Registry, name string, input map[string]any, toolCtx *adcp.ToolContext) (map[string]any, error) {
	return skills.Invoke(ctx, reg, name, input, toolCtx)
}
