package adcp

import "time"

// ToolContext is the explicit, immutable per-request carrier that
// replaces thread-local / contextvar request state. It is built once by
// the Auth & Tenant Resolver and passed by value (or pointer-to-const)
// into every handler; no handler may mutate it.
type ToolContext struct {
	ContextID        string
	TenantID         string
	PrincipalID      string
	ToolName         string
	RequestTimestamp time.Time
	Metadata         map[string]string
	TestingContext   *TestingContext
}

// TestingContext carries optional dry-run/time-override hooks used by
// conformance suites; it is never populated from untrusted input in
// production.
type TestingContext struct {
	DryRun          bool
	FrozenTime      *time.Time
	SkipAdapterCall bool
}

// Valid reports whether the context has both a tenant and principal,
// the invariant every handler may assume on entry.
func (c *ToolContext) Valid() bool {
	return c != nil && c.TenantID != "" && c.PrincipalID != ""
}
