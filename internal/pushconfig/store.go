package pushconfig

import "context"

// Store is the interface the A2A Dispatcher's pushNotificationConfig
// CRUD methods consume. Two implementations satisfy it: an in-memory
// store (tests, single-instance dev) and a pgx-backed one (production,
// the "simple persistent table" the spec calls for in §4.4/§6).
type Store interface {
	Set(ctx context.Context, cfg Config) (Config, error)
	Get(ctx context.Context, tenantID, principalID, id string) (*Config, error)
	List(ctx context.Context, tenantID, principalID string) ([]Config, error)
	Delete(ctx context.Context, tenantID, principalID, id string) error
}
