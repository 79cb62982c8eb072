package skills

import (
	"sync"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

// creativeStore holds synced creatives per tenant, keyed by
// creative_id, so list_creatives can serve back what sync_creatives
// accepted.
type creativeStore struct {
	mu    sync.Mutex
	byKey map[string]adcp.Creative // tenant_id/creative_id -> creative
}

func newCreativeStore() *creativeStore {
	return &creativeStore{byKey: make(map[string]adcp.Creative)}
}

func creativeKey(tenantID, creativeID string) string {
	return tenantID + "/" + creativeID
}

func (s *creativeStore) put(tenantID string, c adcp.Creative) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[creativeKey(tenantID, c.CreativeID)] = c
}

func (s *creativeStore) delete(tenantID, creativeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byKey, creativeKey(tenantID, creativeID))
}

func (s *creativeStore) list(tenantID string) []adcp.Creative {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := tenantID + "/"
	var out []adcp.Creative
	for k, c := range s.byKey {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}
