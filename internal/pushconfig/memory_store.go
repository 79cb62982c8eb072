package pushconfig

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is the default Store backend, used whenever
// ADCP_DATABASE_URL is unset. A single mutex serializes writes, which
// is enough to satisfy the "no two concurrent set calls produce two
// active configs with the same id" locking discipline from §5 at
// single-process scale.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]Config // key: tenant_id/principal_id/id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Config)}
}

func key(tenantID, principalID, id string) string {
	return fmt.Sprintf("%s/%s/%s", tenantID, principalID, id)
}

func (s *MemoryStore) Set(_ context.Context, cfg Config) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	k := key(cfg.TenantID, cfg.PrincipalID, cfg.ID)
	if existing, ok := s.data[k]; ok {
		cfg.CreatedAt = existing.CreatedAt
	} else {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now
	if !cfg.IsActive {
		cfg.IsActive = true
	}
	s.data[k] = cfg
	return cfg, nil
}

func (s *MemoryStore) Get(_ context.Context, tenantID, principalID, id string) (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.data[key(tenantID, principalID, id)]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (s *MemoryStore) List(_ context.Context, tenantID, principalID string) ([]Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Config
	prefix := tenantID + "/" + principalID + "/"
	for k, cfg := range s.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix && cfg.IsActive {
			out = append(out, cfg)
		}
	}
	return out, nil
}

// Delete soft-deletes: is_active=false, preserved for audit (§3).
func (s *MemoryStore) Delete(_ context.Context, tenantID, principalID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(tenantID, principalID, id)
	cfg, ok := s.data[k]
	if !ok {
		return nil
	}
	cfg.IsActive = false
	cfg.UpdatedAt = time.Now().UTC()
	s.data[k] = cfg
	return nil
}
