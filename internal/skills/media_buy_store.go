package skills

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

// mediaBuyRecord is the server-side state backing one media buy across
// create/update/delivery calls. It is scoped by tenant at lookup time;
// the map key embeds the tenant id so two tenants can never collide on
// a generated id.
type mediaBuyRecord struct {
	MediaBuyID string
	TenantID   string
	BuyerRef   string
	Packages   []adcp.Package
}

type mediaBuyStore struct {
	mu      sync.Mutex
	records map[string]*mediaBuyRecord
}

func newMediaBuyStore() *mediaBuyStore {
	return &mediaBuyStore{records: make(map[string]*mediaBuyRecord)}
}

func mediaBuyKey(tenantID, mediaBuyID string) string {
	return tenantID + "/" + mediaBuyID
}

func (s *mediaBuyStore) create(tenantID, buyerRef string, packages []adcp.Package) *mediaBuyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &mediaBuyRecord{
		MediaBuyID: "mb_" + uuid.NewString(),
		TenantID:   tenantID,
		BuyerRef:   buyerRef,
		Packages:   packages,
	}
	s.records[mediaBuyKey(tenantID, rec.MediaBuyID)] = rec
	return rec
}

func (s *mediaBuyStore) get(tenantID, mediaBuyID string) (*mediaBuyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[mediaBuyKey(tenantID, mediaBuyID)]
	return rec, ok
}

func (s *mediaBuyStore) update(tenantID, mediaBuyID string, packages []adcp.Package) (*mediaBuyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[mediaBuyKey(tenantID, mediaBuyID)]
	if !ok {
		return nil, false
	}
	if len(packages) > 0 {
		rec.Packages = packages
	}
	return rec, true
}
