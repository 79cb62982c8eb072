package adapter

import (
	"context"
	"sync"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

// CreativeFormatRegistry is the seat a tenant's creative format
// catalog occupies, independent of the product catalog since formats
// are frequently shared across tenants (the IAB standard set).
type CreativeFormatRegistry interface {
	List(ctx context.Context, filter adcp.FormatFilter) ([]adcp.Format, error)
}

// InMemoryFormatRegistry ships the IAB standard display/video formats
// plus whatever a tenant registers on top.
type InMemoryFormatRegistry struct {
	mu      sync.RWMutex
	formats []adcp.Format
}

func NewInMemoryFormatRegistry() *InMemoryFormatRegistry {
	return &InMemoryFormatRegistry{formats: standardFormats()}
}

func (r *InMemoryFormatRegistry) Register(f adcp.Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats = append(r.formats, f)
}

func (r *InMemoryFormatRegistry) List(_ context.Context, filter adcp.FormatFilter) ([]adcp.Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []adcp.Format
	for _, f := range r.formats {
		if filter.Matches(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

func standardFormats() []adcp.Format {
	return []adcp.Format{
		{FormatID: adcp.FormatID{ID: "display_300x250"}, Name: "Medium Rectangle", Type: "display", Category: "banner", IsStandard: true},
		{FormatID: adcp.FormatID{ID: "display_728x90"}, Name: "Leaderboard", Type: "display", Category: "banner", IsStandard: true},
		{FormatID: adcp.FormatID{ID: "video_preroll_15s"}, Name: "15s Pre-roll", Type: "video", Category: "instream", IsStandard: true},
		{FormatID: adcp.FormatID{ID: "video_preroll_30s"}, Name: "30s Pre-roll", Type: "video", Category: "instream", IsStandard: true},
		{FormatID: adcp.FormatID{ID: "audio_15s"}, Name: "15s Audio Spot", Type: "audio", Category: "streaming", IsStandard: true},
	}
}
