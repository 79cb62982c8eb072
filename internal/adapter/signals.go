package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

// SignalsProvider is the seat a tenant's audience/contextual signal
// source occupies — typically a data clean room or an audience
// platform reached over its own API.
type SignalsProvider interface {
	Discover(ctx context.Context, spec string, deliverTo, filters map[string]any, max int) ([]adcp.Signal, error)
	Activate(ctx context.Context, signalID string, deliverTo map[string]any) (*adcp.ActivationDetails, error)
}

// InMemorySignalsProvider is a static catalog sufficient for tests and
// for tenants without a real signals integration.
type InMemorySignalsProvider struct {
	mu      sync.Mutex
	signals []adcp.Signal
	active  map[string]bool
}

func NewInMemorySignalsProvider() *InMemorySignalsProvider {
	return &InMemorySignalsProvider{
		signals: []adcp.Signal{
			{
				SignalAgentSegmentID: "auto_intenders",
				Name:                 "Auto Intenders",
				SignalType:           "audience",
				DataProvider:         "first_party",
				CoveragePercentage:   34.2,
				Deployments:          []adcp.SignalDeployment{{Platform: "gam", Status: "available"}},
				Pricing:              adcp.SignalPricing{Model: "cpm", Rate: 2.5},
			},
			{
				SignalAgentSegmentID: "sports_content",
				Name:                 "Sports Content Context",
				SignalType:           "contextual",
				DataProvider:         "first_party",
				CoveragePercentage:   100,
				Deployments:          []adcp.SignalDeployment{{Platform: "gam", Status: "available"}},
				Pricing:              adcp.SignalPricing{Model: "cpm", Rate: 0.5},
			},
		},
		active: make(map[string]bool),
	}
}

func (p *InMemorySignalsProvider) Discover(_ context.Context, spec string, _, _ map[string]any, max int) ([]adcp.Signal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []adcp.Signal
	lower := strings.ToLower(spec)
	for _, s := range p.signals {
		if lower == "" || strings.Contains(strings.ToLower(s.Name), lower) || strings.Contains(strings.ToLower(s.SignalType), lower) {
			out = append(out, s)
		}
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out, nil
}

func (p *InMemorySignalsProvider) Activate(_ context.Context, signalID string, _ map[string]any) (*adcp.ActivationDetails, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	found := false
	for _, s := range p.signals {
		if s.SignalAgentSegmentID == signalID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("adapter: unknown signal %q", signalID)
	}
	p.active[signalID] = true
	return &adcp.ActivationDetails{
		Status:      "activated",
		ActivatedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
