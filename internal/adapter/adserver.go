// Package adapter defines the collaborator interfaces the skill
// handlers call out through, plus the in-memory/dry-run
// implementations this repo ships for tests and for ADCP_DRY_RUN mode.
package adapter

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

// LineItem is the platform-side record an AdServerAdapter creates or
// updates on behalf of a Package.
type LineItem struct {
	PlatformLineItemID string
	ProductID          string
	Budget             adcp.Budget
	Status             string
}

// AdServerAdapter is the seat the ad server platform occupies.
// Implementations talk to GAM, Kevel, a mock, or whatever the deployed
// tenant is wired to; the core never assumes a specific platform.
type AdServerAdapter interface {
	CreateLineItem(ctx context.Context, pkg adcp.Package) (LineItem, error)
	UpdateLineItem(ctx context.Context, platformLineItemID string, pkg adcp.Package) (LineItem, error)
	GetDelivery(ctx context.Context, platformLineItemID string) (adcp.DeliveryTotals, error)
	SupportedPricingModels() []adcp.PricingModel
}

// DryRunAdapter is installed by cmd/server when ADCP_DRY_RUN=true
// (TestingContext.DryRun does not select it): it performs no network
// calls and echoes back synthetic platform ids, letting buyer agents
// exercise the full AdCP flow against a sandboxed tenant.
type DryRunAdapter struct {
	seq atomic.Int64
}

func NewDryRunAdapter() *DryRunAdapter { return &DryRunAdapter{} }

func (a *DryRunAdapter) CreateLineItem(_ context.Context, pkg adcp.Package) (LineItem, error) {
	id := fmt.Sprintf("dryrun-li-%d", a.seq.Add(1))
	return LineItem{PlatformLineItemID: id, ProductID: pkg.ProductID, Budget: pkg.Budget, Status: "active"}, nil
}

func (a *DryRunAdapter) UpdateLineItem(_ context.Context, platformLineItemID string, pkg adcp.Package) (LineItem, error) {
	return LineItem{PlatformLineItemID: platformLineItemID, ProductID: pkg.ProductID, Budget: pkg.Budget, Status: "active"}, nil
}

func (a *DryRunAdapter) GetDelivery(_ context.Context, platformLineItemID string) (adcp.DeliveryTotals, error) {
	return adcp.DeliveryTotals{Impressions: 0, Spend: 0, Clicks: 0}, nil
}

func (a *DryRunAdapter) SupportedPricingModels() []adcp.PricingModel {
	return []adcp.PricingModel{adcp.PricingCPM, adcp.PricingCPP, adcp.PricingCPCV}
}

// InMemoryAdapter is a minimal stateful adapter for tests that need to
// observe what was created/updated without echoing dry-run data.
type InMemoryAdapter struct {
	mu    sync.Mutex
	seq   int
	items map[string]LineItem
}

func NewInMemoryAdapter() *InMemoryAdapter {
	return &InMemoryAdapter{items: make(map[string]LineItem)}
}

func (a *InMemoryAdapter) CreateLineItem(_ context.Context, pkg adcp.Package) (LineItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	li := LineItem{PlatformLineItemID: fmt.Sprintf("li-%d", a.seq), ProductID: pkg.ProductID, Budget: pkg.Budget, Status: "active"}
	a.items[li.PlatformLineItemID] = li
	return li, nil
}

func (a *InMemoryAdapter) UpdateLineItem(_ context.Context, platformLineItemID string, pkg adcp.Package) (LineItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	li, ok := a.items[platformLineItemID]
	if !ok {
		return LineItem{}, fmt.Errorf("adapter: unknown line item %q", platformLineItemID)
	}
	li.ProductID = pkg.ProductID
	li.Budget = pkg.Budget
	a.items[platformLineItemID] = li
	return li, nil
}

func (a *InMemoryAdapter) GetDelivery(_ context.Context, platformLineItemID string) (adcp.DeliveryTotals, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.items[platformLineItemID]; !ok {
		return adcp.DeliveryTotals{}, fmt.Errorf("adapter: unknown line item %q", platformLineItemID)
	}
	return adcp.DeliveryTotals{Impressions: 1000, Spend: 12.5, Clicks: 4}, nil
}

func (a *InMemoryAdapter) SupportedPricingModels() []adcp.PricingModel {
	return []adcp.PricingModel{adcp.PricingCPM}
}
