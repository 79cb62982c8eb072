package skills

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

// validateCreateMediaBuy runs the request-level and per-package checks
// spec.md §4.3 mandates before any line item is provisioned: a future
// start_time (or "asap"), end_time after start_time, a positive
// budget, non-empty packages, and resolvable products for each. It
// also assigns each package's PackageID up front (the package's
// buyer_ref when given, else a generated pkg_ id), since the response
// must always carry one — even on the failure path.
//
// Returns the (possibly package-id-assigned) packages alongside any
// validation errors. Product lookups that succeed are returned too,
// keyed by package index, so the pricing-model pass doesn't need to
// hit the catalog twice.
func (r *Registry) validateCreateMediaBuy(ctx context.Context, req adcp.CreateMediaBuyRequest, toolCtx *adcp.ToolContext) ([]adcp.Package, []*adcp.Product, adcp.Errors) {
	pkgs := make([]adcp.Package, len(req.Packages))
	copy(pkgs, req.Packages)
	for i := range pkgs {
		if pkgs[i].BuyerRef != "" {
			pkgs[i].PackageID = pkgs[i].BuyerRef
		} else {
			pkgs[i].PackageID = "pkg_" + uuid.NewString()
		}
		if pkgs[i].Budget.Total == 0 {
			pkgs[i].Budget = req.Budget
		}
	}

	var errs adcp.Errors

	if !req.StartASAP {
		if req.StartTime.Before(time.Now()) {
			errs = append(errs, adcp.NewValidationError("start_time", "start_time is in the past"))
		}
		if !req.EndTime.After(req.StartTime) {
			errs = append(errs, adcp.NewValidationError("end_time", "end_time must be after start_time"))
		}
	} else if !req.EndTime.After(time.Now()) {
		errs = append(errs, adcp.NewValidationError("end_time", "end_time must be after start_time"))
	}

	if req.Budget.Total <= 0 {
		errs = append(errs, adcp.NewValidationError("budget", "budget.total must be positive"))
	}

	if len(pkgs) == 0 {
		errs = append(errs, adcp.NewValidationError("packages", "at least one package is required"))
	}

	products := make([]*adcp.Product, len(pkgs))
	for i, pkg := range pkgs {
		if pkg.ProductID == "" {
			errs = append(errs, &adcp.Error{Code: adcp.CodeValidation, Message: "package product_id is required", Severity: adcp.SeverityError, Field: pkgs[i].PackageID})
			continue
		}
		product, err := r.Catalog.Get(ctx, toolCtx.TenantID, pkg.ProductID)
		if err != nil {
			errs = append(errs, &adcp.Error{Code: adcp.CodeAdapterError, Message: err.Error(), Severity: adcp.SeverityError, Field: pkgs[i].PackageID})
			continue
		}
		if product == nil {
			errs = append(errs, &adcp.Error{Code: adcp.CodeProductNotFound, Message: fmt.Sprintf("product %q not found", pkg.ProductID), Severity: adcp.SeverityError, Field: pkgs[i].PackageID})
			continue
		}
		products[i] = product

		if pkgs[i].PricingModel == "" {
			continue
		}
		if !pricingModelOffered(product, pkgs[i].PricingModel) || !pricingModelSupported(r.AdServer.SupportedPricingModels(), pkgs[i].PricingModel) {
			errs = append(errs, &adcp.Error{
				Code: adcp.CodePricingModelUnsupported,
				Message: fmt.Sprintf("pricing_model %q is not both offered by product %q (%s) and supported by the adapter (%s)",
					pkgs[i].PricingModel, product.ProductID, productPricingModels(product), r.AdServer.SupportedPricingModels()),
				Severity: adcp.SeverityError, Field: pkgs[i].PackageID,
			})
		}
	}

	return pkgs, products, errs
}

func pricingModelOffered(product *adcp.Product, model adcp.PricingModel) bool {
	for _, opt := range product.PricingOptions {
		if opt.PricingModel == model {
			return true
		}
	}
	return false
}

func pricingModelSupported(supported []adcp.PricingModel, model adcp.PricingModel) bool {
	for _, m := range supported {
		if m == model {
			return true
		}
	}
	return false
}

func productPricingModels(product *adcp.Product) []adcp.PricingModel {
	models := make([]adcp.PricingModel, len(product.PricingOptions))
	for i, opt := range product.PricingOptions {
		models[i] = opt.PricingModel
	}
	return models
}

// CreateMediaBuy validates the request (§4.3), then provisions a line
// item per package through the tenant's AdServerAdapter. A per-package
// adapter failure becomes a CodeAdapterError entry for that package
// rather than failing the whole call — the response always carries a
// package_id for every requested package, succeeded or not. A
// request-level validation failure (bad dates, non-positive budget, no
// packages, an unresolvable product, or an unsupported pricing model)
// short-circuits before any adapter call: the response then carries
// the packages (each with its package_id) and the errors, and no
// media_buy_id.
func (r *Registry) CreateMediaBuy(ctx context.Context, req adcp.CreateMediaBuyRequest, toolCtx *adcp.ToolContext) (adcp.CreateMediaBuyResponse, error) {
	pkgs, _, errs := r.validateCreateMediaBuy(ctx, req, toolCtx)
	if errs.HasFatal() {
		if err := errs.AsError(); err != nil {
			r.Log.Error(err, "create_media_buy validation failed", "buyer_ref", req.BuyerRef)
		}
		return adcp.CreateMediaBuyResponse{Packages: pkgs, Errors: errs}, nil
	}

	var resp adcp.CreateMediaBuyResponse
	resultPackages := make([]adcp.Package, 0, len(pkgs))

	for _, pkg := range pkgs {
		if !dryRun(toolCtx) {
			li, err := r.AdServer.CreateLineItem(ctx, pkg)
			if err != nil {
				resp.Errors = append(resp.Errors, &adcp.Error{
					Code: adcp.CodeAdapterError, Message: err.Error(), Severity: adcp.SeverityError, Field: pkg.PackageID,
				})
				resultPackages = append(resultPackages, pkg)
				continue
			}
			pkg.PlatformLineItemID = li.PlatformLineItemID
		}
		resultPackages = append(resultPackages, pkg)
	}

	if err := resp.Errors.AsError(); err != nil {
		r.Log.Error(err, "line item creation failed for one or more packages", "buyer_ref", req.BuyerRef)
	}

	rec := r.mediaBuys.create(toolCtx.TenantID, req.BuyerRef, resultPackages)
	resp.MediaBuyID = rec.MediaBuyID
	resp.Packages = resultPackages
	return resp, nil
}

// UpdateMediaBuy applies an update to packages on an existing media
// buy, pushing each changed package through UpdateLineItem.
func (r *Registry) UpdateMediaBuy(ctx context.Context, req adcp.UpdateMediaBuyRequest, toolCtx *adcp.ToolContext) (adcp.UpdateMediaBuyResponse, error) {
	rec, ok := r.mediaBuys.get(toolCtx.TenantID, req.MediaBuyID)
	if !ok {
		return adcp.UpdateMediaBuyResponse{
			MediaBuyID: req.MediaBuyID,
			Errors: adcp.Errors{{
				Code: adcp.CodeProductNotFound, Message: "media buy not found", Severity: adcp.SeverityError,
			}},
		}, nil
	}

	updated := rec.Packages
	if len(req.Packages) > 0 {
		updated = mergePackageUpdates(rec.Packages, req.Packages)
	}

	var errs adcp.Errors
	if !dryRun(toolCtx) {
		for i, pkg := range updated {
			if pkg.PlatformLineItemID == "" {
				continue
			}
			li, err := r.AdServer.UpdateLineItem(ctx, pkg.PlatformLineItemID, pkg)
			if err != nil {
				errs = append(errs, &adcp.Error{
					Code: adcp.CodeAdapterError, Message: err.Error(), Severity: adcp.SeverityError, Field: pkg.PackageID,
				})
				continue
			}
			updated[i].PlatformLineItemID = li.PlatformLineItemID
		}
	}

	if err := errs.AsError(); err != nil {
		r.Log.Error(err, "line item updates failed during update_media_buy", "media_buy_id", req.MediaBuyID)
	}

	rec, _ = r.mediaBuys.update(toolCtx.TenantID, req.MediaBuyID, updated)
	return adcp.UpdateMediaBuyResponse{
		MediaBuyID:       rec.MediaBuyID,
		BuyerRef:         rec.BuyerRef,
		AffectedPackages: rec.Packages,
		Errors:           errs,
	}, nil
}

// mergePackageUpdates overlays incoming package updates onto the
// existing set, matched by product_id, preserving package_id and
// platform_line_item_id for packages that already exist.
func mergePackageUpdates(existing, updates []adcp.Package) []adcp.Package {
	byProduct := make(map[string]adcp.Package, len(existing))
	for _, p := range existing {
		byProduct[p.ProductID] = p
	}
	out := make([]adcp.Package, 0, len(updates))
	updated := make(map[string]bool, len(updates))
	for _, u := range updates {
		updated[u.ProductID] = true
		if cur, ok := byProduct[u.ProductID]; ok {
			cur.Budget = u.Budget
			if u.BuyerRef != "" {
				cur.BuyerRef = u.BuyerRef
			}
			out = append(out, cur)
			continue
		}
		u.PackageID = "pkg_" + uuid.NewString()
		out = append(out, u)
	}
	for _, p := range existing {
		if !updated[p.ProductID] {
			out = append(out, p)
		}
	}
	return out
}

// GetMediaBuyDelivery aggregates delivery totals across the requested
// media buys by summing each package's adapter-reported delivery.
func (r *Registry) GetMediaBuyDelivery(ctx context.Context, req adcp.GetMediaBuyDeliveryRequest, toolCtx *adcp.ToolContext) (adcp.GetMediaBuyDeliveryResponse, error) {
	req.Normalize()

	var resp adcp.GetMediaBuyDeliveryResponse
	for _, mediaBuyID := range req.MediaBuyIDs {
		rec, ok := r.mediaBuys.get(toolCtx.TenantID, mediaBuyID)
		if !ok {
			resp.Errors = append(resp.Errors, &adcp.Error{
				Code: adcp.CodeProductNotFound, Message: "media buy not found", Severity: adcp.SeverityError, Field: mediaBuyID,
			})
			continue
		}

		var totals adcp.DeliveryTotals
		for _, pkg := range rec.Packages {
			if pkg.PlatformLineItemID == "" {
				continue
			}
			t, err := r.AdServer.GetDelivery(ctx, pkg.PlatformLineItemID)
			if err != nil {
				resp.Errors = append(resp.Errors, &adcp.Error{
					Code: adcp.CodeAdapterError, Message: err.Error(), Severity: adcp.SeverityWarning, Field: mediaBuyID,
				})
				continue
			}
			totals.Impressions += t.Impressions
			totals.Spend += t.Spend
			totals.Clicks += t.Clicks
		}

		resp.MediaBuyDeliveries = append(resp.MediaBuyDeliveries, adcp.MediaBuyDelivery{MediaBuyID: mediaBuyID, Totals: totals})
		resp.AggregatedTotals.Impressions += totals.Impressions
		resp.AggregatedTotals.Spend += totals.Spend
		resp.AggregatedTotals.Clicks += totals.Clicks
	}
	return resp, nil
}

// UpdatePerformanceIndex records buyer-supplied performance signals
// for packages within a media buy. The adapter layer has no concept of
// performance index ingestion in this reference implementation, so the
// handler validates ownership and acknowledges.
func (r *Registry) UpdatePerformanceIndex(_ context.Context, req adcp.UpdatePerformanceIndexRequest, toolCtx *adcp.ToolContext) (adcp.UpdatePerformanceIndexResponse, error) {
	if _, ok := r.mediaBuys.get(toolCtx.TenantID, req.MediaBuyID); !ok {
		return adcp.UpdatePerformanceIndexResponse{
			Status: "rejected",
			Errors: adcp.Errors{{Code: adcp.CodeProductNotFound, Message: "media buy not found", Severity: adcp.SeverityError}},
		}, nil
	}
	return adcp.UpdatePerformanceIndexResponse{Status: "accepted"}, nil
}
