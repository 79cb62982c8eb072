package adcp

// Package is one line item within a media buy. The response shape
// always carries PackageID, even on failure or manual-approval paths —
// a spec invariant enforced by the media-buy handler, not by this type.
type Package struct {
	PackageID          string       `json:"package_id"`
	BuyerRef           string       `json:"buyer_ref,omitempty"`
	ProductID          string       `json:"product_id"`
	PricingModel       PricingModel `json:"pricing_model,omitempty"`
	Budget             Budget       `json:"budget"`
	PlatformLineItemID string       `json:"platform_line_item_id,omitempty"`
}

func (p Package) ToWire() map[string]any {
	out := map[string]any{
		"package_id": p.PackageID,
		"product_id": p.ProductID,
		"budget":     p.Budget,
	}
	if p.BuyerRef != "" {
		out["buyer_ref"] = p.BuyerRef
	}
	if p.PricingModel != "" {
		out["pricing_model"] = p.PricingModel
	}
	if p.PlatformLineItemID != "" {
		out["platform_line_item_id"] = p.PlatformLineItemID
	}
	return out
}

// CoercePackagesFromProductIDs expands the legacy product_ids[] field
// into packages[{product_id}], the alias promotion rule in §4.2.
func CoercePackagesFromProductIDs(productIDs []string) []Package {
	pkgs := make([]Package, 0, len(productIDs))
	for _, id := range productIDs {
		pkgs = append(pkgs, Package{ProductID: id})
	}
	return pkgs
}
