package skills

import (
	"context"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

// GetProducts searches the tenant's product catalog for inventory
// matching the buyer's brief plus any filters. Scenario 1 of the
// end-to-end walkthroughs reaches it through natural-language routing.
func (r *Registry) GetProducts(ctx context.Context, req adcp.GetProductsRequest, toolCtx *adcp.ToolContext) (adcp.GetProductsResponse, error) {
	filters := adcp.ProductFilters{}
	if req.Filters != nil {
		filters = *req.Filters
	}
	filters.TenantID = toolCtx.TenantID

	products, err := r.Catalog.Search(ctx, req.Brief, filters)
	if err != nil {
		return adcp.GetProductsResponse{Errors: adcp.Errors{{
			Code: adcp.CodeAdapterError, Message: err.Error(), Severity: adcp.SeverityError,
		}}}, nil
	}

	var resp adcp.GetProductsResponse
	for _, p := range products {
		if verr := p.ValidateOneOf(); verr != nil {
			r.Log.V(1).Info("dropping malformed product", "product_id", p.ProductID, "error", verr.Error())
			continue
		}
		resp.Products = append(resp.Products, p)
	}
	return resp, nil
}

// ListAuthorizedProperties returns the publisher domains and tag
// taxonomy the tenant authorizes this principal to buy against. It is
// deliberately static per tenant in this repo's reference adapters;
// a production deployment wires it to the same source as the product
// catalog.
func (r *Registry) ListAuthorizedProperties(_ context.Context, req adcp.ListAuthorizedPropertiesRequest, toolCtx *adcp.ToolContext) (adcp.ListAuthorizedPropertiesResponse, error) {
	resp := adcp.ListAuthorizedPropertiesResponse{
		PublisherDomains: []string{toolCtx.TenantID + ".example.com"},
		Tags:             map[string][]string{"content": {"news", "sports"}},
		PrimaryChannels:  []string{"display", "video"},
	}
	if len(req.Tags) > 0 {
		filtered := map[string][]string{}
		for _, tag := range req.Tags {
			if v, ok := resp.Tags[tag]; ok {
				filtered[tag] = v
			}
		}
		resp.Tags = filtered
	}
	return resp, nil
}

// ListCreativeFormats returns the creative formats the tenant's
// registry knows about, narrowed by the request filter.
func (r *Registry) ListCreativeFormats(ctx context.Context, req adcp.ListCreativeFormatsRequest, _ *adcp.ToolContext) (adcp.ListCreativeFormatsResponse, error) {
	filter := adcp.FormatFilter{
		Type:         req.Type,
		StandardOnly: req.StandardOnly,
		Category:     req.Category,
		FormatIDs:    req.FormatIDs,
	}
	formats, err := r.Formats.List(ctx, filter)
	if err != nil {
		return adcp.ListCreativeFormatsResponse{Errors: adcp.Errors{{
			Code: adcp.CodeAdapterError, Message: err.Error(), Severity: adcp.SeverityError,
		}}}, nil
	}
	return adcp.ListCreativeFormatsResponse{Formats: formats}, nil
}
