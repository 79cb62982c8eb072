package adcp

// ListAuthorizedPropertiesRequest optionally narrows by tags.
type ListAuthorizedPropertiesRequest struct {
	Tags []string `json:"tags,omitempty"`
}

// ListAuthorizedPropertiesResponse is the wire response of
// list_authorized_properties.
type ListAuthorizedPropertiesResponse struct {
	PublisherDomains []string            `json:"publisher_domains"`
	Tags             map[string][]string `json:"tags"`
	PrimaryChannels  []string            `json:"primary_channels,omitempty"`
	PrimaryCountries []string            `json:"primary_countries,omitempty"`
	Errors           Errors              `json:"errors,omitempty"`
}

func (r ListAuthorizedPropertiesResponse) ToWire() map[string]any {
	out := map[string]any{
		"publisher_domains": r.PublisherDomains,
		"tags":              r.Tags,
	}
	if len(r.PrimaryChannels) > 0 {
		out["primary_channels"] = r.PrimaryChannels
	}
	if len(r.PrimaryCountries) > 0 {
		out["primary_countries"] = r.PrimaryCountries
	}
	if len(r.Errors) > 0 {
		out["errors"] = r.Errors
	}
	return out
}

// ListCreativeFormatsRequest narrows the creative format registry query.
type ListCreativeFormatsRequest struct {
	Type         string   `json:"type,omitempty"`
	StandardOnly bool     `json:"standard_only,omitempty"`
	Category     string   `json:"category,omitempty"`
	FormatIDs    []string `json:"format_ids,omitempty"`
}

// ListCreativeFormatsResponse is the wire response of
// list_creative_formats.
type ListCreativeFormatsResponse struct {
	Formats []Format `json:"formats"`
	Errors  Errors   `json:"errors,omitempty"`
}

func (r ListCreativeFormatsResponse) ToWire() map[string]any {
	out := map[string]any{"formats": r.Formats}
	if len(r.Errors) > 0 {
		out["errors"] = r.Errors
	}
	return out
}

// GetProductsRequest is the request body of get_products.
type GetProductsRequest struct {
	Brief         string          `json:"brief,omitempty"`
	BrandManifest *BrandManifest  `json:"brand_manifest,omitempty"`
	Filters       *ProductFilters `json:"filters,omitempty"`
	ADCPVersion   string          `json:"adcp_version,omitempty"`
}

// GetProductsResponse is the wire response of get_products.
type GetProductsResponse struct {
	Products []Product `json:"products"`
	Errors   Errors    `json:"errors,omitempty"`
}

func (r GetProductsResponse) ToWire() map[string]any {
	products := make([]map[string]any, len(r.Products))
	for i, p := range r.Products {
		products[i] = p.ToWire()
	}
	out := map[string]any{"products": products}
	if len(r.Errors) > 0 {
		out["errors"] = r.Errors
	}
	return out
}
