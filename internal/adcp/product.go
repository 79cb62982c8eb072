package adcp

import "strings"

// PricingModel enumerates the buy-side pricing model for a product's
// pricing option.
type PricingModel string

const (
	PricingCPM  PricingModel = "cpm"
	PricingCPP  PricingModel = "cpp"
	PricingCPCV PricingModel = "cpcv"
)

// PriceGuidance carries non-fixed pricing hints for an auction option.
type PriceGuidance struct {
	Floor         float64 `json:"floor,omitempty"`
	SuggestedRate float64 `json:"suggested_rate,omitempty"`
}

// PricingOption is one entry in a Product's pricing_options[].
type PricingOption struct {
	PricingModel  PricingModel   `json:"pricing_model"`
	IsFixed       bool           `json:"is_fixed"`
	IsAuction     bool           `json:"is_auction"`
	Rate          float64        `json:"rate,omitempty"`
	PriceGuidance *PriceGuidance `json:"price_guidance,omitempty"`
	Currency      string         `json:"currency"`
}

// Property is a full inventory property descriptor, one of the two
// mutually-exclusive ways a Product can declare its inventory.
type Property struct {
	Domain  string   `json:"domain"`
	Tags    []string `json:"tags,omitempty"`
	Country string   `json:"country,omitempty"`
}

// Product is the catalog entry returned by get_products. Internal
// fields are excluded from ToWire.
type Product struct {
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	FormatIDs      []FormatID      `json:"format_ids"`
	Properties     []Property      `json:"properties,omitempty"`
	PropertyTags   []string        `json:"property_tags,omitempty"`
	PricingOptions []PricingOption `json:"pricing_options"`
	DeliveryType   string          `json:"delivery_type,omitempty"`

	// internal, never serialized to the wire.
	TenantID string `json:"-"`
}

// ValidateOneOf enforces the Properties/PropertyTags oneOf invariant.
// GetProducts drops a product that fails it (logged at V(1)) in every
// environment; no environment turns it into a request error.
func (p Product) ValidateOneOf() *Error {
	hasProperties := len(p.Properties) > 0
	hasTags := len(p.PropertyTags) > 0
	if hasProperties == hasTags {
		return NewValidationError("properties", "product must carry exactly one of properties[] or property_tags[]")
	}
	return nil
}

// ToWire strips internal fields for transport.
func (p Product) ToWire() map[string]any {
	out := map[string]any{
		"product_id":      p.ProductID,
		"name":            p.Name,
		"format_ids":      p.FormatIDs,
		"pricing_options": p.PricingOptions,
	}
	if p.Description != "" {
		out["description"] = p.Description
	}
	if len(p.Properties) > 0 {
		out["properties"] = p.Properties
	}
	if len(p.PropertyTags) > 0 {
		out["property_tags"] = p.PropertyTags
	}
	if p.DeliveryType != "" {
		out["delivery_type"] = p.DeliveryType
	}
	return out
}

// ProductFilters narrows a get_products brief search. DeliveryType,
// IsFixedPrice and FormatIDs, when set, are ANDed with the brief
// substring match; FormatTypes and StandardFormatsOnly are decoded but
// not applied by MatchesBrief.
type ProductFilters struct {
	TenantID            string   `json:"-"`
	DeliveryType        string   `json:"delivery_type,omitempty"`
	IsFixedPrice        *bool    `json:"is_fixed_price,omitempty"`
	FormatTypes         []string `json:"format_types,omitempty"`
	FormatIDs           []string `json:"format_ids,omitempty"`
	StandardFormatsOnly bool     `json:"standard_formats_only,omitempty"`
}

// MatchesBrief performs the case-insensitive substring match over
// product name/description plus format ids, then ANDs in the
// DeliveryType, IsFixedPrice and FormatIDs filters.
func MatchesBrief(p Product, brief string, filters ProductFilters) bool {
	if brief != "" {
		lower := strings.ToLower(brief)
		haystack := strings.ToLower(p.Name + " " + p.Description)
		found := strings.Contains(haystack, lower)
		if !found {
			for _, fid := range p.FormatIDs {
				if strings.Contains(strings.ToLower(fid.ID), lower) {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}

	if filters.DeliveryType != "" && p.DeliveryType != filters.DeliveryType {
		return false
	}
	if filters.IsFixedPrice != nil {
		matched := false
		for _, opt := range p.PricingOptions {
			if opt.IsFixed == *filters.IsFixedPrice {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if len(filters.FormatIDs) > 0 {
		matched := false
		for _, fid := range p.FormatIDs {
			for _, want := range filters.FormatIDs {
				if fid.ID == want {
					matched = true
				}
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
