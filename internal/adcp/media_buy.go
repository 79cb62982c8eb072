package adcp

import (
	"encoding/json"
	"fmt"
	"time"
)

// BrandManifest is the minimal buyer-identity payload required on
// get_products (v2.2+) and create_media_buy.
type BrandManifest struct {
	Name string `json:"name"`
}

// TargetingOverlay is an opaque buyer-supplied targeting payload; the
// core passes it through to the AdServerAdapter without interpreting
// it, since targeting vocabularies are adapter-specific.
type TargetingOverlay map[string]any

// PushNotificationConfigRef is the inline push-notification config a
// buyer may attach to a single message/send call (as opposed to a
// persisted PushNotificationConfig registered via the dedicated CRUD
// methods). Per the Open Question resolution in SPEC_FULL §9, this
// takes precedence over a persisted config for the duration of the
// task it is attached to, and is never itself persisted.
type PushNotificationConfigRef struct {
	URL            string                `json:"url"`
	Authentication *WebhookAuthentication `json:"authentication,omitempty"`
}

// WebhookAuthentication selects how outbound webhooks for one config
// are signed (§4.6).
type WebhookAuthentication struct {
	Schemes     []string `json:"schemes"`
	Credentials string   `json:"credentials,omitempty"`
}

// CreateMediaBuyRequest is the canonical (post-coercion) shape of a
// create_media_buy call.
type CreateMediaBuyRequest struct {
	BrandManifest         BrandManifest
	BuyerRef              string
	Packages              []Package
	StartTime             time.Time
	StartASAP             bool
	EndTime               time.Time
	Budget                Budget
	PONumber              string
	TargetingOverlay      TargetingOverlay
	PushNotificationConfig *PushNotificationConfigRef
}

type createMediaBuyWire struct {
	BrandManifest    BrandManifest           `json:"brand_manifest"`
	BuyerRef         string                  `json:"buyer_ref"`
	Packages         []wirePackage           `json:"packages"`
	StartTime        string                  `json:"start_time"`
	EndTime          string                  `json:"end_time"`
	Budget           json.RawMessage         `json:"budget"`
	PONumber         string                  `json:"po_number"`
	TargetingOverlay TargetingOverlay        `json:"targeting_overlay"`
	PushConfig       *PushNotificationConfigRef `json:"push_notification_config"`

	// legacy aliases
	ProductIDs  []string `json:"product_ids"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	TotalBudget *float64 `json:"total_budget"`
	Currency    string   `json:"currency"`
}

type wirePackage struct {
	BuyerRef     string          `json:"buyer_ref"`
	ProductID    string          `json:"product_id"`
	PricingModel string          `json:"pricing_model"`
	Budget       json.RawMessage `json:"budget"`
}

// FromWireCreateMediaBuyRequest parses and normalizes a create_media_buy
// payload, promoting every legacy alias documented in §4.2/§6:
// start_date/end_date → start_time/end_time, flat total_budget+currency
// → nested Budget, product_ids[] → packages[{product_id}].
func FromWireCreateMediaBuyRequest(raw []byte) (*CreateMediaBuyRequest, []string, error) {
	var w createMediaBuyWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, nil, fmt.Errorf("create_media_buy: invalid payload: %w", err)
	}

	var warnings []string
	req := &CreateMediaBuyRequest{
		BrandManifest: w.BrandManifest,
		BuyerRef:      w.BuyerRef,
		PONumber:      w.PONumber,
		TargetingOverlay: w.TargetingOverlay,
		PushNotificationConfig: w.PushConfig,
	}

	switch {
	case len(w.Packages) > 0:
		for _, wp := range w.Packages {
			pkg := Package{BuyerRef: wp.BuyerRef, ProductID: wp.ProductID, PricingModel: PricingModel(wp.PricingModel)}
			if len(wp.Budget) > 0 {
				amount, currency, err := ParseBudget(wp.Budget, w.Currency)
				if err != nil {
					return nil, warnings, fmt.Errorf("packages[].budget: %w", err)
				}
				pkg.Budget = Budget{Total: amount, Currency: currency}
			}
			req.Packages = append(req.Packages, pkg)
		}
	case len(w.ProductIDs) > 0:
		warnings = append(warnings, "product_ids is deprecated; use packages[{product_id}]")
		req.Packages = CoercePackagesFromProductIDs(w.ProductIDs)
	}

	startTimeStr := w.StartTime
	if startTimeStr == "" && w.StartDate != "" {
		warnings = append(warnings, "start_date is deprecated; use start_time")
		t, err := CoerceLegacyDateOnly("start_date", w.StartDate)
		if err != nil {
			return nil, warnings, err
		}
		req.StartTime = t
	} else {
		t, asap, err := ParseWireTime("start_time", startTimeStr, true)
		if err != nil {
			return nil, warnings, err
		}
		req.StartTime, req.StartASAP = t, asap
	}

	endTimeStr := w.EndTime
	if endTimeStr == "" && w.EndDate != "" {
		warnings = append(warnings, "end_date is deprecated; use end_time")
		t, err := CoerceLegacyDateOnly("end_date", w.EndDate)
		if err != nil {
			return nil, warnings, err
		}
		req.EndTime = t
	} else {
		t, _, err := ParseWireTime("end_time", endTimeStr, false)
		if err != nil {
			return nil, warnings, err
		}
		req.EndTime = t
	}

	switch {
	case len(w.Budget) > 0:
		amount, currency, err := ParseBudget(w.Budget, w.Currency)
		if err != nil {
			return nil, warnings, fmt.Errorf("budget: %w", err)
		}
		req.Budget = Budget{Total: amount, Currency: currency}
	case w.TotalBudget != nil:
		warnings = append(warnings, "total_budget/currency is deprecated; use budget{total,currency}")
		req.Budget = CoerceLegacyBudget(*w.TotalBudget, w.Currency)
	}

	return req, warnings, nil
}

// CreateMediaBuyResponse is the wire response of create_media_buy.
type CreateMediaBuyResponse struct {
	MediaBuyID       string   `json:"media_buy_id,omitempty"`
	Packages         []Package `json:"packages"`
	CreativeDeadline *time.Time `json:"creative_deadline,omitempty"`
	WorkflowStepID   string   `json:"workflow_step_id,omitempty"`
	Errors           Errors   `json:"errors,omitempty"`
}

func (r CreateMediaBuyResponse) ToWire() map[string]any {
	pkgWire := make([]map[string]any, len(r.Packages))
	for i, p := range r.Packages {
		pkgWire[i] = p.ToWire()
	}
	out := map[string]any{"packages": pkgWire}
	if r.MediaBuyID != "" {
		out["media_buy_id"] = r.MediaBuyID
	}
	if r.CreativeDeadline != nil {
		out["creative_deadline"] = r.CreativeDeadline.UTC().Format(time.RFC3339)
	}
	if r.WorkflowStepID != "" {
		out["workflow_step_id"] = r.WorkflowStepID
	}
	if len(r.Errors) > 0 {
		out["errors"] = r.Errors
	}
	return out
}

// UpdateMediaBuyRequest is the canonical shape of update_media_buy.
// Both the legacy `updates{packages}` wrapper and the spec's top-level
// `packages` are accepted on input; only Packages is forwarded to the
// handler.
type UpdateMediaBuyRequest struct {
	MediaBuyID string
	BuyerRef   string
	Active     *bool
	StartTime  *time.Time
	StartASAP  bool
	EndTime    *time.Time
	Budget     *Budget
	Packages   []Package
}

type updateMediaBuyWire struct {
	MediaBuyID string          `json:"media_buy_id"`
	BuyerRef   string          `json:"buyer_ref"`
	Active     *bool           `json:"active"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
	Budget     json.RawMessage `json:"budget"`
	Packages   []wirePackage   `json:"packages"`
	Updates    *struct {
		Packages []wirePackage `json:"packages"`
	} `json:"updates"`
}

// FromWireUpdateMediaBuyRequest parses update_media_buy, preferring the
// top-level packages field and falling back to the legacy
// updates.packages wrapper.
func FromWireUpdateMediaBuyRequest(raw []byte) (*UpdateMediaBuyRequest, []string, error) {
	var w updateMediaBuyWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, nil, fmt.Errorf("update_media_buy: invalid payload: %w", err)
	}

	var warnings []string
	req := &UpdateMediaBuyRequest{
		MediaBuyID: w.MediaBuyID,
		BuyerRef:   w.BuyerRef,
		Active:     w.Active,
	}

	wirePkgs := w.Packages
	if len(wirePkgs) == 0 && w.Updates != nil && len(w.Updates.Packages) > 0 {
		warnings = append(warnings, "updates{packages} is deprecated; use top-level packages")
		wirePkgs = w.Updates.Packages
	}
	for _, wp := range wirePkgs {
		pkg := Package{BuyerRef: wp.BuyerRef, ProductID: wp.ProductID, PricingModel: PricingModel(wp.PricingModel)}
		if len(wp.Budget) > 0 {
			amount, currency, err := ParseBudget(wp.Budget, "")
			if err != nil {
				return nil, warnings, fmt.Errorf("packages[].budget: %w", err)
			}
			pkg.Budget = Budget{Total: amount, Currency: currency}
		}
		req.Packages = append(req.Packages, pkg)
	}

	if w.StartTime != "" {
		t, asap, err := ParseWireTime("start_time", w.StartTime, true)
		if err != nil {
			return nil, warnings, err
		}
		if asap {
			req.StartASAP = true
		} else {
			req.StartTime = &t
		}
	}
	if w.EndTime != "" {
		t, _, err := ParseWireTime("end_time", w.EndTime, false)
		if err != nil {
			return nil, warnings, err
		}
		req.EndTime = &t
	}
	if len(w.Budget) > 0 {
		amount, currency, err := ParseBudget(w.Budget, "")
		if err != nil {
			return nil, warnings, fmt.Errorf("budget: %w", err)
		}
		req.Budget = &Budget{Total: amount, Currency: currency}
	}

	return req, warnings, nil
}

// UpdateMediaBuyResponse is the wire response of update_media_buy.
type UpdateMediaBuyResponse struct {
	MediaBuyID         string     `json:"media_buy_id"`
	BuyerRef           string     `json:"buyer_ref,omitempty"`
	ImplementationDate *time.Time `json:"implementation_date,omitempty"`
	AffectedPackages   []Package  `json:"affected_packages"`
	Errors             Errors     `json:"errors,omitempty"`
}

func (r UpdateMediaBuyResponse) ToWire() map[string]any {
	pkgWire := make([]map[string]any, len(r.AffectedPackages))
	for i, p := range r.AffectedPackages {
		pkgWire[i] = p.ToWire()
	}
	out := map[string]any{
		"media_buy_id":      r.MediaBuyID,
		"affected_packages": pkgWire,
	}
	if r.BuyerRef != "" {
		out["buyer_ref"] = r.BuyerRef
	}
	if r.ImplementationDate != nil {
		out["implementation_date"] = r.ImplementationDate.UTC().Format(time.RFC3339)
	}
	if len(r.Errors) > 0 {
		out["errors"] = r.Errors
	}
	return out
}
