package adcp

import "time"

// GetMediaBuyDeliveryRequest accepts the plural media_buy_ids[] (spec
// v1.6+) with the singular media_buy_id kept as a back-compat alias.
type GetMediaBuyDeliveryRequest struct {
	MediaBuyIDs []string `json:"media_buy_ids"`
	MediaBuyID  string   `json:"media_buy_id"`
}

// Normalize merges the singular alias into the plural slice,
// deduplicated, matching list_creatives' merge-and-dedupe rule reused
// here for the equivalent singular/plural pair.
func (r *GetMediaBuyDeliveryRequest) Normalize() {
	r.MediaBuyIDs = mergeDedup(r.MediaBuyIDs, r.MediaBuyID)
}

func mergeDedup(list []string, extra string) []string {
	seen := make(map[string]bool, len(list)+1)
	out := make([]string, 0, len(list)+1)
	for _, v := range list {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	if extra != "" && !seen[extra] {
		out = append(out, extra)
	}
	return out
}

// DeliveryTotals is one media buy's aggregated delivery numbers.
type DeliveryTotals struct {
	Impressions int64   `json:"impressions"`
	Spend       float64 `json:"spend"`
	Clicks      int64   `json:"clicks,omitempty"`
}

// MediaBuyDelivery is one entry in the get_media_buy_delivery response.
type MediaBuyDelivery struct {
	MediaBuyID string         `json:"media_buy_id"`
	Totals     DeliveryTotals `json:"totals"`
}

// GetMediaBuyDeliveryResponse is the wire response of
// get_media_buy_delivery.
type GetMediaBuyDeliveryResponse struct {
	ReportingPeriodStart time.Time           `json:"reporting_period_start"`
	ReportingPeriodEnd   time.Time           `json:"reporting_period_end"`
	Currency             string              `json:"currency"`
	AggregatedTotals     DeliveryTotals      `json:"aggregated_totals"`
	MediaBuyDeliveries   []MediaBuyDelivery  `json:"media_buy_deliveries"`
	Errors               Errors              `json:"errors,omitempty"`
}

func (r GetMediaBuyDeliveryResponse) ToWire() map[string]any {
	out := map[string]any{
		"reporting_period": map[string]any{
			"start": r.ReportingPeriodStart.UTC().Format(time.RFC3339),
			"end":   r.ReportingPeriodEnd.UTC().Format(time.RFC3339),
		},
		"currency":            r.Currency,
		"aggregated_totals":   r.AggregatedTotals,
		"media_buy_deliveries": r.MediaBuyDeliveries,
	}
	if len(r.Errors) > 0 {
		out["errors"] = r.Errors
	}
	return out
}

// PerformanceDataPoint is one entry in update_performance_index.
type PerformanceDataPoint struct {
	PackageID string  `json:"package_id"`
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
}

// UpdatePerformanceIndexRequest is the request body of
// update_performance_index.
type UpdatePerformanceIndexRequest struct {
	MediaBuyID      string                 `json:"media_buy_id"`
	PerformanceData []PerformanceDataPoint `json:"performance_data"`
}

// UpdatePerformanceIndexResponse reports whether the index update was
// accepted.
type UpdatePerformanceIndexResponse struct {
	Status string `json:"status"`
	Errors Errors `json:"errors,omitempty"`
}

func (r UpdatePerformanceIndexResponse) ToWire() map[string]any {
	out := map[string]any{"status": r.Status}
	if len(r.Errors) > 0 {
		out["errors"] = r.Errors
	}
	return out
}
