package adcp

import (
	"regexp"
	"strings"
)

// Creative is a buyer-supplied creative asset. Status and ReviewFeedback
// are internal fields excluded from ToWire.
type Creative struct {
	CreativeID  string   `json:"creative_id"`
	Name        string   `json:"name,omitempty"`
	FormatID    FormatID `json:"format_id"`
	Snippet     string   `json:"snippet,omitempty"`
	SnippetType string   `json:"snippet_type,omitempty"`
	URL         string   `json:"url,omitempty"`

	Status         string `json:"-"`
	ReviewFeedback string `json:"-"`
}

var snippetTokenPattern = regexp.MustCompile(`(?i)<(script|vast|iframe)|https?://`)

const minSnippetLength = 12

// ValidateSnippet enforces the snippet content rules: when a snippet is
// present it must contain an HTML/JS/VAST-like token or a URL, must
// clear a minimum length, and — when snippet_type declares a specific
// format — its content must match that declaration (e.g. vast_xml
// requires a <VAST> tag).
func (c Creative) ValidateSnippet() *Error {
	if c.Snippet == "" {
		return nil
	}
	if len(c.Snippet) < minSnippetLength || !snippetTokenPattern.MatchString(c.Snippet) {
		return NewValidationError("snippet", "snippet must contain HTML/JS/VAST content or a URL and meet the minimum length")
	}
	if c.SnippetType == "vast_xml" && !strings.Contains(strings.ToUpper(c.Snippet), "<VAST") {
		return NewValidationError("snippet", "snippet_type vast_xml requires a <VAST> tag in the snippet")
	}
	return nil
}

func (c Creative) ToWire() map[string]any {
	out := map[string]any{
		"creative_id": c.CreativeID,
		"format_id":   c.FormatID,
	}
	if c.Name != "" {
		out["name"] = c.Name
	}
	if c.Snippet != "" {
		out["snippet"] = c.Snippet
		out["snippet_type"] = c.SnippetType
	}
	if c.URL != "" {
		out["url"] = c.URL
	}
	return out
}

// CreativeSyncResult is one entry in sync_creatives' response.
type CreativeSyncResult struct {
	CreativeID string            `json:"creative_id"`
	Action     string            `json:"action"`
	PlatformID string            `json:"platform_id,omitempty"`
	Changes    map[string]any    `json:"changes,omitempty"`
	Errors     Errors            `json:"errors,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
	AssignedTo []string          `json:"assigned_to,omitempty"`
}

func (r CreativeSyncResult) ToWire() map[string]any {
	out := map[string]any{"creative_id": r.CreativeID, "action": r.Action}
	if r.PlatformID != "" {
		out["platform_id"] = r.PlatformID
	}
	if len(r.Changes) > 0 {
		out["changes"] = r.Changes
	}
	if len(r.Errors) > 0 {
		out["errors"] = r.Errors
	}
	if len(r.Warnings) > 0 {
		out["warnings"] = r.Warnings
	}
	if len(r.AssignedTo) > 0 {
		out["assigned_to"] = r.AssignedTo
	}
	return out
}

// SyncCreativesRequest is the request body of sync_creatives.
type SyncCreativesRequest struct {
	Creatives      []Creative          `json:"creatives"`
	CreativeIDs    []string            `json:"creative_ids,omitempty"`
	Assignments    map[string][]string `json:"assignments,omitempty"`
	DeleteMissing  bool                `json:"delete_missing,omitempty"`
	DryRun         bool                `json:"dry_run,omitempty"`
	ValidationMode string              `json:"validation_mode,omitempty"`
}

// SyncCreativesResponse is the wire response of sync_creatives.
type SyncCreativesResponse struct {
	Creatives []CreativeSyncResult `json:"creatives"`
	DryRun    bool                 `json:"dry_run"`
}

func (r SyncCreativesResponse) ToWire() map[string]any {
	results := make([]map[string]any, len(r.Creatives))
	for i, c := range r.Creatives {
		results[i] = c.ToWire()
	}
	return map[string]any{"creatives": results, "dry_run": r.DryRun}
}

// ListCreativesRequest supports the plural media_buy_ids/buyer_refs
// merged with the singular legacy forms, deduplicated.
type ListCreativesRequest struct {
	MediaBuyIDs []string `json:"media_buy_ids,omitempty"`
	MediaBuyID  string   `json:"media_buy_id,omitempty"`
	BuyerRefs   []string `json:"buyer_refs,omitempty"`
	BuyerRef    string   `json:"buyer_ref,omitempty"`
	Page        int      `json:"page,omitempty"`
	PageSize    int      `json:"page_size,omitempty"`
}

func (r *ListCreativesRequest) Normalize() {
	r.MediaBuyIDs = mergeDedup(r.MediaBuyIDs, r.MediaBuyID)
	r.BuyerRefs = mergeDedup(r.BuyerRefs, r.BuyerRef)
}

// Pagination mirrors back the effective page window.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// ListCreativesResponse is the wire response of list_creatives.
type ListCreativesResponse struct {
	Creatives    []Creative     `json:"creatives"`
	QuerySummary map[string]any `json:"query_summary"`
	Pagination   Pagination     `json:"pagination"`
}

func (r ListCreativesResponse) ToWire() map[string]any {
	creatives := make([]map[string]any, len(r.Creatives))
	for i, c := range r.Creatives {
		creatives[i] = c.ToWire()
	}
	return map[string]any{
		"creatives":     creatives,
		"query_summary": r.QuerySummary,
		"pagination":    r.Pagination,
	}
}
