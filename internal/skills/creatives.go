package skills

import (
	"context"

	"github.com/google/uuid"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

// SyncCreatives validates and upserts buyer-supplied creatives,
// deleting any whose ids are absent from the request when
// DeleteMissing is set. A dry run performs validation only and never
// touches the store.
func (r *Registry) SyncCreatives(_ context.Context, req adcp.SyncCreativesRequest, toolCtx *adcp.ToolContext) (adcp.SyncCreativesResponse, error) {
	resp := adcp.SyncCreativesResponse{DryRun: req.DryRun}

	seen := make(map[string]bool, len(req.Creatives))
	for _, c := range req.Creatives {
		if c.CreativeID == "" {
			c.CreativeID = "cr_" + uuid.NewString()
		}
		seen[c.CreativeID] = true

		result := adcp.CreativeSyncResult{CreativeID: c.CreativeID, Action: "created"}
		if verr := c.ValidateSnippet(); verr != nil {
			result.Action = "rejected"
			result.Errors = adcp.Errors{verr}
			resp.Creatives = append(resp.Creatives, result)
			continue
		}

		c.Status = "approved"
		if assigned, ok := req.Assignments[c.CreativeID]; ok {
			result.AssignedTo = assigned
		}
		if !req.DryRun {
			r.creatives.put(toolCtx.TenantID, c)
		}
		resp.Creatives = append(resp.Creatives, result)
	}

	if req.DeleteMissing && !req.DryRun {
		for _, existing := range r.creatives.list(toolCtx.TenantID) {
			if !seen[existing.CreativeID] {
				r.creatives.delete(toolCtx.TenantID, existing.CreativeID)
				resp.Creatives = append(resp.Creatives, adcp.CreativeSyncResult{CreativeID: existing.CreativeID, Action: "deleted"})
			}
		}
	}

	return resp, nil
}

// ListCreatives paginates all of the tenant's synced creatives. The
// normalized media_buy_ids/buyer_refs filters do not narrow the result,
// since creatives aren't linked to packages here; they are only echoed
// back in query_summary.
func (r *Registry) ListCreatives(_ context.Context, req adcp.ListCreativesRequest, toolCtx *adcp.ToolContext) (adcp.ListCreativesResponse, error) {
	req.Normalize()
	all := r.creatives.list(toolCtx.TenantID)

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}

	return adcp.ListCreativesResponse{
		Creatives: all[start:end],
		QuerySummary: map[string]any{
			"media_buy_ids": req.MediaBuyIDs,
			"buyer_refs":    req.BuyerRefs,
		},
		Pagination: adcp.Pagination{Page: page, PageSize: pageSize, TotalCount: len(all)},
	}, nil
}
