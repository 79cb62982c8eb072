package adcp

import (
	"encoding/json"
	"fmt"
)

// FormatID identifies a creative format by the agent that defines it
// plus a local id. Input accepts either the object shape or a legacy
// bare string (interpreted as the id with an empty agent_url); output
// is always the object shape.
type FormatID struct {
	AgentURL string `json:"agent_url"`
	ID       string `json:"id"`
}

func (f *FormatID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.ID = s
		f.AgentURL = ""
		return nil
	}

	type alias FormatID
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("format_id: expected string or {agent_url, id} object: %w", err)
	}
	*f = FormatID(obj)
	return nil
}

// Format describes one creative format in the registry.
type Format struct {
	FormatID    FormatID `json:"format_id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Category    string   `json:"category,omitempty"`
	IsStandard  bool     `json:"is_standard"`
	Description string   `json:"description,omitempty"`
}

// FormatFilter narrows a list_creative_formats query.
type FormatFilter struct {
	Type         string
	StandardOnly bool
	Category     string
	FormatIDs    []string
}

// Matches reports whether f satisfies every non-zero filter field. All
// conditions are ANDed, matching the Tool/Skill Core's brief-filtering
// idiom.
func (ff FormatFilter) Matches(f Format) bool {
	if ff.Type != "" && f.Type != ff.Type {
		return false
	}
	if ff.StandardOnly && !f.IsStandard {
		return false
	}
	if ff.Category != "" && f.Category != ff.Category {
		return false
	}
	if len(ff.FormatIDs) > 0 {
		found := false
		for _, id := range ff.FormatIDs {
			if f.FormatID.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
