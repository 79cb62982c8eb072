package dispatcher

import (
	"strings"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

// skillInvocation is one explicit skill call extracted from a
// message's DataParts.
type skillInvocation struct {
	Skill string
	Input map[string]any
}

// parseMessage concatenates every TextPart into a natural-language
// string and collects every DataPart that names a skill (§4.4 message
// parsing). data.input is the spec field; data.parameters is kept as a
// legacy alias.
func parseMessage(msg protocol.Message) (text string, skills []skillInvocation) {
	var sb strings.Builder
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case *protocol.TextPart:
			sb.WriteString(p.Text)
		case protocol.TextPart:
			sb.WriteString(p.Text)
		case *protocol.DataPart:
			if inv, ok := skillFromData(p.Data); ok {
				skills = append(skills, inv)
			}
		case protocol.DataPart:
			if inv, ok := skillFromData(p.Data); ok {
				skills = append(skills, inv)
			}
		}
	}
	return sb.String(), skills
}

func skillFromData(data map[string]any) (skillInvocation, bool) {
	name, ok := data["skill"].(string)
	if !ok || name == "" {
		return skillInvocation{}, false
	}
	input, _ := data["input"].(map[string]any)
	if input == nil {
		input, _ = data["parameters"].(map[string]any)
	}
	if input == nil {
		input = map[string]any{}
	}
	return skillInvocation{Skill: name, Input: input}, true
}

// routeCategory classifies a natural-language string into one of the
// NL routing buckets. This is an explicit, swappable keyword table —
// not an NLU model — and is documented as a placeholder for a
// provider-specific intent classifier (§4.4).
type routeCategory string

const (
	categoryProducts  routeCategory = "products"
	categoryPricing   routeCategory = "pricing"
	categoryTargeting routeCategory = "targeting"
	categoryMediaBuy  routeCategory = "media_buy"
	categoryHelp      routeCategory = "help"
)

var keywordTable = []struct {
	category routeCategory
	keywords []string
}{
	{categoryProducts, []string{"product", "inventory", "catalog", "available"}},
	{categoryPricing, []string{"price", "cost", "rate", "cpm"}},
	{categoryTargeting, []string{"target", "audience", "geo", "demographic"}},
	{categoryMediaBuy, []string{"buy", "campaign", "create", "book"}},
}

func routeText(text string) routeCategory {
	lower := strings.ToLower(text)
	for _, entry := range keywordTable {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return categoryHelp
}
