package adcp

import (
	"encoding/json"
	"fmt"
)

// Budget accepts three input shapes — a bare number, a {total, currency}
// object, or itself — and always serializes as the object shape. The
// dict-or-object decoding mirrors the teacher's discriminated-union
// Model config (provider structs keyed by a type switch over raw JSON
// shape rather than a tag field).
type Budget struct {
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// DefaultCurrency is used when a bare number is given with no sibling
// currency field to fall back on.
const DefaultCurrency = "USD"

func (b *Budget) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		b.Total = num
		b.Currency = DefaultCurrency
		return nil
	}

	type alias Budget
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("budget: expected number or {total, currency} object: %w", err)
	}
	if obj.Currency == "" {
		obj.Currency = DefaultCurrency
	}
	*b = Budget(obj)
	return nil
}

// ParseBudget normalizes the three accepted input shapes — number, dict,
// object — into a canonical (amount, currency) pair, applying
// fallbackCurrency when the payload carries none of its own. It is the
// helper referenced in the schema-layer spec for the Budget oneOf.
func ParseBudget(raw json.RawMessage, fallbackCurrency string) (amount float64, currency string, err error) {
	var b Budget
	if err := json.Unmarshal(raw, &b); err != nil {
		return 0, "", err
	}
	if fallbackCurrency != "" {
		// A bare number, or an object without its own currency, takes
		// the sibling field's currency instead of the package default.
		var own struct {
			Currency string `json:"currency"`
		}
		if json.Unmarshal(raw, &own) != nil || own.Currency == "" {
			b.Currency = fallbackCurrency
		}
	}
	return b.Total, b.Currency, nil
}

// CoerceLegacyBudget promotes a flat total_budget + currency pair (the
// pre-nested-Budget wire shape) into a Budget, per the legacy-alias
// coercion rule in the schema layer.
func CoerceLegacyBudget(totalBudget float64, currency string) Budget {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Budget{Total: totalBudget, Currency: currency}
}
