package model

// Requirement is one ingredient requirement of a recipe at its base
// serving count. Quantity may be nil for free-form requirements, in
// which case the standard-serving table supplies a per-person fallback.
type Requirement struct {
	CanonicalName string   `json:"canonical_name" yaml:"ingredient"`
	Quantity      *float64 `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Unit          Unit     `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// ShortfallEntry reports an ingredient the inventory cannot cover.
type ShortfallEntry struct {
	CanonicalName string  `json:"canonical_name"`
	Needed        float64 `json:"needed"`
	Unit          Unit    `json:"unit"`
}

// SurplusEntry reports an ingredient held well beyond the requirement.
type SurplusEntry struct {
	CanonicalName string  `json:"canonical_name"`
	Excess        float64 `json:"excess"`
	Unit          Unit    `json:"unit"`
}

// UnknownEntry reports an ingredient whose sufficiency could not be
// determined. Never treated as sufficient.
type UnknownEntry struct {
	CanonicalName string `json:"canonical_name"`
	Reason        string `json:"reason"`
}

// SufficiencyResult is the computed outcome of a sufficiency check.
// Not persisted.
type SufficiencyResult struct {
	Sufficient bool             `json:"sufficient"`
	Missing    []ShortfallEntry `json:"missing,omitempty"`
	Surplus    []SurplusEntry   `json:"surplus,omitempty"`
	Unknown    []UnknownEntry   `json:"unknown,omitempty"`
}

// ShoppingItem is one shopping-list line. Exact holds the computed
// shortfall before rounding; Quantity is rounded up to a practical
// purchase increment.
type ShoppingItem struct {
	CanonicalName string  `json:"canonical_name"`
	Exact         float64 `json:"exact"`
	Quantity      float64 `json:"quantity"`
	Unit          Unit    `json:"unit"`
}
