package model

// Tier classifies a detection's confidence into one of three fixed
// bands. The thresholds are constants shared by every component so the
// bands cannot drift between call sites.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Confidence band boundaries. The bands partition [0,1]:
// high = [0.80,1], medium = [0.50,0.80), low = [0,0.50).
const (
	HighConfidenceFloor   = 0.80
	MediumConfidenceFloor = 0.50
)

// TierFor returns the confidence tier for a raw confidence value.
func TierFor(confidence float64) Tier {
	switch {
	case confidence >= HighConfidenceFloor:
		return TierHigh
	case confidence >= MediumConfidenceFloor:
		return TierMedium
	default:
		return TierLow
	}
}

// AllowsAlternatives reports whether detections in this tier carry
// alternative suggestions. High-tier detections get none to minimize
// review friction.
func (t Tier) AllowsAlternatives() bool {
	return t != TierHigh
}

// QuantitySource identifies how a detected quantity was obtained.
type QuantitySource string

const (
	SourceLabelOCR       QuantitySource = "label-ocr"
	SourceVisualEstimate QuantitySource = "visual-estimate"
)

// DetectedQuantity is a quantity attached to a detection. OCR-parsed and
// visually estimated quantities share this shape so downstream code is
// source-agnostic.
type DetectedQuantity struct {
	Value     float64        `json:"value"`
	Unit      Unit           `json:"unit"`
	Source    QuantitySource `json:"source"`
	Estimated bool           `json:"estimated"`
}

// Region is optional bounding metadata from the vision collaborator.
type Region struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RawDetection is one noisy ingredient detection from the vision
// collaborator. Transient: never persisted directly.
type RawDetection struct {
	ID             string  `json:"id"`
	Label          string  `json:"label"`
	Confidence     float64 `json:"confidence"`
	OCRText        string  `json:"ocr_text,omitempty"`
	EstimatedCount int     `json:"estimated_count,omitempty"`
	Region         *Region `json:"region,omitempty"`
}

// ScanContext describes where a scan was taken. Passed through to
// logging unchanged.
type ScanContext struct {
	StorageArea string `json:"storage_area,omitempty"`
	Location    string `json:"location,omitempty"`
}

// ClassifiedDetection is a raw detection resolved to a canonical
// identity with tiering, alternatives, and allergen warnings attached.
// Created once per scan, consumed by the confirmation workflow, then
// discarded.
type ClassifiedDetection struct {
	ID               string             `json:"id"`
	Label            string             `json:"label"`
	CanonicalName    string             `json:"canonical_name"`
	DisplayName      string             `json:"display_name"`
	Category         IngredientCategory `json:"category"`
	Known            bool               `json:"known"`
	Confidence       float64            `json:"confidence"`
	Tier             Tier               `json:"tier"`
	Alternatives     []string           `json:"alternatives,omitempty"`
	AllergenWarnings []string           `json:"allergen_warnings,omitempty"`
	Quantity         *DetectedQuantity  `json:"quantity,omitempty"`
	SuggestedUnits   []Unit             `json:"suggested_units,omitempty"`
}
