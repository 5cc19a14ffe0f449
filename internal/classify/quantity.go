package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pantrylens/pantry-cli/internal/model"
	"github.com/pantrylens/pantry-cli/internal/units"
)

// ocrQuantityPattern matches a leading numeric value followed by a unit
// token, e.g. "500g", "1.5 kg", "2 x 250ml".
var ocrQuantityPattern = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)\s*([a-zA-Z]+)`)

// extractQuantity reads a quantity from a detection. OCR text takes
// precedence; a visual bulk count is used only when no OCR text exists.
// Both sources produce the same shape so downstream code never branches
// on origin.
func extractQuantity(raw model.RawDetection) *model.DetectedQuantity {
	if raw.OCRText != "" {
		return parseOCRQuantity(raw.OCRText)
	}
	if raw.EstimatedCount > 0 {
		return &model.DetectedQuantity{
			Value:     float64(raw.EstimatedCount),
			Unit:      model.UnitPiece,
			Source:    model.SourceVisualEstimate,
			Estimated: true,
		}
	}
	return nil
}

// parseOCRQuantity parses a leading value plus recognized unit token.
// Any parse failure yields nil: a missing quantity is preferable to a
// wrong one.
func parseOCRQuantity(text string) *model.DetectedQuantity {
	m := ocrQuantityPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil || value <= 0 {
		return nil
	}
	unit, ok := units.ParseUnit(m[2])
	if !ok {
		return nil
	}

	return &model.DetectedQuantity{
		Value:     value,
		Unit:      unit,
		Source:    model.SourceLabelOCR,
		Estimated: false,
	}
}
