package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrylens/pantry-cli/internal/model"
)

func TestParseOCRQuantity(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *model.DetectedQuantity
	}{
		{
			"grams attached",
			"500g",
			&model.DetectedQuantity{Value: 500, Unit: model.UnitGram, Source: model.SourceLabelOCR},
		},
		{
			"decimal kilograms",
			"1.5 kg net weight",
			&model.DetectedQuantity{Value: 1.5, Unit: model.UnitKilogram, Source: model.SourceLabelOCR},
		},
		{
			"comma decimal",
			"0,75 l",
			&model.DetectedQuantity{Value: 0.75, Unit: model.UnitLiter, Source: model.SourceLabelOCR},
		},
		{
			"count with x",
			"6 x large eggs",
			&model.DetectedQuantity{Value: 6, Unit: model.UnitPiece, Source: model.SourceLabelOCR},
		},
		{"no leading number", "net weight 500g", nil},
		{"unrecognized unit", "3 blobs", nil},
		{"bare number", "500", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseOCRQuantity(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want.Value, got.Value)
			assert.Equal(t, tt.want.Unit, got.Unit)
			assert.Equal(t, model.SourceLabelOCR, got.Source)
			assert.False(t, got.Estimated)
		})
	}
}

func TestExtractQuantity_SourcePrecedence(t *testing.T) {
	// OCR text wins over a visual count.
	q := extractQuantity(model.RawDetection{OCRText: "250 ml", EstimatedCount: 3})
	require.NotNil(t, q)
	assert.Equal(t, model.SourceLabelOCR, q.Source)
	assert.False(t, q.Estimated)

	// Visual count only when no OCR text exists.
	q = extractQuantity(model.RawDetection{EstimatedCount: 4})
	require.NotNil(t, q)
	assert.Equal(t, model.SourceVisualEstimate, q.Source)
	assert.Equal(t, 4.0, q.Value)
	assert.Equal(t, model.UnitPiece, q.Unit)
	assert.True(t, q.Estimated)

	// OCR present but unparseable: quantity stays nil, never falls back
	// to the visual estimate.
	q = extractQuantity(model.RawDetection{OCRText: "best before 2027", EstimatedCount: 3})
	assert.Nil(t, q)

	// Nothing available.
	assert.Nil(t, extractQuantity(model.RawDetection{}))
}
