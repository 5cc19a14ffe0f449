package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrylens/pantry-cli/internal/canonical"
	"github.com/pantrylens/pantry-cli/internal/model"
	"github.com/pantrylens/pantry-cli/internal/suggest"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	reg, err := canonical.Load()
	require.NoError(t, err)
	return New(reg, suggest.New(reg, nil))
}

func TestTierFor_PartitionsConfidenceRange(t *testing.T) {
	tests := []struct {
		confidence float64
		want       model.Tier
	}{
		{0.0, model.TierLow},
		{0.25, model.TierLow},
		{0.499999, model.TierLow},
		{0.50, model.TierMedium},
		{0.65, model.TierMedium},
		{0.799999, model.TierMedium},
		{0.80, model.TierHigh},
		{0.95, model.TierHigh},
		{1.0, model.TierHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, model.TierFor(tt.confidence), "confidence %v", tt.confidence)
	}
}

func TestClassify_HighTierGetsNoAlternatives(t *testing.T) {
	c := newTestClassifier(t)

	cd := c.Classify(context.Background(), "u1", model.RawDetection{
		ID:         "d1",
		Label:      "chicken",
		Confidence: 0.92,
	}, model.SafetyConstraints{})

	assert.Equal(t, model.TierHigh, cd.Tier)
	assert.Empty(t, cd.Alternatives)
	assert.Equal(t, "chicken", cd.CanonicalName)
	assert.True(t, cd.Known)
	assert.Contains(t, cd.SuggestedUnits, model.UnitGram)
}

func TestClassify_MediumTierCarriesGroupAlternatives(t *testing.T) {
	c := newTestClassifier(t)

	cd := c.Classify(context.Background(), "u1", model.RawDetection{
		ID:         "d2",
		Label:      "kale",
		Confidence: 0.55,
	}, model.SafetyConstraints{})

	assert.Equal(t, model.TierMedium, cd.Tier)
	require.NotEmpty(t, cd.Alternatives)
	assert.LessOrEqual(t, len(cd.Alternatives), suggest.MaxAlternatives)
	assert.Contains(t, cd.Alternatives, "spinach")
}

func TestClassify_AllergenWarningNeverBlocks(t *testing.T) {
	c := newTestClassifier(t)
	cons := model.SafetyConstraints{Allergens: []string{"dairy"}}

	cd := c.Classify(context.Background(), "u1", model.RawDetection{
		ID:         "d3",
		Label:      "whole milk",
		Confidence: 0.88,
	}, cons)

	assert.Equal(t, "milk", cd.CanonicalName)
	require.NotEmpty(t, cd.AllergenWarnings)
	assert.Contains(t, cd.AllergenWarnings[0], "dairy")
	// The detection itself is still delivered for the user to decide.
	assert.Equal(t, model.TierHigh, cd.Tier)
}

func TestClassify_GroupCoMemberAllergenWarns(t *testing.T) {
	c := newTestClassifier(t)
	cons := model.SafetyConstraints{Allergens: []string{"dairy"}}

	// Buttermilk shares the dairy-liquids group with milk; a detection
	// of anything in that group warns even before exact identity is
	// confirmed.
	cd := c.Classify(context.Background(), "u1", model.RawDetection{
		ID:         "d4",
		Label:      "buttermilk",
		Confidence: 0.45,
	}, cons)

	assert.Equal(t, model.TierLow, cd.Tier)
	require.NotEmpty(t, cd.AllergenWarnings)
}

func TestClassify_UnknownLabelStillFlows(t *testing.T) {
	c := newTestClassifier(t)

	cd := c.Classify(context.Background(), "u1", model.RawDetection{
		ID:         "d5",
		Label:      "mystery paste",
		Confidence: 0.30,
	}, model.SafetyConstraints{})

	assert.False(t, cd.Known)
	assert.Equal(t, model.TierLow, cd.Tier)
	assert.Equal(t, model.CategoryOther, cd.Category)
}

func TestClassify_AssignsIDWhenMissing(t *testing.T) {
	c := newTestClassifier(t)

	cd := c.Classify(context.Background(), "u1", model.RawDetection{
		Label:      "onion",
		Confidence: 0.9,
	}, model.SafetyConstraints{})
	assert.NotEmpty(t, cd.ID)
}

func TestClassifyBatch_PreservesOrder(t *testing.T) {
	c := newTestClassifier(t)

	raws := []model.RawDetection{
		{ID: "a", Label: "kale", Confidence: 0.55},
		{ID: "b", Label: "milk", Confidence: 0.91},
		{ID: "c", Label: "mystery goo", Confidence: 0.2},
	}
	got := c.ClassifyBatch(context.Background(), "u1", raws, model.SafetyConstraints{})

	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
	assert.Equal(t, model.TierMedium, got[0].Tier)
	assert.Equal(t, model.TierHigh, got[1].Tier)
	assert.Equal(t, model.TierLow, got[2].Tier)
}
