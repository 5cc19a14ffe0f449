package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrylens/pantry-cli/internal/model"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Load()
	require.NoError(t, err)
	return r
}

func TestCanonicalize_ExactAndDescriptorStripping(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		label string
		want  string
	}{
		{"whole milk, 2%", "milk"},
		{"Yellow onion", "onion"},
		{"Chicken", "chicken"},
		{"fresh spinach", "spinach"},
		{"Frozen Peas", "peas"},
		{"organic baby kale", "kale"},
		{"sliced cheddar cheese", "cheddar"},
		{"Tomatoes", "tomato"},
		{"strawberries", "strawberry"},
		{"scallions", "green onion"},
		{"garbanzo beans", "chickpeas"},
		{"extra virgin olive oil", "olive oil"},
		{"ground beef", "beef"},
		{"boneless skinless chicken", "chicken"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := r.Canonicalize(tt.label)
			assert.Equal(t, tt.want, got.Name)
			assert.True(t, got.Known)
		})
	}
}

func TestCanonicalize_FuzzyMatch(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		label string
		want  string
	}{
		{"brocoli", "broccoli"},
		{"zuchini", "zucchini"},
		{"avocadoo", "avocado"},
		{"jalapeño", "jalapeno"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := r.Canonicalize(tt.label)
			assert.Equal(t, tt.want, got.Name)
			assert.True(t, got.Known)
		})
	}
}

func TestCanonicalize_UnknownLabel(t *testing.T) {
	r := newTestRegistry(t)

	got := r.Canonicalize("Dragonfruit Syrup XQ")
	assert.False(t, got.Known)
	assert.Equal(t, model.CategoryOther, got.Category)
	assert.Equal(t, "dragonfruit syrup xq", got.Name)
	assert.Equal(t, "Dragonfruit Syrup XQ", got.DisplayName)
}

func TestCanonicalize_NeverEmpty(t *testing.T) {
	r := newTestRegistry(t)

	got := r.Canonicalize("")
	assert.False(t, got.Known)
	got = r.Canonicalize("   123  %% ")
	assert.False(t, got.Known)
}

func TestSingularize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"onions", "onion"},
		{"tomatoes", "tomato"},
		{"berries", "berry"},
		{"peaches", "peach"},
		{"radishes", "radish"},
		{"boxes", "box"},
		{"glass", "glass"},
		{"hummus", "hummus"},
		{"milk", "milk"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, singularize(tt.in), "token %q", tt.in)
	}
}
