// Package canonical maps free-text ingredient labels to canonical
// identities using an embedded reference table, and exposes the
// similarity-group, allergen-family, and standard-serving lookups built
// from it.
package canonical

import (
	_ "embed"
	"sort"

	"github.com/agext/levenshtein"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/pantrylens/pantry-cli/internal/model"
)

//go:embed data/reference.yaml
var referenceData []byte

// DefaultSimilarityFloor is the minimum normalized similarity for a
// fuzzy label match to be accepted.
const DefaultSimilarityFloor = 0.75

// Serving is a per-person reference quantity.
type Serving struct {
	Quantity float64    `yaml:"quantity"`
	Unit     model.Unit `yaml:"unit"`
}

type referenceFile struct {
	Descriptors      []string                    `yaml:"descriptors"`
	Ingredients      []model.CanonicalIngredient `yaml:"ingredients"`
	AllergenFamilies map[string][]string         `yaml:"allergen_families"`
	StandardServings struct {
		Names      map[string]Serving `yaml:"names"`
		Categories map[string]Serving `yaml:"categories"`
	} `yaml:"standard_servings"`
}

// Registry is the process-wide immutable ingredient reference table.
// Built once at startup; all lookups are read-only afterwards.
type Registry struct {
	byName           map[string]model.CanonicalIngredient
	aliasToName      map[string]string
	groups           map[string][]string
	byCategory       map[model.IngredientCategory][]string
	names            []string
	aliases          []string
	descriptors      map[string]struct{}
	allergenFamilies map[string][]string
	servingByName    map[string]Serving
	servingByCat     map[model.IngredientCategory]Serving
	similarityFloor  float64
}

// Load parses the embedded reference data into a Registry.
func Load() (*Registry, error) {
	return LoadWithFloor(DefaultSimilarityFloor)
}

// LoadWithFloor parses the embedded reference data with a custom fuzzy
// similarity floor.
func LoadWithFloor(floor float64) (*Registry, error) {
	var ref referenceFile
	if err := yaml.Unmarshal(referenceData, &ref); err != nil {
		return nil, eris.Wrap(err, "canonical: parse reference data")
	}
	if len(ref.Ingredients) == 0 {
		return nil, eris.New("canonical: reference data has no ingredients")
	}

	r := &Registry{
		byName:           make(map[string]model.CanonicalIngredient, len(ref.Ingredients)),
		aliasToName:      make(map[string]string),
		groups:           make(map[string][]string),
		byCategory:       make(map[model.IngredientCategory][]string),
		descriptors:      make(map[string]struct{}, len(ref.Descriptors)),
		allergenFamilies: ref.AllergenFamilies,
		servingByName:    ref.StandardServings.Names,
		servingByCat:     make(map[model.IngredientCategory]Serving, len(ref.StandardServings.Categories)),
		similarityFloor:  floor,
	}

	for _, ing := range ref.Ingredients {
		ing.Known = true
		if _, dup := r.byName[ing.Name]; dup {
			return nil, eris.Errorf("canonical: duplicate ingredient %q", ing.Name)
		}
		r.byName[ing.Name] = ing
		r.names = append(r.names, ing.Name)
		r.byCategory[ing.Category] = append(r.byCategory[ing.Category], ing.Name)
		if ing.Group != "" {
			r.groups[ing.Group] = append(r.groups[ing.Group], ing.Name)
		}
		for _, alias := range ing.Aliases {
			r.aliasToName[alias] = ing.Name
			r.aliases = append(r.aliases, alias)
		}
	}
	sort.Strings(r.names)
	sort.Strings(r.aliases)

	for _, d := range ref.Descriptors {
		r.descriptors[d] = struct{}{}
	}
	for cat, s := range ref.StandardServings.Categories {
		r.servingByCat[model.IngredientCategory(cat)] = s
	}

	return r, nil
}

// Lookup returns the canonical ingredient for an exact canonical name.
func (r *Registry) Lookup(name string) (model.CanonicalIngredient, bool) {
	ing, ok := r.byName[name]
	return ing, ok
}

// Names returns all canonical names in lexical order.
func (r *Registry) Names() []string {
	return r.names
}

// GroupMembers returns the visual-similarity-group co-members of a
// canonical name, excluding the name itself. Nil when the ingredient is
// unknown or ungrouped.
func (r *Registry) GroupMembers(name string) []string {
	ing, ok := r.byName[name]
	if !ok || ing.Group == "" {
		return nil
	}
	var members []string
	for _, m := range r.groups[ing.Group] {
		if m != name {
			members = append(members, m)
		}
	}
	return members
}

// ByCategory returns the canonical names in an ingredient category.
func (r *Registry) ByCategory(cat model.IngredientCategory) []string {
	return r.byCategory[cat]
}

// AllergenFamily returns the canonical names covered by a declared
// allergen. A declared allergen that is itself a canonical name (e.g.
// "peanut") covers at least that name.
func (r *Registry) AllergenFamily(allergen string) []string {
	if members, ok := r.allergenFamilies[allergen]; ok {
		return members
	}
	if _, ok := r.byName[allergen]; ok {
		return []string{allergen}
	}
	return nil
}

// StandardServing returns the per-person serving for a canonical name,
// falling back to its category default.
func (r *Registry) StandardServing(name string, cat model.IngredientCategory) (Serving, bool) {
	if s, ok := r.servingByName[name]; ok {
		return s, true
	}
	s, ok := r.servingByCat[cat]
	return s, ok
}

// Similarity returns the normalized edit-distance similarity of two
// names in [0,1].
func (r *Registry) Similarity(a, b string) float64 {
	return levenshtein.Similarity(a, b, nil)
}

// SimilarityFloor returns the configured fuzzy-match floor.
func (r *Registry) SimilarityFloor() float64 {
	return r.similarityFloor
}
