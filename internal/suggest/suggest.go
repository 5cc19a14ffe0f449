// Package suggest proposes safe alternative canonical names for
// ambiguous detections. Candidates come from visual-similarity groups,
// fuzzy name proximity, and shared ingredient category; anything
// touching a declared allergen or dietary restriction is removed
// outright before ranking.
package suggest

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/pantrylens/pantry-cli/internal/canonical"
	"github.com/pantrylens/pantry-cli/internal/model"
)

// MaxAlternatives caps the suggestion list length.
const MaxAlternatives = 5

// DefaultFuzzyThreshold is the minimum name similarity for a candidate
// drawn from fuzzy proximity alone.
const DefaultFuzzyThreshold = 0.6

// CorrectionCounter reports how often the household previously
// corrected a detected name to each alternative. Used as the weakest
// ranking signal; a lookup failure only disables it.
type CorrectionCounter interface {
	CorrectionCounts(ctx context.Context, userID, detected string) (map[string]int, error)
}

// Suggester ranks safe alternatives for a canonical name.
type Suggester struct {
	reg            *canonical.Registry
	counts         CorrectionCounter
	fuzzyThreshold float64
}

// New creates a Suggester. counts may be nil, which disables the
// correction-frequency signal.
func New(reg *canonical.Registry, counts CorrectionCounter) *Suggester {
	return &Suggester{reg: reg, counts: counts, fuzzyThreshold: DefaultFuzzyThreshold}
}

// WithFuzzyThreshold overrides the fuzzy-proximity candidate floor.
func (s *Suggester) WithFuzzyThreshold(threshold float64) *Suggester {
	if threshold > 0 {
		s.fuzzyThreshold = threshold
	}
	return s
}

type candidate struct {
	name       string
	inGroup    bool
	similarity float64
	sameCat    bool
	frequency  int
}

// Suggest returns up to MaxAlternatives canonical names close to the
// given one, filtered by the household's safety constraints.
func (s *Suggester) Suggest(ctx context.Context, userID, canonicalName string, cons model.SafetyConstraints) []string {
	ing, known := s.reg.Lookup(canonicalName)

	pool := make(map[string]*candidate)
	add := func(name string) *candidate {
		if name == canonicalName {
			return nil
		}
		c, ok := pool[name]
		if !ok {
			c = &candidate{name: name}
			pool[name] = c
		}
		return c
	}

	for _, m := range s.reg.GroupMembers(canonicalName) {
		if c := add(m); c != nil {
			c.inGroup = true
		}
	}
	for _, name := range s.reg.Names() {
		score := s.reg.Similarity(canonicalName, name)
		if score >= s.fuzzyThreshold {
			if c := add(name); c != nil {
				c.similarity = score
			}
		}
	}
	if known {
		for _, name := range s.reg.ByCategory(ing.Category) {
			if c := add(name); c != nil {
				c.sameCat = true
			}
		}
	}

	unsafe := s.unsafeSet(cons)

	var freq map[string]int
	if s.counts != nil {
		var err error
		freq, err = s.counts.CorrectionCounts(ctx, userID, canonicalName)
		if err != nil {
			zap.L().Warn("suggest: correction counts unavailable",
				zap.String("canonical", canonicalName),
				zap.Error(err),
			)
			freq = nil
		}
	}

	var ranked []*candidate
	for _, c := range pool {
		if _, excluded := unsafe[c.name]; excluded {
			continue
		}
		if s.violatesDiet(c.name, cons) {
			continue
		}
		c.frequency = freq[c.name]
		// Recompute similarity for group/category candidates so the
		// second ranking key is populated uniformly.
		if c.similarity == 0 {
			c.similarity = s.reg.Similarity(canonicalName, c.name)
		}
		ranked = append(ranked, c)
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.inGroup != b.inGroup {
			return a.inGroup
		}
		if a.similarity != b.similarity {
			return a.similarity > b.similarity
		}
		if a.sameCat != b.sameCat {
			return a.sameCat
		}
		if a.frequency != b.frequency {
			return a.frequency > b.frequency
		}
		return a.name < b.name
	})

	if len(ranked) > MaxAlternatives {
		ranked = ranked[:MaxAlternatives]
	}
	names := make([]string, len(ranked))
	for i, c := range ranked {
		names[i] = c.name
	}
	return names
}

// unsafeSet expands declared allergens into the full set of canonical
// names that must never be suggested: the allergen family members and
// their visual-similarity-group co-members.
func (s *Suggester) unsafeSet(cons model.SafetyConstraints) map[string]struct{} {
	unsafe := make(map[string]struct{})
	for _, allergen := range cons.Allergens {
		for _, member := range s.reg.AllergenFamily(allergen) {
			unsafe[member] = struct{}{}
			for _, co := range s.reg.GroupMembers(member) {
				unsafe[co] = struct{}{}
			}
		}
	}
	return unsafe
}

// violatesDiet reports whether a candidate conflicts with the declared
// dietary restrictions. Unknown restriction values fail closed: any
// animal-product candidate is excluded.
func (s *Suggester) violatesDiet(name string, cons model.SafetyConstraints) bool {
	if len(cons.Diets) == 0 {
		return false
	}
	ing, ok := s.reg.Lookup(name)
	if !ok {
		// Cannot evaluate constraints for an unknown ingredient.
		return true
	}
	for _, diet := range cons.Diets {
		switch diet {
		case model.DietVegetarian:
			if ing.HasTag(model.TagMeat) || ing.HasTag(model.TagSeafood) {
				return true
			}
		case model.DietVegan:
			if ing.HasTag(model.TagMeat) || ing.HasTag(model.TagSeafood) ||
				ing.HasTag(model.TagDairy) || ing.HasTag(model.TagEgg) {
				return true
			}
		default:
			if ing.HasTag(model.TagMeat) || ing.HasTag(model.TagSeafood) ||
				ing.HasTag(model.TagDairy) || ing.HasTag(model.TagEgg) {
				return true
			}
		}
	}
	return false
}
