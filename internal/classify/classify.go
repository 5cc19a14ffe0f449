// Package classify turns raw vision detections into classified
// detections: canonical identity, confidence tier, safe alternatives,
// allergen warnings, and a detected quantity when one can be read.
package classify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pantrylens/pantry-cli/internal/canonical"
	"github.com/pantrylens/pantry-cli/internal/model"
	"github.com/pantrylens/pantry-cli/internal/suggest"
	"github.com/pantrylens/pantry-cli/internal/units"
)

// DefaultMaxConcurrency bounds parallel classification of one batch.
const DefaultMaxConcurrency = 8

// Classifier assigns tiers, alternatives, and allergen warnings to raw
// detections. Stateless aside from its immutable collaborators.
type Classifier struct {
	reg            *canonical.Registry
	suggester      *suggest.Suggester
	maxConcurrency int
}

// New creates a Classifier.
func New(reg *canonical.Registry, suggester *suggest.Suggester) *Classifier {
	return &Classifier{reg: reg, suggester: suggester, maxConcurrency: DefaultMaxConcurrency}
}

// WithMaxConcurrency overrides the batch concurrency limit.
func (c *Classifier) WithMaxConcurrency(n int) *Classifier {
	if n > 0 {
		c.maxConcurrency = n
	}
	return c
}

// Classify converts one raw detection. Allergen matches produce
// warnings but never reject the detection: the same item may be safe
// for other household members, so accept/reject stays with the user.
func (c *Classifier) Classify(ctx context.Context, userID string, raw model.RawDetection, cons model.SafetyConstraints) model.ClassifiedDetection {
	ing := c.reg.Canonicalize(raw.Label)
	tier := model.TierFor(raw.Confidence)

	cd := model.ClassifiedDetection{
		ID:            detectionID(raw),
		Label:         raw.Label,
		CanonicalName: ing.Name,
		DisplayName:   ing.DisplayName,
		Category:      ing.Category,
		Known:         ing.Known,
		Confidence:    raw.Confidence,
		Tier:          tier,
	}

	if tier.AllowsAlternatives() {
		cd.Alternatives = c.suggester.Suggest(ctx, userID, ing.Name, cons)
	}

	cd.AllergenWarnings = c.allergenWarnings(ing.Name, cons)
	cd.Quantity = extractQuantity(raw)
	cd.SuggestedUnits = units.SuggestFor(ing)

	zap.L().Debug("classify: detection classified",
		zap.String("label", raw.Label),
		zap.String("canonical", cd.CanonicalName),
		zap.String("tier", string(cd.Tier)),
		zap.Int("alternatives", len(cd.Alternatives)),
		zap.Int("warnings", len(cd.AllergenWarnings)),
	)
	return cd
}

// ClassifyBatch classifies a scan's detections concurrently, preserving
// input order.
func (c *Classifier) ClassifyBatch(ctx context.Context, userID string, raws []model.RawDetection, cons model.SafetyConstraints) []model.ClassifiedDetection {
	out := make([]model.ClassifiedDetection, len(raws))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrency)
	for i, raw := range raws {
		i, raw := i, raw
		g.Go(func() error {
			out[i] = c.Classify(gCtx, userID, raw, cons)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// allergenWarnings checks the canonical name and its similarity-group
// co-members against the declared allergen set.
func (c *Classifier) allergenWarnings(name string, cons model.SafetyConstraints) []string {
	var warnings []string
	for _, allergen := range cons.Allergens {
		family := c.reg.AllergenFamily(allergen)
		if containsName(family, name) {
			warnings = append(warnings, fmt.Sprintf("contains declared allergen: %s", allergen))
			continue
		}
		for _, co := range c.reg.GroupMembers(name) {
			if containsName(family, co) {
				warnings = append(warnings, fmt.Sprintf("visually similar to declared allergen: %s", allergen))
				break
			}
		}
	}
	return warnings
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func detectionID(raw model.RawDetection) string {
	if raw.ID != "" {
		return raw.ID
	}
	return uuid.New().String()
}
