// Package sufficiency checks whether a user's inventory covers a
// recipe's requirements at a target serving count, and derives a
// shopping list for the shortfalls.
package sufficiency

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pantrylens/pantry-cli/internal/canonical"
	"github.com/pantrylens/pantry-cli/internal/model"
	"github.com/pantrylens/pantry-cli/internal/store"
	"github.com/pantrylens/pantry-cli/internal/units"
)

// SurplusFactor is the multiple of the requirement above which an
// ingredient is reported as surplus.
const SurplusFactor = 1.5

// InvalidServingsError reports a non-positive serving count. Terminal
// and user-facing.
type InvalidServingsError struct {
	Target int
	Base   int
}

func (e *InvalidServingsError) Error() string {
	return fmt.Sprintf("sufficiency: serving counts must be positive (target %d, base %d)", e.Target, e.Base)
}

// Checker computes sufficiency against the stored inventory.
type Checker struct {
	store store.Store
	reg   *canonical.Registry
}

// New creates a Checker.
func New(st store.Store, reg *canonical.Registry) *Checker {
	return &Checker{store: st, reg: reg}
}

// Check scales the requirements from baseServings to targetServings and
// compares them against the inventory. An ingredient whose held
// quantity cannot be compared (untracked amount, incompatible units) is
// reported as unknown and never counted as sufficient.
func (c *Checker) Check(ctx context.Context, userID string, reqs []model.Requirement, targetServings, baseServings int) (*model.SufficiencyResult, error) {
	if targetServings <= 0 || baseServings <= 0 {
		return nil, &InvalidServingsError{Target: targetServings, Base: baseServings}
	}
	scale := float64(targetServings) / float64(baseServings)

	res := &model.SufficiencyResult{}
	for _, req := range reqs {
		needed, unit, ok := c.neededQuantity(req, scale, targetServings)
		if !ok {
			res.Unknown = append(res.Unknown, model.UnknownEntry{
				CanonicalName: req.CanonicalName,
				Reason:        "no quantity given and no standard serving known",
			})
			continue
		}

		item, err := c.store.GetItem(ctx, userID, req.CanonicalName)
		if err != nil {
			return nil, err
		}

		held := 0.0
		if item != nil {
			if item.Quantity == nil {
				res.Unknown = append(res.Unknown, model.UnknownEntry{
					CanonicalName: req.CanonicalName,
					Reason:        "inventory quantity not tracked",
				})
				continue
			}
			converted, convErr := units.Convert(*item.Quantity, item.Unit, unit)
			if convErr != nil {
				// Guessing a density could hide a real shortfall, so an
				// unconvertible holding counts as unknown, not as held.
				res.Unknown = append(res.Unknown, model.UnknownEntry{
					CanonicalName: req.CanonicalName,
					Reason: fmt.Sprintf("held in %s, required in %s: %v",
						item.Unit, unit, convErr),
				})
				continue
			}
			held = converted
		}

		switch {
		case held < needed:
			res.Missing = append(res.Missing, model.ShortfallEntry{
				CanonicalName: req.CanonicalName,
				Needed:        needed - held,
				Unit:          unit,
			})
		case needed > 0 && held > needed*SurplusFactor:
			res.Surplus = append(res.Surplus, model.SurplusEntry{
				CanonicalName: req.CanonicalName,
				Excess:        held - needed,
				Unit:          unit,
			})
		}
	}

	res.Sufficient = len(res.Missing) == 0 && len(res.Unknown) == 0
	zap.L().Debug("sufficiency: check complete",
		zap.String("user", userID),
		zap.Int("target_servings", targetServings),
		zap.Bool("sufficient", res.Sufficient),
		zap.Int("missing", len(res.Missing)),
		zap.Int("unknown", len(res.Unknown)),
	)
	return res, nil
}

// neededQuantity resolves a requirement to a target quantity. Explicit
// quantities scale with the serving ratio; free-form requirements fall
// back to the standard per-person serving times the target count.
func (c *Checker) neededQuantity(req model.Requirement, scale float64, targetServings int) (float64, model.Unit, bool) {
	if req.Quantity != nil {
		return *req.Quantity * scale, req.Unit, true
	}

	cat := model.CategoryOther
	if ing, ok := c.reg.Lookup(req.CanonicalName); ok {
		cat = ing.Category
	}
	serving, ok := c.reg.StandardServing(req.CanonicalName, cat)
	if !ok {
		return 0, "", false
	}
	return serving.Quantity * float64(targetServings), serving.Unit, true
}
