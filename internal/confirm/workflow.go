// Package confirm applies user decisions about classified detections to
// the inventory. Detections never enter the inventory on their own: a
// confirm, modify, or reject decision is the only path in.
package confirm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pantrylens/pantry-cli/internal/canonical"
	"github.com/pantrylens/pantry-cli/internal/model"
	"github.com/pantrylens/pantry-cli/internal/store"
	"github.com/pantrylens/pantry-cli/internal/units"
)

// Action is the user's decision about one detection.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionReject  Action = "reject"
	ActionModify  Action = "modify"
)

// Decision is one user decision, matched to a detection by id.
// CorrectedLabel is required for modify and ignored otherwise. Quantity
// and Unit optionally override the detected quantity.
type Decision struct {
	DetectionID    string     `json:"detection_id"`
	Action         Action     `json:"action"`
	CorrectedLabel string     `json:"corrected_label,omitempty"`
	Quantity       *float64   `json:"quantity,omitempty"`
	Unit           model.Unit `json:"unit,omitempty"`
}

// Status is the per-detection outcome of applying a batch.
type Status string

const (
	StatusApplied        Status = "applied"
	StatusAlreadyApplied Status = "already-applied"
	StatusPending        Status = "pending"
	StatusFailed         Status = "failed"
)

// Outcome reports what happened to one detection.
type Outcome struct {
	DetectionID string               `json:"detection_id"`
	Action      Action               `json:"action,omitempty"`
	Status      Status               `json:"status"`
	Confidence  float64              `json:"confidence"`
	Item        *model.InventoryItem `json:"item,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Result summarizes one Apply call. Failures never abort the batch:
// every detection is attempted independently.
type Result struct {
	Confirmed int       `json:"confirmed"`
	Modified  int       `json:"modified"`
	Rejected  int       `json:"rejected"`
	Failed    int       `json:"failed"`
	Outcomes  []Outcome `json:"outcomes"`
}

// Workflow applies confirmation decisions against the store.
type Workflow struct {
	store store.Store
	reg   *canonical.Registry
}

// New creates a Workflow.
func New(st store.Store, reg *canonical.Registry) *Workflow {
	return &Workflow{store: st, reg: reg}
}

// Apply processes a batch of decisions. Each detection is applied
// exactly once: a detection id that was already applied is a no-op
// regardless of how many times the batch is retried. Detections with no
// matching decision are left pending.
func (w *Workflow) Apply(ctx context.Context, userID string, detections []model.ClassifiedDetection, decisions []Decision) (*Result, error) {
	if userID == "" {
		return nil, eris.New("confirm: user id is required")
	}

	byID := make(map[string]Decision, len(decisions))
	for _, dec := range decisions {
		byID[dec.DetectionID] = dec
	}

	res := &Result{}
	for _, det := range detections {
		dec, ok := byID[det.ID]
		if !ok {
			res.Outcomes = append(res.Outcomes, Outcome{
				DetectionID: det.ID,
				Status:      StatusPending,
				Confidence:  det.Confidence,
			})
			continue
		}
		out := w.applyOne(ctx, userID, det, dec)
		switch {
		case out.Status == StatusFailed:
			res.Failed++
		case out.Status == StatusApplied && dec.Action == ActionConfirm:
			res.Confirmed++
		case out.Status == StatusApplied && dec.Action == ActionModify:
			res.Modified++
		case out.Status == StatusApplied && dec.Action == ActionReject:
			res.Rejected++
		}
		res.Outcomes = append(res.Outcomes, out)
	}

	zap.L().Info("confirm: batch applied",
		zap.String("user", userID),
		zap.Int("confirmed", res.Confirmed),
		zap.Int("modified", res.Modified),
		zap.Int("rejected", res.Rejected),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (w *Workflow) applyOne(ctx context.Context, userID string, det model.ClassifiedDetection, dec Decision) Outcome {
	out := Outcome{DetectionID: det.ID, Action: dec.Action, Confidence: det.Confidence}

	canonicalName := det.CanonicalName
	displayName := det.DisplayName
	switch dec.Action {
	case ActionConfirm, ActionReject:
	case ActionModify:
		if dec.CorrectedLabel == "" {
			return failed(out, eris.New("confirm: modify requires a corrected label"))
		}
		ing := w.reg.Canonicalize(dec.CorrectedLabel)
		canonicalName = ing.Name
		displayName = ing.DisplayName
		// The user asserted the identity; detector confidence no longer
		// applies.
		out.Confidence = 1.0
	default:
		return failed(out, eris.Errorf("confirm: unknown action %q", dec.Action))
	}

	claimed, err := w.store.ClaimDetection(ctx, det.ID, userID, canonicalName)
	if err != nil {
		return failed(out, err)
	}
	if !claimed {
		out.Status = StatusAlreadyApplied
		return out
	}

	if dec.Action == ActionReject {
		out.Status = StatusApplied
		return out
	}

	item, err := w.upsert(ctx, userID, det, dec, canonicalName, displayName)
	if err != nil {
		if relErr := w.store.ReleaseDetection(ctx, det.ID); relErr != nil {
			zap.L().Warn("confirm: release after failed mutation",
				zap.String("detection", det.ID), zap.Error(relErr))
		}
		return failed(out, err)
	}
	out.Status = StatusApplied
	out.Item = item

	if dec.Action == ActionModify && det.CanonicalName != canonicalName {
		// Correction counters only feed suggestion ranking; losing one
		// must not fail the confirmation.
		if err := w.store.IncrementCorrection(ctx, userID, det.CanonicalName, canonicalName); err != nil {
			zap.L().Warn("confirm: increment correction",
				zap.String("detected", det.CanonicalName),
				zap.String("chosen", canonicalName),
				zap.Error(err))
		}
	}
	return out
}

// upsert merges the decided quantity into the inventory. When the item
// already exists in a different but convertible unit the quantity is
// converted before the increment; an incompatible unit is recorded as a
// reconcile note instead of being summed.
func (w *Workflow) upsert(ctx context.Context, userID string, det model.ClassifiedDetection, dec Decision, canonicalName, displayName string) (*model.InventoryItem, error) {
	var quantity *float64
	var unit model.Unit
	switch {
	case dec.Quantity != nil:
		quantity = dec.Quantity
		unit = dec.Unit
		if unit == "" && det.Quantity != nil {
			unit = det.Quantity.Unit
		}
		if unit == "" {
			unit = model.UnitPiece
		}
	case det.Quantity != nil:
		v := det.Quantity.Value
		quantity = &v
		unit = det.Quantity.Unit
	}

	existing, err := w.store.GetItem(ctx, userID, canonicalName)
	if err != nil {
		return nil, err
	}

	if existing != nil && quantity != nil && existing.Unit != unit {
		converted, convErr := units.Convert(*quantity, unit, existing.Unit)
		if convErr == nil {
			quantity = &converted
			unit = existing.Unit
		} else {
			var incompatible *units.IncompatibleUnitsError
			if !errors.As(convErr, &incompatible) {
				return nil, convErr
			}
			note := fmt.Sprintf("+%g %s from detection %s not merged (stored in %s)",
				*quantity, unit, det.ID, existing.Unit)
			if err := w.store.AppendReconcileNote(ctx, userID, canonicalName, note); err != nil {
				return nil, err
			}
			zap.L().Info("confirm: incompatible units, reconcile note recorded",
				zap.String("canonical", canonicalName),
				zap.String("stored", string(existing.Unit)),
				zap.String("incoming", string(unit)),
			)
			return w.store.GetItem(ctx, userID, canonicalName)
		}
	}

	return w.store.UpsertScanItem(ctx, userID, store.ScanDelta{
		CanonicalName: canonicalName,
		DisplayName:   displayName,
		Quantity:      quantity,
		Unit:          unit,
	})
}

func failed(out Outcome, err error) Outcome {
	out.Status = StatusFailed
	out.Error = err.Error()
	return out
}
