package services

import (
	"fmt"
	"time"

	"restaurant_ops_backend/internal/models"
)

// nextUnitStatus is the single legal successor of each unit state.
var nextUnitStatus = map[models.UnitStatus]models.UnitStatus{
	models.UnitStatusPending:   models.UnitStatusPreparing,
	models.UnitStatusPreparing: models.UnitStatusReady,
}

// AssignCook records the cook of a unit. Only pending units take a cook.
func AssignCook(unit *models.PreparationUnitInstance, cookID int64, now time.Time) error {
	if unit.Status != models.UnitStatusPending {
		return fmt.Errorf("%w: cannot assign a cook to unit %d in state %s", ErrInvalidTransition, unit.ID, unit.Status)
	}
	unit.CookID = &cookID
	unit.UpdatedAt = now
	return nil
}

// Advance moves a unit exactly one step forward. Starting preparation requires
// an assigned cook; ready is terminal.
func Advance(unit *models.PreparationUnitInstance, now time.Time) error {
	next, ok := nextUnitStatus[unit.Status]
	if !ok {
		return fmt.Errorf("%w: unit %d is already %s", ErrInvalidTransition, unit.ID, unit.Status)
	}
	if next == models.UnitStatusPreparing && unit.CookID == nil {
		return fmt.Errorf("%w: unit %d needs a cook before preparation starts", ErrInvalidTransition, unit.ID)
	}
	unit.Status = next
	unit.UpdatedAt = now
	return nil
}

// applyUnitStatus drives a unit toward target: the same state is a no-op, the
// next state advances, anything else is rejected.
func applyUnitStatus(unit *models.PreparationUnitInstance, target models.UnitStatus, cookID *int64, now time.Time) (changed bool, err error) {
	if cookID != nil && (unit.CookID == nil || *unit.CookID != *cookID) {
		if err := AssignCook(unit, *cookID, now); err != nil {
			return false, err
		}
		changed = true
	}
	if unit.Status == target {
		return changed, nil
	}
	if nextUnitStatus[unit.Status] != target {
		return false, fmt.Errorf("%w: unit %d cannot move from %s to %s", ErrInvalidTransition, unit.ID, unit.Status, target)
	}
	if err := Advance(unit, now); err != nil {
		return false, err
	}
	return true, nil
}
