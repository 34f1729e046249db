package bombtimer

import (
	"errors"
	"math"

	"github.com/c4timer/extension/pkg/host"
)

// ErrInvalidBomb is returned by Arm when the entity is missing or already gone,
// or when the plant time is not a number.
var ErrInvalidBomb = errors.New("invalid bomb")

// State tracks at most one planted bomb and the simulation time it was planted at.
// The plant time is NaN exactly when no bomb is tracked.
type State struct {
	bomb      host.EntityRef
	plantedAt float64
}

// NewState returns a disarmed State.
func NewState() *State {
	return &State{plantedAt: math.NaN()}
}

// Arm starts tracking bomb, replacing whatever was tracked before.
func (s *State) Arm(bomb host.EntityRef, plantedAt float64) error {
	if bomb == nil || !bomb.IsValid() || math.IsNaN(plantedAt) {
		return ErrInvalidBomb
	}
	s.bomb = bomb
	s.plantedAt = plantedAt
	return nil
}

// Disarm forgets the tracked bomb. Safe to call repeatedly.
func (s *State) Disarm() {
	s.bomb = nil
	s.plantedAt = math.NaN()
}

// IsArmed reports whether a bomb is tracked.
func (s *State) IsArmed() bool {
	return s.bomb != nil && !math.IsNaN(s.plantedAt)
}

// Bomb returns the tracked entity and its plant time. The entity may have been
// invalidated since it was armed; callers check IsValid before using it.
func (s *State) Bomb() (host.EntityRef, float64, bool) {
	if !s.IsArmed() {
		return nil, math.NaN(), false
	}
	return s.bomb, s.plantedAt, true
}
