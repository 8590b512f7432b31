package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// NextPlaceOrder returns the rank a newly added place should get:
// one past the current maximum, or 1 for the first place.
func (t *Trip) NextPlaceOrder() int {
	max := 0
	for _, p := range t.Places {
		if p.Order > max {
			max = p.Order
		}
	}
	return max + 1
}

// MovePlaceUp swaps the place's rank with the place one rank above it.
// The swap is an atomic pairwise exchange, never a renumber, so a valid dense
// 1..N ranking stays a valid dense 1..N ranking.
// Returns ErrNotFound if the place does not exist and ErrValidation if it is
// already first.
func (t *Trip) MovePlaceUp(placeID uuid.UUID) error {
	return t.movePlace(placeID, -1)
}

// MovePlaceDown swaps the place's rank with the place one rank below it.
// Returns ErrNotFound if the place does not exist and ErrValidation if it is
// already last.
func (t *Trip) MovePlaceDown(placeID uuid.UUID) error {
	return t.movePlace(placeID, +1)
}

func (t *Trip) movePlace(placeID uuid.UUID, delta int) error {
	idx := -1
	for i := range t.Places {
		if t.Places[i].ID == placeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("domain.Trip.movePlace: %w", ErrNotFound)
	}

	target := t.Places[idx].Order + delta
	if target < 1 || target > len(t.Places) {
		return fmt.Errorf("%w: place already at boundary", ErrValidation)
	}

	for i := range t.Places {
		if i != idx && t.Places[i].Order == target {
			t.Places[i].Order, t.Places[idx].Order = t.Places[idx].Order, target
			return nil
		}
	}
	// Ranks were not dense; nothing occupies the target slot. Take it anyway.
	t.Places[idx].Order = target
	return nil
}
