package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// EntityKind names one of the four card-carrying sub-entity lists.
type EntityKind string

const (
	KindPlace         EntityKind = "place"
	KindActivity      EntityKind = "activity"
	KindAccommodation EntityKind = "accommodation"
	KindTransport     EntityKind = "transport"
)

// SetStatus sets the flat status of one card. Any trip member may call it and
// any of the four states may follow any other. For activities the approved
// flag tracks the status so the two stay in lockstep.
func (t *Trip) SetStatus(kind EntityKind, id uuid.UUID, status Status) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	switch kind {
	case KindPlace:
		for i := range t.Places {
			if t.Places[i].ID == id {
				t.Places[i].Status = status
				return nil
			}
		}
	case KindActivity:
		for i := range t.Activities {
			if t.Activities[i].ID == id {
				t.Activities[i].Status = status
				t.Activities[i].Approved = status == StatusApproved
				return nil
			}
		}
	case KindAccommodation:
		for i := range t.Accommodations {
			if t.Accommodations[i].ID == id {
				t.Accommodations[i].Status = status
				return nil
			}
		}
	case KindTransport:
		for i := range t.Transports {
			if t.Transports[i].ID == id {
				t.Transports[i].Status = status
				return nil
			}
		}
	default:
		return fmt.Errorf("%w: unknown entity kind %q", ErrValidation, kind)
	}
	return fmt.Errorf("domain.Trip.SetStatus: %w", ErrNotFound)
}
