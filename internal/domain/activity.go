package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ApprovalPolicy selects what approving one activity does to its siblings
// on the same day. Both behaviors are supported and the caller picks one at
// startup.
type ApprovalPolicy string

const (
	// ApprovalIndependent approves only the targeted activity and leaves all
	// others untouched. This is the default: approved activities on different
	// days coexist.
	ApprovalIndependent ApprovalPolicy = "independent"

	// ApprovalExclusive sets every activity's approved flag to "is it the
	// target", so approving one un-approves all others on the trip.
	ApprovalExclusive ApprovalPolicy = "exclusive"
)

// ValidApprovalPolicy reports whether p is a known policy.
func ValidApprovalPolicy(p ApprovalPolicy) bool {
	return p == ApprovalIndependent || p == ApprovalExclusive
}

func (t *Trip) findActivity(id uuid.UUID) *Activity {
	for i := range t.Activities {
		if t.Activities[i].ID == id {
			return &t.Activities[i]
		}
	}
	return nil
}

// ToggleVote flips the user's membership in the activity's vote set: voting
// twice is an un-vote. Voting is only meaningful while the activity is still a
// proposal; once approved the vote set is frozen and ErrValidation is returned.
func (t *Trip) ToggleVote(activityID, userID uuid.UUID) error {
	a := t.findActivity(activityID)
	if a == nil {
		return fmt.Errorf("domain.Trip.ToggleVote: %w", ErrNotFound)
	}
	if a.Approved {
		return fmt.Errorf("%w: activity is already approved", ErrValidation)
	}
	for i, v := range a.Votes {
		if v == userID {
			a.Votes = append(a.Votes[:i], a.Votes[i+1:]...)
			return nil
		}
	}
	a.Votes = append(a.Votes, userID)
	return nil
}

// ApproveActivity moves an activity from proposal to itinerary. Only the trip
// creator may approve; anyone else gets ErrForbidden. Under
// ApprovalIndependent only the target changes; under ApprovalExclusive every
// other activity is un-approved in the same step. The status field is kept in
// lockstep with the approved flag.
func (t *Trip) ApproveActivity(activityID, actor uuid.UUID, policy ApprovalPolicy) error {
	if actor != t.CreatedBy {
		return fmt.Errorf("%w: only the trip creator can approve activities", ErrForbidden)
	}
	if t.findActivity(activityID) == nil {
		return fmt.Errorf("domain.Trip.ApproveActivity: %w", ErrNotFound)
	}

	switch policy {
	case ApprovalExclusive:
		for i := range t.Activities {
			approved := t.Activities[i].ID == activityID
			t.Activities[i].Approved = approved
			if approved {
				t.Activities[i].Status = StatusApproved
			} else if t.Activities[i].Status == StatusApproved {
				t.Activities[i].Status = StatusPossible
			}
		}
	default:
		a := t.findActivity(activityID)
		a.Approved = true
		a.Status = StatusApproved
	}
	return nil
}

// RemoveActivity deletes the activity outright. Unlike places, accommodations,
// and transports there is no retained "rejected" record for activities.
func (t *Trip) RemoveActivity(activityID uuid.UUID) error {
	for i := range t.Activities {
		if t.Activities[i].ID == activityID {
			t.Activities = append(t.Activities[:i], t.Activities[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("domain.Trip.RemoveActivity: %w", ErrNotFound)
}
