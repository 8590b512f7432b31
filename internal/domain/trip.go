package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is the central aggregate participants collaboratively edit. One trip is
// one shared document: the remote store persists it whole, and conflict
// resolution replaces it whole (see the sync package).
//
// Invariants:
//   - UpdatedAt is monotonically non-decreasing per write (enforced by Touch).
//   - Users always contains CreatedBy.
//   - Every sub-entity id is unique within its list.
type Trip struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Users          []uuid.UUID     `json:"users"`
	CreatedBy      uuid.UUID       `json:"createdBy"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Currency       string          `json:"currency"`
	Progress       int             `json:"progress"`
	Chat           []ChatMessage   `json:"chat"`
	Places         []Place         `json:"places"`
	Activities     []Activity      `json:"activities"`
	Accommodations []Accommodation `json:"accommodations"`
	Transports     []Transport     `json:"transports"`
	Expenses       []Expense       `json:"expenses"`
	CoverImage     string          `json:"coverImage,omitempty"`
	ShareToken     string          `json:"shareToken,omitempty"`
}

// NewTrip constructs an empty trip owned by creator. The creator is always a
// member; currency defaults are the caller's concern.
func NewTrip(name string, creator uuid.UUID, currency string) Trip {
	now := time.Now().UTC()
	return Trip{
		ID:        uuid.New(),
		Name:      name,
		Users:     []uuid.UUID{creator},
		CreatedBy: creator,
		CreatedAt: now,
		UpdatedAt: now,
		Currency:  currency,
	}
}

// Touch advances UpdatedAt to the current time. If the wall clock reads at or
// before the stored timestamp (clock skew, sub-millisecond writes), the
// timestamp is bumped by one millisecond instead, so UpdatedAt never moves
// backwards and consecutive writes are distinguishable to the merge.
func (t *Trip) Touch() {
	now := time.Now().UTC()
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Millisecond)
	}
	t.UpdatedAt = now
}

// HasUser reports whether id is a member of the trip.
func (t *Trip) HasUser(id uuid.UUID) bool {
	for _, u := range t.Users {
		if u == id {
			return true
		}
	}
	return false
}

// AddUser appends id to the member list if not already present.
// Returns true when the membership actually changed.
func (t *Trip) AddUser(id uuid.UUID) bool {
	if t.HasUser(id) {
		return false
	}
	t.Users = append(t.Users, id)
	return true
}

// AddChatMessage appends one entry to the chat. The chat is append-only;
// entries are never edited or removed.
func (t *Trip) AddChatMessage(displayName, text string) {
	t.Chat = append(t.Chat, ChatMessage{
		User: displayName,
		Text: text,
		Time: time.Now().UTC(),
	})
}
