package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the flat per-card state shared by places, activities,
// accommodations, and transports. It is freely settable by any trip member;
// there are no guarded transitions.
type Status string

const (
	StatusNew      Status = "new"
	StatusPossible Status = "possible"
	StatusRejected Status = "rejected"
	StatusApproved Status = "approved"
)

// ValidStatus reports whether s is one of the four known card states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNew, StatusPossible, StatusRejected, StatusApproved:
		return true
	}
	return false
}

// TransportType classifies a transport leg.
type TransportType string

const (
	TransportPlane TransportType = "plane"
	TransportTrain TransportType = "train"
	TransportBus   TransportType = "bus"
	TransportCar   TransportType = "car"
	TransportShip  TransportType = "ship"
	TransportOther TransportType = "other"
)

// ValidTransportType reports whether t is a known transport type.
func ValidTransportType(t TransportType) bool {
	switch t {
	case TransportPlane, TransportTrain, TransportBus, TransportCar, TransportShip, TransportOther:
		return true
	}
	return false
}

// Place is a destination within a trip. Order is a dense 1-based rank defining
// the manual sequence; reordering swaps adjacent ranks.
type Place struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	ImageURL       string    `json:"imageUrl"`
	GoogleMapsLink string    `json:"googleMapsLink"`
	Order          int       `json:"order"`
	Status         Status    `json:"status"`
	Price          float64   `json:"price"`
	Currency       string    `json:"currency"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Activity is a proposed or approved itinerary item. Votes holds the ids of
// members who voted for it while it is still a proposal.
type Activity struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ImageURL    string      `json:"imageUrl"`
	Link        string      `json:"link"`
	Address     string      `json:"address"`
	Votes       []uuid.UUID `json:"votes"`
	CreatedBy   uuid.UUID   `json:"createdBy"`
	Approved    bool        `json:"approved"`
	Day         int         `json:"day"`
	Time        string      `json:"time"` // free-text "HH:MM"
	Status      Status      `json:"status"`
	Price       float64     `json:"price"`
	Currency    string      `json:"currency"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Accommodation is a lodging option. CheckIn/CheckOut are date strings as
// entered by the user, not parsed times.
type Accommodation struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	ImageURL    string      `json:"imageUrl"`
	BookingLink string      `json:"bookingLink"`
	Description string      `json:"description"`
	CheckIn     string      `json:"checkIn"`
	CheckOut    string      `json:"checkOut"`
	Price       float64     `json:"price"`
	Guests      int         `json:"guests"`
	Status      Status      `json:"status"`
	Votes       []uuid.UUID `json:"votes"`
	Currency    string      `json:"currency"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Transport is a travel leg between two points.
type Transport struct {
	ID             uuid.UUID     `json:"id"`
	Type           TransportType `json:"type"`
	From           string        `json:"from"`
	To             string        `json:"to"`
	DepartureTime  string        `json:"departureTime"`
	DeparturePlace string        `json:"departurePlace"`
	ArrivalTime    string        `json:"arrivalTime"`
	ArrivalPlace   string        `json:"arrivalPlace"`
	Passengers     int           `json:"passengers"`
	Description    string        `json:"description"`
	ImageURL       string        `json:"imageUrl"`
	Price          float64       `json:"price"`
	Currency       string        `json:"currency"`
	Status         Status        `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// Expense is a shared cost. PaidBy fronted the money; SharedBy (never empty)
// splits it equally. Amounts in different currencies are summed nominally by
// the derived-state functions, a known simplification.
type Expense struct {
	ID          uuid.UUID   `json:"id"`
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	Category    string      `json:"category"`
	PaidBy      uuid.UUID   `json:"paidBy"`
	SharedBy    []uuid.UUID `json:"sharedBy"`
	Currency    string      `json:"currency"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ChatMessage is one append-only chat entry. User is the display name at the
// time of posting, not an id; later renames do not rewrite history.
type ChatMessage struct {
	User string    `json:"user"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}
