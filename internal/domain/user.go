// Package domain contains the core data types for the TravelPuzzle sync core.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (localstore, remotestore, sync, service, handler).
//
// All derived-state computations (progress, expense shares and debts, place
// ordering, the activity approval workflow) live here as pure functions over
// the Trip value, so every store and transport layer shares one definition.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered participant. Email is unique case-insensitively and is
// the login identity; the user id is the join key for trip membership.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}
