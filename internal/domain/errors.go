package domain

import "errors"

// ErrNotFound is returned when a requested user or trip does not exist in
// whichever store was asked. A lookup miss is a valid outcome, not a failure;
// handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule (missing required
// field, non-positive expense amount, duplicate email on registration).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrRemoteUnavailable is returned by every remote-store operation when the
// store is not configured or a call failed. Callers treat it as "no remote
// truth this cycle" and fall back to the local cache; it must never surface
// to an end user as an error.
var ErrRemoteUnavailable = errors.New("remote store unavailable")

// ErrUnauthorized is returned on failed credential checks.
// Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when an authenticated user attempts an operation
// reserved for someone else, e.g. approving an activity without being the
// trip creator. Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")
