package reservation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-seat-hold/internal/catalog"
)

// Lifecycle and authorisation errors.  Handlers translate these into
// HTTP statuses; see handler.holdError.
var (
	// ErrInvalidRequest is returned for empty seat lists, missing owner
	// tokens or a missing admin actor.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound is returned when the hold does not exist, including
	// after it was committed, released, force released or expired.
	ErrNotFound = errors.New("hold not found")
	// ErrNotOwner is returned when the owner token does not match.
	ErrNotOwner = errors.New("hold belongs to another owner")
	// ErrExpired is returned when the hold reached its expiry.  An expired
	// hold cannot be renewed or committed; the caller must acquire again.
	ErrExpired = errors.New("hold expired")
	// ErrSeatUnavailable is matched by *SeatUnavailableError.
	ErrSeatUnavailable = errors.New("seats unavailable")
	// ErrPartiallyExpired is matched by *PartiallyExpiredError.
	ErrPartiallyExpired = errors.New("hold partially expired")

	ErrShowtimeNotFound = catalog.ErrShowtimeNotFound
	ErrSeatNotFound     = catalog.ErrSeatNotFound
)

// SeatUnavailableError lists the requested seats that were already held
// or booked when an acquire ran.
type SeatUnavailableError struct {
	SeatIDs []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSeatUnavailable, strings.Join(e.SeatIDs, ","))
}

// Is makes errors.Is(err, ErrSeatUnavailable) true.
func (e *SeatUnavailableError) Is(target error) bool { return target == ErrSeatUnavailable }

// PartiallyExpiredError lists the seats of a hold that were no longer
// held by it at commit time.
type PartiallyExpiredError struct {
	SeatIDs []string
}

func (e *PartiallyExpiredError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPartiallyExpired, strings.Join(e.SeatIDs, ","))
}

// Is makes errors.Is(err, ErrPartiallyExpired) true.
func (e *PartiallyExpiredError) Is(target error) bool { return target == ErrPartiallyExpired }

// IsContention reports whether err is an expected, locally recoverable
// conflict that should not be logged as a failure.
func IsContention(err error) bool {
	return errors.Is(err, ErrSeatUnavailable) || errors.Is(err, ErrPartiallyExpired)
}
