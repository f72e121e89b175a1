package reconcile

import (
	"errors"
	"fmt"
)

// DataIntegrityError reports more than one concurrent checked_in booking for
// a single room. It is never auto-corrected; picking one row arbitrarily
// would hide an upstream bug, so the runner surfaces it to the operator and
// leaves the room untouched.
type DataIntegrityError struct {
	RoomNumber string
	BookingIDs []uint
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("room %s has %d concurrent checked_in bookings %v", e.RoomNumber, len(e.BookingIDs), e.BookingIDs)
}

func IsDataIntegrity(err error) bool {
	var die *DataIntegrityError
	return errors.As(err, &die)
}
