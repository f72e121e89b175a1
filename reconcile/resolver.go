package reconcile

import (
	"sort"
	"time"

	"hotel-pms/models"
)

// Reason explains which rule produced a derived status. occupied_overstay is
// load-bearing: the booking-creation path must refuse a same-day re-booking
// while it is being reported.
type Reason string

const (
	ReasonOccupied         Reason = "occupied"
	ReasonOccupiedOverstay Reason = "occupied_overstay"
	ReasonBooked           Reason = "booked"
	ReasonPrebooked        Reason = "prebooked"
	ReasonNoActiveBookings Reason = "no_active_bookings"
)

// ResolvedState is the resolver's verdict for one room on one date.
type ResolvedState struct {
	Status models.RoomStatus
	Reason Reason

	// BookingID identifies the booking that decided the status; zero when the
	// room resolved to available.
	BookingID uint

	// Earliest upcoming stay, populated for prebooked so callers can display
	// the held window.
	NextCheckIn  *time.Time
	NextCheckOut *time.Time
}

// DateOnly truncates t to midnight in its own location. Every comparison in
// this package is date-granular; times of day never influence the outcome.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Resolve derives the canonical availability state of room on today from its
// candidate bookings. It is pure: no I/O, no clock reads, safe to call
// concurrently.
//
// Rules are priority-ordered and the first match wins:
//
//  1. a checked_in booking whose stay covers today, or whose checkout date
//     has lapsed without a checkout action (overstay), makes the room
//     occupied;
//  2. a pending/confirmed booking whose stay covers today makes it booked;
//  3. the earliest pending/confirmed booking starting after today makes it
//     prebooked;
//  4. otherwise the room is available.
//
// Manual statuses (maintenance, cleaning) are never produced here; the runner
// preserves them as sticky overrides. More than one checked_in row returns a
// *DataIntegrityError.
func Resolve(today time.Time, room models.Room, bookings []models.Booking) (ResolvedState, error) {
	day := DateOnly(today)

	var checkedIn []models.Booking
	var held []models.Booking
	for _, b := range bookings {
		switch b.Status {
		case models.BookingCheckedIn:
			checkedIn = append(checkedIn, b)
		case models.BookingPending, models.BookingConfirmed:
			held = append(held, b)
		}
		// checked_out, cancelled and no_show rows never influence the result
	}

	if len(checkedIn) > 1 {
		ids := make([]uint, 0, len(checkedIn))
		for _, b := range checkedIn {
			ids = append(ids, b.ID)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		return ResolvedState{}, &DataIntegrityError{RoomNumber: room.RoomNumber, BookingIDs: ids}
	}

	// Rule 1: a guest in the room wins over everything else. Only checked_in
	// rows can trigger the overstay branch, so a properly checked-out booking
	// whose checkout date equals today never blocks a same-day check-in.
	if len(checkedIn) == 1 {
		b := checkedIn[0]
		ci := DateOnly(b.CheckInDate)
		co := DateOnly(b.CheckOutDate)
		switch {
		case !day.Before(co):
			return ResolvedState{Status: models.RoomOccupied, Reason: ReasonOccupiedOverstay, BookingID: b.ID}, nil
		case !day.Before(ci):
			return ResolvedState{Status: models.RoomOccupied, Reason: ReasonOccupied, BookingID: b.ID}, nil
		}
		// checked in ahead of the stay window: no rule matches, fall through
	}

	// Rule 2: a held stay covering today.
	for _, b := range held {
		if !day.Before(DateOnly(b.CheckInDate)) && day.Before(DateOnly(b.CheckOutDate)) {
			return ResolvedState{Status: models.RoomBooked, Reason: ReasonBooked, BookingID: b.ID}, nil
		}
	}

	// Rule 3: earliest held stay strictly in the future.
	var next *models.Booking
	for i := range held {
		ci := DateOnly(held[i].CheckInDate)
		if !ci.After(day) {
			continue
		}
		if next == nil || ci.Before(DateOnly(next.CheckInDate)) {
			next = &held[i]
		}
	}
	if next != nil {
		nci := next.CheckInDate
		nco := next.CheckOutDate
		return ResolvedState{
			Status:       models.RoomPrebooked,
			Reason:       ReasonPrebooked,
			BookingID:    next.ID,
			NextCheckIn:  &nci,
			NextCheckOut: &nco,
		}, nil
	}

	return ResolvedState{Status: models.RoomAvailable, Reason: ReasonNoActiveBookings}, nil
}
