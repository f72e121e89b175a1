package models

import (
	"time"

	"gorm.io/gorm"
)

// BookingStatus lifecycle: pending -> confirmed -> checked_in -> checked_out,
// or -> cancelled / no_show. Only operator/guest actions move a booking
// forward; the reconcile runner touches booking status in exactly one case
// (reverting a phantom checkout, see reconcile.Runner).
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
	BookingNoShow     BookingStatus = "no_show"
)

// ActiveBookingStatuses are the statuses that can influence a room's derived
// availability state.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCheckedIn}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCheckedIn, BookingCheckedOut, BookingCancelled, BookingNoShow:
		return true
	}
	return false
}

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RoomNumber    string `gorm:"column:room_number;index;type:varchar(50)" json:"roomNumber"`
	GuestID       uint   `gorm:"column:guest_id;index" json:"guestId"`
	ReferenceCode string `gorm:"column:reference_code;size:64;uniqueIndex" json:"referenceCode"`

	Status BookingStatus `gorm:"column:status;type:varchar(32);index" json:"status"`

	// Half-open stay interval: the guest holds the room on every date d with
	// CheckInDate <= d < CheckOutDate.
	CheckInDate  time.Time `gorm:"column:check_in_date;index" json:"checkInDate"`
	CheckOutDate time.Time `gorm:"column:check_out_date;index" json:"checkOutDate"`

	// Set only by the explicit check-in / check-out actions. A booking with
	// status checked_out but CheckedOutAt == nil was advanced by something
	// other than a real checkout and is treated as still checked in.
	CheckedInAt  *time.Time `gorm:"column:checked_in_at" json:"checkedInAt,omitempty"`
	CheckedOutAt *time.Time `gorm:"column:checked_out_at" json:"checkedOutAt,omitempty"`

	Note string `gorm:"column:note;type:text" json:"note,omitempty"`

	Guest Guest `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
}

// Covers reports whether day falls inside the half-open stay interval.
func (b Booking) Covers(day time.Time) bool {
	return !day.Before(b.CheckInDate) && day.Before(b.CheckOutDate)
}

// Nights returns the length of the stay in nights, never below zero.
func (b Booking) Nights() int {
	n := int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}
