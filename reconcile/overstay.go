package reconcile

import (
	"time"

	"hotel-pms/models"
)

// IsOverstay reports whether the guest on b is still checked in at or past
// the checkout date. While this holds, the room must never be freed
// automatically; only an explicit checkout action releases it.
func IsOverstay(b models.Booking, today time.Time) bool {
	return b.Status == models.BookingCheckedIn && !DateOnly(today).Before(DateOnly(b.CheckOutDate))
}
