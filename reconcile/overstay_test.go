package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hotel-pms/models"
)

func TestIsOverstay(t *testing.T) {
	tests := []struct {
		name    string
		booking models.Booking
		today   string
		want    bool
	}{
		{
			name:    "checked_in_before_checkout_date",
			booking: stay(1, models.BookingCheckedIn, "2025-08-22", "2025-08-25"),
			today:   "2025-08-24",
			want:    false,
		},
		{
			name:    "checked_in_on_checkout_date",
			booking: stay(1, models.BookingCheckedIn, "2025-08-22", "2025-08-24"),
			today:   "2025-08-24",
			want:    true,
		},
		{
			name:    "checked_in_past_checkout_date",
			booking: stay(1, models.BookingCheckedIn, "2025-08-20", "2025-08-21"),
			today:   "2025-08-24",
			want:    true,
		},
		{
			name:    "checked_out_past_checkout_date",
			booking: stay(1, models.BookingCheckedOut, "2025-08-20", "2025-08-21"),
			today:   "2025-08-24",
			want:    false,
		},
		{
			name:    "confirmed_past_checkout_date",
			booking: stay(1, models.BookingConfirmed, "2025-08-20", "2025-08-21"),
			today:   "2025-08-24",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOverstay(tt.booking, date(tt.today)))
		})
	}
}
