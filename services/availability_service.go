package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hotel-pms/models"
	"hotel-pms/reconcile"
)

// RoomAvailability pairs a room's persisted status with the status the
// resolver derives for the requested date. The two differ only between
// reconciliation passes (or under a manual override).
type RoomAvailability struct {
	RoomNumber      string            `json:"room_number"`
	PersistedStatus models.RoomStatus `json:"persisted_status"`
	DerivedStatus   models.RoomStatus `json:"derived_status"`
	Reason          reconcile.Reason  `json:"reason"`
	NextCheckIn     *time.Time        `json:"next_check_in,omitempty"`
	NextCheckOut    *time.Time        `json:"next_check_out,omitempty"`
	Error           string            `json:"error,omitempty"`
}

// AvailabilityService is the read-only availability view. It runs the same
// resolver as the runner but never writes anything, so the old drift between
// the availability endpoint and the nightly sync cannot come back.
type AvailabilityService struct {
	DB *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// resolveEntry derives one room's availability entry. It applies the same
// phantom-checkout normalization and manual-override handling as the runner,
// so the read view and a reconcile pass always agree.
func resolveEntry(room models.Room, bookings []models.Booking, asOf time.Time) RoomAvailability {
	entry := RoomAvailability{
		RoomNumber:      room.RoomNumber,
		PersistedStatus: room.Status,
	}

	candidates := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if reconcile.IsPhantomCheckout(b) {
			b.Status = models.BookingCheckedIn
		}
		candidates = append(candidates, b)
	}

	state, err := reconcile.Resolve(asOf, room, candidates)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}

	// Manual overrides win in the read view too, with the runner's one
	// exception: a cleaning room with an overstaying guest reads occupied,
	// maintenance stays maintenance.
	overrideWins := room.Status.IsManual() &&
		(room.Status == models.RoomMaintenance || state.Reason != reconcile.ReasonOccupiedOverstay)
	if overrideWins {
		entry.DerivedStatus = room.Status
	} else {
		entry.DerivedStatus = state.Status
	}
	entry.Reason = state.Reason
	entry.NextCheckIn = state.NextCheckIn
	entry.NextCheckOut = state.NextCheckOut
	return entry
}

func (s *AvailabilityService) GetAll(ctx context.Context, asOf time.Time) ([]RoomAvailability, error) {
	var rooms []models.Room
	if err := s.DB.WithContext(ctx).Order("room_number ASC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	// Same candidate set the runner's booking store loads: active rows plus
	// phantom checkouts.
	var bookings []models.Booking
	if err := s.DB.WithContext(ctx).
		Where("status IN ? OR (status = ? AND checked_out_at IS NULL)",
			models.ActiveBookingStatuses, models.BookingCheckedOut).
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}
	byRoom := map[string][]models.Booking{}
	for _, b := range bookings {
		byRoom[b.RoomNumber] = append(byRoom[b.RoomNumber], b)
	}

	out := make([]RoomAvailability, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, resolveEntry(room, byRoom[room.RoomNumber], asOf))
	}
	return out, nil
}

// GetRoom resolves a single room for the requested date.
func (s *AvailabilityService) GetRoom(ctx context.Context, roomNumber string, asOf time.Time) (RoomAvailability, error) {
	store := NewSyncStore(s.DB)

	room, err := store.Rooms().Get(ctx, roomNumber)
	if err != nil {
		return RoomAvailability{}, err
	}
	bookings, err := store.Bookings().FindActiveForRoom(ctx, roomNumber)
	if err != nil {
		return RoomAvailability{}, err
	}

	return resolveEntry(room, bookings, asOf), nil
}
