package reconcile

import (
	"context"

	"hotel-pms/models"
)

// RoomStore is the room repository slice the runner needs.
type RoomStore interface {
	Get(ctx context.Context, roomNumber string) (models.Room, error)
	ListAll(ctx context.Context) ([]models.Room, error)
	UpdateStatus(ctx context.Context, roomNumber string, status models.RoomStatus) error
}

// BookingStore is the booking repository slice the runner needs.
type BookingStore interface {
	// FindActiveForRoom returns every pending/confirmed/checked_in booking of
	// the room regardless of dates, plus phantom checkouts (checked_out rows
	// with no checked_out_at) so the runner can detect buggy prior advances.
	FindActiveForRoom(ctx context.Context, roomNumber string) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id uint, status models.BookingStatus, note string) error
}

// AuditSink appends to the activity log. Entries are written once per applied
// transition and never mutated.
type AuditSink interface {
	Record(ctx context.Context, action, tableName, recordID string, details map[string]any, actor string) error
}

// Store bundles the collaborators behind a transactional boundary.
// Transaction runs fn against a store bound to one database transaction; the
// implementation must lock the room row for the duration so two concurrent
// reconciliation passes cannot race on the same room.
type Store interface {
	Rooms() RoomStore
	Bookings() BookingStore
	Audit() AuditSink
	Transaction(ctx context.Context, fn func(Store) error) error
}
