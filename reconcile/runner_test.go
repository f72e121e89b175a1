package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/models"
)

type auditEntry struct {
	action   string
	table    string
	recordID string
	actor    string
	details  map[string]any
}

// fakeStore is a minimal in-memory Store. Transaction holds the mutex for the
// whole unit of work, which stands in for the per-room row lock.
type fakeStore struct {
	mu        sync.Mutex
	rooms     map[string]*models.Room
	roomOrder []string
	bookings  map[uint]*models.Booking
	audits    []auditEntry

	getErr map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:    map[string]*models.Room{},
		bookings: map[uint]*models.Booking{},
		getErr:   map[string]error{},
	}
}

func (f *fakeStore) addRoom(number string, status models.RoomStatus) {
	f.rooms[number] = &models.Room{RoomNumber: number, Status: status}
	f.roomOrder = append(f.roomOrder, number)
}

func (f *fakeStore) addBooking(b models.Booking) {
	cp := b
	f.bookings[b.ID] = &cp
}

func (f *fakeStore) Rooms() RoomStore       { return fakeRooms{f} }
func (f *fakeStore) Bookings() BookingStore { return fakeBookings{f} }
func (f *fakeStore) Audit() AuditSink       { return f }

type fakeRooms struct{ *fakeStore }
type fakeBookings struct{ *fakeStore }

func (f *fakeStore) Transaction(_ context.Context, fn func(Store) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f)
}

func (f fakeRooms) Get(_ context.Context, roomNumber string) (models.Room, error) {
	if err := f.getErr[roomNumber]; err != nil {
		return models.Room{}, err
	}
	room, ok := f.rooms[roomNumber]
	if !ok {
		return models.Room{}, errors.New("room_not_found")
	}
	return *room, nil
}

func (f fakeRooms) ListAll(_ context.Context) ([]models.Room, error) {
	out := make([]models.Room, 0, len(f.roomOrder))
	for _, n := range f.roomOrder {
		out = append(out, *f.rooms[n])
	}
	return out, nil
}

func (f fakeRooms) UpdateStatus(_ context.Context, roomNumber string, status models.RoomStatus) error {
	room, ok := f.rooms[roomNumber]
	if !ok {
		return errors.New("room_not_found")
	}
	room.Status = status
	return nil
}

func (f fakeBookings) FindActiveForRoom(_ context.Context, roomNumber string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.RoomNumber != roomNumber {
			continue
		}
		switch b.Status {
		case models.BookingPending, models.BookingConfirmed, models.BookingCheckedIn:
			out = append(out, *b)
		case models.BookingCheckedOut:
			if b.CheckedOutAt == nil {
				out = append(out, *b)
			}
		}
	}
	return out, nil
}

func (f fakeBookings) UpdateStatus(_ context.Context, id uint, status models.BookingStatus, note string) error {
	b, ok := f.bookings[id]
	if !ok {
		return errors.New("booking_not_found")
	}
	b.Status = status
	b.Note = note
	return nil
}

func (f *fakeStore) Record(_ context.Context, action, table, recordID string, details map[string]any, actor string) error {
	f.audits = append(f.audits, auditEntry{action: action, table: table, recordID: recordID, actor: actor, details: details})
	return nil
}

func testRunner(store Store) *Runner {
	return NewRunner(store, zerolog.Nop(), 2)
}

func roomStay(id uint, roomNumber string, status models.BookingStatus, checkIn, checkOut string) models.Booking {
	b := stay(id, status, checkIn, checkOut)
	b.RoomNumber = roomNumber
	return b
}

func TestReconcileRoomAppliesDerivedStatus(t *testing.T) {
	// Room 102 persisted occupied, but the only booking is a future confirmed
	// one: R2 moves it to prebooked.
	store := newFakeStore()
	store.addRoom("102", models.RoomOccupied)
	store.addBooking(roomStay(1, "102", models.BookingConfirmed, "2025-08-28", "2025-08-29"))

	res, err := testRunner(store).ReconcileRoom(context.Background(), "102", date("2025-08-24"))
	require.NoError(t, err)

	assert.Equal(t, ActionUpdated, res.Action)
	assert.Equal(t, models.RoomOccupied, res.OldStatus)
	assert.Equal(t, models.RoomPrebooked, res.NewStatus)
	assert.Equal(t, ReasonPrebooked, res.Reason)
	assert.Equal(t, models.RoomPrebooked, store.rooms["102"].Status)

	require.Len(t, store.audits, 1)
	entry := store.audits[0]
	assert.Equal(t, "room_status_updated", entry.action)
	assert.Equal(t, "rooms", entry.table)
	assert.Equal(t, "102", entry.recordID)
	assert.Equal(t, models.ActorSystem, entry.actor)
	assert.Equal(t, "occupied", entry.details["old_status"])
	assert.Equal(t, "prebooked", entry.details["new_status"])
}

func TestReconcileRoomNoOp(t *testing.T) {
	store := newFakeStore()
	store.addRoom("101", models.RoomAvailable)

	res, err := testRunner(store).ReconcileRoom(context.Background(), "101", date("2025-08-24"))
	require.NoError(t, err)

	assert.Equal(t, ActionNone, res.Action)
	assert.Equal(t, models.RoomAvailable, res.NewStatus)
	assert.Empty(t, store.audits, "a no-op must not write audit entries")
}

func TestReconcileRoomIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addRoom("102", models.RoomAvailable)
	store.addBooking(roomStay(1, "102", models.BookingConfirmed, "2025-08-24", "2025-08-26"))

	runner := testRunner(store)
	asOf := date("2025-08-24")

	first, err := runner.ReconcileRoom(context.Background(), "102", asOf)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, first.Action)

	second, err := runner.ReconcileRoom(context.Background(), "102", asOf)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, second.Action)
	assert.Len(t, store.audits, 1)
}

func TestReconcileRoomManualOverrideSticky(t *testing.T) {
	// Maintenance is operator territory: booking data never overrides it.
	store := newFakeStore()
	store.addRoom("104", models.RoomMaintenance)
	store.addBooking(roomStay(1, "104", models.BookingConfirmed, "2025-08-24", "2025-08-25"))

	res, err := testRunner(store).ReconcileRoom(context.Background(), "104", date("2025-08-24"))
	require.NoError(t, err)

	assert.Equal(t, ActionSkippedManualOverride, res.Action)
	assert.Equal(t, models.RoomMaintenance, store.rooms["104"].Status)
	assert.Empty(t, store.audits)
}

func TestReconcileRoomOverstayRevertsPhantomCheckout(t *testing.T) {
	// The recorded incident: a prior buggy sync advanced the booking to
	// checked_out (no checkout action) and the room to cleaning while the
	// guest was still inside. Both must be reverted.
	store := newFakeStore()
	store.addRoom("105", models.RoomCleaning)
	store.addBooking(roomStay(9, "105", models.BookingCheckedOut, "2025-08-22", "2025-08-23"))

	res, err := testRunner(store).ReconcileRoom(context.Background(), "105", date("2025-08-24"))
	require.NoError(t, err)

	assert.Equal(t, ActionOverstayCorrected, res.Action)
	assert.Equal(t, models.RoomCleaning, res.OldStatus)
	assert.Equal(t, models.RoomOccupied, res.NewStatus)
	assert.Equal(t, ReasonOccupiedOverstay, res.Reason)

	assert.Equal(t, models.RoomOccupied, store.rooms["105"].Status)
	assert.Equal(t, models.BookingCheckedIn, store.bookings[9].Status)

	require.Len(t, store.audits, 1)
	entry := store.audits[0]
	assert.Equal(t, "overstay_detected", entry.action)
	assert.Equal(t, true, entry.details["booking_reverted"])
}

func TestReconcileRoomOverstayRevertsFreedRoom(t *testing.T) {
	// Guest still checked in past the checkout date, room wrongly flipped to
	// available: room goes back to occupied, booking untouched.
	store := newFakeStore()
	store.addRoom("105", models.RoomAvailable)
	store.addBooking(roomStay(3, "105", models.BookingCheckedIn, "2025-08-22", "2025-08-23"))

	res, err := testRunner(store).ReconcileRoom(context.Background(), "105", date("2025-08-24"))
	require.NoError(t, err)

	assert.Equal(t, ActionOverstayCorrected, res.Action)
	assert.Equal(t, models.RoomOccupied, store.rooms["105"].Status)
	assert.Equal(t, models.BookingCheckedIn, store.bookings[3].Status)

	require.Len(t, store.audits, 1)
	assert.Equal(t, "overstay_detected", store.audits[0].action)
	assert.Equal(t, false, store.audits[0].details["booking_reverted"])
}

func TestReconcileRoomMaintenanceStickyDespiteOverstay(t *testing.T) {
	// Maintenance is operator-set on purpose; unlike cleaning it is never
	// reverted, not even for a guest overstaying inside.
	store := newFakeStore()
	store.addRoom("106", models.RoomMaintenance)
	store.addBooking(roomStay(6, "106", models.BookingCheckedIn, "2025-08-20", "2025-08-22"))

	res, err := testRunner(store).ReconcileRoom(context.Background(), "106", date("2025-08-24"))
	require.NoError(t, err)

	assert.Equal(t, ActionSkippedManualOverride, res.Action)
	assert.Equal(t, models.RoomMaintenance, store.rooms["106"].Status)
	assert.Equal(t, models.BookingCheckedIn, store.bookings[6].Status)
	assert.Empty(t, store.audits)
}

func TestReconcileRoomMaintenanceStickyDespitePhantomCheckout(t *testing.T) {
	store := newFakeStore()
	store.addRoom("106", models.RoomMaintenance)
	store.addBooking(roomStay(6, "106", models.BookingCheckedOut, "2025-08-20", "2025-08-22"))

	res, err := testRunner(store).ReconcileRoom(context.Background(), "106", date("2025-08-24"))
	require.NoError(t, err)

	assert.Equal(t, ActionSkippedManualOverride, res.Action)
	assert.Equal(t, models.RoomMaintenance, store.rooms["106"].Status)
	// The phantom booking stays as is until the operator frees the room.
	assert.Equal(t, models.BookingCheckedOut, store.bookings[6].Status)
	assert.Empty(t, store.audits)
}

func TestReconcileRoomOverstayAlreadyOccupiedIsNoOp(t *testing.T) {
	store := newFakeStore()
	store.addRoom("105", models.RoomOccupied)
	store.addBooking(roomStay(3, "105", models.BookingCheckedIn, "2025-08-22", "2025-08-23"))

	res, err := testRunner(store).ReconcileRoom(context.Background(), "105", date("2025-08-24"))
	require.NoError(t, err)

	assert.Equal(t, ActionNone, res.Action)
	// The reason still surfaces so booking creation can refuse the room.
	assert.Equal(t, ReasonOccupiedOverstay, res.Reason)
	assert.Empty(t, store.audits)
}

func TestReconcileRoomIntegrityErrorIsCritical(t *testing.T) {
	store := newFakeStore()
	store.addRoom("103", models.RoomOccupied)
	store.addBooking(roomStay(1, "103", models.BookingCheckedIn, "2025-08-22", "2025-08-26"))
	store.addBooking(roomStay(2, "103", models.BookingCheckedIn, "2025-08-23", "2025-08-25"))

	res, err := testRunner(store).ReconcileRoom(context.Background(), "103", date("2025-08-24"))
	require.NoError(t, err)

	assert.Equal(t, ActionCritical, res.Action)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, models.RoomOccupied, store.rooms["103"].Status, "room must stay untouched")
	assert.Empty(t, store.audits)
}

func TestReconcileRoomRepositoryError(t *testing.T) {
	store := newFakeStore()
	store.addRoom("101", models.RoomAvailable)
	store.getErr["101"] = errors.New("connection reset")

	res, err := testRunner(store).ReconcileRoom(context.Background(), "101", date("2025-08-24"))
	require.Error(t, err)
	assert.Equal(t, ActionError, res.Action)
	assert.Contains(t, res.Error, "connection reset")
}

func TestReconcileAll(t *testing.T) {
	store := newFakeStore()
	store.addRoom("101", models.RoomAvailable)   // no bookings: unchanged
	store.addRoom("102", models.RoomOccupied)    // future confirmed: updated to prebooked
	store.addRoom("103", models.RoomBooked)      // injected repository failure
	store.addRoom("104", models.RoomMaintenance) // manual override: skipped
	store.addRoom("105", models.RoomAvailable)   // overstay: corrected

	store.addBooking(roomStay(1, "102", models.BookingConfirmed, "2025-08-28", "2025-08-29"))
	store.addBooking(roomStay(2, "104", models.BookingConfirmed, "2025-08-24", "2025-08-25"))
	store.addBooking(roomStay(3, "105", models.BookingCheckedIn, "2025-08-22", "2025-08-23"))
	store.getErr["103"] = errors.New("deadlock")

	batch, err := testRunner(store).ReconcileAll(context.Background(), date("2025-08-24"))
	require.NoError(t, err, "one room's failure must not abort the batch")

	assert.NotEmpty(t, batch.RunID)
	assert.Equal(t, "2025-08-24", batch.AsOf)
	require.Len(t, batch.Results, 5)

	assert.Equal(t, 2, batch.Summary.Updated)
	assert.Equal(t, 1, batch.Summary.Unchanged)
	assert.Equal(t, 1, batch.Summary.Skipped)
	assert.Equal(t, 1, batch.Summary.Errors)

	byRoom := map[string]Result{}
	for _, r := range batch.Results {
		byRoom[r.RoomNumber] = r
	}
	assert.Equal(t, ActionNone, byRoom["101"].Action)
	assert.Equal(t, ActionUpdated, byRoom["102"].Action)
	assert.Equal(t, ActionError, byRoom["103"].Action)
	assert.Equal(t, ActionSkippedManualOverride, byRoom["104"].Action)
	assert.Equal(t, ActionOverstayCorrected, byRoom["105"].Action)

	// Batch audit details carry the run id for correlation.
	for _, entry := range store.audits {
		assert.Equal(t, batch.RunID, entry.details["run_id"])
	}
}

func TestReconcileAllIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addRoom("102", models.RoomOccupied)
	store.addBooking(roomStay(1, "102", models.BookingConfirmed, "2025-08-28", "2025-08-29"))

	runner := testRunner(store)
	asOf := date("2025-08-24")

	first, err := runner.ReconcileAll(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Summary.Updated)

	second, err := runner.ReconcileAll(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Summary.Updated)
	assert.Equal(t, 1, second.Summary.Unchanged)
	assert.Len(t, store.audits, 1)
}
