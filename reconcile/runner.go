package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hotel-pms/models"
)

const (
	auditRoomStatusUpdated = "room_status_updated"
	auditOverstayDetected  = "overstay_detected"

	roomsTable = "rooms"
)

// Runner orchestrates the resolver over one room or all rooms, applying
// transitions inside per-room transactions and recording one audit entry per
// applied change.
type Runner struct {
	store   Store
	log     zerolog.Logger
	workers int
}

func NewRunner(store Store, log zerolog.Logger, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{store: store, log: log, workers: workers}
}

// IsPhantomCheckout reports a booking advanced to checked_out without an
// actual checkout action. This is the failure signature of the old nightly
// sync that freed rooms while a guest was still inside. Both the runner and
// the availability read treat such rows as still checked in.
func IsPhantomCheckout(b models.Booking) bool {
	return b.Status == models.BookingCheckedOut && b.CheckedOutAt == nil
}

// ReconcileRoom reconciles a single room as of the given date. The repository
// error, if any, is both returned and captured on the result.
func (r *Runner) ReconcileRoom(ctx context.Context, roomNumber string, asOf time.Time) (Result, error) {
	return r.reconcileRoom(ctx, roomNumber, asOf, "")
}

func (r *Runner) reconcileRoom(ctx context.Context, roomNumber string, asOf time.Time, runID string) (Result, error) {
	day := DateOnly(asOf)
	res := Result{RoomNumber: roomNumber, Action: ActionNone}

	err := r.store.Transaction(ctx, func(tx Store) error {
		room, err := tx.Rooms().Get(ctx, roomNumber)
		if err != nil {
			return fmt.Errorf("load room %s: %w", roomNumber, err)
		}
		res.OldStatus = room.Status
		res.NewStatus = room.Status

		bookings, err := tx.Bookings().FindActiveForRoom(ctx, roomNumber)
		if err != nil {
			return fmt.Errorf("load bookings for room %s: %w", roomNumber, err)
		}

		// Resolve phantom checkouts as if still checked in so the overstay
		// guard can see the guest.
		phantom := map[uint]bool{}
		candidates := make([]models.Booking, 0, len(bookings))
		for _, b := range bookings {
			if IsPhantomCheckout(b) {
				phantom[b.ID] = true
				b.Status = models.BookingCheckedIn
			}
			candidates = append(candidates, b)
		}

		state, err := Resolve(day, room, candidates)
		if err != nil {
			var die *DataIntegrityError
			if errors.As(err, &die) {
				// Never auto-corrected; the room stays untouched and the
				// result demands operator attention.
				res.Action = ActionCritical
				res.Error = die.Error()
				r.log.Error().
					Str("room", roomNumber).
					Uints("booking_ids", die.BookingIDs).
					Msg("concurrent checked_in bookings, room left untouched")
				return nil
			}
			return err
		}
		res.Reason = state.Reason

		// R4: overstay revert. Beats the cleaning override, because cleaning
		// is exactly the state the buggy advance left the room in. Maintenance
		// is different: an operator set it on purpose, so it stays sticky and
		// falls through to R3 even with a guest overstaying inside.
		overstayRevert := state.Status == models.RoomOccupied &&
			room.Status != models.RoomMaintenance &&
			(phantom[state.BookingID] || (state.Reason == ReasonOccupiedOverstay && room.Status != models.RoomOccupied))
		if overstayRevert {
			if phantom[state.BookingID] {
				if err := tx.Bookings().UpdateStatus(ctx, state.BookingID, models.BookingCheckedIn,
					"reverted by overstay guard: no checkout action recorded"); err != nil {
					return fmt.Errorf("revert booking %d: %w", state.BookingID, err)
				}
			}
			if room.Status != models.RoomOccupied {
				if err := tx.Rooms().UpdateStatus(ctx, roomNumber, models.RoomOccupied); err != nil {
					return fmt.Errorf("update room %s status: %w", roomNumber, err)
				}
			}
			res.NewStatus = models.RoomOccupied
			res.Action = ActionOverstayCorrected

			details := map[string]any{
				"old_status":       string(room.Status),
				"new_status":       string(models.RoomOccupied),
				"reason":           string(state.Reason),
				"booking_id":       state.BookingID,
				"booking_reverted": phantom[state.BookingID],
			}
			if runID != "" {
				details["run_id"] = runID
			}
			if err := tx.Audit().Record(ctx, auditOverstayDetected, roomsTable, roomNumber, details, models.ActorSystem); err != nil {
				return fmt.Errorf("audit overstay for room %s: %w", roomNumber, err)
			}
			r.log.Warn().
				Str("room", roomNumber).
				Uint("booking_id", state.BookingID).
				Bool("booking_reverted", phantom[state.BookingID]).
				Str("old_status", string(room.Status)).
				Msg("overstay detected, room reverted to occupied")
			return nil
		}

		// R3: maintenance/cleaning are operator-set and sticky.
		if room.Status.IsManual() {
			res.Action = ActionSkippedManualOverride
			return nil
		}

		// R1: already consistent.
		if room.Status == state.Status {
			res.Action = ActionNone
			return nil
		}

		// R2: apply the derived status and record the transition.
		if err := tx.Rooms().UpdateStatus(ctx, roomNumber, state.Status); err != nil {
			return fmt.Errorf("update room %s status: %w", roomNumber, err)
		}
		res.NewStatus = state.Status
		res.Action = ActionUpdated

		details := map[string]any{
			"old_status": string(room.Status),
			"new_status": string(state.Status),
			"reason":     string(state.Reason),
		}
		if state.BookingID != 0 {
			details["booking_id"] = state.BookingID
		}
		if runID != "" {
			details["run_id"] = runID
		}
		if err := tx.Audit().Record(ctx, auditRoomStatusUpdated, roomsTable, roomNumber, details, models.ActorSystem); err != nil {
			return fmt.Errorf("audit status change for room %s: %w", roomNumber, err)
		}
		r.log.Info().
			Str("room", roomNumber).
			Str("old_status", string(room.Status)).
			Str("new_status", string(state.Status)).
			Str("reason", string(state.Reason)).
			Msg("room status reconciled")
		return nil
	})
	if err != nil {
		res.Action = ActionError
		res.Error = err.Error()
		return res, err
	}
	return res, nil
}

// ReconcileAll reconciles every room as of the given date through a bounded
// worker pool. Each room runs in its own transaction, so one room's failure
// never blocks the rest; failures are captured on the per-room results.
func (r *Runner) ReconcileAll(ctx context.Context, asOf time.Time) (BatchResult, error) {
	day := DateOnly(asOf)
	batch := BatchResult{RunID: uuid.NewString(), AsOf: day.Format(time.DateOnly)}

	rooms, err := r.store.Rooms().ListAll(ctx)
	if err != nil {
		return batch, fmt.Errorf("list rooms: %w", err)
	}
	batch.Results = make([]Result, len(rooms))

	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup
	for i, room := range rooms {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, roomNumber string) {
			defer wg.Done()
			defer func() { <-sem }()
			res, _ := r.reconcileRoom(ctx, roomNumber, day, batch.RunID)
			batch.Results[i] = res
		}(i, room.RoomNumber)
	}
	wg.Wait()

	for _, res := range batch.Results {
		batch.Summary.add(res)
	}

	r.log.Info().
		Str("run_id", batch.RunID).
		Str("as_of", batch.AsOf).
		Int("rooms", len(rooms)).
		Int("updated", batch.Summary.Updated).
		Int("unchanged", batch.Summary.Unchanged).
		Int("skipped", batch.Summary.Skipped).
		Int("errors", batch.Summary.Errors).
		Msg("room status reconciliation finished")
	return batch, nil
}
