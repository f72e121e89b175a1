package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-pms/models"
	"hotel-pms/reconcile"
)

// BookingService owns the booking lifecycle. Room status is never written
// here directly: every mutation ends with a reconcile pass for the affected
// room, so the resolver stays the single source of truth.
type BookingService struct {
	DB     *gorm.DB
	Runner *reconcile.Runner
}

func NewBookingService(db *gorm.DB, runner *reconcile.Runner) *BookingService {
	return &BookingService{DB: db, Runner: runner}
}

type CreateBookingInput struct {
	RoomNumber string `json:"roomNumber" binding:"required"`
	GuestID    uint   `json:"guestId" binding:"required"`
	CheckIn    string `json:"checkIn" binding:"required"`
	CheckOut   string `json:"checkOut" binding:"required"`
	Status     string `json:"status"`
	Note       string `json:"note"`
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return reconcile.DateOnly(t), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

func newReferenceCode() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}

// Create validates the requested stay against existing bookings and the
// resolver, then creates the booking and reconciles the room. An
// occupied_overstay answer from the resolver blocks a stay starting today:
// the room must be freed by a real checkout (or an operator) first.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput, asOf time.Time) (models.Booking, error) {
	checkIn, err := parseDate(in.CheckIn)
	if err != nil {
		return models.Booking{}, errors.New("invalid_check_in_date")
	}
	checkOut, err := parseDate(in.CheckOut)
	if err != nil {
		return models.Booking{}, errors.New("invalid_check_out_date")
	}
	if !checkOut.After(checkIn) {
		return models.Booking{}, errors.New("check_out_not_after_check_in")
	}

	status := models.BookingConfirmed
	if in.Status != "" {
		status = models.BookingStatus(in.Status)
		if status != models.BookingPending && status != models.BookingConfirmed {
			return models.Booking{}, errors.New("invalid_initial_status")
		}
	}

	booking := models.Booking{
		RoomNumber:    strings.TrimSpace(in.RoomNumber),
		GuestID:       in.GuestID,
		ReferenceCode: newReferenceCode(),
		Status:        status,
		CheckInDate:   checkIn,
		CheckOutDate:  checkOut,
		Note:          in.Note,
	}

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_number = ?", booking.RoomNumber).First(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("room_not_found")
			}
			return fmt.Errorf("db error checking room %s: %w", booking.RoomNumber, err)
		}

		var guest models.Guest
		if err := tx.First(&guest, booking.GuestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("guest_not_found")
			}
			return fmt.Errorf("db error checking guest %d: %w", booking.GuestID, err)
		}

		// Date-overlap conflict with any active booking (half-open windows).
		var overlap int64
		if err := tx.Model(&models.Booking{}).
			Where("room_number = ? AND status IN ?", booking.RoomNumber, models.ActiveBookingStatuses).
			Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn).
			Count(&overlap).Error; err != nil {
			return fmt.Errorf("db error checking booking overlap: %w", err)
		}
		if overlap > 0 {
			return errors.New("room_not_available")
		}

		// A lapsed stay with the guest still inside does not overlap the new
		// window, so consult the resolver for the overstay signal.
		if !checkIn.After(reconcile.DateOnly(asOf)) {
			candidates, err := NewSyncStore(tx).Bookings().FindActiveForRoom(ctx, booking.RoomNumber)
			if err != nil {
				return err
			}
			state, err := reconcile.Resolve(asOf, room, candidates)
			if err != nil {
				return err
			}
			if state.Reason == reconcile.ReasonOccupiedOverstay {
				return errors.New("room_occupied_overstay")
			}
		}

		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return models.Booking{}, txErr
	}

	if _, err := s.Runner.ReconcileRoom(ctx, booking.RoomNumber, asOf); err != nil {
		return booking, fmt.Errorf("booking created but room sync failed: %w", err)
	}
	return booking, nil
}

// CheckIn marks the guest arrived. The single-checked_in invariant is
// enforced here under the room lock; the runner only ever detects violations
// after the fact.
func (s *BookingService) CheckIn(ctx context.Context, bookingID uint, asOf time.Time) error {
	var roomNumber string

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("booking_not_found")
			}
			return err
		}
		roomNumber = booking.RoomNumber

		if booking.Status == models.BookingCheckedIn {
			return errors.New("already_checked_in")
		}
		if booking.Status != models.BookingPending && booking.Status != models.BookingConfirmed {
			return errors.New("booking_not_checkinable")
		}
		if !booking.Covers(reconcile.DateOnly(asOf)) {
			return errors.New("outside_stay_window")
		}

		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_number = ?", booking.RoomNumber).First(&room).Error; err != nil {
			return fmt.Errorf("db error checking room %s: %w", booking.RoomNumber, err)
		}
		if room.Status.IsManual() {
			return errors.New("room_not_ready")
		}

		var occupied int64
		if err := tx.Model(&models.Booking{}).
			Where("room_number = ? AND status = ? AND id <> ?", booking.RoomNumber, models.BookingCheckedIn, booking.ID).
			Count(&occupied).Error; err != nil {
			return fmt.Errorf("db error checking occupancy: %w", err)
		}
		if occupied > 0 {
			return errors.New("room_already_occupied")
		}

		now := time.Now().UTC()
		return tx.Model(&booking).Updates(map[string]interface{}{
			"status":        models.BookingCheckedIn,
			"checked_in_at": now,
		}).Error
	})
	if txErr != nil {
		return txErr
	}

	_, err := s.Runner.ReconcileRoom(ctx, roomNumber, asOf)
	return err
}

// CheckOut is the only place checked_out_at gets set; it is the proof of a
// real checkout that the overstay guard looks for.
func (s *BookingService) CheckOut(ctx context.Context, bookingID uint, asOf time.Time) error {
	var roomNumber string

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("booking_not_found")
			}
			return err
		}
		roomNumber = booking.RoomNumber

		if booking.Status != models.BookingCheckedIn {
			return errors.New("not_checked_in")
		}

		now := time.Now().UTC()
		return tx.Model(&booking).Updates(map[string]interface{}{
			"status":         models.BookingCheckedOut,
			"checked_out_at": now,
		}).Error
	})
	if txErr != nil {
		return txErr
	}

	_, err := s.Runner.ReconcileRoom(ctx, roomNumber, asOf)
	return err
}

// UpdateStatus covers the operator transitions cancel and no_show. Check-in
// and checkout have their own paths; everything else is rejected.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID uint, status models.BookingStatus, note string, asOf time.Time) error {
	if status != models.BookingCancelled && status != models.BookingNoShow && status != models.BookingConfirmed {
		return errors.New("status_not_operator_settable")
	}

	var roomNumber string
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("booking_not_found")
			}
			return err
		}
		roomNumber = booking.RoomNumber

		if booking.Status != models.BookingPending && booking.Status != models.BookingConfirmed {
			return errors.New("booking_not_updatable")
		}

		updates := map[string]interface{}{"status": status}
		if note != "" {
			updates["note"] = note
		}
		return tx.Model(&booking).Updates(updates).Error
	})
	if txErr != nil {
		return txErr
	}

	_, err := s.Runner.ReconcileRoom(ctx, roomNumber, asOf)
	return err
}

func (s *BookingService) GetByID(ctx context.Context, bookingID uint) (models.Booking, error) {
	var booking models.Booking
	err := s.DB.WithContext(ctx).Preload("Guest").First(&booking, bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return booking, errors.New("booking_not_found")
	}
	return booking, err
}

func (s *BookingService) GetAll(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.DB.WithContext(ctx).Preload("Guest").Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}
