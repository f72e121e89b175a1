package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-pms/models"
	"hotel-pms/reconcile"
)

// SyncStore backs the reconcile runner with gorm. Transaction opens one
// database transaction per unit of work; inside it, Get takes a row lock on
// the room so concurrent reconciliation passes serialize per room.
type SyncStore struct {
	db   *gorm.DB
	inTx bool
}

func NewSyncStore(db *gorm.DB) *SyncStore {
	return &SyncStore{db: db}
}

func (s *SyncStore) Rooms() reconcile.RoomStore       { return roomStore{s} }
func (s *SyncStore) Bookings() reconcile.BookingStore { return bookingStore{s} }
func (s *SyncStore) Audit() reconcile.AuditSink       { return auditStore{s} }

func (s *SyncStore) Transaction(ctx context.Context, fn func(reconcile.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&SyncStore{db: tx, inTx: true})
	})
}

type roomStore struct{ *SyncStore }

func (s roomStore) Get(ctx context.Context, roomNumber string) (models.Room, error) {
	var room models.Room
	q := s.db.WithContext(ctx)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("room_number = ?", roomNumber).First(&room).Error; err != nil {
		return models.Room{}, fmt.Errorf("get room %s: %w", roomNumber, err)
	}
	return room, nil
}

func (s roomStore) ListAll(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := s.db.WithContext(ctx).Order("room_number ASC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

func (s roomStore) UpdateStatus(ctx context.Context, roomNumber string, status models.RoomStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Room{}).
		Where("room_number = ?", roomNumber).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update room %s status: %w", roomNumber, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type bookingStore struct{ *SyncStore }

func (s bookingStore) FindActiveForRoom(ctx context.Context, roomNumber string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("room_number = ?", roomNumber).
		Where("status IN ? OR (status = ? AND checked_out_at IS NULL)",
			models.ActiveBookingStatuses, models.BookingCheckedOut).
		Order("check_in_date ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("find bookings for room %s: %w", roomNumber, err)
	}
	return bookings, nil
}

func (s bookingStore) UpdateStatus(ctx context.Context, id uint, status models.BookingStatus, note string) error {
	updates := map[string]interface{}{"status": status}
	if note != "" {
		updates["note"] = note
	}
	res := s.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update booking %d status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type auditStore struct{ *SyncStore }

func (s auditStore) Record(ctx context.Context, action, tableName, recordID string, details map[string]any, actor string) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	entry := models.ActivityLog{
		Action:    action,
		TableName: tableName,
		RecordID:  recordID,
		Details:   datatypes.JSON(payload),
		Actor:     actor,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}
