package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-pms/models"
)

const auditRoomStatusManual = "room_status_manual"

// ManualRoomStatuses are the statuses an operator may set directly. Setting
// available hands the room back to automatic reconciliation.
var ManualRoomStatuses = []models.RoomStatus{models.RoomMaintenance, models.RoomCleaning, models.RoomAvailable}

type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

func (s *RoomService) Create(ctx context.Context, room models.Room) (models.Room, error) {
	room.RoomNumber = strings.TrimSpace(room.RoomNumber)
	if room.RoomNumber == "" {
		return models.Room{}, errors.New("room_number_required")
	}
	if room.Status == "" {
		room.Status = models.RoomAvailable
	}
	if !room.Status.Valid() {
		return models.Room{}, errors.New("invalid_status")
	}

	if room.RoomTypeID != nil {
		var rt models.RoomType
		if err := s.DB.WithContext(ctx).First(&rt, *room.RoomTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Room{}, errors.New("room_type_not_found")
			}
			return models.Room{}, fmt.Errorf("db error checking room type %d: %w", *room.RoomTypeID, err)
		}
	}

	if err := s.DB.WithContext(ctx).Create(&room).Error; err != nil {
		lc := strings.ToLower(err.Error())
		if strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique") {
			return models.Room{}, errors.New("room_number_taken")
		}
		return models.Room{}, fmt.Errorf("failed to create room: %w", err)
	}
	return room, nil
}

func (s *RoomService) GetAll(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := s.DB.WithContext(ctx).Preload("RoomType").Order("room_number ASC").Find(&rooms).Error
	return rooms, err
}

func (s *RoomService) GetByNumber(ctx context.Context, roomNumber string) (models.Room, error) {
	var room models.Room
	err := s.DB.WithContext(ctx).Preload("RoomType").
		Where("room_number = ?", roomNumber).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return room, errors.New("room_not_found")
	}
	return room, err
}

// Update patches CRUD attributes. Status is deliberately not patchable here;
// it moves only through SetManualStatus or the reconcile runner.
func (s *RoomService) Update(ctx context.Context, roomNumber string, updates map[string]interface{}) error {
	for _, k := range []string{"id", "ID", "status", "room_number", "roomNumber", "created_at", "updated_at", "deleted_at"} {
		delete(updates, k)
	}
	if len(updates) == 0 {
		return errors.New("nothing_to_update")
	}

	res := s.DB.WithContext(ctx).Model(&models.Room{}).
		Where("room_number = ?", roomNumber).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update room %s: %w", roomNumber, res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.New("room_not_found")
	}
	return nil
}

// Delete refuses while any non-terminal booking still references the room.
func (s *RoomService) Delete(ctx context.Context, roomNumber string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Booking{}).
			Where("room_number = ? AND status IN ?", roomNumber, models.ActiveBookingStatuses).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count bookings for room %s: %w", roomNumber, err)
		}
		if count > 0 {
			return errors.New("room_has_active_bookings")
		}

		res := tx.Where("room_number = ?", roomNumber).Delete(&models.Room{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete room %s: %w", roomNumber, res.Error)
		}
		if res.RowsAffected == 0 {
			return errors.New("room_not_found")
		}
		return nil
	})
}

func (s *RoomService) GetRoomTypes(ctx context.Context) ([]models.RoomType, error) {
	var types []models.RoomType
	err := s.DB.WithContext(ctx).Order("id ASC").Find(&types).Error
	return types, err
}

func (s *RoomService) CreateRoomType(ctx context.Context, rt models.RoomType) (models.RoomType, error) {
	rt.TypeName = strings.TrimSpace(rt.TypeName)
	if rt.TypeName == "" {
		return models.RoomType{}, errors.New("type_name_required")
	}
	err := s.DB.WithContext(ctx).Create(&rt).Error
	return rt, err
}

// SetManualStatus is the operator toggle for maintenance/cleaning (and back
// to available). It is the only code path besides the reconcile runner that
// writes rooms.status, and every change is audited with the operator actor.
func (s *RoomService) SetManualStatus(ctx context.Context, roomNumber string, status models.RoomStatus, actor string) error {
	allowed := false
	for _, st := range ManualRoomStatuses {
		if st == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.New("status_not_operator_settable")
	}
	if strings.TrimSpace(actor) == "" {
		actor = models.ActorSystem
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_number = ?", roomNumber).First(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("room_not_found")
			}
			return err
		}
		if room.Status == status {
			return nil
		}

		if err := tx.Model(&models.Room{}).
			Where("room_number = ?", roomNumber).
			Update("status", status).Error; err != nil {
			return fmt.Errorf("failed to update room %s status: %w", roomNumber, err)
		}

		payload, err := json.Marshal(map[string]any{
			"old_status": string(room.Status),
			"new_status": string(status),
		})
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		entry := models.ActivityLog{
			Action:    auditRoomStatusManual,
			TableName: "rooms",
			RecordID:  roomNumber,
			Details:   datatypes.JSON(payload),
			Actor:     actor,
		}
		return tx.Create(&entry).Error
	})
}
