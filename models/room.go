package models

import (
	"gorm.io/gorm"
)

// RoomStatus is the persisted availability state of a room. The automatic
// values (available..occupied) are derived from bookings by the reconcile
// package; maintenance and cleaning are operator-set.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomBooked      RoomStatus = "booked"
	RoomPrebooked   RoomStatus = "prebooked"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomCleaning    RoomStatus = "cleaning"
)

// IsManual reports whether the status was set by an operator. Manual statuses
// are sticky: automatic reconciliation must never overwrite them.
func (s RoomStatus) IsManual() bool {
	return s == RoomMaintenance || s == RoomCleaning
}

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomBooked, RoomPrebooked, RoomOccupied, RoomMaintenance, RoomCleaning:
		return true
	}
	return false
}

type Room struct {
	gorm.Model

	// RoomNumber is the canonical room identifier everywhere in this codebase.
	// The surrogate gorm ID exists only for relations; lookups never use it.
	RoomNumber string `json:"roomNumber" gorm:"column:room_number;uniqueIndex;type:varchar(50)"`

	// Nullable so a missing FK from the frontend doesn't insert 0.
	RoomTypeID *uint `json:"roomTypeId,omitempty" gorm:"column:room_type_id"`

	Status      RoomStatus `json:"status" gorm:"column:status;type:varchar(32);default:available"`
	Floor       string     `json:"floor" gorm:"type:varchar(10)"`
	Price       float64    `json:"price"`
	Description string     `json:"description" gorm:"type:text"`

	RoomType RoomType `gorm:"foreignKey:RoomTypeID" json:"roomType,omitempty"`
}
