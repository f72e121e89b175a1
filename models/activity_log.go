package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActorSystem marks activity log entries written by automated jobs rather
// than a logged-in operator.
const ActorSystem = "system"

// ActivityLog is the append-only audit trail. Rows are written exactly once
// per applied state transition and are never updated or deleted.
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	Action    string `gorm:"column:action;type:varchar(64);index" json:"action"`
	TableName string `gorm:"column:table_name;type:varchar(64);index" json:"tableName"`
	RecordID  string `gorm:"column:record_id;type:varchar(64);index" json:"recordId"`

	// Structured change description (old/new status, reason, run id, ...).
	Details datatypes.JSON `gorm:"column:details" json:"details"`

	Actor string `gorm:"column:actor;type:varchar(64)" json:"actor"`
}
