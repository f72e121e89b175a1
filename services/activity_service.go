package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"hotel-pms/models"
)

type ActivityService struct {
	DB *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{DB: db}
}

type ActivityFilter struct {
	TableName string
	RecordID  string
	Action    string
	Limit     int
	Offset    int
}

// List returns audit entries newest first. The table is append-only, so this
// is the only read shape anyone needs.
func (s *ActivityService) List(ctx context.Context, f ActivityFilter) ([]models.ActivityLog, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}

	q := s.DB.WithContext(ctx).Model(&models.ActivityLog{})
	if f.TableName != "" {
		q = q.Where("table_name = ?", f.TableName)
	}
	if f.RecordID != "" {
		q = q.Where("record_id = ?", f.RecordID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}

	var entries []models.ActivityLog
	if err := q.Order("id DESC").Limit(f.Limit).Offset(f.Offset).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return entries, nil
}
