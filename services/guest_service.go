package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"hotel-pms/models"
)

type GuestService struct {
	DB *gorm.DB
}

func NewGuestService(db *gorm.DB) *GuestService {
	return &GuestService{DB: db}
}

func (s *GuestService) Create(ctx context.Context, guest models.Guest) (models.Guest, error) {
	guest.FullName = strings.TrimSpace(guest.FullName)
	if guest.FullName == "" {
		return models.Guest{}, errors.New("full_name_required")
	}
	err := s.DB.WithContext(ctx).Create(&guest).Error
	return guest, err
}

func (s *GuestService) GetAll(ctx context.Context) ([]models.Guest, error) {
	var guests []models.Guest
	err := s.DB.WithContext(ctx).Order("full_name ASC").Find(&guests).Error
	return guests, err
}

func (s *GuestService) GetByID(ctx context.Context, id uint) (models.Guest, error) {
	var guest models.Guest
	err := s.DB.WithContext(ctx).First(&guest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return guest, errors.New("guest_not_found")
	}
	return guest, err
}
