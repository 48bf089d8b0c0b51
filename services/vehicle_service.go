package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"carrental-backend/models"
)

// VehicleService owns the fleet table. It is the engine's Fleet.
type VehicleService struct {
	DB *gorm.DB
}

func NewVehicleService(db *gorm.DB) *VehicleService {
	return &VehicleService{DB: db}
}

// VehicleIDs lists active vehicles in id order.
func (s *VehicleService) VehicleIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := s.DB.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list vehicle ids: %w", err)
	}
	return ids, nil
}

func (s *VehicleService) List(ctx context.Context) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return vehicles, nil
}

func (s *VehicleService) GetByID(ctx context.Context, id uint) (models.Vehicle, error) {
	var v models.Vehicle
	if err := s.DB.WithContext(ctx).First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Vehicle{}, ErrVehicleNotFound
		}
		return models.Vehicle{}, fmt.Errorf("get vehicle %d: %w", id, err)
	}
	return v, nil
}

func (s *VehicleService) Create(ctx context.Context, v *models.Vehicle) error {
	v.DisplayName = strings.TrimSpace(v.DisplayName)
	v.PlateNumber = strings.TrimSpace(v.PlateNumber)
	if v.DisplayName == "" {
		return fmt.Errorf("%w: display name is required", ErrInvalidVehicle)
	}
	if err := s.DB.WithContext(ctx).Create(v).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: plate %q", ErrDuplicate, v.PlateNumber)
		}
		return fmt.Errorf("create vehicle: %w", err)
	}
	return nil
}

// vehicleExists ignores soft-deleted rows.
func vehicleExists(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Vehicle{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
