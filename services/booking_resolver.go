package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"carrental-backend/models"
)

// GetByReference finds a booking by the reference code printed on the
// customer's confirmation. Matching ignores case and surrounding spaces.
func (s *BookingService) GetByReference(ctx context.Context, ref string) (models.Booking, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if ref == "" {
		return models.Booking{}, fmt.Errorf("%w: empty reference", ErrInvalidBooking)
	}

	var b models.Booking
	if err := s.DB.WithContext(ctx).Where("reference_code = ?", ref).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Booking{}, ErrBookingNotFound
		}
		return models.Booking{}, fmt.Errorf("find booking %s: %w", ref, err)
	}
	return b, nil
}
