package services

import (
	"errors"
	"fmt"

	mysql "github.com/go-sql-driver/mysql"

	"carrental-backend/availability"
)

var (
	// ErrVehicleNotFound wraps availability.ErrUnknownVehicle so the engine
	// reports it per vehicle instead of as an outage.
	ErrVehicleNotFound   = fmt.Errorf("vehicle_not_found: %w", availability.ErrUnknownVehicle)
	ErrBookingNotFound   = errors.New("booking_not_found")
	ErrNoteNotFound      = errors.New("note_not_found")
	ErrDuplicate         = errors.New("duplicate_entry")
	ErrInvalidVehicle    = errors.New("invalid_vehicle")
	ErrInvalidAdmin      = errors.New("invalid_admin")
	ErrInvalidBooking    = errors.New("invalid_booking")
	ErrInvalidNote       = errors.New("invalid_note")
	ErrInvalidTransition = errors.New("invalid_status_transition")
)

const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
