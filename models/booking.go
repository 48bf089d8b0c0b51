package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BookingStatus is the lifecycle state of a reservation.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known booking statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingActive, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Booking is one customer reservation for one vehicle.
type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	VehicleID     uint          `gorm:"column:vehicle_id;index;not null" json:"vehicleId"`
	ReferenceCode string        `gorm:"column:reference_code;size:64;uniqueIndex" json:"referenceCode,omitempty"`
	PickupAt      time.Time     `gorm:"column:pickup_at;index;not null" json:"pickupAt"`
	DropoffAt     time.Time     `gorm:"column:dropoff_at;index;not null" json:"dropoffAt"`
	Status        BookingStatus `gorm:"column:status;size:32;index" json:"status"`

	// Display-only customer fields, carried through untouched.
	CustomerName    string         `gorm:"column:customer_name;size:255" json:"customerName,omitempty"`
	CustomerContact string         `gorm:"column:customer_contact;size:255" json:"customerContact,omitempty"`
	Extras          datatypes.JSON `gorm:"column:extras" json:"extras,omitempty"`
}
