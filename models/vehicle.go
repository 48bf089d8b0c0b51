package models

import (
	"gorm.io/gorm"
)

// Vehicle is one physical rentable car (a fleet unit).
type Vehicle struct {
	gorm.Model

	// DisplayName is what the back office shows and searches on, e.g. "Corolla #3".
	DisplayName string `json:"displayName" gorm:"column:display_name;type:varchar(120);not null"`
	PlateNumber string `json:"plateNumber" gorm:"column:plate_number;uniqueIndex;type:varchar(32)"`
	ModelName   string `json:"model" gorm:"column:model;type:varchar(120)"`
	Category    string `json:"category" gorm:"type:varchar(50)"`
	Active      bool   `json:"active" gorm:"default:true"`
}
