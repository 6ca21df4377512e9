package models

import "gorm.io/gorm"

// A priced ingredient in the owner's pantry catalogue.
// UnitPrice is the price per Unit (e.g. ¥0.05 per "g").
type Ingredient struct {
	gorm.Model
	UserID    uint    `gorm:"index;not null" json:"user_id"`
	Name      string  `gorm:"not null" json:"name"`
	UnitPrice float64 `gorm:"not null;default:0" json:"unit_price"`
	Unit      string  `json:"unit"`
	Spec      string  `json:"spec"` // e.g. "500g/袋"
}
