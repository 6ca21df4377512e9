package models

import "gorm.io/gorm"

// A named, ordered collection of dish references. Menus are a
// convenience for seeding a party with many dishes at once.
type Menu struct {
	gorm.Model
	UserID uint       `gorm:"index;not null" json:"user_id"`
	Name   string     `gorm:"not null" json:"name"`
	Dishes []MenuDish `json:"dishes"`
}

type MenuDish struct {
	gorm.Model
	MenuID   uint `gorm:"index;not null" json:"menu_id"`
	DishID   uint `gorm:"not null" json:"dish_id"`
	Dish     Dish `json:"dish"`
	Position int  `json:"position"`
}
