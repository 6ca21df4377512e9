package models

import "gorm.io/gorm"

type Dish struct {
	gorm.Model
	UserID        uint             `gorm:"index;not null" json:"user_id"`
	Name          string           `gorm:"not null" json:"name"`
	EstimatedCost float64          `json:"estimated_cost"` // cached Σ quantity×unit_price, refreshed on every line-item change
	Ingredients   []DishIngredient `json:"ingredients"`
}

// One ingredient line item of a dish.
type DishIngredient struct {
	gorm.Model
	DishID       uint       `gorm:"index;not null" json:"dish_id"`
	IngredientID uint       `gorm:"not null" json:"ingredient_id"`
	Ingredient   Ingredient `json:"ingredient"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit"`
}
