// services/dish_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coolerogenous/WoWoKitchen/config"
	"github.com/coolerogenous/WoWoKitchen/models"
	"github.com/coolerogenous/WoWoKitchen/utils"

	"gorm.io/gorm"
)

type DishService struct{}

func NewDishService() *DishService {
	return &DishService{}
}

type DishItemRequest struct {
	IngredientID uint    `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

type DishRequest struct {
	Name  string            `json:"name"`
	Items []DishItemRequest `json:"items"`
}

func (s *DishService) Create(userID uint, req DishRequest) (*models.Dish, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("dish name is required: %w", utils.ErrValidation)
	}

	dish := &models.Dish{UserID: userID, Name: strings.TrimSpace(req.Name)}
	if err := config.DB.Create(dish).Error; err != nil {
		return nil, err
	}
	if err := s.writeItems(userID, dish, req.Items); err != nil {
		return nil, err
	}
	return s.Get(userID, dish.ID)
}

func (s *DishService) Get(userID, dishID uint) (*models.Dish, error) {
	var dish models.Dish
	err := config.DB.
		Preload("Ingredients.Ingredient").
		Where("id = ? AND user_id = ?", dishID, userID).
		First(&dish).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dish %d: %w", dishID, utils.ErrNotFound)
		}
		return nil, err
	}
	return &dish, nil
}

func (s *DishService) List(userID uint) ([]models.Dish, error) {
	var dishes []models.Dish
	err := config.DB.
		Preload("Ingredients.Ingredient").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&dishes).Error
	return dishes, err
}

// Update rewrites the dish's line items wholesale (delete then
// recreate) and refreshes the cached estimated cost.
func (s *DishService) Update(userID, dishID uint, req DishRequest) (*models.Dish, error) {
	dish, err := s.Get(userID, dishID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		dish.Name = name
	}
	if err := config.DB.
		Where("dish_id = ?", dish.ID).
		Delete(&models.DishIngredient{}).Error; err != nil {
		return nil, err
	}
	if err := s.writeItems(userID, dish, req.Items); err != nil {
		return nil, err
	}
	return s.Get(userID, dish.ID)
}

func (s *DishService) Delete(userID, dishID uint) error {
	dish, err := s.Get(userID, dishID)
	if err != nil {
		return err
	}
	if err := config.DB.
		Where("dish_id = ?", dish.ID).
		Delete(&models.DishIngredient{}).Error; err != nil {
		return err
	}
	if err := config.DB.
		Where("dish_id = ?", dish.ID).
		Delete(&models.MenuDish{}).Error; err != nil {
		return err
	}
	return config.DB.Delete(dish).Error
}

// writeItems creates the line items, validating each ingredient belongs
// to the owner, then persists the recomputed estimated cost.
func (s *DishService) writeItems(userID uint, dish *models.Dish, items []DishItemRequest) error {
	var cost float64
	for _, it := range items {
		if it.Quantity <= 0 {
			return fmt.Errorf("line quantity must be positive: %w", utils.ErrValidation)
		}
		var ing models.Ingredient
		if err := config.DB.
			Where("id = ? AND user_id = ?", it.IngredientID, userID).
			First(&ing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("ingredient %d: %w", it.IngredientID, utils.ErrNotFound)
			}
			return err
		}
		unit := it.Unit
		if unit == "" {
			unit = ing.Unit
		}
		di := &models.DishIngredient{
			DishID:       dish.ID,
			IngredientID: ing.ID,
			Quantity:     it.Quantity,
			Unit:         unit,
		}
		if err := config.DB.Create(di).Error; err != nil {
			return err
		}
		cost += it.Quantity * ing.UnitPrice
	}
	dish.EstimatedCost = cost
	return config.DB.Model(dish).UpdateColumn("estimated_cost", cost).Error
}

// refreshCostsForIngredient recomputes the cached estimate of every
// dish that references the ingredient, after its unit price changed.
func (s *DishService) refreshCostsForIngredient(ingredientID uint) error {
	var lines []models.DishIngredient
	if err := config.DB.
		Where("ingredient_id = ?", ingredientID).
		Find(&lines).Error; err != nil {
		return err
	}
	for _, line := range lines {
		if err := s.refreshCost(line.DishID); err != nil {
			return err
		}
	}
	return nil
}

func (s *DishService) refreshCost(dishID uint) error {
	var lines []models.DishIngredient
	if err := config.DB.
		Preload("Ingredient").
		Where("dish_id = ?", dishID).
		Find(&lines).Error; err != nil {
		return err
	}
	var cost float64
	for _, line := range lines {
		cost += line.Quantity * line.Ingredient.UnitPrice
	}
	return config.DB.Model(&models.Dish{}).
		Where("id = ?", dishID).
		UpdateColumn("estimated_cost", cost).Error
}

// LiveDishInput converts dishes (current ingredient prices, preloaded
// lines) into aggregation input. This is the live call site; party
// shopping lists go through frozen snapshots instead.
func LiveDishInput(dishes []models.Dish) []DishWithIngredients {
	out := make([]DishWithIngredients, 0, len(dishes))
	for _, d := range dishes {
		in := DishWithIngredients{ID: d.ID, Name: d.Name}
		for _, line := range d.Ingredients {
			in.Items = append(in.Items, LineItem{
				IngredientID: line.IngredientID,
				Name:         line.Ingredient.Name,
				Quantity:     line.Quantity,
				Unit:         line.Unit,
				UnitPrice:    line.Ingredient.UnitPrice,
				Spec:         line.Ingredient.Spec,
			})
		}
		out = append(out, in)
	}
	return out
}
