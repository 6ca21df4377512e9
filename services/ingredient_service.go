// services/ingredient_service.go
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

type IngredientService struct{}

func NewIngredientService() *IngredientService {
	return &IngredientService{}
}

type IngredientRequest struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Unit      string  `json:"unit"`
	Spec      string  `json:"spec"`
}

func (r IngredientRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("ingredient name is required: %w", utils.ErrValidation)
	}
	if r.UnitPrice < 0 {
		return fmt.Errorf("unit price must not be negative: %w", utils.ErrValidation)
	}
	return nil
}

func (s *IngredientService) Create(userID uint, req IngredientRequest) (*models.Ingredient, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	ing := &models.Ingredient{
		UserID:    userID,
		Name:      strings.TrimSpace(req.Name),
		UnitPrice: req.UnitPrice,
		Unit:      req.Unit,
		Spec:      req.Spec,
	}
	if err := config.DB.Create(ing).Error; err != nil {
		return nil, err
	}
	return ing, nil
}

func (s *IngredientService) List(userID uint) ([]models.Ingredient, error) {
	var ings []models.Ingredient
	err := config.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&ings).Error
	return ings, err
}

func (s *IngredientService) Update(userID, id uint, req IngredientRequest) (*models.Ingredient, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var ing models.Ingredient
	if err := config.DB.Where("id = ? AND user_id = ?", id, userID).First(&ing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ingredient %d: %w", id, utils.ErrNotFound)
		}
		return nil, err
	}
	ing.Name = strings.TrimSpace(req.Name)
	ing.UnitPrice = req.UnitPrice
	ing.Unit = req.Unit
	ing.Spec = req.Spec
	if err := config.DB.Save(&ing).Error; err != nil {
		return nil, err
	}

	// Live dish costs are derived from ingredient prices; refresh the
	// cached estimates of every dish using this ingredient.
	if err := NewDishService().refreshCostsForIngredient(ing.ID); err != nil {
		return nil, err
	}
	return &ing, nil
}

func (s *IngredientService) Delete(userID, id uint) error {
	var ing models.Ingredient
	if err := config.DB.Where("id = ? AND user_id = ?", id, userID).First(&ing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("ingredient %d: %w", id, utils.ErrNotFound)
		}
		return err
	}

	var used int64
	if err := config.DB.Model(&models.DishIngredient{}).
		Where("ingredient_id = ?", id).Count(&used).Error; err != nil {
		return err
	}
	if used > 0 {
		return fmt.Errorf("ingredient is used by %d dish line(s): %w", used, utils.ErrValidation)
	}
	return config.DB.Delete(&ing).Error
}
