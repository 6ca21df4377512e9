// services/menu_service.go
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

type MenuService struct{}

func NewMenuService() *MenuService {
	return &MenuService{}
}

type MenuRequest struct {
	Name    string `json:"name"`
	DishIDs []uint `json:"dish_ids"`
}

func (s *MenuService) Create(userID uint, req MenuRequest) (*models.Menu, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("menu name is required: %w", utils.ErrValidation)
	}
	menu := &models.Menu{UserID: userID, Name: strings.TrimSpace(req.Name)}
	if err := config.DB.Create(menu).Error; err != nil {
		return nil, err
	}
	if err := s.writeDishes(userID, menu, req.DishIDs); err != nil {
		return nil, err
	}
	return s.Get(userID, menu.ID)
}

func (s *MenuService) Get(userID, menuID uint) (*models.Menu, error) {
	var menu models.Menu
	err := config.DB.
		Preload("Dishes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Dishes.Dish").
		Where("id = ? AND user_id = ?", menuID, userID).
		First(&menu).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("menu %d: %w", menuID, utils.ErrNotFound)
		}
		return nil, err
	}
	return &menu, nil
}

func (s *MenuService) List(userID uint) ([]models.Menu, error) {
	var menus []models.Menu
	err := config.DB.
		Preload("Dishes.Dish").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&menus).Error
	return menus, err
}

// Update renames the menu and rewrites its dish membership wholesale.
func (s *MenuService) Update(userID, menuID uint, req MenuRequest) (*models.Menu, error) {
	menu, err := s.Get(userID, menuID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		menu.Name = name
		if err := config.DB.Model(menu).UpdateColumn("name", name).Error; err != nil {
			return nil, err
		}
	}
	if err := config.DB.
		Where("menu_id = ?", menu.ID).
		Delete(&models.MenuDish{}).Error; err != nil {
		return nil, err
	}
	if err := s.writeDishes(userID, menu, req.DishIDs); err != nil {
		return nil, err
	}
	return s.Get(userID, menu.ID)
}

func (s *MenuService) Delete(userID, menuID uint) error {
	menu, err := s.Get(userID, menuID)
	if err != nil {
		return err
	}
	if err := config.DB.
		Where("menu_id = ?", menu.ID).
		Delete(&models.MenuDish{}).Error; err != nil {
		return err
	}
	return config.DB.Delete(menu).Error
}

// ShoppingList aggregates the menu's dishes with live ingredient
// prices, one serving each.
func (s *MenuService) ShoppingList(userID, menuID uint) (*ShoppingList, error) {
	menu, err := s.Get(userID, menuID)
	if err != nil {
		return nil, err
	}
	dishIDs := make([]uint, 0, len(menu.Dishes))
	for _, md := range menu.Dishes {
		dishIDs = append(dishIDs, md.DishID)
	}
	var dishes []models.Dish
	if len(dishIDs) > 0 {
		if err := config.DB.
			Preload("Ingredients.Ingredient").
			Where("id IN ?", dishIDs).
			Find(&dishes).Error; err != nil {
			return nil, err
		}
	}
	list := GenerateShoppingList(LiveDishInput(dishes))
	return &list, nil
}

func (s *MenuService) writeDishes(userID uint, menu *models.Menu, dishIDs []uint) error {
	pos := 0
	seen := make(map[uint]bool)
	for _, dishID := range dishIDs {
		if seen[dishID] {
			continue
		}
		seen[dishID] = true
		var dish models.Dish
		if err := config.DB.
			Where("id = ? AND user_id = ?", dishID, userID).
			First(&dish).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("dish %d: %w", dishID, utils.ErrNotFound)
			}
			return err
		}
		md := &models.MenuDish{MenuID: menu.ID, DishID: dish.ID, Position: pos}
		if err := config.DB.Create(md).Error; err != nil {
			return err
		}
		pos++
	}
	return nil
}
