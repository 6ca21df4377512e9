// services/share_service.go
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

const shareCodeAttempts = 10

// shareCodeTaken reports whether the code is in use in the party or
// share-token namespace. Soft-deleted rows count too: they still occupy
// the unique indexes, so their codes are not reusable.
func shareCodeTaken(code string) (bool, error) {
	var partyConflicts, tokenConflicts int64
	if err := config.DB.Unscoped().Model(&models.Party{}).Where("share_code = ?", code).Count(&partyConflicts).Error; err != nil {
		return false, err
	}
	if err := config.DB.Unscoped().Model(&models.ShareToken{}).Where("code = ?", code).Count(&tokenConflicts).Error; err != nil {
		return false, err
	}
	return partyConflicts > 0 || tokenConflicts > 0, nil
}

// allocateShareCode draws random 6-char codes until one is free in both
// namespaces, giving up after a bounded number of attempts.
func allocateShareCode() (string, error) {
	for i := 0; i < shareCodeAttempts; i++ {
		code := utils.NewShareCode()
		taken, err := shareCodeTaken(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique share code")
}

type ShareService struct{}

func NewShareService() *ShareService {
	return &ShareService{}
}

// CreateToken mints (or returns the existing) import code for a dish or
// menu. Parties are shared through their own ShareCode, never a token.
func (s *ShareService) CreateToken(userID uint, shareType string, refID uint) (*models.ShareToken, error) {
	if refID == 0 {
		return nil, fmt.Errorf("ref_id is required: %w", utils.ErrValidation)
	}

	switch shareType {
	case models.ShareTypeDish:
		if _, err := NewDishService().Get(userID, refID); err != nil {
			return nil, err
		}
	case models.ShareTypeMenu:
		if _, err := NewMenuService().Get(userID, refID); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown share type %q: %w", shareType, utils.ErrValidation)
	}

	var existing models.ShareToken
	err := config.DB.
		Where("user_id = ? AND type = ? AND ref_id = ?", userID, shareType, refID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code, err := allocateShareCode()
	if err != nil {
		return nil, err
	}
	token := &models.ShareToken{UserID: userID, Code: code, Type: shareType, RefID: refID}
	if err := config.DB.Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

type SharedDish struct {
	Name        string                      `json:"name"`
	Ingredients []models.SnapshotIngredient `json:"ingredients"`
}

type SharedMenu struct {
	Name   string       `json:"name"`
	Dishes []SharedDish `json:"dishes"`
}

type ShareResolution struct {
	Type  string      `json:"type"`
	Party *PartyBrief `json:"party,omitempty"`
	Dish  *SharedDish `json:"dish,omitempty"`
	Menu  *SharedMenu `json:"menu,omitempty"`
}

type PartyBrief struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Mode   string `json:"mode"`
}

// Resolve maps a 6-char code to whatever it names: a party summary, or
// the importable contents of a shared dish or menu.
func (s *ShareService) Resolve(code string) (*ShareResolution, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var party models.Party
	err := config.DB.Where("share_code = ?", code).First(&party).Error
	if err == nil {
		return &ShareResolution{
			Type:  "PARTY",
			Party: &PartyBrief{ID: party.ID, Name: party.Name, Status: party.Status, Mode: party.Mode},
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var token models.ShareToken
	if err := config.DB.Where("code = ?", code).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("share code %q: %w", code, utils.ErrNotFound)
		}
		return nil, err
	}

	switch token.Type {
	case models.ShareTypeDish:
		dish, err := s.loadSharedDish(token.RefID)
		if err != nil {
			return nil, err
		}
		return &ShareResolution{Type: models.ShareTypeDish, Dish: dish}, nil
	case models.ShareTypeMenu:
		var menu models.Menu
		err := config.DB.Preload("Dishes").First(&menu, token.RefID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("shared content gone: %w", utils.ErrNotFound)
			}
			return nil, err
		}
		out := &SharedMenu{Name: menu.Name}
		for _, md := range menu.Dishes {
			dish, err := s.loadSharedDish(md.DishID)
			if err != nil {
				if errors.Is(err, utils.ErrNotFound) {
					continue // dish deleted after sharing
				}
				return nil, err
			}
			out.Dishes = append(out.Dishes, *dish)
		}
		return &ShareResolution{Type: models.ShareTypeMenu, Menu: out}, nil
	default:
		return nil, fmt.Errorf("share code %q: %w", code, utils.ErrNotFound)
	}
}

func (s *ShareService) loadSharedDish(dishID uint) (*SharedDish, error) {
	var dish models.Dish
	err := config.DB.Preload("Ingredients.Ingredient").First(&dish, dishID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shared content gone: %w", utils.ErrNotFound)
		}
		return nil, err
	}
	out := &SharedDish{Name: dish.Name}
	for _, line := range dish.Ingredients {
		out.Ingredients = append(out.Ingredients, models.SnapshotIngredient{
			Name:      line.Ingredient.Name,
			Quantity:  line.Quantity,
			Unit:      line.Unit,
			UnitPrice: line.Ingredient.UnitPrice,
			Spec:      line.Ingredient.Spec,
		})
	}
	return out, nil
}
