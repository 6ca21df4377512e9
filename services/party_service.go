// services/party_service.go
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

type PartyService struct{}

func NewPartyService() *PartyService {
	return &PartyService{}
}

type CreatePartyRequest struct {
	Name    string `json:"name"`
	Mode    string `json:"mode"`
	DishIDs []uint `json:"dish_ids"`
	MenuID  uint   `json:"menu_id"`
}

// Create opens a new active party with a fresh share code. Dish ids and
// the menu's dishes (deduplicated, menu first) become the allowed-dish
// restriction in order mode, or the initial candidate pool in pool mode.
func (s *PartyService) Create(hostID uint, req CreatePartyRequest) (*models.Party, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("party name is required: %w", utils.ErrValidation)
	}
	mode := req.Mode
	if mode == "" {
		mode = models.PartyModeOrder
	}
	if mode != models.PartyModeOrder && mode != models.PartyModePool {
		return nil, fmt.Errorf("unknown party mode %q: %w", mode, utils.ErrValidation)
	}

	dishIDs, err := s.resolveDishIDs(hostID, req.DishIDs, req.MenuID)
	if err != nil {
		return nil, err
	}

	code, err := allocateShareCode()
	if err != nil {
		return nil, err
	}

	party := &models.Party{
		HostID:    hostID,
		Name:      strings.TrimSpace(req.Name),
		Status:    models.PartyStatusActive,
		Mode:      mode,
		ShareCode: code,
	}
	if mode == models.PartyModeOrder && len(dishIDs) > 0 {
		party.AvailableDishIDs = dishIDs
	}

	// Party row and initial pool rows land together or not at all; a bad
	// dish id must not leave a half-seeded party behind.
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(party).Error; err != nil {
			return err
		}
		if mode == models.PartyModePool {
			for _, dishID := range dishIDs {
				if _, err := s.insertPoolDish(tx, party, dishID, "host"); err != nil {
					return err
				}
			}
		}
		return s.recomputeBudget(tx, party)
	})
	if err != nil {
		return nil, err
	}
	return party, nil
}

type PartySummary struct {
	models.Party
	GuestCount int `json:"guest_count"`
	DishCount  int `json:"dish_count"`
}

func (s *PartyService) MyParties(hostID uint) ([]PartySummary, error) {
	var parties []models.Party
	err := config.DB.
		Preload("Dishes").
		Preload("Guests").
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Find(&parties).Error
	if err != nil {
		return nil, err
	}
	out := make([]PartySummary, 0, len(parties))
	for _, p := range parties {
		out = append(out, PartySummary{
			Party:      p,
			GuestCount: len(p.Guests),
			DishCount:  len(p.Dishes),
		})
	}
	return out, nil
}

func (s *PartyService) Rename(hostID, partyID uint, name string) (*models.Party, error) {
	party, err := s.ownedParty(hostID, partyID)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name == "" {
		return nil, fmt.Errorf("party name is required: %w", utils.ErrValidation)
	}
	party.Name = name
	if err := config.DB.Model(party).UpdateColumn("name", name).Error; err != nil {
		return nil, err
	}
	return party, nil
}

// Delete removes the party and cascades its pool entries, guest roster
// and selections.
func (s *PartyService) Delete(hostID, partyID uint) error {
	party, err := s.ownedParty(hostID, partyID)
	if err != nil {
		return err
	}
	return config.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("party_dish_id IN (?)",
				tx.Model(&models.PartyDish{}).Select("id").Where("party_id = ?", party.ID)).
			Delete(&models.GuestSelection{}).Error
		if err != nil {
			return err
		}
		if err := tx.Where("party_id = ?", party.ID).Delete(&models.PartyDish{}).Error; err != nil {
			return err
		}
		if err := tx.Where("party_id = ?", party.ID).Delete(&models.PartyGuest{}).Error; err != nil {
			return err
		}
		return tx.Delete(party).Error
	})
}

// ToggleLock flips active↔locked. Only these two states exist; locking
// never touches existing orders or selections.
func (s *PartyService) ToggleLock(hostID, partyID uint) (string, error) {
	party, err := s.ownedParty(hostID, partyID)
	if err != nil {
		return "", err
	}
	next := models.PartyStatusLocked
	if party.Status == models.PartyStatusLocked {
		next = models.PartyStatusActive
	}
	if err := config.DB.Model(party).UpdateColumn("status", next).Error; err != nil {
		return "", err
	}
	party.Status = next
	return next, nil
}

type DishSummary struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	EstimatedCost float64 `json:"estimated_cost"`
}

type PartyDetail struct {
	Party           *models.Party `json:"party"`
	AvailableDishes []DishSummary `json:"available_dishes"`
}

// GetByShareCode is the public party view. Guest tokens never appear in
// the payload; selector nicknames do.
func (s *PartyService) GetByShareCode(code string) (*PartyDetail, error) {
	party, err := s.byShareCode(code)
	if err != nil {
		return nil, err
	}
	err = config.DB.
		Preload("Dishes.Selections.Guest").
		Preload("Guests").
		First(party, party.ID).Error
	if err != nil {
		return nil, err
	}

	var available []DishSummary
	if len(party.AvailableDishIDs) > 0 {
		var dishes []models.Dish
		if err := config.DB.Where("id IN ?", []uint(party.AvailableDishIDs)).Find(&dishes).Error; err != nil {
			return nil, err
		}
		for _, d := range dishes {
			available = append(available, DishSummary{ID: d.ID, Name: d.Name, EstimatedCost: d.EstimatedCost})
		}
	}
	return &PartyDetail{Party: party, AvailableDishes: available}, nil
}

// JoinAsGuest issues a fresh guest identity. Joining twice with the
// same nickname deliberately creates two independent guests.
func (s *PartyService) JoinAsGuest(code, nickname string) (*models.PartyGuest, error) {
	if strings.TrimSpace(nickname) == "" {
		return nil, fmt.Errorf("nickname is required: %w", utils.ErrValidation)
	}
	party, err := s.byShareCode(code)
	if err != nil {
		return nil, err
	}
	if party.Status == models.PartyStatusLocked {
		return nil, fmt.Errorf("cannot join: %w", utils.ErrLocked)
	}
	guest := &models.PartyGuest{
		PartyID:    party.ID,
		Nickname:   strings.TrimSpace(nickname),
		GuestToken: utils.NewGuestToken(),
	}
	if err := config.DB.Create(guest).Error; err != nil {
		return nil, err
	}
	return guest, nil
}

// AddDish orders a dish into an order-mode party. Ordering the same
// dish again accumulates servings onto the existing row via an atomic
// in-database increment, so concurrent adds never lose an update. The
// first add freezes the dish's name, cost and ingredient lines.
func (s *PartyService) AddDish(code string, dishID uint, addedBy string, servings int) (float64, error) {
	party, err := s.byShareCode(code)
	if err != nil {
		return 0, err
	}
	if party.Status == models.PartyStatusLocked {
		return 0, fmt.Errorf("cannot add dish: %w", utils.ErrLocked)
	}
	if party.Mode != models.PartyModeOrder {
		return 0, fmt.Errorf("party takes selections, not orders: %w", utils.ErrValidation)
	}
	if len(party.AvailableDishIDs) > 0 && !containsID(party.AvailableDishIDs, dishID) {
		return 0, fmt.Errorf("dish not in allowed range: %w", utils.ErrValidation)
	}
	if servings < 1 {
		servings = 1
	}

	res := config.DB.Model(&models.PartyDish{}).
		Where("party_id = ? AND original_dish_id = ?", party.ID, dishID).
		UpdateColumn("servings", gorm.Expr("servings + ?", servings))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		if addedBy = strings.TrimSpace(addedBy); addedBy == "" {
			addedBy = "匿名"
		}
		pd, err := s.buildPartyDish(config.DB, party.ID, dishID, addedBy, servings)
		if err != nil {
			return 0, err
		}
		if err := config.DB.Create(pd).Error; err != nil {
			return 0, err
		}
	}

	if err := s.recomputeBudget(config.DB, party); err != nil {
		return 0, err
	}
	return party.TotalBudget, nil
}

func (s *PartyService) RemoveDish(partyDishID uint) (float64, error) {
	pd, party, err := s.partyDish(partyDishID)
	if err != nil {
		return 0, err
	}
	if party.Status == models.PartyStatusLocked {
		return 0, fmt.Errorf("cannot remove dish: %w", utils.ErrLocked)
	}
	if err := config.DB.Where("party_dish_id = ?", pd.ID).Delete(&models.GuestSelection{}).Error; err != nil {
		return 0, err
	}
	if err := config.DB.Delete(pd).Error; err != nil {
		return 0, err
	}
	if err := s.recomputeBudget(config.DB, party); err != nil {
		return 0, err
	}
	return party.TotalBudget, nil
}

// ChangeServings sets the exact servings count; anything below one
// removes the row instead.
func (s *PartyService) ChangeServings(partyDishID uint, servings int) (float64, error) {
	if servings < 1 {
		return s.RemoveDish(partyDishID)
	}
	pd, party, err := s.partyDish(partyDishID)
	if err != nil {
		return 0, err
	}
	if party.Status == models.PartyStatusLocked {
		return 0, fmt.Errorf("cannot change servings: %w", utils.ErrLocked)
	}
	if err := config.DB.Model(pd).UpdateColumn("servings", servings).Error; err != nil {
		return 0, err
	}
	if err := s.recomputeBudget(config.DB, party); err != nil {
		return 0, err
	}
	return party.TotalBudget, nil
}

// AddToPool snapshots one dish, or every dish of a menu, into a
// pool-mode party's candidate pool.
func (s *PartyService) AddToPool(hostID, partyID, dishID, menuID uint) ([]models.PartyDish, error) {
	party, err := s.ownedParty(hostID, partyID)
	if err != nil {
		return nil, err
	}
	if party.Status == models.PartyStatusLocked {
		return nil, fmt.Errorf("cannot modify pool: %w", utils.ErrLocked)
	}
	if party.Mode != models.PartyModePool {
		return nil, fmt.Errorf("party takes orders, not a pool: %w", utils.ErrValidation)
	}

	var dishIDs []uint
	if dishID > 0 {
		dishIDs = []uint{dishID}
	} else if menuID > 0 {
		dishIDs, err = s.resolveDishIDs(hostID, nil, menuID)
		if err != nil {
			return nil, err
		}
	}
	if len(dishIDs) == 0 {
		return nil, fmt.Errorf("dish_id or menu_id is required: %w", utils.ErrValidation)
	}

	// A menu expands to several rows; none of them lands unless all do.
	var created []models.PartyDish
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		for _, id := range dishIDs {
			pd, err := s.insertPoolDish(tx, party, id, "host")
			if err != nil {
				return err
			}
			created = append(created, *pd)
		}
		return s.recomputeBudget(tx, party)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *PartyService) RemoveFromPool(hostID, partyID, poolDishID uint) error {
	party, err := s.ownedParty(hostID, partyID)
	if err != nil {
		return err
	}
	if party.Status == models.PartyStatusLocked {
		return fmt.Errorf("cannot modify pool: %w", utils.ErrLocked)
	}
	var pd models.PartyDish
	if err := config.DB.Where("id = ? AND party_id = ?", poolDishID, party.ID).First(&pd).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("pool dish %d: %w", poolDishID, utils.ErrNotFound)
		}
		return err
	}
	if err := config.DB.Where("party_dish_id = ?", pd.ID).Delete(&models.GuestSelection{}).Error; err != nil {
		return err
	}
	if err := config.DB.Delete(&pd).Error; err != nil {
		return err
	}
	return s.recomputeBudget(config.DB, party)
}

const (
	SelectionSelect   = "select"
	SelectionUnselect = "unselect"
)

// ToggleSelection records or withdraws a guest's interest in a pool
// dish. Selecting twice keeps a single row; unselecting an unselected
// dish is a no-op.
func (s *PartyService) ToggleSelection(code, guestToken string, poolDishID uint, action string) error {
	party, err := s.byShareCode(code)
	if err != nil {
		return err
	}
	var guest models.PartyGuest
	if err := config.DB.Where("guest_token = ?", guestToken).First(&guest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invalid guest token: %w", utils.ErrAuth)
		}
		return err
	}
	if guest.PartyID != party.ID {
		return fmt.Errorf("guest belongs to another party: %w", utils.ErrAuth)
	}
	if party.Status == models.PartyStatusLocked {
		return fmt.Errorf("cannot change selection: %w", utils.ErrLocked)
	}
	var pd models.PartyDish
	if err := config.DB.Where("id = ? AND party_id = ?", poolDishID, party.ID).First(&pd).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("pool dish %d: %w", poolDishID, utils.ErrNotFound)
		}
		return err
	}

	switch action {
	case SelectionSelect:
		var existing models.GuestSelection
		err := config.DB.
			Where("guest_id = ? AND party_dish_id = ?", guest.ID, pd.ID).
			First(&existing).Error
		if err == nil {
			return nil // already selected
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		sel := &models.GuestSelection{GuestID: guest.ID, PartyDishID: pd.ID}
		if err := config.DB.Create(sel).Error; err != nil {
			return err
		}
	case SelectionUnselect:
		if err := config.DB.
			Where("guest_id = ? AND party_dish_id = ?", guest.ID, pd.ID).
			Delete(&models.GuestSelection{}).Error; err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown action %q: %w", action, utils.ErrValidation)
	}

	return s.recomputeBudget(config.DB, party)
}

type PartyShoppingList struct {
	PartyName    string       `json:"party_name"`
	Status       string       `json:"status"`
	ShoppingList ShoppingList `json:"shopping_list"`
}

// ShoppingList aggregates the party's in-scope dishes from their frozen
// snapshots: every order row in order mode, only rows somebody selected
// in pool mode. No dishes in scope is a valid empty list, not an error.
func (s *PartyService) ShoppingList(code string) (*PartyShoppingList, error) {
	party, err := s.byShareCode(code)
	if err != nil {
		return nil, err
	}
	rows, err := s.dishesInScope(config.DB, party)
	if err != nil {
		return nil, err
	}
	input, err := snapshotInput(rows)
	if err != nil {
		return nil, err
	}
	return &PartyShoppingList{
		PartyName:    party.Name,
		Status:       party.Status,
		ShoppingList: GenerateShoppingList(input),
	}, nil
}

type ExportedDish struct {
	Name       string   `json:"name"`
	Cost       float64  `json:"cost"`
	Servings   int      `json:"servings"`
	AddedBy    string   `json:"added_by"`
	SelectedBy []string `json:"selected_by"`
}

type PartyExport struct {
	PartyName    string         `json:"party_name"`
	Status       string         `json:"status"`
	GuestCount   int            `json:"guest_count"`
	Guests       []string       `json:"guests"`
	Dishes       []ExportedDish `json:"dishes"`
	ShoppingList ShoppingList   `json:"shopping_list"`
}

// Export is the host-facing full view: roster, per-dish selector
// nicknames and the shopping list over the dishes in scope.
func (s *PartyService) Export(hostID, partyID uint) (*PartyExport, error) {
	party, err := s.ownedParty(hostID, partyID)
	if err != nil {
		return nil, err
	}
	var guests []models.PartyGuest
	if err := config.DB.Where("party_id = ?", party.ID).Find(&guests).Error; err != nil {
		return nil, err
	}
	rows, err := s.dishesInScope(config.DB, party)
	if err != nil {
		return nil, err
	}

	out := &PartyExport{
		PartyName:  party.Name,
		Status:     party.Status,
		GuestCount: len(guests),
	}
	for _, g := range guests {
		out.Guests = append(out.Guests, g.Nickname)
	}
	for _, pd := range rows {
		ed := ExportedDish{
			Name:     pd.DishName,
			Cost:     pd.CostSnapshot,
			Servings: pd.Servings,
			AddedBy:  pd.AddedBy,
		}
		for _, sel := range pd.Selections {
			ed.SelectedBy = append(ed.SelectedBy, sel.Guest.Nickname)
		}
		out.Dishes = append(out.Dishes, ed)
	}

	input, err := snapshotInput(rows)
	if err != nil {
		return nil, err
	}
	out.ShoppingList = GenerateShoppingList(input)
	return out, nil
}

// --- internals ---

func (s *PartyService) byShareCode(code string) (*models.Party, error) {
	var party models.Party
	err := config.DB.Where("share_code = ?", strings.ToUpper(code)).First(&party).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("party %q: %w", code, utils.ErrNotFound)
		}
		return nil, err
	}
	return &party, nil
}

func (s *PartyService) ownedParty(hostID, partyID uint) (*models.Party, error) {
	var party models.Party
	err := config.DB.Where("id = ? AND host_id = ?", partyID, hostID).First(&party).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("party not found or not owned: %w", utils.ErrNotFound)
		}
		return nil, err
	}
	return &party, nil
}

func (s *PartyService) partyDish(partyDishID uint) (*models.PartyDish, *models.Party, error) {
	var pd models.PartyDish
	if err := config.DB.First(&pd, partyDishID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("party dish %d: %w", partyDishID, utils.ErrNotFound)
		}
		return nil, nil, err
	}
	var party models.Party
	if err := config.DB.First(&party, pd.PartyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("party %d: %w", pd.PartyID, utils.ErrNotFound)
		}
		return nil, nil, err
	}
	return &pd, &party, nil
}

// resolveDishIDs merges a menu's dishes with explicit dish ids,
// deduplicated, menu dishes first.
func (s *PartyService) resolveDishIDs(hostID uint, dishIDs []uint, menuID uint) ([]uint, error) {
	var out []uint
	seen := make(map[uint]bool)
	if menuID > 0 {
		menu, err := NewMenuService().Get(hostID, menuID)
		if err != nil {
			return nil, err
		}
		for _, md := range menu.Dishes {
			if !seen[md.DishID] {
				seen[md.DishID] = true
				out = append(out, md.DishID)
			}
		}
	}
	for _, id := range dishIDs {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

// buildPartyDish freezes the dish into a party row. The frozen cost is
// recomputed from the frozen lines so budget and shopping list totals
// agree exactly.
func (s *PartyService) buildPartyDish(db *gorm.DB, partyID, dishID uint, addedBy string, servings int) (*models.PartyDish, error) {
	var dish models.Dish
	err := db.Preload("Ingredients.Ingredient").First(&dish, dishID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dish %d: %w", dishID, utils.ErrNotFound)
		}
		return nil, err
	}

	snap := make([]models.SnapshotIngredient, 0, len(dish.Ingredients))
	var cost float64
	for _, line := range dish.Ingredients {
		snap = append(snap, models.SnapshotIngredient{
			Name:      line.Ingredient.Name,
			Quantity:  line.Quantity,
			Unit:      line.Unit,
			UnitPrice: line.Ingredient.UnitPrice,
			Spec:      line.Ingredient.Spec,
		})
		cost += line.Quantity * line.Ingredient.UnitPrice
	}

	pd := &models.PartyDish{
		PartyID:        partyID,
		OriginalDishID: dish.ID,
		DishName:       dish.Name,
		CostSnapshot:   cost,
		AddedBy:        addedBy,
		Servings:       servings,
	}
	if err := pd.SetSnapshot(snap); err != nil {
		return nil, err
	}
	return pd, nil
}

func (s *PartyService) insertPoolDish(db *gorm.DB, party *models.Party, dishID uint, addedBy string) (*models.PartyDish, error) {
	var dish models.Dish
	err := db.Where("id = ? AND user_id = ?", dishID, party.HostID).First(&dish).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dish %d: %w", dishID, utils.ErrNotFound)
		}
		return nil, err
	}
	pd, err := s.buildPartyDish(db, party.ID, dish.ID, addedBy, 1)
	if err != nil {
		return nil, err
	}
	if err := db.Create(pd).Error; err != nil {
		return nil, err
	}
	return pd, nil
}

// dishesInScope returns the rows the budget and shopping list are
// computed over, selections preloaded.
func (s *PartyService) dishesInScope(db *gorm.DB, party *models.Party) ([]models.PartyDish, error) {
	var rows []models.PartyDish
	err := db.
		Preload("Selections.Guest").
		Where("party_id = ?", party.ID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if party.Mode != models.PartyModePool {
		return rows, nil
	}
	selected := rows[:0]
	for _, pd := range rows {
		if len(pd.Selections) > 0 {
			selected = append(selected, pd)
		}
	}
	return selected, nil
}

// snapshotInput expands frozen rows into aggregation input, scaling
// each line by the row's servings so the grand total matches the
// party's budget.
func snapshotInput(rows []models.PartyDish) ([]DishWithIngredients, error) {
	out := make([]DishWithIngredients, 0, len(rows))
	for _, pd := range rows {
		snap, err := pd.Snapshot()
		if err != nil {
			return nil, err
		}
		in := DishWithIngredients{ID: pd.ID, Name: pd.DishName}
		for _, line := range snap {
			in.Items = append(in.Items, LineItem{
				Name:      line.Name,
				Quantity:  line.Quantity * float64(pd.Servings),
				Unit:      line.Unit,
				UnitPrice: line.UnitPrice,
				Spec:      line.Spec,
			})
		}
		out = append(out, in)
	}
	return out, nil
}

func (s *PartyService) recomputeBudget(db *gorm.DB, party *models.Party) error {
	rows, err := s.dishesInScope(db, party)
	if err != nil {
		return err
	}
	var budget float64
	for _, pd := range rows {
		budget += pd.CostSnapshot * float64(pd.Servings)
	}
	if err := db.Model(party).UpdateColumn("total_budget", budget).Error; err != nil {
		return err
	}
	party.TotalBudget = budget
	return nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
