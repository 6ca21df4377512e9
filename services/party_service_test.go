package services

import (
	"errors"
	"math"
	"testing"

	"github.com/coolerogenous/WoWoKitchen/config"
	"github.com/coolerogenous/WoWoKitchen/models"
	"github.com/coolerogenous/WoWoKitchen/utils"
)

// porkDish creates "红烧肉": 500 g of pork at ¥0.05/g, cost 25.
func porkDish(t *testing.T, userID uint) *models.Dish {
	t.Helper()
	ing := createTestIngredient(t, userID, "pork", 0.05, "g")
	return createTestDish(t, userID, "红烧肉", DishItemRequest{IngredientID: ing.ID, Quantity: 500, Unit: "g"})
}

func createOrderParty(t *testing.T, hostID uint, req CreatePartyRequest) *models.Party {
	t.Helper()
	party, err := NewPartyService().Create(hostID, req)
	if err != nil {
		t.Fatalf("create party: %v", err)
	}
	return party
}

func TestCreatePartyRequiresName(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")

	_, err := NewPartyService().Create(host.ID, CreatePartyRequest{Name: "  "})
	if !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreatePartyGeneratesShareCode(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")

	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "weekend dinner"})
	if len(party.ShareCode) != 6 {
		t.Fatalf("expected 6-char share code, got %q", party.ShareCode)
	}
	if party.Status != models.PartyStatusActive {
		t.Fatalf("new party should be active, got %q", party.Status)
	}
	if party.Mode != models.PartyModeOrder {
		t.Fatalf("default mode should be order, got %q", party.Mode)
	}
}

// TestAddDishAccumulatesServings: ordering the same dish again merges
// into one row with summed servings, and the budget follows.
func TestAddDishAccumulatesServings(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	dish := porkDish(t, host.ID)
	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "dinner"})

	svc := NewPartyService()
	if _, err := svc.AddDish(party.ShareCode, dish.ID, "小明", 1); err != nil {
		t.Fatalf("first add: %v", err)
	}
	budget, err := svc.AddDish(party.ShareCode, dish.ID, "小红", 2)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	var rows []models.PartyDish
	if err := config.DB.Where("party_id = ?", party.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one merged row, got %d", len(rows))
	}
	if rows[0].Servings != 3 {
		t.Fatalf("expected servings 3, got %d", rows[0].Servings)
	}
	if rows[0].AddedBy != "小明" {
		t.Fatalf("first contributor should stick, got %q", rows[0].AddedBy)
	}
	if math.Abs(budget-75) > 1e-9 { // 25 × 3
		t.Fatalf("expected budget 75, got %v", budget)
	}
}

func TestAddDishRestriction(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	allowed := porkDish(t, host.ID)
	other := createTestDish(t, host.ID, "外菜")
	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "dinner", DishIDs: []uint{allowed.ID}})

	svc := NewPartyService()
	if _, err := svc.AddDish(party.ShareCode, other.ID, "", 1); !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("expected validation error for restricted dish, got %v", err)
	}
	if _, err := svc.AddDish(party.ShareCode, allowed.ID, "", 1); err != nil {
		t.Fatalf("allowed dish rejected: %v", err)
	}
}

// TestLockRejectsMutations: every mutating operation fails on a locked
// party and leaves its data untouched.
func TestLockRejectsMutations(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	dish := porkDish(t, host.ID)
	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "dinner"})

	svc := NewPartyService()
	if _, err := svc.AddDish(party.ShareCode, dish.ID, "", 2); err != nil {
		t.Fatalf("add before lock: %v", err)
	}
	var pd models.PartyDish
	if err := config.DB.Where("party_id = ?", party.ID).First(&pd).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}

	status, err := svc.ToggleLock(host.ID, party.ID)
	if err != nil || status != models.PartyStatusLocked {
		t.Fatalf("lock failed: status=%q err=%v", status, err)
	}

	if _, err := svc.AddDish(party.ShareCode, dish.ID, "", 1); !errors.Is(err, utils.ErrLocked) {
		t.Fatalf("AddDish on locked party: %v", err)
	}
	if _, err := svc.RemoveDish(pd.ID); !errors.Is(err, utils.ErrLocked) {
		t.Fatalf("RemoveDish on locked party: %v", err)
	}
	if _, err := svc.ChangeServings(pd.ID, 5); !errors.Is(err, utils.ErrLocked) {
		t.Fatalf("ChangeServings on locked party: %v", err)
	}
	if _, err := svc.JoinAsGuest(party.ShareCode, "迟到的人"); !errors.Is(err, utils.ErrLocked) {
		t.Fatalf("JoinAsGuest on locked party: %v", err)
	}

	var after models.PartyDish
	if err := config.DB.First(&after, pd.ID).Error; err != nil {
		t.Fatalf("row vanished: %v", err)
	}
	if after.Servings != 2 {
		t.Fatalf("locked party data changed: servings %d", after.Servings)
	}

	// Unlock restores mutability.
	if status, err = svc.ToggleLock(host.ID, party.ID); err != nil || status != models.PartyStatusActive {
		t.Fatalf("unlock failed: status=%q err=%v", status, err)
	}
	if _, err := svc.AddDish(party.ShareCode, dish.ID, "", 1); err != nil {
		t.Fatalf("add after unlock: %v", err)
	}
}

func TestChangeServings(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	dish := porkDish(t, host.ID)
	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "dinner"})

	svc := NewPartyService()
	if _, err := svc.AddDish(party.ShareCode, dish.ID, "", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	var pd models.PartyDish
	if err := config.DB.Where("party_id = ?", party.ID).First(&pd).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}

	// Exact set, not additive.
	budget, err := svc.ChangeServings(pd.ID, 4)
	if err != nil {
		t.Fatalf("change servings: %v", err)
	}
	if math.Abs(budget-100) > 1e-9 {
		t.Fatalf("expected budget 100, got %v", budget)
	}

	// Below one removes the row.
	budget, err = svc.ChangeServings(pd.ID, 0)
	if err != nil {
		t.Fatalf("change to zero: %v", err)
	}
	if budget != 0 {
		t.Fatalf("expected empty budget, got %v", budget)
	}
	var count int64
	config.DB.Model(&models.PartyDish{}).Where("party_id = ?", party.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected row removed, found %d", count)
	}
}

func TestJoinAsGuest(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "dinner"})

	svc := NewPartyService()
	if _, err := svc.JoinAsGuest("ZZZZZZ", "张三"); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("unknown code: %v", err)
	}
	if _, err := svc.JoinAsGuest(party.ShareCode, "   "); !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("blank nickname: %v", err)
	}

	first, err := svc.JoinAsGuest(party.ShareCode, "张三")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	// Re-joining under the same nickname is a second, independent guest.
	second, err := svc.JoinAsGuest(party.ShareCode, "张三")
	if err != nil {
		t.Fatalf("re-join: %v", err)
	}
	if first.ID == second.ID || first.GuestToken == second.GuestToken {
		t.Fatalf("expected independent guests, got %d/%d", first.ID, second.ID)
	}
}

// TestSelectionToggle covers the pool variant: idempotent select,
// unselect removes, unselect of a non-selected dish is a no-op, and the
// budget only counts dishes somebody selected.
func TestSelectionToggle(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	dish := porkDish(t, host.ID)
	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "potluck", Mode: models.PartyModePool})

	svc := NewPartyService()
	pool, err := svc.AddToPool(host.ID, party.ID, dish.ID, 0)
	if err != nil {
		t.Fatalf("add to pool: %v", err)
	}
	poolDishID := pool[0].ID

	var loaded models.Party
	config.DB.First(&loaded, party.ID)
	if loaded.TotalBudget != 0 {
		t.Fatalf("unselected pool dish should not count, budget %v", loaded.TotalBudget)
	}

	guest, err := svc.JoinAsGuest(party.ShareCode, "李四")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := svc.ToggleSelection(party.ShareCode, "bogus-token", poolDishID, SelectionSelect); !errors.Is(err, utils.ErrAuth) {
		t.Fatalf("bogus token: %v", err)
	}

	for i := 0; i < 2; i++ { // selecting twice keeps one row
		if err := svc.ToggleSelection(party.ShareCode, guest.GuestToken, poolDishID, SelectionSelect); err != nil {
			t.Fatalf("select #%d: %v", i+1, err)
		}
	}
	var count int64
	config.DB.Model(&models.GuestSelection{}).Where("guest_id = ?", guest.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one selection row, got %d", count)
	}

	config.DB.First(&loaded, party.ID)
	if math.Abs(loaded.TotalBudget-25) > 1e-9 {
		t.Fatalf("expected budget 25 after selection, got %v", loaded.TotalBudget)
	}

	if err := svc.ToggleSelection(party.ShareCode, guest.GuestToken, poolDishID, SelectionUnselect); err != nil {
		t.Fatalf("unselect: %v", err)
	}
	// Unselecting again is a quiet no-op.
	if err := svc.ToggleSelection(party.ShareCode, guest.GuestToken, poolDishID, SelectionUnselect); err != nil {
		t.Fatalf("second unselect: %v", err)
	}
	config.DB.Model(&models.GuestSelection{}).Where("guest_id = ?", guest.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected no selection rows, got %d", count)
	}
	config.DB.First(&loaded, party.ID)
	if loaded.TotalBudget != 0 {
		t.Fatalf("expected budget back to 0, got %v", loaded.TotalBudget)
	}
}

// TestReselectAfterUnselect: a guest who changes their mind can select
// the same pool dish again; the withdrawn row must not linger in the
// composite unique index.
func TestReselectAfterUnselect(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	dish := porkDish(t, host.ID)
	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "potluck", Mode: models.PartyModePool})

	svc := NewPartyService()
	pool, err := svc.AddToPool(host.ID, party.ID, dish.ID, 0)
	if err != nil {
		t.Fatalf("add to pool: %v", err)
	}
	guest, err := svc.JoinAsGuest(party.ShareCode, "李四")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := svc.ToggleSelection(party.ShareCode, guest.GuestToken, pool[0].ID, SelectionSelect); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := svc.ToggleSelection(party.ShareCode, guest.GuestToken, pool[0].ID, SelectionUnselect); err != nil {
		t.Fatalf("unselect: %v", err)
	}
	if err := svc.ToggleSelection(party.ShareCode, guest.GuestToken, pool[0].ID, SelectionSelect); err != nil {
		t.Fatalf("re-select after unselect: %v", err)
	}

	var count int64
	config.DB.Model(&models.GuestSelection{}).Where("guest_id = ?", guest.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one selection row after re-select, got %d", count)
	}
	var loaded models.Party
	config.DB.First(&loaded, party.ID)
	if math.Abs(loaded.TotalBudget-25) > 1e-9 {
		t.Fatalf("expected budget 25 after re-select, got %v", loaded.TotalBudget)
	}
}

// TestCreatePoolPartyAtomic: seeding the pool with an unknown dish id
// fails the whole creation; no party row and no pool rows survive.
func TestCreatePoolPartyAtomic(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	dish := porkDish(t, host.ID)

	_, err := NewPartyService().Create(host.ID, CreatePartyRequest{
		Name:    "potluck",
		Mode:    models.PartyModePool,
		DishIDs: []uint{dish.ID, 9999},
	})
	if !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected not-found for unknown dish, got %v", err)
	}

	var parties, poolRows int64
	config.DB.Model(&models.Party{}).Where("host_id = ?", host.ID).Count(&parties)
	config.DB.Model(&models.PartyDish{}).Count(&poolRows)
	if parties != 0 || poolRows != 0 {
		t.Fatalf("failed create left state behind: parties=%d poolRows=%d", parties, poolRows)
	}
}

// TestAddMenuToPoolAtomic: a menu expansion fails mid-way, so none of
// the menu's dishes may land in the pool.
func TestAddMenuToPoolAtomic(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	dish := porkDish(t, host.ID)
	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "potluck", Mode: models.PartyModePool})

	svc := NewPartyService()
	if _, err := svc.AddToPool(host.ID, party.ID, dish.ID, 0); err != nil {
		t.Fatalf("seed pool: %v", err)
	}

	menu, err := NewMenuService().Create(host.ID, MenuRequest{Name: "家宴", DishIDs: []uint{dish.ID}})
	if err != nil {
		t.Fatalf("create menu: %v", err)
	}
	// A dangling menu entry whose dish no longer exists.
	if err := config.DB.Create(&models.MenuDish{MenuID: menu.ID, DishID: 9999, Position: 1}).Error; err != nil {
		t.Fatalf("insert dangling menu entry: %v", err)
	}

	if _, err := svc.AddToPool(host.ID, party.ID, 0, menu.ID); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected not-found for dangling dish, got %v", err)
	}

	var poolRows int64
	config.DB.Model(&models.PartyDish{}).Where("party_id = ?", party.ID).Count(&poolRows)
	if poolRows != 1 {
		t.Fatalf("failed menu add changed the pool: %d rows", poolRows)
	}
	var loaded models.Party
	config.DB.First(&loaded, party.ID)
	if loaded.TotalBudget != 0 {
		t.Fatalf("failed menu add moved the budget: %v", loaded.TotalBudget)
	}
}

func TestLockRejectsSelections(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	dish := porkDish(t, host.ID)
	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "potluck", Mode: models.PartyModePool})

	svc := NewPartyService()
	pool, err := svc.AddToPool(host.ID, party.ID, dish.ID, 0)
	if err != nil {
		t.Fatalf("add to pool: %v", err)
	}
	guest, err := svc.JoinAsGuest(party.ShareCode, "李四")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := svc.ToggleLock(host.ID, party.ID); err != nil {
		t.Fatalf("lock: %v", err)
	}

	err = svc.ToggleSelection(party.ShareCode, guest.GuestToken, pool[0].ID, SelectionSelect)
	if !errors.Is(err, utils.ErrLocked) {
		t.Fatalf("select on locked party: %v", err)
	}
	err = svc.ToggleSelection(party.ShareCode, guest.GuestToken, pool[0].ID, SelectionUnselect)
	if !errors.Is(err, utils.ErrLocked) {
		t.Fatalf("unselect on locked party: %v", err)
	}
	if _, err := svc.AddToPool(host.ID, party.ID, dish.ID, 0); !errors.Is(err, utils.ErrLocked) {
		t.Fatalf("pool add on locked party: %v", err)
	}

	var count int64
	config.DB.Model(&models.GuestSelection{}).Count(&count)
	if count != 0 {
		t.Fatalf("locked party gained selections: %d", count)
	}
}

// TestSnapshotImmunity: raising the ingredient price after a dish was
// planned must not move the party's budget or shopping list.
func TestSnapshotImmunity(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	ing := createTestIngredient(t, host.ID, "pork", 0.05, "g")
	dish := createTestDish(t, host.ID, "红烧肉", DishItemRequest{IngredientID: ing.ID, Quantity: 500, Unit: "g"})
	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "dinner"})

	svc := NewPartyService()
	if _, err := svc.AddDish(party.ShareCode, dish.ID, "", 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Price doubles afterwards.
	if _, err := NewIngredientService().Update(host.ID, ing.ID, IngredientRequest{Name: "pork", UnitPrice: 0.10, Unit: "g"}); err != nil {
		t.Fatalf("update price: %v", err)
	}

	out, err := svc.ShoppingList(party.ShareCode)
	if err != nil {
		t.Fatalf("shopping list: %v", err)
	}
	if math.Abs(out.ShoppingList.GrandTotal-25) > 1e-9 {
		t.Fatalf("snapshot drifted with live price: grand total %v", out.ShoppingList.GrandTotal)
	}
	if out.ShoppingList.Ingredients[0].UnitPrice != 0.05 {
		t.Fatalf("expected frozen unit price 0.05, got %v", out.ShoppingList.Ingredients[0].UnitPrice)
	}

	// The live dish estimate, by contrast, did move.
	refreshed, err := NewDishService().Get(host.ID, dish.ID)
	if err != nil {
		t.Fatalf("get dish: %v", err)
	}
	if math.Abs(refreshed.EstimatedCost-50) > 1e-9 {
		t.Fatalf("expected live estimate 50, got %v", refreshed.EstimatedCost)
	}
}

// TestPartyShoppingListScenario: 500 g pork at ¥0.05/g, two servings →
// one row of 1000 g costing ¥50.
func TestPartyShoppingListScenario(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	dish := porkDish(t, host.ID)
	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "dinner"})

	svc := NewPartyService()
	if _, err := svc.AddDish(party.ShareCode, dish.ID, "", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := svc.ShoppingList(party.ShareCode)
	if err != nil {
		t.Fatalf("shopping list: %v", err)
	}
	if out.PartyName != "dinner" || out.Status != models.PartyStatusActive {
		t.Fatalf("unexpected header: %+v", out)
	}
	if len(out.ShoppingList.Ingredients) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out.ShoppingList.Ingredients))
	}
	row := out.ShoppingList.Ingredients[0]
	if row.Name != "pork" || row.Unit != "g" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.TotalQuantity != 1000 {
		t.Fatalf("expected 1000 g, got %v", row.TotalQuantity)
	}
	if math.Abs(row.TotalCost-50) > 1e-9 {
		t.Fatalf("expected cost 50, got %v", row.TotalCost)
	}
	if math.Abs(out.ShoppingList.GrandTotal-50) > 1e-9 {
		t.Fatalf("expected grand total 50, got %v", out.ShoppingList.GrandTotal)
	}

	// Grand total always matches the cached party budget.
	var loaded models.Party
	config.DB.First(&loaded, party.ID)
	if math.Abs(loaded.TotalBudget-out.ShoppingList.GrandTotal) > 1e-9 {
		t.Fatalf("budget %v != grand total %v", loaded.TotalBudget, out.ShoppingList.GrandTotal)
	}
}

func TestDeletePartyCascades(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	dish := porkDish(t, host.ID)
	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "potluck", Mode: models.PartyModePool})

	svc := NewPartyService()
	pool, err := svc.AddToPool(host.ID, party.ID, dish.ID, 0)
	if err != nil {
		t.Fatalf("add to pool: %v", err)
	}
	guest, err := svc.JoinAsGuest(party.ShareCode, "王五")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := svc.ToggleSelection(party.ShareCode, guest.GuestToken, pool[0].ID, SelectionSelect); err != nil {
		t.Fatalf("select: %v", err)
	}

	if err := svc.Delete(host.ID, party.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var dishes, guests, selections int64
	config.DB.Model(&models.PartyDish{}).Where("party_id = ?", party.ID).Count(&dishes)
	config.DB.Model(&models.PartyGuest{}).Where("party_id = ?", party.ID).Count(&guests)
	config.DB.Model(&models.GuestSelection{}).Where("guest_id = ?", guest.ID).Count(&selections)
	if dishes != 0 || guests != 0 || selections != 0 {
		t.Fatalf("cascade incomplete: dishes=%d guests=%d selections=%d", dishes, guests, selections)
	}
}

func TestExportIncludesSelectors(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host@example.com")
	dish := porkDish(t, host.ID)
	party := createOrderParty(t, host.ID, CreatePartyRequest{Name: "potluck", Mode: models.PartyModePool})

	svc := NewPartyService()
	pool, err := svc.AddToPool(host.ID, party.ID, dish.ID, 0)
	if err != nil {
		t.Fatalf("add to pool: %v", err)
	}
	guest, err := svc.JoinAsGuest(party.ShareCode, "李四")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := svc.ToggleSelection(party.ShareCode, guest.GuestToken, pool[0].ID, SelectionSelect); err != nil {
		t.Fatalf("select: %v", err)
	}

	out, err := svc.Export(host.ID, party.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out.GuestCount != 1 || len(out.Dishes) != 1 {
		t.Fatalf("unexpected export: %+v", out)
	}
	if len(out.Dishes[0].SelectedBy) != 1 || out.Dishes[0].SelectedBy[0] != "李四" {
		t.Fatalf("selector nicknames missing: %+v", out.Dishes[0])
	}
	if math.Abs(out.ShoppingList.GrandTotal-25) > 1e-9 {
		t.Fatalf("expected grand total 25, got %v", out.ShoppingList.GrandTotal)
	}

	// Only the host may export.
	stranger := createTestUser(t, "other@example.com")
	if _, err := svc.Export(stranger.ID, party.ID); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected not-found for non-host, got %v", err)
	}
}
