package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PartyStatusActive = "active"
	PartyStatusLocked = "locked"

	// PartyModeOrder: dishes are ordered directly with servings counts,
	// the same dish accumulating into a single row.
	// PartyModePool: the host curates a candidate pool and each guest
	// marks which pool dishes they want.
	PartyModeOrder = "order"
	PartyModePool  = "pool"
)

type Party struct {
	gorm.Model
	HostID uint   `gorm:"index;not null" json:"host_id"`
	Name   string `gorm:"not null" json:"name"`
	Status string `gorm:"not null;default:active" json:"status"`
	Mode   string `gorm:"not null;default:order" json:"mode"`

	// Public join code, 6 uppercase hex chars, stable for the party's lifetime.
	ShareCode string `gorm:"uniqueIndex;not null" json:"share_code"`

	// Dish ids guests may order from; empty means no restriction (order mode).
	AvailableDishIDs datatypes.JSONSlice[uint] `json:"available_dish_ids"`

	// Cached budget over the current order/selection, refreshed after every mutation.
	TotalBudget float64 `json:"total_budget"`

	Dishes []PartyDish  `json:"dishes"`
	Guests []PartyGuest `json:"guests"`
}

// SnapshotIngredient is one frozen ingredient line of a party dish.
// Snapshots have no real ingredient id, so aggregation falls back to
// the name as the grouping key.
type SnapshotIngredient struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
	Spec      string  `json:"spec"`
}

// A dish planned into a party. The dish's name, cost and ingredient
// lines are frozen at insertion time so that later edits to the source
// dish never change an already-planned party.
type PartyDish struct {
	gorm.Model
	PartyID             uint           `gorm:"index;not null" json:"party_id"`
	OriginalDishID      uint           `gorm:"index" json:"original_dish_id"`
	DishName            string         `gorm:"not null" json:"dish_name"`
	CostSnapshot        float64        `json:"cost_snapshot"`
	IngredientsSnapshot datatypes.JSON `json:"ingredients_snapshot"`
	AddedBy             string         `json:"added_by"`
	Servings            int            `gorm:"not null;default:1" json:"servings"`

	Selections []GuestSelection `gorm:"foreignKey:PartyDishID" json:"selections"`
}

func (pd *PartyDish) SetSnapshot(items []SnapshotIngredient) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	pd.IngredientsSnapshot = datatypes.JSON(raw)
	return nil
}

func (pd *PartyDish) Snapshot() ([]SnapshotIngredient, error) {
	if len(pd.IngredientsSnapshot) == 0 {
		return nil, nil
	}
	var items []SnapshotIngredient
	if err := json.Unmarshal(pd.IngredientsSnapshot, &items); err != nil {
		return nil, err
	}
	return items, nil
}

type PartyGuest struct {
	gorm.Model
	PartyID  uint   `gorm:"index;not null" json:"party_id"`
	Nickname string `gorm:"not null" json:"nickname"`

	// Bearer credential issued once at join time, never reissued.
	// Withheld from party detail payloads; only the join response carries it.
	GuestToken string `gorm:"uniqueIndex;not null" json:"-"`
}

// Membership row: this guest wants this pool dish. The composite unique
// index makes selection idempotent under concurrent requests. No
// DeletedAt here: unselect removes the row outright, freeing the index
// slot so the guest can select the dish again.
type GuestSelection struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	GuestID     uint       `gorm:"not null;uniqueIndex:idx_guest_pool_dish" json:"guest_id"`
	PartyDishID uint       `gorm:"not null;uniqueIndex:idx_guest_pool_dish" json:"party_dish_id"`
	Guest       PartyGuest `json:"guest"`
}
