// services/calculation_service.go
package services

import (
	"strconv"
	"strings"
	"time"
)

// LineItem is one ingredient requirement of a dish, flattened for
// aggregation. IngredientID is 0 when the line comes from a frozen
// snapshot, in which case Name is the grouping key.
type LineItem struct {
	IngredientID uint    `json:"ingredient_id"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	UnitPrice    float64 `json:"unit_price"`
	Spec         string  `json:"spec"`
}

type DishWithIngredients struct {
	ID    uint       `json:"id"`
	Name  string     `json:"name"`
	Items []LineItem `json:"items"`
}

// ShoppingListItem is one row of the shopping list: every occurrence of
// the same ingredient across the input dishes folded together.
type ShoppingListItem struct {
	Name          string   `json:"name"`
	Unit          string   `json:"unit"`
	Spec          string   `json:"spec"`
	UnitPrice     float64  `json:"unit_price"`
	TotalQuantity float64  `json:"total_quantity"`
	TotalCost     float64  `json:"total_cost"`
	FromDishes    []string `json:"from_dishes"`
}

type ShoppingList struct {
	Ingredients []ShoppingListItem `json:"ingredients"`
	GrandTotal  float64            `json:"grand_total"`
	DishCount   int                `json:"dish_count"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// GenerateShoppingList folds the dishes' ingredient lines into one row
// per distinct ingredient. Identity is the ingredient id when present,
// otherwise the trimmed ingredient name, so snapshot lines with no real
// id still merge with each other by name. Quantities are added raw; no
// unit conversion is attempted, mixed units under one ingredient are a
// data-quality concern of the caller. Unit, spec and unit price come
// from the first occurrence. The grand total is the carried-forward sum
// of every line's quantity×unitPrice, never recomputed from the rows.
func GenerateShoppingList(dishes []DishWithIngredients) ShoppingList {
	byKey := make(map[string]*ShoppingListItem)
	var order []string
	var grandTotal float64

	for _, dish := range dishes {
		for _, li := range dish.Items {
			key := lineKey(li)
			lineCost := li.Quantity * li.UnitPrice
			grandTotal += lineCost

			row, ok := byKey[key]
			if !ok {
				row = &ShoppingListItem{
					Name:      strings.TrimSpace(li.Name),
					Unit:      li.Unit,
					Spec:      li.Spec,
					UnitPrice: li.UnitPrice,
				}
				byKey[key] = row
				order = append(order, key)
			}
			row.TotalQuantity += li.Quantity
			row.TotalCost += lineCost
			row.FromDishes = append(row.FromDishes, dish.Name)
		}
	}

	items := make([]ShoppingListItem, 0, len(order))
	for _, key := range order {
		items = append(items, *byKey[key])
	}

	return ShoppingList{
		Ingredients: items,
		GrandTotal:  grandTotal,
		DishCount:   len(dishes),
		GeneratedAt: time.Now(),
	}
}

func lineKey(li LineItem) string {
	if li.IngredientID > 0 {
		return "id:" + strconv.FormatUint(uint64(li.IngredientID), 10)
	}
	return "name:" + strings.TrimSpace(li.Name)
}
