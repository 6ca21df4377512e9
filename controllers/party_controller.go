package controllers

import (
	"net/http"

	"github.com/coolerogenous/WoWoKitchen/services"

	"github.com/gin-gonic/gin"
)

// POST /parties
func CreateParty(c *gin.Context) {
	var req services.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	party, err := services.NewPartyService().Create(currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"party": party, "share_code": party.ShareCode})
}

// GET /parties/mine
func MyParties(c *gin.Context) {
	parties, err := services.NewPartyService().MyParties(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parties": parties})
}

// PUT /parties/:id
func RenameParty(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	party, err := services.NewPartyService().Rename(currentUserID(c), id, body.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "party updated", "party": party})
}

// DELETE /parties/:id
func DeleteParty(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	if err := services.NewPartyService().Delete(currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "party deleted"})
}

// PUT /parties/:id/toggle-lock
func TogglePartyLock(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	status, err := services.NewPartyService().ToggleLock(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GET /parties/join/:code is the public party view by share code.
func GetPartyByShareCode(c *gin.Context) {
	detail, err := services.NewPartyService().GetByShareCode(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// POST /parties/join/:code/guest
func JoinParty(c *gin.Context) {
	var body struct {
		Nickname string `json:"nickname"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	guest, err := services.NewPartyService().JoinAsGuest(c.Param("code"), body.Nickname)
	if err != nil {
		respondError(c, err)
		return
	}
	// The join response is the only place the token is ever disclosed.
	c.JSON(http.StatusCreated, gin.H{"guest_token": guest.GuestToken, "guest": guest})
}

// POST /parties/join/:code/add-dish orders a dish in an order-mode party.
func AddPartyDish(c *gin.Context) {
	var body struct {
		DishID   uint   `json:"dish_id" binding:"required"`
		AddedBy  string `json:"added_by"`
		Servings int    `json:"servings"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	budget, err := services.NewPartyService().AddDish(c.Param("code"), body.DishID, body.AddedBy, body.Servings)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "dish added", "total_budget": budget})
}

// DELETE /parties/dish/:dishId
func RemovePartyDish(c *gin.Context) {
	id, err := pathID(c, "dishId")
	if err != nil {
		return
	}
	budget, err := services.NewPartyService().RemoveDish(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "dish removed", "total_budget": budget})
}

// PUT /parties/dish/:dishId/servings
func UpdatePartyDishServings(c *gin.Context) {
	id, err := pathID(c, "dishId")
	if err != nil {
		return
	}
	var body struct {
		Servings int `json:"servings"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	budget, err := services.NewPartyService().ChangeServings(id, body.Servings)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "servings updated", "total_budget": budget})
}

// POST /parties/:id/pool lets the host add a dish (or a whole menu) to the pool.
func AddToPool(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	var body struct {
		DishID uint `json:"dish_id"`
		MenuID uint `json:"menu_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, err := services.NewPartyService().AddToPool(currentUserID(c), id, body.DishID, body.MenuID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"pool_dishes": items})
}

// DELETE /parties/:id/pool
func RemoveFromPool(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	var body struct {
		PoolDishID uint `json:"pool_dish_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := services.NewPartyService().RemoveFromPool(currentUserID(c), id, body.PoolDishID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "dish removed from pool"})
}

// POST /parties/join/:code/select toggles a pool dish for the guest named by the token.
func SelectPartyDish(c *gin.Context) {
	var body struct {
		GuestToken string `json:"guest_token" binding:"required"`
		PoolDishID uint   `json:"pool_dish_id" binding:"required"`
		Action     string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := services.NewPartyService().ToggleSelection(c.Param("code"), body.GuestToken, body.PoolDishID, body.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "selection updated"})
}

// GET /parties/join/:code/shopping-list
func PartyShoppingList(c *gin.Context) {
	out, err := services.NewPartyService().ShoppingList(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /parties/:id/export is the host-facing full export.
func ExportParty(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	out, err := services.NewPartyService().Export(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
