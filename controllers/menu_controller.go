package controllers

import (
	"net/http"

	"github.com/coolerogenous/WoWoKitchen/services"

	"github.com/gin-gonic/gin"
)

func CreateMenu(c *gin.Context) {
	var req services.MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	menu, err := services.NewMenuService().Create(currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, menu)
}

func ListMenus(c *gin.Context) {
	menus, err := services.NewMenuService().List(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menus)
}

func GetMenu(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	menu, err := services.NewMenuService().Get(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func UpdateMenu(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	var req services.MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	menu, err := services.NewMenuService().Update(currentUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func DeleteMenu(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	if err := services.NewMenuService().Delete(currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "menu deleted"})
}

// GET /menus/:id/shopping-list aggregates the menu's dishes live, at
// today's ingredient prices.
func MenuShoppingList(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	list, err := services.NewMenuService().ShoppingList(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shopping_list": list})
}
