package controllers

import (
	"net/http"
	"strconv"

	"github.com/coolerogenous/WoWoKitchen/services"

	"github.com/gin-gonic/gin"
)

func CreateIngredient(c *gin.Context) {
	var req services.IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ing, err := services.NewIngredientService().Create(currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

func ListIngredients(c *gin.Context) {
	ings, err := services.NewIngredientService().List(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ings)
}

func UpdateIngredient(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	var req services.IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ing, err := services.NewIngredientService().Update(currentUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func DeleteIngredient(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	if err := services.NewIngredientService().Delete(currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ingredient deleted"})
}

// pathID parses a numeric path param, answering 400 itself on bad input.
func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, err
	}
	return uint(id), nil
}
