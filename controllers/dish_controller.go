package controllers

import (
	"net/http"

	"github.com/coolerogenous/WoWoKitchen/services"

	"github.com/gin-gonic/gin"
)

func CreateDish(c *gin.Context) {
	var req services.DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dish, err := services.NewDishService().Create(currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dish)
}

func ListDishes(c *gin.Context) {
	dishes, err := services.NewDishService().List(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dishes)
}

func GetDish(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	dish, err := services.NewDishService().Get(currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

func UpdateDish(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	var req services.DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dish, err := services.NewDishService().Update(currentUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

func DeleteDish(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		return
	}
	if err := services.NewDishService().Delete(currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "dish deleted"})
}
