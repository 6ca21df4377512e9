package controllers

import (
	"net/http"

	"github.com/coolerogenous/WoWoKitchen/services"

	"github.com/gin-gonic/gin"
)

// POST /share  { "type": "DISH"|"MENU", "ref_id": 3 }
func CreateShareToken(c *gin.Context) {
	var body struct {
		Type  string `json:"type" binding:"required"`
		RefID uint   `json:"ref_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := services.NewShareService().CreateToken(currentUserID(c), body.Type, body.RefID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": token.Code, "type": token.Type})
}

// GET /share/:code is public and resolves a code to a party summary or an
// importable dish/menu payload.
func ResolveShareCode(c *gin.Context) {
	out, err := services.NewShareService().Resolve(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
