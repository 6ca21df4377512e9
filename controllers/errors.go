package controllers

import (
	"errors"
	"net/http"

	"github.com/coolerogenous/WoWoKitchen/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to HTTP statuses. Anything outside
// the taxonomy is a storage/internal failure: logged with detail, a
// generic message goes to the caller.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrAuth):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrForbidden), errors.Is(err, utils.ErrLocked):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		utils.Logger.Errorw("internal error", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint("userID")
}
