package handler

import (
	"errors"
	"net/http"

	"finreport/dto"
	"finreport/logger"
	"finreport/pkg/crud"
	"finreport/service"

	"github.com/gin-gonic/gin"
)

// writeError answers err with the status its kind maps to. Unclassified
// errors are logged and hidden behind a generic message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, crud.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, crud.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, crud.ErrInvalidQuery), errors.Is(err, dto.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, crud.ErrConflict):
		logger.Log.WithField("path", c.Request.URL.Path).Errorf("concurrent update: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "record was modified concurrently"})
	default:
		logger.Log.WithField("path", c.Request.URL.Path).Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
