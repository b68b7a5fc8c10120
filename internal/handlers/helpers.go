package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trl-backend/internal/middleware"
	"trl-backend/internal/models"
)

// currentUserID pulls the authenticated user id set by the auth middleware.
// It writes the error response and returns false when the id is missing or
// malformed.
func currentUserID(c *gin.Context) (int, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return 0, false
	}

	userID, err := strconv.Atoi(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return 0, false
	}

	return userID, true
}

// pathID parses an integer path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}
