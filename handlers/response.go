package handlers

import (
	"errors"
	"net/http"

	"woolcrafts-backend/logging"
	"woolcrafts-backend/services"
	"woolcrafts-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgServerError = "Server error. Please try again later."

var statusByKind = map[services.ErrorKind]int{
	services.InvalidInput:      http.StatusBadRequest,
	services.Unauthorized:      http.StatusUnauthorized,
	services.Forbidden:         http.StatusForbidden,
	services.NotFound:          http.StatusNotFound,
	services.Conflict:          http.StatusConflict,
	services.InsufficientStock: http.StatusBadRequest,
	services.AlreadyCancelled:  http.StatusBadRequest,
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondError writes err as the JSON error body. Unexpected errors are logged
// and reported with a generic message.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		if status, ok := statusByKind[svcErr.Kind]; ok {
			fail(c, status, svcErr.Message)
			return
		}
	}
	logging.FromContext(c.Request.Context()).Error("request failed",
		"method", c.Request.Method, "path", c.FullPath(), "error", err)
	fail(c, http.StatusInternalServerError, msgServerError)
}

// bindJSON decodes the body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, http.StatusBadRequest, utils.SanitizeValidationError(err))
		return false
	}
	return true
}

// paramID parses a uuid path parameter. A malformed id cannot name an existing
// record, so it answers 404 with notFound.
func paramID(c *gin.Context, name, notFound string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		fail(c, http.StatusNotFound, notFound)
		return uuid.Nil, false
	}
	return id, true
}
