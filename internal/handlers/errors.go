package handlers

import (
	"errors"
	"net/http"

	"restaurant_ops_backend/internal/middleware"
	"restaurant_ops_backend/internal/services"
	"restaurant_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps a service error kind to the HTTP error envelope.
// action names the operation in the log line and the fallback message.
func respondServiceError(c *gin.Context, err error, action string) {
	utils.LogError(err, action+": service error")
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed.", err.Error()))
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found.", err.Error()))
	case errors.Is(err, services.ErrInvalidTransition):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInvalidTransition, "Invalid state transition.", err.Error()))
	case errors.Is(err, services.ErrConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Conflicting resource.", err.Error()))
	case errors.Is(err, services.ErrStorage):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeStorageFailure, "Storage is unavailable, try again.", "Storage failure"))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to "+action+".", "Internal error"))
	}
}

func respondBindError(c *gin.Context, err error, action string) {
	utils.LogError(err, action+": Failed to bind request")
	utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload.", err.Error()))
}

// parseIDParam reads a numeric path parameter and writes a 400 when it is malformed.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", err.Error()))
		return 0, false
	}
	return id, true
}

// parseOptionalIDQuery reads an optional numeric query parameter.
func parseOptionalIDQuery(c *gin.Context, name string) (*int64, bool) {
	id, err := utils.OptionalInt64(c.Query(name))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", err.Error()))
		return nil, false
	}
	return id, true
}

// currentUserID returns the authenticated user's id when AuthMiddleware set one.
func currentUserID(c *gin.Context) *int64 {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return nil
	}
	id, ok := raw.(int64)
	if !ok {
		return nil
	}
	return &id
}

// parsePaging reads page and page_size with the given default size.
func parsePaging(c *gin.Context, defaultSize int) (page, pageSize int, ok bool) {
	page, pageSize = 1, defaultSize
	if v := c.Query("page"); v != "" {
		n, err := utils.StrToInt64(v)
		if err != nil || n < 1 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page format.", "page must be a positive integer"))
			return 0, 0, false
		}
		page = int(n)
	}
	if v := c.Query("page_size"); v != "" {
		n, err := utils.StrToInt64(v)
		if err != nil || n < 1 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page_size format.", "page_size must be a positive integer"))
			return 0, 0, false
		}
		pageSize = int(n)
	}
	return page, pageSize, true
}
