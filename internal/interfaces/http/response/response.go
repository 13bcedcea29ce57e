package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "claimdrop.backend/internal/domain/errors"
)

// Success sends a success response.
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. Claim-path sentinels map to their reason
// code and status; anything unrecognized becomes a 500.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	switch {
	case errors.As(err, &appErr):
	case errors.Is(err, domainerrors.ErrNotFound):
		appErr = domainerrors.NewAppError(http.StatusNotFound, "NOT_FOUND", "resource not found", err)
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		appErr = domainerrors.NewAppError(http.StatusConflict, "ALREADY_EXISTS", "resource already exists", err)
	case errors.Is(err, domainerrors.ErrInvalidInput):
		appErr = domainerrors.NewAppError(http.StatusBadRequest, "INVALID_INPUT", "invalid input", err)
	case errors.Is(err, domainerrors.ErrInvalidCredentials):
		appErr = domainerrors.NewAppError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", err)
	case errors.Is(err, domainerrors.ErrUnauthorized):
		appErr = domainerrors.Unauthorized("unauthorized")
	case errors.Is(err, domainerrors.ErrForbidden):
		appErr = domainerrors.Forbidden("forbidden")
	default:
		appErr = domainerrors.FromClaimError(err)
	}

	c.JSON(appErr.Status, gin.H{
		"reason":  appErr.Reason,
		"message": appErr.Message,
	})
}

// ErrorWithReason sends an error response with an explicit status and reason.
func ErrorWithReason(c *gin.Context, status int, reason, message string) {
	c.JSON(status, gin.H{
		"reason":  reason,
		"message": message,
	})
}
