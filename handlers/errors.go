package handlers

import (
	"errors"
	"net/http"

	"sewa/services/admin"
	"sewa/services/worker"
	"sewa/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses. Anything unrecognised is a 500.
func respondError(c *gin.Context, err error) {
	var denied *worker.PermissionDeniedError
	if errors.As(err, &denied) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":  denied.Message,
			"action": denied.Action,
		})
		return
	}

	switch {
	case errors.Is(err, worker.ErrWorkerNotFound):
		utils.JSONError(c, http.StatusNotFound, "Worker not found", "")
	case errors.Is(err, worker.ErrDocumentNotFound):
		utils.JSONError(c, http.StatusNotFound, "Document not uploaded", "")
	case errors.Is(err, worker.ErrInvalidDocumentKind),
		errors.Is(err, worker.ErrInvalidCategory),
		errors.Is(err, worker.ErrPINFormat),
		errors.Is(err, admin.ErrInvalidStatus),
		errors.Is(err, admin.ErrCategoryNotDeclared):
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, worker.ErrEmailTaken),
		errors.Is(err, worker.ErrAppLockNotSet),
		errors.Is(err, admin.ErrDocumentsIncomplete):
		utils.JSONError(c, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, worker.ErrInvalidPIN):
		utils.JSONError(c, http.StatusUnauthorized, "Incorrect PIN", "")
	case errors.Is(err, worker.ErrAppLocked):
		utils.JSONError(c, http.StatusLocked, "App lock is temporarily locked", "")
	default:
		getLogger(c).Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
	}
}
