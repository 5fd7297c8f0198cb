package handlers

import (
	"net/http"
	"os"

	"sewa/middleware"
	"sewa/models"
	"sewa/services/eligibility"
	"sewa/services/storage"
	"sewa/services/worker"
	"sewa/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)


type WorkerHandler struct {
	Service worker.WorkerService
}

func NewWorkerHandler(svc worker.WorkerService) *WorkerHandler {
	return &WorkerHandler{Service: svc}
}

func workerID(c *gin.Context) string {
	return c.GetString(middleware.WorkerIDKey)
}

// RegisterWorkerHandler handles POST /api/workers/register.
func (h *WorkerHandler) RegisterWorkerHandler(c *gin.Context) {
	var req models.WorkerRegistrationData
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	resp, err := h.Service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetMeHandler handles GET /api/workers/me.
func (h *WorkerHandler) GetMeHandler(c *gin.Context) {
	w, err := h.Service.GetWorker(c.Request.Context(), workerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// GetEligibilityHandler handles GET /api/workers/me/eligibility.
func (h *WorkerHandler) GetEligibilityHandler(c *gin.Context) {
	report, err := h.Service.GetEligibility(c.Request.Context(), workerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// CheckPermissionHandler handles POST /api/workers/me/permissions/:action.
// Unrecognised actions are evaluated too and always come back as 403.
func (h *WorkerHandler) CheckPermissionHandler(c *gin.Context) {
	raw := c.Param("action")
	action, ok := eligibility.ParseAction(raw)
	if !ok {
		action = eligibility.Action(raw)
	}
	if err := h.Service.CheckPermission(c.Request.Context(), workerID(c), action); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": action, "allowed": true})
}

type setOnlineRequest struct {
	Online *bool `json:"online" binding:"required"`
}

// SetOnlineHandler handles PATCH /api/workers/me/online.
func (h *WorkerHandler) SetOnlineHandler(c *gin.Context) {
	var req setOnlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	w, err := h.Service.SetOnline(c.Request.Context(), workerID(c), *req.Online)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isActive": w.IsActive})
}

// AuthorizeBookingHandler handles POST /api/workers/me/bookings/authorize.
func (h *WorkerHandler) AuthorizeBookingHandler(c *gin.Context) {
	if err := h.Service.AuthorizeBooking(c.Request.Context(), workerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowed": true})
}

// UploadDocumentHandler handles POST /api/workers/me/documents/:kind with a
// multipart "file" field.
func (h *WorkerHandler) UploadDocumentHandler(c *gin.Context) {
	kind := models.DocumentKind(c.Param("kind"))
	if !models.IsKnownDocumentKind(kind) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid document kind", string(kind))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "File not provided", err.Error())
		return
	}
	if fileHeader.Size > storage.MaxDocumentSize {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "File too large", "")
		return
	}

	tmp, err := os.CreateTemp("", "sewa-upload-*")
	if err != nil {
		respondError(c, err)
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		getLogger(c).Error("failed to save upload", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to save file", "")
		return
	}

	w, err := h.Service.UploadDocument(c.Request.Context(), workerID(c), kind, tmpPath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"documents":   w.Documents,
		"eligibility": eligibility.Evaluate(w),
	})
}

// ReadDocumentHandler handles GET /api/workers/me/documents/:kind.
func (h *WorkerHandler) ReadDocumentHandler(c *gin.Context) {
	data, err := h.Service.ReadDocument(c.Request.Context(), workerID(c), models.DocumentKind(c.Param("kind")))
	if err != nil {
		respondError(c, err)
		return
	}
	serveDocument(c, data)
}

// serveDocument writes decrypted document bytes. They must never be cached by
// intermediaries.
func serveDocument(c *gin.Context, data []byte) {
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", "inline")
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

type categoriesRequest struct {
	ServiceCategories []string `json:"serviceCategories" binding:"required"`
}

// UpdateCategoriesHandler handles PUT /api/workers/me/categories.
func (h *WorkerHandler) UpdateCategoriesHandler(c *gin.Context) {
	var req categoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	w, err := h.Service.UpdateServiceCategories(c.Request.Context(), workerID(c), req.ServiceCategories)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"serviceCategories":  w.ServiceCategories,
		"verifiedCategories": eligibility.Evaluate(w).VerifiedCategories,
	})
}

type fcmTokenRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}

// UpdateFCMTokenHandler handles PUT /api/workers/me/fcm-token.
func (h *WorkerHandler) UpdateFCMTokenHandler(c *gin.Context) {
	var req fcmTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if err := h.Service.UpdateFCMToken(c.Request.Context(), workerID(c), req.FCMToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FCM token updated"})
}

type pinRequest struct {
	PIN string `json:"pin" binding:"required"`
}

func bindPIN(c *gin.Context) (string, bool) {
	var req pinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return "", false
	}
	return req.PIN, true
}

// SetAppLockHandler handles PUT /api/workers/me/app-lock.
func (h *WorkerHandler) SetAppLockHandler(c *gin.Context) {
	pin, ok := bindPIN(c)
	if !ok {
		return
	}
	if err := h.Service.SetAppLockPIN(c.Request.Context(), workerID(c), pin); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true})
}

// VerifyAppLockHandler handles POST /api/workers/me/app-lock/verify.
func (h *WorkerHandler) VerifyAppLockHandler(c *gin.Context) {
	pin, ok := bindPIN(c)
	if !ok {
		return
	}
	if err := h.Service.VerifyAppLockPIN(c.Request.Context(), workerID(c), pin); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unlocked": true})
}

// ClearAppLockHandler handles DELETE /api/workers/me/app-lock.
func (h *WorkerHandler) ClearAppLockHandler(c *gin.Context) {
	pin, ok := bindPIN(c)
	if !ok {
		return
	}
	if err := h.Service.ClearAppLock(c.Request.Context(), workerID(c), pin); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": false})
}
