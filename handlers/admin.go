package handlers

import (
	"net/http"
	"strconv"

	"sewa/models"
	"sewa/services/admin"
	"sewa/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	Service admin.AdminService
}

func NewAdminHandler(svc admin.AdminService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

// ListWorkersHandler handles GET /api/admin/workers?status=&active=&limit=.
func (h *AdminHandler) ListWorkersHandler(c *gin.Context) {
	var filter models.WorkerFilter

	if raw := c.Query("status"); raw != "" {
		status := models.ParseVerificationStatus(raw)
		if status == models.StatusUnknown {
			utils.JSONError(c, http.StatusBadRequest, "Invalid status filter", raw)
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid active filter", raw)
			return
		}
		filter.IsActive = &active
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			utils.JSONError(c, http.StatusBadRequest, "Invalid limit", raw)
			return
		}
		filter.Limit = limit
	}

	workers, err := h.Service.ListWorkers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workers": workers, "count": len(workers)})
}

type reviewRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// ReviewWorkerHandler handles PUT /api/admin/workers/:id/verification.
func (h *AdminHandler) ReviewWorkerHandler(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	w, err := h.Service.ReviewWorker(c.Request.Context(), c.Param("id"), models.VerificationStatus(req.Status), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// ReviewCategoryHandler handles PUT /api/admin/workers/:id/categories/:category.
func (h *AdminHandler) ReviewCategoryHandler(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	w, err := h.Service.ReviewCategory(c.Request.Context(), c.Param("id"), c.Param("category"), models.VerificationStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// ReadDocumentHandler handles GET /api/admin/workers/:id/documents/:kind.
func (h *AdminHandler) ReadDocumentHandler(c *gin.Context) {
	data, err := h.Service.ReadWorkerDocument(c.Request.Context(), c.Param("id"), models.DocumentKind(c.Param("kind")))
	if err != nil {
		respondError(c, err)
		return
	}
	serveDocument(c, data)
}

// StatsHandler handles GET /api/admin/stats.
func (h *AdminHandler) StatsHandler(c *gin.Context) {
	stats, err := h.Service.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
