package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trainforge/trainforge-backend/internal/http/response"
	"github.com/trainforge/trainforge-backend/internal/services"
)

type DocumentHandler struct {
	documents services.DocumentService
}

func NewDocumentHandler(documents services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// POST /api/materials/:id/document
func (h *DocumentHandler) SubmitForMaterial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	job, err := h.documents.SubmitForMaterial(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// POST /api/assets/:id/document
func (h *DocumentHandler) SubmitAsset(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		MaterialID uint `json:"material_id"`
	}
	// Body is optional; an empty POST submits with default provider routing.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	job, err := h.documents.SubmitAsset(c.Request.Context(), id, req.MaterialID)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// GET /api/document-jobs/:id
func (h *DocumentHandler) GetJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	job, err := h.documents.GetJob(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if job == nil {
		response.RespondError(c, http.StatusNotFound, "job_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// POST /api/document-jobs/:id/refresh
func (h *DocumentHandler) RefreshJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	job, err := h.documents.RefreshJob(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// GET /api/assets/:id/document-jobs
func (h *DocumentHandler) ListJobsByAsset(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	jobsList, err := h.documents.ListJobsByAsset(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": jobsList})
}
