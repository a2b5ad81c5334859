package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/http/response"
	"github.com/trainforge/trainforge-backend/internal/platform/ctxutil"
	"github.com/trainforge/trainforge-backend/internal/services"
)

type LearningPathHandler struct {
	paths services.LearningPathService
}

func NewLearningPathHandler(paths services.LearningPathService) *LearningPathHandler {
	return &LearningPathHandler{paths: paths}
}

// POST /api/learning-paths
func (h *LearningPathHandler) Create(c *gin.Context) {
	var p types.LearningPath
	if err := c.ShouldBindJSON(&p); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if p.TenantID == "" {
		p.TenantID = ctxutil.TenantID(c.Request.Context())
	}
	created, err := h.paths.Create(c.Request.Context(), &p)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"learning_path": created})
}

// GET /api/learning-paths
func (h *LearningPathHandler) List(c *gin.Context) {
	list, err := h.paths.ListByTenant(c.Request.Context(), "")
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"learning_paths": list})
}

// GET /api/learning-paths/:id
func (h *LearningPathHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.paths.GetByID(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if p == nil {
		response.RespondError(c, http.StatusNotFound, "learning_path_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"learning_path": p})
}

// PUT /api/learning-paths/:id
func (h *LearningPathHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var p types.LearningPath
	if err := c.ShouldBindJSON(&p); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	p.ID = id
	updated, err := h.paths.Update(c.Request.Context(), &p)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"learning_path": updated})
}

// DELETE /api/learning-paths/:id
func (h *LearningPathHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.paths.Delete(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if !deleted {
		response.RespondError(c, http.StatusNotFound, "learning_path_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// POST /api/learning-paths/:id/materials
func (h *LearningPathHandler) AssignMaterial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		MaterialID   uint `json:"material_id"`
		DisplayOrder *int `json:"display_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	edgeID, err := h.paths.AssignMaterial(c.Request.Context(), id, req.MaterialID, req.DisplayOrder)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"relationship_id": edgeID})
}

// DELETE /api/learning-paths/:id/materials/:materialId
func (h *LearningPathHandler) RemoveMaterial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	materialID, ok := parseIDParam(c, "materialId")
	if !ok {
		return
	}
	removed, err := h.paths.RemoveMaterial(c.Request.Context(), id, materialID)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if !removed {
		response.RespondError(c, http.StatusNotFound, "path_material_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"removed": true})
}

// GET /api/learning-paths/:id/materials
func (h *LearningPathHandler) ListMaterials(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := h.paths.ListMaterials(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"materials": list})
}

// PUT /api/learning-paths/:id/materials/order
func (h *LearningPathHandler) ReorderMaterials(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Orders map[uint]int `json:"orders"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	okAll, err := h.paths.ReorderMaterials(c.Request.Context(), id, req.Orders)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reordered": okAll})
}
