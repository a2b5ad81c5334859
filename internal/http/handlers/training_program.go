package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/http/response"
	"github.com/trainforge/trainforge-backend/internal/platform/ctxutil"
	"github.com/trainforge/trainforge-backend/internal/services"
)

type TrainingProgramHandler struct {
	programs services.TrainingProgramService
}

func NewTrainingProgramHandler(programs services.TrainingProgramService) *TrainingProgramHandler {
	return &TrainingProgramHandler{programs: programs}
}

// POST /api/training-programs
func (h *TrainingProgramHandler) Create(c *gin.Context) {
	var p types.TrainingProgram
	if err := c.ShouldBindJSON(&p); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if p.TenantID == "" {
		p.TenantID = ctxutil.TenantID(c.Request.Context())
	}
	created, err := h.programs.Create(c.Request.Context(), &p)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"training_program": created})
}

// GET /api/training-programs?active=true
func (h *TrainingProgramHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		list []*types.TrainingProgram
		err  error
	)
	if c.Query("active") == "true" {
		list, err = h.programs.ListActive(ctx, "")
	} else {
		list, err = h.programs.ListByTenant(ctx, "")
	}
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"training_programs": list})
}

// GET /api/training-programs/:id
func (h *TrainingProgramHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.programs.GetByID(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if p == nil {
		response.RespondError(c, http.StatusNotFound, "training_program_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"training_program": p})
}

// PUT /api/training-programs/:id
func (h *TrainingProgramHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var p types.TrainingProgram
	if err := c.ShouldBindJSON(&p); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	p.ID = id
	updated, err := h.programs.Update(c.Request.Context(), &p)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"training_program": updated})
}

// PUT /api/training-programs/:id/active
func (h *TrainingProgramHandler) SetActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	changed, err := h.programs.SetActive(c.Request.Context(), id, req.Active)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if !changed {
		response.RespondError(c, http.StatusNotFound, "training_program_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"active": req.Active})
}

// DELETE /api/training-programs/:id
func (h *TrainingProgramHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.programs.Delete(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if !deleted {
		response.RespondError(c, http.StatusNotFound, "training_program_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// POST /api/training-programs/:id/materials
func (h *TrainingProgramHandler) AssignMaterial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		MaterialID uint `json:"material_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	edgeID, err := h.programs.AssignMaterial(c.Request.Context(), id, req.MaterialID)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"relationship_id": edgeID})
}

// POST /api/training-programs/:id/materials/bulk
func (h *TrainingProgramHandler) AssignMaterials(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		MaterialIDs []uint `json:"material_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	results, err := h.programs.AssignMaterials(c.Request.Context(), id, req.MaterialIDs)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assignments": results})
}

// DELETE /api/training-programs/:id/materials/:materialId
func (h *TrainingProgramHandler) RemoveMaterial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	materialID, ok := parseIDParam(c, "materialId")
	if !ok {
		return
	}
	removed, err := h.programs.RemoveMaterial(c.Request.Context(), id, materialID)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if !removed {
		response.RespondError(c, http.StatusNotFound, "program_material_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"removed": true})
}

// GET /api/training-programs/:id/materials
func (h *TrainingProgramHandler) ListMaterials(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := h.programs.ListMaterials(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"materials": list})
}
