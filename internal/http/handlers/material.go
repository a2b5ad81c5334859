package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/http/response"
	"github.com/trainforge/trainforge-backend/internal/platform/ctxutil"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
	"github.com/trainforge/trainforge-backend/internal/services"
)

// maxPreviewUploadBytes caps uploaded preview images well below the bucket
// object limits; previews are resized to a tile anyway.
const maxPreviewUploadBytes = 16 << 20

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid %s %q", name, raw))
		return 0, false
	}
	return uint(id), true
}

type MaterialHandler struct {
	log       *logger.Logger
	materials services.MaterialService
	previews  services.PreviewService
}

func NewMaterialHandler(log *logger.Logger, materials services.MaterialService, previews services.PreviewService) *MaterialHandler {
	return &MaterialHandler{
		log:       log.With("handler", "MaterialHandler"),
		materials: materials,
		previews:  previews,
	}
}

func hasChildPayload(m *types.Material) bool {
	return len(m.ChecklistEntries) > 0 ||
		len(m.WorkflowSteps) > 0 ||
		len(m.QuestionnaireEntries) > 0 ||
		len(m.Timestamps) > 0 ||
		len(m.QuizQuestions) > 0 ||
		len(m.Annotations) > 0
}

// POST /api/materials
func (h *MaterialHandler) Create(c *gin.Context) {
	var m types.Material
	if err := c.ShouldBindJSON(&m); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if m.TenantID == "" {
		m.TenantID = ctxutil.TenantID(c.Request.Context())
	}

	var (
		created *types.Material
		err     error
	)
	if hasChildPayload(&m) {
		created, err = h.materials.CreateWithChildren(c.Request.Context(), &m)
	} else {
		created, err = h.materials.Create(c.Request.Context(), &m)
	}
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"material": created})
}

// GET /api/materials
func (h *MaterialHandler) List(c *gin.Context) {
	list, err := h.materials.ListByTenant(c.Request.Context(), "")
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"materials": list})
}

// GET /api/materials/:id
func (h *MaterialHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	m, err := h.materials.GetByID(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if m == nil {
		response.RespondError(c, http.StatusNotFound, "material_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"material": m})
}

// GET /api/materials/:id/complete
func (h *MaterialHandler) GetComplete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	m, err := h.materials.GetComplete(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if m == nil {
		response.RespondError(c, http.StatusNotFound, "material_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"material": m})
}

// PUT /api/materials/:id
func (h *MaterialHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var m types.Material
	if err := c.ShouldBindJSON(&m); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	m.ID = id
	updated, err := h.materials.Update(c.Request.Context(), &m)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"material": updated})
}

// DELETE /api/materials/:id
func (h *MaterialHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.materials.Delete(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if !deleted {
		response.RespondError(c, http.StatusNotFound, "material_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// POST /api/materials/:id/asset
func (h *MaterialHandler) AssignAsset(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		AssetID uint `json:"asset_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	assigned, err := h.materials.AssignAsset(c.Request.Context(), id, req.AssetID)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assigned": assigned})
}

// DELETE /api/materials/:id/asset
func (h *MaterialHandler) RemoveAsset(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	removed, err := h.materials.RemoveAsset(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"removed": removed})
}

// GET /api/materials/:id/asset
func (h *MaterialHandler) GetAssetID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	assetID, err := h.materials.GetAssetID(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"asset_id": assetID})
}

// GET /api/assets/:id/materials
func (h *MaterialHandler) ListByAsset(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := h.materials.ListByAsset(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"materials": list})
}

// POST /api/materials/:id/preview
func (h *MaterialHandler) GeneratePreview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	url, err := h.previews.GeneratePreview(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preview_url": url})
}

// PUT /api/materials/:id/preview
func (h *MaterialHandler) UploadPreview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_image", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.log.Error("cannot open uploaded preview", "error", err)
		response.RespondError(c, http.StatusBadRequest, "unreadable_image", err)
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxPreviewUploadBytes))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_image", err)
		return
	}
	url, err := h.previews.SetPreviewFromImage(c.Request.Context(), id, raw)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preview_url": url})
}

// DELETE /api/materials/:id/preview
func (h *MaterialHandler) RemovePreview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.previews.RemovePreview(c.Request.Context(), id); err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"removed": true})
}
