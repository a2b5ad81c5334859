package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/http/response"
	"github.com/trainforge/trainforge-backend/internal/services"
)

type SubcomponentHandler struct {
	subcomponents services.SubcomponentRelationshipService
}

func NewSubcomponentHandler(subcomponents services.SubcomponentRelationshipService) *SubcomponentHandler {
	return &SubcomponentHandler{subcomponents: subcomponents}
}

func parseSubcomponentKind(c *gin.Context) (types.SubcomponentKind, bool) {
	raw := c.Param("kind")
	kind, ok := types.ParseSubcomponentKind(raw)
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_subcomponent_kind", fmt.Errorf("unknown subcomponent kind %q", raw))
		return "", false
	}
	return kind, true
}

// POST /api/subcomponents/:kind/:id/materials
func (h *SubcomponentHandler) AssignMaterial(c *gin.Context) {
	kind, ok := parseSubcomponentKind(c)
	if !ok {
		return
	}
	subID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		MaterialID       uint   `json:"material_id"`
		RelationshipType string `json:"relationship_type"`
		DisplayOrder     *int   `json:"display_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	linkID, err := h.subcomponents.AssignToSubcomponent(c.Request.Context(), kind, subID, req.MaterialID, req.RelationshipType, req.DisplayOrder)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"relationship_id": linkID})
}

// DELETE /api/subcomponents/:kind/:id/materials/:materialId
func (h *SubcomponentHandler) RemoveMaterial(c *gin.Context) {
	kind, ok := parseSubcomponentKind(c)
	if !ok {
		return
	}
	subID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	materialID, ok := parseIDParam(c, "materialId")
	if !ok {
		return
	}
	removed, err := h.subcomponents.RemoveFromSubcomponent(c.Request.Context(), kind, subID, materialID)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if !removed {
		response.RespondError(c, http.StatusNotFound, "subcomponent_link_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"removed": true})
}

// GET /api/subcomponents/:kind/:id/materials
func (h *SubcomponentHandler) ListMaterials(c *gin.Context) {
	kind, ok := parseSubcomponentKind(c)
	if !ok {
		return
	}
	subID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := h.subcomponents.ListMaterialsBySubcomponent(c.Request.Context(), kind, subID)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"materials": list})
}

// GET /api/materials/:id/subcomponent-links
func (h *SubcomponentHandler) ListLinksForMaterial(c *gin.Context) {
	materialID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	links, err := h.subcomponents.ListBySubcomponentMaterial(c.Request.Context(), materialID)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"relationships": links})
}
