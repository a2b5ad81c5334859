package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/http/response"
	"github.com/trainforge/trainforge-backend/internal/services"
)

type HierarchyHandler struct {
	hierarchy services.MaterialHierarchyService
}

func NewHierarchyHandler(hierarchy services.MaterialHierarchyService) *HierarchyHandler {
	return &HierarchyHandler{hierarchy: hierarchy}
}

// POST /api/materials/:id/children
func (h *HierarchyHandler) AssignChild(c *gin.Context) {
	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		ChildID          uint   `json:"child_id"`
		RelationshipType string `json:"relationship_type"`
		DisplayOrder     *int   `json:"display_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	edgeID, err := h.hierarchy.AssignChild(c.Request.Context(), parentID, req.ChildID, req.RelationshipType, req.DisplayOrder)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"relationship_id": edgeID})
}

// DELETE /api/materials/:id/children/:childId
func (h *HierarchyHandler) RemoveChild(c *gin.Context) {
	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	childID, ok := parseIDParam(c, "childId")
	if !ok {
		return
	}
	removed, err := h.hierarchy.RemoveChild(c.Request.Context(), parentID, childID, c.Query("relationship_type"))
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if !removed {
		response.RespondError(c, http.StatusNotFound, "child_link_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"removed": true})
}

// GET /api/materials/:id/children?relationship_type=&ordered=false
func (h *HierarchyHandler) ListChildren(c *gin.Context) {
	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	includeOrder := c.DefaultQuery("ordered", "true") != "false"
	children, err := h.hierarchy.ListChildren(c.Request.Context(), parentID, includeOrder, c.Query("relationship_type"))
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"materials": children})
}

// GET /api/materials/:id/parents?relationship_type=
func (h *HierarchyHandler) ListParents(c *gin.Context) {
	childID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	parents, err := h.hierarchy.ListParents(c.Request.Context(), childID, c.Query("relationship_type"))
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"materials": parents})
}

// GET /api/materials/:id/cycle-check?child_id=N
func (h *HierarchyHandler) CycleCheck(c *gin.Context) {
	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	childID, err := strconv.ParseUint(c.Query("child_id"), 10, 64)
	if err != nil || childID == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_child_id", err)
		return
	}
	cycle, err := h.hierarchy.WouldCreateCircularReference(c.Request.Context(), parentID, uint(childID))
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"would_create_cycle": cycle})
}

// PUT /api/materials/:id/children/order
func (h *HierarchyHandler) ReorderChildren(c *gin.Context) {
	parentID, ok := parseIDParam(c, "id")
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
	okAll, err := h.hierarchy.ReorderChildren(c.Request.Context(), parentID, req.Orders)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reordered": okAll})
}

// GET /api/materials/:id/tree?max_depth=5
func (h *HierarchyHandler) BuildHierarchy(c *gin.Context) {
	rootID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	maxDepth := types.DefaultHierarchyDepth
	if raw := c.Query("max_depth"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 1 {
			response.RespondError(c, http.StatusBadRequest, "invalid_max_depth", err)
			return
		}
		maxDepth = d
	}
	tree, err := h.hierarchy.BuildHierarchy(c.Request.Context(), rootID, maxDepth)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"hierarchy": tree})
}
