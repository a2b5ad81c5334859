package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/http/response"
	"github.com/trainforge/trainforge-backend/internal/services"
)

type RelationshipHandler struct {
	relationships services.MaterialRelationshipService
}

func NewRelationshipHandler(relationships services.MaterialRelationshipService) *RelationshipHandler {
	return &RelationshipHandler{relationships: relationships}
}

func parseRelatedEntityKind(raw string) (types.RelatedEntityKind, error) {
	kind := types.RelatedEntityKind(raw)
	if !kind.Valid() {
		return "", fmt.Errorf("invalid related entity type %q", raw)
	}
	return kind, nil
}

// POST /api/relationships
func (h *RelationshipHandler) Create(c *gin.Context) {
	var edge types.MaterialRelationship
	if err := c.ShouldBindJSON(&edge); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	created, err := h.relationships.Create(c.Request.Context(), &edge)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"relationship": created})
}

// GET /api/relationships/:id
func (h *RelationshipHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	edge, err := h.relationships.GetByID(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if edge == nil {
		response.RespondError(c, http.StatusNotFound, "relationship_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"relationship": edge})
}

// DELETE /api/relationships/:id
func (h *RelationshipHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.relationships.Delete(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if !deleted {
		response.RespondError(c, http.StatusNotFound, "relationship_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// GET /api/materials/:id/relationships?type=LearningPath
func (h *RelationshipHandler) ListByMaterial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if raw := c.Query("type"); raw != "" {
		kind, err := parseRelatedEntityKind(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_entity_type", err)
			return
		}
		edges, err := h.relationships.ListByMaterialAndType(ctx, id, kind)
		if err != nil {
			response.RespondFault(c, err)
			return
		}
		response.RespondOK(c, gin.H{"relationships": edges})
		return
	}
	edges, err := h.relationships.ListByMaterial(ctx, id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"relationships": edges})
}

// POST /api/materials/:id/prerequisites
func (h *RelationshipHandler) CreateDependency(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		PrerequisiteID   uint   `json:"prerequisite_id"`
		RelationshipType string `json:"relationship_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	edgeID, err := h.relationships.CreateDependency(c.Request.Context(), id, req.PrerequisiteID, req.RelationshipType)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"relationship_id": edgeID})
}

// DELETE /api/materials/:id/prerequisites/:prerequisiteId
func (h *RelationshipHandler) RemoveDependency(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	prereqID, ok := parseIDParam(c, "prerequisiteId")
	if !ok {
		return
	}
	removed, err := h.relationships.RemoveDependency(c.Request.Context(), id, prereqID, c.Query("relationship_type"))
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if !removed {
		response.RespondError(c, http.StatusNotFound, "dependency_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"removed": true})
}

// GET /api/materials/:id/prerequisites
func (h *RelationshipHandler) GetPrerequisites(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := h.relationships.GetPrerequisites(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"materials": list})
}

// GET /api/materials/:id/dependents
func (h *RelationshipHandler) GetDependents(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := h.relationships.GetDependents(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"materials": list})
}

// PUT /api/materials/:id/relationships/order
func (h *RelationshipHandler) Reorder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		RelatedEntityType string       `json:"related_entity_type"`
		Orders            map[uint]int `json:"orders"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	kind, err := parseRelatedEntityKind(req.RelatedEntityType)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_entity_type", err)
		return
	}
	okAll, err := h.relationships.Reorder(c.Request.Context(), id, kind, req.Orders)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reordered": okAll})
}
