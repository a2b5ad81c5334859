package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trainforge/trainforge-backend/internal/http/response"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
	"github.com/trainforge/trainforge-backend/internal/services"
)

type AssetHandler struct {
	log    *logger.Logger
	assets services.AssetService
}

func NewAssetHandler(log *logger.Logger, assets services.AssetService) *AssetHandler {
	return &AssetHandler{
		log:    log.With("handler", "AssetHandler"),
		assets: assets,
	}
}

// POST /api/assets
func (h *AssetHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.log.Error("cannot open uploaded file", "error", err, "filename", fh.Filename)
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer f.Close()

	asset, err := h.assets.Upload(c.Request.Context(), fh.Filename, f)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"asset": asset})
}

// GET /api/assets
func (h *AssetHandler) List(c *gin.Context) {
	list, err := h.assets.ListByTenant(c.Request.Context(), "")
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assets": list})
}

// GET /api/assets/:id
func (h *AssetHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	asset, err := h.assets.GetByID(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if asset == nil {
		response.RespondError(c, http.StatusNotFound, "asset_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"asset": asset})
}

// GET /api/assets/:id/info
//
// The compact shape consumed by material-facing clients: id, filename,
// public URL, whether AI processing finished, and the latest job id.
func (h *AssetHandler) GetInfo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	info, err := h.assets.GetAsset(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if info == nil {
		response.RespondError(c, http.StatusNotFound, "asset_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"asset": info})
}

// GET /api/assets/:id/stat
//
// Compares the asset row against the live bucket object; object_missing
// flags rows whose object is gone.
func (h *AssetHandler) Stat(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	stat, err := h.assets.Stat(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if stat == nil {
		response.RespondError(c, http.StatusNotFound, "asset_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"stat": stat})
}

// GET /api/assets/:id/download
func (h *AssetHandler) Download(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	reader, asset, err := h.assets.Download(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	defer reader.Close()

	contentType := strings.TrimSpace(asset.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := asset.SizeBytes
	if size <= 0 {
		size = -1
	}
	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", asset.Filename),
	}
	c.DataFromReader(http.StatusOK, size, contentType, reader, headers)
}

// PUT /api/assets/:id/file
//
// Re-uploads content under the existing bucket key, so references by URL
// stay valid while the bytes change.
func (h *AssetHandler) ReplaceFile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.log.Error("cannot open uploaded file", "error", err, "filename", fh.Filename)
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer f.Close()

	asset, err := h.assets.ReplaceContent(c.Request.Context(), id, fh.Filename, f)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"asset": asset})
}

// DELETE /api/assets/:id
func (h *AssetHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.assets.Delete(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	if !deleted {
		response.RespondError(c, http.StatusNotFound, "asset_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
