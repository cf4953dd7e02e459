package handlers

import (
	"encoding/json"
	"net/http"

	"woolcrafts-backend/logging"
	"woolcrafts-backend/services"
	"woolcrafts-backend/storage"
	"woolcrafts-backend/utils"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	Settings *services.SettingsService
	Blobs    storage.BlobStore
}

func (h *SettingsHandler) GetBanners(c *gin.Context) {
	banners, err := h.Settings.GetBanners(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", banners)
}

func (h *SettingsHandler) SaveBanners(c *gin.Context) {
	var req struct {
		Banners json.RawMessage `json:"banners"`
	}
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	removed, err := h.Settings.SaveBanners(ctx, req.Banners)
	if err != nil {
		respondError(c, err)
		return
	}

	// The list is saved; a blob that cannot be removed is only logged.
	for _, url := range removed {
		if err := h.Blobs.Delete(ctx, url); err != nil {
			logging.FromContext(ctx).Warn("failed to delete dropped banner", "url", url, "error", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Banners saved successfully"})
}

// UploadBanner stores the multipart "banner" file and returns its public URL.
func (h *SettingsHandler) UploadBanner(c *gin.Context) {
	fh, err := c.FormFile("banner")
	if err != nil {
		fail(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if err := utils.ValidateFileUpload(fh); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer f.Close()

	url, err := h.Blobs.Upload(c.Request.Context(), f, fh.Size, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("banner upload failed", "filename", fh.Filename, "error", err)
		fail(c, http.StatusInternalServerError, "Upload failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}
