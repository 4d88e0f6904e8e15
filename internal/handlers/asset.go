// internal/handlers/asset.go
package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hearthline/commerce-api/internal/utils"
)

// ObjectReader exposes objects held by the in-memory storage backend.
type ObjectReader interface {
	Object(key string) ([]byte, bool)
}

// AssetHandler serves image variants when S3 is not configured.
type AssetHandler struct {
	objects ObjectReader
}

func NewAssetHandler(objects ObjectReader) *AssetHandler {
	return &AssetHandler{objects: objects}
}

// GET /uploads/*key
func (h *AssetHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(path.Clean(c.Param("key")), "/")
	data, ok := h.objects.Object(key)
	if !ok {
		utils.NotFoundResponse(c, "Image not found")
		return
	}

	contentType := http.DetectContentType(data)
	if strings.HasSuffix(key, ".webp") {
		contentType = "image/webp"
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, contentType, data)
}
