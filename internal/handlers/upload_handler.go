package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Andessonreis/corre-aqui-dash/internal/middleware"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/media"
)

// UploadHandler receives the store logo and banner picked in the wizard
type UploadHandler struct {
	media *media.Service
}

func NewUploadHandler(service *media.Service) *UploadHandler {
	return &UploadHandler{media: service}
}

// Upload handles a multipart image upload
// POST /api/v1/uploads/:kind
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	kind, err := media.ParseKind(c.Param("kind"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	// Limitar tamanho do body antes de parsear o multipart
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, media.MaxUploadSize+1<<20)

	file, header, ok := formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	up, err := h.media.Upload(c.Request.Context(), userID, kind, header.Filename, header.Size, file)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, uploadResponse(up))
}
