package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Andessonreis/corre-aqui-dash/internal/middleware"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/profile"
)

type ProfileHandler struct {
	profile *profile.Service
}

func NewProfileHandler(service *profile.Service) *ProfileHandler {
	return &ProfileHandler{profile: service}
}

// GetMe returns the profile and the store summary
// GET /api/v1/me
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	me, err := h.profile.Me(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

// UpdateMe edits name, email and phone
// PUT /api/v1/me
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.profile.Update(c.Request.Context(), userID, &req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UploadAvatar replaces the profile photo
// POST /api/v1/me/avatar
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	file, header, ok := formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	up, err := h.profile.UploadAvatar(c.Request.Context(), userID, header.Filename, header.Size, file)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, uploadResponse(up))
}

// Dashboard returns the shell: profile, store, offer counts and navigation
// GET /api/v1/dashboard
func (h *ProfileHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	dash, err := h.profile.Dashboard(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}
