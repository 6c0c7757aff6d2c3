package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/middleware"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/auth"
)

type AuthHandler struct {
	auth     *auth.Service
	sessions *middleware.SessionManager
}

func NewAuthHandler(authService *auth.Service, sessions *middleware.SessionManager) *AuthHandler {
	return &AuthHandler{
		auth:     authService,
		sessions: sessions,
	}
}

// SignUp creates the merchant account and opens a session
// POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.auth.SignUp(c.Request.Context(), &req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	if !h.saveSession(c, resp) {
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SignIn authenticates and tells the client where to go next
// POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.auth.SignIn(c.Request.Context(), &req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	if !h.saveSession(c, resp) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SignOut drops the session cookie. Bearer tokens simply expire.
// POST /api/v1/auth/signout
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.sessions.Clear(c); err != nil {
		middleware.RespondError(c, apperr.Internal(err, "failed to clear session"))
		return
	}
	c.Status(http.StatusNoContent)
}

// Session returns the signed-in profile and its landing route
// GET /api/v1/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, route, err := h.auth.Session(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":  profile,
		"redirect": route,
	})
}

func (h *AuthHandler) saveSession(c *gin.Context, resp *models.AuthResponse) bool {
	if err := h.sessions.Save(c, resp.Token, resp.ExpiresAt); err != nil {
		middleware.RespondError(c, apperr.Internal(err, "failed to save session"))
		return false
	}
	return true
}
