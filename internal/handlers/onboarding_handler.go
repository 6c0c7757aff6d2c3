package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Andessonreis/corre-aqui-dash/internal/middleware"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/onboarding"
)

type OnboardingHandler struct {
	onboarding *onboarding.Service
}

func NewOnboardingHandler(service *onboarding.Service) *OnboardingHandler {
	return &OnboardingHandler{onboarding: service}
}

type startRequest struct {
	Variant string `json:"variant"`
}

// Current returns the wizard in progress
// GET /api/v1/onboarding
func (h *OnboardingHandler) Current(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.onboarding.Current(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Start begins a new wizard, discarding any previous progress
// POST /api/v1/onboarding/start
func (h *OnboardingHandler) Start(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req startRequest
	// an empty body selects the configured variant
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	view, err := h.onboarding.Start(c.Request.Context(), userID, req.Variant)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Submit completes the active step
// POST /api/v1/onboarding/steps/:step
func (h *OnboardingHandler) Submit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var data onboarding.Data
	if !bindJSON(c, &data) {
		return
	}

	result, err := h.onboarding.Submit(c.Request.Context(), userID, onboarding.Step(c.Param("step")), data)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Done {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// Back returns to the previous step
// POST /api/v1/onboarding/back
func (h *OnboardingHandler) Back(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.onboarding.Back(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Goto jumps to an unlocked step
// POST /api/v1/onboarding/goto/:step
func (h *OnboardingHandler) Goto(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.onboarding.Goto(c.Request.Context(), userID, onboarding.Step(c.Param("step")))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
