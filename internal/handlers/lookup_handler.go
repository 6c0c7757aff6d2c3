package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Andessonreis/corre-aqui-dash/internal/middleware"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/lookup"
)

type LookupHandler struct {
	lookup *lookup.Service
}

func NewLookupHandler(service *lookup.Service) *LookupHandler {
	return &LookupHandler{lookup: service}
}

// Categories lists the store and offer categories
// GET /api/v1/categories
func (h *LookupHandler) Categories(c *gin.Context) {
	categories, err := h.lookup.Categories(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// PostalCode fills an address from a CEP
// GET /api/v1/postal-codes/:cep
func (h *LookupHandler) PostalCode(c *gin.Context) {
	addr, err := h.lookup.PostalCode(c.Request.Context(), c.Param("cep"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addr)
}
