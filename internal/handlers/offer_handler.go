package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/middleware"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/media"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/offers"
)

// OfferHandler handles the offers of the merchant's store. Every route runs
// behind StoreMiddleware.
type OfferHandler struct {
	offers *offers.Service
	media  *media.Service
}

func NewOfferHandler(offerService *offers.Service, mediaService *media.Service) *OfferHandler {
	return &OfferHandler{
		offers: offerService,
		media:  mediaService,
	}
}

// List returns the filtered and sorted offers
// GET /api/v1/offers?search=&status=&category=&sort=
func (h *OfferHandler) List(c *gin.Context) {
	storeID, ok := currentStore(c)
	if !ok {
		return
	}

	var filter offers.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.RespondError(c, apperr.Validation("invalid filter", nil))
		return
	}

	resp, err := h.offers.List(c.Request.Context(), storeID, filter)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByID retrieves an offer
// GET /api/v1/offers/:id
func (h *OfferHandler) GetByID(c *gin.Context) {
	storeID, ok := currentStore(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "offer")
	if !ok {
		return
	}

	offer, err := h.offers.Get(c.Request.Context(), storeID, id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

// Create creates a new offer
// POST /api/v1/offers
func (h *OfferHandler) Create(c *gin.Context) {
	storeID, ok := currentStore(c)
	if !ok {
		return
	}

	var req models.OfferRequest
	if !bindJSON(c, &req) {
		return
	}

	offer, err := h.offers.Create(c.Request.Context(), storeID, &req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

// Update applies the fields present in the body
// PUT /api/v1/offers/:id
func (h *OfferHandler) Update(c *gin.Context) {
	storeID, ok := currentStore(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "offer")
	if !ok {
		return
	}

	var req models.OfferRequest
	if !bindJSON(c, &req) {
		return
	}

	offer, err := h.offers.Update(c.Request.Context(), storeID, id, &req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

// Delete deactivates the offer, the row is kept
// DELETE /api/v1/offers/:id
func (h *OfferHandler) Delete(c *gin.Context) {
	storeID, ok := currentStore(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "offer")
	if !ok {
		return
	}

	if err := h.offers.Deactivate(c.Request.Context(), storeID, id); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "offer deactivated"})
}

// UploadImage stores an offer picture. The client sends the returned URL as
// image_url on create or update.
// POST /api/v1/offers/images
func (h *OfferHandler) UploadImage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	file, header, ok := formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	up, err := h.media.Upload(c.Request.Context(), userID, media.KindOffer, header.Filename, header.Size, file)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, uploadResponse(up))
}

func uploadResponse(up *media.Upload) models.UploadResponse {
	return models.UploadResponse{
		Kind:      string(up.Kind),
		Path:      up.Key,
		PublicURL: up.PublicURL,
	}
}
