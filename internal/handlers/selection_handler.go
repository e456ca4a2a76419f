package handlers

import (
	"net/http"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// SelectionHandler handles donor pool and draw requests
type SelectionHandler struct {
	selectionService services.SelectionService
}

// NewSelectionHandler creates a new SelectionHandler
func NewSelectionHandler(selectionService services.SelectionService) *SelectionHandler {
	return &SelectionHandler{selectionService: selectionService}
}

// DonorPool handles GET /admin/fundraisers/:id/donor-pool
func (h *SelectionHandler) DonorPool(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	pool, err := h.selectionService.DonorPool(c.Request.Context(), id)
	if err != nil {
		respondError(c, "DonorPool", err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

// DrawWeighted handles POST /admin/fundraisers/:id/draw. The result is
// advisory; announce the coupon to commit it.
func (h *SelectionHandler) DrawWeighted(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	selection, err := h.selectionService.SelectWeightedWinner(c.Request.Context(), id)
	if err != nil {
		respondError(c, "DrawWeighted", err)
		return
	}
	c.JSON(http.StatusOK, selection)
}

// DrawRandom handles POST /admin/coupons/draw. The drawn coupon is marked
// used immediately.
func (h *SelectionHandler) DrawRandom(c *gin.Context) {
	var filter models.RandomSelectionFilter
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	coupon, err := h.selectionService.SelectRandomWinner(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "DrawRandom", err)
		return
	}
	if coupon == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No eligible coupons"})
		return
	}
	c.JSON(http.StatusOK, coupon)
}
