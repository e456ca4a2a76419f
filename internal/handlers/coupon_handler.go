package handlers

import (
	"net/http"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// CouponHandler handles coupon-related HTTP requests
type CouponHandler struct {
	couponService services.CouponService
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(couponService services.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// Issue handles POST /coupons/issue
func (h *CouponHandler) Issue(c *gin.Context) {
	var req models.IssueCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.couponService.Issue(c.Request.Context(), req)
	if err != nil {
		respondError(c, "Issue", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Sweep handles POST /admin/coupons/sweep
func (h *CouponHandler) Sweep(c *gin.Context) {
	n, err := h.couponService.SweepExpired(c.Request.Context())
	if err != nil {
		respondError(c, "Sweep", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": n})
}

// List handles GET /admin/coupons
func (h *CouponHandler) List(c *gin.Context) {
	var filter models.CouponFilter
	var err error
	if filter.FundraiserID, err = queryObjectID(c, "fundraiserId"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filter.CreatedFrom, err = queryTime(c, "from"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filter.CreatedTo, err = queryTime(c, "to"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if status := models.CouponStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status (active, used or expired)"})
			return
		}
		filter.Status = status
	}

	page, limit := pagination(c)
	coupons, total, err := h.couponService.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, "ListCoupons", err)
		return
	}
	c.JSON(http.StatusOK, paged(coupons, page, limit, total))
}

// Stats handles GET /admin/coupons/stats
func (h *CouponHandler) Stats(c *gin.Context) {
	fundraiserID, err := queryObjectID(c, "fundraiserId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stats, err := h.couponService.Stats(c.Request.Context(), fundraiserID)
	if err != nil {
		respondError(c, "CouponStats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Get handles GET /admin/coupons/:id
func (h *CouponHandler) Get(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	coupon, err := h.couponService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "GetCoupon", err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

// GetByCode handles GET /admin/coupons/code/:code
func (h *CouponHandler) GetByCode(c *gin.Context) {
	coupon, err := h.couponService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, "GetCouponByCode", err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

// ResendEmail handles POST /admin/coupons/:id/resend-email
func (h *CouponHandler) ResendEmail(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.couponService.ResendEmail(c.Request.Context(), id); err != nil {
		respondError(c, "ResendCouponEmail", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Coupon email sent"})
}

// Delete handles DELETE /admin/coupons/:id
func (h *CouponHandler) Delete(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "DeleteCoupon", err)
		return
	}
	c.Status(http.StatusNoContent)
}
