package handlers

import (
	"net/http"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/models"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AwardHandler handles award-related HTTP requests
type AwardHandler struct {
	awardService services.AwardService
}

// NewAwardHandler creates a new AwardHandler
func NewAwardHandler(awardService services.AwardService) *AwardHandler {
	return &AwardHandler{awardService: awardService}
}

// Announce handles POST /admin/awards
func (h *AwardHandler) Announce(c *gin.Context) {
	var req models.AnnounceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	announcerID, err := primitive.ObjectIDFromHex(c.GetString(models.ContextUserID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token subject is not a user id"})
		return
	}
	req.AnnouncerID = announcerID

	award, err := h.awardService.Announce(c.Request.Context(), req)
	if err != nil {
		respondError(c, "Announce", err)
		return
	}
	c.JSON(http.StatusCreated, award)
}

// List handles GET /admin/awards
func (h *AwardHandler) List(c *gin.Context) {
	fundraiserID, err := queryObjectID(c, "fundraiserId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, limit := pagination(c)
	awards, total, err := h.awardService.List(c.Request.Context(), models.AwardFilter{FundraiserID: fundraiserID}, page, limit)
	if err != nil {
		respondError(c, "ListAwards", err)
		return
	}
	c.JSON(http.StatusOK, paged(awards, page, limit, total))
}

// Get handles GET /admin/awards/:id
func (h *AwardHandler) Get(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	award, err := h.awardService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "GetAward", err)
		return
	}
	c.JSON(http.StatusOK, award)
}

// Delete handles DELETE /admin/awards/:id
func (h *AwardHandler) Delete(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.awardService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "DeleteAward", err)
		return
	}
	c.Status(http.StatusNoContent)
}
