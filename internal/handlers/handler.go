package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/middleware"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/services"
	"github.com/ArowuTest/fundraiser-awards-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondError maps service errors to HTTP responses. Internal failures are
// logged with detail and answered with a generic message.
func respondError(c *gin.Context, op string, err error) {
	log := logrus.WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.RequestIDKey),
		"path":       c.FullPath(),
	}).WithError(err)

	switch {
	case errors.Is(err, services.ErrNotFound):
		log.Warn(op + ": Not found")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoEligibleDonors):
		log.Warn(op + ": No eligible donors")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidState):
		log.Warn(op + ": Invalid state")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotificationFailed):
		log.Error(op + ": Notification failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send email"})
	case errors.Is(err, services.ErrCodeGenerationExhausted):
		log.Error(op + ": Coupon code generation exhausted")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate a unique coupon code"})
	case errors.Is(err, services.ErrTransactionFailed):
		log.Error(op + ": Transaction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record award, nothing was changed"})
	default:
		log.Error(op + ": Internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func paramObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func queryObjectID(c *gin.Context, name string) (*primitive.ObjectID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &id, nil
}

// queryTime accepts RFC 3339 timestamps or plain YYYY-MM-DD dates
func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid %s, use YYYY-MM-DD or RFC 3339", name)
}

func pagination(c *gin.Context) (int, int) {
	return utils.ParsePagination(c.Query("page"), c.Query("limit"))
}

func paged(data interface{}, page, limit int, total int64) gin.H {
	return gin.H{"data": data, "page": page, "limit": limit, "total": total}
}

// HealthHandler reports service liveness
type HealthHandler struct {
	check func(ctx context.Context) error
}

// NewHealthHandler creates a new HealthHandler. check may be nil.
func NewHealthHandler(check func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{check: check}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	if h.check != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.check(ctx); err != nil {
			logrus.WithError(err).Error("Health: Storage check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
