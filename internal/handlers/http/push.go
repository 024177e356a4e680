package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rokyuddin/billping-api/internal/models"
)

type pushStore interface {
	SetPushSubscription(ctx context.Context, userID string, sub models.PushSubscription) error
	ClearPushSubscription(ctx context.Context, userID string) error
}

// PushHandler stores and clears browser push subscriptions on profiles.
type PushHandler struct {
	Store          pushStore
	VAPIDPublicKey string
}

func NewPushHandler(store pushStore, vapidPublicKey string) *PushHandler {
	return &PushHandler{Store: store, VAPIDPublicKey: vapidPublicKey}
}

// @Summary VAPID public key
// @Description Returns the public key the browser needs to subscribe.
// @Tags push
// @Success 200
// @Router /push/vapid-key [get]
func (h *PushHandler) VAPIDKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"publicKey": h.VAPIDPublicKey})
}

// @Summary Enable push notifications
// @Description Stores the browser-issued push subscription on the caller's profile.
// @Tags push
// @Accept application/json
// @Param subscription body models.PushSubscription true "Browser push subscription"
// @Success 200
// @Failure 400
// @Failure 401
// @Failure 500
// @Router /push/subscribe [post]
func (h *PushHandler) Subscribe(c *gin.Context) {
	var req struct {
		Subscription models.PushSubscription `json:"subscription" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription data required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	if err := h.Store.SetPushSubscription(ctx, userID(c), req.Subscription); err != nil {
		if errors.Is(err, models.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Disable push notifications
// @Description Removes the stored push subscription from the caller's profile.
// @Tags push
// @Success 200
// @Failure 401
// @Failure 500
// @Router /push/unsubscribe [post]
func (h *PushHandler) Unsubscribe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	if err := h.Store.ClearPushSubscription(ctx, userID(c)); err != nil {
		if errors.Is(err, models.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
