package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rokyuddin/billping-api/internal/models"
)

const timeoutDuration = 10 * time.Second

type subscriptionManager interface {
	Create(ctx context.Context, userID string, in models.SubscriptionInput) (models.Subscription, error)
	Get(ctx context.Context, userID, id string) (models.Subscription, error)
	List(ctx context.Context, userID string) ([]models.Subscription, error)
	Update(ctx context.Context, userID, id string, in models.SubscriptionInput) (models.Subscription, error)
	Delete(ctx context.Context, userID, id string) error
	Summary(ctx context.Context, userID string) (models.SpendSummary, error)
}

// Handler serves the user-facing subscription CRUD and spend summary.
type Handler struct {
	Service subscriptionManager
}

func NewHandler(svc subscriptionManager) *Handler {
	return &Handler{Service: svc}
}

// @Summary Create a subscription
// @Description Registers a recurring payment for the calling user.
// @Tags subscriptions
// @Accept application/json
// @Param subscription body models.SubscriptionInput true "Subscription fields"
// @Success 201 {object} models.Subscription
// @Failure 400
// @Failure 401
// @Failure 500
// @Router /subscriptions [post]
func (h *Handler) Create(c *gin.Context) {
	var in models.SubscriptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid fields"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	sub, err := h.Service.Create(ctx, userID(c), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// @Summary List subscriptions
// @Tags subscriptions
// @Success 200 {array} models.Subscription
// @Failure 401
// @Failure 500
// @Router /subscriptions [get]
func (h *Handler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	subs, err := h.Service.List(ctx, userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if subs == nil {
		subs = []models.Subscription{}
	}

	c.JSON(http.StatusOK, subs)
}

// @Summary Get a subscription
// @Tags subscriptions
// @Param id path string true "Subscription id"
// @Success 200 {object} models.Subscription
// @Failure 401
// @Failure 404
// @Failure 500
// @Router /subscriptions/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	sub, err := h.Service.Get(ctx, userID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, sub)
}

// @Summary Update a subscription
// @Tags subscriptions
// @Accept application/json
// @Param id path string true "Subscription id"
// @Param subscription body models.SubscriptionInput true "Subscription fields"
// @Success 200 {object} models.Subscription
// @Failure 400
// @Failure 401
// @Failure 404
// @Failure 500
// @Router /subscriptions/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var in models.SubscriptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid fields"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	sub, err := h.Service.Update(ctx, userID(c), c.Param("id"), in)
	if err != nil {
		if errors.Is(err, models.ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, sub)
}

// @Summary Delete a subscription
// @Tags subscriptions
// @Param id path string true "Subscription id"
// @Success 204
// @Failure 401
// @Failure 404
// @Failure 500
// @Router /subscriptions/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	err := h.Service.Delete(ctx, userID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Spend summary
// @Description Monthly/yearly totals and bills due in the next seven days.
// @Tags subscriptions
// @Success 200 {object} models.SpendSummary
// @Failure 401
// @Failure 500
// @Router /subscriptions/summary [get]
func (h *Handler) Summary(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	summary, err := h.Service.Summary(ctx, userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
