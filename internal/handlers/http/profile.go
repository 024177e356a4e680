package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rokyuddin/billping-api/internal/models"
)

type profileStore interface {
	GetByID(ctx context.Context, id string) (models.Profile, error)
	Upsert(ctx context.Context, profile models.Profile) error
}

// ProfileHandler serves the settings-facing profile read/update surface.
type ProfileHandler struct {
	Store profileStore
}

func NewProfileHandler(store profileStore) *ProfileHandler {
	return &ProfileHandler{Store: store}
}

// @Summary Get the caller's profile
// @Tags profile
// @Success 200 {object} models.Profile
// @Failure 401
// @Failure 404
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	profile, err := h.Store.GetByID(ctx, userID(c))
	if err != nil {
		if errors.Is(err, models.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// @Summary Update the caller's profile
// @Description Creates or replaces the profile's email, name and preferences.
// @Tags profile
// @Accept application/json
// @Param profile body object true "Profile fields"
// @Success 200
// @Failure 400
// @Failure 401
// @Failure 500
// @Router /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	var req struct {
		Email       string             `json:"email" binding:"required,email"`
		FullName    string             `json:"full_name"`
		Preferences models.Preferences `json:"preferences"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid fields"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	id := userID(c)

	// keep the stored push subscription across settings saves; only a
	// missing profile (first save) legitimately has none, a failed read
	// must not wipe the subscription
	var push *models.PushSubscription
	existing, err := h.Store.GetByID(ctx, id)
	switch {
	case err == nil:
		push = existing.PushSubscription
	case errors.Is(err, models.ErrProfileNotFound):
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	profile := models.Profile{
		ID:               id,
		Email:            req.Email,
		FullName:         req.FullName,
		Preferences:      req.Preferences,
		PushSubscription: push,
		UpdatedAt:        time.Now(),
	}
	if err := h.Store.Upsert(ctx, profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
