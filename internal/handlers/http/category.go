package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type categorySuggester interface {
	Suggest(ctx context.Context, name string) (string, error)
}

// CategoryHandler proxies subscription names to the category suggester.
type CategoryHandler struct {
	Service categorySuggester
}

func NewCategoryHandler(svc categorySuggester) *CategoryHandler {
	return &CategoryHandler{Service: svc}
}

// @Summary Suggest a category
// @Description Guesses a spending category for a subscription name.
// @Tags categorize
// @Accept application/json
// @Param request body object true "Subscription name"
// @Success 200
// @Failure 400
// @Failure 500
// @Router /categorize [post]
func (h *CategoryHandler) Categorize(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	category, err := h.Service.Suggest(ctx, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to categorize"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}
