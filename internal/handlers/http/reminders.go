package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rokyuddin/billping-api/internal/models"
)

type reminderRunner interface {
	RunOnce(ctx context.Context, trigger string) (models.ReminderSummary, error)
}

// ReminderHandler exposes the dispatch job to external schedulers.
type ReminderHandler struct {
	Runner     reminderRunner
	CronSecret string
}

func NewReminderHandler(runner reminderRunner, cronSecret string) *ReminderHandler {
	return &ReminderHandler{Runner: runner, CronSecret: cronSecret}
}

// @Summary Dispatch billing reminders
// @Description Runs the reminder job once and returns a delivery summary.
// @Tags reminders
// @Param Authorization header string false "Bearer token matching CRON_SECRET"
// @Success 200 {object} models.ReminderSummary
// @Failure 400
// @Failure 401
// @Router /reminders/dispatch [post]
func (h *ReminderHandler) Dispatch(c *gin.Context) {
	if h.CronSecret != "" {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token != h.CronSecret {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
	}

	summary, err := h.Runner.RunOnce(c.Request.Context(), "http")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}
