package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jordanlanch/brainbuddy/pkg/api/errors"
	"github.com/jordanlanch/brainbuddy/pkg/api/middleware"
	"github.com/jordanlanch/brainbuddy/pkg/models"
	"github.com/jordanlanch/brainbuddy/pkg/quota"
	"github.com/jordanlanch/brainbuddy/pkg/usage"
	"github.com/labstack/echo/v4"
)

// QuotaGate decides whether a user may ask another question
type QuotaGate interface {
	Check(ctx context.Context, userID, day string) (quota.Result, error)
	Consume(ctx context.Context, userID, day string) (quota.Result, error)
}

// QuotaStatus reports quota state for display
type QuotaStatus interface {
	Status(ctx context.Context, userID, day string) (quota.Result, error)
}

// UsageHistory lists past day counts
type UsageHistory interface {
	History(ctx context.Context, userID string) (map[string]int, error)
}

// UsageHandler reports quota state
type UsageHandler struct {
	gate    QuotaStatus
	history UsageHistory
	now     func() time.Time
}

// NewUsageHandler creates a new usage handler. history may be nil.
func NewUsageHandler(gate QuotaStatus, history UsageHistory) *UsageHandler {
	return &UsageHandler{gate: gate, history: history, now: time.Now}
}

// GetUsage returns today's usage for the signed-in user
// @Summary Get today's usage
// @Description Questions used today, the daily limit and what remains. Limit and remaining are null for premium users.
// @Tags Usage
// @Produce json
// @Security BearerAuth
// @Param history query bool false "Include per-day counts"
// @Success 200 {object} models.UsageResponse "Usage for today"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Storage error"
// @Router /api/v1/usage [get]
func (h *UsageHandler) GetUsage(c echo.Context) error {
	userID := middleware.UserID(c)
	ctx := c.Request().Context()
	day := usage.DayKey(h.now())

	status, err := h.gate.Status(ctx, userID, day)
	if err != nil {
		return errors.StorageError(c, err)
	}

	resp := models.UsageResponse{
		UserID:    userID,
		Day:       day,
		Used:      status.Used,
		Limit:     status.Limit,
		Remaining: status.Remaining,
		Premium:   status.Premium,
	}

	if h.history != nil && c.QueryParam("history") == "true" {
		resp.History, err = h.history.History(ctx, userID)
		if err != nil {
			return errors.StorageError(c, err)
		}
	}

	return c.JSON(http.StatusOK, resp)
}
