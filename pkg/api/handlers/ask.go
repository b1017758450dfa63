package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/brainbuddy/pkg/answer"
	"github.com/jordanlanch/brainbuddy/pkg/api/errors"
	"github.com/jordanlanch/brainbuddy/pkg/api/middleware"
	"github.com/jordanlanch/brainbuddy/pkg/metrics"
	"github.com/jordanlanch/brainbuddy/pkg/models"
	"github.com/jordanlanch/brainbuddy/pkg/usage"
	"github.com/labstack/echo/v4"
)

// AnswerSource produces an answer for every question
type AnswerSource interface {
	GetAnswer(ctx context.Context, q answer.Question) answer.Answer
}

// AskHandler answers study questions within the daily quota
type AskHandler struct {
	gate      QuotaGate
	answers   AnswerSource
	validator *validator.Validate
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewAskHandler creates a new ask handler
func NewAskHandler(gate QuotaGate, answers AnswerSource) *AskHandler {
	return &AskHandler{
		gate:      gate,
		answers:   answers,
		validator: validator.New(),
		now:       time.Now,
	}
}

// SetMetrics sets the metrics recorder.
func (h *AskHandler) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// Ask explains a topic. Usage is recorded once, after the answer exists,
// whichever provider produced it. Rejected requests consume nothing.
// Check and Consume are separate store cycles, so two overlapping requests at
// one remaining question can both be answered and leave used at limit+1.
// @Summary Ask a study question
// @Description Answer with the local model, the hosted model or the built-in template, in that order, within the daily quota
// @Tags Ask
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AskRequest true "Question, detail level (3-8) and tone"
// @Success 200 {object} models.AskResponse "Answer delivered"
// @Failure 400 {object} models.ErrorResponse "Empty question or invalid options"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 402 {object} models.ErrorResponse "Daily quota used up"
// @Failure 500 {object} models.ErrorResponse "Storage error"
// @Router /api/v1/ask [post]
func (h *AskHandler) Ask(c echo.Context) error {
	userID := middleware.UserID(c)

	var req models.AskRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if strings.TrimSpace(req.Question) == "" {
		return errors.BadRequest(c, "empty_question", "Please type a question first.")
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	tone, err := answer.ParseTone(req.Tone)
	if err != nil {
		return errors.ValidationError(c, err)
	}

	ctx := c.Request().Context()
	day := usage.DayKey(h.now())

	status, err := h.gate.Check(ctx, userID, day)
	if err != nil {
		return errors.StorageError(c, err)
	}
	if !status.Allowed {
		h.metrics.RecordQuotaDenied()
		return errors.QuotaExceeded(c)
	}

	ans := h.answers.GetAnswer(ctx, answer.Question{
		Text:        req.Question,
		DetailLevel: req.DetailLevel,
		Tone:        tone,
	})

	after, err := h.gate.Consume(ctx, userID, day)
	if err != nil {
		return errors.StorageError(c, err)
	}

	return c.JSON(http.StatusOK, models.AskResponse{
		Answer:    ans.Text,
		Source:    ans.Source,
		Notices:   ans.Notices,
		Used:      after.Used,
		Remaining: after.Remaining,
		Premium:   after.Premium,
	})
}
