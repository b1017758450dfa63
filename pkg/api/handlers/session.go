package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/brainbuddy/pkg/api/errors"
	"github.com/jordanlanch/brainbuddy/pkg/auth"
	"github.com/jordanlanch/brainbuddy/pkg/identity"
	"github.com/jordanlanch/brainbuddy/pkg/metrics"
	"github.com/jordanlanch/brainbuddy/pkg/models"
	"github.com/labstack/echo/v4"
)

// SessionHandler signs users in by nickname
type SessionHandler struct {
	secret    string
	ttl       time.Duration
	validator *validator.Validate
	metrics   *metrics.Metrics
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(secret string, ttl time.Duration) *SessionHandler {
	return &SessionHandler{
		secret:    secret,
		ttl:       ttl,
		validator: validator.New(),
	}
}

// SetMetrics sets the metrics recorder.
func (h *SessionHandler) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// CreateSession derives the user id for a nickname and issues a session token.
// The same nickname always maps to the same user.
// @Summary Sign in with a nickname
// @Description Derive a stable user id from a nickname and issue a bearer session token
// @Tags Session
// @Accept json
// @Produce json
// @Param request body models.SessionRequest true "Nickname"
// @Success 200 {object} models.SessionResponse "Session created"
// @Failure 400 {object} models.ErrorResponse "Empty or invalid nickname"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /api/v1/session [post]
func (h *SessionHandler) CreateSession(c echo.Context) error {
	var req models.SessionRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	userID, err := identity.DeriveID(req.Nickname)
	if err != nil {
		return errors.BadRequest(c, "empty_nickname", "Pick a nickname to continue.")
	}

	token, err := auth.GenerateSessionToken(userID, h.secret, h.ttl)
	if err != nil {
		return errors.InternalError(c, err)
	}

	h.metrics.RecordSessionStarted()

	return c.JSON(http.StatusOK, models.SessionResponse{
		UserID:    userID,
		Nickname:  strings.TrimSpace(req.Nickname),
		Token:     token,
		ExpiresAt: time.Now().Add(h.ttl).Unix(),
	})
}
