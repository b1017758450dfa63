package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jordanlanch/brainbuddy/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// captureLog redirects the standard logger to a buffer for the duration of fn
func captureLog(fn func()) string {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)
	fn()
	return buf.String()
}

func TestValidationError(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/v1/session")

	logged := captureLog(func() {
		require.NoError(t, ValidationError(c, errors.New("Key: 'SessionRequest.Nickname' failed")))
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := parseBody(t, rec)
	assert.Equal(t, "validation_error", body.Error)
	assert.NotContains(t, rec.Body.String(), "SessionRequest")
	assert.Contains(t, logged, "SessionRequest.Nickname")
	assert.Contains(t, logged, "/api/v1/session")
}

func TestStorageError_HidesDetails(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/v1/usage")

	logged := captureLog(func() {
		require.NoError(t, StorageError(c, errors.New("open /data/usage.json: permission denied")))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "storage_error", parseBody(t, rec).Error)
	assert.NotContains(t, rec.Body.String(), "/data/usage.json")
	assert.Contains(t, logged, "permission denied")
}

func TestInternalError_HidesDetails(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/x")

	captureLog(func() {
		require.NoError(t, InternalError(c, errors.New("nil pointer in handler")))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "nil pointer")
}

func TestBadRequest_PassesMessage(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/v1/ask")
	require.NoError(t, BadRequest(c, "empty_question", "Please type a question first."))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := parseBody(t, rec)
	assert.Equal(t, "empty_question", body.Error)
	assert.Equal(t, "Please type a question first.", body.Message)
}

func TestAllErrors_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		call   func(c echo.Context) error
		status int
		code   string
	}{
		{"unauthorized", func(c echo.Context) error { return UnauthorizedError(c, "missing_token") }, http.StatusUnauthorized, "missing_token"},
		{"quota", QuotaExceeded, http.StatusPaymentRequired, "quota_exceeded"},
		{"upgrade", UpgradeUnavailable, http.StatusServiceUnavailable, "upgrade_unavailable"},
		{"payment", func(c echo.Context) error { return PaymentProviderError(c, errors.New("timeout")) }, http.StatusBadGateway, "payment_provider_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/")
			captureLog(func() {
				require.NoError(t, tt.call(c))
			})
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, parseBody(t, rec).Error)
			assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
		})
	}
}
