package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

type swaggerDoc struct {
	Swagger string `json:"swagger"`
	Info    struct {
		Title   string `json:"title"`
		Version string `json:"version"`
	} `json:"info"`
	BasePath    string                               `json:"basePath"`
	Paths       map[string]map[string]map[string]any `json:"paths"`
	Definitions map[string]any                       `json:"definitions"`
}

func readDoc(t *testing.T) swaggerDoc {
	t.Helper()

	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc), "rendered template must be valid JSON")
	return doc
}

func TestSwaggerDoc_Renders(t *testing.T) {
	doc := readDoc(t)

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "BrainBuddy API", doc.Info.Title)
	assert.Equal(t, "/", doc.BasePath)
}

func TestSwaggerDoc_ListsEveryRoute(t *testing.T) {
	doc := readDoc(t)

	routes := map[string]string{
		"/api/v1/session":          "post",
		"/api/v1/usage":            "get",
		"/api/v1/ask":              "post",
		"/api/v1/billing/status":   "get",
		"/api/v1/billing/checkout": "post",
		"/api/v1/billing/return":   "get",
		"/webhook/stripe":          "post",
		"/health":                  "get",
	}
	for path, method := range routes {
		require.Contains(t, doc.Paths, path)
		assert.Contains(t, doc.Paths[path], method, path)
	}

	for _, name := range []string{"models.AskRequest", "models.AskResponse", "models.UsageResponse", "models.ErrorResponse"} {
		assert.Contains(t, doc.Definitions, name)
	}
}

func TestSwaggerHandler_ServesDoc(t *testing.T) {
	e := echo.New()
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title": "BrainBuddy API"`)
}
