package dashboard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestFrontendServesPage(t *testing.T) {
	e := echo.New()
	NewFrontend().RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	assert.Contains(t, rec.Body.String(), "<title>Dark Flow</title>")
	// browser client mirrors the gateway's transport fallback
	assert.Contains(t, rec.Body.String(), "/live/ws")
	assert.Contains(t, rec.Body.String(), "/live/sse")
}
