package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andresuchdata/pharmastock/backend-go/internal/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewRouter_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(nil, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"pharmastock-intelligence"}`, w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get(middleware.RequestIDHeader))
}

func TestNewRouter_NoServicesHasNoIntelligenceRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(&Services{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/intelligence/abc", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestID_Generated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(nil, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " ", "*"})
	assert.True(t, all)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, origins)

	origins, all = normalizeAllowedOrigins([]string{"http://a.test"})
	assert.False(t, all)
	assert.Equal(t, []string{"http://a.test"}, origins)
}
