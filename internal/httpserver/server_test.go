package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	cfgpkg "github.com/taoyao-code/midi-parser/internal/config"
)

func TestServer_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ready := false
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("midi_sessions 0"))
	})
	s := New(cfgpkg.HTTPConfig{Addr: ":0"}, "", metricsHandler, func() bool { return ready }, nil)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, get("/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get("/readyz").Code)
	ready = true
	assert.Equal(t, http.StatusOK, get("/readyz").Code)
	assert.Contains(t, get("/metrics").Body.String(), "midi_sessions")
}

func TestServer_BodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := New(cfgpkg.HTTPConfig{MaxBodyBytes: 8}, "/metrics", nil, nil, nil)
	s.Engine().POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"data":"F0010203040506"}`))
	req.Header.Set("Content-Type", "application/json")
	s.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
