package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newEngine(h ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(h...)
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func do(r *gin.Engine, header, value string) int {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := AuthConfig{Enabled: true, APIKeys: []string{"sk_test_123456"}}
	r := newEngine(APIKeyAuth(cfg, zap.NewNop()))

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"缺少key", "", "", http.StatusUnauthorized},
		{"无效key", "X-API-Key", "nope", http.StatusForbidden},
		{"X-API-Key", "X-API-Key", "sk_test_123456", http.StatusOK},
		{"Bearer", "Authorization", "Bearer sk_test_123456", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(r, tt.header, tt.value))
		})
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	r := newEngine(APIKeyAuth(AuthConfig{}, zap.NewNop()))
	assert.Equal(t, http.StatusOK, do(r, "", ""))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk_t****3456", maskAPIKey("sk_test_123456"))
}

func TestRateLimit(t *testing.T) {
	l := NewRateLimiter(1, 2)
	r := newEngine(RateLimit(l))

	assert.Equal(t, http.StatusOK, do(r, "", ""))
	assert.Equal(t, http.StatusOK, do(r, "", ""))
	assert.Equal(t, http.StatusTooManyRequests, do(r, "", ""))

	st := l.Stats()
	assert.Equal(t, int64(2), st.AllowedTotal)
	assert.Equal(t, int64(1), st.RejectedTotal)
}

func TestRateLimit_Nil(t *testing.T) {
	r := newEngine(RateLimit(nil))
	assert.Equal(t, http.StatusOK, do(r, "", ""))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
