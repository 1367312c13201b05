package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cooksy/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			common.WriteError(c, common.ErrInvalidRequest)
			return
		}
		c.JSON(http.StatusOK, body)
	})
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)
	now := rl.lastTime

	assert.True(t, rl.allowAt(now))
	assert.True(t, rl.allowAt(now))
	assert.False(t, rl.allowAt(now))

	// 半個令牌不足以放行，累積到一個才放行
	assert.False(t, rl.allowAt(now.Add(250*time.Millisecond)))
	assert.True(t, rl.allowAt(now.Add(500*time.Millisecond)))
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(RateLimit(2, time.Minute))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)

	w := do(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, common.ErrCodeTooManyRequests, errorCode(t, w))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestDeduplication(t *testing.T) {
	d := NewDeduplicator(time.Minute)
	defer d.Stop()
	r := newEngine(d.Middleware())

	w := do(r, http.MethodPost, "/echo", `{"content":"halo"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"content":"halo"}`, w.Body.String())

	w = do(r, http.MethodPost, "/echo", `{"content":"halo"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// 不同內容不受影響
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/echo", `{"content":"lagi"}`).Code)

	// GET 不去重
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
}

func TestDeduplicatorPrune(t *testing.T) {
	d := NewDeduplicator(time.Second)
	defer d.Stop()

	now := time.Now()
	assert.False(t, d.seen("a", now))
	assert.True(t, d.seen("a", now.Add(500*time.Millisecond)))

	d.prune(now.Add(2 * time.Second))
	assert.False(t, d.seen("a", now.Add(2*time.Second)))
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(16))

	w := do(r, http.MethodPost, "/echo", `{"content":"this body is too long"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, common.ErrCodeRequestTooLarge, errorCode(t, w))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/echo", `{"a":"b"}`).Code)
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery(), Logger())

	w := do(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, common.ErrCodeInternalError, errorCode(t, w))
}
