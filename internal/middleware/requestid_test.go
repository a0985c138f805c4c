package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// The ID exposed to the client must be the same one downstream handlers
// read from the context, so chat responses and logs correlate.
func TestRequestID_ContextMatchesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())

	var seen string
	r.POST("/api/v1/chat", func(c *gin.Context) {
		if v, ok := c.Get(RequestIDKey); ok {
			seen, _ = v.(string)
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/chat", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}

	header := w.Header().Get("X-Request-ID")
	if header == "" || seen != header {
		t.Fatalf("context id %q does not match header %q", seen, header)
	}
	if _, err := uuid.Parse(header); err != nil {
		t.Fatalf("request id is not a uuid: %v", err)
	}
}
