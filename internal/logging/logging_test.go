package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	if _, err := New("debug", true); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if _, err := New("loud", false); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestMiddleware_LogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	engine := gin.New()
	engine.Use(func(c *gin.Context) { c.Set(RequestIDKey, "req-1"); c.Next() })
	engine.Use(Middleware(zap.New(core)))
	engine.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	engine.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/ok", "/missing"} {
		req, _ := http.NewRequest("GET", path, nil)
		engine.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	if entries[0].ContextMap()["request_id"] != "req-1" {
		t.Errorf("Expected request_id req-1, got %v", entries[0].ContextMap()["request_id"])
	}
	if entries[1].Level != zap.WarnLevel {
		t.Errorf("Expected warn level for 404, got %s", entries[1].Level)
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Error("Expected a no-op logger")
	}
}
