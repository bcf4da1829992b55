package httpbus_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/alkime/broadcast/internal/bus/httpbus"
	"github.com/alkime/broadcast/internal/config"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestHealthEndpoint(t *testing.T) {
	cfg := &config.Config{
		Env:        "test",
		Port:       "8080",
		HSTSMaxAge: 31536000,
		LogLevel:   "info",
	}

	srv := httpbus.NewServer(cfg, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "health endpoint should return 200 OK")
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "broadcast-bus")
}

func TestPublishWithoutSubscriberIsAccepted(t *testing.T) {
	cfg := &config.Config{Env: "test"}
	srv := httpbus.NewServer(cfg, testLogger())

	body := `{"type":"data","host":"host-a","body":"aGVsbG8="}`
	req := httptest.NewRequest(http.MethodPost, "/v1/channels/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestPublishRejectsMalformedBody(t *testing.T) {
	cfg := &config.Config{Env: "test"}
	srv := httpbus.NewServer(cfg, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/channels/orders", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
