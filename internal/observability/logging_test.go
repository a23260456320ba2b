package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-import/internal/config"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "DEBUG"})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger(config.LoggerConfig{Level: "loud"})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestRequestLogger(t *testing.T) {
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.requestTotal.WithLabelValues("/ok", "GET", "200")))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.requestTotal.WithLabelValues("/teapot", "GET", "418")))
}
