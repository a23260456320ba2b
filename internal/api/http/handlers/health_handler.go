package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is a dependency probed by the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	checks      map[string]Pinger
	timeout     time.Duration
}

// NewHealthHandler returns a handler probing checks by name. A nil check
// reports the dependency as not configured.
func NewHealthHandler(serviceName, version string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, checks: checks, timeout: 2 * time.Second}
}

// Live reports that the process serves requests.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready probes every dependency and answers 503 when one fails.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := fiber.Map{}
	ready := true
	for _, name := range names {
		check := h.checks[name]
		switch {
		case check == nil:
			status[name] = "not configured"
			ready = false
		default:
			if err := check.Ping(ctx); err != nil {
				status[name] = err.Error()
				ready = false
			} else {
				status[name] = "ok"
			}
		}
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "one or more dependencies unavailable",
				"details": status,
			},
		})
	}
	return c.JSON(fiber.Map{"status": "ready", "dependencies": status})
}
