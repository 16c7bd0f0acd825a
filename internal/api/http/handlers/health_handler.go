package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/roster-service/internal/observability"
	"github.com/spec-kit/roster-service/internal/persistence"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis, metrics: metrics}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies. A nil handle
// means the service runs on its in-memory fallback, which is always ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if pool := h.postgres.PoolHandle(); pool == nil {
		depStatus["store"] = "in-memory"
	} else if err := pool.Ping(ctx); err != nil {
		depStatus["store"] = err.Error()
		ready = false
	} else {
		depStatus["store"] = "ok"
	}

	if h.redis.ClientHandle() == nil {
		depStatus["preview_store"] = "in-memory"
	} else if err := h.redis.Ping(ctx); err != nil {
		depStatus["preview_store"] = err.Error()
		ready = false
	} else {
		depStatus["preview_store"] = "ok"
	}

	runs, inserted, updated, importErrs := h.metrics.ImportTotals()
	importTotals := fiber.Map{
		"runs":     runs,
		"inserted": inserted,
		"updated":  updated,
		"errors":   importErrs,
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":        "ready",
			"dependencies":  depStatus,
			"import_totals": importTotals,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
