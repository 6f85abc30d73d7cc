package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type probe struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	service      string
	version      string
	dependencies map[string]Pinger
	timeout      time.Duration
}

// NewHealthHandler builds the probe handler. Only configured dependencies
// take part in readiness; an empty map is always ready.
func NewHealthHandler(service, version string, dependencies map[string]Pinger) *HealthHandler {
	return &HealthHandler{service: service, version: version, dependencies: dependencies, timeout: readinessTimeout}
}

// Live answers as long as the process serves requests.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive", "service": h.service, "version": h.version})
}

// Ready pings every dependency concurrently under one deadline.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	report, ready := h.check(c.UserContext())
	if ready {
		return c.JSON(fiber.Map{"status": "ready", "dependencies": report})
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": report,
		},
	})
}

func (h *HealthHandler) check(parent context.Context) (map[string]probe, bool) {
	ctx, cancel := context.WithTimeout(parent, h.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report = make(map[string]probe, len(h.dependencies))
		ready  = true
	)
	for name, dep := range h.dependencies {
		wg.Add(1)
		go func(name string, dep Pinger) {
			defer wg.Done()
			start := time.Now()
			err := dep.Ping(ctx)
			result := probe{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				result.Status = "unavailable"
				result.Error = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			report[name] = result
			if err != nil {
				ready = false
			}
		}(name, dep)
	}
	wg.Wait()
	return report, ready
}
