package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics collector. The collectors
// live in the default Prometheus registry, so only the first serviceName
// counts.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// RegisterMetrics exposes /metrics on app and counts every later request.
func RegisterMetrics(app *fiber.App, p *fiberprometheus.FiberPrometheus) {
	p.RegisterAt(app, "/metrics")
	app.Use(p.Middleware)
}
