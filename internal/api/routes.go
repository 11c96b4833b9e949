package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *fiber.App, handler *Handler, corsOrigins string) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowMethods: "GET,POST",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
		TimeFormat: time.RFC3339,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	api.Get("/health", handler.GetHealth)
	api.Get("/solar", handler.GetSolar)
	api.Get("/meteo", handler.GetMeteo)
	api.Get("/pkp/:id", handler.GetDepartures)
	api.Get("/moon", handler.GetMoon)

	// Map routes; the literal prefixes must be registered before the generic tile route
	maps := api.Group("/map")
	maps.Get("/info", handler.GetMapInfo)
	maps.Get("/radar_static/:ts/:z/:x/:y.png", handler.GetStaticRadarTile)
	maps.Get("/owm/:layer/:z/:x/:y", handler.GetOWMTile)
	maps.Get("/:type/:ts/:z/:x/:y", handler.GetTile)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})
}
