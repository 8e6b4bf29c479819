package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"realty_backend/internal/catalog"
	"realty_backend/pkg/database"
)

// Health reports database reachability and the age of the listing snapshot.
func Health(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"

	if err := database.Ping(c.UserContext()); err != nil {
		dbStatus = "unavailable"
	}
	if dbStatus != "ok" {
		status = "degraded"
	}

	body := fiber.Map{
		"status":     status,
		"database":   dbStatus,
		"properties": len(catalog.Default.Properties()),
		"agents":     len(catalog.Default.Agents()),
	}
	if loaded := catalog.Default.LoadedAt(); !loaded.IsZero() {
		body["catalog_loaded_at"] = loaded.UTC().Format(time.RFC3339)
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(body)
}
