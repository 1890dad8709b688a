package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/revitalife/revitalife-shop/internal/pkg/database"
	"github.com/revitalife/revitalife-shop/internal/pkg/payments"
)

// HandleKeepAlive runs a cheap query so the database connection does not
// go idle on hosts that pause inactive instances.
func HandleKeepAlive(c *fiber.Ctx) error {
	repo := payments.NewRepository(database.GetDB())
	count, err := repo.CountProfiles()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Database unreachable", err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"profileCount": count,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}
