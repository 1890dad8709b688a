package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/revitalife/revitalife-shop/app/models"
	"github.com/revitalife/revitalife-shop/internal/pkg/database"
	"github.com/revitalife/revitalife-shop/internal/pkg/payments"
	"github.com/revitalife/revitalife-shop/internal/pkg/sheets"
)

type signupRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=150"`
	Email         string `json:"email" validate:"required,email,max=200"`
	Phone         string `json:"phone" validate:"max=32"`
	Notifications bool   `json:"notifications"`
}

// HandleAppSignup stores an early-access signup.
func HandleAppSignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid signup data", err)
	}

	signup := &models.AppSignup{
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		Notifications: req.Notifications,
	}

	repo := payments.NewRepository(database.GetDB())
	if err := repo.CreateAppSignup(signup); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to save signup", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "id": signup.ID})
}

// HandleNewsletterSignup appends the signup to the marketing spreadsheet.
func HandleNewsletterSignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := validate.Struct(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid signup data", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := sheets.NewClientFromEnv(ctx)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Signup service is not available", err)
	}

	row := []interface{}{
		strings.TrimSpace(req.Name),
		strings.TrimSpace(req.Email),
		strings.TrimSpace(req.Phone),
		time.Now().UTC().Format(time.RFC3339),
	}
	if err := client.AppendRow(ctx, row); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to save signup", err)
	}

	return c.JSON(fiber.Map{"success": true})
}
