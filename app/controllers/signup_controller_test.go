package controllers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestAppSignupRejectsInvalidData(t *testing.T) {
	app := fiber.New()
	app.Post("/api/signups/app", HandleAppSignup)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "missing name", body: map[string]interface{}{"email": "jo@example.com"}},
		{name: "missing email", body: map[string]interface{}{"name": "Jo"}},
		{name: "bad email", body: map[string]interface{}{"name": "Jo", "email": "not-an-email"}},
		{name: "name too short", body: map[string]interface{}{"name": "J", "email": "jo@example.com"}},
	}

	for _, tt := range tests {
		status, body := postJSON(t, app, "/api/signups/app", tt.body)
		assert.Equal(t, fiber.StatusBadRequest, status, tt.name)
		assert.Equal(t, "Invalid signup data", body["error"], tt.name)
	}
}

func TestNewsletterSignupRejectsInvalidData(t *testing.T) {
	app := fiber.New()
	app.Post("/api/signups/newsletter", HandleNewsletterSignup)

	status, body := postJSON(t, app, "/api/signups/newsletter", map[string]interface{}{
		"name": "Jo Bloggs",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid signup data", body["error"])
}
