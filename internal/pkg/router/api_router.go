package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/revitalife/revitalife-shop/app/controllers"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max: 120,
		// Webhook deliveries must never be throttled away.
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/webhooks/stripe"
		},
	}))

	api.Get("/keep-alive", controllers.HandleKeepAlive)

	api.Post("/checkout/session", controllers.HandleCreateCheckoutSession)
	api.Get("/orders/details", controllers.HandleOrderDetails)

	api.Post("/webhooks/stripe", controllers.HandleStripeWebhook)

	account := api.Group("/account")
	account.Post("/billing-details", controllers.HandleBillingDetails)
	account.Post("/subscription-details", controllers.HandleSubscriptionDetails)
	account.Post("/verify-customer", controllers.HandleVerifyCustomer)
	account.Post("/portal-session", controllers.HandlePortalSession)
	account.Post("/shipping-address", controllers.HandleUpdateShippingAddress)

	api.Get("/products/prices", controllers.HandleProductPrices)

	signups := api.Group("/signups")
	signups.Post("/app", controllers.HandleAppSignup)
	signups.Post("/newsletter", controllers.HandleNewsletterSignup)

	basket := api.Group("/basket")
	basket.Get("/", controllers.HandleGetBasket)
	basket.Post("/items", controllers.HandleAddBasketItem)
	basket.Put("/items/:id", controllers.HandleUpdateBasketItem)
	basket.Delete("/items/:id", controllers.HandleRemoveBasketItem)
	basket.Delete("/", controllers.HandleClearBasket)
	basket.Post("/checkout", controllers.HandleBasketCheckout)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
