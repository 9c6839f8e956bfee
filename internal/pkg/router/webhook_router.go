package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/regware/paysync/app/controllers"
)

type WebhookRouter struct {
}

func (h WebhookRouter) InstallRouter(app *fiber.App) {
	// Provider callbacks. No rate limiter here: the provider retries on
	// non-2xx and dedup makes replays harmless.
	webhooks := app.Group("/webhooks")
	webhooks.Post("/square", controllers.HandleProviderWebhook)
}

func NewWebhookRouter() *WebhookRouter {
	return &WebhookRouter{}
}
