package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/regware/paysync/app/controllers"
)

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
}

// PostReconciliation records an expected-vs-actual comparison for a payment.
func (s *APIServer) PostReconciliation(c *fiber.Ctx) error {
	return controllers.HandleCreateReconciliation(c)
}

// GetReconciliations lists reconciliation records for a provider payment id.
func (s *APIServer) GetReconciliations(c *fiber.Ctx) error {
	return controllers.HandleListReconciliations(c)
}

// PostReconciliationResolve marks one reconciliation record as resolved.
func (s *APIServer) PostReconciliationResolve(c *fiber.Ctx) error {
	return controllers.HandleResolveReconciliation(c)
}

// GetWebhookHealth reports per-status webhook counts for a recent window.
func (s *APIServer) GetWebhookHealth(c *fiber.Ctx) error {
	return controllers.HandleWebhookHealth(c)
}

// GetPaymentSummary reports payment and refund totals for a date range.
func (s *APIServer) GetPaymentSummary(c *fiber.Ctx) error {
	return controllers.HandlePaymentSummary(c)
}

// RegisterHandlers attaches all v1 API routes to the given router group.
func RegisterHandlers(router fiber.Router, server *APIServer) {
	router.Get("/ping", server.GetPing)

	router.Post("/reconciliations", server.PostReconciliation)
	router.Get("/reconciliations/:paymentID", server.GetReconciliations)
	router.Post("/reconciliations/:id/resolve", server.PostReconciliationResolve)

	router.Get("/health/webhooks", server.GetWebhookHealth)
	router.Get("/summary/payments", server.GetPaymentSummary)
}
