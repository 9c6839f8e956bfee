package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/regware/paysync/app/repository"
	"github.com/regware/paysync/internal/pkg/env"
	"github.com/regware/paysync/internal/pkg/jobqueue"
	"github.com/regware/paysync/internal/pkg/reconcile"
	"github.com/regware/paysync/internal/pkg/webhook"
)

// webhookEnvelope covers the transport-level fields of an inbound delivery.
// The entity sub-document is parsed later by the synchronizers.
type webhookEnvelope struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	Type       string `json:"type"`
	MerchantID string `json:"merchant_id"`
	LocationID string `json:"location_id"`
	APIVersion string `json:"api_version"`
}

// HandleProviderWebhook is the inbound webhook endpoint. It acknowledges
// every delivery with 200 (duplicates included) unless the signature fails,
// which returns 401 before anything is persisted.
func HandleProviderWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := firstHeaderValue(c, "X-Square-HmacSha256-Signature", "X-Webhook-Signature")

	var envelope webhookEnvelope
	// A body the synchronizers cannot parse still gets recorded; the
	// dispatcher marks it failed with a useful error.
	_ = json.Unmarshal(rawBody, &envelope)
	eventType := envelope.EventType
	if eventType == "" {
		eventType = envelope.Type
	}

	gateway := buildGateway()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	event, err := gateway.Ingest(ctx, webhook.Delivery{
		EventID:    envelope.EventID,
		EventType:  eventType,
		MerchantID: envelope.MerchantID,
		LocationID: envelope.LocationID,
		APIVersion: envelope.APIVersion,
		Signature:  signature,
		RawBody:    rawBody,
	})
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "status": event.Status})
}

// buildGateway wires the ingestion pipeline against the global DB handle.
// When the job queue manager is running, accepted events are processed
// asynchronously; otherwise the dispatcher runs inline.
func buildGateway() *webhook.Gateway {
	repos := repository.GetGlobalRepositories()

	engine := reconcile.NewEngine(reconcile.ConfigFromEnv(), repos.Reconciliation, repos.Payment, repos.Registration)
	propagator := webhook.NewRegistrationPropagator(repos.Registration)
	dispatcher := webhook.NewDispatcher(
		repos.WebhookEvent,
		webhook.NewPaymentSynchronizer(repos.Payment, repos.Customer, repos.Refund, propagator, engine),
		webhook.NewCustomerSynchronizer(repos.Customer),
		webhook.NewRefundSynchronizer(repos.Refund, repos.Payment),
	)

	var enqueuer webhook.Enqueuer
	if manager := jobqueue.GetManager(); manager != nil {
		enqueuer = manager.GetQueue()
	}

	return webhook.NewGateway(repos.WebhookEvent, dispatcher, enqueuer, env.GetEnv("SQUARE_WEBHOOK_SIGNATURE_KEY", ""))
}

func firstHeaderValue(c *fiber.Ctx, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.Get(name)); v != "" {
			return v
		}
	}
	return ""
}
