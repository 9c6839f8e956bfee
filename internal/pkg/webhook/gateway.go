package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/regware/paysync/app/models"
	"github.com/regware/paysync/app/repository"
)

// ErrInvalidSignature is returned when a delivery fails signature
// verification. Nothing is persisted in that case.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Enqueuer hands an accepted event off for asynchronous processing. Enqueue
// must be near-instant so the provider gets its acknowledgment quickly.
type Enqueuer interface {
	EnqueueWebhookEvent(eventID uint, providerEventID string) error
}

// Gateway is the ingestion boundary, invoked once per inbound delivery:
// verify signature, record the event exactly once, hand it to processing.
type Gateway struct {
	events       repository.WebhookEventRepository
	dispatcher   *Dispatcher
	enqueuer     Enqueuer
	signatureKey string
}

// NewGateway creates a gateway. When enqueuer is nil accepted events are
// dispatched synchronously, which keeps tests and CLI tooling queue-free.
func NewGateway(events repository.WebhookEventRepository, dispatcher *Dispatcher, enqueuer Enqueuer, signatureKey string) *Gateway {
	return &Gateway{
		events:       events,
		dispatcher:   dispatcher,
		enqueuer:     enqueuer,
		signatureKey: signatureKey,
	}
}

// Ingest handles one webhook delivery. Duplicate deliveries are recorded on
// the existing row and acknowledged without re-triggering side effects.
func (g *Gateway) Ingest(ctx context.Context, delivery Delivery) (*models.WebhookEvent, error) {
	if !VerifySignature(delivery.RawBody, delivery.Signature, g.signatureKey) {
		log.Warnf("[Webhook] Rejected delivery %s: signature verification failed", delivery.EventID)
		return nil, ErrInvalidSignature
	}

	// Deliveries without an event id still need a stable dedup anchor.
	eventID := strings.TrimSpace(delivery.EventID)
	if eventID == "" {
		sum := sha256.Sum256(delivery.RawBody)
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		ProviderEventID: eventID,
		EventType:       delivery.EventType,
		MerchantID:      delivery.MerchantID,
		LocationID:      delivery.LocationID,
		APIVersion:      delivery.APIVersion,
		PayloadJSON:     string(delivery.RawBody),
		SignatureValid:  true,
	}

	created, stored, err := g.events.InsertOrMarkDuplicate(event)
	if err != nil {
		return nil, err
	}
	if !created {
		// Repeated duplicates stay a logging-only concern.
		log.Infof("[Webhook] Duplicate delivery for event %s", eventID)
		return stored, nil
	}

	if g.enqueuer != nil {
		if err := g.enqueuer.EnqueueWebhookEvent(stored.ID, stored.ProviderEventID); err != nil {
			// The event is durably recorded; the retry sweep will pick it up.
			log.Errorf("[Webhook] Enqueue for event %s failed: %v", stored.ProviderEventID, err)
			if markErr := g.events.MarkFailed(stored.ID, err.Error()); markErr != nil {
				return stored, markErr
			}
		}
		return stored, nil
	}

	if err := g.dispatcher.Dispatch(ctx, stored); err != nil {
		// Failure is recorded on the event; the provider still gets a 200 so
		// a single malformed event cannot wedge the endpoint.
		return stored, nil
	}
	return stored, nil
}
