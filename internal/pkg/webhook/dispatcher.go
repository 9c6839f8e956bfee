package webhook

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/regware/paysync/app/models"
	"github.com/regware/paysync/app/repository"
)

// DefaultMaxRetries bounds how often a failed event is re-dispatched before
// it is left in "failed" for manual inspection.
const DefaultMaxRetries = 3

// Dispatcher routes stored webhook events to the entity synchronizers and
// drives the event status machine:
// received -> processing -> processed | skipped | failed.
type Dispatcher struct {
	events    repository.WebhookEventRepository
	payments  *PaymentSynchronizer
	customers *CustomerSynchronizer
	refunds   *RefundSynchronizer
}

// NewDispatcher creates a dispatcher from the event store and synchronizers.
func NewDispatcher(
	events repository.WebhookEventRepository,
	payments *PaymentSynchronizer,
	customers *CustomerSynchronizer,
	refunds *RefundSynchronizer,
) *Dispatcher {
	return &Dispatcher{
		events:    events,
		payments:  payments,
		customers: customers,
		refunds:   refunds,
	}
}

// Dispatch processes one stored event to a terminal status. A synchronizer
// error marks the event failed and bumps its retry counter; the error is
// returned so queue workers can count the attempt.
func (d *Dispatcher) Dispatch(ctx context.Context, event *models.WebhookEvent) error {
	if err := d.events.UpdateStatus(event.ID, models.WebhookStatusProcessing); err != nil {
		return err
	}

	var syncErr error
	switch event.EventType {
	case EventPaymentCreated, EventPaymentUpdated:
		syncErr = d.payments.Sync(ctx, event)
	case EventCustomerCreated, EventCustomerUpdated:
		syncErr = d.customers.Sync(ctx, event)
	case EventRefundCreated, EventRefundUpdated:
		syncErr = d.refunds.Sync(ctx, event)
	default:
		// Unrecognized types are skipped by policy, not failed.
		log.Infof("[Webhook] Skipping event %s with unhandled type %s", event.ProviderEventID, event.EventType)
		return d.events.MarkProcessed(event.ID, models.WebhookStatusSkipped)
	}

	if syncErr != nil {
		log.Errorf("[Webhook] Event %s (%s) failed: %v", event.ProviderEventID, event.EventType, syncErr)
		if err := d.events.MarkFailed(event.ID, syncErr.Error()); err != nil {
			return err
		}
		return syncErr
	}

	return d.events.MarkProcessed(event.ID, models.WebhookStatusProcessed)
}

// DispatchByID loads an event and processes it. Queue workers and the retry
// sweep go through here.
func (d *Dispatcher) DispatchByID(ctx context.Context, eventID uint) error {
	event, err := d.events.GetByID(eventID)
	if err != nil {
		return fmt.Errorf("load webhook event %d: %w", eventID, err)
	}
	return d.Dispatch(ctx, event)
}
