package webhook

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/regware/paysync/app/models"
	"github.com/regware/paysync/app/repository"
	"gorm.io/gorm"
)

// CompletionReconciler is notified when a payment reaches COMPLETED so a
// reconciliation record can be produced. Optional; nil disables the trigger.
type CompletionReconciler interface {
	ReconcilePaymentCompletion(ctx context.Context, payment *models.Payment) error
}

// PaymentSynchronizer upserts local payment mirrors from webhook payloads and
// propagates the resulting domain status into the linked registration.
type PaymentSynchronizer struct {
	payments   repository.PaymentRepository
	customers  repository.CustomerRepository
	refunds    repository.RefundRepository
	propagator *RegistrationPropagator
	reconciler CompletionReconciler
}

// NewPaymentSynchronizer creates a payment synchronizer from injected repositories.
func NewPaymentSynchronizer(
	payments repository.PaymentRepository,
	customers repository.CustomerRepository,
	refunds repository.RefundRepository,
	propagator *RegistrationPropagator,
	reconciler CompletionReconciler,
) *PaymentSynchronizer {
	return &PaymentSynchronizer{
		payments:   payments,
		customers:  customers,
		refunds:    refunds,
		propagator: propagator,
		reconciler: reconciler,
	}
}

// Sync applies one payment event payload. It is safe to run twice on the
// same payload and must not assume payment.created arrived before
// payment.updated; the upsert creates the row either way.
func (s *PaymentSynchronizer) Sync(ctx context.Context, event *models.WebhookEvent) error {
	doc, err := ParsePaymentDocument([]byte(event.PayloadJSON))
	if err != nil {
		return err
	}

	var customerID *uint
	if doc.CustomerID != "" {
		customer, err := s.customers.GetByProviderCustomerID(doc.CustomerID)
		switch {
		case err == nil:
			customerID = &customer.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Customer event may simply not have arrived yet.
			log.Infof("[Webhook] Payment %s references unsynced customer %s", doc.ID, doc.CustomerID)
		default:
			return err
		}
	}

	registrationID := parseRegistrationRef(doc.ReferenceID)

	now := time.Now()
	payment := &models.Payment{
		ProviderPaymentID: doc.ID,
		LocationID:        doc.LocationID,
		RegistrationID:    registrationID,
		CustomerID:        customerID,
		AmountCharged:     doc.AmountCharged,
		AmountTotal:       doc.AmountTotal,
		Currency:          doc.Currency,
		SourceType:        doc.SourceType,
		CardBrand:         doc.CardBrand,
		CardLast4:         doc.CardLast4,
		ProviderStatus:    doc.Status,
		BuyerReference:    doc.ReferenceID,
		ProviderCreatedAt: doc.CreatedAt,
		ProviderUpdatedAt: doc.UpdatedAt,
		SyncStatus:        models.SyncStatusSynced,
		LastSyncedAt:      &now,
	}
	if err := s.payments.Upsert(payment); err != nil {
		return err
	}

	// Refund events can land before their payment does; link those
	// orphaned rows now that the payment exists locally.
	if err := s.refunds.LinkPayment(payment.ProviderPaymentID, payment.ID); err != nil {
		return err
	}

	if registrationID != nil {
		if err := s.propagator.Propagate(ctx, *registrationID, payment, doc.CustomerID); err != nil {
			return err
		}
	}

	if s.reconciler != nil && doc.Status == models.ProviderPaymentCompleted {
		if err := s.reconciler.ReconcilePaymentCompletion(ctx, payment); err != nil {
			// Reconciliation is an audit concern; a failure there must not
			// fail the payment sync itself.
			log.Errorf("[Webhook] Reconciliation after payment %s completion failed: %v", payment.ProviderPaymentID, err)
		}
	}

	return nil
}

// parseRegistrationRef reads the buyer-supplied reference as a registration
// id. References that are not numeric belong to other order flows.
func parseRegistrationRef(reference string) *uint {
	if reference == "" {
		return nil
	}
	id, err := strconv.ParseUint(reference, 10, 32)
	if err != nil || id == 0 {
		return nil
	}
	u := uint(id)
	return &u
}
