package webhook

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/regware/paysync/app/models"
	"github.com/regware/paysync/app/repository"
	"gorm.io/gorm"
)

// RefundSynchronizer upserts local refund mirrors from webhook payloads.
type RefundSynchronizer struct {
	refunds  repository.RefundRepository
	payments repository.PaymentRepository
}

// NewRefundSynchronizer creates a refund synchronizer from injected repositories.
func NewRefundSynchronizer(refunds repository.RefundRepository, payments repository.PaymentRepository) *RefundSynchronizer {
	return &RefundSynchronizer{refunds: refunds, payments: payments}
}

// Sync applies one refund event payload. A refund whose payment was never
// synced is still recorded standalone; the link is backfilled the next time
// a delivery for either entity arrives.
func (s *RefundSynchronizer) Sync(ctx context.Context, event *models.WebhookEvent) error {
	_ = ctx
	doc, err := ParseRefundDocument([]byte(event.PayloadJSON))
	if err != nil {
		return err
	}

	var paymentID *uint
	if doc.PaymentID != "" {
		payment, err := s.payments.GetByProviderPaymentID(doc.PaymentID)
		switch {
		case err == nil:
			paymentID = &payment.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			log.Warnf("[Webhook] Refund %s references unknown payment %s, storing standalone", doc.ID, doc.PaymentID)
		default:
			return err
		}
	}

	now := time.Now()
	refund := &models.Refund{
		ProviderRefundID:  doc.ID,
		ProviderPaymentID: doc.PaymentID,
		PaymentID:         paymentID,
		Amount:            doc.Amount,
		Currency:          doc.Currency,
		Status:            doc.Status,
		Reason:            doc.Reason,
		ProviderCreatedAt: doc.CreatedAt,
		ProviderUpdatedAt: doc.UpdatedAt,
		LastSyncedAt:      &now,
	}
	return s.refunds.Upsert(refund)
}
