package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/regware/paysync/app/models"
	"github.com/regware/paysync/app/repository"
	"gorm.io/gorm"
)

// MapProviderStatus translates the provider's payment status vocabulary into
// the registration domain vocabulary. The mapping is total: any status the
// table does not know stays pending_payment.
func MapProviderStatus(providerStatus string) string {
	switch strings.ToUpper(strings.TrimSpace(providerStatus)) {
	case models.ProviderPaymentCompleted:
		return models.RegistrationStatusConfirmed
	case models.ProviderPaymentFailed:
		return models.RegistrationStatusFailed
	case models.ProviderPaymentCanceled:
		return models.RegistrationStatusCancelled
	default:
		return models.RegistrationStatusPendingPayment
	}
}

// MergeMetadata overlays the fields of update onto the existing metadata
// JSON document without dropping previously recorded keys.
func MergeMetadata(existingJSON string, update map[string]interface{}) (string, error) {
	merged := make(map[string]interface{})
	if strings.TrimSpace(existingJSON) != "" {
		if err := json.Unmarshal([]byte(existingJSON), &merged); err != nil {
			// A corrupt document is replaced rather than kept forever.
			log.Warnf("[Webhook] Registration metadata is not valid JSON, replacing: %v", err)
			merged = make(map[string]interface{})
		}
	}
	for k, v := range update {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RegistrationPropagator pushes a payment's domain status into the external
// registration entity.
type RegistrationPropagator struct {
	registrations repository.RegistrationRepository
}

// NewRegistrationPropagator creates a propagator from an injected registration repository.
func NewRegistrationPropagator(registrations repository.RegistrationRepository) *RegistrationPropagator {
	return &RegistrationPropagator{registrations: registrations}
}

// Propagate writes the mapped domain status, the payment linkage and the
// merged processor metadata onto the registration. The payment-completed
// timestamp is set exactly once; later duplicate or out-of-order COMPLETED
// reports never move it.
func (p *RegistrationPropagator) Propagate(ctx context.Context, registrationID uint, payment *models.Payment, providerCustomerID string) error {
	_ = ctx
	if registrationID == 0 {
		return errors.New("registration id is required")
	}

	reg, err := p.registrations.GetByID(registrationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Webhook] Payment %s references unknown registration %d", payment.ProviderPaymentID, registrationID)
			return nil
		}
		return err
	}

	domainStatus := MapProviderStatus(payment.ProviderStatus)

	metadata, err := MergeMetadata(reg.PaymentMetadataJSON, map[string]interface{}{
		"provider_payment_id": payment.ProviderPaymentID,
		"provider_status":     payment.ProviderStatus,
		"amount_total":        payment.AmountTotal,
		"currency":            payment.Currency,
		"synced_at":           time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"status":                domainStatus,
		"provider_payment_id":   payment.ProviderPaymentID,
		"payment_metadata_json": metadata,
	}
	if providerCustomerID != "" {
		fields["provider_customer_id"] = providerCustomerID
	}
	if err := p.registrations.UpdatePaymentFields(registrationID, fields); err != nil {
		return err
	}

	if domainStatus == models.RegistrationStatusConfirmed {
		completedAt := time.Now()
		if payment.ProviderUpdatedAt != nil {
			completedAt = *payment.ProviderUpdatedAt
		}
		// The repository write is conditional on the column still being
		// null, so racing completion reports cannot move the timestamp.
		if err := p.registrations.SetPaymentCompletedAt(registrationID, completedAt); err != nil {
			return err
		}
	}

	return nil
}
