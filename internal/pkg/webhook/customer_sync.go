package webhook

import (
	"context"
	"time"

	"github.com/regware/paysync/app/models"
	"github.com/regware/paysync/app/repository"
)

// CustomerSynchronizer upserts local customer mirrors from webhook payloads.
// Customers have no downstream propagation beyond their own row.
type CustomerSynchronizer struct {
	customers repository.CustomerRepository
}

// NewCustomerSynchronizer creates a customer synchronizer from an injected repository.
func NewCustomerSynchronizer(customers repository.CustomerRepository) *CustomerSynchronizer {
	return &CustomerSynchronizer{customers: customers}
}

// Sync applies one customer event payload, keyed on the provider customer id.
func (s *CustomerSynchronizer) Sync(ctx context.Context, event *models.WebhookEvent) error {
	_ = ctx
	doc, err := ParseCustomerDocument([]byte(event.PayloadJSON))
	if err != nil {
		return err
	}

	now := time.Now()
	customer := &models.Customer{
		ProviderCustomerID: doc.ID,
		Email:              doc.Email,
		GivenName:          doc.GivenName,
		FamilyName:         doc.FamilyName,
		Phone:              doc.Phone,
		AddressLine1:       doc.AddressLine1,
		AddressLine2:       doc.AddressLine2,
		Locality:           doc.Locality,
		PostalCode:         doc.PostalCode,
		Country:            doc.Country,
		ProviderCreatedAt:  doc.CreatedAt,
		ProviderUpdatedAt:  doc.UpdatedAt,
		SyncStatus:         models.SyncStatusSynced,
		LastSyncedAt:       &now,
	}
	return s.customers.Upsert(customer)
}
