package repository

import (
	"github.com/regware/paysync/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// customerRepository implements the CustomerRepository interface
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository instance
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Upsert writes the provider's latest customer report keyed on the provider
// customer id.
func (r *customerRepository) Upsert(customer *models.Customer) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider_customer_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"email",
			"given_name",
			"family_name",
			"phone",
			"address_line1",
			"address_line2",
			"locality",
			"postal_code",
			"country",
			"provider_created_at",
			"provider_updated_at",
			"sync_status",
			"last_synced_at",
			"updated_at",
		}),
	}).Create(customer).Error; err != nil {
		return err
	}

	return r.db.Where("provider_customer_id = ?", customer.ProviderCustomerID).
		First(customer).Error
}

func (r *customerRepository) GetByProviderCustomerID(providerCustomerID string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.Where("provider_customer_id = ?", providerCustomerID).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}
