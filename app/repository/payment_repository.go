package repository

import (
	"time"

	"github.com/regware/paysync/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Upsert writes the provider's latest payment report keyed on the provider
// payment id. The conflict clause keeps two racing synchronizers from both
// attempting an insert.
func (r *paymentRepository) Upsert(payment *models.Payment) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider_payment_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"location_id",
			"registration_id",
			"customer_id",
			"amount_charged",
			"amount_total",
			"currency",
			"source_type",
			"card_brand",
			"card_last4",
			"provider_status",
			"buyer_reference",
			"provider_created_at",
			"provider_updated_at",
			"sync_status",
			"last_synced_at",
			"updated_at",
		}),
	}).Create(payment).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("provider_payment_id = ?", payment.ProviderPaymentID).
		First(payment).Error
}

func (r *paymentRepository) GetByProviderPaymentID(providerPaymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.Where("provider_payment_id = ?", providerPaymentID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) ListByRegistrationID(registrationID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("registration_id = ?", registrationID).
		Order("created_at desc").
		Find(&payments).Error
	return payments, err
}

// TotalsByDateRange sums completed payment amounts between start and end.
func (r *paymentRepository) TotalsByDateRange(start, end time.Time) (int64, int64, error) {
	type totals struct {
		Count  int64
		Amount int64
	}
	var t totals
	err := r.db.Model(&models.Payment{}).
		Select("count(*) as count, coalesce(sum(amount_total), 0) as amount").
		Where("provider_status = ? AND created_at >= ? AND created_at < ?", models.ProviderPaymentCompleted, start, end).
		Scan(&t).Error
	return t.Count, t.Amount, err
}
