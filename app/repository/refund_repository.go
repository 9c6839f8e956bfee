package repository

import (
	"time"

	"github.com/regware/paysync/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// refundRepository implements the RefundRepository interface
type refundRepository struct {
	db *gorm.DB
}

// NewRefundRepository creates a new refund repository instance
func NewRefundRepository(db *gorm.DB) RefundRepository {
	return &refundRepository{db: db}
}

// Upsert writes the provider's latest refund report keyed on the provider
// refund id.
func (r *refundRepository) Upsert(refund *models.Refund) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider_refund_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"provider_payment_id",
			"payment_id",
			"amount",
			"currency",
			"status",
			"reason",
			"provider_created_at",
			"provider_updated_at",
			"last_synced_at",
			"updated_at",
		}),
	}).Create(refund).Error; err != nil {
		return err
	}

	return r.db.Where("provider_refund_id = ?", refund.ProviderRefundID).
		First(refund).Error
}

func (r *refundRepository) GetByProviderRefundID(providerRefundID string) (*models.Refund, error) {
	var refund models.Refund
	if err := r.db.Where("provider_refund_id = ?", providerRefundID).First(&refund).Error; err != nil {
		return nil, err
	}
	return &refund, nil
}

// LinkPayment backfills payment_id on refunds stored before their payment
// was synced. The null guard keeps already-linked rows untouched.
func (r *refundRepository) LinkPayment(providerPaymentID string, paymentID uint) error {
	return r.db.Model(&models.Refund{}).
		Where("provider_payment_id = ? AND payment_id IS NULL", providerPaymentID).
		Update("payment_id", paymentID).Error
}

// TotalsByDateRange sums completed refund amounts between start and end.
func (r *refundRepository) TotalsByDateRange(start, end time.Time) (int64, int64, error) {
	type totals struct {
		Count  int64
		Amount int64
	}
	var t totals
	err := r.db.Model(&models.Refund{}).
		Select("count(*) as count, coalesce(sum(amount), 0) as amount").
		Where("status = ? AND created_at >= ? AND created_at < ?", models.ProviderPaymentCompleted, start, end).
		Scan(&t).Error
	return t.Count, t.Amount, err
}
