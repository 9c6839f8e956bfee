package repository

import (
	"fmt"

	"github.com/regware/paysync/app/models"
	"gorm.io/gorm"
)

// reconciliationRepository implements the ReconciliationRepository interface
type reconciliationRepository struct {
	db *gorm.DB
}

// NewReconciliationRepository creates a new reconciliation repository instance
func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

func (r *reconciliationRepository) Create(record *models.ReconciliationRecord) error {
	return r.db.Create(record).Error
}

func (r *reconciliationRepository) GetByID(id uint) (*models.ReconciliationRecord, error) {
	var record models.ReconciliationRecord
	if err := r.db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByProviderPaymentID returns the reconciliation history newest-first so
// consumers see a resolution trail, not a single snapshot.
func (r *reconciliationRepository) ListByProviderPaymentID(providerPaymentID string) ([]models.ReconciliationRecord, error) {
	var records []models.ReconciliationRecord
	err := r.db.Where("provider_payment_id = ?", providerPaymentID).
		Order("created_at desc, id desc").
		Find(&records).Error
	return records, err
}

// MarkResolved advances the resolution state. Only an explicit admin action
// lands here; classification itself never resolves a record.
func (r *reconciliationRepository) MarkResolved(id uint, notes string) error {
	updates := map[string]interface{}{
		"resolution_status": models.ReconciliationResolved,
	}
	if notes != "" {
		updates["notes"] = gorm.Expr("concat(notes, ?)", fmt.Sprintf("\n[resolved] %s", notes))
	}
	return r.db.Model(&models.ReconciliationRecord{}).Where("id = ?", id).Updates(updates).Error
}
