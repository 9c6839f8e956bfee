package repository

import (
	"time"

	"github.com/regware/paysync/app/models"
	"gorm.io/gorm"
)

// registrationRepository implements the RegistrationRepository interface.
// Registrations belong to the surrounding application; this repository only
// covers the read/update surface the payment pipeline needs.
type registrationRepository struct {
	db *gorm.DB
}

// NewRegistrationRepository creates a new registration repository instance
func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) GetByID(id uint) (*models.Registration, error) {
	var registration models.Registration
	if err := r.db.First(&registration, id).Error; err != nil {
		return nil, err
	}
	return &registration, nil
}

// UpdatePaymentFields writes only the payment outcome columns so concurrent
// workers cannot overwrite each other's columns with a stale full-row save.
func (r *registrationRepository) UpdatePaymentFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Registration{}).Where("id = ?", id).Updates(fields).Error
}

// SetPaymentCompletedAt is a single conditional write: the timestamp lands
// only while payment_completed_at is still null. Two workers racing on
// completion reports for the same registration cannot both win.
func (r *registrationRepository) SetPaymentCompletedAt(id uint, completedAt time.Time) error {
	return r.db.Model(&models.Registration{}).
		Where("id = ? AND payment_completed_at IS NULL", id).
		Update("payment_completed_at", completedAt).Error
}
