package models

import "time"

// Domain statuses written onto registrations. These are the application's
// own vocabulary, distinct from the provider's payment status strings.
const (
	RegistrationStatusPendingPayment = "pending_payment"
	RegistrationStatusConfirmed      = "confirmed"
	RegistrationStatusFailed         = "failed"
	RegistrationStatusCancelled      = "cancelled"
)

// Registration is owned by the surrounding application; this subsystem only
// reads it by id and pushes payment outcome fields into it. Only the columns
// the payment pipeline touches are mapped here.
type Registration struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	ProviderPaymentID   string     `gorm:"type:varchar(191);default:'';index" json:"provider_payment_id"`
	ProviderCustomerID  string     `gorm:"type:varchar(191);default:''" json:"provider_customer_id"`
	Status              string     `gorm:"type:varchar(30);not null;default:'pending_payment';index" json:"status"`
	ExpectedAmount      int64      `gorm:"not null;default:0" json:"expected_amount"`
	Currency            string     `gorm:"type:varchar(3);default:''" json:"currency"`
	PaymentCompletedAt  *time.Time `gorm:"type:timestamp;default:null" json:"payment_completed_at,omitempty"`
	PaymentMetadataJSON string     `gorm:"type:longtext" json:"payment_metadata_json"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
