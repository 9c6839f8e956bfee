package models

import "time"

// Refund mirrors a provider-side refund. PaymentID may be nil when the
// originating payment has not been synced yet; the payment synchronizer
// backfills the link once the payment event arrives.
type Refund struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	ProviderRefundID  string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_refunds_provider_refund" json:"provider_refund_id"`
	ProviderPaymentID string     `gorm:"type:varchar(191);not null;default:'';index" json:"provider_payment_id"`
	PaymentID         *uint      `gorm:"index" json:"payment_id,omitempty"`
	Payment           *Payment   `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	Amount            int64      `gorm:"not null;default:0" json:"amount"`
	Currency          string     `gorm:"type:varchar(3);not null;default:''" json:"currency"`
	Status            string     `gorm:"type:varchar(50);not null;default:'';index" json:"status"`
	Reason            string     `gorm:"type:text" json:"reason"`
	ProviderCreatedAt *time.Time `gorm:"type:timestamp;default:null" json:"provider_created_at,omitempty"`
	ProviderUpdatedAt *time.Time `gorm:"type:timestamp;default:null" json:"provider_updated_at,omitempty"`
	LastSyncedAt      *time.Time `gorm:"type:timestamp;default:null" json:"last_synced_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
