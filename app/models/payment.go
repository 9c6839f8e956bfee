package models

import "time"

// Provider payment status vocabulary. The provider owns these strings; we
// store whatever it reports and only translate at the registration boundary.
const (
	ProviderPaymentPending   = "PENDING"
	ProviderPaymentApproved  = "APPROVED"
	ProviderPaymentCompleted = "COMPLETED"
	ProviderPaymentFailed    = "FAILED"
	ProviderPaymentCanceled  = "CANCELED"
)

// Payment mirrors a provider-side payment. ProviderPaymentID is unique;
// upserts converge to the provider's latest report regardless of the order
// in which webhook deliveries arrive.
type Payment struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	ProviderPaymentID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_payments_provider_payment" json:"provider_payment_id"`
	LocationID        string     `gorm:"type:varchar(191);default:''" json:"location_id"`
	RegistrationID    *uint      `gorm:"index" json:"registration_id,omitempty"`
	CustomerID        *uint      `gorm:"index" json:"customer_id,omitempty"`
	Customer          *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	AmountCharged     int64      `gorm:"not null;default:0" json:"amount_charged"`
	AmountTotal       int64      `gorm:"not null;default:0" json:"amount_total"`
	Currency          string     `gorm:"type:varchar(3);not null;default:''" json:"currency"`
	SourceType        string     `gorm:"type:varchar(50);default:''" json:"source_type"`
	CardBrand         string     `gorm:"type:varchar(50);default:''" json:"card_brand"`
	CardLast4         string     `gorm:"type:varchar(4);default:''" json:"card_last4"`
	ProviderStatus    string     `gorm:"type:varchar(50);not null;default:'';index" json:"provider_status"`
	BuyerReference    string     `gorm:"type:varchar(255);default:''" json:"buyer_reference"`
	ProviderCreatedAt *time.Time `gorm:"type:timestamp;default:null" json:"provider_created_at,omitempty"`
	ProviderUpdatedAt *time.Time `gorm:"type:timestamp;default:null" json:"provider_updated_at,omitempty"`
	SyncStatus        string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"sync_status"`
	LastSyncedAt      *time.Time `gorm:"type:timestamp;default:null" json:"last_synced_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
