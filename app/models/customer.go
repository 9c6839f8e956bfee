package models

import "time"

// Local sync states for mirrored provider entities.
const (
	SyncStatusSynced  = "synced"
	SyncStatusPending = "pending"
	SyncStatusError   = "error"
)

// Customer mirrors a provider-side customer record. Upserts are keyed on
// ProviderCustomerID, never on local IDs, so repeated deliveries converge.
type Customer struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	ProviderCustomerID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_customers_provider_customer" json:"provider_customer_id"`
	Email              string     `gorm:"type:varchar(200);default:''" json:"email"`
	GivenName          string     `gorm:"type:varchar(150);default:''" json:"given_name"`
	FamilyName         string     `gorm:"type:varchar(150);default:''" json:"family_name"`
	Phone              string     `gorm:"type:varchar(50);default:''" json:"phone"`
	AddressLine1       string     `gorm:"type:varchar(255);default:''" json:"address_line1"`
	AddressLine2       string     `gorm:"type:varchar(255);default:''" json:"address_line2"`
	Locality           string     `gorm:"type:varchar(100);default:''" json:"locality"`
	PostalCode         string     `gorm:"type:varchar(20);default:''" json:"postal_code"`
	Country            string     `gorm:"type:varchar(2);default:''" json:"country"`
	ProviderCreatedAt  *time.Time `gorm:"type:timestamp;default:null" json:"provider_created_at,omitempty"`
	ProviderUpdatedAt  *time.Time `gorm:"type:timestamp;default:null" json:"provider_updated_at,omitempty"`
	SyncStatus         string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"sync_status"`
	LastSyncedAt       *time.Time `gorm:"type:timestamp;default:null" json:"last_synced_at,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
