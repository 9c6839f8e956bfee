package models

import "time"

// Reconciliation classification and resolution states.
const (
	ReconciliationStatusMatched     = "matched"
	ReconciliationStatusDiscrepancy = "discrepancy"

	ReconciliationUnresolved = "unresolved"
	ReconciliationResolved   = "resolved"

	ReconciliationTypePayment = "payment"
	ReconciliationTypeRefund  = "refund"
)

// ReconciliationRecord is an audit entry comparing the amount we expected to
// be charged against the amount the provider reports as settled. Status is
// derived from the difference and the configured tolerance, never set by
// callers directly.
type ReconciliationRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ProviderPaymentID string    `gorm:"type:varchar(191);not null;index" json:"provider_payment_id"`
	PaymentID         *uint     `gorm:"index" json:"payment_id,omitempty"`
	RegistrationID    *uint     `gorm:"index" json:"registration_id,omitempty"`
	Type              string    `gorm:"type:varchar(20);not null;default:'payment'" json:"type"`
	ExpectedAmount    int64     `gorm:"not null" json:"expected_amount"`
	ActualAmount      int64     `gorm:"not null" json:"actual_amount"`
	Difference        int64     `gorm:"not null" json:"difference"`
	Currency          string    `gorm:"type:varchar(3);not null;default:''" json:"currency"`
	Status            string    `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes             string    `gorm:"type:text" json:"notes"`
	ResolutionStatus  string    `gorm:"type:varchar(20);not null;default:'unresolved';index" json:"resolution_status"`
	BatchID           string    `gorm:"type:varchar(36);not null;default:'';index" json:"batch_id"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
