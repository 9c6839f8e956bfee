package models

import "time"

// Webhook processing statuses. An event enters the table as "received" and
// must end in one of the terminal states: processed, skipped or failed.
// "duplicate" is written by the ingestion path when a delivery for an already
// known provider event id arrives.
const (
	WebhookStatusReceived   = "received"
	WebhookStatusDuplicate  = "duplicate"
	WebhookStatusProcessing = "processing"
	WebhookStatusProcessed  = "processed"
	WebhookStatusSkipped    = "skipped"
	WebhookStatusFailed     = "failed"
)

// WebhookEvent stores raw provider webhook deliveries with deduplication
// metadata. The unique index on ProviderEventID is the idempotency anchor
// for the entire ingestion pipeline.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_webhook_events_provider_event" json:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	MerchantID      string     `gorm:"type:varchar(191);not null;default:'';index" json:"merchant_id"`
	LocationID      string     `gorm:"type:varchar(191);default:''" json:"location_id"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	APIVersion      string     `gorm:"type:varchar(50);default:''" json:"api_version"`
	SignatureValid  bool       `gorm:"default:false;index" json:"signature_valid"`
	Status          string     `gorm:"type:varchar(20);not null;default:'received';index" json:"status"`
	LastError       string     `gorm:"type:text" json:"last_error"`
	RetryCount      int        `gorm:"not null;default:0" json:"retry_count"`
	ReceivedAt      time.Time  `gorm:"type:timestamp;not null;index" json:"received_at"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the event has reached a final processing state.
func (e *WebhookEvent) IsTerminal() bool {
	switch e.Status {
	case WebhookStatusProcessed, WebhookStatusSkipped, WebhookStatusFailed:
		return true
	default:
		return false
	}
}
