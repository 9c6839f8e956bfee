package repository

import (
	"time"

	"github.com/regware/paysync/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// InsertOrMarkDuplicate inserts the event or, when the provider event id is
// already known, marks the stored row as duplicate and bumps received_at.
// Both outcomes are a single INSERT ... ON DUPLICATE KEY UPDATE so two
// concurrent deliveries of the same event id can never both count as first.
func (r *webhookEventRepository) InsertOrMarkDuplicate(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	now := time.Now()
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = now
	}
	if event.Status == "" {
		event.Status = models.WebhookStatusReceived
	}

	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider_event_id"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":      models.WebhookStatusDuplicate,
			"received_at": now,
			"updated_at":  now,
		}),
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	// MySQL reports 1 affected row for a fresh insert and 2 for the
	// duplicate-update branch (received_at always changes).
	created := tx.RowsAffected == 1

	var stored models.WebhookEvent
	if err := r.db.Where("provider_event_id = ?", event.ProviderEventID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *webhookEventRepository) GetByID(id uint) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *webhookEventRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).
		Update("status", status).Error
}

// MarkProcessed sets a terminal status and stamps processed_at.
func (r *webhookEventRepository) MarkProcessed(id uint, status string) error {
	now := time.Now()
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       status,
		"processed_at": &now,
		"last_error":   "",
	}).Error
}

// MarkFailed records the failure and increments the retry counter so the
// retry worker can decide whether the event is still eligible.
func (r *webhookEventRepository) MarkFailed(id uint, processingErr string) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      models.WebhookStatusFailed,
		"last_error":  processingErr,
		"retry_count": gorm.Expr("retry_count + 1"),
	}).Error
}

// ListRetryable returns failed events that have not exhausted their retry budget.
func (r *webhookEventRepository) ListRetryable(maxRetries int, limit int) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := r.db.Where("status = ? AND retry_count < ?", models.WebhookStatusFailed, maxRetries).
		Order("id asc").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// CountByStatusSince aggregates processing outcomes over a trailing window.
func (r *webhookEventRepository) CountByStatusSince(since time.Time) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.Model(&models.WebhookEvent{}).
		Select("status, count(*) as count").
		Where("received_at >= ?", since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}
