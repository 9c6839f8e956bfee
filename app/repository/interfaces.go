package repository

import (
	"time"

	"github.com/regware/paysync/app/models"
	"gorm.io/gorm"
)

// WebhookEventRepository defines the database operations for the event store.
type WebhookEventRepository interface {
	// InsertOrMarkDuplicate performs the deduplication step as a single
	// conditional write: a fresh provider event id inserts the row, a known
	// one flips the existing row to "duplicate" and bumps received_at.
	// Returns created=true only for the delivery that inserted the row.
	InsertOrMarkDuplicate(event *models.WebhookEvent) (created bool, stored *models.WebhookEvent, err error)
	GetByID(id uint) (*models.WebhookEvent, error)
	UpdateStatus(id uint, status string) error
	MarkProcessed(id uint, status string) error
	MarkFailed(id uint, processingErr string) error
	ListRetryable(maxRetries int, limit int) ([]models.WebhookEvent, error)
	CountByStatusSince(since time.Time) (map[string]int64, error)
}

// PaymentRepository defines the database operations for payment mirrors.
type PaymentRepository interface {
	Upsert(payment *models.Payment) error
	GetByProviderPaymentID(providerPaymentID string) (*models.Payment, error)
	GetByID(id uint) (*models.Payment, error)
	ListByRegistrationID(registrationID uint) ([]models.Payment, error)
	TotalsByDateRange(start, end time.Time) (count int64, amount int64, err error)
}

// CustomerRepository defines the database operations for customer mirrors.
type CustomerRepository interface {
	Upsert(customer *models.Customer) error
	GetByProviderCustomerID(providerCustomerID string) (*models.Customer, error)
}

// RefundRepository defines the database operations for refund mirrors.
type RefundRepository interface {
	Upsert(refund *models.Refund) error
	GetByProviderRefundID(providerRefundID string) (*models.Refund, error)
	// LinkPayment backfills payment_id on refunds that arrived before their
	// payment was synced. Keyed on provider_payment_id and restricted to
	// unlinked rows so already-linked refunds are never touched.
	LinkPayment(providerPaymentID string, paymentID uint) error
	TotalsByDateRange(start, end time.Time) (count int64, amount int64, err error)
}

// ReconciliationRepository defines the database operations for reconciliation records.
type ReconciliationRepository interface {
	Create(record *models.ReconciliationRecord) error
	GetByID(id uint) (*models.ReconciliationRecord, error)
	ListByProviderPaymentID(providerPaymentID string) ([]models.ReconciliationRecord, error)
	MarkResolved(id uint, notes string) error
}

// RegistrationRepository is the update contract this subsystem requires from
// the surrounding application's registration storage. Writes are column-keyed
// so concurrent workers touching the same registration cannot clobber each
// other's columns with a stale full-row save.
type RegistrationRepository interface {
	GetByID(id uint) (*models.Registration, error)
	UpdatePaymentFields(id uint, fields map[string]interface{}) error
	// SetPaymentCompletedAt stamps the completion time exactly once: the
	// write is conditional on payment_completed_at still being null, so
	// later completion reports can never move an existing timestamp.
	SetPaymentCompletedAt(id uint, completedAt time.Time) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	WebhookEvent   WebhookEventRepository
	Payment        PaymentRepository
	Customer       CustomerRepository
	Refund         RefundRepository
	Reconciliation ReconciliationRepository
	Registration   RegistrationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		WebhookEvent:   NewWebhookEventRepository(db),
		Payment:        NewPaymentRepository(db),
		Customer:       NewCustomerRepository(db),
		Refund:         NewRefundRepository(db),
		Reconciliation: NewReconciliationRepository(db),
		Registration:   NewRegistrationRepository(db),
	}
}
