package webhook

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/regware/paysync/app/models"
)

// In-memory repositories backing the pipeline tests. They mirror the MySQL
// semantics the real implementations rely on: unique provider ids, upsert
// convergence and the single-write duplicate marking. The event repo and
// enqueuer are mutex-guarded so tests can ingest from multiple goroutines.

type fakeEventRepo struct {
	mu     sync.Mutex
	nextID uint
	events map[uint]*models.WebhookEvent
	byPID  map[string]uint
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		nextID: 1,
		events: make(map[uint]*models.WebhookEvent),
		byPID:  make(map[string]uint),
	}
}

func (r *fakeEventRepo) InsertOrMarkDuplicate(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if id, ok := r.byPID[event.ProviderEventID]; ok {
		existing := r.events[id]
		existing.Status = models.WebhookStatusDuplicate
		existing.ReceivedAt = now
		return false, existing, nil
	}
	event.ID = r.nextID
	r.nextID++
	event.Status = models.WebhookStatusReceived
	event.ReceivedAt = now
	r.events[event.ID] = event
	r.byPID[event.ProviderEventID] = event.ID
	return true, event, nil
}

func (r *fakeEventRepo) GetByID(id uint) (*models.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return event, nil
}

func (r *fakeEventRepo) UpdateStatus(id uint, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	event.Status = status
	return nil
}

func (r *fakeEventRepo) MarkProcessed(id uint, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	event.Status = status
	event.ProcessedAt = &now
	event.LastError = ""
	return nil
}

func (r *fakeEventRepo) MarkFailed(id uint, processingErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	event.Status = models.WebhookStatusFailed
	event.LastError = processingErr
	event.RetryCount++
	return nil
}

func (r *fakeEventRepo) ListRetryable(maxRetries int, limit int) ([]models.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WebhookEvent
	for _, event := range r.events {
		if event.Status == models.WebhookStatusFailed && event.RetryCount < maxRetries {
			out = append(out, *event)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeEventRepo) CountByStatusSince(since time.Time) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, event := range r.events {
		if !event.ReceivedAt.Before(since) {
			counts[event.Status]++
		}
	}
	return counts, nil
}

// countEvents reports how many event rows exist.
func (r *fakeEventRepo) countEvents() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type fakePaymentRepo struct {
	nextID   uint
	payments map[string]*models.Payment
	upserts  int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{nextID: 1, payments: make(map[string]*models.Payment)}
}

func (r *fakePaymentRepo) Upsert(payment *models.Payment) error {
	r.upserts++
	if existing, ok := r.payments[payment.ProviderPaymentID]; ok {
		payment.ID = existing.ID
		payment.CreatedAt = existing.CreatedAt
	} else {
		payment.ID = r.nextID
		r.nextID++
	}
	stored := *payment
	r.payments[payment.ProviderPaymentID] = &stored
	return nil
}

func (r *fakePaymentRepo) GetByProviderPaymentID(providerPaymentID string) (*models.Payment, error) {
	payment, ok := r.payments[providerPaymentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return payment, nil
}

func (r *fakePaymentRepo) GetByID(id uint) (*models.Payment, error) {
	for _, payment := range r.payments {
		if payment.ID == id {
			return payment, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePaymentRepo) ListByRegistrationID(registrationID uint) ([]models.Payment, error) {
	var out []models.Payment
	for _, payment := range r.payments {
		if payment.RegistrationID != nil && *payment.RegistrationID == registrationID {
			out = append(out, *payment)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) TotalsByDateRange(start, end time.Time) (int64, int64, error) {
	var count, amount int64
	for _, payment := range r.payments {
		if payment.ProviderStatus == models.ProviderPaymentCompleted &&
			!payment.CreatedAt.Before(start) && !payment.CreatedAt.After(end) {
			count++
			amount += payment.AmountTotal
		}
	}
	return count, amount, nil
}

type fakeCustomerRepo struct {
	nextID    uint
	customers map[string]*models.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{nextID: 1, customers: make(map[string]*models.Customer)}
}

func (r *fakeCustomerRepo) Upsert(customer *models.Customer) error {
	if existing, ok := r.customers[customer.ProviderCustomerID]; ok {
		customer.ID = existing.ID
	} else {
		customer.ID = r.nextID
		r.nextID++
	}
	stored := *customer
	r.customers[customer.ProviderCustomerID] = &stored
	return nil
}

func (r *fakeCustomerRepo) GetByProviderCustomerID(providerCustomerID string) (*models.Customer, error) {
	customer, ok := r.customers[providerCustomerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return customer, nil
}

type fakeRefundRepo struct {
	nextID  uint
	refunds map[string]*models.Refund
}

func newFakeRefundRepo() *fakeRefundRepo {
	return &fakeRefundRepo{nextID: 1, refunds: make(map[string]*models.Refund)}
}

func (r *fakeRefundRepo) Upsert(refund *models.Refund) error {
	if existing, ok := r.refunds[refund.ProviderRefundID]; ok {
		refund.ID = existing.ID
	} else {
		refund.ID = r.nextID
		r.nextID++
	}
	stored := *refund
	r.refunds[refund.ProviderRefundID] = &stored
	return nil
}

func (r *fakeRefundRepo) GetByProviderRefundID(providerRefundID string) (*models.Refund, error) {
	refund, ok := r.refunds[providerRefundID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return refund, nil
}

func (r *fakeRefundRepo) LinkPayment(providerPaymentID string, paymentID uint) error {
	for _, refund := range r.refunds {
		if refund.ProviderPaymentID == providerPaymentID && refund.PaymentID == nil {
			id := paymentID
			refund.PaymentID = &id
		}
	}
	return nil
}

func (r *fakeRefundRepo) TotalsByDateRange(start, end time.Time) (int64, int64, error) {
	var count, amount int64
	for _, refund := range r.refunds {
		if !refund.CreatedAt.Before(start) && !refund.CreatedAt.After(end) {
			count++
			amount += refund.Amount
		}
	}
	return count, amount, nil
}

type fakeRegistrationRepo struct {
	registrations map[uint]*models.Registration
	updates       int
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{registrations: make(map[uint]*models.Registration)}
}

func (r *fakeRegistrationRepo) GetByID(id uint) (*models.Registration, error) {
	reg, ok := r.registrations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *reg
	return &copied, nil
}

func (r *fakeRegistrationRepo) UpdatePaymentFields(id uint, fields map[string]interface{}) error {
	r.updates++
	reg, ok := r.registrations[id]
	if !ok {
		return nil
	}
	if v, ok := fields["status"].(string); ok {
		reg.Status = v
	}
	if v, ok := fields["provider_payment_id"].(string); ok {
		reg.ProviderPaymentID = v
	}
	if v, ok := fields["provider_customer_id"].(string); ok {
		reg.ProviderCustomerID = v
	}
	if v, ok := fields["payment_metadata_json"].(string); ok {
		reg.PaymentMetadataJSON = v
	}
	return nil
}

func (r *fakeRegistrationRepo) SetPaymentCompletedAt(id uint, completedAt time.Time) error {
	reg, ok := r.registrations[id]
	if !ok {
		return nil
	}
	// Matches the SQL conditional: only the first stamp lands.
	if reg.PaymentCompletedAt == nil {
		t := completedAt
		reg.PaymentCompletedAt = &t
	}
	return nil
}

type fakeReconciler struct {
	completions []string
	err         error
}

func (r *fakeReconciler) ReconcilePaymentCompletion(_ context.Context, payment *models.Payment) error {
	r.completions = append(r.completions, payment.ProviderPaymentID)
	return r.err
}

type fakeEnqueuer struct {
	mu       sync.Mutex
	enqueued []uint
	err      error
}

func (e *fakeEnqueuer) EnqueueWebhookEvent(eventID uint, _ string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.enqueued = append(e.enqueued, eventID)
	return nil
}

// enqueuedCount reports how many events were handed to the queue.
func (e *fakeEnqueuer) enqueuedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.enqueued)
}
