package reconcile

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/regware/paysync/app/models"
	"github.com/regware/paysync/app/repository"
	"github.com/regware/paysync/internal/pkg/env"
	"gorm.io/gorm"
)

// DefaultToleranceMinorUnits absorbs processor fee rounding: differences up
// to this many minor currency units still classify as matched.
const DefaultToleranceMinorUnits = 100

// Config carries the reconciliation tuning knobs explicitly so the engine
// stays testable without ambient global state.
type Config struct {
	ToleranceMinorUnits int64
}

// DefaultConfig returns the default tolerance band.
func DefaultConfig() Config {
	return Config{ToleranceMinorUnits: DefaultToleranceMinorUnits}
}

// ConfigFromEnv reads the tolerance from RECONCILE_TOLERANCE, falling back
// to the default on missing or unparsable values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	raw := strings.TrimSpace(env.GetEnv("RECONCILE_TOLERANCE", ""))
	if raw == "" {
		return cfg
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		log.Warnf("[Reconcile] Ignoring invalid RECONCILE_TOLERANCE %q", raw)
		return cfg
	}
	cfg.ToleranceMinorUnits = v
	return cfg
}

// Classify computes the signed difference (actual - expected) and its
// classification under the configured tolerance.
func Classify(cfg Config, expected, actual int64) (status string, diff int64) {
	diff = actual - expected
	abs := diff
	if abs < 0 {
		abs = -abs
	}
	if abs <= cfg.ToleranceMinorUnits {
		return models.ReconciliationStatusMatched, diff
	}
	return models.ReconciliationStatusDiscrepancy, diff
}

// Input describes one expected-vs-actual comparison to record.
type Input struct {
	ProviderPaymentID string
	RegistrationID    *uint
	Type              string
	ExpectedAmount    int64
	ActualAmount      int64
	Currency          string
	Notes             string
	BatchID           string
}

// Engine produces and queries reconciliation records.
type Engine struct {
	cfg           Config
	records       repository.ReconciliationRepository
	payments      repository.PaymentRepository
	registrations repository.RegistrationRepository
}

// NewEngine creates a reconciliation engine from an explicit config and
// injected repositories.
func NewEngine(cfg Config, records repository.ReconciliationRepository, payments repository.PaymentRepository, registrations repository.RegistrationRepository) *Engine {
	return &Engine{
		cfg:           cfg,
		records:       records,
		payments:      payments,
		registrations: registrations,
	}
}

// Record classifies the input and persists one reconciliation record. The
// record's status is derived here and never taken from the caller.
func (e *Engine) Record(ctx context.Context, in Input) (*models.ReconciliationRecord, error) {
	_ = ctx
	providerPaymentID := strings.TrimSpace(in.ProviderPaymentID)
	if providerPaymentID == "" {
		return nil, errors.New("provider payment id is required")
	}

	recType := in.Type
	if recType == "" {
		recType = models.ReconciliationTypePayment
	}
	if recType != models.ReconciliationTypePayment && recType != models.ReconciliationTypeRefund {
		return nil, errors.New("reconciliation type must be payment or refund")
	}

	batchID := strings.TrimSpace(in.BatchID)
	if batchID == "" {
		batchID = uuid.New().String()
	}

	var paymentID *uint
	payment, err := e.payments.GetByProviderPaymentID(providerPaymentID)
	switch {
	case err == nil:
		paymentID = &payment.ID
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Warnf("[Reconcile] No local payment for %s, recording unlinked", providerPaymentID)
	default:
		return nil, err
	}

	status, diff := Classify(e.cfg, in.ExpectedAmount, in.ActualAmount)

	record := &models.ReconciliationRecord{
		ProviderPaymentID: providerPaymentID,
		PaymentID:         paymentID,
		RegistrationID:    in.RegistrationID,
		Type:              recType,
		ExpectedAmount:    in.ExpectedAmount,
		ActualAmount:      in.ActualAmount,
		Difference:        diff,
		Currency:          in.Currency,
		Status:            status,
		Notes:             in.Notes,
		ResolutionStatus:  models.ReconciliationUnresolved,
		BatchID:           batchID,
	}
	if err := e.records.Create(record); err != nil {
		return nil, err
	}

	if status == models.ReconciliationStatusDiscrepancy {
		log.Warnf("[Reconcile] Discrepancy for payment %s: expected=%d actual=%d diff=%d",
			providerPaymentID, in.ExpectedAmount, in.ActualAmount, diff)
	}
	return record, nil
}

// ReconcilePaymentCompletion records expected-vs-settled for a payment that
// just completed, using the linked registration's expected amount. Payments
// without a registration or without an expected amount are skipped.
func (e *Engine) ReconcilePaymentCompletion(ctx context.Context, payment *models.Payment) error {
	if payment == nil || payment.RegistrationID == nil {
		return nil
	}
	reg, err := e.registrations.GetByID(*payment.RegistrationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if reg.ExpectedAmount == 0 {
		return nil
	}

	_, err = e.Record(ctx, Input{
		ProviderPaymentID: payment.ProviderPaymentID,
		RegistrationID:    payment.RegistrationID,
		Type:              models.ReconciliationTypePayment,
		ExpectedAmount:    reg.ExpectedAmount,
		ActualAmount:      payment.AmountTotal,
		Currency:          payment.Currency,
		Notes:             "auto: payment completion",
	})
	return err
}

// History returns all records for a provider payment id, newest first.
func (e *Engine) History(ctx context.Context, providerPaymentID string) ([]models.ReconciliationRecord, error) {
	_ = ctx
	if strings.TrimSpace(providerPaymentID) == "" {
		return nil, errors.New("provider payment id is required")
	}
	return e.records.ListByProviderPaymentID(providerPaymentID)
}

// Resolve advances a record's resolution status. Only explicit admin action
// arrives here.
func (e *Engine) Resolve(ctx context.Context, recordID uint, notes string) error {
	_ = ctx
	if recordID == 0 {
		return errors.New("record id is required")
	}
	if _, err := e.records.GetByID(recordID); err != nil {
		return err
	}
	return e.records.MarkResolved(recordID, notes)
}
