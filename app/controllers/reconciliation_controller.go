package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/regware/paysync/app/repository"
	"github.com/regware/paysync/internal/pkg/reconcile"
)

// CreateReconciliationRequest is the admin-facing payload for recording an
// expected-vs-actual comparison.
type CreateReconciliationRequest struct {
	PaymentID      string `json:"payment_id" validate:"required,max=191"`
	RegistrationID *uint  `json:"registration_id"`
	Type           string `json:"type" validate:"omitempty,oneof=payment refund"`
	ExpectedAmount int64  `json:"expected_amount" validate:"gte=0"`
	ActualAmount   int64  `json:"actual_amount" validate:"gte=0"`
	Currency       string `json:"currency" validate:"required,len=3"`
	Notes          string `json:"notes" validate:"max=2000"`
}

func (r *CreateReconciliationRequest) Validate() error {
	v := validator.New()

	return v.Struct(r)
}

// ResolveReconciliationRequest carries the optional resolution note.
type ResolveReconciliationRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

func buildReconcileEngine() *reconcile.Engine {
	repos := repository.GetGlobalRepositories()
	return reconcile.NewEngine(reconcile.ConfigFromEnv(), repos.Reconciliation, repos.Payment, repos.Registration)
}

// HandleCreateReconciliation records one reconciliation comparison.
func HandleCreateReconciliation(c *fiber.Ctx) error {
	var req CreateReconciliationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "details": err.Error()})
	}

	engine := buildReconcileEngine()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	record, err := engine.Record(ctx, reconcile.Input{
		ProviderPaymentID: req.PaymentID,
		RegistrationID:    req.RegistrationID,
		Type:              req.Type,
		ExpectedAmount:    req.ExpectedAmount,
		ActualAmount:      req.ActualAmount,
		Currency:          strings.ToUpper(req.Currency),
		Notes:             req.Notes,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reconciliation_failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

// HandleListReconciliations returns the reconciliation history for a
// provider payment id, newest first.
func HandleListReconciliations(c *fiber.Ctx) error {
	paymentID := strings.TrimSpace(c.Params("paymentID"))
	if paymentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "payment_id_required"})
	}

	engine := buildReconcileEngine()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, err := engine.History(ctx, paymentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reconciliation_lookup_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"payment_id": paymentID, "records": records})
}

// HandleResolveReconciliation advances a record to resolved. Classification
// never resolves records; only this admin action does.
func HandleResolveReconciliation(c *fiber.Ctx) error {
	recordID, err := c.ParamsInt("id")
	if err != nil || recordID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_record_id"})
	}

	var req ResolveReconciliationRequest
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}

	engine := buildReconcileEngine()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := engine.Resolve(ctx, uint(recordID), req.Notes); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "record_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "resolve_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
