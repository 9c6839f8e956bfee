package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/regware/paysync/app/repository"
	"github.com/regware/paysync/internal/pkg/statistics"
)

const summaryDateLayout = "2006-01-02"

// HandleWebhookHealth reports per-status webhook counts for a recent window.
// The window defaults to 24 hours and is capped at 30 days.
func HandleWebhookHealth(c *fiber.Ctx) error {
	hours := c.QueryInt("hours", 24)
	if hours <= 0 {
		hours = 24
	}
	if hours > 24*30 {
		hours = 24 * 30
	}

	repos := repository.GetGlobalRepositories()
	summary, err := statistics.GetWebhookSummary(repos.WebhookEvent, hours)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_summary_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

// HandlePaymentSummary reports payment and refund totals for a date range.
// Dates are inclusive and formatted as 2006-01-02; the range defaults to the
// last 7 days.
func HandlePaymentSummary(c *fiber.Ctx) error {
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -7)
	end := now

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse(summaryDateLayout, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_start_date"})
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse(summaryDateLayout, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_end_date"})
		}
		// include the whole end day
		end = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if end.Before(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_before_start"})
	}

	repos := repository.GetGlobalRepositories()
	totals, err := statistics.GetPaymentTotals(repos.Payment, repos.Refund, start, end)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_summary_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(totals)
}
