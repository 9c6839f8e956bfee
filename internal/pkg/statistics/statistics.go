package statistics

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/regware/paysync/app/models"
	"github.com/regware/paysync/app/repository"
	"github.com/regware/paysync/internal/pkg/cache"
)

const (
	CacheKeyWebhookSummary = "statistics:webhooks:summary:%dh"
	CacheKeyPaymentTotals  = "statistics:payments:totals:%s:%s" // start:end, YYYY-MM-DD
	CacheExpiration        = 5 * time.Minute
)

// WebhookSummary aggregates webhook processing outcomes over a trailing window.
type WebhookSummary struct {
	WindowHours int   `json:"window_hours"`
	Received    int64 `json:"received"`
	Duplicate   int64 `json:"duplicate"`
	Processing  int64 `json:"processing"`
	Processed   int64 `json:"processed"`
	Skipped     int64 `json:"skipped"`
	Failed      int64 `json:"failed"`
	Total       int64 `json:"total"`
}

// PaymentTotals aggregates completed payment and refund volumes over a date range.
type PaymentTotals struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	PaymentCount int64  `json:"payment_count"`
	PaymentTotal int64  `json:"payment_total"`
	RefundCount  int64  `json:"refund_count"`
	RefundTotal  int64  `json:"refund_total"`
	NetAmount    int64  `json:"net_amount"`
}

// GetWebhookSummary returns processing outcome counts for the trailing
// window, served from the cache when fresh.
func GetWebhookSummary(events repository.WebhookEventRepository, windowHours int) (*WebhookSummary, error) {
	if windowHours <= 0 {
		windowHours = 24
	}

	cacheKey := fmt.Sprintf(CacheKeyWebhookSummary, windowHours)
	if cached, err := cache.Get(cacheKey); err == nil {
		var summary WebhookSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return &summary, nil
		}
	}

	since := time.Now().Add(-time.Duration(windowHours) * time.Hour)
	counts, err := events.CountByStatusSince(since)
	if err != nil {
		return nil, err
	}

	summary := &WebhookSummary{
		WindowHours: windowHours,
		Received:    counts[models.WebhookStatusReceived],
		Duplicate:   counts[models.WebhookStatusDuplicate],
		Processing:  counts[models.WebhookStatusProcessing],
		Processed:   counts[models.WebhookStatusProcessed],
		Skipped:     counts[models.WebhookStatusSkipped],
		Failed:      counts[models.WebhookStatusFailed],
	}
	for _, c := range counts {
		summary.Total += c
	}

	cacheSummary(cacheKey, summary)
	return summary, nil
}

// GetPaymentTotals returns completed payment and refund volumes between
// start (inclusive) and end (exclusive).
func GetPaymentTotals(payments repository.PaymentRepository, refunds repository.RefundRepository, start, end time.Time) (*PaymentTotals, error) {
	cacheKey := fmt.Sprintf(CacheKeyPaymentTotals, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if cached, err := cache.Get(cacheKey); err == nil {
		var totals PaymentTotals
		if err := json.Unmarshal([]byte(cached), &totals); err == nil {
			return &totals, nil
		}
	}

	paymentCount, paymentTotal, err := payments.TotalsByDateRange(start, end)
	if err != nil {
		return nil, err
	}
	refundCount, refundTotal, err := refunds.TotalsByDateRange(start, end)
	if err != nil {
		return nil, err
	}

	totals := &PaymentTotals{
		Start:        start.Format("2006-01-02"),
		End:          end.Format("2006-01-02"),
		PaymentCount: paymentCount,
		PaymentTotal: paymentTotal,
		RefundCount:  refundCount,
		RefundTotal:  refundTotal,
		NetAmount:    paymentTotal - refundTotal,
	}

	cacheSummary(cacheKey, totals)
	return totals, nil
}

func cacheSummary(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := cache.Set(key, string(data), CacheExpiration); err != nil {
		log.Warnf("[Statistics] Failed to cache %s: %v", key, err)
	}
}
