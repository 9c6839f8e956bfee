package webhook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paymentPayload = `{
	"event_id": "evt-pay-1",
	"type": "payment.updated",
	"data": {
		"type": "payment",
		"id": "pay_123",
		"object": {
			"payment": {
				"id": "pay_123",
				"location_id": "loc_1",
				"customer_id": "cus_9",
				"status": "completed",
				"amount_money": {"amount": 2900, "currency": "EUR"},
				"total_money": {"amount": 3000, "currency": "EUR"},
				"source_type": "CARD",
				"card_details": {"card": {"card_brand": "VISA", "last_4": "1111"}},
				"reference_id": "42",
				"created_at": "2025-03-01T10:00:00Z",
				"updated_at": "2025-03-01T10:01:30Z"
			}
		}
	}
}`

func TestParsePaymentDocument(t *testing.T) {
	doc, err := ParsePaymentDocument([]byte(paymentPayload))
	require.NoError(t, err)

	assert.Equal(t, "pay_123", doc.ID)
	assert.Equal(t, "loc_1", doc.LocationID)
	assert.Equal(t, "cus_9", doc.CustomerID)
	assert.Equal(t, "COMPLETED", doc.Status, "status is normalized to upper case")
	assert.Equal(t, int64(2900), doc.AmountCharged)
	assert.Equal(t, int64(3000), doc.AmountTotal)
	assert.Equal(t, "EUR", doc.Currency)
	assert.Equal(t, "VISA", doc.CardBrand)
	assert.Equal(t, "1111", doc.CardLast4)
	assert.Equal(t, "42", doc.ReferenceID)

	require.NotNil(t, doc.UpdatedAt)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 1, 30, 0, time.UTC), doc.UpdatedAt.UTC())
}

func TestParsePaymentDocumentTopLevelObject(t *testing.T) {
	payload := `{"object":{"payment":{"id":"pay_7","status":"PENDING","amount_money":{"amount":500,"currency":"USD"}}}}`

	doc, err := ParsePaymentDocument([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "pay_7", doc.ID)
	// without total_money the amount falls back to amount_money
	assert.Equal(t, int64(500), doc.AmountTotal)
	assert.Equal(t, "USD", doc.Currency)
}

func TestParsePaymentDocumentZeroTotalIsKept(t *testing.T) {
	// A fully discounted payment reports total_money with amount 0. That is
	// a real total, not an absent one, and must not fall back to the
	// charged amount.
	payload := `{"object":{"payment":{"id":"pay_8","status":"COMPLETED","amount_money":{"amount":500,"currency":"USD"},"total_money":{"amount":0,"currency":"USD"}}}}`

	doc, err := ParsePaymentDocument([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, int64(500), doc.AmountCharged)
	assert.Equal(t, int64(0), doc.AmountTotal)
	assert.Equal(t, "USD", doc.Currency)
}

func TestParsePaymentDocumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"invalid json", `{not json`},
		{"missing payment", `{"data":{"object":{}}}`},
		{"missing id", `{"data":{"object":{"payment":{"status":"COMPLETED"}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePaymentDocument([]byte(tt.payload))
			assert.Error(t, err)
		})
	}
}

func TestParseCustomerDocument(t *testing.T) {
	payload := `{
		"data": {
			"object": {
				"customer": {
					"id": "cus_9",
					"email_address": "max@example.com",
					"given_name": "Max",
					"family_name": "Muster",
					"phone_number": "+49 151 0000000",
					"address": {
						"address_line_1": "Musterweg 1",
						"locality": "Berlin",
						"postal_code": "10115",
						"country": "DE"
					},
					"created_at": "2025-02-10T08:00:00Z"
				}
			}
		}
	}`

	doc, err := ParseCustomerDocument([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "cus_9", doc.ID)
	assert.Equal(t, "max@example.com", doc.Email)
	assert.Equal(t, "Max", doc.GivenName)
	assert.Equal(t, "Muster", doc.FamilyName)
	assert.Equal(t, "Musterweg 1", doc.AddressLine1)
	assert.Equal(t, "Berlin", doc.Locality)
	assert.Equal(t, "DE", doc.Country)
	require.NotNil(t, doc.CreatedAt)
}

func TestParseRefundDocument(t *testing.T) {
	payload := `{
		"data": {
			"object": {
				"refund": {
					"id": "ref_5",
					"payment_id": "pay_123",
					"status": "completed",
					"amount_money": {"amount": 1500, "currency": "EUR"},
					"reason": "customer request"
				}
			}
		}
	}`

	doc, err := ParseRefundDocument([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "ref_5", doc.ID)
	assert.Equal(t, "pay_123", doc.PaymentID)
	assert.Equal(t, "COMPLETED", doc.Status)
	assert.Equal(t, int64(1500), doc.Amount)
	assert.Equal(t, "EUR", doc.Currency)
	assert.Equal(t, "customer request", doc.Reason)
}

func TestParseProviderTime(t *testing.T) {
	assert.Nil(t, parseProviderTime(""))
	assert.Nil(t, parseProviderTime("not a timestamp"))

	parsed := parseProviderTime("2025-03-01T10:00:00Z")
	require.NotNil(t, parsed)
	assert.Equal(t, 2025, parsed.Year())
}
