package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Recognized event type families. Everything else is skipped by policy.
const (
	EventPaymentCreated  = "payment.created"
	EventPaymentUpdated  = "payment.updated"
	EventCustomerCreated = "customer.created"
	EventCustomerUpdated = "customer.updated"
	EventRefundCreated   = "refund.created"
	EventRefundUpdated   = "refund.updated"
)

// Delivery is one inbound webhook request after transport-level parsing.
// RawBody is the unmodified request body the signature was computed over.
type Delivery struct {
	EventID    string
	EventType  string
	MerchantID string
	LocationID string
	APIVersion string
	Signature  string
	RawBody    []byte
}

type moneyDoc struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentDocument is the typed payment sub-document extracted from an event
// payload (data.object.payment in the provider's envelope).
type PaymentDocument struct {
	ID            string
	LocationID    string
	CustomerID    string
	Status        string
	AmountCharged int64
	AmountTotal   int64
	Currency      string
	SourceType    string
	CardBrand     string
	CardLast4     string
	ReferenceID   string
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
}

// CustomerDocument is the typed customer sub-document of an event payload.
type CustomerDocument struct {
	ID           string
	Email        string
	GivenName    string
	FamilyName   string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	Locality     string
	PostalCode   string
	Country      string
	CreatedAt    *time.Time
	UpdatedAt    *time.Time
}

// RefundDocument is the typed refund sub-document of an event payload.
type RefundDocument struct {
	ID        string
	PaymentID string
	Status    string
	Amount    int64
	Currency  string
	Reason    string
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// rawObject is the entity sub-document container. Providers nest it either
// at the top level ("object") or under "data.object"; both are accepted.
type rawObject struct {
	Payment *struct {
		ID          string    `json:"id"`
		LocationID  string    `json:"location_id"`
		CustomerID  string    `json:"customer_id"`
		Status      string    `json:"status"`
		AmountMoney moneyDoc  `json:"amount_money"`
		TotalMoney  *moneyDoc `json:"total_money"`
		SourceType  string    `json:"source_type"`
		CardDetails struct {
			Card struct {
				CardBrand string `json:"card_brand"`
				Last4     string `json:"last_4"`
			} `json:"card"`
		} `json:"card_details"`
		ReferenceID string `json:"reference_id"`
		CreatedAt   string `json:"created_at"`
		UpdatedAt   string `json:"updated_at"`
	} `json:"payment"`
	Customer *struct {
		ID          string `json:"id"`
		EmailAddr   string `json:"email_address"`
		GivenName   string `json:"given_name"`
		FamilyName  string `json:"family_name"`
		PhoneNumber string `json:"phone_number"`
		Address     struct {
			AddressLine1 string `json:"address_line_1"`
			AddressLine2 string `json:"address_line_2"`
			Locality     string `json:"locality"`
			PostalCode   string `json:"postal_code"`
			Country      string `json:"country"`
		} `json:"address"`
		CreatedAt string `json:"created_at"`
		UpdatedAt string `json:"updated_at"`
	} `json:"customer"`
	Refund *struct {
		ID          string   `json:"id"`
		PaymentID   string   `json:"payment_id"`
		Status      string   `json:"status"`
		AmountMoney moneyDoc `json:"amount_money"`
		Reason      string   `json:"reason"`
		CreatedAt   string   `json:"created_at"`
		UpdatedAt   string   `json:"updated_at"`
	} `json:"refund"`
}

type rawEnvelope struct {
	Object rawObject `json:"object"`
	Data   struct {
		Type   string    `json:"type"`
		ID     string    `json:"id"`
		Object rawObject `json:"object"`
	} `json:"data"`
}

// entityObject returns the sub-document container regardless of nesting.
func (e *rawEnvelope) entityObject() rawObject {
	if e.Data.Object.Payment != nil || e.Data.Object.Customer != nil || e.Data.Object.Refund != nil {
		return e.Data.Object
	}
	return e.Object
}

func parseProviderTime(value string) *time.Time {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	return &t
}

// ParsePaymentDocument extracts the payment sub-document from a raw payload.
func ParsePaymentDocument(payload []byte) (*PaymentDocument, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("payment payload is not valid JSON: %w", err)
	}
	p := raw.entityObject().Payment
	if p == nil {
		return nil, errors.New("payload missing data.object.payment")
	}
	if strings.TrimSpace(p.ID) == "" {
		return nil, errors.New("payment document missing id")
	}

	// total_money is optional; when absent the charged amount doubles as
	// the total. Presence is what matters, a zero total is a real total.
	currency := p.AmountMoney.Currency
	total := p.AmountMoney.Amount
	if p.TotalMoney != nil {
		total = p.TotalMoney.Amount
		if p.TotalMoney.Currency != "" {
			currency = p.TotalMoney.Currency
		}
	}

	return &PaymentDocument{
		ID:            strings.TrimSpace(p.ID),
		LocationID:    strings.TrimSpace(p.LocationID),
		CustomerID:    strings.TrimSpace(p.CustomerID),
		Status:        strings.ToUpper(strings.TrimSpace(p.Status)),
		AmountCharged: p.AmountMoney.Amount,
		AmountTotal:   total,
		Currency:      currency,
		SourceType:    p.SourceType,
		CardBrand:     p.CardDetails.Card.CardBrand,
		CardLast4:     p.CardDetails.Card.Last4,
		ReferenceID:   strings.TrimSpace(p.ReferenceID),
		CreatedAt:     parseProviderTime(p.CreatedAt),
		UpdatedAt:     parseProviderTime(p.UpdatedAt),
	}, nil
}

// ParseCustomerDocument extracts the customer sub-document from a raw payload.
func ParseCustomerDocument(payload []byte) (*CustomerDocument, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("customer payload is not valid JSON: %w", err)
	}
	c := raw.entityObject().Customer
	if c == nil {
		return nil, errors.New("payload missing data.object.customer")
	}
	if strings.TrimSpace(c.ID) == "" {
		return nil, errors.New("customer document missing id")
	}

	return &CustomerDocument{
		ID:           strings.TrimSpace(c.ID),
		Email:        strings.TrimSpace(c.EmailAddr),
		GivenName:    strings.TrimSpace(c.GivenName),
		FamilyName:   strings.TrimSpace(c.FamilyName),
		Phone:        strings.TrimSpace(c.PhoneNumber),
		AddressLine1: c.Address.AddressLine1,
		AddressLine2: c.Address.AddressLine2,
		Locality:     c.Address.Locality,
		PostalCode:   c.Address.PostalCode,
		Country:      c.Address.Country,
		CreatedAt:    parseProviderTime(c.CreatedAt),
		UpdatedAt:    parseProviderTime(c.UpdatedAt),
	}, nil
}

// ParseRefundDocument extracts the refund sub-document from a raw payload.
func ParseRefundDocument(payload []byte) (*RefundDocument, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("refund payload is not valid JSON: %w", err)
	}
	r := raw.entityObject().Refund
	if r == nil {
		return nil, errors.New("payload missing data.object.refund")
	}
	if strings.TrimSpace(r.ID) == "" {
		return nil, errors.New("refund document missing id")
	}

	return &RefundDocument{
		ID:        strings.TrimSpace(r.ID),
		PaymentID: strings.TrimSpace(r.PaymentID),
		Status:    strings.ToUpper(strings.TrimSpace(r.Status)),
		Amount:    r.AmountMoney.Amount,
		Currency:  r.AmountMoney.Currency,
		Reason:    r.Reason,
		CreatedAt: parseProviderTime(r.CreatedAt),
		UpdatedAt: parseProviderTime(r.UpdatedAt),
	}, nil
}
