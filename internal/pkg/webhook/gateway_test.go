package webhook

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regware/paysync/app/models"
)

const gatewayTestKey = "gw-signature-key"

func newGatewayFixture() (*pipelineFixture, *Gateway) {
	f := newPipelineFixture()
	gateway := NewGateway(f.events, f.dispatcher, nil, gatewayTestKey)
	return f, gateway
}

func signedDelivery(eventID, eventType, body string) Delivery {
	payload := []byte(body)
	return Delivery{
		EventID:   eventID,
		EventType: eventType,
		Signature: signBase64(payload, gatewayTestKey),
		RawBody:   payload,
	}
}

func TestIngestRejectsInvalidSignatureBeforePersist(t *testing.T) {
	f, gateway := newGatewayFixture()

	delivery := signedDelivery("evt-1", EventPaymentUpdated, `{"x":1}`)
	delivery.Signature = "invalid"

	_, err := gateway.Ingest(context.Background(), delivery)
	require.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, f.events.events, "a rejected delivery must leave no event row")
}

func TestIngestProcessesAcceptedDelivery(t *testing.T) {
	f, gateway := newGatewayFixture()
	payload := paymentEventPayload("pay_55", "COMPLETED", "", 2500)

	event, err := gateway.Ingest(context.Background(), signedDelivery("evt-55", EventPaymentUpdated, payload))
	require.NoError(t, err)
	require.NotNil(t, event)

	stored := f.events.events[event.ID]
	assert.Equal(t, models.WebhookStatusProcessed, stored.Status)
	assert.True(t, stored.SignatureValid)

	_, err = f.payments.GetByProviderPaymentID("pay_55")
	assert.NoError(t, err)
}

func TestIngestDuplicateDeliveryIsAcknowledgedWithoutSideEffects(t *testing.T) {
	f, gateway := newGatewayFixture()
	payload := paymentEventPayload("pay_55", "COMPLETED", "", 2500)

	first, err := gateway.Ingest(context.Background(), signedDelivery("evt-55", EventPaymentUpdated, payload))
	require.NoError(t, err)
	upsertsAfterFirst := f.payments.upserts

	second, err := gateway.Ingest(context.Background(), signedDelivery("evt-55", EventPaymentUpdated, payload))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "duplicate must resolve to the original row")
	assert.Equal(t, models.WebhookStatusDuplicate, f.events.events[first.ID].Status)
	assert.Equal(t, upsertsAfterFirst, f.payments.upserts, "duplicate must not re-run the synchronizers")
	assert.Len(t, f.events.events, 1)
}

func TestIngestWithoutEventIDUsesPayloadHash(t *testing.T) {
	f, gateway := newGatewayFixture()
	payload := `{"data":{"object":{"customer":{"id":"cus_1"}}}}`

	event, err := gateway.Ingest(context.Background(), signedDelivery("", EventCustomerCreated, payload))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(event.ProviderEventID, "hash:"))

	// the same body replayed dedups against the hash anchor
	second, err := gateway.Ingest(context.Background(), signedDelivery("", EventCustomerCreated, payload))
	require.NoError(t, err)
	assert.Equal(t, event.ID, second.ID)
	assert.Len(t, f.events.events, 1)
}

func TestIngestEnqueuesWhenQueueIsAvailable(t *testing.T) {
	f := newPipelineFixture()
	enqueuer := &fakeEnqueuer{}
	gateway := NewGateway(f.events, f.dispatcher, enqueuer, gatewayTestKey)

	payload := paymentEventPayload("pay_77", "PENDING", "", 100)
	event, err := gateway.Ingest(context.Background(), signedDelivery("evt-77", EventPaymentCreated, payload))
	require.NoError(t, err)

	assert.Equal(t, []uint{event.ID}, enqueuer.enqueued)
	// processing is deferred to the worker
	assert.Equal(t, models.WebhookStatusReceived, f.events.events[event.ID].Status)
	assert.Empty(t, f.payments.payments)
}

func TestIngestConcurrentDeliveriesRecordExactlyOneEvent(t *testing.T) {
	// Providers re-deliver aggressively, so the same event id can hit the
	// endpoint from several workers at once. All deliveries must resolve to
	// a single stored row and a single queued job.
	f := newPipelineFixture()
	enqueuer := &fakeEnqueuer{}
	gateway := NewGateway(f.events, f.dispatcher, enqueuer, gatewayTestKey)

	payload := paymentEventPayload("pay_90", "COMPLETED", "", 4200)
	const deliveries = 16

	var wg sync.WaitGroup
	errs := make([]error, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = gateway.Ingest(context.Background(), signedDelivery("evt-90", EventPaymentUpdated, payload))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "delivery %d", i)
	}
	assert.Equal(t, 1, f.events.countEvents())
	assert.Equal(t, 1, enqueuer.enqueuedCount(), "only the delivery that created the row may enqueue")
}

func TestIngestEnqueueFailureMarksEventForRetry(t *testing.T) {
	f := newPipelineFixture()
	enqueuer := &fakeEnqueuer{err: fmt.Errorf("redis unavailable")}
	gateway := NewGateway(f.events, f.dispatcher, enqueuer, gatewayTestKey)

	payload := paymentEventPayload("pay_78", "PENDING", "", 100)
	event, err := gateway.Ingest(context.Background(), signedDelivery("evt-78", EventPaymentCreated, payload))
	require.NoError(t, err, "the event is durably recorded, the caller still acknowledges")

	stored := f.events.events[event.ID]
	assert.Equal(t, models.WebhookStatusFailed, stored.Status)
	assert.Contains(t, stored.LastError, "redis unavailable")

	retryable, err := f.events.ListRetryable(DefaultMaxRetries, 10)
	require.NoError(t, err)
	assert.Len(t, retryable, 1)
}

func TestIngestDispatchFailureStillAcknowledges(t *testing.T) {
	f, gateway := newGatewayFixture()
	payload := `{"data":{"object":{}}}`

	event, err := gateway.Ingest(context.Background(), signedDelivery("evt-80", EventPaymentUpdated, payload))
	require.NoError(t, err, "a malformed payload must not wedge the endpoint")
	assert.Equal(t, models.WebhookStatusFailed, f.events.events[event.ID].Status)
}
