package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"grandprix-booking/config"
	"grandprix-booking/models"
	"grandprix-booking/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var occurredAt = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	events []OrderEvent
	err    error
	closed bool
}

func (r *recordingPublisher) Publish(_ context.Context, event OrderEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingPublisher) Close() error {
	r.closed = true
	return nil
}

func sampleOrder(t *testing.T) *models.Order {
	t.Helper()
	ticket, err := models.NewSingleRaceTicket("TKT-001", decimal.RequireFromString("250"),
		time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), "Main Grandstand", "Monaco Grand Prix", models.CategoryPremium)
	require.NoError(t, err)

	order := models.NewOrder("ORD-1", occurredAt, "john_doe")
	require.NoError(t, order.AddTicket(ticket))
	return order
}

func TestNewOrderEvent(t *testing.T) {
	order := sampleOrder(t)

	event := NewOrderEvent(EventOrderUpdated, order, models.OrderPending, occurredAt)

	assert.Equal(t, EventOrderUpdated, event.Type)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "ORD-1", event.OrderID)
	assert.Equal(t, "john_doe", event.UserID)
	assert.Equal(t, "Pending", event.Status)
	assert.Equal(t, "Pending", event.Previous)
	assert.Equal(t, "300.00", event.TotalAmount)
	assert.Equal(t, []string{"TKT-001"}, event.TicketIDs)
	assert.Equal(t, occurredAt, event.OccurredAt)

	other := NewOrderEvent(EventOrderCreated, order, "", occurredAt)
	assert.NotEqual(t, event.EventID, other.EventID)
	assert.Empty(t, other.Previous)
}

func TestGuarded_StopsCallingFailingProvider(t *testing.T) {
	ctx := context.Background()
	inner := &recordingPublisher{err: errors.New("provider down")}
	guarded := NewGuarded(inner, utils.NewCircuitBreaker("test", 2, time.Hour))
	event := NewOrderEvent(EventOrderCreated, sampleOrder(t), "", occurredAt)

	assert.Error(t, guarded.Publish(ctx, event))
	assert.Error(t, guarded.Publish(ctx, event))
	assert.ErrorIs(t, guarded.Publish(ctx, event), utils.ErrCircuitOpen)
	assert.Len(t, inner.events, 2)

	require.NoError(t, guarded.Close())
	assert.True(t, inner.closed)
}

func TestNop(t *testing.T) {
	var pub Publisher = Nop{}
	assert.NoError(t, pub.Publish(context.Background(), OrderEvent{}))
	assert.NoError(t, pub.Close())
}

func TestMessages(t *testing.T) {
	event := NewOrderEvent(EventOrderCreated, sampleOrder(t), "", occurredAt)

	msg := pubnubMessage(event)
	assert.Equal(t, "order.created", msg["type"])
	assert.Equal(t, "ORD-1", msg["order_id"])
	assert.Equal(t, occurredAt.Unix(), msg["occurred_at"])

	pub, err := amqpMessage(event)
	require.NoError(t, err)
	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, amqp.Persistent, pub.DeliveryMode)
	assert.Equal(t, event.EventID, pub.MessageId)

	var decoded OrderEvent
	require.NoError(t, json.Unmarshal(pub.Body, &decoded))
	assert.Equal(t, event.OrderID, decoded.OrderID)
	assert.Equal(t, event.TicketIDs, decoded.TicketIDs)
}

func TestNewPublisher(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
		want    any
	}{
		{name: "default is nop", cfg: config.Config{}, want: Nop{}},
		{name: "none", cfg: config.Config{NotifyProvider: "none"}, want: Nop{}},
		{name: "pubnub without keys", cfg: config.Config{NotifyProvider: "pubnub"}, wantErr: true},
		{name: "unknown", cfg: config.Config{NotifyProvider: "kafka"}, wantErr: true},
		{
			name: "pubnub",
			cfg: config.Config{
				NotifyProvider:     "pubnub",
				PubNubPublishKey:   "pub-c-test",
				PubNubSubscribeKey: "sub-c-test",
				PubNubChannel:      "orders",
				BreakerMaxFailures: 3,
				BreakerCooldown:    time.Minute,
			},
			want: &Guarded{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub, err := NewPublisher(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, pub)
			assert.NoError(t, pub.Close())
		})
	}
}

func TestNewPublisher_ListsSupportedProviders(t *testing.T) {
	_, err := NewPublisher(&config.Config{NotifyProvider: "kafka"})
	assert.ErrorContains(t, err, `"kafka"`)
	assert.ErrorContains(t, err, "supported: [none pubnub amqp]")
}
