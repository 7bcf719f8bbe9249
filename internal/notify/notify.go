// Package notify publishes order lifecycle events to an external channel.
// Publishing is best effort: the repository logs failures and carries on.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"grandprix-booking/models"
	"grandprix-booking/utils"

	"github.com/google/uuid"
)

type EventType string

const (
	EventOrderCreated EventType = "order.created"
	EventOrderUpdated EventType = "order.updated"
)

type OrderEvent struct {
	Type        EventType `json:"type"`
	EventID     string    `json:"event_id"`
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	Previous    string    `json:"previous_status,omitempty"`
	TotalAmount string    `json:"total_amount"`
	TicketIDs   []string  `json:"ticket_ids"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewOrderEvent captures the current state of order. previous is the status
// before an update and may be empty.
func NewOrderEvent(typ EventType, order *models.Order, previous models.OrderStatus, at time.Time) OrderEvent {
	tickets := order.Tickets()
	ids := make([]string, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID()
	}
	return OrderEvent{
		Type:        typ,
		EventID:     uuid.NewString(),
		OrderID:     order.ID(),
		UserID:      order.UserID(),
		Status:      string(order.Status()),
		Previous:    string(previous),
		TotalAmount: order.TotalAmount().StringFixed(2),
		TicketIDs:   ids,
		OccurredAt:  at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
func (Nop) Close() error                             { return nil }

// Guarded wraps a publisher with a circuit breaker so a provider that keeps
// failing is skipped until its cooldown expires.
type Guarded struct {
	next    Publisher
	breaker *utils.CircuitBreaker
}

func NewGuarded(next Publisher, breaker *utils.CircuitBreaker) *Guarded {
	return &Guarded{next: next, breaker: breaker}
}

func (g *Guarded) Publish(ctx context.Context, event OrderEvent) error {
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.next.Publish(ctx, event)
	})
	if errors.Is(err, utils.ErrCircuitOpen) {
		slog.Warn("order event dropped", "breaker", g.breaker.Name(), "event", event.Type, "order_id", event.OrderID)
	}
	return err
}

func (g *Guarded) Close() error {
	return g.next.Close()
}
