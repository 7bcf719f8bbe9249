package models

import (
	"fmt"
	"slices"
	"time"

	"grandprix-booking/internal/clock"
	"grandprix-booking/internal/status"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCreditCard    PaymentMethod = "Credit Card"
	PaymentDebitCard     PaymentMethod = "Debit Card"
	PaymentDigitalWallet PaymentMethod = "Digital Wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentDigitalWallet:
		return true
	}
	return false
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown payment method %q: %w", s, status.ErrInvalidArgument)
	}
	return m, nil
}

// Order groups tickets bought together. The total is recomputed on every
// ticket change; status moves Pending -> Confirmed -> Cancelled under the
// checks in ConfirmOrder and CancelAt.
type Order struct {
	id            string
	orderDate     time.Time
	status        OrderStatus
	totalAmount   decimal.Decimal
	paymentMethod PaymentMethod
	tickets       []Ticket
	userID        string
}

// NewOrder returns a pending, empty order. userID is the owning account's
// username, which is the repository's user key.
func NewOrder(id string, orderDate time.Time, userID string) *Order {
	return &Order{
		id:          id,
		orderDate:   clock.Date(orderDate),
		status:      OrderPending,
		totalAmount: decimal.Zero,
		userID:      userID,
	}
}

func (o *Order) ID() string                   { return o.id }
func (o *Order) OrderDate() time.Time         { return o.orderDate }
func (o *Order) Status() OrderStatus          { return o.status }
func (o *Order) TotalAmount() decimal.Decimal { return o.totalAmount }
func (o *Order) UserID() string               { return o.userID }
func (o *Order) Tickets() []Ticket            { return slices.Clone(o.tickets) }
func (o *Order) TicketCount() int             { return len(o.tickets) }

// PaymentMethod reports the chosen method and whether one was set.
func (o *Order) PaymentMethod() (PaymentMethod, bool) {
	return o.paymentMethod, o.paymentMethod != ""
}

func (o *Order) SetPaymentMethod(method PaymentMethod) error {
	if !method.Valid() {
		return fmt.Errorf("unknown payment method %q: %w", method, status.ErrInvalidArgument)
	}
	o.paymentMethod = method
	return nil
}

// AddTicket appends a ticket. Confirmed and cancelled orders are closed for
// changes.
func (o *Order) AddTicket(ticket Ticket) error {
	if ticket == nil {
		return fmt.Errorf("ticket is required: %w", status.ErrInvalidArgument)
	}
	if o.status != OrderPending {
		return fmt.Errorf("cannot add tickets to a %s order: %w", o.status, status.ErrIllegalState)
	}
	o.tickets = append(o.tickets, ticket)
	o.totalAmount = o.CalculateTotal()
	return nil
}

// RemoveTicket drops the first ticket with the given id. It reports false
// when the order is closed for changes or the ticket is not in it.
func (o *Order) RemoveTicket(ticketID string) bool {
	if o.status != OrderPending {
		return false
	}
	i := slices.IndexFunc(o.tickets, func(t Ticket) bool { return t.ID() == ticketID })
	if i < 0 {
		return false
	}
	o.tickets = slices.Delete(o.tickets, i, i+1)
	o.totalAmount = o.CalculateTotal()
	return true
}

func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, t := range o.tickets {
		total = total.Add(t.CalculatePrice())
	}
	return total
}

// ConfirmOrder needs at least one ticket and a payment method. Calling it again
// on a confirmed order re-checks the same conditions. A cancelled order stays
// cancelled.
func (o *Order) ConfirmOrder() bool {
	if o.status == OrderCancelled {
		return false
	}
	if len(o.tickets) == 0 {
		return false
	}
	if o.paymentMethod == "" {
		return false
	}
	o.status = OrderConfirmed
	return true
}

// CancelOrder cancels against the current wall-clock date. Callers holding a
// clock should use CancelAt with its date instead.
func (o *Order) CancelOrder() bool {
	return o.CancelAt(time.Now())
}

// CancelAt cancels the order unless a ticket has been used or its event date
// is before today. Pending and confirmed orders can both be cancelled.
func (o *Order) CancelAt(today time.Time) bool {
	for _, t := range o.tickets {
		if t.IsUsed() {
			return false
		}
	}
	day := clock.Date(today)
	for _, t := range o.tickets {
		if t.EventDate().Before(day) {
			return false
		}
	}
	o.status = OrderCancelled
	return true
}

func (o *Order) String() string {
	return fmt.Sprintf("Order #%s, Status: %s, Total: $%s, Tickets: %d",
		o.id, o.status, o.totalAmount.StringFixed(2), len(o.tickets))
}
