package models

import (
	"encoding/json"
	"testing"
	"time"

	"grandprix-booking/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketRecord_RoundTripThroughJSON(t *testing.T) {
	single := newSingle(t, "TKT-1", "199.99", raceDay, CategoryEconomy)
	single.SetUsed(true)
	single.SetCreatedBy("ops")

	season, err := NewSeasonTicket("SEA-1", dec("1000"), raceDay, "VIP", 2025, races(10),
		[]time.Time{raceDay, raceDay.AddDate(0, 2, 0)})
	require.NoError(t, err)

	for _, original := range []Ticket{single, season} {
		t.Run(string(original.Kind()), func(t *testing.T) {
			data, err := json.Marshal(TicketToRecord(original))
			require.NoError(t, err)

			var rec TicketRecord
			require.NoError(t, json.Unmarshal(data, &rec))

			restored, err := TicketFromRecord(rec)
			require.NoError(t, err)

			assert.Equal(t, original.Kind(), restored.Kind())
			assert.Equal(t, original.ID(), restored.ID())
			assert.True(t, original.BasePrice().Equal(restored.BasePrice()))
			assert.True(t, original.CalculatePrice().Equal(restored.CalculatePrice()))
			assert.True(t, original.EventDate().Equal(restored.EventDate()))
			assert.Equal(t, original.VenueSection(), restored.VenueSection())
			assert.Equal(t, original.IsUsed(), restored.IsUsed())
			assert.Equal(t, original.CreatedBy(), restored.CreatedBy())
			assert.Equal(t, original.String(), restored.String())
		})
	}
}

func TestTicketFromRecord_UnknownKind(t *testing.T) {
	_, err := TicketFromRecord(TicketRecord{Kind: "Paddock", ID: "P-1"})
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
}

func TestOrderFromRecord_SharesRegisteredTickets(t *testing.T) {
	registered := newSingle(t, "TKT-1", "200", raceDay, CategoryPremium)
	unknown := newSingle(t, "TKT-9", "50", raceDay, CategoryStandard)

	order := NewOrder("ORD-1", today, "john_doe")
	require.NoError(t, order.AddTicket(registered))
	require.NoError(t, order.AddTicket(unknown))
	require.NoError(t, order.SetPaymentMethod(PaymentDebitCard))
	require.True(t, order.ConfirmOrder())

	rec := OrderToRecord(order)
	restored, err := OrderFromRecord(rec, func(id string) (Ticket, bool) {
		if id == registered.ID() {
			return registered, true
		}
		return nil, false
	})
	require.NoError(t, err)

	tickets := restored.Tickets()
	require.Len(t, tickets, 2)
	assert.Same(t, registered, tickets[0])
	assert.NotSame(t, unknown, tickets[1])
	assert.Equal(t, "TKT-9", tickets[1].ID())

	assert.Equal(t, OrderConfirmed, restored.Status())
	method, ok := restored.PaymentMethod()
	assert.True(t, ok)
	assert.Equal(t, PaymentDebitCard, method)
	assert.True(t, restored.TotalAmount().Equal(dec("290")))
	assert.Equal(t, "john_doe", restored.UserID())
	assert.Equal(t, order.OrderDate(), restored.OrderDate())
}

func TestOrderFromRecord_RejectsBadStatus(t *testing.T) {
	_, err := OrderFromRecord(OrderRecord{ID: "ORD-1", Status: "Shipped"}, nil)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)

	_, err = OrderFromRecord(OrderRecord{ID: "ORD-1", Status: OrderPending, PaymentMethod: "Cheque"}, nil)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
}

func TestUserRecords(t *testing.T) {
	admin, err := NewAdmin("ADM-1", "admin", "admin123", "admin@grandprix.com", 3, "System Administration", "555-0000")
	require.NoError(t, err)
	admin.AddOrder(NewOrder("ORD-1", today, "admin"))

	rec := AdminToRecord(admin)
	assert.Equal(t, RoleAdmin, rec.Role)
	assert.Equal(t, []string{"ORD-1"}, rec.OrderIDs)

	restored, err := AdminFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, admin.ID(), restored.ID())
	assert.Equal(t, admin.Username(), restored.Username())
	assert.Equal(t, admin.Email(), restored.Email())
	assert.Equal(t, admin.Phone(), restored.Phone())
	assert.Equal(t, 3, restored.Level())
	assert.Equal(t, "System Administration", restored.Department())
	assert.True(t, restored.VerifyPassword("admin123"))
	assert.Empty(t, restored.Orders())

	rec.AdminLevel = 7
	_, err = AdminFromRecord(rec)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)

	userRec := UserToRecord(admin.User)
	assert.Equal(t, RoleUser, userRec.Role)
	userRec.PasswordScheme = "sha1"
	_, err = UserFromRecord(userRec)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
}
