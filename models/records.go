package models

import (
	"fmt"
	"time"

	"grandprix-booking/internal/status"

	"github.com/shopspring/decimal"
)

// The record types are the durable shape of the entities. Tickets are a
// tagged union on Kind.

type TicketRecord struct {
	Kind         TicketKind      `json:"kind"`
	ID           string          `json:"id"`
	BasePrice    decimal.Decimal `json:"base_price"`
	EventDate    time.Time       `json:"event_date"`
	VenueSection string          `json:"venue_section"`
	Used         bool            `json:"used"`
	CreatedBy    string          `json:"created_by,omitempty"`

	RaceName     string       `json:"race_name,omitempty"`
	RaceCategory RaceCategory `json:"race_category,omitempty"`

	SeasonYear    int         `json:"season_year,omitempty"`
	IncludedRaces []string    `json:"included_races,omitempty"`
	RaceDates     []time.Time `json:"race_dates,omitempty"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type UserRecord struct {
	Role           string         `json:"role"`
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	PasswordScheme PasswordScheme `json:"password_scheme"`
	Password       string         `json:"password"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone,omitempty"`
	OrderIDs       []string       `json:"order_ids"`

	AdminLevel int    `json:"admin_level,omitempty"`
	Department string `json:"department,omitempty"`
}

type OrderRecord struct {
	ID            string          `json:"id"`
	OrderDate     time.Time       `json:"order_date"`
	Status        OrderStatus     `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty"`
	UserID        string          `json:"user_id"`
	Tickets       []TicketRecord  `json:"tickets"`
}

func TicketToRecord(t Ticket) TicketRecord {
	rec := TicketRecord{
		Kind:         t.Kind(),
		ID:           t.ID(),
		BasePrice:    t.BasePrice(),
		EventDate:    t.EventDate(),
		VenueSection: t.VenueSection(),
		Used:         t.IsUsed(),
		CreatedBy:    t.CreatedBy(),
	}
	switch v := t.(type) {
	case *SingleRaceTicket:
		rec.RaceName = v.raceName
		rec.RaceCategory = v.category
	case *SeasonTicket:
		rec.SeasonYear = v.seasonYear
		rec.IncludedRaces = v.IncludedRaces()
		rec.RaceDates = v.RaceDates()
	}
	return rec
}

func TicketFromRecord(rec TicketRecord) (Ticket, error) {
	var t Ticket
	switch rec.Kind {
	case KindSingleRace:
		srt, err := NewSingleRaceTicket(rec.ID, rec.BasePrice, rec.EventDate, rec.VenueSection, rec.RaceName, rec.RaceCategory)
		if err != nil {
			return nil, fmt.Errorf("ticket %s: %w", rec.ID, err)
		}
		t = srt
	case KindSeason:
		st, err := NewSeasonTicket(rec.ID, rec.BasePrice, rec.EventDate, rec.VenueSection, rec.SeasonYear, rec.IncludedRaces, rec.RaceDates)
		if err != nil {
			return nil, fmt.Errorf("ticket %s: %w", rec.ID, err)
		}
		t = st
	default:
		return nil, fmt.Errorf("ticket %s: unknown kind %q: %w", rec.ID, rec.Kind, status.ErrInvalidArgument)
	}
	t.SetUsed(rec.Used)
	t.SetCreatedBy(rec.CreatedBy)
	return t, nil
}

func UserToRecord(u *User) UserRecord {
	rec := UserRecord{
		Role:           RoleUser,
		ID:             u.id,
		Username:       u.username,
		PasswordScheme: u.scheme,
		Password:       u.secret,
		Email:          u.email,
		Phone:          u.phone,
		OrderIDs:       make([]string, 0, len(u.orders)),
	}
	for _, o := range u.orders {
		rec.OrderIDs = append(rec.OrderIDs, o.id)
	}
	return rec
}

func AdminToRecord(a *Admin) UserRecord {
	rec := UserToRecord(a.User)
	rec.Role = RoleAdmin
	rec.AdminLevel = a.level
	rec.Department = a.department
	return rec
}

// UserFromRecord rebuilds a user without its order history; the caller
// re-links orders once they are loaded. The stored credential is taken as is.
func UserFromRecord(rec UserRecord) (*User, error) {
	scheme, err := ParsePasswordScheme(string(rec.PasswordScheme))
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", rec.Username, err)
	}
	if rec.Username == "" {
		return nil, fmt.Errorf("user %s: username is required: %w", rec.ID, status.ErrInvalidArgument)
	}
	return &User{
		id:       rec.ID,
		username: rec.Username,
		scheme:   scheme,
		secret:   rec.Password,
		email:    rec.Email,
		phone:    rec.Phone,
	}, nil
}

func AdminFromRecord(rec UserRecord) (*Admin, error) {
	u, err := UserFromRecord(rec)
	if err != nil {
		return nil, err
	}
	a := &Admin{User: u, department: rec.Department}
	if err := a.SetLevel(rec.AdminLevel); err != nil {
		return nil, fmt.Errorf("admin %s: %w", rec.Username, err)
	}
	return a, nil
}

func OrderToRecord(o *Order) OrderRecord {
	rec := OrderRecord{
		ID:            o.id,
		OrderDate:     o.orderDate,
		Status:        o.status,
		TotalAmount:   o.totalAmount,
		PaymentMethod: o.paymentMethod,
		UserID:        o.userID,
		Tickets:       make([]TicketRecord, 0, len(o.tickets)),
	}
	for _, t := range o.tickets {
		rec.Tickets = append(rec.Tickets, TicketToRecord(t))
	}
	return rec
}

// OrderFromRecord rebuilds an order. lookup returns the registered ticket for
// an id so the order shares it with the catalog; tickets it does not know are
// rebuilt from the embedded record.
func OrderFromRecord(rec OrderRecord, lookup func(id string) (Ticket, bool)) (*Order, error) {
	if !rec.Status.Valid() {
		return nil, fmt.Errorf("order %s: unknown status %q: %w", rec.ID, rec.Status, status.ErrInvalidArgument)
	}
	if rec.PaymentMethod != "" && !rec.PaymentMethod.Valid() {
		return nil, fmt.Errorf("order %s: unknown payment method %q: %w", rec.ID, rec.PaymentMethod, status.ErrInvalidArgument)
	}
	o := NewOrder(rec.ID, rec.OrderDate, rec.UserID)
	o.status = rec.Status
	o.paymentMethod = rec.PaymentMethod
	for _, tr := range rec.Tickets {
		if lookup != nil {
			if t, ok := lookup(tr.ID); ok {
				o.tickets = append(o.tickets, t)
				continue
			}
		}
		t, err := TicketFromRecord(tr)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", rec.ID, err)
		}
		o.tickets = append(o.tickets, t)
	}
	o.totalAmount = o.CalculateTotal()
	return o, nil
}
