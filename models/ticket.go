package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"grandprix-booking/internal/clock"
	"grandprix-booking/internal/status"

	"github.com/shopspring/decimal"
)

type TicketKind string

const (
	KindSingleRace TicketKind = "SingleRace"
	KindSeason     TicketKind = "Season"
)

// Ticket is a sellable product. Every variant prices itself from its current
// base price and its own attributes; CalculatePrice never mutates the ticket.
type Ticket interface {
	ID() string
	Kind() TicketKind

	BasePrice() decimal.Decimal
	SetBasePrice(price decimal.Decimal) error
	EventDate() time.Time
	SetEventDate(date time.Time)
	VenueSection() string
	SetVenueSection(section string)
	IsUsed() bool
	SetUsed(used bool)

	// CreatedBy is the username of the admin that minted the ticket, or ""
	// when unknown. Resolve it through the repository.
	CreatedBy() string
	SetCreatedBy(username string)

	CalculatePrice() decimal.Decimal
	String() string
}

type ticketBase struct {
	id           string
	basePrice    decimal.Decimal
	eventDate    time.Time
	venueSection string
	used         bool
	createdBy    string
}

func newTicketBase(id string, basePrice decimal.Decimal, eventDate time.Time, venueSection string) (ticketBase, error) {
	if strings.TrimSpace(id) == "" {
		return ticketBase{}, fmt.Errorf("ticket id is required: %w", status.ErrInvalidArgument)
	}
	if err := validatePrice(basePrice); err != nil {
		return ticketBase{}, err
	}
	return ticketBase{
		id:           id,
		basePrice:    basePrice,
		eventDate:    clock.Date(eventDate),
		venueSection: venueSection,
	}, nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("price cannot be negative (%s): %w", price, status.ErrInvalidArgument)
	}
	return nil
}

func (t *ticketBase) ID() string                 { return t.id }
func (t *ticketBase) BasePrice() decimal.Decimal { return t.basePrice }
func (t *ticketBase) EventDate() time.Time       { return t.eventDate }
func (t *ticketBase) VenueSection() string       { return t.venueSection }
func (t *ticketBase) IsUsed() bool               { return t.used }
func (t *ticketBase) CreatedBy() string          { return t.createdBy }

// SetBasePrice rejects negative prices and keeps the previous one.
func (t *ticketBase) SetBasePrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	t.basePrice = price
	return nil
}

func (t *ticketBase) SetEventDate(date time.Time)    { t.eventDate = clock.Date(date) }
func (t *ticketBase) SetVenueSection(section string) { t.venueSection = section }
func (t *ticketBase) SetUsed(used bool)              { t.used = used }
func (t *ticketBase) SetCreatedBy(username string)   { t.createdBy = username }

func (t *ticketBase) describe() string {
	return fmt.Sprintf("Ticket ID: %s, Price: $%s, Date: %s, Section: %s",
		t.id, t.basePrice.StringFixed(2), t.eventDate.Format(DateLayout), t.venueSection)
}

// SingleRaceTicket admits to one race; its category sets a premium or discount.
type SingleRaceTicket struct {
	ticketBase
	raceName string
	category RaceCategory
}

func NewSingleRaceTicket(id string, basePrice decimal.Decimal, eventDate time.Time, venueSection, raceName string, category RaceCategory) (*SingleRaceTicket, error) {
	base, err := newTicketBase(id, basePrice, eventDate, venueSection)
	if err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, fmt.Errorf("unknown race category %q: %w", category, status.ErrInvalidArgument)
	}
	return &SingleRaceTicket{
		ticketBase: base,
		raceName:   raceName,
		category:   category,
	}, nil
}

func (t *SingleRaceTicket) Kind() TicketKind           { return KindSingleRace }
func (t *SingleRaceTicket) RaceName() string           { return t.raceName }
func (t *SingleRaceTicket) SetRaceName(name string)    { t.raceName = name }
func (t *SingleRaceTicket) RaceCategory() RaceCategory { return t.category }

func (t *SingleRaceTicket) SetRaceCategory(category RaceCategory) error {
	if !category.Valid() {
		return fmt.Errorf("unknown race category %q: %w", category, status.ErrInvalidArgument)
	}
	t.category = category
	return nil
}

func (t *SingleRaceTicket) CalculatePrice() decimal.Decimal {
	return t.basePrice.Mul(t.category.rate())
}

func (t *SingleRaceTicket) String() string {
	return fmt.Sprintf("%s, Race: %s, Category: %s", t.describe(), t.raceName, t.category)
}

// SeasonTicket covers a list of races; the longer the list, the larger the
// discount. EventDate is the season start.
type SeasonTicket struct {
	ticketBase
	seasonYear    int
	includedRaces []string
	raceDates     []time.Time
}

func NewSeasonTicket(id string, basePrice decimal.Decimal, eventDate time.Time, venueSection string, seasonYear int, includedRaces []string, raceDates []time.Time) (*SeasonTicket, error) {
	base, err := newTicketBase(id, basePrice, eventDate, venueSection)
	if err != nil {
		return nil, err
	}
	t := &SeasonTicket{
		ticketBase: base,
		seasonYear: seasonYear,
	}
	t.SetIncludedRaces(includedRaces)
	t.SetRaceDates(raceDates)
	return t, nil
}

func (t *SeasonTicket) Kind() TicketKind        { return KindSeason }
func (t *SeasonTicket) SeasonYear() int         { return t.seasonYear }
func (t *SeasonTicket) SetSeasonYear(year int)  { t.seasonYear = year }
func (t *SeasonTicket) IncludedRaces() []string { return slices.Clone(t.includedRaces) }

func (t *SeasonTicket) SetIncludedRaces(races []string) {
	t.includedRaces = append([]string{}, races...)
}

func (t *SeasonTicket) RaceDates() []time.Time { return slices.Clone(t.raceDates) }

func (t *SeasonTicket) SetRaceDates(dates []time.Time) {
	t.raceDates = make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t.raceDates = append(t.raceDates, clock.Date(d))
	}
}

// PriceTier reports the discount currently applied, e.g. "20% off".
func (t *SeasonTicket) PriceTier() string {
	return seasonTierFor(len(t.includedRaces)).label
}

func (t *SeasonTicket) CalculatePrice() decimal.Decimal {
	return t.basePrice.Mul(seasonTierFor(len(t.includedRaces)).rate)
}

func (t *SeasonTicket) String() string {
	races := "None"
	if len(t.includedRaces) > 0 {
		races = strings.Join(t.includedRaces, ", ")
	}
	return fmt.Sprintf("%s, Year: %d, Races: %s", t.describe(), t.seasonYear, races)
}
