package models

import (
	"fmt"
	"strings"
	"time"

	"grandprix-booking/internal/status"

	"github.com/shopspring/decimal"
)

// TicketParams carries the variant-specific attributes for CreateTicket.
// Zero values mean "not given" and fall back to the defaults below.
type TicketParams struct {
	// SingleRace
	RaceName     string
	RaceCategory RaceCategory // defaults to Standard

	// Season
	SeasonYear    int // defaults to the event date's year
	IncludedRaces []string
	RaceDates     []time.Time
}

// CreateTicket mints a ticket of the given kind and stamps the admin as its
// creator. The ticket is not registered anywhere yet.
func (a *Admin) CreateTicket(kind TicketKind, id string, basePrice decimal.Decimal, eventDate time.Time, venueSection string, params TicketParams) (Ticket, error) {
	var ticket Ticket

	switch kind {
	case KindSingleRace:
		if strings.TrimSpace(params.RaceName) == "" {
			return nil, fmt.Errorf("race name is required for %s tickets: %w", kind, status.ErrInvalidArgument)
		}
		category := params.RaceCategory
		if category == "" {
			category = CategoryStandard
		}
		t, err := NewSingleRaceTicket(id, basePrice, eventDate, venueSection, params.RaceName, category)
		if err != nil {
			return nil, err
		}
		ticket = t

	case KindSeason:
		year := params.SeasonYear
		if year == 0 {
			year = eventDate.Year()
		}
		t, err := NewSeasonTicket(id, basePrice, eventDate, venueSection, year, params.IncludedRaces, params.RaceDates)
		if err != nil {
			return nil, err
		}
		ticket = t

	default:
		return nil, fmt.Errorf("invalid ticket type %q: %w", kind, status.ErrInvalidArgument)
	}

	ticket.SetCreatedBy(a.username)
	return ticket, nil
}
