package models

import (
	"fmt"

	"grandprix-booking/internal/status"

	"github.com/shopspring/decimal"
)

// DateLayout is used wherever a calendar day is printed or parsed.
const DateLayout = "2006-01-02"

type RaceCategory string

const (
	CategoryPremium  RaceCategory = "Premium"
	CategoryStandard RaceCategory = "Standard"
	CategoryEconomy  RaceCategory = "Economy"
)

var (
	premiumRate = decimal.RequireFromString("1.20")
	economyRate = decimal.RequireFromString("0.90")
)

func (c RaceCategory) Valid() bool {
	switch c {
	case CategoryPremium, CategoryStandard, CategoryEconomy:
		return true
	}
	return false
}

func (c RaceCategory) rate() decimal.Decimal {
	switch c {
	case CategoryPremium:
		return premiumRate
	case CategoryEconomy:
		return economyRate
	default:
		return decimal.NewFromInt(1)
	}
}

// ParseRaceCategory accepts the category names case-sensitively.
func ParseRaceCategory(s string) (RaceCategory, error) {
	c := RaceCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown race category %q: %w", s, status.ErrInvalidArgument)
	}
	return c, nil
}

type seasonTier struct {
	minRaces int
	rate     decimal.Decimal
	label    string
}

// Ordered from the largest discount down; the first tier whose lower bound is
// reached wins, so the bounds are inclusive.
var seasonTiers = []seasonTier{
	{minRaces: 15, rate: decimal.RequireFromString("0.70"), label: "30% off"},
	{minRaces: 10, rate: decimal.RequireFromString("0.80"), label: "20% off"},
	{minRaces: 5, rate: decimal.RequireFromString("0.90"), label: "10% off"},
}

var noDiscount = seasonTier{rate: decimal.NewFromInt(1), label: "no discount"}

func seasonTierFor(races int) seasonTier {
	for _, tier := range seasonTiers {
		if races >= tier.minRaces {
			return tier
		}
	}
	return noDiscount
}
