package pricing

import (
	"github.com/shopspring/decimal"
)

// Rules is the per-minute tariff table, keyed the way the venue quotes it:
// bowling varies by day bucket and time of day, billiards is one flat rate.
type Rules struct {
	Bowling   BowlingRules   `json:"BOL"`
	Billiards BilliardsRules `json:"SNK"`
}

type BowlingRules struct {
	Weekday  HourSplit `json:"weekday"`
	Friday   HourSplit `json:"friday"`
	Saturday FlatRate  `json:"saturday"`
	Sunday   FlatRate  `json:"sunday"`
}

// HourSplit prices a day with a hard break at local 18:00.
type HourSplit struct {
	Before18h decimal.Decimal `json:"before18h"`
	After18h  decimal.Decimal `json:"after18h"`
}

type FlatRate struct {
	AllDay decimal.Decimal `json:"allDay"`
}

type BilliardsRules struct {
	AllDay decimal.Decimal `json:"allDay"`
}

// DefaultRules returns the house tariff, in R$/minute:
// bowling Mon-Thu 1.40/1.75, Friday 1.70/2.00, Saturday and holidays 2.35
// all day, Sunday 2.20 all day; billiards flat 0.63.
func DefaultRules() *Rules {
	return &Rules{
		Bowling: BowlingRules{
			Weekday:  HourSplit{Before18h: dec("1.40"), After18h: dec("1.75")},
			Friday:   HourSplit{Before18h: dec("1.70"), After18h: dec("2.00")},
			Saturday: FlatRate{AllDay: dec("2.35")},
			Sunday:   FlatRate{AllDay: dec("2.20")},
		},
		Billiards: BilliardsRules{AllDay: dec("0.63")},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
