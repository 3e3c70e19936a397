package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"boliche-os/internal/models"
)

const birthdayDiscountMinutes = 30

// PerMinute maps an opening timestamp to the applicable per-minute rate.
// The rate is decided by the local calendar day and hour of the OPENING
// time only: a session opened at 17:50 keeps the before-18h rate no matter
// when it closes. Billiards tables ignore the calendar entirely.
// Pure: same inputs, same output. Invoked live at open and again when
// reports re-derive historical bills.
func PerMinute(t time.Time, laneType models.LaneType, rules *Rules, isHoliday bool) decimal.Decimal {
	if laneType == models.TypeBilliards {
		return rules.Billiards.AllDay
	}

	day := t.Weekday()
	hour := t.Hour()

	// Holidays bill as Saturdays.
	if day == time.Saturday || isHoliday {
		return rules.Bowling.Saturday.AllDay
	}
	if day == time.Sunday {
		return rules.Bowling.Sunday.AllDay
	}
	if day == time.Friday {
		if hour < 18 {
			return rules.Bowling.Friday.Before18h
		}
		return rules.Bowling.Friday.After18h
	}
	if hour < 18 {
		return rules.Bowling.Weekday.Before18h
	}
	return rules.Bowling.Weekday.After18h
}

// LocalDateISO renders the local calendar day of t as "YYYY-MM-DD", the key
// format of the holiday list.
func LocalDateISO(t time.Time) string {
	return t.Format("2006-01-02")
}

// IsHoliday is an exact date membership test; no ranges, no recurrence.
func IsHoliday(holidays []*models.Holiday, t time.Time) bool {
	date := LocalDateISO(t)
	for _, h := range holidays {
		if h.Date == date {
			return true
		}
	}
	return false
}

// Bill is the computed outcome of closing a session.
type Bill struct {
	RawMinutes      decimal.Decimal `json:"raw_minutes"`
	DiscountMinutes decimal.Decimal `json:"discount_minutes"`
	BilledMinutes   decimal.Decimal `json:"billed_minutes"`
	PricePerMinute  decimal.Decimal `json:"price_per_minute"`
	GrossValue      decimal.Decimal `json:"gross_value"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	FinalValue      decimal.Decimal `json:"final_value"`
}

// ComputeBill turns a session's timestamps and discounts into money.
// Raw duration is wall clock end-start; maintenance pauses are NOT
// subtracted here (they only suspend the live display). The birthday flag
// adds a 30-minute allowance on top of the manual discount; the discount
// value is capped at the minutes actually elapsed so FinalValue is never
// negative and the receipt never shows a discount larger than the session.
func ComputeBill(start, end time.Time, discountMinutes int, isBirthday bool, laneType models.LaneType, rules *Rules, isHoliday bool) Bill {
	rawMs := end.Sub(start).Milliseconds()
	if rawMs < 0 {
		rawMs = 0
	}
	rawMinutes := decimal.NewFromInt(rawMs).Div(decimal.NewFromInt(60000))

	totalDiscount := decimal.NewFromInt(int64(discountMinutes))
	if isBirthday {
		totalDiscount = totalDiscount.Add(decimal.NewFromInt(birthdayDiscountMinutes))
	}
	// Cap at the elapsed minutes.
	effectiveDiscount := decimal.Min(totalDiscount, rawMinutes)

	billedMinutes := rawMinutes.Sub(totalDiscount)
	if billedMinutes.IsNegative() {
		billedMinutes = decimal.Zero
	}

	rate := PerMinute(start, laneType, rules, isHoliday)

	gross := rawMinutes.Mul(rate).Round(2)
	discountValue := effectiveDiscount.Mul(rate).Round(2)
	final := gross.Sub(discountValue)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return Bill{
		RawMinutes:      rawMinutes,
		DiscountMinutes: effectiveDiscount,
		BilledMinutes:   billedMinutes,
		PricePerMinute:  rate,
		GrossValue:      gross,
		DiscountValue:   discountValue,
		FinalValue:      final,
	}
}
