package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session is one billable occupancy of a lane, from open to close. It is
// never deleted: closed sessions feed history and the consumption report.
// LaneType is snapshotted at open time so later lane edits do not change
// how a historical session is billed.
type Session struct {
	ID                   string        `json:"id"`
	LaneID               string        `json:"lane_id"`
	Comanda              string        `json:"comanda"`
	CustomerName         string        `json:"customer_name,omitempty"`
	OpenedBy             string        `json:"opened_by"`
	OpenedByID           string        `json:"opened_by_id"`
	StartTime            time.Time     `json:"start_time"`
	EndTime              *time.Time    `json:"end_time,omitempty"`
	MaintenanceTimeTotal time.Duration `json:"maintenance_time_total"`
	LastMaintenanceStart *time.Time    `json:"last_maintenance_start,omitempty"`
	IsActive             bool          `json:"is_active"`
	DiscountMinutes      int           `json:"discount_minutes"`
	IsBirthdayDiscount   bool          `json:"is_birthday_discount"`
	LaneType             LaneType      `json:"lane_type"`

	// Billing fields, finalized on close.
	ReceiptNumber  int64           `json:"receipt_number,omitempty"`
	PricePerMinute decimal.Decimal `json:"price_per_minute"`
	GrossValue     decimal.Decimal `json:"gross_value"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	FinalValue     decimal.Decimal `json:"final_value"`
}

// ElapsedBillable is the running-timer value shown on the lane card: wall
// clock since open minus accumulated maintenance pauses, including the one
// in progress. Note the billed duration at close does NOT subtract pauses;
// only this display value does.
func (s *Session) ElapsedBillable(now time.Time) time.Duration {
	elapsed := now.Sub(s.StartTime) - s.MaintenanceTimeTotal
	if s.LastMaintenanceStart != nil {
		elapsed -= now.Sub(*s.LastMaintenanceStart)
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Duration, wall clock. For a still-active session it is the time since open.
func (s *Session) Duration(now time.Time) time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}
