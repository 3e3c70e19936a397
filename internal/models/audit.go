package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AuditAction string

const (
	ActionOpenLane         AuditAction = "lane.open"
	ActionCloseLane        AuditAction = "lane.close"
	ActionMaintenanceSet   AuditAction = "lane.maintenance"
	ActionMaintenanceClear AuditAction = "lane.maintenance_cleared"
	ActionLaneBlock        AuditAction = "lane.block"
	ActionLaneUnblock      AuditAction = "lane.unblock"
	ActionTransfer         AuditAction = "lane.transfer"
	ActionTimeCorrection   AuditAction = "session.time_corrected"
	ActionReservationNew   AuditAction = "reservation.created"
	ActionReservationGone  AuditAction = "reservation.cancelled"
	ActionReservationState AuditAction = "reservation.status"
	ActionCheckIn          AuditAction = "reservation.checked_in"
	ActionWaitingAdded     AuditAction = "waiting.added"
	ActionWaitingRemoved   AuditAction = "waiting.removed"
	ActionWaitingPromoted  AuditAction = "waiting.promoted"
	ActionPricingUpdated   AuditAction = "pricing.updated"
	ActionHolidayAdded     AuditAction = "holiday.added"
	ActionHolidayRemoved   AuditAction = "holiday.removed"
)

// AuditEntry is one row of the append-only event trail.
type AuditEntry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	UserID    string        `json:"user_id"`
	UserName  string        `json:"user_name"`
	Action    AuditAction   `json:"action"`
	Context   string        `json:"context"`
	LaneID    string        `json:"lane_id,omitempty"`
	Details   *AuditDetails `json:"details,omitempty"`
}

// AuditDetails is a one-of: exactly one field is set, matching the entry's
// action. Typed payloads let the receipt reprint and report code switch on
// the populated branch instead of probing a generic map.
type AuditDetails struct {
	Close          *CloseDetails          `json:"close,omitempty"`
	TimeCorrection *TimeCorrectionDetails `json:"time_correction,omitempty"`
	Transfer       *TransferDetails       `json:"transfer,omitempty"`
}

// CloseDetails is the full billing snapshot recorded when a lane closes.
// It carries everything the receipt renderer needs for a reprint.
type CloseDetails struct {
	LaneName        string          `json:"lane_name"`
	LaneType        LaneType        `json:"lane_type"`
	Comanda         string          `json:"comanda"`
	CustomerName    string          `json:"customer_name,omitempty"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	Duration        time.Duration   `json:"duration"`
	DiscountMinutes int             `json:"discount_minutes"`
	IsBirthday      bool            `json:"is_birthday"`
	PricePerMinute  decimal.Decimal `json:"price_per_minute"`
	GrossValue      decimal.Decimal `json:"gross_value"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	FinalValue      decimal.Decimal `json:"final_value"`
	ReceiptNumber   int64           `json:"receipt_number"`
}

type TimeCorrectionDetails struct {
	SessionID string    `json:"session_id"`
	OldStart  time.Time `json:"old_start"`
	NewStart  time.Time `json:"new_start"`
}

type TransferDetails struct {
	SessionID  string `json:"session_id"`
	FromLaneID string `json:"from_lane_id"`
	ToLaneID   string `json:"to_lane_id"`
}

// Holiday marks a calendar day billed at the Saturday tariff regardless of
// its actual weekday. Date is a local "YYYY-MM-DD" string.
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}
