package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"boliche-os/internal/models"
	"boliche-os/internal/pricing"
)

var ErrReceiptNotFound = errors.New("receipt not found")

// ReportLine is one closed session in the consumption report, re-priced
// from its captured lane type and opening timestamp.
type ReportLine struct {
	SessionID       string          `json:"session_id"`
	LaneID          string          `json:"lane_id"`
	LaneType        models.LaneType `json:"lane_type"`
	Comanda         string          `json:"comanda"`
	CustomerName    string          `json:"customer_name,omitempty"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	RawMinutes      decimal.Decimal `json:"raw_minutes"`
	PricePerMinute  decimal.Decimal `json:"price_per_minute"`
	GrossValue      decimal.Decimal `json:"gross_value"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	FinalValue      decimal.Decimal `json:"final_value"`
	ReceiptNumber   int64           `json:"receipt_number"`
	DiscountMinutes int             `json:"discount_minutes"`
	IsBirthday      bool            `json:"is_birthday"`
}

type TypeTotal struct {
	Sessions      int             `json:"sessions"`
	RawMinutes    decimal.Decimal `json:"raw_minutes"`
	GrossValue    decimal.Decimal `json:"gross_value"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	FinalValue    decimal.Decimal `json:"final_value"`
}

type ConsumptionReport struct {
	From   time.Time                      `json:"from"`
	To     time.Time                      `json:"to"`
	Lines  []ReportLine                   `json:"lines"`
	Totals map[models.LaneType]*TypeTotal `json:"totals"`
}

// BuildConsumptionReport re-runs the calculator over every session closed
// in the range. Because the calculator is pure and each session carries its
// lane-type snapshot and opening timestamp, the figures reproduce exactly
// what was billed at close time.
func (s *VenueService) BuildConsumptionReport(from, to time.Time) (*ConsumptionReport, error) {
	sessions, err := s.store.ListSessionsClosedBetween(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load closed sessions: %w", err)
	}
	rules, err := s.store.GetPricingRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rules: %w", err)
	}
	holidays, err := s.store.ListHolidays()
	if err != nil {
		return nil, fmt.Errorf("failed to load holiday list: %w", err)
	}

	report := &ConsumptionReport{
		From:   from,
		To:     to,
		Totals: make(map[models.LaneType]*TypeTotal),
	}

	for _, session := range sessions {
		isHoliday := pricing.IsHoliday(holidays, session.StartTime)
		bill := pricing.ComputeBill(session.StartTime, *session.EndTime,
			session.DiscountMinutes, session.IsBirthdayDiscount,
			session.LaneType, rules, isHoliday)

		report.Lines = append(report.Lines, ReportLine{
			SessionID:       session.ID,
			LaneID:          session.LaneID,
			LaneType:        session.LaneType,
			Comanda:         session.Comanda,
			CustomerName:    session.CustomerName,
			StartTime:       session.StartTime,
			EndTime:         *session.EndTime,
			RawMinutes:      bill.RawMinutes,
			PricePerMinute:  bill.PricePerMinute,
			GrossValue:      bill.GrossValue,
			DiscountValue:   bill.DiscountValue,
			FinalValue:      bill.FinalValue,
			ReceiptNumber:   session.ReceiptNumber,
			DiscountMinutes: session.DiscountMinutes,
			IsBirthday:      session.IsBirthdayDiscount,
		})

		total, ok := report.Totals[session.LaneType]
		if !ok {
			total = &TypeTotal{}
			report.Totals[session.LaneType] = total
		}
		total.Sessions++
		total.RawMinutes = total.RawMinutes.Add(bill.RawMinutes)
		total.GrossValue = total.GrossValue.Add(bill.GrossValue)
		total.DiscountValue = total.DiscountValue.Add(bill.DiscountValue)
		total.FinalValue = total.FinalValue.Add(bill.FinalValue)
	}
	return report, nil
}

func (s *VenueService) AuditTrail(limit, offset int) ([]*models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListAudit(limit, offset)
}

// ReprintReceipt recovers a receipt's billing snapshot from the audit
// trail by its receipt number.
func (s *VenueService) ReprintReceipt(receiptNumber int64) (*models.CloseDetails, error) {
	const pageSize = 200
	for offset := 0; ; offset += pageSize {
		entries, err := s.store.ListAudit(pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit trail: %w", err)
		}
		if len(entries) == 0 {
			return nil, ErrReceiptNotFound
		}
		for _, entry := range entries {
			if entry.Details == nil || entry.Details.Close == nil {
				continue
			}
			if entry.Details.Close.ReceiptNumber == receiptNumber {
				return entry.Details.Close, nil
			}
		}
	}
}

// Tariff configuration and holiday calendar management.

func (s *VenueService) PricingRules() (*pricing.Rules, error) {
	return s.store.GetPricingRules()
}

func (s *VenueService) UpdatePricingRules(rules *pricing.Rules, actor models.Actor) error {
	if err := s.store.SavePricingRules(rules); err != nil {
		return fmt.Errorf("failed to save pricing rules: %w", err)
	}
	s.audit(actor, models.ActionPricingUpdated, "Tabela de tarifas atualizada", "", nil)
	return nil
}

func (s *VenueService) Holidays() ([]*models.Holiday, error) {
	return s.store.ListHolidays()
}

func (s *VenueService) AddHoliday(date, name string, actor models.Actor) error {
	if _, err := time.ParseInLocation("2006-01-02", date, time.Local); err != nil {
		return fmt.Errorf("invalid holiday date %q: %w", date, err)
	}
	if err := s.store.SaveHoliday(&models.Holiday{Date: date, Name: name}); err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	s.audit(actor, models.ActionHolidayAdded, fmt.Sprintf("%s (%s)", name, date), "", nil)
	return nil
}

func (s *VenueService) RemoveHoliday(date string, actor models.Actor) error {
	if err := s.store.DeleteHoliday(date); err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	s.audit(actor, models.ActionHolidayRemoved, date, "", nil)
	return nil
}
