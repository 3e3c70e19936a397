package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boliche-os/internal/models"
	"boliche-os/internal/pricing"
	"boliche-os/internal/storage"
	"boliche-os/internal/utils"
)

func seedClosedAt(t *testing.T, store *storage.InMemoryStore, laneType models.LaneType, start, end string, discountMin int) {
	t.Helper()
	st, err := time.ParseInLocation("2006-01-02 15:04", start, time.Local)
	require.NoError(t, err)
	en, err := time.ParseInLocation("2006-01-02 15:04", end, time.Local)
	require.NoError(t, err)
	session := &models.Session{
		ID:              utils.GenerateSessionID(),
		LaneID:          "lane-1",
		Comanda:         "3",
		StartTime:       st,
		EndTime:         &en,
		LaneType:        laneType,
		DiscountMinutes: discountMin,
	}
	require.NoError(t, store.SaveSession(session))
}

func TestBuildConsumptionReport(t *testing.T) {
	svc, store := newBareService(t)

	// A regular Monday: bowling before 18h, billiards at the flat rate.
	seedClosedAt(t, store, models.TypeBowling, "2026-03-02 10:00", "2026-03-02 11:00", 0)
	seedClosedAt(t, store, models.TypeBilliards, "2026-03-02 20:00", "2026-03-02 21:00", 0)
	seedClosedAt(t, store, models.TypeBowling, "2026-03-02 14:00", "2026-03-02 15:00", 10)

	from, _ := time.ParseInLocation("2006-01-02", "2026-03-02", time.Local)
	report, err := svc.BuildConsumptionReport(from, from.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, report.Lines, 3)

	bol := report.Totals[models.TypeBowling]
	require.NotNil(t, bol)
	assert.Equal(t, 2, bol.Sessions)
	// 60 min at 1.40 twice, minus the 10-minute courtesy on the second.
	assert.Equal(t, "168.00", bol.GrossValue.StringFixed(2))
	assert.Equal(t, "14.00", bol.DiscountValue.StringFixed(2))
	assert.Equal(t, "154.00", bol.FinalValue.StringFixed(2))

	snk := report.Totals[models.TypeBilliards]
	require.NotNil(t, snk)
	assert.Equal(t, 1, snk.Sessions)
	assert.Equal(t, "37.80", snk.GrossValue.StringFixed(2))

	for _, line := range report.Lines {
		assert.True(t, line.FinalValue.Equal(line.GrossValue.Sub(line.DiscountValue)))
	}
}

func TestConsumptionReportEmptyRange(t *testing.T) {
	svc, _ := newBareService(t)

	from, _ := time.ParseInLocation("2006-01-02", "2026-03-02", time.Local)
	report, err := svc.BuildConsumptionReport(from, from.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, report.Lines)
	assert.Empty(t, report.Totals)
}

func TestReprintReceipt(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenLane("lane-1", "12", "Maria", testActor)
	require.NoError(t, err)
	closed, err := svc.CloseLane("lane-1", 0, false, testActor)
	require.NoError(t, err)

	snapshot, err := svc.ReprintReceipt(closed.ReceiptNumber)
	require.NoError(t, err)
	assert.Equal(t, "12", snapshot.Comanda)
	assert.Equal(t, "Maria", snapshot.CustomerName)
	assert.True(t, snapshot.FinalValue.Equal(closed.FinalValue))

	_, err = svc.ReprintReceipt(999)
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestAuditTrailDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenLane("lane-1", "12", "", testActor)
	require.NoError(t, err)

	entries, err := svc.AuditTrail(0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, models.ActionOpenLane, entries[0].Action, "newest first")
}

func TestUpdatePricingRules(t *testing.T) {
	svc, store := newTestService(t)

	rules := pricing.DefaultRules()
	rules.Billiards.AllDay = rules.Billiards.AllDay.Add(rules.Billiards.AllDay)

	require.NoError(t, svc.UpdatePricingRules(rules, testActor))

	stored, err := store.GetPricingRules()
	require.NoError(t, err)
	assert.True(t, stored.Billiards.AllDay.Equal(rules.Billiards.AllDay))

	entries, err := store.ListAudit(1, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionPricingUpdated, entries[0].Action)
}

func TestHolidayManagement(t *testing.T) {
	svc, store := newTestService(t)

	assert.Error(t, svc.AddHoliday("31/12/2026", "Réveillon", testActor))

	require.NoError(t, svc.AddHoliday("2026-12-31", "Réveillon", testActor))
	holidays, err := store.ListHolidays()
	require.NoError(t, err)
	found := false
	for _, h := range holidays {
		if h.Date == "2026-12-31" {
			found = true
		}
	}
	assert.True(t, found)

	require.NoError(t, svc.RemoveHoliday("2026-12-31", testActor))
	holidays, _ = store.ListHolidays()
	for _, h := range holidays {
		assert.NotEqual(t, "2026-12-31", h.Date)
	}
}
