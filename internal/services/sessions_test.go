package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boliche-os/internal/logger"
	"boliche-os/internal/models"
	"boliche-os/internal/storage"
)

var testActor = models.Actor{ID: "op-1", Name: "Caixa"}

func newTestService(t *testing.T) (*VenueService, *storage.InMemoryStore) {
	t.Helper()
	store := storage.NewInMemoryStore()
	svc := NewVenueService(store, nil, logger.NewLogger(), nil, nil)
	require.NoError(t, svc.Bootstrap())
	return svc, store
}

func TestOpenLane(t *testing.T) {
	svc, store := newTestService(t)

	session, err := svc.OpenLane("lane-1", "12", "Maria", testActor)
	require.NoError(t, err)
	assert.True(t, session.IsActive)
	assert.Equal(t, "12", session.Comanda)
	assert.Equal(t, "Maria", session.CustomerName)
	assert.Equal(t, models.TypeBowling, session.LaneType)
	assert.Equal(t, "Caixa", session.OpenedBy)

	lane, err := store.GetLane("lane-1")
	require.NoError(t, err)
	assert.Equal(t, models.LaneActive, lane.Status)
	assert.Equal(t, session.ID, lane.CurrentSessionID)
}

func TestOpenLaneValidation(t *testing.T) {
	svc, _ := newTestService(t)

	for _, comanda := range []string{"0", "61", "abc", ""} {
		_, err := svc.OpenLane("lane-1", comanda, "", testActor)
		assert.ErrorIs(t, err, ErrInvalidComanda, "comanda %q", comanda)
	}

	_, err := svc.OpenLane("no-such-lane", "5", "", testActor)
	assert.ErrorIs(t, err, ErrLaneNotFound)
}

func TestOpenLaneRejectsDuplicateComanda(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.OpenLane("lane-1", "12", "", testActor)
	require.NoError(t, err)

	_, err = svc.OpenLane("lane-2", "12", "", testActor)
	assert.ErrorIs(t, err, ErrComandaInUse)

	lane, err := store.GetLane("lane-2")
	require.NoError(t, err)
	assert.Equal(t, models.LaneFree, lane.Status)
}

func TestOpenLaneOnOccupiedLane(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenLane("lane-1", "12", "", testActor)
	require.NoError(t, err)

	_, err = svc.OpenLane("lane-1", "13", "", testActor)
	assert.ErrorIs(t, err, ErrLaneUnavailable)
}

func TestOpenLaneOnBlockedLane(t *testing.T) {
	svc, store := newTestService(t)

	require.NoError(t, svc.SetReserved("lane-3", testActor))

	// A blocked lane accepts the party it was being held for.
	_, err := svc.OpenLane("lane-3", "7", "Grupo da reserva", testActor)
	require.NoError(t, err)

	lane, err := store.GetLane("lane-3")
	require.NoError(t, err)
	assert.Equal(t, models.LaneActive, lane.Status)
}

func TestCloseLane(t *testing.T) {
	svc, store := newTestService(t)

	opened, err := svc.OpenLane("lane-1", "12", "Maria", testActor)
	require.NoError(t, err)

	closed, err := svc.CloseLane("lane-1", 0, false, testActor)
	require.NoError(t, err)

	assert.False(t, closed.IsActive)
	require.NotNil(t, closed.EndTime)
	assert.Equal(t, int64(1), closed.ReceiptNumber)
	assert.Equal(t, opened.ID, closed.ID)
	assert.True(t, closed.FinalValue.Equal(closed.GrossValue.Sub(closed.DiscountValue)))
	assert.True(t, closed.FinalValue.GreaterThanOrEqual(decimal.Zero))

	lane, err := store.GetLane("lane-1")
	require.NoError(t, err)
	assert.Equal(t, models.LaneFree, lane.Status)
	assert.Empty(t, lane.CurrentSessionID)
	assert.Greater(t, lane.TotalUsage, time.Duration(0))

	// The audit trail keeps the full billing snapshot for reprints.
	entries, err := store.ListAudit(10, 0)
	require.NoError(t, err)
	var snapshot *models.CloseDetails
	for _, e := range entries {
		if e.Details != nil && e.Details.Close != nil {
			snapshot = e.Details.Close
		}
	}
	require.NotNil(t, snapshot)
	assert.Equal(t, int64(1), snapshot.ReceiptNumber)
	assert.Equal(t, "12", snapshot.Comanda)
}

func TestCloseLaneWithoutSession(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CloseLane("lane-1", 0, false, testActor)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestReceiptNumbersAreMonotonic(t *testing.T) {
	svc, _ := newTestService(t)

	for i, laneID := range []string{"lane-1", "lane-2", "lane-3"} {
		_, err := svc.OpenLane(laneID, "1", "", testActor)
		require.NoError(t, err)
		closed, err := svc.CloseLane(laneID, 0, false, testActor)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), closed.ReceiptNumber)
	}
}

func TestBillingUsesCorrectedStartTime(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenLane("lane-1", "12", "", testActor)
	require.NoError(t, err)

	session, err := svc.CorrectStartTime("lane-1", time.Now().Add(-time.Hour), testActor)
	require.NoError(t, err)

	closed, err := svc.CloseLane("lane-1", 0, false, testActor)
	require.NoError(t, err)

	ppm := closed.PricePerMinute.InexactFloat64()
	assert.InDelta(t, 60*ppm, closed.GrossValue.InexactFloat64(), ppm, "one hour at the locked rate")
	assert.Equal(t, session.StartTime.Unix(), closed.StartTime.Unix())
}

func TestDiscountCappedAtSessionLength(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenLane("lane-1", "12", "Aniversariante", testActor)
	require.NoError(t, err)
	_, err = svc.CorrectStartTime("lane-1", time.Now().Add(-20*time.Minute), testActor)
	require.NoError(t, err)

	// Birthday alone grants 30 minutes; only the 20 played can be waived.
	closed, err := svc.CloseLane("lane-1", 0, true, testActor)
	require.NoError(t, err)

	assert.True(t, closed.FinalValue.IsZero(), "final was %s", closed.FinalValue)
	assert.True(t, closed.DiscountValue.Equal(closed.GrossValue))
	assert.True(t, closed.IsBirthdayDiscount)
}

func TestCorrectStartTimeRejectsFuture(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenLane("lane-1", "12", "", testActor)
	require.NoError(t, err)

	_, err = svc.CorrectStartTime("lane-1", time.Now().Add(time.Hour), testActor)
	assert.ErrorIs(t, err, ErrInvalidStartTime)
}

func TestMaintenancePauseAndResume(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.OpenLane("lane-1", "12", "", testActor)
	require.NoError(t, err)

	require.NoError(t, svc.SetMaintenance("lane-1", "máquina travada", testActor))

	lane, err := store.GetLane("lane-1")
	require.NoError(t, err)
	assert.Equal(t, models.LaneActive, lane.Status, "session stays open during the pause")
	assert.True(t, lane.IsMaintenancePaused)
	assert.Equal(t, "máquina travada", lane.MaintenanceReason)

	session, err := store.GetSession(lane.CurrentSessionID)
	require.NoError(t, err)
	require.NotNil(t, session.LastMaintenanceStart)

	// Pausing an already paused lane changes nothing.
	require.NoError(t, svc.SetMaintenance("lane-1", "outro motivo", testActor))

	require.NoError(t, svc.ClearMaintenance("lane-1", testActor))

	lane, err = store.GetLane("lane-1")
	require.NoError(t, err)
	assert.False(t, lane.IsMaintenancePaused)
	assert.Empty(t, lane.MaintenanceReason)

	session, err = store.GetSession(lane.CurrentSessionID)
	require.NoError(t, err)
	assert.Nil(t, session.LastMaintenanceStart)
	assert.GreaterOrEqual(t, session.MaintenanceTimeTotal, time.Duration(0))
}

func TestMaintenanceOnFreeLane(t *testing.T) {
	svc, store := newTestService(t)

	require.NoError(t, svc.SetMaintenance("lane-5", "reforma", testActor))
	lane, err := store.GetLane("lane-5")
	require.NoError(t, err)
	assert.Equal(t, models.LaneMaintenance, lane.Status)

	require.NoError(t, svc.ClearMaintenance("lane-5", testActor))
	lane, err = store.GetLane("lane-5")
	require.NoError(t, err)
	assert.Equal(t, models.LaneFree, lane.Status)
}

func TestCloseFoldsOpenPause(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenLane("lane-1", "12", "", testActor)
	require.NoError(t, err)
	require.NoError(t, svc.SetMaintenance("lane-1", "pino preso", testActor))

	closed, err := svc.CloseLane("lane-1", 0, false, testActor)
	require.NoError(t, err)
	assert.Nil(t, closed.LastMaintenanceStart)
	assert.GreaterOrEqual(t, closed.MaintenanceTimeTotal, time.Duration(0))
	assert.False(t, closed.IsActive)
}

func TestTransferSession(t *testing.T) {
	svc, store := newTestService(t)

	opened, err := svc.OpenLane("lane-1", "12", "Maria", testActor)
	require.NoError(t, err)

	require.NoError(t, svc.TransferSession("lane-1", "lane-2", testActor))

	session, err := store.GetSession(opened.ID)
	require.NoError(t, err)
	assert.Equal(t, "lane-2", session.LaneID)
	assert.Equal(t, "12", session.Comanda)
	assert.Equal(t, opened.StartTime.Unix(), session.StartTime.Unix(), "the bill clock keeps running")

	from, _ := store.GetLane("lane-1")
	to, _ := store.GetLane("lane-2")
	assert.Equal(t, models.LaneFree, from.Status)
	assert.Equal(t, models.LaneActive, to.Status)
	assert.Equal(t, session.ID, to.CurrentSessionID)
}

func TestTransferValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenLane("lane-1", "12", "", testActor)
	require.NoError(t, err)
	_, err = svc.OpenLane("lane-2", "13", "", testActor)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.TransferSession("lane-1", "snooker-1", testActor), ErrLaneTypeMismatch)
	assert.ErrorIs(t, svc.TransferSession("lane-1", "lane-2", testActor), ErrLaneUnavailable)
	assert.ErrorIs(t, svc.TransferSession("lane-3", "lane-4", testActor), ErrNoActiveSession)
}

func TestManualBlockToggle(t *testing.T) {
	svc, store := newTestService(t)

	require.NoError(t, svc.SetReserved("lane-1", testActor))
	lane, _ := store.GetLane("lane-1")
	assert.Equal(t, models.LaneReserved, lane.Status)

	// Only free lanes can be blocked.
	_, err := svc.OpenLane("lane-2", "9", "", testActor)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.SetReserved("lane-2", testActor), ErrLaneUnavailable)

	require.NoError(t, svc.ClearReserved("lane-1", testActor))
	lane, _ = store.GetLane("lane-1")
	assert.Equal(t, models.LaneFree, lane.Status)

	// Unblocking a lane that is not blocked is a no-op.
	require.NoError(t, svc.ClearReserved("lane-3", testActor))
}

func TestBilliardsSessionUsesFlatRate(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenLane("snooker-1", "30", "", testActor)
	require.NoError(t, err)
	_, err = svc.CorrectStartTime("snooker-1", time.Now().Add(-56*time.Minute), testActor)
	require.NoError(t, err)

	closed, err := svc.CloseLane("snooker-1", 0, false, testActor)
	require.NoError(t, err)

	assert.Equal(t, models.TypeBilliards, closed.LaneType)
	assert.True(t, closed.PricePerMinute.Equal(decimal.RequireFromString("0.63")))
	assert.InDelta(t, 35.28, closed.GrossValue.InexactFloat64(), 0.05)
}

type recordingLock struct {
	acquired []string
	released []string
}

func (l *recordingLock) AcquireComanda(comanda, sessionID string) (bool, error) {
	l.acquired = append(l.acquired, comanda+":"+sessionID)
	return true, nil
}

func (l *recordingLock) ReleaseComanda(comanda, sessionID string) error {
	l.released = append(l.released, comanda+":"+sessionID)
	return nil
}

type failingSessionStore struct {
	*storage.InMemoryStore
}

func (s *failingSessionStore) SaveSession(session *models.Session) error {
	return errors.New("disk full")
}

func TestOpenLaneReleasesLockWhenSaveFails(t *testing.T) {
	inner := storage.NewInMemoryStore()
	seedLane(t, inner, "lane-1", models.LaneFree)

	lock := &recordingLock{}
	svc := NewVenueService(&failingSessionStore{inner}, nil, logger.NewLogger(), lock, nil)

	_, err := svc.OpenLane("lane-1", "12", "", testActor)
	require.Error(t, err)

	require.Len(t, lock.acquired, 1)
	assert.Equal(t, lock.acquired, lock.released, "failed open must give the comanda lock back")

	lane, _ := inner.GetLane("lane-1")
	assert.Equal(t, models.LaneFree, lane.Status)
}
