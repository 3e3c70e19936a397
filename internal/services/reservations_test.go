package services

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boliche-os/internal/models"
)

func TestAddReservationDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.AddReservation(AddReservationInput{
		CustomerName: "Carlos",
		StartTime:    time.Now().Add(2 * time.Hour),
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, models.ReservationPending, res.Status)
	assert.Equal(t, 1, res.LaneCount)
	assert.Empty(t, res.LaneID)
}

func TestCancelReservation(t *testing.T) {
	svc, store := newTestService(t)

	res, err := svc.AddReservation(AddReservationInput{CustomerName: "Carlos"}, testActor)
	require.NoError(t, err)

	require.NoError(t, svc.CancelReservation(res.ID, testActor))

	stored, err := store.GetReservation(res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, stored.Status)

	assert.ErrorIs(t, svc.CancelReservation(res.ID, testActor), ErrReservationFinal)
	assert.ErrorIs(t, svc.CancelReservation("missing", testActor), ErrReservationNotFound)
}

func TestUpdateReservationStatus(t *testing.T) {
	svc, store := newTestService(t)

	res, err := svc.AddReservation(AddReservationInput{CustomerName: "Ana"}, testActor)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdateReservationStatus(res.ID, "teleported", testActor), ErrInvalidTransition)

	require.NoError(t, svc.UpdateReservationStatus(res.ID, models.ReservationArrived, testActor))
	stored, _ := store.GetReservation(res.ID)
	assert.Equal(t, models.ReservationArrived, stored.Status)

	// Arrived can still move back while the party has not been seated.
	require.NoError(t, svc.UpdateReservationStatus(res.ID, models.ReservationDelayed, testActor))

	require.NoError(t, svc.UpdateReservationStatus(res.ID, models.ReservationNoShow, testActor))
	assert.ErrorIs(t, svc.UpdateReservationStatus(res.ID, models.ReservationPending, testActor), ErrReservationFinal)
}

func TestCheckInMultiLaneParty(t *testing.T) {
	svc, store := newTestService(t)

	res, err := svc.AddReservation(AddReservationInput{
		CustomerName: "Equipe da firma",
		LaneCount:    2,
		StartTime:    time.Now(),
	}, testActor)
	require.NoError(t, err)

	fulfilled, err := svc.CheckInReservation(res.ID, "22", nil, testActor)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationFulfilled, fulfilled.Status)
	require.Len(t, fulfilled.LaneIDs, 2)

	// One comanda spans the whole party; the name rides on the first lane.
	sessions, err := store.ListActiveSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	named := 0
	for _, s := range sessions {
		assert.Equal(t, "22", s.Comanda)
		if s.CustomerName != "" {
			named++
			assert.Equal(t, "Equipe da firma", s.CustomerName)
		}
	}
	assert.Equal(t, 1, named)

	for _, laneID := range fulfilled.LaneIDs {
		lane, err := store.GetLane(laneID)
		require.NoError(t, err)
		assert.Equal(t, models.LaneActive, lane.Status)
	}
}

func TestCheckInShortfallMutatesNothing(t *testing.T) {
	svc, store := newTestService(t)

	// lane-2 is occupied, so the explicit two-lane target cannot be met.
	_, err := svc.OpenLane("lane-2", "5", "", testActor)
	require.NoError(t, err)

	res, err := svc.AddReservation(AddReservationInput{CustomerName: "Carlos", LaneCount: 2}, testActor)
	require.NoError(t, err)

	_, err = svc.CheckInReservation(res.ID, "22", []string{"lane-1", "lane-2"}, testActor)
	assert.ErrorIs(t, err, ErrNoLaneAvailable)

	lane, _ := store.GetLane("lane-1")
	assert.Equal(t, models.LaneFree, lane.Status, "validation failure must not seat a partial party")

	stored, _ := store.GetReservation(res.ID)
	assert.Equal(t, models.ReservationPending, stored.Status)

	_, err = store.GetActiveSessionByComanda("22")
	assert.Error(t, err)
}

func TestCheckInRejectsDuplicateLaneTargets(t *testing.T) {
	svc, store := newTestService(t)

	res, err := svc.AddReservation(AddReservationInput{CustomerName: "Carlos", LaneCount: 2}, testActor)
	require.NoError(t, err)

	// The same free lane listed twice would pass a naive availability check
	// and then fail on the second open, leaving the first lane seated.
	_, err = svc.CheckInReservation(res.ID, "22", []string{"lane-1", "lane-1"}, testActor)
	assert.ErrorIs(t, err, ErrNoLaneAvailable)

	lane, _ := store.GetLane("lane-1")
	assert.Equal(t, models.LaneFree, lane.Status)

	stored, _ := store.GetReservation(res.ID)
	assert.Equal(t, models.ReservationPending, stored.Status)

	_, err = store.GetActiveSessionByComanda("22")
	assert.Error(t, err)
}

func TestConcurrentCancelOnlyOneWins(t *testing.T) {
	svc, store := newTestService(t)

	res, err := svc.AddReservation(AddReservationInput{CustomerName: "Carlos"}, testActor)
	require.NoError(t, err)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.CancelReservation(res.ID, testActor); err == nil {
				atomic.AddInt32(&wins, 1)
			} else {
				assert.ErrorIs(t, err, ErrReservationFinal)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	stored, _ := store.GetReservation(res.ID)
	assert.Equal(t, models.ReservationCancelled, stored.Status)
}

func TestCheckInRejectsActiveComanda(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.OpenLane("lane-1", "22", "", testActor)
	require.NoError(t, err)

	res, err := svc.AddReservation(AddReservationInput{CustomerName: "Carlos"}, testActor)
	require.NoError(t, err)

	_, err = svc.CheckInReservation(res.ID, "22", nil, testActor)
	assert.ErrorIs(t, err, ErrComandaInUse)
}

func TestCheckInConsumesWaitingEntry(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.AddToWaitingList(AddWaitingInput{Name: "Equipe", LanesRequested: 2, Comanda: "18"}, testActor)
	require.NoError(t, err)

	res, err := svc.AddReservation(AddReservationInput{CustomerName: "Equipe", LaneCount: 2}, testActor)
	require.NoError(t, err)

	_, err = svc.CheckInReservation(res.ID, "18", nil, testActor)
	require.NoError(t, err)

	// Both requested lanes were seated, so the waiting entry is gone.
	waiting, err := store.ListWaiting()
	require.NoError(t, err)
	assert.Empty(t, waiting)
}

func TestIngestReservationEvent(t *testing.T) {
	svc, store := newTestService(t)

	event := &models.ReservationEvent{
		Type: "reservation.created",
		Reservation: &models.Reservation{
			ID:           "online-1",
			CustomerName: "Cliente do app",
			StartTime:    time.Now().Add(time.Hour),
		},
		Timestamp: time.Now(),
	}

	require.NoError(t, svc.IngestReservationEvent(event))
	stored, err := store.GetReservation("online-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, stored.Status)
	assert.Equal(t, 1, stored.LaneCount)

	// Replays are dropped without touching the stored reservation.
	require.NoError(t, svc.UpdateReservationStatus("online-1", models.ReservationArrived, testActor))
	require.NoError(t, svc.IngestReservationEvent(event))
	stored, _ = store.GetReservation("online-1")
	assert.Equal(t, models.ReservationArrived, stored.Status)

	require.NoError(t, svc.IngestReservationEvent(&models.ReservationEvent{Type: "reservation.cancelled"}))
	all, _ := store.ListReservations()
	assert.Len(t, all, 1)
}

func TestReservedSoon(t *testing.T) {
	svc, _ := newTestService(t)
	now := time.Now()

	soonRes, err := svc.AddReservation(AddReservationInput{
		LaneID:       "lane-4",
		CustomerName: "Chegando",
		StartTime:    now.Add(5 * time.Minute),
	}, testActor)
	require.NoError(t, err)

	_, err = svc.AddReservation(AddReservationInput{
		LaneID:       "lane-5",
		CustomerName: "Mais tarde",
		StartTime:    now.Add(30 * time.Minute),
	}, testActor)
	require.NoError(t, err)

	anyLane, err := svc.AddReservation(AddReservationInput{
		CustomerName: "Sem pista fixa",
		StartTime:    now.Add(3 * time.Minute),
	}, testActor)
	require.NoError(t, err)

	soon, err := svc.ReservedSoon(now)
	require.NoError(t, err)

	require.Contains(t, soon, "lane-4")
	assert.Equal(t, soonRes.ID, soon["lane-4"].ID)
	assert.NotContains(t, soon, "lane-5")

	// The unassigned reservation lands on some free lane other than the
	// directly booked one.
	found := false
	for laneID, r := range soon {
		if r.ID == anyLane.ID {
			found = true
			assert.NotEqual(t, "lane-4", laneID)
		}
	}
	assert.True(t, found)
}

func TestSweepOverdueReservations(t *testing.T) {
	svc, store := newTestService(t)
	now := time.Now()

	fresh, _ := svc.AddReservation(AddReservationInput{CustomerName: "Em cima da hora", StartTime: now.Add(-5 * time.Minute)}, testActor)
	late, _ := svc.AddReservation(AddReservationInput{CustomerName: "Atrasado", StartTime: now.Add(-20 * time.Minute)}, testActor)
	gone, _ := svc.AddReservation(AddReservationInput{CustomerName: "Sumiu", StartTime: now.Add(-50 * time.Minute)}, testActor)

	require.NoError(t, svc.SweepOverdueReservations(now))

	r, _ := store.GetReservation(fresh.ID)
	assert.Equal(t, models.ReservationPending, r.Status)
	r, _ = store.GetReservation(late.ID)
	assert.Equal(t, models.ReservationDelayed, r.Status)
	r, _ = store.GetReservation(gone.ID)
	assert.Equal(t, models.ReservationNoShow, r.Status)

	// A delayed party that never shows becomes a no-show on a later sweep.
	require.NoError(t, svc.SweepOverdueReservations(now.Add(30*time.Minute)))
	r, _ = store.GetReservation(late.ID)
	assert.Equal(t, models.ReservationNoShow, r.Status)
}

func TestSweepStaleBlocks(t *testing.T) {
	svc, store := newTestService(t)
	now := time.Now()

	require.NoError(t, svc.SetReserved("lane-1", testActor))
	require.NoError(t, svc.SetReserved("lane-2", testActor))

	_, err := svc.AddReservation(AddReservationInput{
		LaneID:       "lane-2",
		CustomerName: "Ainda vem",
		StartTime:    now.Add(time.Hour),
	}, testActor)
	require.NoError(t, err)

	require.NoError(t, svc.SweepStaleBlocks(now))

	lane, _ := store.GetLane("lane-1")
	assert.Equal(t, models.LaneFree, lane.Status, "block with no backing reservation is released")
	lane, _ = store.GetLane("lane-2")
	assert.Equal(t, models.LaneReserved, lane.Status, "block with a reservation today stays")
}
