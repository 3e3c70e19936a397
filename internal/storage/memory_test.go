package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boliche-os/internal/models"
)

func TestLanesSortedByName(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.SaveLane(&models.Lane{ID: "b", Name: "Pista 02", Type: models.TypeBowling, Status: models.LaneFree}))
	require.NoError(t, store.SaveLane(&models.Lane{ID: "a", Name: "Pista 01", Type: models.TypeBowling, Status: models.LaneFree}))

	lanes, err := store.ListLanes()
	require.NoError(t, err)
	require.Len(t, lanes, 2)
	assert.Equal(t, "Pista 01", lanes[0].Name)
	assert.Equal(t, "Pista 02", lanes[1].Name)
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.SaveLane(&models.Lane{ID: "a", Name: "Pista 01", Type: models.TypeBowling, Status: models.LaneFree}))

	lane, err := store.GetLane("a")
	require.NoError(t, err)
	lane.Status = models.LaneMaintenance

	again, err := store.GetLane("a")
	require.NoError(t, err)
	assert.Equal(t, models.LaneFree, again.Status, "mutating a read result must not touch the store")
}

func TestGetActiveSessionByComanda(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Now()
	require.NoError(t, store.SaveSession(&models.Session{ID: "s1", LaneID: "a", Comanda: "12", StartTime: now, IsActive: true, LaneType: models.TypeBowling}))

	end := now
	require.NoError(t, store.SaveSession(&models.Session{ID: "s2", LaneID: "b", Comanda: "13", StartTime: now.Add(-time.Hour), EndTime: &end, LaneType: models.TypeBowling}))

	found, err := store.GetActiveSessionByComanda("12")
	require.NoError(t, err)
	assert.Equal(t, "s1", found.ID)

	// A closed session releases its comanda.
	_, err = store.GetActiveSessionByComanda("13")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestListSessionsClosedBetween(t *testing.T) {
	store := NewInMemoryStore()
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.Local)

	for i := 0; i < 3; i++ {
		end := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.SaveSession(&models.Session{
			ID:        fmt.Sprintf("s%d", i),
			LaneID:    "a",
			Comanda:   "1",
			StartTime: end.Add(-30 * time.Minute),
			EndTime:   &end,
			LaneType:  models.TypeBowling,
		}))
	}
	require.NoError(t, store.SaveSession(&models.Session{ID: "open", LaneID: "b", Comanda: "2", StartTime: base, IsActive: true, LaneType: models.TypeBowling}))

	closed, err := store.ListSessionsClosedBetween(base, base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Len(t, closed, 2)
}

func TestWaitingListFIFO(t *testing.T) {
	store := NewInMemoryStore()
	base := time.Now()
	require.NoError(t, store.SaveWaiting(&models.WaitingCustomer{ID: "w2", Name: "Segunda", JoinedAt: base.Add(time.Minute)}))
	require.NoError(t, store.SaveWaiting(&models.WaitingCustomer{ID: "w1", Name: "Primeira", JoinedAt: base}))

	entries, err := store.ListWaiting()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Primeira", entries[0].Name)
	assert.Equal(t, "Segunda", entries[1].Name)
}

func TestAuditPagination(t *testing.T) {
	store := NewInMemoryStore()
	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendAudit(&models.AuditEntry{
			ID:        fmt.Sprintf("e%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
			UserID:    "op-1",
			UserName:  "Caixa",
			Action:    models.ActionOpenLane,
		}))
	}

	page, err := store.ListAudit(2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "e4", page[0].ID, "newest first")

	page, err = store.ListAudit(2, 4)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "e0", page[0].ID)
}

func TestNextReceiptNumber(t *testing.T) {
	store := NewInMemoryStore()
	for want := int64(1); want <= 3; want++ {
		got, err := store.NextReceiptNumber()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestGetUserByPIN(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.SaveUser(&models.User{ID: "u1", Name: "Caixa", Role: models.RoleCaixa, PIN: "2222"}))

	user, err := store.GetUserByPIN("2222")
	require.NoError(t, err)
	assert.Equal(t, "Caixa", user.Name)

	_, err = store.GetUserByPIN("9999")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
