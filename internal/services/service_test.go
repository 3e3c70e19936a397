package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"boliche-os/internal/logger"
	"boliche-os/internal/models"
	"boliche-os/internal/storage"
)

// MockPublisher implements the AuditPublisher interface for testing.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishAuditEntry(entry *models.AuditEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func TestMutationsPublishAuditEntries(t *testing.T) {
	store := storage.NewInMemoryStore()
	publisher := new(MockPublisher)
	publisher.On("PublishAuditEntry", mock.AnythingOfType("*models.AuditEntry")).Return(nil)

	svc := NewVenueService(store, publisher, logger.NewLogger(), nil, nil)
	require.NoError(t, svc.Bootstrap())

	_, err := svc.OpenLane("lane-1", "12", "Maria", testActor)
	require.NoError(t, err)

	publisher.AssertCalled(t, "PublishAuditEntry", mock.MatchedBy(func(entry *models.AuditEntry) bool {
		return entry.Action == models.ActionOpenLane && entry.UserName == "Caixa"
	}))
}

func TestPublishFailureDoesNotRollBack(t *testing.T) {
	store := storage.NewInMemoryStore()
	publisher := new(MockPublisher)
	publisher.On("PublishAuditEntry", mock.AnythingOfType("*models.AuditEntry")).Return(errors.New("broker down"))

	svc := NewVenueService(store, publisher, logger.NewLogger(), nil, nil)
	require.NoError(t, svc.Bootstrap())

	// The mutation commits and the audit entry still lands in the store.
	_, err := svc.OpenLane("lane-1", "12", "", testActor)
	require.NoError(t, err)

	lane, err := store.GetLane("lane-1")
	require.NoError(t, err)
	assert.Equal(t, models.LaneActive, lane.Status)

	entries, err := store.ListAudit(5, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc, store := newTestService(t)

	require.NoError(t, svc.Bootstrap())

	lanes, err := store.ListLanes()
	require.NoError(t, err)
	assert.Len(t, lanes, 14, "ten bowling lanes plus four billiards tables, seeded once")
}
