package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"boliche-os/internal/logger"
	"boliche-os/internal/models"
	"boliche-os/internal/storage"
	"boliche-os/internal/utils"
)

var (
	ErrLaneNotFound        = errors.New("lane not found")
	ErrLaneUnavailable     = errors.New("lane is not available")
	ErrInvalidComanda      = errors.New("comanda must be a number between 1 and 60")
	ErrComandaInUse        = errors.New("comanda already active on another lane")
	ErrNoActiveSession     = errors.New("lane has no active session")
	ErrNoPauseInProgress   = errors.New("no maintenance pause in progress")
	ErrLaneTypeMismatch    = errors.New("transfer requires lanes of the same type")
	ErrInvalidStartTime    = errors.New("corrected start time must not be in the future")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationFinal    = errors.New("reservation already reached a terminal state")
	ErrInvalidTransition   = errors.New("invalid reservation status transition")
	ErrNoLaneAvailable     = errors.New("no lane available")
	ErrWaitingNotFound     = errors.New("waiting entry not found")
)

// ComandaLock is the fast duplicate guard in front of the store; the store
// remains the source of truth for active comandas.
type ComandaLock interface {
	AcquireComanda(comanda, sessionID string) (bool, error)
	ReleaseComanda(comanda, sessionID string) error
}

// AuditPublisher mirrors audit entries to the event stream.
type AuditPublisher interface {
	PublishAuditEntry(entry *models.AuditEntry) error
}

// LaneNotifier pushes the lane snapshot to connected dashboards.
type LaneNotifier interface {
	NotifyLanes(lanes []*models.Lane)
}

// VenueService owns every floor mutation: the session ledger, the lane
// state machine, reservations and the waiting list. A single mutex keeps
// multi-entity mutations atomic relative to one operator action.
type VenueService struct {
	store    storage.Store
	producer AuditPublisher
	log      *logger.Logger
	lock     ComandaLock
	notifier LaneNotifier

	mu sync.Mutex
}

func NewVenueService(store storage.Store, producer AuditPublisher, log *logger.Logger, lock ComandaLock, notifier LaneNotifier) *VenueService {
	return &VenueService{
		store:    store,
		producer: producer,
		log:      log,
		lock:     lock,
		notifier: notifier,
	}
}

// systemActor attributes mutations not triggered by an operator (booking
// channel ingestion, cron sweeps).
var systemActor = models.Actor{ID: "sistema", Name: "Sistema"}

func (s *VenueService) audit(actor models.Actor, action models.AuditAction, context, laneID string, details *models.AuditDetails) {
	if actor.ID == "" {
		actor = systemActor
	}

	entry := &models.AuditEntry{
		ID:        utils.GenerateUUID(),
		Timestamp: time.Now(),
		UserID:    actor.ID,
		UserName:  actor.Name,
		Action:    action,
		Context:   context,
		LaneID:    laneID,
		Details:   details,
	}

	if err := s.store.AppendAudit(entry); err != nil {
		s.log.Error("AUDIT", fmt.Sprintf("Failed to append audit entry %s: %v", entry.ID, err))
	}

	if s.producer == nil {
		return
	}
	if err := s.producer.PublishAuditEntry(entry); err != nil {
		s.log.Error("KAFKA", fmt.Sprintf("Failed to publish audit entry %s: %v", entry.ID, err))
		s.log.LogProcess("FALLBACK", "Mutation committed despite Kafka publish failure")
	}
}

func (s *VenueService) broadcastLanes() {
	if s.notifier == nil {
		return
	}
	lanes, err := s.store.ListLanes()
	if err != nil {
		s.log.Error("LANE", "Failed to load lanes for broadcast: "+err.Error())
		return
	}
	s.notifier.NotifyLanes(lanes)
}

// Lanes returns the floor snapshot, sorted by name.
func (s *VenueService) Lanes() ([]*models.Lane, error) {
	return s.store.ListLanes()
}

// LaneDetail is the payload of the lane detail modal.
type LaneDetail struct {
	Lane            *models.Lane    `json:"lane"`
	Session         *models.Session `json:"session,omitempty"`
	ElapsedBillable time.Duration   `json:"elapsed_billable,omitempty"`
}

func (s *VenueService) GetLaneDetail(laneID string) (*LaneDetail, error) {
	lane, err := s.store.GetLane(laneID)
	if err != nil {
		return nil, ErrLaneNotFound
	}

	detail := &LaneDetail{Lane: lane}
	if lane.CurrentSessionID != "" {
		session, err := s.store.GetSession(lane.CurrentSessionID)
		if err == nil {
			detail.Session = session
			detail.ElapsedBillable = session.ElapsedBillable(time.Now())
		}
	}
	return detail, nil
}

// Bootstrap seeds an empty store with the default floor: ten bowling lanes,
// four billiards tables, the house holiday list and the default operators.
func (s *VenueService) Bootstrap() error {
	lanes, err := s.store.ListLanes()
	if err != nil {
		return fmt.Errorf("failed to inspect lanes: %w", err)
	}
	if len(lanes) > 0 {
		return nil
	}

	s.log.LogProcess("BOOTSTRAP", "Empty store, seeding default floor layout")

	for i := 1; i <= 10; i++ {
		lane := &models.Lane{
			ID:     fmt.Sprintf("lane-%d", i),
			Name:   fmt.Sprintf("Pista %02d", i),
			Type:   models.TypeBowling,
			Status: models.LaneFree,
		}
		if err := s.store.SaveLane(lane); err != nil {
			return fmt.Errorf("failed to seed lane %s: %w", lane.ID, err)
		}
	}
	for i := 1; i <= 4; i++ {
		lane := &models.Lane{
			ID:     fmt.Sprintf("snooker-%d", i),
			Name:   fmt.Sprintf("Sinuca %02d", i),
			Type:   models.TypeBilliards,
			Status: models.LaneFree,
		}
		if err := s.store.SaveLane(lane); err != nil {
			return fmt.Errorf("failed to seed table %s: %w", lane.ID, err)
		}
	}

	for _, h := range defaultHolidays() {
		if err := s.store.SaveHoliday(h); err != nil {
			return fmt.Errorf("failed to seed holiday %s: %w", h.Date, err)
		}
	}

	users := []*models.User{
		{ID: utils.GenerateUUID(), Name: "Gerente", Role: models.RoleGerente, PIN: "1234"},
		{ID: utils.GenerateUUID(), Name: "Caixa", Role: models.RoleCaixa, PIN: "2222"},
		{ID: utils.GenerateUUID(), Name: "Atendente", Role: models.RoleAtendente, PIN: "1111"},
	}
	for _, u := range users {
		if err := s.store.SaveUser(u); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Name, err)
		}
	}

	s.log.LogProcess("BOOTSTRAP", "Seeded 14 lanes, holiday calendar and default operators")
	return nil
}

func defaultHolidays() []*models.Holiday {
	return []*models.Holiday{
		{Date: "2026-01-01", Name: "Confraternização Universal"},
		{Date: "2026-02-17", Name: "Carnaval"},
		{Date: "2026-04-03", Name: "Sexta-feira Santa"},
		{Date: "2026-04-21", Name: "Tiradentes"},
		{Date: "2026-05-01", Name: "Dia do Trabalho"},
		{Date: "2026-09-07", Name: "Independência do Brasil"},
		{Date: "2026-10-12", Name: "Nossa Senhora Aparecida"},
		{Date: "2026-11-02", Name: "Finados"},
		{Date: "2026-11-15", Name: "Proclamação da República"},
		{Date: "2026-12-25", Name: "Natal"},
	}
}
