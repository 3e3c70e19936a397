package storage

import (
	"sort"
	"sync"
	"time"

	"boliche-os/internal/models"
	"boliche-os/internal/pricing"
)

// InMemoryStore keeps everything in maps. It backs tests and the
// single-counter deployments that run without MySQL.
type InMemoryStore struct {
	mutex sync.RWMutex

	lanes        map[string]*models.Lane
	sessions     map[string]*models.Session
	reservations map[string]*models.Reservation
	waiting      map[string]*models.WaitingCustomer
	audit        []*models.AuditEntry
	holidays     map[string]*models.Holiday
	users        map[string]*models.User
	rules        *pricing.Rules

	receiptCounter int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		lanes:        make(map[string]*models.Lane),
		sessions:     make(map[string]*models.Session),
		reservations: make(map[string]*models.Reservation),
		waiting:      make(map[string]*models.WaitingCustomer),
		holidays:     make(map[string]*models.Holiday),
		users:        make(map[string]*models.User),
	}
}

func (s *InMemoryStore) SaveLane(lane *models.Lane) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cp := *lane
	s.lanes[lane.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetLane(id string) (*models.Lane, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	lane, exists := s.lanes[id]
	if !exists {
		return nil, ErrLaneNotFound
	}
	cp := *lane
	return &cp, nil
}

func (s *InMemoryStore) UpdateLane(lane *models.Lane) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.lanes[lane.ID]; !exists {
		return ErrLaneNotFound
	}
	cp := *lane
	s.lanes[lane.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListLanes() ([]*models.Lane, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	lanes := make([]*models.Lane, 0, len(s.lanes))
	for _, lane := range s.lanes {
		cp := *lane
		lanes = append(lanes, &cp)
	}
	sort.Slice(lanes, func(i, j int) bool { return lanes[i].Name < lanes[j].Name })
	return lanes, nil
}

func (s *InMemoryStore) SaveSession(session *models.Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetSession(id string) (*models.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *InMemoryStore) UpdateSession(session *models.Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.sessions[session.ID]; !exists {
		return ErrSessionNotFound
	}
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetActiveSessionByComanda(comanda string) (*models.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, session := range s.sessions {
		if session.IsActive && session.Comanda == comanda {
			cp := *session
			return &cp, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (s *InMemoryStore) ListActiveSessions() ([]*models.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var sessions []*models.Session
	for _, session := range s.sessions {
		if session.IsActive {
			cp := *session
			sessions = append(sessions, &cp)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartTime.Before(sessions[j].StartTime) })
	return sessions, nil
}

func (s *InMemoryStore) ListSessionsClosedBetween(from, to time.Time) ([]*models.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var sessions []*models.Session
	for _, session := range s.sessions {
		if session.IsActive || session.EndTime == nil {
			continue
		}
		if session.EndTime.Before(from) || session.EndTime.After(to) {
			continue
		}
		cp := *session
		sessions = append(sessions, &cp)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].EndTime.Before(*sessions[j].EndTime) })
	return sessions, nil
}

func (s *InMemoryStore) SaveReservation(res *models.Reservation) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cp := *res
	s.reservations[res.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetReservation(id string) (*models.Reservation, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	res, exists := s.reservations[id]
	if !exists {
		return nil, ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (s *InMemoryStore) UpdateReservation(res *models.Reservation) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.reservations[res.ID]; !exists {
		return ErrReservationNotFound
	}
	cp := *res
	s.reservations[res.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListReservations() ([]*models.Reservation, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	reservations := make([]*models.Reservation, 0, len(s.reservations))
	for _, res := range s.reservations {
		cp := *res
		reservations = append(reservations, &cp)
	}
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].StartTime.Before(reservations[j].StartTime)
	})
	return reservations, nil
}

func (s *InMemoryStore) SaveWaiting(entry *models.WaitingCustomer) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cp := *entry
	s.waiting[entry.ID] = &cp
	return nil
}

func (s *InMemoryStore) UpdateWaiting(entry *models.WaitingCustomer) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.waiting[entry.ID]; !exists {
		return ErrWaitingNotFound
	}
	cp := *entry
	s.waiting[entry.ID] = &cp
	return nil
}

func (s *InMemoryStore) DeleteWaiting(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.waiting[id]; !exists {
		return ErrWaitingNotFound
	}
	delete(s.waiting, id)
	return nil
}

func (s *InMemoryStore) ListWaiting() ([]*models.WaitingCustomer, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entries := make([]*models.WaitingCustomer, 0, len(s.waiting))
	for _, entry := range s.waiting {
		cp := *entry
		entries = append(entries, &cp)
	}
	// FIFO by join time.
	sort.Slice(entries, func(i, j int) bool { return entries[i].JoinedAt.Before(entries[j].JoinedAt) })
	return entries, nil
}

func (s *InMemoryStore) AppendAudit(entry *models.AuditEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cp := *entry
	s.audit = append(s.audit, &cp)
	return nil
}

func (s *InMemoryStore) ListAudit(limit, offset int) ([]*models.AuditEntry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	// Newest first.
	total := len(s.audit)
	var entries []*models.AuditEntry
	for i := total - 1 - offset; i >= 0 && len(entries) < limit; i-- {
		cp := *s.audit[i]
		entries = append(entries, &cp)
	}
	return entries, nil
}

func (s *InMemoryStore) GetPricingRules() (*pricing.Rules, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.rules == nil {
		return pricing.DefaultRules(), nil
	}
	cp := *s.rules
	return &cp, nil
}

func (s *InMemoryStore) SavePricingRules(rules *pricing.Rules) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cp := *rules
	s.rules = &cp
	return nil
}

func (s *InMemoryStore) ListHolidays() ([]*models.Holiday, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	holidays := make([]*models.Holiday, 0, len(s.holidays))
	for _, h := range s.holidays {
		cp := *h
		holidays = append(holidays, &cp)
	}
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date < holidays[j].Date })
	return holidays, nil
}

func (s *InMemoryStore) SaveHoliday(h *models.Holiday) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cp := *h
	s.holidays[h.Date] = &cp
	return nil
}

func (s *InMemoryStore) DeleteHoliday(date string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.holidays, date)
	return nil
}

func (s *InMemoryStore) GetUserByPIN(pin string) (*models.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, user := range s.users {
		if user.PIN == pin {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *InMemoryStore) SaveUser(user *models.User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *InMemoryStore) NextReceiptNumber() (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.receiptCounter++
	return s.receiptCounter, nil
}
