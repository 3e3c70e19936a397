package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"boliche-os/internal/models"
	"boliche-os/internal/utils"
)

// Fallback when nothing closed today yet.
const defaultAvgSession = 60 * time.Minute

// A lane under maintenance is effectively never available.
const maintenanceAvailability = 24 * time.Hour

type AddWaitingInput struct {
	Name           string
	LanesRequested int
	Table          string
	Comanda        string
	Vehicle        string
}

func (s *VenueService) AddToWaitingList(input AddWaitingInput, actor models.Actor) (*models.WaitingCustomer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.LanesRequested < 1 {
		input.LanesRequested = 1
	}

	entry := &models.WaitingCustomer{
		ID:             utils.GenerateUUID(),
		Name:           input.Name,
		LanesRequested: input.LanesRequested,
		Table:          input.Table,
		Comanda:        input.Comanda,
		Vehicle:        input.Vehicle,
		JoinedAt:       time.Now(),
	}

	if err := s.store.SaveWaiting(entry); err != nil {
		return nil, fmt.Errorf("failed to save waiting entry: %w", err)
	}

	s.refreshWaitEstimatesLocked(time.Now())

	context := fmt.Sprintf("Adicionado: %s (%d pista(s))", entry.Name, entry.LanesRequested)
	if entry.Table != "" {
		context += ", mesa: " + entry.Table
	}
	if entry.Comanda != "" {
		context += ", comanda: " + entry.Comanda
	}
	s.audit(actor, models.ActionWaitingAdded, context, "", nil)

	// Re-read so the caller sees the computed estimate.
	entries, err := s.store.ListWaiting()
	if err == nil {
		for _, e := range entries {
			if e.ID == entry.ID {
				return e, nil
			}
		}
	}
	return entry, nil
}

func (s *VenueService) RemoveFromWaitingList(id string, actor models.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.store.ListWaiting()
	if err != nil {
		return fmt.Errorf("failed to list waiting entries: %w", err)
	}
	var removed *models.WaitingCustomer
	for _, e := range entries {
		if e.ID == id {
			removed = e
			break
		}
	}
	if removed == nil {
		return ErrWaitingNotFound
	}

	if err := s.store.DeleteWaiting(id); err != nil {
		return fmt.Errorf("failed to delete waiting entry: %w", err)
	}

	s.refreshWaitEstimatesLocked(time.Now())
	s.audit(actor, models.ActionWaitingRemoved, "Removido: "+removed.Name, "", nil)
	return nil
}

func (s *VenueService) WaitingList() ([]*models.WaitingCustomer, error) {
	return s.store.ListWaiting()
}

// RefreshWaitEstimates recomputes every estimate from the current floor
// snapshot. Idempotent: the scheduler calls it on a timer and mutations
// call it inline; recomputing twice from the same snapshot changes nothing.
func (s *VenueService) RefreshWaitEstimates() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshWaitEstimatesLocked(time.Now())
}

// averageSessionDuration is the mean wall-clock duration of sessions closed
// today; 60 minutes when none closed yet.
func (s *VenueService) averageSessionDuration(now time.Time) time.Duration {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	closed, err := s.store.ListSessionsClosedBetween(dayStart, now)
	if err != nil || len(closed) == 0 {
		return defaultAvgSession
	}

	var total time.Duration
	for _, session := range closed {
		total += session.EndTime.Sub(session.StartTime)
	}
	return total / time.Duration(len(closed))
}

// refreshWaitEstimatesLocked runs the greedy slot simulation:
//  1. one availability slot per lane: 0 when free, avg minus elapsed when
//     active, a day when under maintenance;
//  2. parties in FIFO join order take the k-th smallest slot (k = lanes
//     requested, capped at the fleet size) as their estimate;
//  3. the k smallest slots are inflated by avg before the next party, as
//     if this party had just occupied them.
//
// It is an operator guidance heuristic, deliberately kept exactly as the
// floor staff learned to read it, not an optimal assignment.
func (s *VenueService) refreshWaitEstimatesLocked(now time.Time) error {
	lanes, err := s.store.ListLanes()
	if err != nil {
		return fmt.Errorf("failed to list lanes: %w", err)
	}
	entries, err := s.store.ListWaiting()
	if err != nil {
		return fmt.Errorf("failed to list waiting entries: %w", err)
	}
	if len(entries) == 0 || len(lanes) == 0 {
		return nil
	}

	active, err := s.store.ListActiveSessions()
	if err != nil {
		return fmt.Errorf("failed to list active sessions: %w", err)
	}
	sessionByLane := make(map[string]*models.Session, len(active))
	for _, session := range active {
		sessionByLane[session.LaneID] = session
	}

	avg := s.averageSessionDuration(now)

	availabilities := make([]time.Duration, 0, len(lanes))
	for _, lane := range lanes {
		switch lane.Status {
		case models.LaneActive:
			if session, ok := sessionByLane[lane.ID]; ok {
				remaining := avg - now.Sub(session.StartTime)
				if remaining < 0 {
					remaining = 0
				}
				availabilities = append(availabilities, remaining)
				continue
			}
			availabilities = append(availabilities, 0)
		case models.LaneMaintenance:
			availabilities = append(availabilities, maintenanceAvailability)
		default:
			availabilities = append(availabilities, 0)
		}
	}

	// entries come back FIFO by join time from the store.
	for _, entry := range entries {
		sort.Slice(availabilities, func(i, j int) bool { return availabilities[i] < availabilities[j] })

		k := entry.LanesRequested
		if k < 1 {
			k = 1
		}
		if k > len(availabilities) {
			k = len(availabilities)
		}

		wait := availabilities[k-1]
		estimate := int(math.Round(wait.Minutes()))
		if estimate < 1 {
			estimate = 1
		}

		for i := 0; i < k; i++ {
			availabilities[i] += avg
		}

		if entry.EstimatedWaitMinutes == estimate {
			continue
		}
		entry.EstimatedWaitMinutes = estimate
		if err := s.store.UpdateWaiting(entry); err != nil {
			s.log.Error("WAITING", "Failed to store wait estimate for "+entry.ID+": "+err.Error())
		}
	}
	return nil
}
