package services

import (
	"fmt"
	"sort"
	"time"

	"boliche-os/internal/models"
	"boliche-os/internal/pricing"
	"boliche-os/internal/utils"
)

// Lookahead window of the "reserved soon" card indicator.
const reservedSoonWindow = 10 * time.Minute

type AddReservationInput struct {
	LaneID       string
	CustomerName string
	LaneCount    int
	StartTime    time.Time
	EndTime      time.Time
	Observation  string
}

func (s *VenueService) AddReservation(input AddReservationInput, actor models.Actor) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.LaneCount < 1 {
		input.LaneCount = 1
	}

	res := &models.Reservation{
		ID:           utils.GenerateUUID(),
		LaneID:       input.LaneID,
		CustomerName: input.CustomerName,
		LaneCount:    input.LaneCount,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Observation:  input.Observation,
		Status:       models.ReservationPending,
	}

	if err := s.store.SaveReservation(res); err != nil {
		return nil, fmt.Errorf("failed to save reservation: %w", err)
	}

	lane := input.LaneID
	if lane == "" {
		lane = "qualquer"
	}
	s.audit(actor, models.ActionReservationNew, fmt.Sprintf("Pista: %s, cliente: %s", lane, res.CustomerName), input.LaneID, nil)
	return res, nil
}

func (s *VenueService) Reservations() ([]*models.Reservation, error) {
	return s.store.ListReservations()
}

func (s *VenueService) CancelReservation(id string, actor models.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.store.GetReservation(id)
	if err != nil {
		return ErrReservationNotFound
	}
	if res.Status.IsTerminal() {
		return ErrReservationFinal
	}

	res.Status = models.ReservationCancelled
	if err := s.store.UpdateReservation(res); err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}

	s.audit(actor, models.ActionReservationGone, fmt.Sprintf("Reserva de %s", res.CustomerName), res.LaneID, nil)
	return nil
}

// UpdateReservationStatus applies a manual status override. pending,
// arrived and delayed move freely between each other; once a reservation
// reaches cancelled, no-show or fulfilled it stays there.
func (s *VenueService) UpdateReservationStatus(id string, status models.ReservationStatus, actor models.Actor) error {
	switch status {
	case models.ReservationPending, models.ReservationArrived, models.ReservationDelayed,
		models.ReservationNoShow, models.ReservationCancelled, models.ReservationFulfilled:
	default:
		return ErrInvalidTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.store.GetReservation(id)
	if err != nil {
		return ErrReservationNotFound
	}
	if res.Status.IsTerminal() {
		return ErrReservationFinal
	}

	res.Status = status
	if err := s.store.UpdateReservation(res); err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	s.audit(actor, models.ActionReservationState, fmt.Sprintf("Reserva de %s: %s", res.CustomerName, status), res.LaneID, nil)
	return nil
}

// CheckInReservation converts a reservation into live sessions: one per
// target lane, all under the party's single comanda, with the customer name
// carried onto the first lane. With no explicit targets the reservation's
// own lane is used, or the first free lanes when it was booked as "any
// lane". Every target is validated before any session opens; a shortfall
// mutates nothing.
func (s *VenueService) CheckInReservation(resID, comanda string, laneIDs []string, actor models.Actor) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.store.GetReservation(resID)
	if err != nil {
		return nil, ErrReservationNotFound
	}
	if res.Status.IsTerminal() {
		return nil, ErrReservationFinal
	}
	if err := validateComanda(comanda); err != nil {
		return nil, err
	}

	targets := laneIDs
	if len(targets) == 0 {
		if res.LaneID != "" {
			targets = []string{res.LaneID}
		} else {
			lanes, err := s.store.ListLanes()
			if err != nil {
				return nil, fmt.Errorf("failed to list lanes: %w", err)
			}
			want := res.LaneCount
			if want < 1 {
				want = 1
			}
			for _, lane := range lanes {
				if lane.Status == models.LaneFree {
					targets = append(targets, lane.ID)
					if len(targets) == want {
						break
					}
				}
			}
		}
	}
	if len(targets) == 0 {
		return nil, ErrNoLaneAvailable
	}

	// Validate everything up front so a partial party never gets seated.
	// A lane listed twice would pass both checks while free and fail on
	// the second open, so repeats are rejected here.
	seen := make(map[string]bool, len(targets))
	for _, laneID := range targets {
		if seen[laneID] {
			return nil, ErrNoLaneAvailable
		}
		seen[laneID] = true

		lane, err := s.store.GetLane(laneID)
		if err != nil {
			return nil, ErrLaneNotFound
		}
		if lane.Status != models.LaneFree && lane.Status != models.LaneReserved {
			return nil, ErrNoLaneAvailable
		}
	}
	if existing, err := s.store.GetActiveSessionByComanda(comanda); err == nil && existing != nil {
		return nil, ErrComandaInUse
	}

	for i, laneID := range targets {
		customer := ""
		if i == 0 {
			customer = res.CustomerName
		}
		if _, err := s.openLaneLocked(laneID, comanda, customer, actor, i > 0); err != nil {
			return nil, err
		}
	}

	res.Status = models.ReservationFulfilled
	res.LaneID = targets[0]
	res.LaneIDs = targets
	if err := s.store.UpdateReservation(res); err != nil {
		return nil, fmt.Errorf("failed to fulfill reservation: %w", err)
	}

	s.audit(actor, models.ActionCheckIn, fmt.Sprintf("Reserva de %s, comanda #%s, %d pista(s)",
		res.CustomerName, comanda, len(targets)), targets[0], nil)

	s.refreshWaitEstimatesLocked(time.Now())
	s.broadcastLanes()
	return res, nil
}

// IngestReservationEvent feeds a booking received from the online channel
// into the scheduler as a pending reservation. Replays are ignored.
func (s *VenueService) IngestReservationEvent(event *models.ReservationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Type != "reservation.created" || event.Reservation == nil {
		s.log.Warn("KAFKA", "Ignoring unknown reservation event type: "+event.Type)
		return nil
	}

	incoming := event.Reservation
	if incoming.ID != "" {
		if _, err := s.store.GetReservation(incoming.ID); err == nil {
			s.log.Warn("KAFKA", "Reservation "+incoming.ID+" already ingested, skipping")
			return nil
		}
	} else {
		incoming.ID = utils.GenerateUUID()
	}
	if incoming.LaneCount < 1 {
		incoming.LaneCount = 1
	}
	incoming.Status = models.ReservationPending

	if err := s.store.SaveReservation(incoming); err != nil {
		return fmt.Errorf("failed to ingest reservation: %w", err)
	}

	s.audit(systemActor, models.ActionReservationNew,
		fmt.Sprintf("Canal online, cliente: %s", incoming.CustomerName), incoming.LaneID, nil)
	return nil
}

// ReservedSoon maps lane ids to the reservation about to claim them,
// within a 10-minute lookahead on the same local day. A lane booked
// directly wins; "any lane" reservations are speculatively laid over the
// free lanes in sorted order. Pure display heuristic: nothing here holds a
// lane, the allocation only happens at check-in.
func (s *VenueService) ReservedSoon(now time.Time) (map[string]*models.Reservation, error) {
	lanes, err := s.store.ListLanes()
	if err != nil {
		return nil, fmt.Errorf("failed to list lanes: %w", err)
	}
	reservations, err := s.store.ListReservations()
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	isUpcoming := func(r *models.Reservation) bool {
		return r.Status == models.ReservationPending || r.Status == models.ReservationArrived
	}

	var unassigned []*models.Reservation
	direct := make(map[string]*models.Reservation)
	for _, r := range reservations {
		if !isUpcoming(r) {
			continue
		}
		if r.LaneID == "" {
			unassigned = append(unassigned, r)
			continue
		}
		if cur, ok := direct[r.LaneID]; !ok || r.StartTime.Before(cur.StartTime) {
			direct[r.LaneID] = r
		}
	}
	sort.Slice(unassigned, func(i, j int) bool { return unassigned[i].StartTime.Before(unassigned[j].StartTime) })

	var freeLanes []*models.Lane
	for _, lane := range lanes {
		if lane.Status == models.LaneFree {
			freeLanes = append(freeLanes, lane)
		}
	}

	soon := make(map[string]*models.Reservation)
	today := pricing.LocalDateISO(now)
	claim := func(laneID string, r *models.Reservation) {
		if pricing.LocalDateISO(r.StartTime) != today {
			return
		}
		if r.StartTime.Sub(now) < reservedSoonWindow {
			soon[laneID] = r
		}
	}

	for laneID, r := range direct {
		claim(laneID, r)
	}
	for i, r := range unassigned {
		if i >= len(freeLanes) {
			break
		}
		if _, taken := soon[freeLanes[i].ID]; taken {
			continue
		}
		claim(freeLanes[i].ID, r)
	}
	return soon, nil
}

// SweepOverdueReservations marks pending reservations delayed after a
// 15-minute grace and no-show after 45 minutes. Run from the scheduler.
func (s *VenueService) SweepOverdueReservations(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservations, err := s.store.ListReservations()
	if err != nil {
		return fmt.Errorf("failed to list reservations: %w", err)
	}

	for _, res := range reservations {
		overdue := now.Sub(res.StartTime)
		switch {
		case res.Status == models.ReservationPending && overdue > 45*time.Minute:
			res.Status = models.ReservationNoShow
		case res.Status == models.ReservationPending && overdue > 15*time.Minute:
			res.Status = models.ReservationDelayed
		case res.Status == models.ReservationDelayed && overdue > 45*time.Minute:
			res.Status = models.ReservationNoShow
		default:
			continue
		}
		if err := s.store.UpdateReservation(res); err != nil {
			s.log.Error("RESERVATION", "Failed to sweep reservation "+res.ID+": "+err.Error())
			continue
		}
		s.audit(systemActor, models.ActionReservationState,
			fmt.Sprintf("Reserva de %s: %s (automático)", res.CustomerName, res.Status), res.LaneID, nil)
	}
	return nil
}

// SweepStaleBlocks frees manually blocked lanes that no longer have a
// pending or arrived reservation today. Mirrors the original dashboard's
// cleanup of stale blocks when the reservation list changes.
func (s *VenueService) SweepStaleBlocks(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lanes, err := s.store.ListLanes()
	if err != nil {
		return fmt.Errorf("failed to list lanes: %w", err)
	}
	reservations, err := s.store.ListReservations()
	if err != nil {
		return fmt.Errorf("failed to list reservations: %w", err)
	}

	today := pricing.LocalDateISO(now)
	changed := false
	for _, lane := range lanes {
		if lane.Status != models.LaneReserved {
			continue
		}
		keep := false
		for _, r := range reservations {
			if r.LaneID == lane.ID &&
				(r.Status == models.ReservationPending || r.Status == models.ReservationArrived) &&
				pricing.LocalDateISO(r.StartTime) == today {
				keep = true
				break
			}
		}
		if keep {
			continue
		}
		lane.Status = models.LaneFree
		if err := s.store.UpdateLane(lane); err != nil {
			s.log.Error("LANE", "Failed to release stale block on "+lane.ID+": "+err.Error())
			continue
		}
		s.log.LogLane("STALE_BLOCK", lane.ID, "Released block with no reservation today")
		changed = true
	}
	if changed {
		s.broadcastLanes()
	}
	return nil
}
