package services

import (
	"fmt"
	"strconv"
	"time"

	"boliche-os/internal/models"
	"boliche-os/internal/pricing"
	"boliche-os/internal/utils"
)

// Comandas are physical ticket cards numbered 1 to 60.
func validateComanda(comanda string) error {
	n, err := strconv.Atoi(comanda)
	if err != nil || n < 1 || n > 60 {
		return ErrInvalidComanda
	}
	return nil
}

// OpenLane starts a billable session. The comanda must not be active on any
// other lane; the lane type is snapshotted onto the session so later lane
// edits never change how it bills. If a waiting-list entry carries the same
// comanda, one of its requested lanes is considered seated.
func (s *VenueService) OpenLane(laneID, comanda, customerName string, actor models.Actor) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.openLaneLocked(laneID, comanda, customerName, actor, false)
	if err != nil {
		return nil, err
	}

	s.refreshWaitEstimatesLocked(time.Now())
	s.broadcastLanes()
	return session, nil
}

// sharedComanda skips the duplicate check for the second and later lanes of
// a multi-lane check-in, where one party's comanda legitimately spans lanes.
func (s *VenueService) openLaneLocked(laneID, comanda, customerName string, actor models.Actor, sharedComanda bool) (*models.Session, error) {
	if err := validateComanda(comanda); err != nil {
		return nil, err
	}

	lane, err := s.store.GetLane(laneID)
	if err != nil {
		return nil, ErrLaneNotFound
	}
	if lane.Status != models.LaneFree && lane.Status != models.LaneReserved {
		s.log.LogLane("OPEN_REJECTED", laneID, fmt.Sprintf("Lane is %s", lane.Status))
		return nil, ErrLaneUnavailable
	}

	if !sharedComanda {
		if existing, err := s.store.GetActiveSessionByComanda(comanda); err == nil && existing != nil {
			s.log.LogSession("OPEN_REJECTED", existing.ID, fmt.Sprintf("Comanda #%s already active on lane %s", comanda, existing.LaneID))
			return nil, ErrComandaInUse
		}
	}

	session := &models.Session{
		ID:           utils.GenerateSessionID(),
		LaneID:       lane.ID,
		Comanda:      comanda,
		CustomerName: customerName,
		OpenedBy:     actor.Name,
		OpenedByID:   actor.ID,
		StartTime:    time.Now(),
		IsActive:     true,
		LaneType:     lane.Type,
	}

	lockAcquired := false
	if s.lock != nil && !sharedComanda {
		ok, err := s.lock.AcquireComanda(comanda, session.ID)
		if err != nil {
			s.log.Warn("REDIS", "Comanda lock unavailable, falling back to store check: "+err.Error())
		} else if !ok {
			return nil, ErrComandaInUse
		} else {
			lockAcquired = true
		}
	}

	// A held lock with no session behind it would block the comanda until
	// the TTL expires, so failed opens give it back.
	releaseLock := func() {
		if !lockAcquired {
			return
		}
		if err := s.lock.ReleaseComanda(comanda, session.ID); err != nil {
			s.log.Warn("REDIS", "Failed to release comanda lock: "+err.Error())
		}
	}

	if err := s.store.SaveSession(session); err != nil {
		releaseLock()
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	lane.Status = models.LaneActive
	lane.CurrentSessionID = session.ID
	if err := s.store.UpdateLane(lane); err != nil {
		releaseLock()
		return nil, fmt.Errorf("failed to update lane: %w", err)
	}

	s.consumeWaitingEntryLocked(comanda, lane, actor)

	s.log.LogSession("OPEN", session.ID, fmt.Sprintf("%s opened with comanda #%s by %s", lane.Name, comanda, actor.Name))
	s.audit(actor, models.ActionOpenLane, fmt.Sprintf("%s, comanda #%s", lane.Name, comanda), lane.ID, nil)
	return session, nil
}

// CloseLane ends the lane's active session and computes the bill. The billed
// duration is wall clock end minus start; accumulated maintenance pauses are
// NOT subtracted (they only suspend the live timer display; see the close
// details snapshot for what the customer sees). Closing a lane without an
// active session mutates nothing.
func (s *VenueService) CloseLane(laneID string, discountMinutes int, isBirthday bool, actor models.Actor) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lane, err := s.store.GetLane(laneID)
	if err != nil {
		return nil, ErrLaneNotFound
	}
	if lane.CurrentSessionID == "" {
		s.log.LogLane("CLOSE_IGNORED", laneID, "No active session to close")
		return nil, ErrNoActiveSession
	}
	session, err := s.store.GetSession(lane.CurrentSessionID)
	if err != nil || !session.IsActive {
		s.log.LogLane("CLOSE_IGNORED", laneID, "No active session to close")
		return nil, ErrNoActiveSession
	}

	now := time.Now()

	// A pause still in progress is folded into the pause total so history
	// is coherent; the billed duration is unaffected either way.
	if session.LastMaintenanceStart != nil {
		session.MaintenanceTimeTotal += now.Sub(*session.LastMaintenanceStart)
		session.LastMaintenanceStart = nil
	}

	rules, err := s.store.GetPricingRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rules: %w", err)
	}
	holidays, err := s.store.ListHolidays()
	if err != nil {
		return nil, fmt.Errorf("failed to load holiday list: %w", err)
	}

	isHoliday := pricing.IsHoliday(holidays, session.StartTime)
	bill := pricing.ComputeBill(session.StartTime, now, discountMinutes, isBirthday, session.LaneType, rules, isHoliday)

	// Number drawn before the mutation commits; a failed close burns it,
	// which keeps the sequence strictly increasing across retries.
	receiptNumber, err := s.store.NextReceiptNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate receipt number: %w", err)
	}

	session.IsActive = false
	session.EndTime = &now
	session.DiscountMinutes = discountMinutes
	session.IsBirthdayDiscount = isBirthday
	session.ReceiptNumber = receiptNumber
	session.PricePerMinute = bill.PricePerMinute
	session.GrossValue = bill.GrossValue
	session.DiscountValue = bill.DiscountValue
	session.FinalValue = bill.FinalValue

	if err := s.store.UpdateSession(session); err != nil {
		return nil, fmt.Errorf("failed to close session: %w", err)
	}

	duration := now.Sub(session.StartTime)
	lane.Status = models.LaneFree
	lane.CurrentSessionID = ""
	lane.IsMaintenancePaused = false
	lane.MaintenanceReason = ""
	lane.TotalUsage += duration
	if err := s.store.UpdateLane(lane); err != nil {
		return nil, fmt.Errorf("failed to free lane: %w", err)
	}

	if s.lock != nil {
		if err := s.lock.ReleaseComanda(session.Comanda, session.ID); err != nil {
			s.log.Warn("REDIS", "Failed to release comanda lock: "+err.Error())
		}
	}

	s.log.LogSession("CLOSE", session.ID, fmt.Sprintf("%s closed, comanda #%s, final R$ %s (receipt %d)",
		lane.Name, session.Comanda, bill.FinalValue.StringFixed(2), receiptNumber))

	s.audit(actor, models.ActionCloseLane, fmt.Sprintf("%s, comanda #%s", lane.Name, session.Comanda), lane.ID, &models.AuditDetails{
		Close: &models.CloseDetails{
			LaneName:        lane.Name,
			LaneType:        session.LaneType,
			Comanda:         session.Comanda,
			CustomerName:    session.CustomerName,
			StartTime:       session.StartTime,
			EndTime:         now,
			Duration:        duration,
			DiscountMinutes: discountMinutes,
			IsBirthday:      isBirthday,
			PricePerMinute:  bill.PricePerMinute,
			GrossValue:      bill.GrossValue,
			DiscountValue:   bill.DiscountValue,
			FinalValue:      bill.FinalValue,
			ReceiptNumber:   receiptNumber,
		},
	})

	s.refreshWaitEstimatesLocked(now)
	s.broadcastLanes()
	return session, nil
}

// SetMaintenance marks a lane out of order. On an active lane the session
// stays open but its timer is suspended; on a free lane the lane itself
// goes to maintenance.
func (s *VenueService) SetMaintenance(laneID, reason string, actor models.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lane, err := s.store.GetLane(laneID)
	if err != nil {
		return ErrLaneNotFound
	}

	now := time.Now()

	if lane.Status == models.LaneActive && lane.CurrentSessionID != "" {
		if lane.IsMaintenancePaused {
			s.log.LogLane("MAINTENANCE_IGNORED", laneID, "Session already paused")
			return nil
		}
		session, err := s.store.GetSession(lane.CurrentSessionID)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		session.LastMaintenanceStart = &now
		if err := s.store.UpdateSession(session); err != nil {
			return fmt.Errorf("failed to pause session: %w", err)
		}
		lane.IsMaintenancePaused = true
	} else {
		lane.Status = models.LaneMaintenance
	}
	lane.MaintenanceReason = reason

	if err := s.store.UpdateLane(lane); err != nil {
		return fmt.Errorf("failed to update lane: %w", err)
	}

	s.log.LogLane("MAINTENANCE", laneID, "Reason: "+reason)
	s.audit(actor, models.ActionMaintenanceSet, fmt.Sprintf("%s, motivo: %s", lane.Name, reason), lane.ID, nil)

	s.refreshWaitEstimatesLocked(now)
	s.broadcastLanes()
	return nil
}

// ClearMaintenance releases the lane: a paused session resumes (the gap is
// added to its pause total), an empty maintenance lane returns to free.
func (s *VenueService) ClearMaintenance(laneID string, actor models.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lane, err := s.store.GetLane(laneID)
	if err != nil {
		return ErrLaneNotFound
	}

	now := time.Now()

	switch {
	case lane.IsMaintenancePaused && lane.CurrentSessionID != "":
		session, err := s.store.GetSession(lane.CurrentSessionID)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if session.LastMaintenanceStart == nil {
			return ErrNoPauseInProgress
		}
		session.MaintenanceTimeTotal += now.Sub(*session.LastMaintenanceStart)
		session.LastMaintenanceStart = nil
		if err := s.store.UpdateSession(session); err != nil {
			return fmt.Errorf("failed to resume session: %w", err)
		}
		lane.IsMaintenancePaused = false
	case lane.Status == models.LaneMaintenance:
		lane.Status = models.LaneFree
	default:
		s.log.LogLane("RELEASE_IGNORED", laneID, "Lane is not under maintenance")
		return nil
	}
	lane.MaintenanceReason = ""

	if err := s.store.UpdateLane(lane); err != nil {
		return fmt.Errorf("failed to update lane: %w", err)
	}

	s.log.LogLane("RELEASED", laneID, "Maintenance cleared")
	s.audit(actor, models.ActionMaintenanceClear, lane.Name, lane.ID, nil)

	s.refreshWaitEstimatesLocked(now)
	s.broadcastLanes()
	return nil
}

// CorrectStartTime fixes an open-time mistake on the running session. The
// old and new values go to the audit trail.
func (s *VenueService) CorrectStartTime(laneID string, newStart time.Time, actor models.Actor) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lane, err := s.store.GetLane(laneID)
	if err != nil {
		return nil, ErrLaneNotFound
	}
	if lane.CurrentSessionID == "" {
		return nil, ErrNoActiveSession
	}
	session, err := s.store.GetSession(lane.CurrentSessionID)
	if err != nil || !session.IsActive {
		return nil, ErrNoActiveSession
	}

	if newStart.After(time.Now()) {
		return nil, ErrInvalidStartTime
	}

	oldStart := session.StartTime
	session.StartTime = newStart
	if err := s.store.UpdateSession(session); err != nil {
		return nil, fmt.Errorf("failed to correct start time: %w", err)
	}

	s.log.LogSession("TIME_CORRECTED", session.ID, fmt.Sprintf("Start moved from %s to %s",
		oldStart.Format(time.RFC3339), newStart.Format(time.RFC3339)))

	s.audit(actor, models.ActionTimeCorrection, fmt.Sprintf("%s, comanda #%s", lane.Name, session.Comanda), lane.ID, &models.AuditDetails{
		TimeCorrection: &models.TimeCorrectionDetails{
			SessionID: session.ID,
			OldStart:  oldStart,
			NewStart:  newStart,
		},
	})
	return session, nil
}

// TransferSession moves a running session to another lane of the same type,
// keeping the customer's bill intact when the original lane's hardware
// fails. The session's lane snapshot follows the new lane.
func (s *VenueService) TransferSession(fromLaneID, toLaneID string, actor models.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, err := s.store.GetLane(fromLaneID)
	if err != nil {
		return ErrLaneNotFound
	}
	if from.CurrentSessionID == "" {
		s.log.LogLane("TRANSFER_IGNORED", fromLaneID, "No active session to transfer")
		return ErrNoActiveSession
	}
	to, err := s.store.GetLane(toLaneID)
	if err != nil {
		return ErrLaneNotFound
	}
	if to.Status != models.LaneFree {
		return ErrLaneUnavailable
	}
	if to.Type != from.Type {
		return ErrLaneTypeMismatch
	}

	session, err := s.store.GetSession(from.CurrentSessionID)
	if err != nil || !session.IsActive {
		return ErrNoActiveSession
	}

	session.LaneID = to.ID
	session.LaneType = to.Type
	if err := s.store.UpdateSession(session); err != nil {
		return fmt.Errorf("failed to move session: %w", err)
	}

	to.Status = models.LaneActive
	to.CurrentSessionID = session.ID
	if err := s.store.UpdateLane(to); err != nil {
		return fmt.Errorf("failed to occupy target lane: %w", err)
	}

	from.Status = models.LaneFree
	from.CurrentSessionID = ""
	from.IsMaintenancePaused = false
	if err := s.store.UpdateLane(from); err != nil {
		return fmt.Errorf("failed to free source lane: %w", err)
	}

	s.log.LogSession("TRANSFER", session.ID, fmt.Sprintf("Moved from %s to %s", from.Name, to.Name))
	s.audit(actor, models.ActionTransfer, fmt.Sprintf("%s -> %s, comanda #%s", from.Name, to.Name, session.Comanda), to.ID, &models.AuditDetails{
		Transfer: &models.TransferDetails{
			SessionID:  session.ID,
			FromLaneID: from.ID,
			ToLaneID:   to.ID,
		},
	})

	s.broadcastLanes()
	return nil
}

// SetReserved places a manual block on a free lane. This is the operator's
// "hold this lane" toggle and is deliberately independent of the
// Reservation entity's own status.
func (s *VenueService) SetReserved(laneID string, actor models.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lane, err := s.store.GetLane(laneID)
	if err != nil {
		return ErrLaneNotFound
	}
	if lane.Status != models.LaneFree {
		return ErrLaneUnavailable
	}

	lane.Status = models.LaneReserved
	if err := s.store.UpdateLane(lane); err != nil {
		return fmt.Errorf("failed to block lane: %w", err)
	}

	s.log.LogLane("BLOCKED", laneID, "Manual reservation block")
	s.audit(actor, models.ActionLaneBlock, lane.Name, lane.ID, nil)
	s.broadcastLanes()
	return nil
}

func (s *VenueService) ClearReserved(laneID string, actor models.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lane, err := s.store.GetLane(laneID)
	if err != nil {
		return ErrLaneNotFound
	}
	if lane.Status != models.LaneReserved {
		s.log.LogLane("UNBLOCK_IGNORED", laneID, "Lane is not blocked")
		return nil
	}

	lane.Status = models.LaneFree
	if err := s.store.UpdateLane(lane); err != nil {
		return fmt.Errorf("failed to unblock lane: %w", err)
	}

	s.log.LogLane("UNBLOCKED", laneID, "Manual block cleared")
	s.audit(actor, models.ActionLaneUnblock, lane.Name, lane.ID, nil)
	s.broadcastLanes()
	return nil
}

// consumeWaitingEntryLocked handles the open-time side effect: a waiting
// party whose comanda matches the opened session is seated on one lane.
// Multi-lane requests are fulfilled one lane at a time.
func (s *VenueService) consumeWaitingEntryLocked(comanda string, lane *models.Lane, actor models.Actor) {
	if comanda == "" {
		return
	}
	entries, err := s.store.ListWaiting()
	if err != nil {
		s.log.Error("WAITING", "Failed to list waiting entries: "+err.Error())
		return
	}

	for _, entry := range entries {
		if entry.Comanda != comanda {
			continue
		}
		entry.LanesRequested--
		context := fmt.Sprintf("Cliente %s movido para %s (#%s)", entry.Name, lane.Name, comanda)
		if entry.LanesRequested <= 0 {
			if err := s.store.DeleteWaiting(entry.ID); err != nil {
				s.log.Error("WAITING", "Failed to remove waiting entry: "+err.Error())
				return
			}
		} else {
			if err := s.store.UpdateWaiting(entry); err != nil {
				s.log.Error("WAITING", "Failed to update waiting entry: "+err.Error())
				return
			}
			context = fmt.Sprintf("%s (%d pista(s) restante(s))", context, entry.LanesRequested)
		}
		s.audit(actor, models.ActionWaitingPromoted, context, lane.ID, nil)
		return
	}
}
