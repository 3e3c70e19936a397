package models

import (
	"time"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationArrived   ReservationStatus = "arrived"
	ReservationDelayed   ReservationStatus = "delayed"
	ReservationNoShow    ReservationStatus = "no-show"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationFulfilled ReservationStatus = "fulfilled"
)

// IsTerminal reports whether no further status transition is allowed.
// pending, arrived and delayed move freely between each other; cancelled,
// no-show and fulfilled are final.
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case ReservationCancelled, ReservationNoShow, ReservationFulfilled:
		return true
	}
	return false
}

// Reservation is an advance booking. LaneID empty means "any lane"; the
// actual lane assignment happens at check-in, when LaneIDs records where
// the party was seated.
type Reservation struct {
	ID           string            `json:"id"`
	LaneID       string            `json:"lane_id,omitempty"`
	LaneIDs      []string          `json:"lane_ids,omitempty"`
	CustomerName string            `json:"customer_name"`
	LaneCount    int               `json:"lane_count"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      time.Time         `json:"end_time"`
	Observation  string            `json:"observation,omitempty"`
	Status       ReservationStatus `json:"status"`
}

// ReservationEvent is the message consumed from the online booking channel.
type ReservationEvent struct {
	Type        string       `json:"type"`
	Reservation *Reservation `json:"reservation"`
	Timestamp   time.Time    `json:"timestamp"`
}

// WaitingCustomer is a walk-in party queued for the next free lane.
// EstimatedWaitMinutes is recomputed on every lane or session change.
type WaitingCustomer struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	LanesRequested       int       `json:"lanes_requested"`
	Table                string    `json:"table,omitempty"`
	Comanda              string    `json:"comanda,omitempty"`
	Vehicle              string    `json:"vehicle,omitempty"`
	JoinedAt             time.Time `json:"joined_at"`
	EstimatedWaitMinutes int       `json:"estimated_wait_minutes"`
}
