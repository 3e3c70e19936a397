package storage

import (
	"errors"
	"time"

	"boliche-os/internal/models"
	"boliche-os/internal/pricing"
)

var (
	ErrLaneNotFound        = errors.New("lane not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrWaitingNotFound     = errors.New("waiting entry not found")
	ErrUserNotFound        = errors.New("user not found")
)

// Store is the persistence boundary: one logical table per entity plus the
// receipt counter. Both implementations (memory, MySQL) are safe for
// concurrent readers; multi-entity atomicity is the service's job.
type Store interface {
	// Lanes
	SaveLane(lane *models.Lane) error
	GetLane(id string) (*models.Lane, error)
	UpdateLane(lane *models.Lane) error
	ListLanes() ([]*models.Lane, error)

	// Sessions
	SaveSession(session *models.Session) error
	GetSession(id string) (*models.Session, error)
	UpdateSession(session *models.Session) error
	GetActiveSessionByComanda(comanda string) (*models.Session, error)
	ListActiveSessions() ([]*models.Session, error)
	ListSessionsClosedBetween(from, to time.Time) ([]*models.Session, error)

	// Reservations
	SaveReservation(res *models.Reservation) error
	GetReservation(id string) (*models.Reservation, error)
	UpdateReservation(res *models.Reservation) error
	ListReservations() ([]*models.Reservation, error)

	// Waiting list
	SaveWaiting(entry *models.WaitingCustomer) error
	UpdateWaiting(entry *models.WaitingCustomer) error
	DeleteWaiting(id string) error
	ListWaiting() ([]*models.WaitingCustomer, error)

	// Audit log, append-only.
	AppendAudit(entry *models.AuditEntry) error
	ListAudit(limit, offset int) ([]*models.AuditEntry, error)

	// Tariffs and calendar
	GetPricingRules() (*pricing.Rules, error)
	SavePricingRules(rules *pricing.Rules) error
	ListHolidays() ([]*models.Holiday, error)
	SaveHoliday(h *models.Holiday) error
	DeleteHoliday(date string) error

	// Operators
	GetUserByPIN(pin string) (*models.User, error)
	SaveUser(user *models.User) error

	// NextReceiptNumber returns a strictly increasing counter value.
	// Numbers are never reused, even when the surrounding close fails and
	// is retried.
	NextReceiptNumber() (int64, error)
}
