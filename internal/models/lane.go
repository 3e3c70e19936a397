package models

import (
	"time"
)

type LaneType string

const (
	TypeBowling   LaneType = "BOL"
	TypeBilliards LaneType = "SNK"
)

type LaneStatus string

const (
	LaneFree        LaneStatus = "free"
	LaneActive      LaneStatus = "active"
	LaneReserved    LaneStatus = "reserved"
	LaneMaintenance LaneStatus = "maintenance"
)

// Lane is a bowling lane or billiards table on the floor. CurrentSessionID
// is set iff the lane is active; an active lane whose session is suspended
// for repairs keeps status "active" with IsMaintenancePaused set.
type Lane struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Type                LaneType      `json:"type"`
	Status              LaneStatus    `json:"status"`
	CurrentSessionID    string        `json:"current_session_id,omitempty"`
	MaintenanceReason   string        `json:"maintenance_reason,omitempty"`
	IsMaintenancePaused bool          `json:"is_maintenance_paused"`
	TotalUsage          time.Duration `json:"total_usage"`
}

// Actor identifies the operator performing a mutation, for audit attribution.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserRole string

const (
	RoleAtendente UserRole = "atendente"
	RoleCaixa     UserRole = "caixa"
	RoleGerente   UserRole = "gerente"
)

type User struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Role UserRole `json:"role"`
	PIN  string   `json:"-"`
}
