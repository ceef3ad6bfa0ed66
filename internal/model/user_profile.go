package model

import (
	"time"
)

// Account states decide whether a user may log in at all.
const (
	AccountActive   = "active"
	AccountAdmin    = "admin"
	AccountInactive = "inactive"
	AccountBanned   = "banned"
)

// Presence states are live work signals and never gate authentication.
// Kept separate from the account state so "can this user log in" and
// "what are they doing right now" stay two different questions.
const (
	PresenceIdle           = "idle"
	PresenceAvailable      = "available"
	PresenceBusy           = "busy"
	PresenceRequestingTask = "requesting_task"
)

// PointsStats aggregates the scoring counters for an employee
type PointsStats struct {
	TotalEarned    int `json:"total_earned"`
	CurrentBalance int `json:"current_balance"`
}

// UserProfile is the tenant-scoped record describing a member's role, points
// and presence. The UID is the authentication identity id and is unique
// across all tenants, so profile resolution at login is a single indexed
// lookup rather than a cross-tenant scan.
type UserProfile struct {
	UID              string      `json:"uid" gorm:"primaryKey;type:varchar(64)"`
	Name             string      `json:"name" gorm:"type:varchar(100)"`
	Email            string      `json:"email" gorm:"type:varchar(100);index"`
	Role             string      `json:"role" gorm:"type:varchar(20);not null"`
	CompanyID        string      `json:"company_id" gorm:"type:varchar(100);index;not null"`
	CompanyName      string      `json:"company_name" gorm:"type:varchar(100)"`
	AccountState     string      `json:"account_state" gorm:"type:varchar(20);not null;default:'active'"`
	Presence         string      `json:"presence" gorm:"type:varchar(20);not null;default:'idle'"`
	IsSuperAdmin     bool        `json:"is_super_admin" gorm:"default:false"`
	PointsStats      PointsStats `json:"points_stats" gorm:"embedded;embeddedPrefix:points_"`
	PendingTaskCount int         `json:"pending_task_count" gorm:"default:0"`
	LastAssignedAt   *time.Time  `json:"last_assigned_at,omitempty"`
	LastLoginAt      *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// CanLogin is a deny-list check so work presences never lock anyone out
func (p *UserProfile) CanLogin() bool {
	return p.AccountState != AccountInactive && p.AccountState != AccountBanned
}

// DefaultAccountState returns the account state a freshly provisioned
// profile starts with for the given role.
func DefaultAccountState(role string) string {
	if role == RoleEmployee {
		return AccountActive
	}
	return AccountAdmin
}

// PresenceScore orders the manager roster: available first, busy next,
// everyone else after.
func PresenceScore(presence string) int {
	switch presence {
	case PresenceAvailable:
		return 3
	case PresenceBusy:
		return 2
	default:
		return 1
	}
}

// DashboardPath is the role-appropriate dashboard route for this profile,
// always computed from the profile's own company, never from the route the
// user attempted.
func (p *UserProfile) DashboardPath() string {
	if p.IsSuperAdmin {
		return "/super-admin"
	}
	switch p.Role {
	case RoleAdmin:
		return "/" + p.CompanyID + "/admin-dashboard"
	case RoleManager:
		return "/" + p.CompanyID + "/manager-dashboard"
	default:
		return "/" + p.CompanyID + "/user-dashboard"
	}
}
