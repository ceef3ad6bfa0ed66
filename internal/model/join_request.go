package model

import (
	"time"
)

// Join request states. APPROVED and REJECTED are terminal.
const (
	JoinPending  = "PENDING"
	JoinApproved = "APPROVED"
	JoinRejected = "REJECTED"
)

// JoinRequest is an approval-gated request to attach a new profile to a
// tenant under a given role. UID is populated when the requester has already
// created an authentication identity; legacy requests lack it and the
// approver provisions the identity on approval.
type JoinRequest struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UID           string    `json:"uid,omitempty" gorm:"type:varchar(64)"`
	Name          string    `json:"name" gorm:"type:varchar(100);not null"`
	Email         string    `json:"email" gorm:"type:varchar(100);index;not null"`
	RoleRequested string    `json:"role_requested" gorm:"type:varchar(20);not null"`
	CompanySlug   string    `json:"company_slug" gorm:"type:varchar(100);index;not null"`
	ApproverEmail string    `json:"approver_email" gorm:"type:varchar(100);index;not null"`
	Status        string    `json:"status" gorm:"type:varchar(16);not null;default:'PENDING'"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Terminal reports whether the request has been decided
func (r *JoinRequest) Terminal() bool {
	return r.Status == JoinApproved || r.Status == JoinRejected
}
