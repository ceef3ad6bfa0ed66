package model

import (
	"time"
)

// Task states
const (
	TaskAssigned            = "assigned"
	TaskVerificationPending = "verification_pending"
	TaskVerified            = "verified"
	TaskRejected            = "rejected"
)

// Attachment and proof payload kinds
const (
	AttachmentFile = "file"
	AttachmentLink = "link"
)

// MaxInlineProofBytes caps base64-inlined payloads. External links carry no
// size check.
const MaxInlineProofBytes = 700 * 1024

// Task is a unit of assignable work owned by exactly one employee, with an
// attached proof and a manager verification step that awards points.
type Task struct {
	ID               string     `json:"id" gorm:"primaryKey;type:varchar(64)"`
	CompanyID        string     `json:"company_id" gorm:"type:varchar(100);index:idx_tasks_owner;not null"`
	OwnerUID         string     `json:"owner_uid" gorm:"type:varchar(64);index:idx_tasks_owner;not null"`
	Title            string     `json:"title" gorm:"type:varchar(200);not null"`
	Description      string     `json:"description" gorm:"type:text"`
	Points           int        `json:"points"`
	Status           string     `json:"status" gorm:"type:varchar(32);not null"`
	AttachmentURL    string     `json:"attachment_url,omitempty" gorm:"type:text"`
	AttachmentType   string     `json:"attachment_type,omitempty" gorm:"type:varchar(10)"`
	ProofURL         string     `json:"proof_url,omitempty" gorm:"type:text"`
	ProofType        string     `json:"proof_type,omitempty" gorm:"type:varchar(10)"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	RejectionMessage string     `json:"rejection_message,omitempty" gorm:"type:text"`
	AssignedBy       string     `json:"assigned_by" gorm:"type:varchar(64)"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`
	VerifiedBy       string     `json:"verified_by,omitempty" gorm:"type:varchar(64)"`
}

// taskTransitions is the complete lifecycle graph. verified is terminal;
// rejected tasks may be resubmitted.
var taskTransitions = map[string][]string{
	TaskAssigned:            {TaskVerificationPending},
	TaskVerificationPending: {TaskVerified, TaskRejected},
	TaskRejected:            {TaskVerificationPending},
	TaskVerified:            nil,
}

// CanTransition reports whether a task may move from one status to another
func CanTransition(from, to string) bool {
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AwaitingProof reports whether the owning employee may submit proof
func (t *Task) AwaitingProof() bool {
	return CanTransition(t.Status, TaskVerificationPending)
}

// AwaitingVerification reports whether a manager may decide this task
func (t *Task) AwaitingVerification() bool {
	return t.Status == TaskVerificationPending
}
