// Package repository owns persistence. Interfaces here are what the service
// layer programs against; the gorm implementations encapsulate every
// multi-row transaction and every guarded conditional write so workflow
// invariants hold even under concurrent callers.
package repository

import (
	"context"
	"time"

	"taskpoints-service/internal/model"
)

// TenantRepository stores company workspaces
type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	BySlug(ctx context.Context, slug string) (*model.Tenant, error)
	List(ctx context.Context) ([]model.Tenant, error)
	// Delete removes the tenant record only; nested profiles and tasks are
	// not cascaded.
	Delete(ctx context.Context, slug string) error
}

// UserRepository stores authentication credentials and tenant profiles
type UserRepository interface {
	CreateCredential(ctx context.Context, cred *model.Credential) error
	CredentialByEmail(ctx context.Context, email string) (*model.Credential, error)

	CreateProfile(ctx context.Context, profile *model.UserProfile) error
	ProfileByUID(ctx context.Context, uid string) (*model.UserProfile, error)
	ProfilesByCompany(ctx context.Context, companyID string) ([]model.UserProfile, error)
	UpdatePresence(ctx context.Context, uid, presence string) error
	// StampLastLogin is best-effort bookkeeping; callers swallow its errors.
	StampLastLogin(ctx context.Context, uid string, at time.Time) error
}

// Decision finalizes a task awaiting verification
type Decision struct {
	CompanyID        string
	OwnerUID         string
	TaskID           string
	Verdict          string // verified or rejected
	Points           int
	RejectionMessage string
	VerifiedBy       string
	VerifiedAt       time.Time
}

// TaskRepository stores tasks and applies their transactional side effects
type TaskRepository interface {
	// CreateAssigned inserts the task and flips the owner to busy in one
	// transaction.
	CreateAssigned(ctx context.Context, task *model.Task) error
	ByID(ctx context.Context, companyID, ownerUID, taskID string) (*model.Task, error)
	ListByOwner(ctx context.Context, companyID, ownerUID string) ([]model.Task, error)
	// SubmitProof moves an assigned or rejected task to verification_pending
	// and increments the owner's pending count in the same transaction.
	// Returns Conflict when the task already moved on.
	SubmitProof(ctx context.Context, companyID, ownerUID, taskID, proofURL, proofType string, completedAt time.Time) error
	// Decide applies a verdict behind a conditional write keyed on the
	// current status, with the points increments and the pending-count
	// decrement in the same transaction, so a duplicate decision can never
	// double-award.
	Decide(ctx context.Context, d Decision) error
}

// JoinRequestRepository stores the approval pipeline
type JoinRequestRepository interface {
	Create(ctx context.Context, req *model.JoinRequest) error
	ByID(ctx context.Context, id string) (*model.JoinRequest, error)
	PendingByApprover(ctx context.Context, approverEmail string) ([]model.JoinRequest, error)
	PendingByEmail(ctx context.Context, email, companySlug string) (*model.JoinRequest, error)
	// SetStatus flips a PENDING request to a terminal status. Returns
	// Conflict when the request was already decided.
	SetStatus(ctx context.Context, id, status string, at time.Time) error
}

// MessageRepository stores per-employee conversations
type MessageRepository interface {
	Append(ctx context.Context, msg *model.Message) error
	Conversation(ctx context.Context, companyID, employeeID string) ([]model.Message, error)
}
