package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"taskpoints-service/internal/apperr"
	"taskpoints-service/internal/model"
	"taskpoints-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StandingsInvalidator drops derived views when a mutation changes points
type StandingsInvalidator interface {
	Invalidate(ctx context.Context, companyID string)
}

// AssignInput describes a new task
type AssignInput struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Points         int        `json:"points"`
	AttachmentURL  string     `json:"attachment_url,omitempty"`
	AttachmentType string     `json:"attachment_type,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
}

// TaskService runs the task lifecycle: assignment, proof submission,
// verification and the request-work presence signal.
type TaskService struct {
	tasks     repository.TaskRepository
	users     repository.UserRepository
	standings StandingsInvalidator
	log       *zap.Logger
}

func NewTaskService(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	standings StandingsInvalidator,
	log *zap.Logger,
) *TaskService {
	return &TaskService{tasks: tasks, users: users, standings: standings, log: log}
}

// Assign creates a task in the assigned state under the target employee.
// Managers are never a valid target, regardless of who asks.
func (s *TaskService) Assign(ctx context.Context, companyID, managerUID, employeeUID string, in AssignInput) (*model.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.New(apperr.Validation, "title is required")
	}
	if in.Points <= 0 {
		return nil, apperr.New(apperr.Validation, "points must be positive")
	}
	if err := validatePayload(in.AttachmentType, in.AttachmentURL); err != nil {
		return nil, err
	}

	target, err := s.users.ProfileByUID(ctx, employeeUID)
	if err != nil {
		return nil, err
	}
	if target.CompanyID != companyID {
		return nil, apperr.New(apperr.NotFound, "profile not found")
	}
	if target.Role == model.RoleManager {
		return nil, apperr.New(apperr.Validation, "tasks cannot be assigned to a manager")
	}

	task := &model.Task{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		OwnerUID:       employeeUID,
		Title:          in.Title,
		Description:    in.Description,
		Points:         in.Points,
		Status:         model.TaskAssigned,
		AttachmentURL:  in.AttachmentURL,
		AttachmentType: in.AttachmentType,
		Deadline:       in.Deadline,
		AssignedBy:     managerUID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.tasks.CreateAssigned(ctx, task); err != nil {
		return nil, err
	}

	s.log.Info("Task assigned",
		zap.String("task_id", task.ID),
		zap.String("owner_uid", employeeUID),
		zap.Int("points", task.Points))
	return task, nil
}

// SubmitProof attaches proof and moves the task to verification_pending
func (s *TaskService) SubmitProof(ctx context.Context, companyID, ownerUID, taskID, proofURL, proofType string) (*model.Task, error) {
	if proofURL == "" {
		return nil, apperr.New(apperr.Validation, "proof is required")
	}
	if err := validatePayload(proofType, proofURL); err != nil {
		return nil, err
	}

	task, err := s.tasks.ByID(ctx, companyID, ownerUID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.AwaitingProof() {
		return nil, apperr.New(apperr.Conflict, "task is not awaiting proof")
	}

	completedAt := time.Now().UTC()
	if err := s.tasks.SubmitProof(ctx, companyID, ownerUID, taskID, proofURL, proofType, completedAt); err != nil {
		return nil, err
	}

	task.Status = model.TaskVerificationPending
	task.ProofURL = proofURL
	task.ProofType = proofType
	task.CompletedAt = &completedAt

	s.log.Info("Proof submitted", zap.String("task_id", taskID), zap.String("owner_uid", ownerUID))
	return task, nil
}

// Verify decides a task awaiting verification. The store applies the verdict
// behind a conditional write so points are awarded at most once.
func (s *TaskService) Verify(ctx context.Context, companyID, verifierUID, ownerUID, taskID, verdict, rejectionMessage string) error {
	if verdict != model.TaskVerified && verdict != model.TaskRejected {
		return apperr.Newf(apperr.Validation, "unknown verdict '%s'", verdict)
	}
	if verdict == model.TaskRejected && strings.TrimSpace(rejectionMessage) == "" {
		return apperr.New(apperr.Validation, "a rejection message is required")
	}

	task, err := s.tasks.ByID(ctx, companyID, ownerUID, taskID)
	if err != nil {
		return err
	}
	if !task.AwaitingVerification() {
		return apperr.New(apperr.Conflict, "task is not awaiting verification")
	}

	err = s.tasks.Decide(ctx, repository.Decision{
		CompanyID:        companyID,
		OwnerUID:         ownerUID,
		TaskID:           taskID,
		Verdict:          verdict,
		Points:           task.Points,
		RejectionMessage: rejectionMessage,
		VerifiedBy:       verifierUID,
		VerifiedAt:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	// Standings derive from totalEarned; recompute on next read
	if s.standings != nil {
		s.standings.Invalidate(ctx, companyID)
	}

	s.log.Info("Task decided",
		zap.String("task_id", taskID),
		zap.String("verdict", verdict),
		zap.String("verified_by", verifierUID))
	return nil
}

// ToggleWorkRequest flips an employee's presence between requesting_task and
// available. A signal, not a task transition.
func (s *TaskService) ToggleWorkRequest(ctx context.Context, uid string) (string, error) {
	profile, err := s.users.ProfileByUID(ctx, uid)
	if err != nil {
		return "", err
	}
	if profile.Role != model.RoleEmployee {
		return "", apperr.New(apperr.Validation, "only employees can request work")
	}

	next := model.PresenceRequestingTask
	if profile.Presence == model.PresenceRequestingTask {
		next = model.PresenceAvailable
	}
	if err := s.users.UpdatePresence(ctx, uid, next); err != nil {
		return "", err
	}
	return next, nil
}

// ListByOwner returns an employee's tasks, newest first
func (s *TaskService) ListByOwner(ctx context.Context, companyID, ownerUID string) ([]model.Task, error) {
	return s.tasks.ListByOwner(ctx, companyID, ownerUID)
}

// Roster returns a company's non-manager profiles ordered by presence:
// available first, busy next, everyone else after, stable within a band.
func (s *TaskService) Roster(ctx context.Context, companyID string) ([]model.UserProfile, error) {
	profiles, err := s.users.ProfilesByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	roster := make([]model.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.Role != model.RoleManager {
			roster = append(roster, p)
		}
	}

	sort.SliceStable(roster, func(i, j int) bool {
		return model.PresenceScore(roster[i].Presence) > model.PresenceScore(roster[j].Presence)
	})
	return roster, nil
}

// validatePayload checks an attachment or proof payload. Inline file content
// is capped; links carry no size check.
func validatePayload(kind, payload string) error {
	switch kind {
	case "":
		if payload != "" {
			return apperr.New(apperr.Validation, "payload type is required")
		}
		return nil
	case model.AttachmentLink:
		return nil
	case model.AttachmentFile:
		if inlineSize(payload) > model.MaxInlineProofBytes {
			return apperr.Newf(apperr.Validation, "file too large, max %dKB", model.MaxInlineProofBytes/1024)
		}
		return nil
	default:
		return apperr.Newf(apperr.Validation, "unknown payload type '%s'", kind)
	}
}

// inlineSize estimates the decoded size of a base64 data payload
func inlineSize(payload string) int {
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	return len(payload) / 4 * 3
}
