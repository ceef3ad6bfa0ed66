package service

import (
	"context"
	"testing"
	"time"

	"taskpoints-service/internal/apperr"
	"taskpoints-service/internal/model"
	"taskpoints-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// In-memory repositories backing the end-to-end flow test. They honor the
// same guarded-write contracts as the gorm implementations.

type memUserRepo struct {
	credentials map[string]*model.Credential
	profiles    map[string]*model.UserProfile
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		credentials: make(map[string]*model.Credential),
		profiles:    make(map[string]*model.UserProfile),
	}
}

func (m *memUserRepo) CreateCredential(ctx context.Context, cred *model.Credential) error {
	if _, ok := m.credentials[cred.Email]; ok {
		return apperr.New(apperr.Conflict, "email already registered")
	}
	m.credentials[cred.Email] = cred
	return nil
}

func (m *memUserRepo) CredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	if c, ok := m.credentials[email]; ok {
		return c, nil
	}
	return nil, apperr.New(apperr.NotFound, "credential not found")
}

func (m *memUserRepo) CreateProfile(ctx context.Context, profile *model.UserProfile) error {
	if _, ok := m.profiles[profile.UID]; ok {
		return apperr.New(apperr.Conflict, "a profile already exists for this account")
	}
	m.profiles[profile.UID] = profile
	return nil
}

func (m *memUserRepo) ProfileByUID(ctx context.Context, uid string) (*model.UserProfile, error) {
	if p, ok := m.profiles[uid]; ok {
		return p, nil
	}
	return nil, apperr.New(apperr.NotFound, "profile not found")
}

func (m *memUserRepo) ProfilesByCompany(ctx context.Context, companyID string) ([]model.UserProfile, error) {
	var out []model.UserProfile
	for _, p := range m.profiles {
		if p.CompanyID == companyID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memUserRepo) UpdatePresence(ctx context.Context, uid, presence string) error {
	p, ok := m.profiles[uid]
	if !ok {
		return apperr.New(apperr.NotFound, "profile not found")
	}
	p.Presence = presence
	return nil
}

func (m *memUserRepo) StampLastLogin(ctx context.Context, uid string, at time.Time) error {
	if p, ok := m.profiles[uid]; ok {
		p.LastLoginAt = &at
	}
	return nil
}

type memTaskRepo struct {
	tasks map[string]*model.Task
	users *memUserRepo
}

func newMemTaskRepo(users *memUserRepo) *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]*model.Task), users: users}
}

func (m *memTaskRepo) CreateAssigned(ctx context.Context, task *model.Task) error {
	m.tasks[task.ID] = task
	if p, ok := m.users.profiles[task.OwnerUID]; ok {
		p.Presence = model.PresenceBusy
		p.LastAssignedAt = &task.CreatedAt
	}
	return nil
}

func (m *memTaskRepo) ByID(ctx context.Context, companyID, ownerUID, taskID string) (*model.Task, error) {
	t, ok := m.tasks[taskID]
	if !ok || t.CompanyID != companyID || t.OwnerUID != ownerUID {
		return nil, apperr.New(apperr.NotFound, "task not found")
	}
	out := *t
	return &out, nil
}

func (m *memTaskRepo) ListByOwner(ctx context.Context, companyID, ownerUID string) ([]model.Task, error) {
	var out []model.Task
	for _, t := range m.tasks {
		if t.CompanyID == companyID && t.OwnerUID == ownerUID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTaskRepo) SubmitProof(ctx context.Context, companyID, ownerUID, taskID, proofURL, proofType string, completedAt time.Time) error {
	t, ok := m.tasks[taskID]
	if !ok || t.Status != model.TaskAssigned && t.Status != model.TaskRejected {
		return apperr.New(apperr.Conflict, "task is not awaiting proof")
	}
	t.Status = model.TaskVerificationPending
	t.ProofURL = proofURL
	t.ProofType = proofType
	t.CompletedAt = &completedAt
	m.users.profiles[ownerUID].PendingTaskCount++
	return nil
}

func (m *memTaskRepo) Decide(ctx context.Context, d repository.Decision) error {
	t, ok := m.tasks[d.TaskID]
	if !ok || t.Status != model.TaskVerificationPending {
		return apperr.New(apperr.Conflict, "task is not awaiting verification")
	}
	t.Status = d.Verdict
	t.VerifiedAt = &d.VerifiedAt
	t.VerifiedBy = d.VerifiedBy
	if d.Verdict == model.TaskRejected {
		t.RejectionMessage = d.RejectionMessage
	}
	owner := m.users.profiles[d.OwnerUID]
	owner.PendingTaskCount--
	if d.Verdict == model.TaskVerified {
		owner.PointsStats.TotalEarned += d.Points
		owner.PointsStats.CurrentBalance += d.Points
	}
	return nil
}

// The whole happy path of one company: manager and employee sign up with their
// codes, the manager assigns a task, the employee submits proof, the manager
// approves, and the points land exactly once on the leaderboard.
func TestTaskLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	tenants := new(mockTenantRepo)
	tenants.On("BySlug", ctx, "acme").Return(&model.Tenant{
		ID: "acme", Name: "Acme", ManagerCode: "MGR1", EmployeeCode: "EMP1",
	}, nil)

	users := newMemUserRepo()
	tasks := newMemTaskRepo(users)

	auth := NewAuthService(users, NewTenantService(tenants, log), log)
	leaderboard := NewLeaderboardService(users, newFakeKV(), time.Minute, log)
	taskSvc := NewTaskService(tasks, users, leaderboard, log)

	// Both roles join through their codes
	mgrSession, err := auth.Signup(ctx, "Mgr", "mgr@acme.com", "secret", "acme", "MGR1", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, mgrSession.Profile.Role)

	empSession, err := auth.Signup(ctx, "Emp", "emp@acme.com", "secret", "acme", "EMP1", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleEmployee, empSession.Profile.Role)

	mgr, emp := mgrSession.Profile.UID, empSession.Profile.UID

	// Assignment marks the employee busy
	task, err := taskSvc.Assign(ctx, "acme", mgr, emp, AssignInput{Title: "X", Points: 50})
	require.NoError(t, err)
	assert.Equal(t, model.PresenceBusy, users.profiles[emp].Presence)

	// Proof moves the task to verification and bumps the pending count
	_, err = taskSvc.SubmitProof(ctx, "acme", emp, task.ID, "https://proof", model.AttachmentLink)
	require.NoError(t, err)
	assert.Equal(t, 1, users.profiles[emp].PendingTaskCount)

	// Approval awards the points and settles the pending count
	require.NoError(t, taskSvc.Verify(ctx, "acme", mgr, emp, task.ID, model.TaskVerified, ""))
	assert.Equal(t, 50, users.profiles[emp].PointsStats.TotalEarned)
	assert.Equal(t, 50, users.profiles[emp].PointsStats.CurrentBalance)
	assert.Equal(t, 0, users.profiles[emp].PendingTaskCount)

	// A second decision conflicts and never double-awards
	err = taskSvc.Verify(ctx, "acme", mgr, emp, task.ID, model.TaskVerified, "")
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
	assert.Equal(t, 50, users.profiles[emp].PointsStats.TotalEarned)

	// The leaderboard sees the award; the manager never appears on it
	standings, err := leaderboard.Standings(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Equal(t, emp, standings[0].UID)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 50, standings[0].TotalEarned)
}
