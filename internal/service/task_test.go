package service

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"taskpoints-service/internal/apperr"
	"taskpoints-service/internal/model"
	"taskpoints-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTaskService(tasks *mockTaskRepo, users *mockUserRepo, inv *recordingInvalidator) *TaskService {
	return NewTaskService(tasks, users, inv, zap.NewNop())
}

func TestAssign(t *testing.T) {
	tasks := new(mockTaskRepo)
	users := new(mockUserRepo)
	users.On("ProfileByUID", mock.Anything, "e1").Return(&model.UserProfile{
		UID: "e1", Role: model.RoleEmployee, CompanyID: "acme",
	}, nil)
	tasks.On("CreateAssigned", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)

	svc := newTaskService(tasks, users, nil)
	task, err := svc.Assign(context.Background(), "acme", "m1", "e1", AssignInput{Title: "X", Points: 50})
	require.NoError(t, err)
	assert.Equal(t, model.TaskAssigned, task.Status)
	assert.Equal(t, 50, task.Points)
	assert.Equal(t, "m1", task.AssignedBy)
	assert.Equal(t, "e1", task.OwnerUID)
	tasks.AssertExpectations(t)
}

func TestAssignValidation(t *testing.T) {
	svc := newTaskService(new(mockTaskRepo), new(mockUserRepo), nil)

	_, err := svc.Assign(context.Background(), "acme", "m1", "e1", AssignInput{Title: "  ", Points: 10})
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	_, err = svc.Assign(context.Background(), "acme", "m1", "e1", AssignInput{Title: "X", Points: 0})
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestAssignRejectsManagerTarget(t *testing.T) {
	users := new(mockUserRepo)
	users.On("ProfileByUID", mock.Anything, "m2").Return(&model.UserProfile{
		UID: "m2", Role: model.RoleManager, CompanyID: "acme",
	}, nil)

	svc := newTaskService(new(mockTaskRepo), users, nil)
	_, err := svc.Assign(context.Background(), "acme", "m1", "m2", AssignInput{Title: "X", Points: 5})
	assert.True(t, apperr.IsKind(err, apperr.Validation))
	assert.Contains(t, err.Error(), "manager")
}

func TestAssignCrossTenantLooksAbsent(t *testing.T) {
	users := new(mockUserRepo)
	users.On("ProfileByUID", mock.Anything, "e9").Return(&model.UserProfile{
		UID: "e9", Role: model.RoleEmployee, CompanyID: "other-corp",
	}, nil)

	svc := newTaskService(new(mockTaskRepo), users, nil)
	_, err := svc.Assign(context.Background(), "acme", "m1", "e9", AssignInput{Title: "X", Points: 5})
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestSubmitProof(t *testing.T) {
	tasks := new(mockTaskRepo)
	tasks.On("ByID", mock.Anything, "acme", "e1", "t1").Return(&model.Task{
		ID: "t1", Status: model.TaskAssigned,
	}, nil)
	tasks.On("SubmitProof", mock.Anything, "acme", "e1", "t1", "https://proof", model.AttachmentLink, mock.Anything).Return(nil)

	svc := newTaskService(tasks, new(mockUserRepo), nil)
	task, err := svc.SubmitProof(context.Background(), "acme", "e1", "t1", "https://proof", model.AttachmentLink)
	require.NoError(t, err)
	assert.Equal(t, model.TaskVerificationPending, task.Status)
	assert.Equal(t, "https://proof", task.ProofURL)
	assert.NotNil(t, task.CompletedAt)
}

func TestSubmitProofResubmitAfterRejection(t *testing.T) {
	tasks := new(mockTaskRepo)
	tasks.On("ByID", mock.Anything, "acme", "e1", "t1").Return(&model.Task{
		ID: "t1", Status: model.TaskRejected,
	}, nil)
	tasks.On("SubmitProof", mock.Anything, "acme", "e1", "t1", "https://proof2", model.AttachmentLink, mock.Anything).Return(nil)

	svc := newTaskService(tasks, new(mockUserRepo), nil)
	_, err := svc.SubmitProof(context.Background(), "acme", "e1", "t1", "https://proof2", model.AttachmentLink)
	assert.NoError(t, err)
}

func TestSubmitProofConflictsOnWrongState(t *testing.T) {
	for _, status := range []string{model.TaskVerificationPending, model.TaskVerified} {
		tasks := new(mockTaskRepo)
		tasks.On("ByID", mock.Anything, "acme", "e1", "t1").Return(&model.Task{
			ID: "t1", Status: status,
		}, nil)

		svc := newTaskService(tasks, new(mockUserRepo), nil)
		_, err := svc.SubmitProof(context.Background(), "acme", "e1", "t1", "https://proof", model.AttachmentLink)
		assert.True(t, apperr.IsKind(err, apperr.Conflict), "status %s", status)
	}
}

func TestSubmitProofCapsInlineFiles(t *testing.T) {
	// A link of any size passes
	huge := "https://example.com/" + strings.Repeat("x", 2*model.MaxInlineProofBytes)
	tasks := new(mockTaskRepo)
	tasks.On("ByID", mock.Anything, "acme", "e1", "t1").Return(&model.Task{ID: "t1", Status: model.TaskAssigned}, nil)
	tasks.On("SubmitProof", mock.Anything, "acme", "e1", "t1", huge, model.AttachmentLink, mock.Anything).Return(nil)
	svc := newTaskService(tasks, new(mockUserRepo), nil)
	_, err := svc.SubmitProof(context.Background(), "acme", "e1", "t1", huge, model.AttachmentLink)
	assert.NoError(t, err)

	// An inline file over the cap does not
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(make([]byte, model.MaxInlineProofBytes+1024))
	_, err = svc.SubmitProof(context.Background(), "acme", "e1", "t1", payload, model.AttachmentFile)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestVerifyApproves(t *testing.T) {
	tasks := new(mockTaskRepo)
	tasks.On("ByID", mock.Anything, "acme", "e1", "t1").Return(&model.Task{
		ID: "t1", Status: model.TaskVerificationPending, Points: 50,
	}, nil)
	tasks.On("Decide", mock.Anything, mock.MatchedBy(func(d repository.Decision) bool {
		return d.Verdict == model.TaskVerified && d.Points == 50 && d.VerifiedBy == "m1"
	})).Return(nil)
	inv := &recordingInvalidator{}

	svc := newTaskService(tasks, new(mockUserRepo), inv)
	err := svc.Verify(context.Background(), "acme", "m1", "e1", "t1", model.TaskVerified, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, inv.companies)
	tasks.AssertExpectations(t)
}

func TestVerifyRejectNeedsMessage(t *testing.T) {
	svc := newTaskService(new(mockTaskRepo), new(mockUserRepo), nil)
	err := svc.Verify(context.Background(), "acme", "m1", "e1", "t1", model.TaskRejected, "   ")
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestVerifyUnknownVerdict(t *testing.T) {
	svc := newTaskService(new(mockTaskRepo), new(mockUserRepo), nil)
	err := svc.Verify(context.Background(), "acme", "m1", "e1", "t1", "maybe", "")
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestVerifyDuplicateConflicts(t *testing.T) {
	tasks := new(mockTaskRepo)
	tasks.On("ByID", mock.Anything, "acme", "e1", "t1").Return(&model.Task{
		ID: "t1", Status: model.TaskVerified, Points: 50,
	}, nil)

	svc := newTaskService(tasks, new(mockUserRepo), nil)
	err := svc.Verify(context.Background(), "acme", "m1", "e1", "t1", model.TaskVerified, "")
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
	tasks.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything)
}

func TestToggleWorkRequest(t *testing.T) {
	users := new(mockUserRepo)
	users.On("ProfileByUID", mock.Anything, "e1").Return(&model.UserProfile{
		UID: "e1", Role: model.RoleEmployee, Presence: model.PresenceAvailable,
	}, nil).Once()
	users.On("UpdatePresence", mock.Anything, "e1", model.PresenceRequestingTask).Return(nil).Once()

	svc := newTaskService(new(mockTaskRepo), users, nil)
	presence, err := svc.ToggleWorkRequest(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, model.PresenceRequestingTask, presence)

	// Toggling again flips back to available
	users.On("ProfileByUID", mock.Anything, "e1").Return(&model.UserProfile{
		UID: "e1", Role: model.RoleEmployee, Presence: model.PresenceRequestingTask,
	}, nil).Once()
	users.On("UpdatePresence", mock.Anything, "e1", model.PresenceAvailable).Return(nil).Once()

	presence, err = svc.ToggleWorkRequest(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, model.PresenceAvailable, presence)
}

func TestToggleWorkRequestEmployeeOnly(t *testing.T) {
	users := new(mockUserRepo)
	users.On("ProfileByUID", mock.Anything, "m1").Return(&model.UserProfile{
		UID: "m1", Role: model.RoleManager,
	}, nil)

	svc := newTaskService(new(mockTaskRepo), users, nil)
	_, err := svc.ToggleWorkRequest(context.Background(), "m1")
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestRosterOrdersByPresence(t *testing.T) {
	users := new(mockUserRepo)
	users.On("ProfilesByCompany", mock.Anything, "acme").Return([]model.UserProfile{
		{UID: "a", Role: model.RoleEmployee, Presence: model.PresenceIdle},
		{UID: "mgr", Role: model.RoleManager, Presence: model.PresenceAvailable},
		{UID: "b", Role: model.RoleEmployee, Presence: model.PresenceAvailable},
		{UID: "c", Role: model.RoleEmployee, Presence: model.PresenceBusy},
		{UID: "d", Role: model.RoleEmployee, Presence: model.PresenceAvailable},
	}, nil)

	svc := newTaskService(new(mockTaskRepo), users, nil)
	roster, err := svc.Roster(context.Background(), "acme")
	require.NoError(t, err)

	uids := make([]string, len(roster))
	for i, p := range roster {
		uids[i] = p.UID
	}
	// Managers filtered out; available first, busy next, idle last; ties
	// keep fetch order.
	assert.Equal(t, []string{"b", "d", "c", "a"}, uids)
}
