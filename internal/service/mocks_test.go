package service

import (
	"context"
	"sync"
	"time"

	"taskpoints-service/internal/model"
	"taskpoints-service/internal/repository"
	"taskpoints-service/internal/store"

	"github.com/stretchr/testify/mock"
)

type mockTenantRepo struct {
	mock.Mock
}

func (m *mockTenantRepo) Create(ctx context.Context, tenant *model.Tenant) error {
	return m.Called(ctx, tenant).Error(0)
}

func (m *mockTenantRepo) BySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	args := m.Called(ctx, slug)
	if t, ok := args.Get(0).(*model.Tenant); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTenantRepo) List(ctx context.Context) ([]model.Tenant, error) {
	args := m.Called(ctx)
	if ts, ok := args.Get(0).([]model.Tenant); ok {
		return ts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTenantRepo) Delete(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) CreateCredential(ctx context.Context, cred *model.Credential) error {
	return m.Called(ctx, cred).Error(0)
}

func (m *mockUserRepo) CredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	args := m.Called(ctx, email)
	if c, ok := args.Get(0).(*model.Credential); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) CreateProfile(ctx context.Context, profile *model.UserProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *mockUserRepo) ProfileByUID(ctx context.Context, uid string) (*model.UserProfile, error) {
	args := m.Called(ctx, uid)
	if p, ok := args.Get(0).(*model.UserProfile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) ProfilesByCompany(ctx context.Context, companyID string) ([]model.UserProfile, error) {
	args := m.Called(ctx, companyID)
	if ps, ok := args.Get(0).([]model.UserProfile); ok {
		return ps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) UpdatePresence(ctx context.Context, uid, presence string) error {
	return m.Called(ctx, uid, presence).Error(0)
}

func (m *mockUserRepo) StampLastLogin(ctx context.Context, uid string, at time.Time) error {
	return m.Called(ctx, uid, at).Error(0)
}

type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) CreateAssigned(ctx context.Context, task *model.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockTaskRepo) ByID(ctx context.Context, companyID, ownerUID, taskID string) (*model.Task, error) {
	args := m.Called(ctx, companyID, ownerUID, taskID)
	if t, ok := args.Get(0).(*model.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskRepo) ListByOwner(ctx context.Context, companyID, ownerUID string) ([]model.Task, error) {
	args := m.Called(ctx, companyID, ownerUID)
	if ts, ok := args.Get(0).([]model.Task); ok {
		return ts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaskRepo) SubmitProof(ctx context.Context, companyID, ownerUID, taskID, proofURL, proofType string, completedAt time.Time) error {
	return m.Called(ctx, companyID, ownerUID, taskID, proofURL, proofType, completedAt).Error(0)
}

func (m *mockTaskRepo) Decide(ctx context.Context, d repository.Decision) error {
	return m.Called(ctx, d).Error(0)
}

type mockJoinRequestRepo struct {
	mock.Mock
}

func (m *mockJoinRequestRepo) Create(ctx context.Context, req *model.JoinRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockJoinRequestRepo) ByID(ctx context.Context, id string) (*model.JoinRequest, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*model.JoinRequest); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockJoinRequestRepo) PendingByApprover(ctx context.Context, approverEmail string) ([]model.JoinRequest, error) {
	args := m.Called(ctx, approverEmail)
	if rs, ok := args.Get(0).([]model.JoinRequest); ok {
		return rs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockJoinRequestRepo) PendingByEmail(ctx context.Context, email, companySlug string) (*model.JoinRequest, error) {
	args := m.Called(ctx, email, companySlug)
	if r, ok := args.Get(0).(*model.JoinRequest); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockJoinRequestRepo) SetStatus(ctx context.Context, id, status string, at time.Time) error {
	return m.Called(ctx, id, status, at).Error(0)
}

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Append(ctx context.Context, msg *model.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMessageRepo) Conversation(ctx context.Context, companyID, employeeID string) ([]model.Message, error) {
	args := m.Called(ctx, companyID, employeeID)
	if ms, ok := args.Get(0).([]model.Message); ok {
		return ms, args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeKV is an in-memory KV for cache behavior tests
type fakeKV struct {
	mu     sync.Mutex
	data   map[string]string
	hits   int
	misses int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		f.hits++
		return v, nil
	}
	f.misses++
	return "", store.ErrMiss
}

func (f *fakeKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

// recordingInvalidator captures standings invalidations from task verdicts
type recordingInvalidator struct {
	companies []string
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, companyID string) {
	r.companies = append(r.companies, companyID)
}
