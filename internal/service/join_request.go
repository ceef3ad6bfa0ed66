package service

import (
	"context"
	"strings"
	"time"

	"taskpoints-service/internal/apperr"
	"taskpoints-service/internal/model"
	"taskpoints-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// JoinRequestInput registers intent to join a company. UID is set when the
// requester already signed up; legacy requests leave it empty. Exactly one
// approver email is required, matching the requested role.
type JoinRequestInput struct {
	UID             string `json:"uid,omitempty"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	RoleRequested   string `json:"role_requested"`
	CompanySlug     string `json:"company_slug"`
	ManagerEmail    string `json:"manager_email,omitempty"`
	AdminEmail      string `json:"admin_email,omitempty"`
	SuperAdminEmail string `json:"super_admin_email,omitempty"`
}

// JoinRequestService runs the approval pipeline: PENDING requests are listed
// per approver and decided once, and approval provisions the profile.
type JoinRequestService struct {
	requests repository.JoinRequestRepository
	users    repository.UserRepository
	tenants  repository.TenantRepository
	log      *zap.Logger
}

func NewJoinRequestService(
	requests repository.JoinRequestRepository,
	users repository.UserRepository,
	tenants repository.TenantRepository,
	log *zap.Logger,
) *JoinRequestService {
	return &JoinRequestService{requests: requests, users: users, tenants: tenants, log: log}
}

// Create validates and registers a join request
func (s *JoinRequestService) Create(ctx context.Context, in JoinRequestInput) (*model.JoinRequest, error) {
	if in.Name == "" || in.Email == "" || in.RoleRequested == "" || in.CompanySlug == "" {
		return nil, apperr.New(apperr.Validation, "name, email, role and company are required")
	}

	role := strings.ToLower(in.RoleRequested)

	var approver string
	switch role {
	case model.RoleEmployee:
		if in.ManagerEmail == "" {
			return nil, apperr.New(apperr.Validation, "manager email is required for employee requests")
		}
		approver = in.ManagerEmail
	case model.RoleManager:
		if in.AdminEmail == "" {
			return nil, apperr.New(apperr.Validation, "admin email is required for manager requests")
		}
		approver = in.AdminEmail
	case model.RoleAdmin:
		if in.SuperAdminEmail == "" {
			return nil, apperr.New(apperr.Validation, "super-admin email is required for admin requests")
		}
		approver = in.SuperAdminEmail
	default:
		return nil, apperr.Newf(apperr.Validation, "unknown role '%s'", in.RoleRequested)
	}

	if _, err := s.tenants.BySlug(ctx, in.CompanySlug); err != nil {
		return nil, err
	}

	if existing, err := s.requests.PendingByEmail(ctx, in.Email, in.CompanySlug); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.New(apperr.Conflict, "a pending join request already exists for this email")
	}

	now := time.Now().UTC()
	req := &model.JoinRequest{
		ID:            uuid.New().String(),
		UID:           in.UID,
		Name:          in.Name,
		Email:         strings.ToLower(in.Email),
		RoleRequested: role,
		CompanySlug:   in.CompanySlug,
		ApproverEmail: strings.ToLower(approver),
		Status:        model.JoinPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.log.Info("Join request created",
		zap.String("request_id", req.ID),
		zap.String("company_slug", req.CompanySlug),
		zap.String("role_requested", req.RoleRequested))
	return req, nil
}

// PendingForApprover lists the PENDING requests addressed to an approver
func (s *JoinRequestService) PendingForApprover(ctx context.Context, approverEmail string) ([]model.JoinRequest, error) {
	if approverEmail == "" {
		return nil, apperr.New(apperr.Validation, "approver email is required")
	}
	return s.requests.PendingByApprover(ctx, approverEmail)
}

// Approve decides a request in the requester's favor and provisions their
// profile. Legacy requests without a uid get a credential with a one-time
// password and a required reset.
func (s *JoinRequestService) Approve(ctx context.Context, requestID, approverEmail string) (*model.UserProfile, error) {
	req, err := s.authorizeDecision(ctx, requestID, approverEmail)
	if err != nil {
		return nil, err
	}

	tenant, err := s.tenants.BySlug(ctx, req.CompanySlug)
	if err != nil {
		return nil, err
	}

	uid := req.UID
	if uid == "" {
		// Legacy request: the identity does not exist yet. Provision one
		// with a generated password the user must reset before first use.
		cred := &model.Credential{
			UID:                   uuid.New().String(),
			Email:                 req.Email,
			Password:              hashedOneTimePassword(),
			PasswordResetRequired: true,
		}
		if err := s.users.CreateCredential(ctx, cred); err != nil {
			if apperr.IsKind(err, apperr.Conflict) {
				return nil, apperr.New(apperr.Conflict,
					"an account already exists for this email but the request has no identity attached; reject it and ask the user to sign up again")
			}
			return nil, err
		}
		uid = cred.UID
		s.log.Info("Provisioned identity for legacy join request, password reset required",
			zap.String("request_id", req.ID),
			zap.String("email", req.Email))
	}

	role := strings.ToLower(req.RoleRequested)
	profile := &model.UserProfile{
		UID:          uid,
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		CompanyID:    tenant.ID,
		CompanyName:  tenant.Name,
		AccountState: model.DefaultAccountState(role),
		Presence:     model.PresenceIdle,
	}
	if err := s.users.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	if err := s.requests.SetStatus(ctx, req.ID, model.JoinApproved, time.Now().UTC()); err != nil {
		return nil, err
	}

	s.log.Info("Join request approved",
		zap.String("request_id", req.ID),
		zap.String("uid", uid),
		zap.String("company_id", tenant.ID),
		zap.String("role", role))
	return profile, nil
}

// Reject decides a request against the requester
func (s *JoinRequestService) Reject(ctx context.Context, requestID, approverEmail string) error {
	req, err := s.authorizeDecision(ctx, requestID, approverEmail)
	if err != nil {
		return err
	}

	if err := s.requests.SetStatus(ctx, req.ID, model.JoinRejected, time.Now().UTC()); err != nil {
		return err
	}

	s.log.Info("Join request rejected", zap.String("request_id", req.ID))
	return nil
}

func (s *JoinRequestService) authorizeDecision(ctx context.Context, requestID, approverEmail string) (*model.JoinRequest, error) {
	req, err := s.requests.ByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(req.ApproverEmail, approverEmail) {
		return nil, apperr.New(apperr.Auth, "only the designated approver can decide this request")
	}
	if req.Terminal() {
		return nil, apperr.New(apperr.Conflict, "join request already decided")
	}
	return req, nil
}

func hashedOneTimePassword() string {
	// The generated password is never told to anyone; the reset flow is the
	// only way in.
	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
	if err != nil {
		return ""
	}
	return string(hashed)
}
