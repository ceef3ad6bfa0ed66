package service

import (
	"context"
	"strings"
	"time"

	"taskpoints-service/internal/apperr"
	"taskpoints-service/internal/model"
	"taskpoints-service/internal/repository"
	"taskpoints-service/pkg/jwtutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Session is an authenticated principal with its resolved tenant context.
// Profile is nil while the identity has no tenant membership yet; the client
// routes such sessions to the profile-completion flow.
type Session struct {
	Token           string             `json:"token"`
	Profile         *model.UserProfile `json:"profile,omitempty"`
	ProfileComplete bool               `json:"profile_complete"`
}

// AuthService wraps credential auth and resolves identities to tenant
// profiles.
type AuthService struct {
	users   repository.UserRepository
	tenants *TenantService
	log     *zap.Logger
}

func NewAuthService(users repository.UserRepository, tenants *TenantService, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tenants: tenants, log: log}
}

// Signup registers a new identity and attaches it to the tenant the access
// code resolves to. The code is validated before the credential is created
// so an invalid code can never leave an orphaned account behind.
func (s *AuthService) Signup(ctx context.Context, name, email, password, company, accessCode, expectedCompanyID string) (*Session, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperr.New(apperr.Validation, "name, email and password are required")
	}

	grant, err := s.tenants.ResolveAccessCode(ctx, company, accessCode)
	if err != nil {
		return nil, err
	}
	if expectedCompanyID != "" && grant.CompanyID != expectedCompanyID {
		return nil, apperr.Newf(apperr.Validation,
			"this access code belongs to '%s', not '%s'", grant.CompanyName, expectedCompanyID)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Backend, "registration failed", err)
	}

	cred := &model.Credential{
		UID:      uuid.New().String(),
		Email:    strings.ToLower(email),
		Password: string(hashed),
	}
	if err := s.users.CreateCredential(ctx, cred); err != nil {
		return nil, err
	}

	profile := &model.UserProfile{
		UID:          cred.UID,
		Name:         name,
		Email:        email,
		Role:         grant.Role,
		CompanyID:    grant.CompanyID,
		CompanyName:  grant.CompanyName,
		AccountState: model.DefaultAccountState(grant.Role),
		Presence:     model.PresenceIdle,
	}
	if err := s.users.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.log.Info("User registered",
		zap.String("email", cred.Email),
		zap.String("company_id", profile.CompanyID),
		zap.String("role", profile.Role))

	return s.sessionFor(profile)
}

// JoinCompany attaches an existing identity to the tenant an access code
// resolves to. Credentials are verified first; the identity must not already
// belong to a company.
func (s *AuthService) JoinCompany(ctx context.Context, email, password, company, accessCode, expectedCompanyID string) (*Session, error) {
	cred, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	grant, err := s.tenants.ResolveAccessCode(ctx, company, accessCode)
	if err != nil {
		return nil, err
	}
	if expectedCompanyID != "" && grant.CompanyID != expectedCompanyID {
		return nil, apperr.Newf(apperr.Validation,
			"this access code belongs to '%s', not '%s'", grant.CompanyName, expectedCompanyID)
	}

	profile := &model.UserProfile{
		UID:          cred.UID,
		Name:         nameFromEmail(email),
		Email:        email,
		Role:         grant.Role,
		CompanyID:    grant.CompanyID,
		CompanyName:  grant.CompanyName,
		AccountState: model.DefaultAccountState(grant.Role),
		Presence:     model.PresenceIdle,
	}
	if err := s.users.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	return s.sessionFor(profile)
}

// Login authenticates and resolves the identity to its tenant profile. A
// company mismatch or a deactivated account fails without issuing a token,
// which is this design's equivalent of signing back out. A role mismatch is
// left for the router to redirect.
func (s *AuthService) Login(ctx context.Context, email, password, expectedCompanyID, expectedRole string) (*Session, error) {
	cred, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile, err := s.users.ProfileByUID(ctx, cred.UID)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			// New identity with no tenant membership yet: restricted session
			token, terr := jwtutil.GenerateToken(cred.UID, cred.Email)
			if terr != nil {
				return nil, apperr.Wrap(apperr.Backend, "token error", terr)
			}
			return &Session{Token: token, ProfileComplete: false}, nil
		}
		return nil, err
	}

	if expectedCompanyID != "" && profile.CompanyID != expectedCompanyID {
		return nil, apperr.New(apperr.Auth, "invalid company credentials")
	}

	if !profile.CanLogin() {
		return nil, apperr.New(apperr.Auth, "your account is not active, contact your administrator")
	}

	if expectedRole != "" && profile.Role != expectedRole {
		s.log.Info("Role mismatch at login, router will redirect",
			zap.String("uid", profile.UID),
			zap.String("role", profile.Role),
			zap.String("expected_role", expectedRole))
	}

	// Best-effort bookkeeping; a failed stamp never fails the login
	if err := s.users.StampLastLogin(ctx, profile.UID, time.Now().UTC()); err != nil {
		s.log.Warn("Failed to stamp last login", zap.String("uid", profile.UID), zap.Error(err))
	}

	return s.sessionFor(profile)
}

// BootstrapSuperAdmin idempotently provisions the super-admin account. Safe
// to invoke repeatedly from the administrative command.
func (s *AuthService) BootstrapSuperAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return apperr.New(apperr.Validation, "super-admin email and password are required")
	}

	if _, err := s.users.CredentialByEmail(ctx, email); err == nil {
		s.log.Info("Super-admin already provisioned", zap.String("email", strings.ToLower(email)))
		return nil
	} else if !apperr.IsKind(err, apperr.NotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.Backend, "bootstrap failed", err)
	}

	cred := &model.Credential{
		UID:      uuid.New().String(),
		Email:    strings.ToLower(email),
		Password: string(hashed),
	}
	if err := s.users.CreateCredential(ctx, cred); err != nil {
		return err
	}

	profile := &model.UserProfile{
		UID:          cred.UID,
		Name:         name,
		Email:        email,
		Role:         model.RoleAdmin,
		AccountState: model.AccountAdmin,
		Presence:     model.PresenceIdle,
		IsSuperAdmin: true,
	}
	if err := s.users.CreateProfile(ctx, profile); err != nil {
		return err
	}

	s.log.Info("Super-admin provisioned", zap.String("email", cred.Email))
	return nil
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*model.Credential, error) {
	if email == "" || password == "" {
		return nil, apperr.New(apperr.Validation, "email and password are required")
	}

	cred, err := s.users.CredentialByEmail(ctx, email)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return nil, apperr.New(apperr.Auth, "invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.Password), []byte(password)); err != nil {
		return nil, apperr.New(apperr.Auth, "invalid credentials")
	}
	return cred, nil
}

func (s *AuthService) sessionFor(profile *model.UserProfile) (*Session, error) {
	token, err := jwtutil.GenerateTokenWithProfile(
		profile.UID, profile.Email, profile.CompanyID, profile.CompanyName,
		profile.Role, profile.IsSuperAdmin)
	if err != nil {
		return nil, apperr.Wrap(apperr.Backend, "token error", err)
	}
	return &Session{Token: token, Profile: profile, ProfileComplete: true}, nil
}

func nameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
