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
)

// AccessGrant is the result of resolving an access code
type AccessGrant struct {
	Role        string `json:"role"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
}

// TenantService owns the tenant directory: provisioning, lookup and
// access-code resolution.
type TenantService struct {
	tenants repository.TenantRepository
	log     *zap.Logger
}

func NewTenantService(tenants repository.TenantRepository, log *zap.Logger) *TenantService {
	return &TenantService{tenants: tenants, log: log}
}

// ResolveAccessCode maps a company name or slug plus a shared code to the
// role it grants. Codes are opaque tokens compared exactly; the error for a
// failed match never says which code type the input was close to.
func (s *TenantService) ResolveAccessCode(ctx context.Context, companyNameOrSlug, code string) (*AccessGrant, error) {
	if companyNameOrSlug == "" || code == "" {
		return nil, apperr.New(apperr.Validation, "company and access code are required")
	}

	tenant, err := s.tenants.BySlug(ctx, model.Slugify(companyNameOrSlug))
	if err != nil {
		return nil, err
	}

	switch code {
	case tenant.ManagerCode:
		return &AccessGrant{Role: model.RoleManager, CompanyID: tenant.ID, CompanyName: tenant.Name}, nil
	case tenant.EmployeeCode:
		return &AccessGrant{Role: model.RoleEmployee, CompanyID: tenant.ID, CompanyName: tenant.Name}, nil
	default:
		return nil, apperr.New(apperr.Validation, "invalid access code")
	}
}

// Provision creates a tenant workspace. Empty codes are generated; provided
// codes must be non-empty and distinct.
func (s *TenantService) Provision(ctx context.Context, name, managerCode, employeeCode string) (*model.Tenant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.New(apperr.Validation, "company name is required")
	}

	slug := model.Slugify(name)
	if slug == "" {
		return nil, apperr.New(apperr.Validation, "company name must contain letters or digits")
	}

	if managerCode == "" {
		managerCode = generateAccessCode()
	}
	if employeeCode == "" {
		employeeCode = generateAccessCode()
	}
	if managerCode == employeeCode {
		return nil, apperr.New(apperr.Validation, "manager and employee codes must differ")
	}

	tenant := &model.Tenant{
		ID:           slug,
		Name:         strings.TrimSpace(name),
		ManagerCode:  managerCode,
		EmployeeCode: employeeCode,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}

	s.log.Info("Tenant provisioned", zap.String("company_id", tenant.ID))
	return tenant, nil
}

// BySlug returns a tenant by its slug
func (s *TenantService) BySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	return s.tenants.BySlug(ctx, slug)
}

// List returns all tenants
func (s *TenantService) List(ctx context.Context) ([]model.Tenant, error) {
	return s.tenants.List(ctx)
}

// Delete removes a tenant record. Nested profiles and tasks are not
// cascaded.
func (s *TenantService) Delete(ctx context.Context, slug string) error {
	if err := s.tenants.Delete(ctx, slug); err != nil {
		return err
	}
	s.log.Info("Tenant deleted", zap.String("company_id", slug))
	return nil
}

func generateAccessCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
}
