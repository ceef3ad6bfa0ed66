package handler

import (
	"net/http"

	"taskpoints-service/internal/service"
	"taskpoints-service/pkg/logger"
	"taskpoints-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantHandler exposes company provisioning for the super-admin plus the
// public company existence check used by tenant login pages.
type TenantHandler struct {
	tenants *service.TenantService
}

func NewTenantHandler(tenants *service.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// Create provisions a new company with freshly generated access codes
func (h *TenantHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("create")

	var req struct {
		Name         string `json:"name"`
		ManagerCode  string `json:"manager_code,omitempty"`
		EmployeeCode string `json:"employee_code,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	tenant, err := h.tenants.Provision(c.Request().Context(), req.Name, req.ManagerCode, req.EmployeeCode)
	if err != nil {
		log.Error("Tenant provisioning failed", zap.String("name", req.Name), zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Tenant provisioned", zap.String("company_id", tenant.ID))
	return c.JSON(http.StatusCreated, tenant)
}

// List returns all companies, codes included. Super-admin only.
func (h *TenantHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("list")

	tenants, err := h.tenants.List(c.Request().Context())
	if err != nil {
		log.Error("Tenant listing failed", zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"companies": tenants})
}

// Delete removes a company from the directory
func (h *TenantHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("delete")

	companyID := c.Param("companyID")
	if err := h.tenants.Delete(c.Request().Context(), companyID); err != nil {
		log.Error("Tenant deletion failed", zap.String("company_id", companyID), zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Tenant deleted", zap.String("company_id", companyID))
	return c.JSON(http.StatusOK, echo.Map{"message": "company deleted"})
}

// GetCompany is the public existence check behind tenant-scoped login pages.
// It never exposes access codes.
func (h *TenantHandler) GetCompany(c echo.Context) error {
	log := logger.FromContext(c)

	tenant, err := h.tenants.BySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		log.Warn("Company lookup failed", zap.String("slug", c.Param("slug")), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":   tenant.ID,
		"name": tenant.Name,
	})
}
