package handler

import (
	"net/http"

	"taskpoints-service/internal/service"
	"taskpoints-service/pkg/logger"
	"taskpoints-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler exposes signup, login and join-company endpoints
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register creates a credential and a tenant profile in one step. The access
// code decides which role the caller gets.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SignupCounter.Inc()

	// Parse request
	var req struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		Company    string `json:"company"`
		AccessCode string `json:"access_code"`
		CompanyID  string `json:"company_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse signup request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("missing_fields")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	session, err := h.auth.Signup(c.Request().Context(), req.Name, req.Email, req.Password, req.Company, req.AccessCode, req.CompanyID)
	if err != nil {
		log.Error("Signup failed", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError("signup_failed")
		return respondError(c, err)
	}

	log.Info("User registered",
		zap.String("email", req.Email),
		zap.String("company_id", session.Profile.CompanyID),
		zap.String("role", session.Profile.Role))

	return c.JSON(http.StatusCreated, echo.Map{
		"token":     session.Token,
		"profile":   session.Profile,
		"dashboard": session.Profile.DashboardPath(),
	})
}

// Login authenticates a credential and issues a session token. A caller with
// no profile yet gets a restricted token so they can finish joining a company.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	// Parse request
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		CompanyID string `json:"company_id,omitempty"`
		Role      string `json:"role,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	session, err := h.auth.Login(c.Request().Context(), req.Email, req.Password, req.CompanyID, req.Role)
	if err != nil {
		log.Error("Login failed", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError("login_failed")
		return respondError(c, err)
	}

	resp := echo.Map{
		"token":            session.Token,
		"profile_complete": session.ProfileComplete,
	}
	if session.ProfileComplete {
		resp["profile"] = session.Profile
		resp["dashboard"] = session.Profile.DashboardPath()
		log.Info("User logged in",
			zap.String("email", req.Email),
			zap.String("company_id", session.Profile.CompanyID),
			zap.String("role", session.Profile.Role))
	} else {
		resp["dashboard"] = "/complete-profile"
		log.Info("User logged in without profile", zap.String("email", req.Email))
	}

	return c.JSON(http.StatusOK, resp)
}

// JoinCompany attaches a company profile to an existing credential using an
// access code, for accounts created before they picked a company.
func (h *AuthHandler) JoinCompany(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		Company    string `json:"company"`
		AccessCode string `json:"access_code"`
		CompanyID  string `json:"company_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse join request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	session, err := h.auth.JoinCompany(c.Request().Context(), req.Email, req.Password, req.Company, req.AccessCode, req.CompanyID)
	if err != nil {
		log.Error("Join company failed", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError("join_failed")
		return respondError(c, err)
	}

	log.Info("User joined company",
		zap.String("email", req.Email),
		zap.String("company_id", session.Profile.CompanyID))

	return c.JSON(http.StatusOK, echo.Map{
		"token":     session.Token,
		"profile":   session.Profile,
		"dashboard": session.Profile.DashboardPath(),
	})
}
