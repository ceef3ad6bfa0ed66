package handler

import (
	"net/http"

	"taskpoints-service/internal/service"
	"taskpoints-service/pkg/logger"
	"taskpoints-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JoinRequestHandler exposes the join-request pipeline: public submission,
// approver inbox, approve and reject.
type JoinRequestHandler struct {
	requests *service.JoinRequestService
}

func NewJoinRequestHandler(requests *service.JoinRequestService) *JoinRequestHandler {
	return &JoinRequestHandler{requests: requests}
}

// Create files a pending join request addressed to a role-appropriate approver
func (h *JoinRequestHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordJoinRequest("create")

	var req struct {
		UID             string `json:"uid,omitempty"`
		Name            string `json:"name"`
		Email           string `json:"email"`
		Role            string `json:"role"`
		Company         string `json:"company"`
		ManagerEmail    string `json:"manager_email,omitempty"`
		AdminEmail      string `json:"admin_email,omitempty"`
		SuperAdminEmail string `json:"super_admin_email,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse join request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	request, err := h.requests.Create(c.Request().Context(), service.JoinRequestInput{
		UID:             req.UID,
		Name:            req.Name,
		Email:           req.Email,
		RoleRequested:   req.Role,
		CompanySlug:     req.Company,
		ManagerEmail:    req.ManagerEmail,
		AdminEmail:      req.AdminEmail,
		SuperAdminEmail: req.SuperAdminEmail,
	})
	if err != nil {
		log.Error("Join request creation failed", zap.String("email", req.Email), zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Join request filed",
		zap.String("request_id", request.ID),
		zap.String("email", request.Email),
		zap.String("role", request.RoleRequested))
	return c.JSON(http.StatusCreated, request)
}

// ListPending returns the caller's approval inbox
func (h *JoinRequestHandler) ListPending(c echo.Context) error {
	log := logger.FromContext(c)

	email, _ := c.Get("email").(string)
	requests, err := h.requests.PendingForApprover(c.Request().Context(), email)
	if err != nil {
		log.Error("Pending request listing failed", zap.String("approver", email), zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": requests})
}

// Approve accepts a pending request and provisions the account
func (h *JoinRequestHandler) Approve(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordJoinRequest("approve")

	email, _ := c.Get("email").(string)
	requestID := c.Param("id")

	profile, err := h.requests.Approve(c.Request().Context(), requestID, email)
	if err != nil {
		log.Error("Join request approval failed",
			zap.String("request_id", requestID),
			zap.String("approver", email),
			zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Join request approved", zap.String("request_id", requestID), zap.String("approver", email))
	return c.JSON(http.StatusOK, echo.Map{"message": "request approved", "profile": profile})
}

// Reject declines a pending request
func (h *JoinRequestHandler) Reject(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordJoinRequest("reject")

	email, _ := c.Get("email").(string)
	requestID := c.Param("id")

	if err := h.requests.Reject(c.Request().Context(), requestID, email); err != nil {
		log.Error("Join request rejection failed",
			zap.String("request_id", requestID),
			zap.String("approver", email),
			zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Join request rejected", zap.String("request_id", requestID), zap.String("approver", email))
	return c.JSON(http.StatusOK, echo.Map{"message": "request rejected"})
}
