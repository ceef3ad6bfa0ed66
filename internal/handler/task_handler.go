package handler

import (
	"net/http"
	"time"

	"taskpoints-service/internal/service"
	"taskpoints-service/pkg/logger"
	"taskpoints-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TaskHandler exposes the task lifecycle plus the presence roster
type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Assign creates a task for the employee on the route. Manager only.
func (h *TaskHandler) Assign(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTaskOperation("assign")

	var req struct {
		Title          string     `json:"title"`
		Description    string     `json:"description"`
		Points         int        `json:"points"`
		AttachmentURL  string     `json:"attachment_url,omitempty"`
		AttachmentType string     `json:"attachment_type,omitempty"`
		Deadline       *time.Time `json:"deadline,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse assign request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	companyID, _ := c.Get("company_id").(string)
	managerUID, _ := c.Get("uid").(string)

	task, err := h.tasks.Assign(c.Request().Context(), companyID, managerUID, c.Param("uid"), service.AssignInput{
		Title:          req.Title,
		Description:    req.Description,
		Points:         req.Points,
		AttachmentURL:  req.AttachmentURL,
		AttachmentType: req.AttachmentType,
		Deadline:       req.Deadline,
	})
	if err != nil {
		log.Error("Task assignment failed", zap.String("owner_uid", c.Param("uid")), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, task)
}

// ListMine returns the caller's own tasks
func (h *TaskHandler) ListMine(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, _ := c.Get("company_id").(string)
	uid, _ := c.Get("uid").(string)

	tasks, err := h.tasks.ListByOwner(c.Request().Context(), companyID, uid)
	if err != nil {
		log.Error("Task listing failed", zap.String("owner_uid", uid), zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

// ListForEmployee returns a given employee's tasks. Manager only.
func (h *TaskHandler) ListForEmployee(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, _ := c.Get("company_id").(string)
	ownerUID := c.Param("uid")

	tasks, err := h.tasks.ListByOwner(c.Request().Context(), companyID, ownerUID)
	if err != nil {
		log.Error("Task listing failed", zap.String("owner_uid", ownerUID), zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

// SubmitProof attaches completion proof to the caller's own task
func (h *TaskHandler) SubmitProof(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTaskOperation("submit_proof")

	var req struct {
		ProofURL  string `json:"proof_url"`
		ProofType string `json:"proof_type"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse proof request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	companyID, _ := c.Get("company_id").(string)
	uid, _ := c.Get("uid").(string)

	task, err := h.tasks.SubmitProof(c.Request().Context(), companyID, uid, c.Param("id"), req.ProofURL, req.ProofType)
	if err != nil {
		log.Error("Proof submission failed", zap.String("task_id", c.Param("id")), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, task)
}

// Verify applies a verdict to a task awaiting verification. Manager only.
func (h *TaskHandler) Verify(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Verdict          string `json:"verdict"`
		RejectionMessage string `json:"rejection_message,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse verify request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	prometheus.RecordTaskOperation(req.Verdict)

	companyID, _ := c.Get("company_id").(string)
	verifierUID, _ := c.Get("uid").(string)

	err := h.tasks.Verify(c.Request().Context(), companyID, verifierUID, c.Param("uid"), c.Param("id"), req.Verdict, req.RejectionMessage)
	if err != nil {
		log.Error("Task verification failed",
			zap.String("task_id", c.Param("id")),
			zap.String("verdict", req.Verdict),
			zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "verdict recorded"})
}

// RequestWork toggles the caller's requesting_task presence signal
func (h *TaskHandler) RequestWork(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTaskOperation("request_work")

	uid, _ := c.Get("uid").(string)
	presence, err := h.tasks.ToggleWorkRequest(c.Request().Context(), uid)
	if err != nil {
		log.Error("Work request toggle failed", zap.String("uid", uid), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"presence": presence})
}

// Roster returns the company's employees ordered by presence. Manager only.
func (h *TaskHandler) Roster(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, _ := c.Get("company_id").(string)
	roster, err := h.tasks.Roster(c.Request().Context(), companyID)
	if err != nil {
		log.Error("Roster listing failed", zap.String("company_id", companyID), zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"employees": roster})
}
