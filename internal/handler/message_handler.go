package handler

import (
	"net/http"

	"taskpoints-service/internal/apperr"
	"taskpoints-service/internal/model"
	"taskpoints-service/internal/service"
	"taskpoints-service/pkg/logger"
	"taskpoints-service/prometheus"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks happen at the CORS layer
		return true
	},
}

// MessageHandler exposes conversation history, sending and the live stream.
// A conversation is keyed by employee; managers and admins can open any
// conversation in their company, employees only their own.
type MessageHandler struct {
	messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// History returns a conversation ordered oldest first
func (h *MessageHandler) History(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, employeeID, err := h.conversationScope(c)
	if err != nil {
		return respondError(c, err)
	}

	history, err := h.messages.Conversation(c.Request().Context(), companyID, employeeID)
	if err != nil {
		log.Error("Conversation lookup failed", zap.String("employee_id", employeeID), zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": history})
}

// Send appends a message to a conversation and fans it out to live streams
func (h *MessageHandler) Send(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.MessageCounter.Inc()

	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse message request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	companyID, employeeID, err := h.conversationScope(c)
	if err != nil {
		return respondError(c, err)
	}

	senderID, _ := c.Get("uid").(string)
	message, err := h.messages.Send(c.Request().Context(), companyID, employeeID, senderID, req.Text)
	if err != nil {
		log.Error("Message send failed", zap.String("employee_id", employeeID), zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, message)
}

// Stream upgrades to a websocket and pushes new conversation messages as
// they arrive. The client closing the socket ends the subscription.
func (h *MessageHandler) Stream(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, employeeID, err := h.conversationScope(c)
	if err != nil {
		return respondError(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error("Websocket upgrade failed", zap.Error(err))
		return err
	}
	defer conn.Close()

	updates, cancel := h.messages.Subscribe(companyID, employeeID)
	defer cancel()

	prometheus.ActiveChatConnections.Inc()
	defer prometheus.ActiveChatConnections.Dec()

	// Drain the client side so close frames are processed; incoming
	// payloads over the socket are ignored, sending goes over HTTP.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Info("Chat stream opened",
		zap.String("company_id", companyID),
		zap.String("employee_id", employeeID))

	for {
		select {
		case msg, ok := <-updates:
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Warn("Chat stream write failed", zap.Error(err))
				return nil
			}
		case <-done:
			return nil
		case <-c.Request().Context().Done():
			return nil
		}
	}
}

// conversationScope resolves which conversation the caller may touch.
// Employees are pinned to their own; managers and admins pick by route param.
func (h *MessageHandler) conversationScope(c echo.Context) (companyID, employeeID string, err error) {
	companyID, _ = c.Get("company_id").(string)
	uid, _ := c.Get("uid").(string)
	role, _ := c.Get("user_role").(string)

	employeeID = c.Param("employeeID")
	if employeeID == "" {
		employeeID = uid
	}
	if role == model.RoleEmployee && employeeID != uid {
		return "", "", apperr.New(apperr.Auth, "employees can only access their own conversation")
	}
	return companyID, employeeID, nil
}
