package service

import (
	"context"
	"strings"
	"time"

	"taskpoints-service/internal/apperr"
	"taskpoints-service/internal/chat"
	"taskpoints-service/internal/model"
	"taskpoints-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageService appends to per-employee conversations and pushes new
// messages to live subscribers.
type MessageService struct {
	messages repository.MessageRepository
	hub      *chat.Hub
	log      *zap.Logger
}

func NewMessageService(messages repository.MessageRepository, hub *chat.Hub, log *zap.Logger) *MessageService {
	return &MessageService{messages: messages, hub: hub, log: log}
}

// Send appends a message to a conversation. Empty or whitespace-only text is
// rejected; messages are never edited or deleted.
func (s *MessageService) Send(ctx context.Context, companyID, employeeID, senderID, text string) (*model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.New(apperr.Validation, "message text is required")
	}

	msg := &model.Message{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		EmployeeID: employeeID,
		SenderID:   senderID,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Publish(*msg)
	}
	return msg, nil
}

// Conversation returns a conversation's messages, oldest first
func (s *MessageService) Conversation(ctx context.Context, companyID, employeeID string) ([]model.Message, error) {
	return s.messages.Conversation(ctx, companyID, employeeID)
}

// Subscribe attaches a live listener to a conversation
func (s *MessageService) Subscribe(companyID, employeeID string) (<-chan model.Message, func()) {
	return s.hub.Subscribe(companyID, employeeID)
}
