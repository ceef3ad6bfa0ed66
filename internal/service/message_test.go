package service

import (
	"context"
	"testing"
	"time"

	"taskpoints-service/internal/apperr"
	"taskpoints-service/internal/chat"
	"taskpoints-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSendPublishesToSubscribers(t *testing.T) {
	repo := new(mockMessageRepo)
	repo.On("Append", mock.Anything, mock.AnythingOfType("*model.Message")).Return(nil)
	hub := chat.NewHub()

	svc := NewMessageService(repo, hub, zap.NewNop())

	updates, cancel := svc.Subscribe("acme", "e1")
	defer cancel()

	msg, err := svc.Send(context.Background(), "acme", "e1", "m1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, "m1", msg.SenderID)

	select {
	case got := <-updates:
		assert.Equal(t, msg.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("no message delivered to subscriber")
	}
}

func TestSendRejectsEmptyText(t *testing.T) {
	svc := NewMessageService(new(mockMessageRepo), chat.NewHub(), zap.NewNop())

	_, err := svc.Send(context.Background(), "acme", "e1", "m1", "   ")
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestConversation(t *testing.T) {
	repo := new(mockMessageRepo)
	repo.On("Conversation", mock.Anything, "acme", "e1").Return([]model.Message{
		{ID: "1", Text: "hi"},
		{ID: "2", Text: "hello"},
	}, nil)

	svc := NewMessageService(repo, chat.NewHub(), zap.NewNop())
	history, err := svc.Conversation(context.Background(), "acme", "e1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
