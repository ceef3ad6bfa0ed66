package chat

import (
	"testing"
	"time"

	"taskpoints-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesConversationSubscribers(t *testing.T) {
	hub := NewHub()

	ch1, cancel1 := hub.Subscribe("acme", "e1")
	defer cancel1()
	ch2, cancel2 := hub.Subscribe("acme", "e1")
	defer cancel2()
	other, cancelOther := hub.Subscribe("acme", "e2")
	defer cancelOther()

	hub.Publish(model.Message{ID: "m1", CompanyID: "acme", EmployeeID: "e1", Text: "hi"})

	for _, ch := range []<-chan model.Message{ch1, ch2} {
		select {
		case msg := <-ch:
			assert.Equal(t, "m1", msg.ID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the message")
		}
	}

	select {
	case <-other:
		t.Fatal("message leaked into another conversation")
	default:
	}
}

func TestCancelRemovesSubscription(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("acme", "e1")
	require.Equal(t, 1, hub.Subscribers("acme", "e1"))

	cancel()
	assert.Equal(t, 0, hub.Subscribers("acme", "e1"))

	// Channel is closed after cancel
	_, open := <-ch
	assert.False(t, open)

	// Cancel is safe to call twice
	cancel()
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()

	_, cancel := hub.Subscribe("acme", "e1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish(model.Message{CompanyID: "acme", EmployeeID: "e1"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
