// Package chat fans appended messages out to live subscribers, replacing
// polling with push delivery per conversation.
package chat

import (
	"sync"

	"taskpoints-service/internal/model"
)

// subscriber channels are buffered; a subscriber that stops draining loses
// messages instead of blocking the publisher.
const subscriberBuffer = 16

// Hub tracks live subscriptions keyed by conversation
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan model.Message]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[chan model.Message]struct{}),
	}
}

func conversationKey(companyID, employeeID string) string {
	return companyID + "/" + employeeID
}

// Subscribe registers a listener on a conversation. The returned cancel
// function tears the subscription down and closes the channel.
func (h *Hub) Subscribe(companyID, employeeID string) (<-chan model.Message, func()) {
	key := conversationKey(companyID, employeeID)
	ch := make(chan model.Message, subscriberBuffer)

	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[chan model.Message]struct{})
	}
	h.subs[key][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[key], ch)
			if len(h.subs[key]) == 0 {
				delete(h.subs, key)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers a message to every live subscriber of its conversation
func (h *Hub) Publish(msg model.Message) {
	key := conversationKey(msg.CompanyID, msg.EmployeeID)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[key] {
		select {
		case ch <- msg:
		default:
			// Slow subscriber; skip rather than block the sender
		}
	}
}

// Subscribers reports the number of live listeners on a conversation
func (h *Hub) Subscribers(companyID, employeeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[conversationKey(companyID, employeeID)])
}
