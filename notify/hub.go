package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Chandrasura25/Social-media-backend-case-study/models"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

const subscriberBuffer = 32

type subscriber struct {
	recipientID uint
	ch          chan models.Notification
}

// Hub fans notifications out to the streams of the recipient. A slow stream
// whose buffer is full misses events rather than stalling the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*subscriber
	byUser map[uint]map[string]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{
		subs:   make(map[string]*subscriber),
		byUser: make(map[uint]map[string]struct{}),
	}
}

// Subscribe registers a stream for recipientID. The channel is closed when
// the returned cancel func runs or the hub shuts down.
func (h *Hub) Subscribe(recipientID uint) (string, <-chan models.Notification, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan models.Notification, subscriberBuffer)
	if h.closed {
		close(ch)
		return id, ch, func() {}
	}
	h.subs[id] = &subscriber{recipientID: recipientID, ch: ch}
	if h.byUser[recipientID] == nil {
		h.byUser[recipientID] = make(map[string]struct{})
	}
	h.byUser[recipientID][id] = struct{}{}
	utils.Sugar.Debugw("stream subscribed", "subscriber", id, "recipient", recipientID)
	return id, ch, func() { h.remove(id) }
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.subs[id]
	if !ok {
		return
	}
	close(s.ch)
	delete(h.subs, id)
	if set := h.byUser[s.recipientID]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(h.byUser, s.recipientID)
		}
	}
}

// Publish delivers n to every stream of its recipient. It never blocks.
func (h *Hub) Publish(_ context.Context, n models.Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id := range h.byUser[n.RecipientID] {
		select {
		case h.subs[id].ch <- n:
		default:
			utils.Sugar.Warnw("stream buffer full, dropping notification", "subscriber", id, "recipient", n.RecipientID)
		}
	}
	return nil
}

// Subscribers reports how many streams recipientID has open.
func (h *Hub) Subscribers(recipientID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[recipientID])
}

// Close ends every open stream.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, s := range h.subs {
		close(s.ch)
		delete(h.subs, id)
	}
	h.byUser = make(map[uint]map[string]struct{})
}
