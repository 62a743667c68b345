package whatsapp

import (
	"sync"
	"time"
)

// deliveryWindow is how long a message ID is remembered. Meta retries undelivered
// webhooks for a while, so a redelivered command must not be applied twice.
const deliveryWindow = 24 * time.Hour

// DeliveryTracker remembers recently handled inbound message IDs.
type DeliveryTracker struct {
	seen map[string]time.Time
	mu   sync.Mutex
	now  func() time.Time
}

// NewDeliveryTracker creates an empty tracker.
func NewDeliveryTracker() *DeliveryTracker {
	return &DeliveryTracker{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// FirstDelivery records id and reports whether it had not been seen within the window.
// Empty IDs are always treated as new.
func (t *DeliveryTracker) FirstDelivery(id string) bool {
	if id == "" {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for key, at := range t.seen {
		if now.Sub(at) > deliveryWindow {
			delete(t.seen, key)
		}
	}
	if _, ok := t.seen[id]; ok {
		return false
	}
	t.seen[id] = now
	return true
}

// Forget removes id so a failed message can be retried.
func (t *DeliveryTracker) Forget(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.seen, id)
}
