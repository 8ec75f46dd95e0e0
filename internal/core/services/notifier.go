package services

import (
	"sync"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driving"
)

type subscriber struct {
	id      driving.SubscriptionID
	handler driving.NotificationHandler
}

// notifier broadcasts notifications to subscribers in subscription order.
type notifier struct {
	mu          sync.RWMutex
	nextID      driving.SubscriptionID
	subscribers []subscriber
}

func (n *notifier) subscribe(handler driving.NotificationHandler) driving.SubscriptionID {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	n.subscribers = append(n.subscribers, subscriber{id: n.nextID, handler: handler})
	return n.nextID
}

func (n *notifier) unsubscribe(id driving.SubscriptionID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, s := range n.subscribers {
		if s.id == id {
			n.subscribers = append(n.subscribers[:i:i], n.subscribers[i+1:]...)
			return
		}
	}
}

// emit delivers note synchronously to the subscribers registered at call time.
func (n *notifier) emit(note domain.Notification) {
	n.mu.RLock()
	subs := make([]subscriber, len(n.subscribers))
	copy(subs, n.subscribers)
	n.mu.RUnlock()

	for _, s := range subs {
		if s.handler != nil {
			s.handler(note)
		}
	}
}
