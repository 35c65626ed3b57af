package dialog

import (
	"sync"
)

type subscription struct {
	id      uint64
	handler EventHandler
}

// eventBus delivers each event to every subscriber on its own goroutine.
type eventBus struct {
	subscribers map[EventType][]subscription
	nextID      uint64
	mu          sync.RWMutex
}

func NewEventBus() EventBus {
	return &eventBus{
		subscribers: make(map[EventType][]subscription),
	}
}

func (eb *eventBus) Publish(event Event) {
	eb.mu.RLock()
	subs := eb.subscribers[event.Type()]
	eb.mu.RUnlock()

	for _, sub := range subs {
		go sub.handler(event)
	}
}

func (eb *eventBus) Subscribe(eventType EventType, handler EventHandler) func() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextID++
	id := eb.nextID
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscription{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { eb.unsubscribe(eventType, id) })
	}
}

func (eb *eventBus) unsubscribe(eventType EventType, id uint64) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[eventType]
	kept := make([]subscription, 0, len(subs))
	for _, sub := range subs {
		if sub.id != id {
			kept = append(kept, sub)
		}
	}
	eb.subscribers[eventType] = kept
}
