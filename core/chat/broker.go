package chat

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/darasa-app/darasa/core"
)

// Subscriber receives broadcast payloads. Deliver must not block; a
// subscriber that cannot keep up drops payloads on its own side.
type Subscriber interface {
	Deliver(data []byte)
}

// Broker is the in-process group channel registry: one named group per
// course, fan-out to every currently joined subscriber. A single instance
// is created at process start and shared by all sessions and notifiers.
type Broker struct {
	mu     sync.RWMutex
	groups map[string]map[Subscriber]struct{}
	logger core.Logger
}

func NewBroker(logger core.Logger) *Broker {
	return &Broker{
		groups: make(map[string]map[Subscriber]struct{}),
		logger: logger,
	}
}

func (b *Broker) Join(group string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.groups[group]
	if !ok {
		subs = make(map[Subscriber]struct{})
		b.groups[group] = subs
	}
	subs[sub] = struct{}{}
	b.logger.Debug("broker: joined " + group)
}

// Leave removes sub from the group. Leaving a group that was never joined
// is a no-op.
func (b *Broker) Leave(group string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.groups[group]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.groups, group)
	}
}

// Broadcast marshals event once and delivers the bytes to every subscriber
// currently joined to the group. Delivery is independent per subscriber;
// subscribers joining after the call do not receive the event.
func (b *Broker) Broadcast(group string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshaling event")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.groups[group] {
		sub.Deliver(data)
	}
	return nil
}

// Count reports how many subscribers are joined to the group.
func (b *Broker) Count(group string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.groups[group])
}
