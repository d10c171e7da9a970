// eventBus
package actor

import (
	"regexp"
	"sync"
	"time"
)

// Topics published by an Environment.
const (
	ActorLifecycle    = "actorLifecycle"
	ResourceLifecycle = "resourceLifecycle"
	EnvLifecycle      = "envLifecycle"
)

// BusEvent is one lifecycle notification.
type BusEvent struct {
	Topic     string
	Timestamp time.Time
	Data      interface{}
}

// internal book-keeping
type subscriber struct {
	id     int
	regexp *regexp.Regexp
	fn     func(BusEvent)
}

// EventBus fans lifecycle events out to subscribers. Purely
// observational: nothing in the dispatch or locking paths depends
// on it. Subscriber callbacks run on the publishing goroutine and
// should return quickly.
type EventBus struct {
	sync.Mutex
	nextID      int
	subscribers []subscriber
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers fn for every topic matching pattern; an empty
// pattern matches all topics. The returned id is used to unsubscribe.
func (bus *EventBus) Subscribe(pattern string, fn func(BusEvent)) (int, error) {
	var rx *regexp.Regexp
	if pattern != "" {
		var err error
		rx, err = regexp.Compile(pattern)
		if err != nil {
			return 0, err
		}
	}
	bus.Lock()
	defer bus.Unlock()
	bus.nextID++
	bus.subscribers = append(bus.subscribers, subscriber{bus.nextID, rx, fn})
	return bus.nextID, nil
}

// Unsubscribe removes the subscription with the given id.
func (bus *EventBus) Unsubscribe(id int) {
	bus.Lock()
	defer bus.Unlock()
	for idx, subs := range bus.subscribers {
		if subs.id == id {
			bus.subscribers = append(bus.subscribers[:idx], bus.subscribers[idx+1:]...)
			return
		}
	}
}

// Publish delivers the event to every matching subscriber.
func (bus *EventBus) Publish(topic string, data interface{}) {
	be := BusEvent{topic, time.Now(), data}
	bus.Lock()
	subs := make([]subscriber, len(bus.subscribers))
	copy(subs, bus.subscribers)
	bus.Unlock()
	for _, s := range subs {
		if s.regexp == nil || s.regexp.MatchString(topic) {
			s.fn(be)
		}
	}
}
