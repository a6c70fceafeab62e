// Package notify delivers macro events to interested parts of the host:
// mode changes, per-command progress and repaint requests after playback
// changed program state.
package notify

import (
	"strings"
	"sync"
)

// Topics published by the macro system. Topics are dot-separated; a
// subscription to "macro" also receives "macro.command.starting".
const (
	TopicMode             = "macro.mode"
	TopicCommandStarting  = "macro.command.starting"
	TopicCommandCompleted = "macro.command.completed"
	TopicRepaint          = "ui.repaint"
)

// Event is one published notification.
type Event struct {
	// Topic is the dot-separated topic name.
	Topic string

	// Macro is the identifier of the macro involved, if any.
	Macro string

	// Index is the command index for command topics, otherwise -1.
	Index int

	// Payload carries topic specific data such as the new mode or the
	// command title.
	Payload any
}

// Observer is called for each matching event.
type Observer func(ev Event)

// Subscription is an active observer registration.
type Subscription struct {
	id  uint64
	bus *Bus
}

// Unsubscribe removes the observer. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.bus != nil {
		s.bus.unsubscribe(s.id)
	}
}

// Publisher is the sending side of a Bus.
type Publisher interface {
	Publish(ev Event)
}

// Bus fans events out to observers.
type Bus struct {
	mu sync.RWMutex

	all    map[uint64]Observer
	topics map[string]map[uint64]Observer
	nextID uint64

	async  bool
	buffer chan Event
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithAsync delivers events from a goroutine through a buffer of the given
// size instead of on the publisher's goroutine.
func WithAsync(bufferSize int) Option {
	return func(b *Bus) {
		if bufferSize > 0 {
			b.async = true
			b.buffer = make(chan Event, bufferSize)
		}
	}
}

// New creates a Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		all:    make(map[uint64]Observer),
		topics: make(map[string]map[uint64]Observer),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.async {
		b.wg.Add(1)
		go b.run()
	}
	return b
}

// Subscribe registers an observer for every event.
func (b *Bus) Subscribe(fn Observer) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.all[id] = fn
	return &Subscription{id: id, bus: b}
}

// SubscribeTopic registers an observer for a topic and its sub-topics.
func (b *Bus) SubscribeTopic(topic string, fn Observer) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[uint64]Observer)
	}
	b.topics[topic][id] = fn
	return &Subscription{id: id, bus: b}
}

// Publish sends ev to the matching observers. Events published after
// Close are dropped.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return
	}
	if b.async {
		select {
		case b.buffer <- ev:
		case <-b.done:
		}
		return
	}
	b.deliver(ev)
}

// Close stops delivery. Buffered events are delivered before Close
// returns.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.done)
	b.wg.Wait()
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.all, id)
	for topic, observers := range b.topics {
		delete(observers, id)
		if len(observers) == 0 {
			delete(b.topics, topic)
		}
	}
}

func (b *Bus) deliver(ev Event) {
	b.mu.RLock()
	var observers []Observer
	for _, fn := range b.all {
		observers = append(observers, fn)
	}
	for topic, subs := range b.topics {
		if matches(topic, ev.Topic) {
			for _, fn := range subs {
				observers = append(observers, fn)
			}
		}
	}
	b.mu.RUnlock()

	for _, fn := range observers {
		fn(ev)
	}
}

func (b *Bus) run() {
	defer b.wg.Done()
	for {
		select {
		case ev := <-b.buffer:
			b.deliver(ev)
		case <-b.done:
			for {
				select {
				case ev := <-b.buffer:
					b.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

// matches reports whether a subscription to topic receives an event
// published on event.
func matches(topic, event string) bool {
	if topic == event {
		return true
	}
	return strings.HasPrefix(event, topic) && event[len(topic)] == '.'
}

// Nop is a Publisher that drops everything.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(Event) {}
