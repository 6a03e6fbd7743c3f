// Package notify delivers object tree events to subscribers.
//
// Events are published by the dispatcher after each committed call. Every
// subscriber observes the same total order, tagged with a sequence number.
package notify

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"
	"github.com/srg/bluem/internal/objtree"
)

// Event is a committed mutation stamped with its position in the global order
type Event struct {
	Seq uint64
	objtree.Mutation
}

func (e Event) String() string {
	switch e.Kind {
	case objtree.ObjectAdded:
		names := make([]string, 0, len(e.Interfaces))
		for _, iface := range e.Interfaces {
			names = append(names, iface.Name)
		}
		return fmt.Sprintf("#%d %s %s %v", e.Seq, e.Kind, e.Path, names)
	case objtree.PropertiesChanged:
		keys := make([]string, 0, len(e.Changed))
		for _, p := range e.Changed {
			keys = append(keys, p.Name)
		}
		return fmt.Sprintf("#%d %s %s %s %v", e.Seq, e.Kind, e.Path, e.Interface, keys)
	default:
		return fmt.Sprintf("#%d %s %s", e.Seq, e.Kind, e.Path)
	}
}

// ChangedKeys returns the names of changed properties in write order
func (e Event) ChangedKeys() []string {
	keys := make([]string, 0, len(e.Changed))
	for _, p := range e.Changed {
		keys = append(keys, p.Name)
	}
	return keys
}

// Subscriber receives events. Notify is called synchronously from the
// publishing goroutine and must not call back into the dispatcher.
type Subscriber interface {
	Notify(Event)
}

// SubscriberFunc adapts a function to Subscriber
type SubscriberFunc func(Event)

func (f SubscriberFunc) Notify(e Event) { f(e) }

// Broadcaster fans events out to all current subscribers
type Broadcaster struct {
	subs   *hashmap.Map[uint64, Subscriber]
	nextID atomic.Uint64
	seq    uint64
	mu     sync.Mutex // serializes Publish so sequence order equals delivery order
	logger *logrus.Logger
}

// NewBroadcaster creates a broadcaster with no subscribers
func NewBroadcaster(logger *logrus.Logger) *Broadcaster {
	if logger == nil {
		logger = logrus.New()
	}
	return &Broadcaster{
		subs:   hashmap.New[uint64, Subscriber](),
		logger: logger,
	}
}

// Subscribe registers s and returns a function that removes it.
// Safe to call from any goroutine.
func (b *Broadcaster) Subscribe(s Subscriber) (cancel func()) {
	id := b.nextID.Add(1)
	b.subs.Set(id, s)
	b.logger.WithField("subscriber", id).Debug("Subscriber added")

	var once sync.Once
	return func() {
		once.Do(func() {
			b.subs.Del(id)
			b.logger.WithField("subscriber", id).Debug("Subscriber removed")
		})
	}
}

// Len returns the number of current subscribers
func (b *Broadcaster) Len() int {
	return b.subs.Len()
}

// Publish stamps each mutation with the next sequence number and delivers
// them, in order, to every subscriber. Returns the published events.
func (b *Broadcaster) Publish(mutations ...objtree.Mutation) []Event {
	if len(mutations) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	events := make([]Event, 0, len(mutations))
	for _, m := range mutations {
		b.seq++
		e := Event{Seq: b.seq, Mutation: m}
		events = append(events, e)

		b.logger.WithFields(logrus.Fields{
			"seq":  e.Seq,
			"kind": e.Kind.String(),
			"path": e.Path,
		}).Debug("Publishing event")

		b.subs.Range(func(_ uint64, s Subscriber) bool {
			s.Notify(e)
			return true
		})
	}
	return events
}

// Seq returns the sequence number of the last published event
func (b *Broadcaster) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}
