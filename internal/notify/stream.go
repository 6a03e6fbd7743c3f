package notify

import "sync"

// Stream is an asynchronous subscriber. Events are buffered in a RingChannel
// so a slow reader can never stall the dispatcher; when the buffer is full the
// oldest event is dropped and counted.
//
// Streams are lossy by construction and suited to logging and monitoring.
// Subscribers that must see every event implement Subscriber directly.
type Stream struct {
	ring   *RingChannel[Event]
	cancel func()
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// Watch subscribes a new Stream with the given buffer capacity
func (b *Broadcaster) Watch(capacity int) *Stream {
	s := &Stream{ring: NewRingChannel[Event](capacity)}
	s.cancel = b.Subscribe(s)
	return s
}

// Notify implements Subscriber
func (s *Stream) Notify(e Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	s.ring.ForceSend(e)
}

// C returns the event channel; it is closed by Close
func (s *Stream) C() <-chan Event {
	return s.ring.C()
}

// Dropped returns how many events were overwritten before being read
func (s *Stream) Dropped() int64 {
	return s.ring.GetMetrics().Overwritten
}

// Close unsubscribes the stream and closes its channel. Idempotent.
func (s *Stream) Close() {
	s.once.Do(func() {
		s.cancel()
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.ring.Close()
	})
}
