package testutils

import (
	"sync"

	"github.com/srg/bluem/internal/notify"
	"github.com/srg/bluem/internal/objtree"
)

// EventRecorder is a notify.Subscriber that keeps every event it sees
type EventRecorder struct {
	mu     sync.Mutex
	events []notify.Event
}

// Notify implements notify.Subscriber
func (r *EventRecorder) Notify(e notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events
func (r *EventRecorder) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

// OfKind returns the recorded events of one kind
func (r *EventRecorder) OfKind(kind objtree.MutationKind) []notify.Event {
	var out []notify.Event
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets everything recorded so far
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Summary renders events as JSON-friendly maps for JSONAsserter comparisons
func (r *EventRecorder) Summary() []map[string]any {
	events := r.Events()
	out := make([]map[string]any, 0, len(events))
	for _, e := range events {
		m := map[string]any{
			"seq":  e.Seq,
			"kind": e.Kind.String(),
			"path": e.Path,
		}
		switch e.Kind {
		case objtree.ObjectAdded:
			names := make([]string, 0, len(e.Interfaces))
			for _, iface := range e.Interfaces {
				names = append(names, iface.Name)
			}
			m["interfaces"] = names
		case objtree.PropertiesChanged:
			m["interface"] = e.Interface
			m["changed"] = e.ChangedKeys()
		}
		out = append(out, m)
	}
	return out
}
