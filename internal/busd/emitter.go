package busd

import (
	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
	"github.com/srg/bluem/internal/dispatch"
	"github.com/srg/bluem/internal/notify"
	"github.com/srg/bluem/internal/objtree"
)

// Signal member names
const (
	InterfacesAddedSignal   = objectManagerInterface + ".InterfacesAdded"
	PropertiesChangedSignal = dispatch.PropertiesInterface + ".PropertiesChanged"
)

// Emitter sends signals; *dbus.Conn satisfies it
type Emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...any) error
}

// SignalEmitter is a notify.Subscriber that turns committed events into
// bus signals. It runs on the dispatcher goroutine, in event order.
type SignalEmitter struct {
	bus     Emitter
	manager objtree.Path
	logger  *logrus.Logger
}

var _ notify.Subscriber = (*SignalEmitter)(nil)

// NewSignalEmitter emits InterfacesAdded from manager and PropertiesChanged from each object
func NewSignalEmitter(bus Emitter, manager objtree.Path, logger *logrus.Logger) *SignalEmitter {
	if logger == nil {
		logger = logrus.New()
	}
	return &SignalEmitter{bus: bus, manager: manager, logger: logger}
}

// Notify implements notify.Subscriber
func (e *SignalEmitter) Notify(ev notify.Event) {
	var err error
	switch ev.Kind {
	case objtree.ObjectAdded:
		err = e.bus.Emit(dbus.ObjectPath(e.manager), InterfacesAddedSignal,
			dbus.ObjectPath(ev.Path), interfacesToWire(ev.Interfaces))
	case objtree.PropertiesChanged:
		err = e.bus.Emit(dbus.ObjectPath(ev.Path), PropertiesChangedSignal,
			ev.Interface, propertiesToWire(ev.Changed), []string{})
	default:
		return
	}
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"seq":  ev.Seq,
			"kind": ev.Kind,
			"path": ev.Path,
		}).WithError(err).Warn("Failed to emit signal")
	}
}
