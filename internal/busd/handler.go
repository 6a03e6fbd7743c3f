// Package busd exposes a mock stack on a message bus through godbus.
//
// Every method call, including property access, is forwarded to the stack's
// dispatcher; the bus side only converts values and maps faults to error
// names. Committed events are turned into InterfacesAdded and
// PropertiesChanged signals by SignalEmitter.
package busd

import (
	"context"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
	"github.com/srg/bluem/internal/dispatch"
	"github.com/srg/bluem/internal/objtree"
)

// IntrospectableInterface is answered by the binding itself
const IntrospectableInterface = "org.freedesktop.DBus.Introspectable"

// Handler implements dbus.Handler on top of a dispatcher
type Handler struct {
	ctx    context.Context
	d      *dispatch.Dispatcher
	logger *logrus.Logger
}

var _ dbus.Handler = (*Handler)(nil)

// NewHandler creates a handler. ctx bounds every forwarded call.
func NewHandler(ctx context.Context, d *dispatch.Dispatcher, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{ctx: ctx, d: d, logger: logger}
}

// LookupObject implements dbus.Handler. Existence is decided by the
// dispatcher, so every well-formed path resolves here.
func (h *Handler) LookupObject(path dbus.ObjectPath) (dbus.ServerObject, bool) {
	if !path.IsValid() {
		return nil, false
	}
	return &serverObject{h: h, path: objtree.Path(path)}, true
}

type serverObject struct {
	h    *Handler
	path objtree.Path
}

func (o *serverObject) LookupInterface(name string) (dbus.Interface, bool) {
	return &serverInterface{obj: o, name: name}, true
}

type serverInterface struct {
	obj  *serverObject
	name string
}

func (i *serverInterface) LookupMethod(name string) (dbus.Method, bool) {
	if i.name == IntrospectableInterface {
		if name != "Introspect" {
			return nil, false
		}
		return &introspectMethod{obj: i.obj}, true
	}
	def, _ := i.obj.h.d.Table().Member(i.name, name)
	return &serverMethod{iface: i, name: name, def: def}, true
}

// serverMethod forwards one call to the dispatcher. def is the zero Member
// when the table has no such member; the dispatcher reports that.
type serverMethod struct {
	iface *serverInterface
	name  string
	def   dispatch.Member
}

var (
	_ dbus.Method          = (*serverMethod)(nil)
	_ dbus.ArgumentDecoder = (*serverMethod)(nil)
)

// DecodeArguments takes the message body as is; argument checking belongs to the dispatcher
func (m *serverMethod) DecodeArguments(_ *dbus.Conn, _ string, _ *dbus.Message, args []any) ([]any, error) {
	in := make([]any, len(args))
	for i, a := range args {
		in[i] = fromWire(a)
	}
	return in, nil
}

func (m *serverMethod) Call(args ...any) ([]any, error) {
	h := m.iface.obj.h
	out, err := h.d.Call(h.ctx, m.iface.obj.path, m.iface.name, m.name, args...)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"path":      m.iface.obj.path,
			"interface": m.iface.name,
			"member":    m.name,
		}).WithError(err).Debug("Bus call failed")
		return nil, busError(err, m.iface.name)
	}
	return outputsToWire(m.def.Out, out), nil
}

func (m *serverMethod) NumArguments() int { return len(m.def.In) }

func (m *serverMethod) NumReturns() int { return len(m.def.Out) }

func (m *serverMethod) ArgumentValue(position int) any { return prototype(m.def.In[position].Kind) }

func (m *serverMethod) ReturnValue(position int) any { return prototype(m.def.Out[position].Kind) }

type introspectMethod struct {
	obj *serverObject
}

var (
	_ dbus.Method          = (*introspectMethod)(nil)
	_ dbus.ArgumentDecoder = (*introspectMethod)(nil)
)

func (m *introspectMethod) DecodeArguments(_ *dbus.Conn, _ string, _ *dbus.Message, args []any) ([]any, error) {
	if len(args) != 0 {
		return nil, dbus.NewError(ErrNameInvalidArgs, []any{"Introspect takes no arguments"})
	}
	return nil, nil
}

func (m *introspectMethod) Call(...any) ([]any, error) {
	h := m.obj.h
	data, err := h.Introspect(h.ctx, m.obj.path)
	if err != nil {
		return nil, busError(err, IntrospectableInterface)
	}
	return []any{data}, nil
}

func (m *introspectMethod) NumArguments() int { return 0 }

func (m *introspectMethod) NumReturns() int { return 1 }

func (m *introspectMethod) ArgumentValue(int) any { return nil }

func (m *introspectMethod) ReturnValue(int) any { return "" }
