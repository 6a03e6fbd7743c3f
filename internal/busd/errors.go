package busd

import (
	"errors"

	"github.com/godbus/dbus/v5"
	"github.com/srg/bluem/internal/dispatch"
	"github.com/srg/bluem/internal/objtree"
)

// Error names returned to bus callers
const (
	ErrNameUnknownObject    = "org.freedesktop.DBus.Error.UnknownObject"
	ErrNameUnknownInterface = "org.freedesktop.DBus.Error.UnknownInterface"
	ErrNameUnknownMethod    = "org.freedesktop.DBus.Error.UnknownMethod"
	ErrNameUnknownProperty  = "org.freedesktop.DBus.Error.UnknownProperty"
	ErrNameInvalidArgs      = "org.freedesktop.DBus.Error.InvalidArgs"
	ErrNameAlreadyExists    = "org.bluem.Error.AlreadyExists"
)

// busError maps a dispatcher error onto a bus error. calledIface is the
// interface named in the message, which tells property access apart from
// method calls.
func busError(err error, calledIface string) *dbus.Error {
	var f *objtree.Fault
	if !errors.As(err, &f) {
		// dispatcher stopped or context done
		return dbus.MakeFailedError(err)
	}

	name := ErrNameInvalidArgs
	switch f.Kind {
	case objtree.NotFound:
		name = ErrNameUnknownObject
	case objtree.UnknownInterface:
		name = ErrNameUnknownInterface
	case objtree.UnknownMember:
		name = ErrNameUnknownMethod
		if calledIface == dispatch.PropertiesInterface && f.Interface != dispatch.PropertiesInterface {
			name = ErrNameUnknownProperty
		}
	case objtree.PathConflict:
		name = ErrNameAlreadyExists
	}
	return dbus.NewError(name, []any{f.Error()})
}
