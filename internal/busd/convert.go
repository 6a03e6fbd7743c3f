package busd

import (
	"github.com/godbus/dbus/v5"
	"github.com/srg/bluem/internal/dispatch"
	"github.com/srg/bluem/internal/objtree"
)

// fromWire converts a decoded message argument into the value the dispatcher expects
func fromWire(v any) any {
	switch t := v.(type) {
	case dbus.ObjectPath:
		return objtree.Path(t)
	case []dbus.ObjectPath:
		out := make([]objtree.Path, len(t))
		for i, p := range t {
			out[i] = objtree.Path(p)
		}
		return out
	case dbus.Variant:
		return fromWire(t.Value())
	case map[string]dbus.Variant:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = fromWire(val.Value())
		}
		return out
	default:
		return v
	}
}

// toWire converts a dispatcher value into something godbus can marshal
func toWire(v any) any {
	switch t := v.(type) {
	case objtree.Path:
		return dbus.ObjectPath(t)
	case []objtree.Path:
		out := make([]dbus.ObjectPath, len(t))
		for i, p := range t {
			out[i] = dbus.ObjectPath(p)
		}
		return out
	case []objtree.Property:
		return propertiesToWire(t)
	case []objtree.Snapshot:
		return managedObjectsToWire(t)
	case map[string]any:
		out := make(map[string]dbus.Variant, len(t))
		for k, val := range t {
			out[k] = dbus.MakeVariant(toWire(val))
		}
		return out
	default:
		return v
	}
}

// outputsToWire converts handler results, wrapping variant-kind results
func outputsToWire(kinds []dispatch.Arg, out []any) []any {
	wire := make([]any, len(out))
	for i, v := range out {
		if i < len(kinds) && kinds[i].Kind == dispatch.KindVariant {
			wire[i] = dbus.MakeVariant(toWire(v))
			continue
		}
		wire[i] = toWire(v)
	}
	return wire
}

// propertiesToWire builds an a{sv}
func propertiesToWire(props []objtree.Property) map[string]dbus.Variant {
	out := make(map[string]dbus.Variant, len(props))
	for _, p := range props {
		out[p.Name] = dbus.MakeVariant(toWire(p.Value))
	}
	return out
}

// interfacesToWire builds an a{sa{sv}}
func interfacesToWire(ifaces []objtree.Interface) map[string]map[string]dbus.Variant {
	out := make(map[string]map[string]dbus.Variant, len(ifaces))
	for _, iface := range ifaces {
		out[iface.Name] = propertiesToWire(iface.Properties)
	}
	return out
}

// managedObjectsToWire builds an a{oa{sa{sv}}}
func managedObjectsToWire(snaps []objtree.Snapshot) map[dbus.ObjectPath]map[string]map[string]dbus.Variant {
	out := make(map[dbus.ObjectPath]map[string]map[string]dbus.Variant, len(snaps))
	for _, snap := range snaps {
		out[dbus.ObjectPath(snap.Path)] = interfacesToWire(snap.Interfaces)
	}
	return out
}

// prototype returns a zero value whose wire signature matches kind
func prototype(kind dispatch.ArgKind) any {
	switch kind {
	case dispatch.KindString:
		return ""
	case dispatch.KindBool:
		return false
	case dispatch.KindBytes:
		return []byte{}
	case dispatch.KindPath:
		return dbus.ObjectPath("/")
	case dispatch.KindVariant:
		return dbus.Variant{}
	case dispatch.KindOptions, dispatch.KindPropertyMap:
		return map[string]dbus.Variant{}
	case dispatch.KindManagedObjects:
		return map[dbus.ObjectPath]map[string]map[string]dbus.Variant{}
	default:
		return dbus.Variant{}
	}
}

// signature returns the wire signature of kind
func signature(kind dispatch.ArgKind) string {
	return dbus.SignatureOf(prototype(kind)).String()
}
