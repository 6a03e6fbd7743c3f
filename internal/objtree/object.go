package objtree

import (
	"encoding/json"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Property is a single named property value
type Property struct {
	Name  string
	Value any
}

// Interface is a named, ordered set of properties
type Interface struct {
	Name       string
	Properties []Property
}

// NewInterface builds an Interface from alternating name/value pairs.
// It panics on an odd argument count or a non-string name, which is a programming error.
func NewInterface(name string, kv ...any) Interface {
	if len(kv)%2 != 0 {
		panic("objtree: NewInterface needs name/value pairs")
	}
	props := make([]Property, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic("objtree: property name must be a string")
		}
		props = append(props, Property{Name: key, Value: kv[i+1]})
	}
	return Interface{Name: name, Properties: props}
}

// Lookup returns the value of the named property
func (i Interface) Lookup(name string) (any, bool) {
	for _, p := range i.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Map returns the properties keyed by name
func (i Interface) Map() map[string]any {
	m := make(map[string]any, len(i.Properties))
	for _, p := range i.Properties {
		m[p.Name] = p.Value
	}
	return m
}

// Snapshot is a detached copy of an object's interfaces and properties
type Snapshot struct {
	Path       Path
	Interfaces []Interface
}

// Interface returns the named interface from the snapshot
func (s Snapshot) Interface(name string) (Interface, bool) {
	for _, iface := range s.Interfaces {
		if iface.Name == name {
			return iface, true
		}
	}
	return Interface{}, false
}

// MarshalJSON renders the snapshot as {"path": ..., "interfaces": {iface: {key: value}}}
func (s Snapshot) MarshalJSON() ([]byte, error) {
	ifaces := make(map[string]map[string]any, len(s.Interfaces))
	for _, iface := range s.Interfaces {
		ifaces[iface.Name] = iface.Map()
	}
	return json.Marshal(struct {
		Path       Path                      `json:"path"`
		Interfaces map[string]map[string]any `json:"interfaces"`
	}{s.Path, ifaces})
}

type propertySet = orderedmap.OrderedMap[string, any]

// Object is a live mock object. Its path never changes after registration.
// Objects are only mutated through a Registry or Tx.
type Object struct {
	path   Path
	ifaces *orderedmap.OrderedMap[string, *propertySet]
}

func newObject(path Path, ifaces []Interface) *Object {
	o := &Object{
		path:   path,
		ifaces: orderedmap.New[string, *propertySet](),
	}
	for _, iface := range ifaces {
		props, ok := o.ifaces.Get(iface.Name)
		if !ok {
			props = orderedmap.New[string, any]()
			o.ifaces.Set(iface.Name, props)
		}
		for _, p := range iface.Properties {
			props.Set(p.Name, copyValue(p.Value))
		}
	}
	return o
}

// Path returns the object's path
func (o *Object) Path() Path {
	return o.path
}

// HasInterface reports whether the object exposes iface
func (o *Object) HasInterface(iface string) bool {
	_, ok := o.ifaces.Get(iface)
	return ok
}

// InterfaceNames returns the exposed interfaces in registration order
func (o *Object) InterfaceNames() []string {
	names := make([]string, 0, o.ifaces.Len())
	for pair := o.ifaces.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Property returns a copy of one property value
func (o *Object) Property(iface, key string) (any, error) {
	props, ok := o.ifaces.Get(iface)
	if !ok {
		return nil, errUnknownInterface(o.path, iface)
	}
	v, ok := props.Get(key)
	if !ok {
		return nil, errUnknownProperty(o.path, iface, key)
	}
	return copyValue(v), nil
}

// Properties returns a copy of all properties of iface, in insertion order
func (o *Object) Properties(iface string) ([]Property, error) {
	props, ok := o.ifaces.Get(iface)
	if !ok {
		return nil, errUnknownInterface(o.path, iface)
	}
	return copyProperties(props), nil
}

// Snapshot returns a detached copy of the whole object
func (o *Object) Snapshot() Snapshot {
	s := Snapshot{Path: o.path, Interfaces: make([]Interface, 0, o.ifaces.Len())}
	for pair := o.ifaces.Oldest(); pair != nil; pair = pair.Next() {
		s.Interfaces = append(s.Interfaces, Interface{Name: pair.Key, Properties: copyProperties(pair.Value)})
	}
	return s
}

func (o *Object) set(iface, key string, value any) error {
	props, ok := o.ifaces.Get(iface)
	if !ok {
		return errUnknownInterface(o.path, iface)
	}
	props.Set(key, copyValue(value))
	return nil
}

func (o *Object) clone() *Object {
	return newObject(o.path, o.Snapshot().Interfaces)
}

func copyProperties(props *propertySet) []Property {
	out := make([]Property, 0, props.Len())
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Property{Name: pair.Key, Value: copyValue(pair.Value)})
	}
	return out
}

// copyValue detaches slice values so callers never alias tree state
func copyValue(v any) any {
	switch t := v.(type) {
	case []byte:
		if t == nil {
			return []byte{}
		}
		return slices.Clone(t)
	case []string:
		if t == nil {
			return []string{}
		}
		return slices.Clone(t)
	case []Path:
		if t == nil {
			return []Path{}
		}
		return slices.Clone(t)
	default:
		return v
	}
}
