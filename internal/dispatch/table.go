package dispatch

import (
	"fmt"
	"sort"

	"github.com/srg/bluem/internal/objtree"
)

// PropertiesInterface is the reserved pseudo-interface answered for every object
const PropertiesInterface = "org.freedesktop.DBus.Properties"

// ArgKind is the wire-neutral type of a member argument or return value
type ArgKind int

const (
	KindString ArgKind = iota
	KindBool
	KindBytes
	KindPath
	KindVariant
	KindOptions        // map[string]any
	KindPropertyMap    // []objtree.Property
	KindManagedObjects // []objtree.Snapshot
)

func (k ArgKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindPath:
		return "path"
	case KindVariant:
		return "variant"
	case KindOptions:
		return "options"
	case KindPropertyMap:
		return "property-map"
	case KindManagedObjects:
		return "managed-objects"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// accepts reports whether v is a valid Go value for the kind
func (k ArgKind) accepts(v any) bool {
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindBytes:
		_, ok := v.([]byte)
		return ok
	case KindPath:
		_, ok := v.(objtree.Path)
		return ok
	case KindVariant:
		return true
	case KindOptions:
		if v == nil {
			return true
		}
		_, ok := v.(map[string]any)
		return ok
	case KindPropertyMap:
		_, ok := v.([]objtree.Property)
		return ok
	case KindManagedObjects:
		_, ok := v.([]objtree.Snapshot)
		return ok
	default:
		return false
	}
}

// Arg names and types one argument or return value
type Arg struct {
	Name string
	Kind ArgKind
}

// Handler implements a member. It reads and writes through c.Tx; returned
// values must match the member's Out kinds.
type Handler func(c *Call) ([]any, error)

// Member is one callable operation of an interface
type Member struct {
	Name    string
	In      []Arg
	Out     []Arg
	Handler Handler
}

// Interface is the method set shared by every object exposing the same interface name
type Interface struct {
	Name    string
	Members map[string]Member
}

// MemberNames returns member names sorted for stable output
func (i *Interface) MemberNames() []string {
	names := make([]string, 0, len(i.Members))
	for name := range i.Members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table maps interface names to their method sets.
// A Table is populated during setup and read-only afterwards.
type Table struct {
	ifaces map[string]*Interface
}

// NewTable creates a table holding the Properties pseudo-interface
func NewTable() *Table {
	t := &Table{ifaces: make(map[string]*Interface)}
	t.MustDefine(PropertiesInterface, propertyMembers()...)
	return t
}

// Define adds an interface. Defining the same interface or member twice is an error.
func (t *Table) Define(name string, members ...Member) error {
	if name == "" {
		return fmt.Errorf("interface name is required")
	}
	if _, exists := t.ifaces[name]; exists {
		return fmt.Errorf("interface %q already defined", name)
	}

	iface := &Interface{Name: name, Members: make(map[string]Member, len(members))}
	for _, m := range members {
		if m.Handler == nil {
			return fmt.Errorf("member %s.%s has no handler", name, m.Name)
		}
		if _, dup := iface.Members[m.Name]; dup {
			return fmt.Errorf("member %s.%s defined twice", name, m.Name)
		}
		iface.Members[m.Name] = m
	}
	t.ifaces[name] = iface
	return nil
}

// MustDefine is Define that panics on error; for static setup only
func (t *Table) MustDefine(name string, members ...Member) {
	if err := t.Define(name, members...); err != nil {
		panic(err)
	}
}

// Interface returns the named interface definition
func (t *Table) Interface(name string) (*Interface, bool) {
	iface, ok := t.ifaces[name]
	return iface, ok
}

// Member resolves iface.member
func (t *Table) Member(iface, member string) (Member, bool) {
	def, ok := t.ifaces[iface]
	if !ok {
		return Member{}, false
	}
	m, ok := def.Members[member]
	return m, ok
}

// Names returns all defined interface names, sorted
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.ifaces))
	for name := range t.ifaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkArgs(path objtree.Path, iface string, m Member, args []any) error {
	if len(args) != len(m.In) {
		return &objtree.Fault{
			Kind: objtree.InvalidArgs, Path: path, Interface: iface, Member: m.Name,
			Msg: fmt.Sprintf("expected %d arguments, got %d", len(m.In), len(args)),
		}
	}
	for i, a := range m.In {
		if !a.Kind.accepts(args[i]) {
			return &objtree.Fault{
				Kind: objtree.InvalidArgs, Path: path, Interface: iface, Member: m.Name,
				Msg: fmt.Sprintf("argument %q must be %s, got %T", a.Name, a.Kind, args[i]),
			}
		}
	}
	return nil
}
