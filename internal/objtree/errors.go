package objtree

import (
	"errors"
	"fmt"
	"strings"
)

// FaultKind classifies a failed registry or dispatch operation
type FaultKind string

const (
	NotFound         FaultKind = "not_found"
	UnknownInterface FaultKind = "unknown_interface"
	UnknownMember    FaultKind = "unknown_member"
	PathConflict     FaultKind = "path_conflict"
	InvalidArgs      FaultKind = "invalid_args"
)

// Fault is the typed error returned to callers of the object tree.
// Faults are recoverable: they describe a bad request, never a broken tree.
type Fault struct {
	Kind      FaultKind
	Path      Path
	Interface string
	Member    string
	Msg       string
}

// Error implements the error interface
func (e *Fault) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	b.WriteString(string(e.Kind))

	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path %q", e.Path))
	}
	if e.Interface != "" {
		parts = append(parts, fmt.Sprintf("interface %q", e.Interface))
	}
	if e.Member != "" {
		parts = append(parts, fmt.Sprintf("member %q", e.Member))
	}
	if len(parts) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	return b.String()
}

// Is allows errors.Is to compare Fault values by Kind
func (e *Fault) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Fault)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Predefined sentinel faults, compared by kind
var (
	ErrNotFound         = &Fault{Kind: NotFound}
	ErrUnknownInterface = &Fault{Kind: UnknownInterface}
	ErrUnknownMember    = &Fault{Kind: UnknownMember}
	ErrPathConflict     = &Fault{Kind: PathConflict}
	ErrInvalidArgs      = &Fault{Kind: InvalidArgs}
)

// IsFault reports whether err is a Fault of the given kind
func IsFault(err error, kind FaultKind) bool {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}

// KindOf returns the fault kind carried by err, or "" when err is not a Fault
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

func errNotFound(path Path) error {
	return &Fault{Kind: NotFound, Path: path, Msg: "no such object"}
}

func errUnknownInterface(path Path, iface string) error {
	return &Fault{Kind: UnknownInterface, Path: path, Interface: iface, Msg: "object does not expose interface"}
}

func errUnknownProperty(path Path, iface, key string) error {
	return &Fault{Kind: UnknownMember, Path: path, Interface: iface, Member: key, Msg: "no such property"}
}

func errPathConflict(path Path) error {
	return &Fault{Kind: PathConflict, Path: path, Msg: "path already registered"}
}

func errInvalidPath(path Path) error {
	return &Fault{Kind: InvalidArgs, Path: path, Msg: "malformed object path"}
}
