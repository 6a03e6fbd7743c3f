package objtree

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Registry holds every live object keyed by path, in registration order.
//
// A Registry is not safe for concurrent use. All access goes through a single
// dispatcher, which serializes calls and owns the registry for the process lifetime.
type Registry struct {
	objects *orderedmap.OrderedMap[Path, *Object]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{objects: orderedmap.New[Path, *Object]()}
}

// Allocate returns the child path parent/suffix, failing if it is already registered.
// The parent is not required to exist: parentage is purely positional.
func (r *Registry) Allocate(parent Path, suffix string) (Path, error) {
	path := parent.Join(suffix)
	if !path.Valid() {
		return "", errInvalidPath(path)
	}
	if r.has(path) {
		return "", errPathConflict(path)
	}
	return path, nil
}

// Register inserts a new object at path with its initial interfaces
func (r *Registry) Register(path Path, ifaces ...Interface) error {
	if !path.Valid() {
		return errInvalidPath(path)
	}
	if r.has(path) {
		return errPathConflict(path)
	}
	r.objects.Set(path, newObject(path, ifaces))
	return nil
}

// Get returns the object at path
func (r *Registry) Get(path Path) (*Object, error) {
	obj, ok := r.objects.Get(path)
	if !ok {
		return nil, errNotFound(path)
	}
	return obj, nil
}

// SetProperty mutates a property of an existing object in place
func (r *Registry) SetProperty(path Path, iface, key string, value any) error {
	obj, err := r.Get(path)
	if err != nil {
		return err
	}
	return obj.set(iface, key, value)
}

// Children returns the direct children of path in registration order
func (r *Registry) Children(path Path) []Path {
	var out []Path
	for pair := r.objects.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key.IsChildOf(path) {
			out = append(out, pair.Key)
		}
	}
	return out
}

// Descendants returns every registered path strictly below path
func (r *Registry) Descendants(path Path) []Path {
	var out []Path
	for pair := r.objects.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key.IsDescendantOf(path) {
			out = append(out, pair.Key)
		}
	}
	return out
}

// Paths returns all registered paths in registration order
func (r *Registry) Paths() []Path {
	out := make([]Path, 0, r.objects.Len())
	for pair := r.objects.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Snapshots returns a detached copy of every object in registration order
func (r *Registry) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, r.objects.Len())
	for pair := r.objects.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Snapshot())
	}
	return out
}

// Len returns the number of live objects
func (r *Registry) Len() int {
	return r.objects.Len()
}

// Begin starts a transaction over the registry
func (r *Registry) Begin() *Tx {
	return newTx(r)
}

func (r *Registry) has(path Path) bool {
	_, ok := r.objects.Get(path)
	return ok
}
