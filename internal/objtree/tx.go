package objtree

import (
	"errors"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MutationKind identifies what a committed mutation did
type MutationKind int

const (
	ObjectAdded MutationKind = iota
	PropertiesChanged
)

func (k MutationKind) String() string {
	switch k {
	case ObjectAdded:
		return "ObjectAdded"
	case PropertiesChanged:
		return "PropertiesChanged"
	default:
		return "Unknown"
	}
}

// Mutation is one journal entry produced by a committed transaction.
// ObjectAdded carries the full initial snapshot in Interfaces.
// PropertiesChanged carries the changed properties of one Interface, in write order.
type Mutation struct {
	Kind       MutationKind
	Path       Path
	Interfaces []Interface
	Interface  string
	Changed    []Property
}

// ErrTxDone is returned when a finished transaction is used again
var ErrTxDone = errors.New("transaction already committed or rolled back")

type changeKey struct {
	path  Path
	iface string
}

// Tx stages registrations and property writes against a Registry.
// Reads through a Tx observe its own staged state. Nothing reaches the
// registry until Commit; Rollback discards everything.
type Tx struct {
	reg     *Registry
	added   *orderedmap.OrderedMap[Path, *Object]
	dirty   map[Path]*Object
	journal []Mutation
	changes map[changeKey]int
	done    bool
}

func newTx(reg *Registry) *Tx {
	return &Tx{
		reg:     reg,
		added:   orderedmap.New[Path, *Object](),
		dirty:   make(map[Path]*Object),
		changes: make(map[changeKey]int),
	}
}

// Allocate returns parent/suffix if neither the registry nor this Tx holds it
func (tx *Tx) Allocate(parent Path, suffix string) (Path, error) {
	if tx.done {
		return "", ErrTxDone
	}
	path := parent.Join(suffix)
	if !path.Valid() {
		return "", errInvalidPath(path)
	}
	if tx.has(path) {
		return "", errPathConflict(path)
	}
	return path, nil
}

// Register stages a new object and journals its ObjectAdded snapshot
func (tx *Tx) Register(path Path, ifaces ...Interface) error {
	if tx.done {
		return ErrTxDone
	}
	if !path.Valid() {
		return errInvalidPath(path)
	}
	if tx.has(path) {
		return errPathConflict(path)
	}
	obj := newObject(path, ifaces)
	tx.added.Set(path, obj)
	tx.journal = append(tx.journal, Mutation{
		Kind:       ObjectAdded,
		Path:       path,
		Interfaces: obj.Snapshot().Interfaces,
	})
	return nil
}

// Get returns the object at path as seen by this transaction
func (tx *Tx) Get(path Path) (*Object, error) {
	if obj, ok := tx.added.Get(path); ok {
		return obj, nil
	}
	if obj, ok := tx.dirty[path]; ok {
		return obj, nil
	}
	return tx.reg.Get(path)
}

// SetProperty stages a property write. Writes to the same path and interface
// within one Tx merge into a single PropertiesChanged entry at the first write's position.
func (tx *Tx) SetProperty(path Path, iface, key string, value any) error {
	if tx.done {
		return ErrTxDone
	}
	obj, err := tx.writable(path)
	if err != nil {
		return err
	}
	if err := obj.set(iface, key, value); err != nil {
		return err
	}

	ck := changeKey{path: path, iface: iface}
	idx, ok := tx.changes[ck]
	if !ok {
		tx.journal = append(tx.journal, Mutation{Kind: PropertiesChanged, Path: path, Interface: iface})
		idx = len(tx.journal) - 1
		tx.changes[ck] = idx
	}

	m := &tx.journal[idx]
	for i := range m.Changed {
		if m.Changed[i].Name == key {
			m.Changed[i].Value = copyValue(value)
			return nil
		}
	}
	m.Changed = append(m.Changed, Property{Name: key, Value: copyValue(value)})
	return nil
}

// Children returns direct children of path, committed first then staged
func (tx *Tx) Children(path Path) []Path {
	out := tx.reg.Children(path)
	for pair := tx.added.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key.IsChildOf(path) {
			out = append(out, pair.Key)
		}
	}
	return out
}

// Snapshots returns every object as seen by this transaction
func (tx *Tx) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, tx.reg.Len()+tx.added.Len())
	for _, path := range tx.reg.Paths() {
		obj, _ := tx.Get(path)
		out = append(out, obj.Snapshot())
	}
	for pair := tx.added.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Snapshot())
	}
	return out
}

// Commit applies all staged state to the registry and returns the mutation journal
func (tx *Tx) Commit() ([]Mutation, error) {
	if tx.done {
		return nil, ErrTxDone
	}
	tx.done = true

	for path, obj := range tx.dirty {
		tx.reg.objects.Set(path, obj)
	}
	for pair := tx.added.Oldest(); pair != nil; pair = pair.Next() {
		tx.reg.objects.Set(pair.Key, pair.Value)
	}

	journal := tx.journal
	tx.journal = nil
	return journal, nil
}

// Rollback discards all staged state. It is safe to call after Commit.
func (tx *Tx) Rollback() {
	tx.done = true
	tx.added = orderedmap.New[Path, *Object]()
	tx.dirty = map[Path]*Object{}
	tx.journal = nil
}

func (tx *Tx) has(path Path) bool {
	if _, ok := tx.added.Get(path); ok {
		return true
	}
	return tx.reg.has(path)
}

// writable returns a staged copy of path, cloning a committed object on first write
func (tx *Tx) writable(path Path) (*Object, error) {
	if obj, ok := tx.added.Get(path); ok {
		return obj, nil
	}
	if obj, ok := tx.dirty[path]; ok {
		return obj, nil
	}
	committed, err := tx.reg.Get(path)
	if err != nil {
		return nil, err
	}
	obj := committed.clone()
	tx.dirty[path] = obj
	return obj, nil
}
