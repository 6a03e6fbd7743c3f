// Package dispatch routes calls addressed by (path, interface, member) to
// handlers, one call at a time.
//
// Every call runs inside an objtree.Tx. A handler that returns nil commits its
// writes and allocations and the resulting events are published before the
// next call is served; a handler that fails commits nothing.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/srg/bluem/internal/groutine"
	"github.com/srg/bluem/internal/notify"
	"github.com/srg/bluem/internal/objtree"
)

var (
	// ErrStopped is returned by calls made after the dispatcher stopped
	ErrStopped = errors.New("dispatcher stopped")
	// ErrNotStarted is returned by calls made before Start
	ErrNotStarted = errors.New("dispatcher not started")
)

// Call carries one in-flight invocation to its handler
type Call struct {
	Path      objtree.Path
	Interface string
	Member    string
	Args      []any
	Tx        *objtree.Tx
	Logger    *logrus.Entry
}

type request struct {
	run  func()
	done chan struct{}
}

// Dispatcher owns the registry and serves calls from a single queue
type Dispatcher struct {
	reg    *objtree.Registry
	table  *Table
	bcast  *notify.Broadcaster
	logger *logrus.Logger

	reqs     chan *request
	stop     chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	done     <-chan struct{}
}

// New creates a dispatcher. Nil collaborators are replaced with empty ones.
func New(reg *objtree.Registry, table *Table, bcast *notify.Broadcaster, logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.New()
	}
	if reg == nil {
		reg = objtree.NewRegistry()
	}
	if table == nil {
		table = NewTable()
	}
	if bcast == nil {
		bcast = notify.NewBroadcaster(logger)
	}
	return &Dispatcher{
		reg:    reg,
		table:  table,
		bcast:  bcast,
		logger: logger,
		reqs:   make(chan *request),
		stop:   make(chan struct{}),
	}
}

// Table returns the dispatch table
func (d *Dispatcher) Table() *Table { return d.table }

// Broadcaster returns the event broadcaster
func (d *Dispatcher) Broadcaster() *notify.Broadcaster { return d.bcast }

// Start launches the dispatcher goroutine. It serves until ctx is done or Stop is called.
// Calling Start more than once has no effect.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done != nil {
		return
	}
	d.done = groutine.Go(ctx, "dispatcher", d.serve)
	d.logger.Debug("Dispatcher started")
}

// Stop ends the dispatcher goroutine and waits for it to exit
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
	if done := d.doneChan(); done != nil {
		<-done
	}
}

// Done is closed once the dispatcher goroutine has exited
func (d *Dispatcher) Done() <-chan struct{} {
	return d.doneChan()
}

func (d *Dispatcher) doneChan() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done
}

func (d *Dispatcher) serve(ctx context.Context) {
	defer d.logger.Debug("Dispatcher stopped")
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stop:
			return
		case req := <-d.reqs:
			req.run()
			close(req.done)
		}
	}
}

// submit runs fn on the dispatcher goroutine. Once fn is dequeued it runs to
// completion; ctx only bounds the wait.
func (d *Dispatcher) submit(ctx context.Context, fn func()) error {
	done := d.doneChan()
	if done == nil {
		return ErrNotStarted
	}

	req := &request{run: fn, done: make(chan struct{})}
	select {
	case d.reqs <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return ErrStopped
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call invokes iface.member on the object at path
func (d *Dispatcher) Call(ctx context.Context, path objtree.Path, iface, member string, args ...any) ([]any, error) {
	var (
		out     []any
		callErr error
	)
	if err := d.submit(ctx, func() {
		out, callErr = d.invoke(path, iface, member, args)
	}); err != nil {
		return nil, err
	}
	return out, callErr
}

// Update runs fn in a transaction on the dispatcher goroutine, committing and
// publishing when fn returns nil. Used to seed fixed objects at startup.
func (d *Dispatcher) Update(ctx context.Context, fn func(tx *objtree.Tx) error) error {
	var updateErr error
	if err := d.submit(ctx, func() {
		tx := d.reg.Begin()
		if err := fn(tx); err != nil {
			tx.Rollback()
			updateErr = err
			return
		}
		d.commit(tx)
	}); err != nil {
		return err
	}
	return updateErr
}

// View runs fn with read access to the registry and table on the dispatcher goroutine.
// fn must not retain the registry.
func (d *Dispatcher) View(ctx context.Context, fn func(reg *objtree.Registry, table *Table) error) error {
	var viewErr error
	if err := d.submit(ctx, func() {
		viewErr = fn(d.reg, d.table)
	}); err != nil {
		return err
	}
	return viewErr
}

func (d *Dispatcher) invoke(path objtree.Path, iface, member string, args []any) (out []any, err error) {
	log := d.logger.WithFields(logrus.Fields{
		"path":      path,
		"interface": iface,
		"member":    member,
	})

	tx := d.reg.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.WithField("panic", r).Error("Handler panicked")
			out, err = nil, &objtree.Fault{
				Kind: objtree.InvalidArgs, Path: path, Interface: iface, Member: member,
				Msg: fmt.Sprintf("handler failed: %v", r),
			}
		}
	}()

	out, err = d.route(tx, log, path, iface, member, args)
	if err != nil {
		tx.Rollback()
		log.WithError(err).Debug("Call failed")
		return nil, asFault(err, path, iface, member)
	}

	d.commit(tx)
	log.Debug("Call completed")
	return out, nil
}

func (d *Dispatcher) route(tx *objtree.Tx, log *logrus.Entry, path objtree.Path, iface, member string, args []any) ([]any, error) {
	obj, err := tx.Get(path)
	if err != nil {
		return nil, err
	}

	if iface != PropertiesInterface && !obj.HasInterface(iface) {
		return nil, &objtree.Fault{Kind: objtree.UnknownInterface, Path: path, Interface: iface, Msg: "object does not expose interface"}
	}

	m, ok := d.table.Member(iface, member)
	if !ok {
		return nil, &objtree.Fault{Kind: objtree.UnknownMember, Path: path, Interface: iface, Member: member, Msg: "no such method"}
	}

	if err := checkArgs(path, iface, m, args); err != nil {
		return nil, err
	}

	return m.Handler(&Call{
		Path:      path,
		Interface: iface,
		Member:    member,
		Args:      args,
		Tx:        tx,
		Logger:    log,
	})
}

func (d *Dispatcher) commit(tx *objtree.Tx) {
	journal, err := tx.Commit()
	if err != nil {
		// only reachable if a handler finished the Tx itself
		d.logger.WithError(err).Error("Commit failed")
		return
	}
	d.bcast.Publish(journal...)
}

// asFault keeps faults as they are and reports any other handler error as a caller error
func asFault(err error, path objtree.Path, iface, member string) error {
	var f *objtree.Fault
	if errors.As(err, &f) {
		return err
	}
	return &objtree.Fault{Kind: objtree.InvalidArgs, Path: path, Interface: iface, Member: member, Msg: err.Error()}
}
