// Package bluem implements the mock Bluetooth stack: a fixed adapter, an
// admin object that adds devices on demand, and devices that grow GATT
// services and characteristics when connected.
//
// The stack owns one Registry, Table, Broadcaster and Dispatcher for its whole
// lifetime. Every operation, whether it arrives over the bus or through the
// typed helpers below, goes through the dispatcher.
package bluem

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"github.com/srg/bluem/internal/dispatch"
	"github.com/srg/bluem/internal/notify"
	"github.com/srg/bluem/internal/objtree"
)

// Options configures the mock stack
type Options struct {
	AdapterPath   objtree.Path
	AdminPath     objtree.Path
	AddressPrefix AddressPrefix
	DeviceName    string
	RSSI          int16
	// Rand drives address generation; nil seeds a new source.
	Rand *rand.Rand
}

// DefaultOptions returns the stock layout: /org/bluem/hci1, /org/mock, 00:16:3e
func DefaultOptions() Options {
	return Options{
		AdapterPath:   DefaultAdapterPath,
		AdminPath:     DefaultAdminPath,
		AddressPrefix: DefaultAddressPrefix,
		DeviceName:    "bluemock",
		RSSI:          -71,
	}
}

// Stack is the running mock
type Stack struct {
	opts   Options
	rnd    *rand.Rand
	d      *dispatch.Dispatcher
	logger *logrus.Logger
}

// New builds a stack. Nothing is served until Start.
func New(opts Options, logger *logrus.Logger) (*Stack, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if !opts.AdapterPath.Valid() || opts.AdapterPath == objtree.Root {
		return nil, fmt.Errorf("invalid adapter path %q", opts.AdapterPath)
	}
	if !opts.AdminPath.Valid() || opts.AdminPath == objtree.Root {
		return nil, fmt.Errorf("invalid admin path %q", opts.AdminPath)
	}
	if opts.AdminPath == opts.AdapterPath || opts.AdminPath.IsDescendantOf(opts.AdapterPath) {
		return nil, fmt.Errorf("admin path %q must not live under adapter path %q", opts.AdminPath, opts.AdapterPath)
	}
	if opts.DeviceName == "" {
		opts.DeviceName = "bluemock"
	}

	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s := &Stack{
		opts:   opts,
		rnd:    rnd,
		logger: logger,
	}

	table := dispatch.NewTable()
	table.MustDefine(ObjectManagerInterface, managerMembers()...)
	table.MustDefine(AdapterInterface, adapterMembers()...)
	table.MustDefine(AdminInterface, s.adminMembers()...)
	table.MustDefine(DeviceInterface, s.deviceMembers()...)
	table.MustDefine(GattCharacteristicIface, characteristicMembers()...)

	s.d = dispatch.New(objtree.NewRegistry(), table, notify.NewBroadcaster(logger), logger)
	return s, nil
}

// Start runs the dispatcher and registers the root manager, adapter and admin objects
func (s *Stack) Start(ctx context.Context) error {
	s.d.Start(ctx)

	err := s.d.Update(ctx, func(tx *objtree.Tx) error {
		if err := tx.Register(objtree.Root, objtree.Interface{Name: ObjectManagerInterface}); err != nil {
			return err
		}
		if err := tx.Register(s.opts.AdapterPath, s.adapterInterface()); err != nil {
			return err
		}
		return tx.Register(s.opts.AdminPath, objtree.Interface{Name: AdminInterface})
	})
	if err != nil {
		s.d.Stop()
		return fmt.Errorf("failed to register fixed objects: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"adapter": s.opts.AdapterPath,
		"admin":   s.opts.AdminPath,
	}).Info("Mock stack started")
	return nil
}

// Stop shuts the dispatcher down
func (s *Stack) Stop() {
	s.d.Stop()
}

// Options returns the effective options
func (s *Stack) Options() Options { return s.opts }

// Dispatcher returns the dispatcher serving the stack
func (s *Stack) Dispatcher() *dispatch.Dispatcher { return s.d }

// Broadcaster returns the event broadcaster
func (s *Stack) Broadcaster() *notify.Broadcaster { return s.d.Broadcaster() }

// Call forwards a raw call to the dispatcher
func (s *Stack) Call(ctx context.Context, path objtree.Path, iface, member string, args ...any) ([]any, error) {
	return s.d.Call(ctx, path, iface, member, args...)
}

// AddDevice asks the admin object for a new device and returns its path
func (s *Stack) AddDevice(ctx context.Context) (objtree.Path, error) {
	out, err := s.Call(ctx, s.opts.AdminPath, AdminInterface, "AddDevice")
	if err != nil {
		return "", err
	}
	return out[0].(objtree.Path), nil
}

// Connect connects the device at path
func (s *Stack) Connect(ctx context.Context, device objtree.Path) error {
	_, err := s.Call(ctx, device, DeviceInterface, "Connect")
	return err
}

// GetAll returns all properties of iface on path
func (s *Stack) GetAll(ctx context.Context, path objtree.Path, iface string) ([]objtree.Property, error) {
	out, err := s.Call(ctx, path, dispatch.PropertiesInterface, "GetAll", iface)
	if err != nil {
		return nil, err
	}
	return out[0].([]objtree.Property), nil
}

// Get returns one property of iface on path
func (s *Stack) Get(ctx context.Context, path objtree.Path, iface, key string) (any, error) {
	out, err := s.Call(ctx, path, dispatch.PropertiesInterface, "Get", iface, key)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// ReadValue reads a characteristic value
func (s *Stack) ReadValue(ctx context.Context, char objtree.Path) ([]byte, error) {
	out, err := s.Call(ctx, char, GattCharacteristicIface, "ReadValue", map[string]any{})
	if err != nil {
		return nil, err
	}
	return out[0].([]byte), nil
}

// WriteValue replaces a characteristic value
func (s *Stack) WriteValue(ctx context.Context, char objtree.Path, value []byte) error {
	_, err := s.Call(ctx, char, GattCharacteristicIface, "WriteValue", value, map[string]any{})
	return err
}

// StartNotify marks a characteristic as notifying
func (s *Stack) StartNotify(ctx context.Context, char objtree.Path) error {
	_, err := s.Call(ctx, char, GattCharacteristicIface, "StartNotify")
	return err
}

// Children lists the direct children of path
func (s *Stack) Children(ctx context.Context, path objtree.Path) ([]objtree.Path, error) {
	var out []objtree.Path
	err := s.d.View(ctx, func(reg *objtree.Registry, _ *dispatch.Table) error {
		if _, err := reg.Get(path); err != nil {
			return err
		}
		out = reg.Children(path)
		return nil
	})
	return out, err
}
