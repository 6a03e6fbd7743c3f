package busd

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/srg/bluem/internal/bluem"
	"github.com/srg/bluem/internal/dispatch"
	"github.com/srg/bluem/internal/objtree"
)

// Client talks to a running mock over the bus
type Client struct {
	conn *dbus.Conn
	dest string
}

// NewClient wraps conn for calls to the mock owning dest
func NewClient(conn *dbus.Conn, dest string) *Client {
	return &Client{conn: conn, dest: dest}
}

func (c *Client) object(path objtree.Path) dbus.BusObject {
	return c.conn.Object(c.dest, dbus.ObjectPath(path))
}

// AddDevice calls AddDevice on the admin object
func (c *Client) AddDevice(ctx context.Context, admin objtree.Path) (objtree.Path, error) {
	var device dbus.ObjectPath
	err := c.object(admin).CallWithContext(ctx, bluem.AdminInterface+".AddDevice", 0).Store(&device)
	if err != nil {
		return "", fmt.Errorf("AddDevice on %s failed: %w", admin, err)
	}
	return objtree.Path(device), nil
}

// Connect calls Connect on a device
func (c *Client) Connect(ctx context.Context, device objtree.Path) error {
	if err := c.object(device).CallWithContext(ctx, bluem.DeviceInterface+".Connect", 0).Err; err != nil {
		return fmt.Errorf("connect %s failed: %w", device, err)
	}
	return nil
}

// GetAll returns every property of iface on path
func (c *Client) GetAll(ctx context.Context, path objtree.Path, iface string) (map[string]dbus.Variant, error) {
	var props map[string]dbus.Variant
	err := c.object(path).CallWithContext(ctx, dispatch.PropertiesInterface+".GetAll", 0, iface).Store(&props)
	if err != nil {
		return nil, fmt.Errorf("GetAll %s on %s failed: %w", iface, path, err)
	}
	return props, nil
}

// Subscribe delivers the mock's InterfacesAdded and PropertiesChanged
// signals to ch until the returned function is called.
func (c *Client) Subscribe(ch chan<- *dbus.Signal) (func(), error) {
	matches := [][]dbus.MatchOption{
		{dbus.WithMatchSender(c.dest), dbus.WithMatchInterface(objectManagerInterface), dbus.WithMatchMember("InterfacesAdded")},
		{dbus.WithMatchSender(c.dest), dbus.WithMatchInterface(dispatch.PropertiesInterface), dbus.WithMatchMember("PropertiesChanged")},
	}
	for i, m := range matches {
		if err := c.conn.AddMatchSignal(m...); err != nil {
			for _, added := range matches[:i] {
				_ = c.conn.RemoveMatchSignal(added...)
			}
			return nil, fmt.Errorf("failed to add signal match: %w", err)
		}
	}
	c.conn.Signal(ch)

	return func() {
		c.conn.RemoveSignal(ch)
		for _, m := range matches {
			_ = c.conn.RemoveMatchSignal(m...)
		}
	}, nil
}
