package bluem

import (
	"github.com/sirupsen/logrus"
	"github.com/srg/bluem/internal/dispatch"
	"github.com/srg/bluem/internal/objtree"
)

func (s *Stack) deviceInterface(addr Address, ordinal int) objtree.Interface {
	name := s.deviceName(ordinal)
	return objtree.NewInterface(DeviceInterface,
		"Adapter", s.opts.AdapterPath,
		"Address", addr.String(),
		"Alias", name,
		"Connected", false,
		"Name", name,
		"RSSI", s.opts.RSSI,
		"UUIDs", []string{},
	)
}

func (s *Stack) deviceMembers() []dispatch.Member {
	return []dispatch.Member{
		{Name: "Connect", Handler: s.connect},
	}
}

// connect drives Disconnected -> Connected. The services and characteristics
// are registered first; the device's own Connected/UUIDs change is written
// last so its PropertiesChanged follows every ObjectAdded.
func (s *Stack) connect(c *dispatch.Call) ([]any, error) {
	obj, err := c.Tx.Get(c.Path)
	if err != nil {
		return nil, err
	}
	state, err := stateOf(obj)
	if err != nil {
		return nil, err
	}

	next, ok := state.OnConnect()
	if !ok {
		c.Logger.WithField("state", state).Info("Device already connected, ignoring Connect")
		return nil, nil
	}

	c.Logger.Info("Connecting ...")

	uuids := make([]string, 0, len(gattProfile))
	for _, svc := range gattProfile {
		svcPath, err := registerService(c.Tx, c.Path, svc)
		if err != nil {
			return nil, err
		}
		uuids = append(uuids, svc.UUID.String())
		c.Logger.WithFields(logrus.Fields{
			"service": svcPath,
			"uuid":    svc.UUID,
		}).Debug("Service registered")
	}

	if err := c.Tx.SetProperty(c.Path, DeviceInterface, "Connected", next == Connected); err != nil {
		return nil, err
	}
	if err := c.Tx.SetProperty(c.Path, DeviceInterface, "UUIDs", uuids); err != nil {
		return nil, err
	}
	return nil, nil
}
