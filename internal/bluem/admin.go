package bluem

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/srg/bluem/internal/dispatch"
	"github.com/srg/bluem/internal/objtree"
)

// maxAddressAttempts bounds how many random addresses AddDevice tries before
// reporting the path conflict.
const maxAddressAttempts = 8

func (s *Stack) adminMembers() []dispatch.Member {
	return []dispatch.Member{
		{
			Name:    "AddDevice",
			Out:     []dispatch.Arg{{Name: "device", Kind: dispatch.KindPath}},
			Handler: s.addDevice,
		},
	}
}

func (s *Stack) addDevice(c *dispatch.Call) ([]any, error) {
	// devices are the only children of the adapter
	ordinal := len(c.Tx.Children(s.opts.AdapterPath))

	var (
		addr Address
		path objtree.Path
		err  error
	)
	for attempt := 0; attempt < maxAddressAttempts; attempt++ {
		addr = RandomAddress(s.opts.AddressPrefix, s.rnd)
		path, err = c.Tx.Allocate(s.opts.AdapterPath, addr.PathElement())
		if err == nil {
			break
		}
		if !objtree.IsFault(err, objtree.PathConflict) {
			return nil, err
		}
		c.Logger.WithField("address", addr).Debug("Address already in use, retrying")
	}
	if err != nil {
		return nil, err
	}

	if err := c.Tx.Register(path, s.deviceInterface(addr, ordinal)); err != nil {
		return nil, err
	}

	c.Logger.WithFields(logrus.Fields{
		"address": addr,
		"device":  path,
	}).Info("Adding random device")
	return []any{path}, nil
}

func (s *Stack) deviceName(ordinal int) string {
	return fmt.Sprintf("%s-%d", s.opts.DeviceName, ordinal)
}
