package bluem

import (
	"github.com/srg/bluem/internal/dispatch"
	"github.com/srg/bluem/internal/objtree"
)

// adapterAddress sits above the generated device range (fourth byte >= 0x80)
func (s *Stack) adapterAddress() Address {
	p := s.opts.AddressPrefix
	return Address{p[0], p[1], p[2], 0x80, 0x00, 0x01}
}

func (s *Stack) adapterInterface() objtree.Interface {
	return objtree.NewInterface(AdapterInterface,
		"Address", s.adapterAddress().String(),
		"Name", s.opts.AdapterPath.Base(),
		"Alias", s.opts.DeviceName,
		"Powered", true,
		"Discovering", false,
	)
}

func adapterMembers() []dispatch.Member {
	return []dispatch.Member{
		{Name: "StartDiscovery", Handler: logOnly("StartDiscovery ...")},
		{Name: "StopDiscovery", Handler: logOnly("StopDiscovery ...")},
	}
}

func logOnly(msg string) dispatch.Handler {
	return func(c *dispatch.Call) ([]any, error) {
		c.Logger.Info(msg)
		return nil, nil
	}
}

func managerMembers() []dispatch.Member {
	return []dispatch.Member{
		{
			Name:    "GetManagedObjects",
			Out:     []dispatch.Arg{{Name: "objects", Kind: dispatch.KindManagedObjects}},
			Handler: getManagedObjects,
		},
	}
}

// getManagedObjects lists every object below the manager
func getManagedObjects(c *dispatch.Call) ([]any, error) {
	all := c.Tx.Snapshots()
	out := make([]objtree.Snapshot, 0, len(all))
	for _, snap := range all {
		if snap.Path.IsDescendantOf(c.Path) {
			out = append(out, snap)
		}
	}
	return []any{out}, nil
}
