package bluem

import (
	"fmt"

	"github.com/srg/bluem/internal/objtree"
)

// ConnectionState is the lifecycle state of a mock device
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// connectTransitions lists the states Connect moves out of. Connected is terminal.
var connectTransitions = map[ConnectionState]ConnectionState{
	Disconnected: Connected,
}

// OnConnect returns the state after a connect request and whether it is a transition
func (s ConnectionState) OnConnect() (ConnectionState, bool) {
	next, ok := connectTransitions[s]
	if !ok {
		return s, false
	}
	return next, true
}

// stateOf reads the connection state stored on a device object
func stateOf(obj *objtree.Object) (ConnectionState, error) {
	v, err := obj.Property(DeviceInterface, "Connected")
	if err != nil {
		return Disconnected, err
	}
	connected, ok := v.(bool)
	if !ok {
		return Disconnected, fmt.Errorf("device %s: Connected property is %T, not bool", obj.Path(), v)
	}
	if connected {
		return Connected, nil
	}
	return Disconnected, nil
}
