package bluem

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/srg/bluem/internal/dispatch"
	"github.com/srg/bluem/internal/objtree"
)

type characteristicSpec struct {
	Handle uint16
	UUID   uuid.UUID
	Flags  []string
	Value  []byte
}

type serviceSpec struct {
	Handle         uint16
	UUID           uuid.UUID
	Characteristic characteristicSpec
}

// gattProfile is what every device exposes once connected: two primary
// services, one characteristic each.
var gattProfile = [2]serviceSpec{
	{
		Handle: 0x0010,
		UUID:   BatteryServiceUUID,
		Characteristic: characteristicSpec{
			Handle: 0x0011,
			UUID:   BatteryLevelUUID,
			Flags:  []string{"read", "write", "notify"},
			Value:  []byte{100},
		},
	},
	{
		Handle: 0x0020,
		UUID:   DeviceInformationUUID,
		Characteristic: characteristicSpec{
			Handle: 0x0021,
			UUID:   ManufacturerNameUUID,
			Flags:  []string{"read", "write"},
			Value:  []byte("bluem"),
		},
	},
}

// ProfileUUIDs returns the service UUIDs a connected device reports, in profile order
func ProfileUUIDs() []string {
	out := make([]string, 0, len(gattProfile))
	for _, svc := range gattProfile {
		out = append(out, svc.UUID.String())
	}
	return out
}

func (s serviceSpec) suffix() string {
	return fmt.Sprintf("service%04x", s.Handle)
}

func (s serviceSpec) iface(device objtree.Path) objtree.Interface {
	return objtree.NewInterface(GattServiceInterface,
		"UUID", s.UUID.String(),
		"Primary", true,
		"Device", device,
	)
}

func (c characteristicSpec) suffix() string {
	return fmt.Sprintf("char%04x", c.Handle)
}

func (c characteristicSpec) iface(service objtree.Path) objtree.Interface {
	return objtree.NewInterface(GattCharacteristicIface,
		"UUID", c.UUID.String(),
		"Service", service,
		"Value", c.Value,
		"Notifying", false,
		"Flags", c.Flags,
	)
}

// registerService allocates the service and its characteristic below device
func registerService(tx *objtree.Tx, device objtree.Path, svc serviceSpec) (objtree.Path, error) {
	svcPath, err := tx.Allocate(device, svc.suffix())
	if err != nil {
		return "", err
	}
	if err := tx.Register(svcPath, svc.iface(device)); err != nil {
		return "", err
	}

	charPath, err := tx.Allocate(svcPath, svc.Characteristic.suffix())
	if err != nil {
		return "", err
	}
	if err := tx.Register(charPath, svc.Characteristic.iface(svcPath)); err != nil {
		return "", err
	}
	return svcPath, nil
}

func characteristicMembers() []dispatch.Member {
	options := dispatch.Arg{Name: "options", Kind: dispatch.KindOptions}
	return []dispatch.Member{
		{
			Name:    "ReadValue",
			In:      []dispatch.Arg{options},
			Out:     []dispatch.Arg{{Name: "value", Kind: dispatch.KindBytes}},
			Handler: readValue,
		},
		{
			Name:    "WriteValue",
			In:      []dispatch.Arg{{Name: "value", Kind: dispatch.KindBytes}, options},
			Handler: writeValue,
		},
		{
			Name:    "StartNotify",
			Handler: setNotifying(true),
		},
		{
			Name:    "StopNotify",
			Handler: setNotifying(false),
		},
	}
}

func currentValue(c *dispatch.Call) ([]byte, error) {
	obj, err := c.Tx.Get(c.Path)
	if err != nil {
		return nil, err
	}
	v, err := obj.Property(GattCharacteristicIface, "Value")
	if err != nil {
		return nil, err
	}
	value, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("characteristic %s: Value is %T, not bytes", c.Path, v)
	}
	return value, nil
}

func readValue(c *dispatch.Call) ([]any, error) {
	value, err := currentValue(c)
	if err != nil {
		return nil, err
	}
	offset, err := optionOffset(c, len(value))
	if err != nil {
		return nil, err
	}
	return []any{value[offset:]}, nil
}

func writeValue(c *dispatch.Call) ([]any, error) {
	value, err := currentValue(c)
	if err != nil {
		return nil, err
	}
	offset, err := optionOffset(c, len(value))
	if err != nil {
		return nil, err
	}

	next := append(value[:offset:offset], c.Args[0].([]byte)...)
	c.Logger.WithField("length", len(next)).Debug("Writing characteristic value")
	return nil, c.Tx.SetProperty(c.Path, GattCharacteristicIface, "Value", next)
}

func setNotifying(on bool) dispatch.Handler {
	return func(c *dispatch.Call) ([]any, error) {
		c.Logger.WithField("notifying", on).Info("Characteristic notification state")
		return nil, c.Tx.SetProperty(c.Path, GattCharacteristicIface, "Notifying", on)
	}
}

// optionOffset reads the "offset" option; it must not exceed the value length
func optionOffset(c *dispatch.Call, length int) (int, error) {
	opts, _ := c.Args[len(c.Args)-1].(map[string]any)
	raw, ok := opts["offset"]
	if !ok {
		return 0, nil
	}

	var offset int
	switch v := raw.(type) {
	case uint16:
		offset = int(v)
	case uint32:
		offset = int(v)
	case int:
		offset = v
	case int32:
		offset = int(v)
	case int64:
		offset = int(v)
	case uint64:
		offset = int(v)
	default:
		return 0, &objtree.Fault{Kind: objtree.InvalidArgs, Path: c.Path, Interface: c.Interface, Member: c.Member,
			Msg: fmt.Sprintf("offset option must be an integer, got %T", raw)}
	}
	if offset < 0 || offset > length {
		return 0, &objtree.Fault{Kind: objtree.InvalidArgs, Path: c.Path, Interface: c.Interface, Member: c.Member,
			Msg: fmt.Sprintf("offset %d out of range for value of length %d", offset, length)}
	}
	return offset, nil
}
