package main

import (
	"testing"

	"github.com/fatih/color"
	"github.com/godbus/dbus/v5"
	"github.com/srg/bluem/internal/busd"
	"github.com/srg/bluem/internal/testutils"
	"github.com/stretchr/testify/assert"
)

func TestFormatSignal(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	added := &dbus.Signal{
		Path: "/",
		Name: busd.InterfacesAddedSignal,
		Body: []any{
			dbus.ObjectPath("/org/bluem/hci1/dev_00_16_3e_01_02_03"),
			map[string]map[string]dbus.Variant{
				"org.bluem.Device1": {
					"Name":      dbus.MakeVariant("bluemock-0"),
					"Connected": dbus.MakeVariant(false),
					"RSSI":      dbus.MakeVariant(int16(-71)),
				},
			},
		},
	}
	testutils.NewTextAsserter(t).Assert(formatSignal(added), `
[added] /org/bluem/hci1/dev_00_16_3e_01_02_03
  org.bluem.Device1
    Connected = false
    Name = bluemock-0
    RSSI = -71
`)

	changed := &dbus.Signal{
		Path: "/org/bluem/hci1/dev_00_16_3e_01_02_03",
		Name: busd.PropertiesChangedSignal,
		Body: []any{
			"org.bluem.Device1",
			map[string]dbus.Variant{
				"UUIDs":     dbus.MakeVariant([]string{"0000180f-0000-1000-8000-00805f9b34fb"}),
				"Connected": dbus.MakeVariant(true),
			},
			[]string{},
		},
	}
	testutils.NewTextAsserter(t).Assert(formatSignal(changed), `
[changed] /org/bluem/hci1/dev_00_16_3e_01_02_03 org.bluem.Device1
    Connected = true
    UUIDs = [0000180f-0000-1000-8000-00805f9b34fb]
`)
}

func TestFormatSignal_Unrelated(t *testing.T) {
	assert.Empty(t, formatSignal(&dbus.Signal{Name: "org.freedesktop.DBus.NameAcquired", Body: []any{"org.bluem"}}))
	assert.Empty(t, formatSignal(&dbus.Signal{Name: busd.InterfacesAddedSignal}))
}
