package busd

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/srg/bluem/internal/dispatch"
	"github.com/srg/bluem/internal/objtree"
	"github.com/stretchr/testify/assert"
)

func TestSignatures(t *testing.T) {
	tests := []struct {
		kind dispatch.ArgKind
		want string
	}{
		{dispatch.KindString, "s"},
		{dispatch.KindBool, "b"},
		{dispatch.KindBytes, "ay"},
		{dispatch.KindPath, "o"},
		{dispatch.KindVariant, "v"},
		{dispatch.KindOptions, "a{sv}"},
		{dispatch.KindPropertyMap, "a{sv}"},
		{dispatch.KindManagedObjects, "a{oa{sa{sv}}}"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, signature(tt.kind))
		})
	}
}

func TestFromWire(t *testing.T) {
	assert.Equal(t, objtree.Path("/org/mock"), fromWire(dbus.ObjectPath("/org/mock")))
	assert.Equal(t, []objtree.Path{"/a", "/b"}, fromWire([]dbus.ObjectPath{"/a", "/b"}))
	assert.Equal(t, "x", fromWire(dbus.MakeVariant("x")))
	assert.Equal(t, map[string]any{"offset": uint16(3), "device": objtree.Path("/d")},
		fromWire(map[string]dbus.Variant{
			"offset": dbus.MakeVariant(uint16(3)),
			"device": dbus.MakeVariant(dbus.ObjectPath("/d")),
		}))
	assert.Equal(t, []byte{1}, fromWire([]byte{1}))
}

func TestToWire(t *testing.T) {
	snaps := []objtree.Snapshot{{
		Path:       "/org/bluem/hci1",
		Interfaces: []objtree.Interface{objtree.NewInterface("org.bluem.Adapter1", "Powered", true, "Name", "hci1")},
	}}

	wire := toWire(snaps)
	assert.Equal(t, "a{oa{sa{sv}}}", dbus.SignatureOf(wire).String())
	objects := wire.(map[dbus.ObjectPath]map[string]map[string]dbus.Variant)
	assert.Equal(t, true, objects["/org/bluem/hci1"]["org.bluem.Adapter1"]["Powered"].Value())

	assert.Equal(t, dbus.ObjectPath("/x"), toWire(objtree.Path("/x")))
	assert.Equal(t, []dbus.ObjectPath{"/x"}, toWire([]objtree.Path{"/x"}))
	assert.Equal(t, "ao", dbus.MakeVariant(toWire([]objtree.Path{"/x"})).Signature().String())
}

func TestOutputsToWire(t *testing.T) {
	out := outputsToWire(
		[]dispatch.Arg{{Name: "value", Kind: dispatch.KindVariant}},
		[]any{objtree.Path("/dev")},
	)
	v, ok := out[0].(dbus.Variant)
	assert.True(t, ok)
	assert.Equal(t, dbus.ObjectPath("/dev"), v.Value())
}
