package bluem

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddressPrefix(t *testing.T) {
	tests := []struct {
		in      string
		want    AddressPrefix
		wantErr bool
	}{
		{in: "00:16:3e", want: AddressPrefix{0x00, 0x16, 0x3e}},
		{in: "AA:bb:01", want: AddressPrefix{0xaa, 0xbb, 0x01}},
		{in: "00:16", wantErr: true},
		{in: "00:16:3e:01", wantErr: true},
		{in: "0:16:3e", wantErr: true},
		{in: "zz:16:3e", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAddressPrefix(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddressPrefixString(t *testing.T) {
	assert.Equal(t, "00:16:3e", DefaultAddressPrefix.String())
}

func TestRandomAddress(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		a := RandomAddress(DefaultAddressPrefix, rnd)
		require.Equal(t, DefaultAddressPrefix[:], a[:3])
		require.Less(t, a[3], byte(0x80), "fourth byte stays below the adapter range")
	}
}

func TestAddressFormatting(t *testing.T) {
	a := Address{0x00, 0x16, 0x3e, 0x0a, 0xff, 0x01}
	assert.Equal(t, "00:16:3e:0a:ff:01", a.String())
	assert.Equal(t, "dev_00_16_3e_0a_ff_01", a.PathElement())
}

func TestConnectionState(t *testing.T) {
	next, ok := Disconnected.OnConnect()
	assert.True(t, ok)
	assert.Equal(t, Connected, next)

	next, ok = Connected.OnConnect()
	assert.False(t, ok, "Connected is terminal")
	assert.Equal(t, Connected, next)

	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "state(9)", ConnectionState(9).String())
}

func TestNewRejectsBadPaths(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"root adapter", func(o *Options) { o.AdapterPath = "/" }},
		{"malformed adapter", func(o *Options) { o.AdapterPath = "/org/blu-em" }},
		{"malformed admin", func(o *Options) { o.AdminPath = "org/mock" }},
		{"admin under adapter", func(o *Options) { o.AdminPath = "/org/bluem/hci1/admin" }},
		{"admin equals adapter", func(o *Options) { o.AdminPath = o.AdapterPath }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			_, err := New(opts, nil)
			assert.Error(t, err)
		})
	}
}
