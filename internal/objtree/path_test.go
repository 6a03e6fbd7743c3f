package objtree_test

import (
	"testing"

	"github.com/srg/bluem/internal/objtree"
	"github.com/stretchr/testify/assert"
)

func TestPath_Join(t *testing.T) {
	tests := []struct {
		name   string
		parent objtree.Path
		suffix string
		want   objtree.Path
	}{
		{name: "joins onto root without doubling slash", parent: objtree.Root, suffix: "org", want: "/org"},
		{name: "joins nested path", parent: "/org/bluem/hci1", suffix: "dev_00_16_3e_01_02_03", want: "/org/bluem/hci1/dev_00_16_3e_01_02_03"},
		{name: "trims slashes from suffix", parent: "/org", suffix: "/mock/", want: "/org/mock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.parent.Join(tt.suffix))
		})
	}
}

func TestPath_Relations(t *testing.T) {
	dev := objtree.Path("/org/bluem/hci1/dev_00_16_3e_01_02_03")
	svc := dev.Join("service0010")
	char := svc.Join("char0011")

	assert.Equal(t, dev, svc.Parent())
	assert.Equal(t, "char0011", char.Base())
	assert.Equal(t, objtree.Root, objtree.Path("/org").Parent())

	assert.True(t, svc.IsChildOf(dev))
	assert.False(t, char.IsChildOf(dev))
	assert.True(t, char.IsDescendantOf(dev))
	assert.False(t, dev.IsDescendantOf(dev))
	assert.False(t, objtree.Path("/org/bluem/hci10").IsDescendantOf("/org/bluem/hci1"), "prefix match must respect element boundary")
	assert.True(t, objtree.Path("/org").IsChildOf(objtree.Root))
}

func TestPath_Valid(t *testing.T) {
	tests := []struct {
		path  objtree.Path
		valid bool
	}{
		{"/", true},
		{"/org/bluem/hci1", true},
		{"/org/bluem/hci1/dev_00_16_3e_0a_0b_0c", true},
		{"", false},
		{"org", false},
		{"/org/", false},
		{"//org", false},
		{"/org/blu-em", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.path), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.path.Valid())
		})
	}
}
