package testutils

import (
	"strings"
	"testing"

	"github.com/srg/bluem/internal/objtree"
	"github.com/stretchr/testify/assert"
)

func TestJSONAsserter_DefaultOptions(t *testing.T) {
	opts := NewJSONAsserter(t).GetOptions()

	assert.True(t, opts.IgnoreExtraKeys, "IgnoreExtraKeys should default to true")
	assert.True(t, opts.AllowPresencePlaceholder, "AllowPresencePlaceholder should default to true")
	assert.False(t, opts.IgnoreArrayOrder, "IgnoreArrayOrder should default to false")
}

func TestJSONAsserter_FunctionalOptions(t *testing.T) {
	opts := NewJSONAsserter(t).WithOptions(
		WithIgnoreExtraKeys(false),
		WithIgnoreArrayOrder(true),
	).GetOptions()

	assert.False(t, opts.IgnoreExtraKeys)
	assert.True(t, opts.IgnoreArrayOrder)
	assert.True(t, opts.AllowPresencePlaceholder, "untouched options keep their defaults")
}

func TestJSONAsserter_Diff(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		actual   string
		expected string
		match    bool
	}{
		{
			name:     "extra keys ignored by default",
			actual:   `{"path":"/dev","rssi":-71}`,
			expected: `{"path":"/dev"}`,
			match:    true,
		},
		{
			name:     "extra keys reported when strict",
			opts:     []Option{WithIgnoreExtraKeys(false)},
			actual:   `{"path":"/dev","rssi":-71}`,
			expected: `{"path":"/dev"}`,
		},
		{
			name:     "presence placeholder accepts any value",
			actual:   `{"address":"00:16:3e:01:02:03"}`,
			expected: `{"address":"<<PRESENCE>>"}`,
			match:    true,
		},
		{
			name:     "presence placeholder still requires the key",
			actual:   `{}`,
			expected: `{"address":"<<PRESENCE>>"}`,
		},
		{
			name:     "array order matters by default",
			actual:   `{"uuids":["180a","180f"]}`,
			expected: `{"uuids":["180f","180a"]}`,
		},
		{
			name:     "array order ignored on request",
			opts:     []Option{WithIgnoreArrayOrder(true)},
			actual:   `{"uuids":["180a","180f"]}`,
			expected: `{"uuids":["180f","180a"]}`,
			match:    true,
		},
		{
			name:     "root arrays",
			actual:   `[{"kind":"ObjectAdded","seq":1}]`,
			expected: `[{"kind":"ObjectAdded"}]`,
			match:    true,
		},
		{
			name:     "value mismatch",
			actual:   `{"connected":false}`,
			expected: `{"connected":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := NewJSONAsserter(t).WithOptions(tt.opts...).Diff(tt.actual, tt.expected)
			if tt.match {
				assert.Empty(t, diff)
			} else {
				assert.NotEmpty(t, diff)
			}
		})
	}
}

func TestJSONAsserter_InvalidJSON(t *testing.T) {
	ja := NewJSONAsserter(t)

	assert.True(t, strings.HasPrefix(ja.Diff(`{`, `{}`), "invalid actual JSON"))
	assert.True(t, strings.HasPrefix(ja.Diff(`{}`, `{`), "invalid expected JSON"))
}

func TestJSONAsserter_AssertValueSnapshot(t *testing.T) {
	snap := objtree.Snapshot{
		Path: "/org/bluem/hci1",
		Interfaces: []objtree.Interface{
			objtree.NewInterface("org.bluem.Adapter1", "Powered", true, "Alias", "hci1"),
		},
	}

	NewJSONAsserter(t).AssertValue(snap, `{
		"path": "/org/bluem/hci1",
		"interfaces": {"org.bluem.Adapter1": {"Powered": true, "Alias": "<<PRESENCE>>"}}
	}`)
}

func TestEventRecorder(t *testing.T) {
	r := &EventRecorder{}
	assert.Empty(t, r.Events())
	assert.Empty(t, r.Summary())
}
