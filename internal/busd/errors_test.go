package busd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/srg/bluem/internal/dispatch"
	"github.com/srg/bluem/internal/objtree"
	"github.com/stretchr/testify/assert"
)

func TestBusError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		called string
		want   string
	}{
		{"not found", &objtree.Fault{Kind: objtree.NotFound}, "org.x", ErrNameUnknownObject},
		{"unknown interface", &objtree.Fault{Kind: objtree.UnknownInterface}, "org.x", ErrNameUnknownInterface},
		{"unknown method", &objtree.Fault{Kind: objtree.UnknownMember, Interface: "org.x"}, "org.x", ErrNameUnknownMethod},
		{"unknown property", &objtree.Fault{Kind: objtree.UnknownMember, Interface: "org.x"}, dispatch.PropertiesInterface, ErrNameUnknownProperty},
		{"properties member", &objtree.Fault{Kind: objtree.UnknownMember, Interface: dispatch.PropertiesInterface}, dispatch.PropertiesInterface, ErrNameUnknownMethod},
		{"path conflict", &objtree.Fault{Kind: objtree.PathConflict}, "org.mock", ErrNameAlreadyExists},
		{"invalid args", &objtree.Fault{Kind: objtree.InvalidArgs}, "org.x", ErrNameInvalidArgs},
		{"wrapped fault", fmt.Errorf("call: %w", &objtree.Fault{Kind: objtree.NotFound}), "org.x", ErrNameUnknownObject},
		{"stopped", dispatch.ErrStopped, "org.x", "org.freedesktop.DBus.Error.Failed"},
		{"plain error", errors.New("boom"), "org.x", "org.freedesktop.DBus.Error.Failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, busError(tt.err, tt.called).Name)
		})
	}
}
