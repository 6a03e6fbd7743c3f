package busd

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/srg/bluem/internal/dispatch"
	"github.com/srg/bluem/internal/objtree"
)

const objectManagerInterface = "org.freedesktop.DBus.ObjectManager"

// signals lists the signals the binding emits, per interface
var signals = map[string][]introspect.Signal{
	objectManagerInterface: {{
		Name: "InterfacesAdded",
		Args: []introspect.Arg{{Name: "object", Type: "o"}, {Name: "interfaces", Type: "a{sa{sv}}"}},
	}},
	dispatch.PropertiesInterface: {{
		Name: "PropertiesChanged",
		Args: []introspect.Arg{
			{Name: "interface", Type: "s"},
			{Name: "changed_properties", Type: "a{sv}"},
			{Name: "invalidated_properties", Type: "as"},
		},
	}},
}

// Introspect renders the introspection XML for path. Paths that are not
// registered but have registered descendants are answered with their
// children only, so the tree can be walked from /.
func (h *Handler) Introspect(ctx context.Context, path objtree.Path) (string, error) {
	var node introspect.Node
	err := h.d.View(ctx, func(reg *objtree.Registry, table *dispatch.Table) error {
		obj, getErr := reg.Get(path)
		children := childElements(reg, path)
		if getErr != nil && len(children) == 0 {
			return getErr
		}

		node = introspect.Node{Name: string(path)}
		node.Interfaces = append(node.Interfaces, introspect.IntrospectData)
		if obj != nil {
			node.Interfaces = append(node.Interfaces, describeInterface(table, dispatch.PropertiesInterface, nil))
			for _, name := range obj.InterfaceNames() {
				props, _ := obj.Properties(name)
				node.Interfaces = append(node.Interfaces, describeInterface(table, name, props))
			}
		}
		for _, child := range children {
			node.Children = append(node.Children, introspect.Node{Name: child})
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	data, err := xml.Marshal(node)
	if err != nil {
		return "", fmt.Errorf("failed to marshal introspection for %s: %w", path, err)
	}
	return strings.TrimSpace(introspect.IntrospectDeclarationString) + string(data), nil
}

func describeInterface(table *dispatch.Table, name string, props []objtree.Property) introspect.Interface {
	out := introspect.Interface{Name: name, Signals: signals[name]}

	if def, ok := table.Interface(name); ok {
		for _, memberName := range def.MemberNames() {
			m := def.Members[memberName]
			method := introspect.Method{Name: m.Name}
			for _, a := range m.In {
				method.Args = append(method.Args, introspect.Arg{Name: a.Name, Type: signature(a.Kind), Direction: "in"})
			}
			for _, a := range m.Out {
				method.Args = append(method.Args, introspect.Arg{Name: a.Name, Type: signature(a.Kind), Direction: "out"})
			}
			out.Methods = append(out.Methods, method)
		}
	}

	for _, p := range props {
		out.Properties = append(out.Properties, introspect.Property{
			Name:   p.Name,
			Type:   dbus.SignatureOf(toWire(p.Value)).String(),
			Access: "read",
		})
	}
	return out
}

// childElements returns the distinct next path elements of every registered descendant of path
func childElements(reg *objtree.Registry, path objtree.Path) []string {
	prefix := string(path) + "/"
	if path == objtree.Root {
		prefix = "/"
	}

	seen := make(map[string]struct{})
	var out []string
	for _, p := range reg.Paths() {
		if !p.IsDescendantOf(path) {
			continue
		}
		elem, _, _ := strings.Cut(strings.TrimPrefix(string(p), prefix), "/")
		if _, dup := seen[elem]; dup {
			continue
		}
		seen[elem] = struct{}{}
		out = append(out, elem)
	}
	sort.Strings(out)
	return out
}
